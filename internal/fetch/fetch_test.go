package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateReference(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"https", "https://cdn.example.com/resume.pdf", false},
		{"http", "http://cdn.example.com/resume.pdf", false},
		{"ftp scheme", "ftp://cdn.example.com/resume.pdf", true},
		{"file scheme", "file:///tmp/resume.pdf", true},
		{"relative path", "resume.pdf", true},
		{"missing host", "https:///resume.pdf", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReference(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidReference)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFetch_RejectsBadSchemeWithoutNetwork(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	c := NewClient(Config{}, nil)
	_, err := c.Fetch(context.Background(), "ftp://"+strings.TrimPrefix(srv.URL, "http://")+"/resume.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidReference)
	assert.NotErrorIs(t, err, ErrFetchFailed)
	assert.Zero(t, hits, "invalid references must not reach the network")
}

func TestFetch_OK(t *testing.T) {
	body := []byte("%PDF-1.4 fake body")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/pdf; charset=binary")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	c := NewClient(Config{Timeout: 5 * time.Second}, nil)
	doc, err := c.Fetch(context.Background(), srv.URL+"/resume.pdf")
	require.NoError(t, err)
	assert.Equal(t, body, doc.Data)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Equal(t, srv.URL+"/resume.pdf", doc.URL)
}

func TestFetch_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(Config{}, nil)
	_, err := c.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
}

func TestFetch_SingleRequestPerCall(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(Config{}, nil)
	_, err := c.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, 1, hits, "Fetch itself must not retry")
}

func TestFetch_OversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	c := NewClient(Config{MaxBytes: 1024}, nil)
	_, err := c.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestFetch_BodyAtLimitIsAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 1024))
	}))
	defer srv.Close()

	c := NewClient(Config{MaxBytes: 1024}, nil)
	doc, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, doc.Data, 1024)
}
