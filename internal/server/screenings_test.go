package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/resume-screener/internal/async"
	"github.com/joseph-ayodele/resume-screener/internal/export"
	"github.com/joseph-ayodele/resume-screener/internal/extract"
	"github.com/joseph-ayodele/resume-screener/internal/fetch"
	"github.com/joseph-ayodele/resume-screener/internal/llm"
	"github.com/joseph-ayodele/resume-screener/internal/pipeline"
	"github.com/joseph-ayodele/resume-screener/internal/repository"
	"github.com/joseph-ayodele/resume-screener/internal/services/screening"
)

type stubFetcher struct{ err error }

func (s *stubFetcher) Fetch(_ context.Context, rawURL string) (*fetch.Document, error) {
	if err := fetch.ValidateReference(rawURL); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return &fetch.Document{Data: []byte("%PDF-fake"), URL: rawURL}, nil
}

type stubExtractor struct{ text string }

func (s *stubExtractor) Extract(context.Context, []byte) (extract.Result, error) {
	return extract.Result{Text: s.text, PageCount: 1, Source: extract.SourceEmbedded}, nil
}

type stubEvaluator struct{ err error }

func (s *stubEvaluator) Evaluate(context.Context, llm.EvaluationRequest) (llm.Feedback, error) {
	if s.err != nil {
		return llm.Feedback{}, s.err
	}
	return llm.Feedback{
		Text:     "Skills: Go\n\nOverall Fit: strong",
		Sections: llm.FeedbackSections{Skills: "Go", OverallFit: "strong"},
		Model:    "gpt-4o-mini",
		Raw:      []byte(`{"skills":"Go","overall_fit":"strong"}`),
	}, nil
}

type testApp struct {
	app   *fiber.App
	queue *async.ScreeningQueue
}

func newTestApp(t *testing.T, fetchErr, evalErr error) *testApp {
	t.Helper()

	store, err := repository.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	screener := pipeline.NewScreener(
		&stubFetcher{err: fetchErr},
		&stubExtractor{text: "Jane Doe, Senior Go engineer, 8 years"},
		&stubExtractor{},
		&stubEvaluator{err: evalErr},
		pipeline.Config{FetchRetries: 0, FetchTimeout: time.Second, EvalTimeout: time.Second},
		nil,
	)
	svc := screening.NewService(screener, store, nil)
	queue := async.NewScreeningQueue(svc, nil, async.WithWorkers(1), async.WithQueueSize(8))
	t.Cleanup(func() { queue.Shutdown(context.Background()) })
	exp := export.NewService(store, nil)

	return &testApp{
		app:   New(NewHandlers(svc, queue, exp, nil, nil)),
		queue: queue,
	}
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 10_000)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var m map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	return m
}

func TestHealthz_NoDatabase(t *testing.T) {
	ta := newTestApp(t, nil, nil)
	resp, err := ta.app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeBody(t, resp)["status"])
}

func TestScreen_OKAndFeedbackReadable(t *testing.T) {
	ta := newTestApp(t, nil, nil)
	appID := uuid.NewString()

	resp := postJSON(t, ta.app, "/api/v1/screenings", ScreeningRequest{
		ApplicationID:  appID,
		ResumeURL:      "https://cdn.example.com/resume.pdf",
		JobDescription: "Go backend role",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, appID, body["application_id"])
	assert.Contains(t, body["feedback"], "Skills: Go")
	assert.Equal(t, "EMBEDDED", body["text_source"])
	assert.Equal(t, "gpt-4o-mini", body["model"])

	// the persisted result is readable through the feedback route
	resp2, err := ta.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/applications/"+appID+"/feedback", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	assert.Equal(t, appID, decodeBody(t, resp2)["application_id"])
}

func TestScreen_RerunOverwritesFeedback(t *testing.T) {
	ta := newTestApp(t, nil, nil)
	appID := uuid.NewString()
	req := ScreeningRequest{ApplicationID: appID, ResumeURL: "https://cdn.example.com/resume.pdf"}

	resp1 := postJSON(t, ta.app, "/api/v1/screenings", req)
	require.Equal(t, http.StatusOK, resp1.StatusCode)
	resp1.Body.Close()
	resp2 := postJSON(t, ta.app, "/api/v1/screenings", req)
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	resp2.Body.Close()

	// export shows a single row for the application
	resp3, err := ta.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/screenings/export", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp3.StatusCode)
	assert.Contains(t, resp3.Header.Get("Content-Type"), "spreadsheetml")
	data, err := io.ReadAll(resp3.Body)
	require.NoError(t, err)
	resp3.Body.Close()
	assert.NotEmpty(t, data)
}

func TestScreen_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		fetchErr   error
		evalErr    error
		wantStatus int
		wantKind   string
	}{
		{
			name:       "invalid reference",
			url:        "ftp://host/resume.pdf",
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   "INVALID_REFERENCE",
		},
		{
			name:       "fetch failed",
			url:        "https://cdn.example.com/gone.pdf",
			fetchErr:   fmt.Errorf("%w: %w", fetch.ErrFetchFailed, &fetch.StatusError{Code: 404}),
			wantStatus: http.StatusBadGateway,
			wantKind:   "FETCH_FAILED",
		},
		{
			name:       "oracle unavailable",
			url:        "https://cdn.example.com/resume.pdf",
			evalErr:    fmt.Errorf("%w: connection refused", llm.ErrOracleUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantKind:   "ORACLE_UNAVAILABLE",
		},
		{
			name:       "oracle rejected",
			url:        "https://cdn.example.com/resume.pdf",
			evalErr:    fmt.Errorf("%w: empty completion", llm.ErrOracleRejected),
			wantStatus: http.StatusBadGateway,
			wantKind:   "ORACLE_REJECTED",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t, tt.fetchErr, tt.evalErr)
			resp := postJSON(t, ta.app, "/api/v1/screenings", ScreeningRequest{
				ApplicationID: uuid.NewString(),
				ResumeURL:     tt.url,
			})
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decodeBody(t, resp)
			assert.Equal(t, tt.wantKind, body["kind"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestScreen_BadBody(t *testing.T) {
	ta := newTestApp(t, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/screenings", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetFeedback_NotFound(t *testing.T) {
	ta := newTestApp(t, nil, nil)
	resp, err := ta.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/applications/"+uuid.NewString()+"/feedback", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetFeedback_InvalidID(t *testing.T) {
	ta := newTestApp(t, nil, nil)
	resp, err := ta.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/applications/not-a-uuid/feedback", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScreenBatch_AcceptsValidRejectsInvalid(t *testing.T) {
	ta := newTestApp(t, nil, nil)
	good := uuid.NewString()

	resp := postJSON(t, ta.app, "/api/v1/screenings/batch", []ScreeningRequest{
		{ApplicationID: good, ResumeURL: "https://cdn.example.com/a.pdf"},
		{ApplicationID: "not-a-uuid", ResumeURL: "https://cdn.example.com/b.pdf"},
		{ApplicationID: uuid.NewString(), ResumeURL: ""},
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Len(t, body["accepted"], 1)
	assert.Len(t, body["rejected"], 2)

	// the accepted submission eventually completes and is queryable
	require.Eventually(t, func() bool {
		st, ok := ta.queue.Status(uuid.MustParse(good))
		return ok && string(st) == "DONE"
	}, 5*time.Second, 20*time.Millisecond)

	resp2, err := ta.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/screenings/"+good+"/status", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	assert.Equal(t, "DONE", decodeBody(t, resp2)["status"])
}

func TestScreeningStatus_Unknown(t *testing.T) {
	ta := newTestApp(t, nil, nil)
	resp, err := ta.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/screenings/"+uuid.NewString()+"/status", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExport_InvalidDate(t *testing.T) {
	ta := newTestApp(t, nil, nil)
	resp, err := ta.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/screenings/export?from=13-2025", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
