package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:  maxRetries,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetry_SucceedsAfterTransientFailure(t *testing.T) {
	var calls int
	doc, err := Retry(context.Background(), fastRetryConfig(2), func() (*Document, error) {
		calls++
		if calls < 3 {
			return nil, fmt.Errorf("%w: %w", ErrFetchFailed, &StatusError{Code: 503})
		}
		return &Document{Data: []byte("ok")}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []byte("ok"), doc.Data)
}

func TestRetry_Exhaustion(t *testing.T) {
	var calls int
	_, err := Retry(context.Background(), fastRetryConfig(2), func() (*Document, error) {
		calls++
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, &StatusError{Code: 502})
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls, "one initial attempt plus two retries")
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestRetry_DoesNotRetryInvalidReference(t *testing.T) {
	var calls int
	_, err := Retry(context.Background(), fastRetryConfig(3), func() (*Document, error) {
		calls++
		return nil, fmt.Errorf("%w: unsupported scheme", ErrInvalidReference)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestRetry_DoesNotRetryClientStatus(t *testing.T) {
	var calls int
	_, err := Retry(context.Background(), fastRetryConfig(3), func() (*Document, error) {
		calls++
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, &StatusError{Code: 404})
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "4xx responses other than 429 are permanent")
}

func TestRetry_RetriesNetworkErrors(t *testing.T) {
	var calls int
	_, err := Retry(context.Background(), fastRetryConfig(1), func() (*Document, error) {
		calls++
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, &net.OpError{Op: "dial", Err: errors.New("connection refused")})
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetry_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls int
	_, err := Retry(ctx, fastRetryConfig(3), func() (*Document, error) {
		calls++
		return nil, nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}
