package fetch

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net"
	"time"
)

// RetryConfig controls the caller-side retry policy around Fetch.
type RetryConfig struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig suits document hosts that occasionally hiccup.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:  2,
	InitialWait: 500 * time.Millisecond,
	MaxWait:     5 * time.Second,
	Multiplier:  2.0,
}

// Retry invokes fn up to 1+MaxRetries times with exponential backoff.
// Only transient failures are retried; an invalid reference or a
// non-retryable status returns immediately.
func Retry(ctx context.Context, rc RetryConfig, fn func() (*Document, error)) (*Document, error) {
	var lastErr error
	for attempt := 0; attempt <= rc.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		doc, err := fn()
		if err == nil {
			return doc, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < rc.MaxRetries {
			wait := time.Duration(float64(rc.InitialWait) * math.Pow(rc.Multiplier, float64(attempt)))
			if wait > rc.MaxWait {
				wait = rc.MaxWait
			}
			slog.Debug("fetch.retrying", "attempt", attempt+1, "wait", wait, "error", err)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

// isRetryable returns true for transient errors worth retrying.
func isRetryable(err error) bool {
	if errors.Is(err, ErrInvalidReference) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return isRetryableStatus(statusErr.Code)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

func isRetryableStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}
