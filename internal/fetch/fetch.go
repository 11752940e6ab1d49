// Package fetch resolves a résumé document reference (an absolute HTTP(S)
// URL) to raw bytes. It validates the reference before any network I/O and
// issues exactly one GET per call; bounded retry is caller policy (Retry).
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/joseph-ayodele/resume-screener/constants"
)

// Sentinel errors for the two fetch failure modes.
var (
	ErrInvalidReference = errors.New("invalid document reference")
	ErrFetchFailed      = errors.New("document fetch failed")
)

// StatusError carries the upstream HTTP status of a failed retrieval.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.Code, http.StatusText(e.Code))
}

// Config for the document fetcher.
type Config struct {
	Timeout   time.Duration // per-request timeout, default 15s
	MaxBytes  int64         // response body cap, default 10 MiB
	UserAgent string
}

// Document is the fetched résumé file. Ownership passes to the text
// extractor; nothing else should retain the buffer.
type Document struct {
	Data        []byte
	ContentType string
	URL         string
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10 << 20
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "resume-screener/1.0"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// ValidateReference rejects any reference whose scheme is not http or
// https. It performs no network I/O.
func ValidateReference(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidReference, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidReference)
	}
	return nil
}

// Fetch retrieves the document at rawURL. It is a single retrieval: any
// non-2xx status or transport failure returns ErrFetchFailed without
// retrying.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	if err := ValidateReference(rawURL); err != nil {
		return nil, err
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("fetch.request_failed", "url", rawURL, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("fetch.body_close_error", "url", rawURL, "error", cerr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("fetch.bad_status", "url", rawURL, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, &StatusError{Code: resp.StatusCode})
	}

	// Read one byte past the cap to detect oversized bodies.
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrFetchFailed, err)
	}
	if int64(len(data)) > c.cfg.MaxBytes {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", ErrFetchFailed, c.cfg.MaxBytes)
	}

	c.logger.Debug("fetch.ok", "url", rawURL, "bytes", len(data),
		"elapsed_ms", time.Since(start).Milliseconds())
	return &Document{
		Data:        data,
		ContentType: constants.NormalizeMediaType(resp.Header.Get("Content-Type")),
		URL:         rawURL,
	}, nil
}
