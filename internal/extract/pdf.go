package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	pdf "github.com/ledongthuc/pdf"
)

// PDFExtractor reads the embedded text layer of a PDF. It never runs OCR:
// a structurally valid document with no text layer yields an empty Result,
// and the orchestrator decides whether to fall back.
type PDFExtractor struct {
	logger *slog.Logger
}

func NewPDFExtractor(logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{logger: logger}
}

func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (res Result, err error) {
	start := time.Now()

	// The pdf library panics on some corrupted cross-reference tables;
	// fold those into the malformed-document error path.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrMalformedDocument, r)
			res = Result{}
		}
	}()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Warn("extract.pdf.unreadable", "error", err)
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	rs, err := r.GetPlainText()
	if err != nil {
		// Pages exist but the text layer is unreadable; treat as no text
		// so the OCR pass gets its chance.
		e.logger.Warn("extract.pdf.no_text_layer", "error", err)
		return Result{
			PageCount: r.NumPage(),
			Source:    SourceEmbedded,
			Duration:  time.Since(start),
		}, nil
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rs); err != nil {
		return Result{}, fmt.Errorf("%w: read text layer: %v", ErrMalformedDocument, err)
	}

	text := NormalizeWhitespace(buf.String())
	e.logger.Debug("extract.pdf.ok", "pages", r.NumPage(), "chars", len(text),
		"elapsed_ms", time.Since(start).Milliseconds())
	return Result{
		Text:      text,
		PageCount: r.NumPage(),
		Source:    SourceEmbedded,
		Duration:  time.Since(start),
	}, nil
}
