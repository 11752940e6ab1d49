package extract

import (
	"context"
	"time"

	"github.com/joseph-ayodele/resume-screener/internal/ocr"
)

// OCRAdapter exposes the OCR fallback as a TextExtractor. Recognized text
// goes through the same whitespace normalization as the embedded pass so
// the usable-text decision is uniform.
type OCRAdapter struct {
	e *ocr.Extractor
}

func NewOCRAdapter(e *ocr.Extractor) *OCRAdapter {
	return &OCRAdapter{e: e}
}

func (a *OCRAdapter) Extract(ctx context.Context, data []byte) (Result, error) {
	start := time.Now()
	r, err := a.e.ExtractPDF(ctx, data)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Text:      NormalizeWhitespace(r.Text),
		PageCount: r.Pages,
		Source:    SourceOCR,
		Duration:  time.Since(start),
	}, nil
}
