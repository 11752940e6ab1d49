// Package ocr is the fallback extractor for scanned résumés: it rasterizes
// PDF pages with pdftoppm and recognizes text with tesseract. Both tools
// run through a stubbable Runner so tests never shell out.
package ocr

import (
	"log/slog"
	"time"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Lang     string // recognition language dictionary, default "eng"
	DPI      int    // rasterization DPI, default 300
	MaxPages int    // 0 = no limit

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}

// ExtractionResult is the raw OCR outcome. Empty Text with a nil error is
// a legitimate result (a scan with nothing recognizable); the caller
// decides what that means.
type ExtractionResult struct {
	Text     string
	Pages    int
	Language string
	Duration time.Duration
	Warnings []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// WithRunner swaps the command runner; used by tests.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}
