// Package extract turns raw résumé bytes into text. The embedded pass
// (PDFExtractor) reads the document's own text layer; the OCR fallback in
// internal/ocr implements the same contract for scanned documents.
package extract

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
)

// ErrMalformedDocument means the bytes cannot be parsed at all. This is a
// different path from "parsed fine but no text": the latter is reported as
// a successful Result with empty Text and triggers the OCR fallback.
var ErrMalformedDocument = errors.New("malformed document")

// Source tells which pass produced the text.
type Source string

const (
	SourceEmbedded Source = "EMBEDDED"
	SourceOCR      Source = "OCR"
)

// Result of one extraction pass. Text is whitespace-normalized; it may be
// empty only at the decision point between the embedded pass and OCR.
type Result struct {
	Text      string
	PageCount int
	Source    Source
	Duration  time.Duration
}

// TextExtractor is one extraction pass: document bytes -> text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (Result, error)
}

var spaceRe = regexp.MustCompile(`[ \t\r\f\v\x{00A0}]+`)
var newlineRe = regexp.MustCompile(`\n+`)

// NormalizeWhitespace collapses horizontal whitespace runs, collapses blank
// lines, and trims.
func NormalizeWhitespace(s string) string {
	s = spaceRe.ReplaceAllString(s, " ")
	s = newlineRe.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

// HasUsableText reports whether normalized text meets the minimum usable
// length. minLen <= 0 means "any non-empty text counts".
func HasUsableText(text string, minLen int) bool {
	if minLen <= 0 {
		minLen = 1
	}
	return len(text) >= minLen
}
