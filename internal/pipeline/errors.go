package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies a terminal pipeline failure. Callers render a distinct,
// actionable message per kind instead of one generic failure string.
type Kind string

const (
	KindInvalidReference  Kind = "INVALID_REFERENCE"
	KindFetchFailed       Kind = "FETCH_FAILED"
	KindMalformedDocument Kind = "MALFORMED_DOCUMENT"
	KindNoTextExtracted   Kind = "NO_TEXT_EXTRACTED"
	KindOCRFailed         Kind = "OCR_FAILED"
	KindOracleUnavailable Kind = "ORACLE_UNAVAILABLE"
	KindOracleRejected    Kind = "ORACLE_REJECTED"
)

// Stage names the pipeline stage an error originated from.
type Stage string

const (
	StageFetch    Stage = "fetch"
	StageEmbedded Stage = "extract_embedded"
	StageOCR      Stage = "extract_ocr"
	StageEvaluate Stage = "evaluate"
)

// Error is the single terminal error shape of a pipeline run. The
// originating cause is preserved for observability.
type Error struct {
	Kind  Kind
	Stage Stage
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Stage, e.Cause)
	}
	return fmt.Sprintf("%s (%s)", e.Kind, e.Stage)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf extracts the failure kind from any error returned by Run.
// Returns "" for nil or foreign errors.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// Retryable reports whether rerunning the whole pipeline with the same
// inputs can plausibly succeed.
func (k Kind) Retryable() bool {
	switch k {
	case KindFetchFailed, KindOracleUnavailable:
		return true
	}
	return false
}

// Message is the user-facing description for a failure kind.
func (k Kind) Message() string {
	switch k {
	case KindInvalidReference:
		return "the resume link is not a valid http(s) URL"
	case KindFetchFailed:
		return "the resume document could not be reached"
	case KindMalformedDocument:
		return "the resume document could not be parsed"
	case KindNoTextExtracted:
		return "the resume document appears to contain no readable text"
	case KindOCRFailed:
		return "text recognition failed for this document"
	case KindOracleUnavailable:
		return "the evaluation service is currently unavailable, try again later"
	case KindOracleRejected:
		return "the evaluation service produced no usable assessment"
	}
	return "screening failed"
}
