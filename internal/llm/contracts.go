package llm

import (
	"context"
	"errors"
)

// Sentinel errors distinguishing "could not reach the oracle" from "the
// oracle answered but produced nothing usable". The first is retryable by
// the caller, the second is not.
var (
	ErrOracleUnavailable = errors.New("evaluation service unavailable")
	ErrOracleRejected    = errors.New("evaluation service returned no usable content")
)

// JobContext carries the posting fields the candidate is screened against.
// Owned by the job-posting subsystem; read-only here.
type JobContext struct {
	Description string `json:"description"`
	Preferences string `json:"preferences"`
}

// EvaluationRequest is the composer input. ResumeText is the raw extracted
// text; the composer normalizes and truncates it before prompt assembly.
type EvaluationRequest struct {
	ResumeText string
	Job        JobContext
}

// FeedbackSections is the structured shape we ask the model for.
type FeedbackSections struct {
	Skills      string `json:"skills"`
	Experience  string `json:"experience"`
	Strengths   string `json:"strengths"`
	GrowthAreas string `json:"growth_areas"`
	OverallFit  string `json:"overall_fit"`
}

// Feedback is one evaluation outcome: the rendered five-section text plus
// the structured sections and provenance.
type Feedback struct {
	Text     string
	Sections FeedbackSections
	Model    string
	Raw      []byte
}

// Evaluator is the interface the pipeline depends on. Implementations call
// the oracle exactly once per invocation and never retry internally.
type Evaluator interface {
	Evaluate(ctx context.Context, req EvaluationRequest) (Feedback, error)
}
