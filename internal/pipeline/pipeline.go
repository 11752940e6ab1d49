// Package pipeline sequences one screening run: fetch the résumé
// document, extract its embedded text, fall back to OCR when the text
// layer is empty, and compose the evaluation. Each stage runs at most once
// per run; any stage error short-circuits to a terminal *Error carrying
// that stage's kind. Persistence is the caller's last action after a
// successful run, never this package's.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/resume-screener/constants"
	"github.com/joseph-ayodele/resume-screener/internal/common"
	"github.com/joseph-ayodele/resume-screener/internal/extract"
	"github.com/joseph-ayodele/resume-screener/internal/fetch"
	"github.com/joseph-ayodele/resume-screener/internal/llm"
)

// Fetcher resolves a document reference to raw bytes; see internal/fetch.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Document, error)
}

// Config holds per-stage bounds. Timeouts differ by stage cost: fetch is
// short, OCR is long, the oracle call sits in between.
type Config struct {
	FetchTimeout time.Duration // default 15s
	OCRTimeout   time.Duration // default 2m
	EvalTimeout  time.Duration // default 45s
	FetchRetries int           // bounded retry around the fetch stage, default 2
	MinTextLen   int           // usable-text threshold in normalized chars, default 16
}

// DefaultMinTextLen is the documented usable-text threshold: shorter
// normalized text (stray punctuation, page numbers) does not count as a
// text layer and triggers the OCR fallback.
const DefaultMinTextLen = 16

// Outcome of a successful run.
type Outcome struct {
	Feedback   llm.Feedback
	Extraction extract.Result
}

// Screener orchestrates the stages. One Screener serves many concurrent
// runs; it holds no per-run state beyond the invocation counters.
type Screener struct {
	fetcher   Fetcher
	embedded  extract.TextExtractor
	ocr       extract.TextExtractor
	evaluator llm.Evaluator
	cfg       Config
	logger    *slog.Logger
	stats     stats
}

func NewScreener(fetcher Fetcher, embedded, ocr extract.TextExtractor, evaluator llm.Evaluator, cfg Config, logger *slog.Logger) *Screener {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	if cfg.OCRTimeout <= 0 {
		cfg.OCRTimeout = 2 * time.Minute
	}
	if cfg.EvalTimeout <= 0 {
		cfg.EvalTimeout = 45 * time.Second
	}
	if cfg.FetchRetries < 0 {
		cfg.FetchRetries = 0
	}
	if cfg.MinTextLen <= 0 {
		cfg.MinTextLen = DefaultMinTextLen
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Screener{
		fetcher:   fetcher,
		embedded:  embedded,
		ocr:       ocr,
		evaluator: evaluator,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run executes one screening. documentURL must be an absolute http(s) URL;
// job fields are included in the prompt verbatim. The error, if non-nil,
// is always a *Error.
var errNotPDF = errors.New("document does not start with the PDF signature")

func (s *Screener) Run(ctx context.Context, documentURL string, job llm.JobContext) (Outcome, error) {
	start := time.Now()

	log := s.logger
	if rid := common.RequestIDFromContext(ctx); rid != "" {
		log = log.With("request_id", rid)
	}
	if aid := common.ApplicationIDFromContext(ctx); aid != "" {
		log = log.With("application_id", aid)
	}

	// fetch: a single retrieval per attempt, bounded caller-side retry
	// on transient transport failures only.
	s.stats.fetch.Add(1)
	rc := fetch.DefaultRetryConfig
	rc.MaxRetries = s.cfg.FetchRetries
	fetchCtx, cancelFetch := common.WithTimeout(ctx, s.cfg.FetchTimeout*time.Duration(1+s.cfg.FetchRetries))
	doc, err := fetch.Retry(fetchCtx, rc, func() (*fetch.Document, error) {
		return s.fetcher.Fetch(fetchCtx, documentURL)
	})
	cancelFetch()
	if err != nil {
		kind := KindFetchFailed
		if errors.Is(err, fetch.ErrInvalidReference) {
			kind = KindInvalidReference
		}
		log.Error("pipeline.fetch.failed", "url", documentURL, "kind", string(kind), "err", err)
		return Outcome{}, &Error{Kind: kind, Stage: StageFetch, Cause: err}
	}
	log.Info("pipeline.fetch.ok", "url", documentURL, "bytes", len(doc.Data))

	// Anything without the %PDF- signature is malformed before an
	// extraction pass ever runs.
	if !constants.IsPDF(doc.Data) {
		log.Error("pipeline.extract.failed", "url", documentURL, "content_type", doc.ContentType, "err", errNotPDF)
		return Outcome{}, &Error{Kind: KindMalformedDocument, Stage: StageEmbedded, Cause: errNotPDF}
	}

	// embedded pass: the document's own text layer.
	s.stats.embedded.Add(1)
	res, err := s.embedded.Extract(ctx, doc.Data)
	if err != nil {
		log.Error("pipeline.extract.failed", "url", documentURL, "err", err)
		return Outcome{}, &Error{Kind: KindMalformedDocument, Stage: StageEmbedded, Cause: err}
	}

	// ocr fallback, only when the embedded pass found no usable text
	if !extract.HasUsableText(res.Text, s.cfg.MinTextLen) {
		s.stats.ocr.Add(1)
		ocrCtx, cancelOCR := common.WithTimeout(ctx, s.cfg.OCRTimeout)
		res, err = s.ocr.Extract(ocrCtx, doc.Data)
		cancelOCR()
		if err != nil {
			log.Error("pipeline.ocr.failed", "url", documentURL, "err", err)
			return Outcome{}, &Error{Kind: KindOCRFailed, Stage: StageOCR, Cause: err}
		}
		if !extract.HasUsableText(res.Text, s.cfg.MinTextLen) {
			log.Warn("pipeline.ocr.no_text", "url", documentURL, "pages", res.PageCount)
			return Outcome{}, &Error{Kind: KindNoTextExtracted, Stage: StageOCR}
		}
	}
	// doc bytes are not needed past this point; drop the reference so the
	// buffer is collectable while the oracle call is in flight.
	doc = nil
	log.Info("pipeline.extract.ok",
		"url", documentURL,
		"source", string(res.Source),
		"pages", res.PageCount,
		"chars", len(res.Text),
	)

	// evaluate: exactly one oracle call.
	s.stats.evaluate.Add(1)
	evalCtx, cancelEval := common.WithTimeout(ctx, s.cfg.EvalTimeout)
	fb, err := s.evaluator.Evaluate(evalCtx, llm.EvaluationRequest{ResumeText: res.Text, Job: job})
	cancelEval()
	if err != nil {
		kind := KindOracleUnavailable
		if errors.Is(err, llm.ErrOracleRejected) {
			kind = KindOracleRejected
		}
		log.Error("pipeline.evaluate.failed", "url", documentURL, "kind", string(kind), "err", err)
		return Outcome{}, &Error{Kind: kind, Stage: StageEvaluate, Cause: err}
	}

	log.Info("pipeline.done",
		"url", documentURL,
		"source", string(res.Source),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Outcome{Feedback: fb, Extraction: res}, nil
}
