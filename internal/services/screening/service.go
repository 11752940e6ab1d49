package screening

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/resume-screener/internal/common"
	"github.com/joseph-ayodele/resume-screener/internal/entity"
	"github.com/joseph-ayodele/resume-screener/internal/llm"
	"github.com/joseph-ayodele/resume-screener/internal/pipeline"
	"github.com/joseph-ayodele/resume-screener/internal/repository"
)

var errMissingURL = errors.New("resume_url is required")

// Store is the subset of the feedback repository the service needs.
type Store interface {
	Upsert(ctx context.Context, req *repository.UpsertFeedbackRequest) (*entity.Feedback, error)
	GetByApplicationID(ctx context.Context, applicationID uuid.UUID) (*entity.Feedback, error)
}

// Service runs screenings end to end and persists the result.
type Service struct {
	screener *pipeline.Screener
	store    Store
	logger   *slog.Logger
}

func NewService(screener *pipeline.Screener, store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		screener: screener,
		store:    store,
		logger:   logger,
	}
}

// Request represents one screening submission.
type Request struct {
	ApplicationID  string
	ResumeURL      string
	JobDescription string
	JobPreferences string
}

// Validate checks the request shape without touching the network.
func (r *Request) Validate() (uuid.UUID, error) {
	appID, err := uuid.Parse(strings.TrimSpace(r.ApplicationID))
	if err != nil {
		return uuid.Nil, fmt.Errorf("application_id must be a UUID: %w", common.ErrInvalidInput)
	}
	raw := strings.TrimSpace(r.ResumeURL)
	if raw == "" {
		return uuid.Nil, &pipeline.Error{Kind: pipeline.KindInvalidReference, Stage: pipeline.StageFetch, Cause: errMissingURL}
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return uuid.Nil, &pipeline.Error{Kind: pipeline.KindInvalidReference, Stage: pipeline.StageFetch, Cause: err}
	}
	return appID, nil
}

// Screen runs the full pipeline for one application and upserts the result.
func (s *Service) Screen(ctx context.Context, req Request) (*entity.Feedback, error) {
	appID, err := req.Validate()
	if err != nil {
		s.logger.Error("invalid screening request", "application_id", req.ApplicationID, "error", err)
		return nil, err
	}

	s.logger.Info("starting screening", "application_id", appID, "resume_url", req.ResumeURL)
	outcome, err := s.screener.Run(ctx, strings.TrimSpace(req.ResumeURL), llm.JobContext{
		Description: req.JobDescription,
		Preferences: req.JobPreferences,
	})
	if err != nil {
		s.logger.Error("screening failed", "application_id", appID, "error", err)
		return nil, err
	}

	fb, err := s.store.Upsert(ctx, &repository.UpsertFeedbackRequest{
		ApplicationID: appID,
		FeedbackText:  outcome.Feedback.Text,
		SectionsJSON:  outcome.Feedback.Raw,
		TextSource:    string(outcome.Extraction.Source),
		PageCount:     outcome.Extraction.PageCount,
		Model:         outcome.Feedback.Model,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("screening completed", "application_id", appID,
		"text_source", fb.TextSource, "page_count", fb.PageCount, "model", fb.Model)
	return fb, nil
}

// GetFeedback returns the stored result for an application, if any.
func (s *Service) GetFeedback(ctx context.Context, applicationID uuid.UUID) (*entity.Feedback, error) {
	return s.store.GetByApplicationID(ctx, applicationID)
}
