package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/resume-screener/internal/async"
	"github.com/joseph-ayodele/resume-screener/internal/common"
	"github.com/joseph-ayodele/resume-screener/internal/entity"
	"github.com/joseph-ayodele/resume-screener/internal/services/screening"
)

// ScreeningRequest is the submission body.
type ScreeningRequest struct {
	ApplicationID  string `json:"application_id"`
	ResumeURL      string `json:"resume_url"`
	JobDescription string `json:"job_description"`
	JobPreferences string `json:"job_preferences"`
}

// FeedbackResponse is the stored screening result.
type FeedbackResponse struct {
	ApplicationID string          `json:"application_id"`
	Feedback      string          `json:"feedback"`
	Sections      json.RawMessage `json:"sections,omitempty"`
	TextSource    string          `json:"text_source"`
	PageCount     int             `json:"page_count"`
	Model         string          `json:"model"`
	EvaluatedAt   string          `json:"evaluated_at"`
}

func toFeedbackResponse(fb *entity.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ApplicationID: fb.ApplicationID.String(),
		Feedback:      fb.FeedbackText,
		Sections:      fb.SectionsJSON,
		TextSource:    fb.TextSource,
		PageCount:     fb.PageCount,
		Model:         fb.Model,
		EvaluatedAt:   fb.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Screen runs one screening synchronously and returns the persisted feedback.
func (h *Handlers) Screen(c *fiber.Ctx) error {
	var req ScreeningRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid JSON body")
	}

	ctx := common.WithRequestID(c.UserContext(), uuid.NewString())
	ctx = common.WithApplicationID(ctx, strings.TrimSpace(req.ApplicationID))
	fb, err := h.svc.Screen(ctx, screening.Request{
		ApplicationID:  req.ApplicationID,
		ResumeURL:      req.ResumeURL,
		JobDescription: req.JobDescription,
		JobPreferences: req.JobPreferences,
	})
	if err != nil {
		if errors.Is(err, common.ErrInvalidInput) {
			return respondError(c, http.StatusBadRequest, err.Error())
		}
		h.logger.Error("screening request failed", "application_id", req.ApplicationID, "error", err)
		return respondPipelineError(c, err)
	}
	return respondJSON(c, http.StatusOK, toFeedbackResponse(fb))
}

// BatchResponse lists the ids accepted for asynchronous processing.
type BatchResponse struct {
	Accepted []string `json:"accepted"`
	Rejected []string `json:"rejected,omitempty"`
}

// ScreenBatch enqueues many submissions and returns immediately.
func (h *Handlers) ScreenBatch(c *fiber.Ctx) error {
	var reqs []ScreeningRequest
	if err := c.BodyParser(&reqs); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid JSON body: expected an array of submissions")
	}
	if len(reqs) == 0 {
		return respondError(c, http.StatusBadRequest, "empty batch")
	}

	var resp BatchResponse
	for _, req := range reqs {
		sreq := screening.Request{
			ApplicationID:  req.ApplicationID,
			ResumeURL:      req.ResumeURL,
			JobDescription: req.JobDescription,
			JobPreferences: req.JobPreferences,
		}
		appID, err := sreq.Validate()
		if err != nil {
			resp.Rejected = append(resp.Rejected, req.ApplicationID)
			continue
		}
		if err := h.queue.Enqueue(c.Context(), async.Job{
			ApplicationID: appID,
			Request:       sreq,
			SubmittedAt:   time.Now(),
			RequestID:     uuid.NewString(),
		}); err != nil {
			resp.Rejected = append(resp.Rejected, req.ApplicationID)
			continue
		}
		resp.Accepted = append(resp.Accepted, appID.String())
	}
	return respondJSON(c, http.StatusAccepted, resp)
}

// ScreeningStatus reports the queue state for a batch submission.
func (h *Handlers) ScreeningStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "id must be a UUID")
	}
	st, ok := h.queue.Status(id)
	if !ok {
		return respondError(c, http.StatusNotFound, "no screening tracked for this application")
	}
	return respondJSON(c, http.StatusOK, fiber.Map{
		"application_id": id.String(),
		"status":         string(st),
	})
}

// GetFeedback returns the stored feedback for an application.
func (h *Handlers) GetFeedback(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "id must be a UUID")
	}
	fb, err := h.svc.GetFeedback(c.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "no feedback stored for this application")
		}
		h.logger.Error("get feedback failed", "application_id", id, "error", err)
		return respondError(c, http.StatusInternalServerError, "failed to load feedback")
	}
	return respondJSON(c, http.StatusOK, toFeedbackResponse(fb))
}
