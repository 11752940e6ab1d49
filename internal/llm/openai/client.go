// Package openai implements llm.Evaluator against any OpenAI-compatible
// chat/completions endpoint.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/resume-screener/internal/common"
	"github.com/joseph-ayodele/resume-screener/internal/llm"
)

// Evaluate composes the screening prompt and performs exactly one oracle
// call. Transport problems map to llm.ErrOracleUnavailable; a completion
// that is empty, refused, or fails schema validation (even after the
// lenient sanitize pass) maps to llm.ErrOracleRejected.
func (c *Client) Evaluate(ctx context.Context, req llm.EvaluationRequest) (llm.Feedback, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	start := time.Now()

	resumeText := llm.NormalizeResumeText(req.ResumeText, c.cfg.MaxResumeChars)
	schema := llm.BuildFeedbackJSONSchema()
	sys := llm.BuildSystemPrompt()
	user := llm.BuildUserPrompt(req.Job, resumeText)

	c.logger.Info("llm.evaluate.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"resume_chars", len(resumeText),
		"description_chars", len(req.Job.Description),
		"preferences_chars", len(req.Job.Preferences),
	)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"max_tokens":      c.cfg.MaxTokens,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": sys + "\n\nJSON Schema:\n" + mustJSON(schema)},
			{"role": "user", "content": user},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, status, httpErr := llm.PostJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if httpErr != nil {
		c.logger.Error("llm.evaluate.http_error",
			"req_id", rid, "status", status, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Feedback{}, fmt.Errorf("%w: %v", llm.ErrOracleUnavailable, httpErr)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.evaluate.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Feedback{}, fmt.Errorf("%w: decode response: %v", llm.ErrOracleRejected, err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.evaluate.no_choices", "req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds())
		return llm.Feedback{}, fmt.Errorf("%w: no choices", llm.ErrOracleRejected)
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	if content == "" {
		return llm.Feedback{}, fmt.Errorf("%w: empty completion", llm.ErrOracleRejected)
	}
	rawContent := []byte(content)

	// Validate strictly first, then try the lenient sanitize pass.
	if err := llm.ValidateJSONAgainstSchema(schema, rawContent); err != nil {
		if !c.cfg.LenientJSON {
			c.logger.Error("llm.evaluate.schema_validation_failed",
				"req_id", rid, "error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return llm.Feedback{}, fmt.Errorf("%w: %v", llm.ErrOracleRejected, err)
		}
		cleaned, adjusted, sErr := llm.SanitizeFeedbackJSON(rawContent, c.logger)
		if sErr != nil {
			return llm.Feedback{}, fmt.Errorf("%w: sanitize: %v", llm.ErrOracleRejected, sErr)
		}
		if vErr := llm.ValidateJSONAgainstSchema(schema, cleaned); vErr != nil {
			c.logger.Error("llm.evaluate.schema_validation_failed",
				"req_id", rid, "error", vErr, "adjusted", adjusted,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return llm.Feedback{}, fmt.Errorf("%w: %v", llm.ErrOracleRejected, vErr)
		}
		rawContent = cleaned
	}

	var sections llm.FeedbackSections
	if err := json.Unmarshal(rawContent, &sections); err != nil {
		return llm.Feedback{}, fmt.Errorf("%w: unmarshal sections: %v", llm.ErrOracleRejected, err)
	}

	fb := llm.Feedback{
		Text:     llm.RenderFeedback(sections),
		Sections: sections,
		Model:    c.cfg.Model,
		Raw:      rawContent,
	}
	c.logger.Info("llm.evaluate.ok",
		"req_id", rid,
		"feedback_chars", len(fb.Text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return fb, nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
