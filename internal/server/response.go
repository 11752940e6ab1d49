package server

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/joseph-ayodele/resume-screener/internal/pipeline"
)

// ErrorResponse is the JSON error envelope for every failure.
type ErrorResponse struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

func respondJSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return respondJSON(c, status, ErrorResponse{Message: message})
}

// respondPipelineError maps an error kind to its HTTP status and the
// distinct user-facing message for that kind.
func respondPipelineError(c *fiber.Ctx, err error) error {
	kind := pipeline.KindOf(err)
	return respondJSON(c, httpStatusFor(kind), ErrorResponse{
		Message: kind.Message(),
		Kind:    string(kind),
	})
}

func httpStatusFor(kind pipeline.Kind) int {
	switch kind {
	case pipeline.KindInvalidReference, pipeline.KindMalformedDocument, pipeline.KindNoTextExtracted:
		return http.StatusUnprocessableEntity
	case pipeline.KindFetchFailed, pipeline.KindOCRFailed, pipeline.KindOracleRejected:
		return http.StatusBadGateway
	case pipeline.KindOracleUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
