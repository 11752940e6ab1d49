package server

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/joseph-ayodele/resume-screener/internal/repository"
)

// Healthz is the liveness and readiness probe. With a pool configured it
// pings the database; without one (local sqlite mode) it reports ok.
func (h *Handlers) Healthz(c *fiber.Ctx) error {
	if h.pool == nil {
		return respondJSON(c, http.StatusOK, fiber.Map{"status": "ok"})
	}
	if err := repository.HealthCheck(c.Context(), h.pool, 2*time.Second, h.logger); err != nil {
		h.logger.Error("database ping failed", "error", err)
		return respondJSON(c, http.StatusServiceUnavailable, fiber.Map{
			"status":  "not_ready",
			"details": err.Error(),
		})
	}
	return respondJSON(c, http.StatusOK, fiber.Map{"status": "ok"})
}
