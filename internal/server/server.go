package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/resume-screener/internal/async"
	"github.com/joseph-ayodele/resume-screener/internal/export"
	"github.com/joseph-ayodele/resume-screener/internal/services/screening"
)

// Handlers bundles everything the HTTP surface needs.
type Handlers struct {
	svc    *screening.Service
	queue  *async.ScreeningQueue
	export *export.Service
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewHandlers(svc *screening.Service, queue *async.ScreeningQueue, exp *export.Service, pool *pgxpool.Pool, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{svc: svc, queue: queue, export: exp, pool: pool, logger: logger}
}

// New builds the Fiber app and wires all routes onto it.
func New(h *Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "resume-screener",
		DisableStartupMessage: true,
	})

	app.Get("/healthz", h.Healthz)

	api := app.Group("/api")
	v1 := api.Group("/v1")

	sc := v1.Group("/screenings")
	sc.Post("/", h.Screen)
	sc.Post("/batch", h.ScreenBatch)
	sc.Get("/export", h.Export)
	sc.Get("/:id/status", h.ScreeningStatus)

	v1.Get("/applications/:id/feedback", h.GetFeedback)

	return app
}
