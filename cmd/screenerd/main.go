package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/resume-screener/internal/async"
	"github.com/joseph-ayodele/resume-screener/internal/common"
	"github.com/joseph-ayodele/resume-screener/internal/export"
	"github.com/joseph-ayodele/resume-screener/internal/extract"
	"github.com/joseph-ayodele/resume-screener/internal/fetch"
	"github.com/joseph-ayodele/resume-screener/internal/llm/openai"
	"github.com/joseph-ayodele/resume-screener/internal/ocr"
	"github.com/joseph-ayodele/resume-screener/internal/pipeline"
	repo "github.com/joseph-ayodele/resume-screener/internal/repository"
	"github.com/joseph-ayodele/resume-screener/internal/server"
	"github.com/joseph-ayodele/resume-screener/internal/services/screening"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repo.Open(ctx, repo.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repo.Close(pool, logger)

	if err := repo.HealthCheck(ctx, pool, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if err := repo.EnsureSchema(ctx, pool, logger); err != nil {
		os.Exit(1)
	}

	feedbackRepo := repo.NewFeedbackRepository(pool, logger)

	fetcher := fetch.NewClient(fetch.Config{
		Timeout:  cfg.Fetch.Timeout,
		MaxBytes: cfg.Fetch.MaxBytes,
	}, logger)

	embedded := extract.NewPDFExtractor(logger)
	ocrExtractor := ocr.NewExtractor(ocr.Config{
		Pdftoppm:  cfg.OCR.Pdftoppm,
		Tesseract: cfg.OCR.Tesseract,
		Lang:      cfg.OCR.Lang,
		DPI:       cfg.OCR.DPI,
		MaxPages:  cfg.OCR.MaxPages,
	}, logger)
	ocrAdapter := extract.NewOCRAdapter(ocrExtractor)

	evaluator := openai.NewClient(openai.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Temperature:    cfg.LLM.Temperature,
		MaxTokens:      cfg.LLM.MaxTokens,
		Timeout:        cfg.LLM.Timeout,
		MaxResumeChars: cfg.Pipeline.MaxResumeChars,
		LenientJSON:    true,
	}, logger)

	screener := pipeline.NewScreener(fetcher, embedded, ocrAdapter, evaluator, pipeline.Config{
		FetchTimeout: cfg.Fetch.Timeout,
		OCRTimeout:   cfg.OCR.Timeout,
		EvalTimeout:  cfg.LLM.Timeout,
		FetchRetries: cfg.Fetch.Retries,
		MinTextLen:   cfg.Pipeline.MinTextLen,
	}, logger)

	svc := screening.NewService(screener, feedbackRepo, logger)
	queue := async.NewScreeningQueue(svc, logger,
		async.WithWorkers(cfg.Server.BatchWorkers),
		async.WithQueueSize(cfg.Server.BatchDepth),
	)
	exportSvc := export.NewService(feedbackRepo, logger)

	app := server.New(server.NewHandlers(svc, queue, exportSvc, pool, logger))

	logger.Info("resume-screener listening", "addr", cfg.Server.Addr)
	go func() {
		if err := app.Listen(cfg.Server.Addr); err != nil {
			logger.Error("http serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	queue.Shutdown(context.Background())
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
}
