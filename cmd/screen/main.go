package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/resume-screener/internal/common"
	"github.com/joseph-ayodele/resume-screener/internal/extract"
	"github.com/joseph-ayodele/resume-screener/internal/fetch"
	"github.com/joseph-ayodele/resume-screener/internal/llm/openai"
	"github.com/joseph-ayodele/resume-screener/internal/ocr"
	"github.com/joseph-ayodele/resume-screener/internal/pipeline"
	repo "github.com/joseph-ayodele/resume-screener/internal/repository"
	"github.com/joseph-ayodele/resume-screener/internal/services/screening"
)

// screen runs one screening end to end against a local sqlite store.
// Useful for trying a resume without standing up postgres.
func main() {
	_ = godotenv.Load()

	var (
		appID    = flag.String("application", "", "application UUID (generated when empty)")
		url      = flag.String("url", "", "resume PDF URL (required)")
		jobDesc  = flag.String("job", "", "job description text")
		jobPrefs = flag.String("prefs", "", "job preferences text")
		dbPath   = flag.String("db", "screenings.db", "sqlite store path")
		timeout  = flag.Duration("timeout", 3*time.Minute, "overall run timeout")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *url == "" {
		logger.Error("usage: screen -url <resume-pdf-url> [-application <uuid>] [-job <text>] [-prefs <text>]")
		os.Exit(2)
	}
	id := *appID
	if id == "" {
		id = uuid.NewString()
	}

	cfg := common.LoadConfig()
	if cfg.LLM.APIKey == "" {
		logger.Error("OPENAI_API_KEY env var is required")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, err := repo.OpenSQLite(ctx, *dbPath, logger)
	if err != nil {
		logger.Error("open sqlite store", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("close sqlite store", "error", cerr)
		}
	}()

	fetcher := fetch.NewClient(fetch.Config{
		Timeout:  cfg.Fetch.Timeout,
		MaxBytes: cfg.Fetch.MaxBytes,
	}, logger)
	embedded := extract.NewPDFExtractor(logger)
	ocrAdapter := extract.NewOCRAdapter(ocr.NewExtractor(ocr.Config{
		Pdftoppm:  cfg.OCR.Pdftoppm,
		Tesseract: cfg.OCR.Tesseract,
		Lang:      cfg.OCR.Lang,
		DPI:       cfg.OCR.DPI,
		MaxPages:  cfg.OCR.MaxPages,
	}, logger))
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

	svc := screening.NewService(screener, store, logger)
	fb, err := svc.Screen(ctx, screening.Request{
		ApplicationID:  id,
		ResumeURL:      *url,
		JobDescription: *jobDesc,
		JobPreferences: *jobPrefs,
	})
	if err != nil {
		kind := pipeline.KindOf(err)
		logger.Error("screening failed", "application_id", id, "kind", string(kind), "error", err)
		fmt.Fprintln(os.Stderr, kind.Message())
		os.Exit(1)
	}

	fmt.Printf("application: %s\nsource: %s  pages: %d  model: %s\n\n%s\n",
		fb.ApplicationID, fb.TextSource, fb.PageCount, fb.Model, fb.FeedbackText)
}
