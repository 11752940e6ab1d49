package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/resume-screener/internal/entity"
	"github.com/joseph-ayodele/resume-screener/internal/repository"
)

// Service is a tiny façade over the feedback repository that produces XLSX
// bytes for exports.
type Service struct {
	repo   repository.FeedbackRepository
	logger *slog.Logger
}

func NewService(repo repository.FeedbackRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportFeedbackXLSX returns an XLSX workbook (as bytes) for the given date window.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> all stored feedback.
func (s *Service) ExportFeedbackXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	// Normalize dates (date-only, UTC)
	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		// inclusive end of day
		t := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}

	rows, err := s.repo.ListFeedback(ctx, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}

	buf, err := buildWorkbook(rows)
	if err != nil {
		return nil, err
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf, nil
}

func buildWorkbook(rows []*entity.Feedback) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Screenings"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Application ID",
		"Evaluated At",
		"Text Source",
		"Pages",
		"Model",
		"Feedback",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	rowIdx := 2
	for _, r := range rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, rowIdx)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.ApplicationID.String())
		if !r.UpdatedAt.IsZero() {
			write(2, r.UpdatedAt.UTC().Format("2006-01-02 15:04"))
		} else {
			write(2, "")
		}
		write(3, r.TextSource)
		write(4, r.PageCount)
		write(5, r.Model)
		write(6, truncate(r.FeedbackText, 2000))

		rowIdx++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 38) // application id
	_ = f.SetColWidth(sheet, "B", "B", 18) // timestamp
	_ = f.SetColWidth(sheet, "C", "C", 12) // source
	_ = f.SetColWidth(sheet, "D", "D", 8)  // pages
	_ = f.SetColWidth(sheet, "E", "E", 18) // model
	_ = f.SetColWidth(sheet, "F", "F", 90) // feedback

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
