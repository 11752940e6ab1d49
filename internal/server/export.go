package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Export streams the stored feedback as an XLSX workbook.
// Optional from/to query params ("2006-01-02") bound the window by the
// time each row was last evaluated.
func (h *Handlers) Export(c *fiber.Ctx) error {
	parseDate := func(s string) (*time.Time, error) {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", s, err)
		}
		return &t, nil
	}

	from, err := parseDate(c.Query("from"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	data, err := h.export.ExportFeedbackXLSX(c.Context(), from, to)
	if err != nil {
		h.logger.Error("export failed", "error", err)
		return respondError(c, http.StatusInternalServerError, "export failed")
	}

	filename := fmt.Sprintf("screenings-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Status(http.StatusOK).Send(data)
}
