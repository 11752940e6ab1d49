package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ExtractPDF rasterizes the document and recognizes each page. It is
// invoked only after the embedded-text pass came back empty; running it on
// a text-bearing PDF wastes minutes of CPU.
func (e *Extractor) ExtractPDF(ctx context.Context, data []byte) (ExtractionResult, error) {
	start := time.Now()

	tmpDir, err := os.MkdirTemp("", "rs-ocr-*")
	if err != nil {
		return ExtractionResult{}, err
	}
	defer func() {
		if rerr := os.RemoveAll(tmpDir); rerr != nil {
			e.logger.Warn("ocr.tmpdir_cleanup_failed", "dir", tmpDir, "error", rerr)
		}
	}()

	src := filepath.Join(tmpDir, "doc.pdf")
	if err := os.WriteFile(src, data, 0o600); err != nil {
		return ExtractionResult{}, err
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <doc.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", strconv.Itoa(e.cfg.DPI), "-png", src, prefix)
	if err != nil {
		return ExtractionResult{Warnings: []string{string(errb)}}, fmt.Errorf("rasterize: %w", err)
	}

	// collect generated pngs (page-1.png, page-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return ExtractionResult{}, fmt.Errorf("rasterize: no pages rendered")
	}

	var b strings.Builder
	var warns []string
	recognized := 0
	for _, img := range matches {
		txt, w, err := e.tesseract(ctx, img)
		if err != nil {
			warns = append(warns, err.Error())
			continue
		}
		recognized++
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.WriteString(txt)
		warns = append(warns, w...)
	}
	if recognized == 0 {
		return ExtractionResult{Pages: len(matches), Warnings: warns},
			fmt.Errorf("recognize: all %d pages failed", len(matches))
	}

	res := ExtractionResult{
		Text:     b.String(),
		Pages:    len(matches),
		Language: e.cfg.Lang,
		Duration: time.Since(start),
		Warnings: warns,
	}
	e.logger.Debug("ocr.pdf.ok", "pages", res.Pages, "chars", len(res.Text),
		"elapsed_ms", res.Duration.Milliseconds())
	return res, nil
}

// tesseract runs recognition on a single rendered page image.
func (e *Extractor) tesseract(ctx context.Context, imgPath string) (string, []string, error) {
	args := []string{imgPath, "stdout", "-l", e.cfg.Lang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract %s: %w", filepath.Base(imgPath), err)
	}
	var warns []string
	if len(errb) > 0 {
		warns = append(warns, truncate(string(errb), 1<<10))
	}
	return string(out), warns, nil
}
