package pdfext

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"manual-assistant/internal/domain"
)

// Extractor reads equipment manuals in PDF form and returns their
// text page by page, preserving page numbers for citations.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

func (e *Extractor) Extract(ctx context.Context, path string) ([]domain.PageText, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	total := r.NumPage()
	var pages []domain.PageText
	skipped := 0
	for n := 1; n <= total; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := r.Page(n)
		if page.V.IsNull() {
			skipped++
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Scanned or malformed pages are common in vendor
			// manuals; keep going and report what was readable.
			skipped++
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			skipped++
			continue
		}
		pages = append(pages, domain.PageText{Number: n, Text: text})
	}

	e.logger.Info("pdf_extracted",
		slog.String("path", path),
		slog.Int("total_pages", total),
		slog.Int("text_pages", len(pages)),
		slog.Int("skipped_pages", skipped))

	if len(pages) == 0 {
		return nil, fmt.Errorf("no extractable text in %s", path)
	}
	return pages, nil
}

var _ domain.ManualExtractor = (*Extractor)(nil)
