// Package ingest provides the document-side capabilities of the
// pipeline: embedded text extraction, page rendering and input path
// validation.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/jwozniak/invoice-extract/internal/extract"
	"github.com/jwozniak/invoice-extract/internal/logger"
)

// Error wraps a document read or render failure.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pdf ingest %q: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ValidatePath checks that path points at an existing regular .pdf file.
func ValidatePath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("PDF file not found: %s", path)
		}
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is not a file: %s", path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("expected a .pdf file, got: %s", filepath.Base(path))
	}
	return nil
}

// TextProbe extracts embedded text with ledongthuc/pdf and judges
// whether it is usable. It implements extract.TextProbe.
type TextProbe struct {
	// MaxTextBytes clips the combined text before normalization.
	// Zero means no clipping.
	MaxTextBytes int
}

// ExtractText reads at most maxPages pages of embedded text. Read
// failures (corrupted stream, encrypted document) come back as an
// insufficient probe, never an error, so the caller can fall back.
func (p *TextProbe) ExtractText(path string, maxPages int) (*extract.ProbeResult, error) {
	if maxPages < 1 {
		maxPages = 1
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		logger.Debug("embedded text extraction failed", "path", path, "error", err)
		return &extract.ProbeResult{Reason: fmt.Sprintf("cannot read PDF: %v", err)}, nil
	}
	defer func() { _ = f.Close() }()

	totalPages := reader.NumPage()
	pageCount := totalPages
	if pageCount > maxPages {
		pageCount = maxPages
	}

	pageTexts := make([]string, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pageTexts = append(pageTexts, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pageTexts = append(pageTexts, "")
			continue
		}
		pageTexts = append(pageTexts, text)
	}

	pageTexts = clipPages(pageTexts, p.MaxTextBytes)
	combined := combinePages(pageTexts)
	quality := ScoreTextQuality(combined)

	result := &extract.ProbeResult{
		PageTexts:  pageTexts,
		Combined:   combined,
		Quality:    quality,
		TotalPages: totalPages,
		Sufficient: UsableText(quality),
	}
	if !result.Sufficient {
		result.Reason = fmt.Sprintf("text quality %.2f below threshold %.2f", quality, minUsableQuality)
	}
	return result, nil
}

// clipPages enforces a cumulative byte budget across page texts so the
// combined text and the per-page sequence stay consistent. Cuts land
// on rune boundaries, never inside a multi-byte character.
func clipPages(pageTexts []string, budget int) []string {
	if budget <= 0 {
		return pageTexts
	}
	remaining := budget
	clipped := make([]string, 0, len(pageTexts))
	for _, t := range pageTexts {
		if remaining <= 0 {
			clipped = append(clipped, "")
			continue
		}
		if len(t) > remaining {
			cut := remaining
			for cut > 0 && !utf8.RuneStart(t[cut]) {
				cut--
			}
			t = t[:cut]
		}
		remaining -= len(t)
		clipped = append(clipped, t)
	}
	return clipped
}

func combinePages(pageTexts []string) string {
	parts := make([]string, 0, len(pageTexts))
	for _, t := range pageTexts {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, "\n")
}
