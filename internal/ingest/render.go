package ingest

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

const renderDPI = 150

// PageRenderer rasterizes document pages to PNG bytes for the vision
// path. It implements extract.PageRenderer.
type PageRenderer struct{}

// RenderPages renders up to maxPages pages at a fixed DPI and reports
// the document's total page count alongside.
func (PageRenderer) RenderPages(path string, maxPages int) ([][]byte, int, error) {
	if maxPages < 1 {
		maxPages = 1
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, 0, &Error{Path: path, Err: err}
	}
	defer func() { _ = doc.Close() }()

	totalPages := doc.NumPage()
	pageCount := totalPages
	if pageCount > maxPages {
		pageCount = maxPages
	}

	images := make([][]byte, 0, pageCount)
	for i := 0; i < pageCount; i++ {
		png, err := doc.ImagePNG(i, renderDPI)
		if err != nil {
			return nil, totalPages, &Error{Path: path, Err: fmt.Errorf("render page %d: %w", i+1, err)}
		}
		images = append(images, png)
	}

	if len(images) == 0 {
		return nil, totalPages, &Error{Path: path, Err: fmt.Errorf("document has no pages")}
	}
	return images, totalPages, nil
}
