package extract

import (
	"context"
	"fmt"

	"github.com/jwozniak/invoice-extract/internal/logger"
)

// OCRMode selects between direct text extraction and vision fallback.
type OCRMode string

const (
	ModeAuto   OCRMode = "auto"
	ModeText   OCRMode = "text"
	ModeGemini OCRMode = "gemini"
)

// TextProbe is the direct text extraction capability. Insufficient
// output is reported via the Sufficient flag, not an error, so auto
// mode can fall back cleanly.
type TextProbe interface {
	ExtractText(path string, maxPages int) (*ProbeResult, error)
}

// ProbeResult is what the text probe saw in the document.
type ProbeResult struct {
	PageTexts  []string
	Combined   string
	Quality    float64
	TotalPages int
	Sufficient bool
	Reason     string
}

// PageRenderer turns document pages into images for the vision path.
type PageRenderer interface {
	RenderPages(path string, maxPages int) (images [][]byte, totalPages int, err error)
}

// VisionExtractor is the external vision capability.
type VisionExtractor interface {
	ExtractFromImages(ctx context.Context, images [][]byte) (*VisionReply, error)
}

// VisionReply is the structured reply parsed from the vision model.
type VisionReply struct {
	DateRaw     string
	DateISO     string
	Description string
	Confidence  float64
	Notes       string
}

// Options parameterizes one pipeline run.
type Options struct {
	Mode      OCRMode
	MaxPages  int
	DateOrder DateOrder
}

// Pipeline wires the probe, renderer and vision collaborators into the
// text-then-vision decision described by the OCR mode.
type Pipeline struct {
	Probe    TextProbe
	Renderer PageRenderer
	Vision   VisionExtractor
}

// Run processes a single document and returns the normalized result.
// sourceFile is the bare file name recorded on the result.
func (p *Pipeline) Run(ctx context.Context, path, sourceFile string, opts Options) (*Result, error) {
	var warnings []Warning

	if opts.Mode != ModeGemini {
		probe, err := p.Probe.ExtractText(path, opts.MaxPages)
		if err != nil {
			return nil, err
		}
		if probe.TotalPages > opts.MaxPages {
			warnings = append(warnings, WarnPageLimitExceeded)
		}
		logger.Debug("text probe finished",
			"pages", len(probe.PageTexts),
			"total_pages", probe.TotalPages,
			"quality", probe.Quality,
			"sufficient", probe.Sufficient)

		if probe.Sufficient {
			result := Normalize(RawOutput{PageTexts: probe.PageTexts}, sourceFile, MethodPDFText, opts.DateOrder, warnings)
			return &result, nil
		}
		if opts.Mode == ModeText {
			return nil, NewError(KindTextUnusable, fmt.Errorf("embedded text unusable: %s", probe.Reason))
		}
		logger.Debug("falling back to vision extraction", "reason", probe.Reason)
	}

	images, totalPages, err := p.Renderer.RenderPages(path, opts.MaxPages)
	if err != nil {
		return nil, err
	}
	if totalPages > opts.MaxPages && !hasWarning(warnings, WarnPageLimitExceeded) {
		warnings = append(warnings, WarnPageLimitExceeded)
	}
	logger.Debug("rendered pages for vision extraction", "images", len(images), "total_pages", totalPages)

	reply, err := p.Vision.ExtractFromImages(ctx, images)
	if err != nil {
		return nil, err
	}
	if reply.Notes != "" {
		logger.Debug("vision model notes", "notes", reply.Notes)
	}

	raw := RawOutput{
		DateRaw:        reply.DateRaw,
		DateISO:        reply.DateISO,
		Description:    reply.Description,
		ConfidenceHint: reply.Confidence,
	}
	result := Normalize(raw, sourceFile, MethodGeminiVision, opts.DateOrder, warnings)
	return &result, nil
}

func hasWarning(warnings []Warning, w Warning) bool {
	for _, have := range warnings {
		if have == w {
			return true
		}
	}
	return false
}
