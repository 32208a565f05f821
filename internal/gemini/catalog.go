package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// CatalogError reports a failed model-listing request. It is fatal for
// the listing path only and independent of extraction.
type CatalogError struct {
	Err error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("model catalog listing failed: %v", e.Err)
}

func (e *CatalogError) Unwrap() error { return e.Err }

// ModelInfo is the read-only public view of one catalog entry. Token
// limits are best-effort; the API may omit them.
type ModelInfo struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"display_name"`
	Description                string   `json:"description"`
	InputTokenLimit            int      `json:"input_token_limit"`
	OutputTokenLimit           int      `json:"output_token_limit"`
	SupportedGenerationMethods []string `json:"supported_generation_methods"`
	Version                    string   `json:"version,omitempty"`
}

// Catalog is the JSON shape of the --list-models output.
type Catalog struct {
	Source    string      `json:"source"`
	Count     int         `json:"count"`
	QuotaNote string      `json:"quota_note"`
	Models    []ModelInfo `json:"models"`
}

const quotaNote = "The public models list typically exposes model metadata and token limits, " +
	"but not project/account quota usage or remaining quota."

// ListModels fetches the model catalog and applies the filter. Catalog
// order is preserved as delivered by the API.
func (c *Client) ListModels(ctx context.Context, nameSubstring string, includeNonGemini bool) (*Catalog, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	cl, err := genai.NewClient(ctx, option.WithAPIKey(c.APIKey))
	if err != nil {
		return nil, &CatalogError{Err: fmt.Errorf("init client: %w", err)}
	}
	defer func() { _ = cl.Close() }()

	var models []ModelInfo
	it := cl.ListModels(ctx)
	for {
		info, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, &CatalogError{Err: err}
		}
		models = append(models, ModelInfo{
			Name:                       info.Name,
			DisplayName:                info.DisplayName,
			Description:                info.Description,
			InputTokenLimit:            int(info.InputTokenLimit),
			OutputTokenLimit:           int(info.OutputTokenLimit),
			SupportedGenerationMethods: info.SupportedGenerationMethods,
			Version:                    info.Version,
		})
	}

	filtered := FilterModels(models, nameSubstring, includeNonGemini)
	return &Catalog{
		Source:    "gemini_api",
		Count:     len(filtered),
		QuotaNote: quotaNote,
		Models:    filtered,
	}, nil
}

// FilterModels returns the subset of models matching the filter flags.
// Matching is a case-insensitive substring check against name and
// display name; non-Gemini entries are excluded unless requested.
// Input ordering is preserved.
func FilterModels(models []ModelInfo, nameSubstring string, includeNonGemini bool) []ModelInfo {
	needle := strings.ToLower(strings.TrimSpace(nameSubstring))
	filtered := make([]ModelInfo, 0, len(models))
	for _, m := range models {
		searchable := strings.ToLower(m.Name + " " + m.DisplayName)
		if !includeNonGemini && !strings.Contains(searchable, "gemini") {
			continue
		}
		if needle != "" && !strings.Contains(searchable, needle) {
			continue
		}
		filtered = append(filtered, m)
	}
	return filtered
}
