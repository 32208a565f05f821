// Package gemini implements the vision extraction and model catalog
// capabilities on top of the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/jwozniak/invoice-extract/internal/extract"
	"github.com/jwozniak/invoice-extract/internal/logger"
)

// Client invokes the Gemini API for vision extraction and catalog
// listing. One attempt per invocation; retries are the caller's call.
type Client struct {
	APIKey  string
	Model   string
	Locale  string
	Timeout time.Duration
}

// NewClient validates the credential and returns a client.
func NewClient(apiKey, model, locale string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini API key is not set")
	}
	return &Client{
		APIKey:  strings.TrimSpace(apiKey),
		Model:   strings.TrimSpace(model),
		Locale:  locale,
		Timeout: timeout,
	}, nil
}

// ExtractFromImages sends rendered page images with the locale-aware
// prompt and parses the structured reply. It implements
// extract.VisionExtractor.
func (c *Client) ExtractFromImages(ctx context.Context, images [][]byte) (*extract.VisionReply, error) {
	if len(images) == 0 {
		return nil, extract.NewError(extract.KindVisionUnavailable, fmt.Errorf("no images to send"))
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	cl, err := genai.NewClient(ctx, option.WithAPIKey(c.APIKey))
	if err != nil {
		return nil, extract.NewError(extract.KindVisionUnavailable, fmt.Errorf("init client: %w", err))
	}
	defer func() { _ = cl.Close() }()

	model := cl.GenerativeModel(c.Model)
	temperature := float32(0.1)
	model.GenerationConfig = genai.GenerationConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
	}

	parts := make([]genai.Part, 0, len(images)+1)
	parts = append(parts, genai.Text(BuildVisionPrompt(c.Locale)))
	for _, img := range images {
		parts = append(parts, genai.ImageData("png", img))
	}

	logger.Debug("invoking gemini vision", "model", c.Model, "images", len(images), "timeout", c.Timeout)

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, extract.NewError(extract.KindVisionUnavailable, fmt.Errorf("generate content: %w", err))
	}

	text := firstText(resp)
	if text == "" {
		return nil, extract.NewError(extract.KindVisionMalformed, fmt.Errorf("model returned an empty reply"))
	}
	return ParseReply(text)
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok && strings.TrimSpace(string(text)) != "" {
				return string(text)
			}
		}
	}
	return ""
}
