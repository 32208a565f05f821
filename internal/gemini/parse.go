package gemini

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/jwozniak/invoice-extract/internal/extract"
)

// replySchema mirrors the JSON shape the prompt instructs the model to
// return.
type replySchema struct {
	InvoiceDateRaw   *string  `json:"invoice_date_raw"`
	InvoiceDateISO   *string  `json:"invoice_date_iso"`
	ShortDescription string   `json:"short_description"`
	Confidence       *float64 `json:"confidence"`
	Notes            *string  `json:"notes"`
}

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractJSONObject pulls the JSON object out of a model reply,
// handling markdown fences and surrounding prose.
func ExtractJSONObject(text string) (string, error) {
	stripped := strings.TrimSpace(text)

	if m := fencedJSON.FindStringSubmatch(stripped); m != nil {
		return m[1], nil
	}

	start := strings.Index(stripped, "{")
	end := strings.LastIndex(stripped, "}")
	if start == -1 || end <= start {
		return "", fmt.Errorf("no JSON object in model reply")
	}
	return stripped[start : end+1], nil
}

// ParseReply validates a raw model reply into a vision reply. Any
// structural problem is a vision_malformed extraction error.
func ParseReply(text string) (*extract.VisionReply, error) {
	raw, err := ExtractJSONObject(text)
	if err != nil {
		return nil, extract.NewError(extract.KindVisionMalformed, err)
	}

	var schema replySchema
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		return nil, extract.NewError(extract.KindVisionMalformed, fmt.Errorf("model reply is not valid JSON: %w", err))
	}

	description := strings.Join(strings.Fields(schema.ShortDescription), " ")
	if description == "" {
		return nil, extract.NewError(extract.KindVisionMalformed, fmt.Errorf("model reply has empty short_description"))
	}

	reply := &extract.VisionReply{Description: description}
	if schema.InvoiceDateRaw != nil {
		reply.DateRaw = strings.TrimSpace(*schema.InvoiceDateRaw)
	}
	if schema.InvoiceDateISO != nil {
		reply.DateISO = strings.TrimSpace(*schema.InvoiceDateISO)
	}
	if schema.Notes != nil {
		reply.Notes = strings.TrimSpace(*schema.Notes)
	}
	if schema.Confidence != nil {
		c := *schema.Confidence
		if c < 0 {
			c = 0
		}
		if c > 1 {
			c = 1
		}
		reply.Confidence = c
	}
	return reply, nil
}
