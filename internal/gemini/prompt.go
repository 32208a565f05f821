package gemini

import (
	"fmt"
	"strings"
)

// BuildVisionPrompt builds the instruction sent alongside rendered page
// images. The model must answer with JSON only, matching the reply
// schema parsed by ParseReply.
func BuildVisionPrompt(locale string) string {
	return buildPrompt("Extract invoice metadata from the provided invoice page images (OCR and interpret).", locale)
}

func buildPrompt(taskIntro, locale string) string {
	return fmt.Sprintf(`%s

Return JSON only with this schema:
{
  "invoice_date_raw": string | null,
  "invoice_date_iso": string | null,
  "short_description": string,
  "confidence": number,
  "notes": string | null
}

Rules:
- Prefer invoice issue date over due date or service date when present.
- If ambiguous, choose the best guess, lower confidence, and explain in notes.
- short_description must describe the purchased item/service, not the vendor, and be 5 words or fewer.
- If the item/service is unclear, use a generic but useful label.
- %s
`, taskIntro, languageRule(locale))
}

func languageRule(locale string) string {
	normalized := strings.ToLower(strings.TrimSpace(locale))
	if normalized == "" {
		normalized = "pl"
	}
	switch {
	case strings.HasPrefix(normalized, "pl"):
		return "Write short_description in Polish whenever possible (e.g., 'filtr', 'kawa')."
	case strings.HasPrefix(normalized, "en"):
		return "Write short_description in English."
	default:
		return fmt.Sprintf("Write short_description in locale '%s' whenever possible.", normalized)
	}
}
