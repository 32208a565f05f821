package gemini

import (
	"strings"
	"testing"
)

func TestBuildVisionPrompt_LocaleRules(t *testing.T) {
	tests := []struct {
		locale string
		want   string
	}{
		{"pl", "Write short_description in Polish whenever possible"},
		{"en", "Write short_description in English."},
		{"en-GB", "Write short_description in English."},
		{"de", "Write short_description in locale 'de' whenever possible."},
		{"", "Write short_description in Polish whenever possible"},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			prompt := BuildVisionPrompt(tt.locale)
			if !strings.Contains(prompt, tt.want) {
				t.Errorf("prompt for locale %q missing %q", tt.locale, tt.want)
			}
		})
	}
}

func TestBuildVisionPrompt_SchemaFields(t *testing.T) {
	prompt := BuildVisionPrompt("pl")
	for _, field := range []string{"invoice_date_raw", "invoice_date_iso", "short_description", "confidence", "notes"} {
		if !strings.Contains(prompt, field) {
			t.Errorf("prompt missing schema field %q", field)
		}
	}
	if !strings.Contains(prompt, "5 words or fewer") {
		t.Error("prompt missing the word limit rule")
	}
}
