// Package extract implements the invoice extraction pipeline: the
// text-vs-vision decision, result normalization, and filename stub
// derivation.
package extract

import "strings"

// Method identifies which extraction path produced a result.
type Method string

const (
	MethodPDFText      Method = "pdf_text"
	MethodGeminiVision Method = "gemini_vision"
)

// Warning is a closed, enumerated quality annotation on a result.
// Downstream consumers branch on these codes; never free text.
type Warning string

const (
	WarnDateAmbiguous        Warning = "date-ambiguous"
	WarnDateMissing          Warning = "date-missing"
	WarnDescriptionTruncated Warning = "description-truncated"
	WarnDescriptionMissing   Warning = "description-missing"
	WarnLowConfidence        Warning = "low-confidence"
	WarnPageLimitExceeded    Warning = "page-limit-exceeded"
)

// Result is the final record for one processed invoice. Field names
// form a stable JSON contract for downstream tooling.
type Result struct {
	SourceFile            string    `json:"source_file" yaml:"source_file"`
	InvoiceDate           *string   `json:"invoice_date" yaml:"invoice_date"`
	InvoiceDateRaw        string    `json:"invoice_date_raw" yaml:"invoice_date_raw"`
	ShortDescription      string    `json:"short_description" yaml:"short_description"`
	ShortDescriptionWords int       `json:"short_description_words" yaml:"short_description_words"`
	FilenameStub          string    `json:"filename_stub" yaml:"filename_stub"`
	ExtractionMethod      Method    `json:"extraction_method" yaml:"extraction_method"`
	Confidence            float64   `json:"confidence" yaml:"confidence"`
	Warnings              []Warning `json:"warnings" yaml:"warnings"`
}

// HasWarning reports whether w is present on the result.
func (r *Result) HasWarning(w Warning) bool {
	for _, have := range r.Warnings {
		if have == w {
			return true
		}
	}
	return false
}

func countWords(s string) int {
	return len(strings.Fields(s))
}
