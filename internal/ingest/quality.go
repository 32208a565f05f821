package ingest

import (
	"strings"
	"unicode"
)

const minUsableQuality = 0.45

// Markers that strongly suggest the embedded text layer is the real
// invoice content rather than OCR noise or vector garbage.
var invoiceHints = []string{
	"invoice",
	"invoice date",
	"bill to",
	"total",
	"subtotal",
	"amount due",
	"due date",
	"tax",
}

// ScoreTextQuality rates extracted text in [0,1]. Weighted blend of
// length, printable-character ratio, invoice hint hits and
// alphanumeric density.
func ScoreTextQuality(text string) float64 {
	stripped := strings.TrimSpace(text)
	if stripped == "" {
		return 0
	}

	runes := []rune(stripped)
	total := float64(len(runes))

	lengthScore := float64(len(stripped)) / 1500.0
	if lengthScore > 1 {
		lengthScore = 1
	}

	printable := 0
	alnum := 0
	for _, r := range runes {
		if r == '\n' || r == '\t' || (r >= ' ' && r < unicode.MaxASCII) {
			printable++
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}

	lowered := strings.ToLower(stripped)
	hints := 0
	for _, hint := range invoiceHints {
		if strings.Contains(lowered, hint) {
			hints++
		}
	}
	hintScore := float64(hints) / 4.0
	if hintScore > 1 {
		hintScore = 1
	}

	score := 0.45*lengthScore +
		0.20*(float64(printable)/total) +
		0.25*hintScore +
		0.10*(float64(alnum)/total)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// UsableText reports whether the quality score clears the threshold
// below which the pipeline falls back to vision extraction.
func UsableText(score float64) bool {
	return score >= minUsableQuality
}
