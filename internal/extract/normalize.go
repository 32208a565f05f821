package extract

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxDescriptionWords = 5
	fallbackDescription = "item"

	baselinePDFText      = 0.9
	baselineGeminiVision = 0.7
	warningPenalty       = 0.1
	lowConfidenceFloor   = 0.5
)

// RawOutput is the tagged union of what the two extraction paths
// produce before normalization. Exactly one of the two shapes is set.
type RawOutput struct {
	// PageTexts is set by the direct text path.
	PageTexts []string

	// Reply fields are set by the vision path.
	DateRaw        string
	DateISO        string
	Description    string
	ConfidenceHint float64 // 0 when the model gave none
}

// Normalize turns a raw extraction output into the final result:
// canonical date, bounded description, confidence and warnings.
// Warnings passed in (e.g. page-limit-exceeded from the caller) are
// kept and count toward the confidence penalty.
func Normalize(raw RawOutput, sourceFile string, method Method, order DateOrder, warnings []Warning) Result {
	var (
		dateISO       string
		dateRaw       string
		dateAmbiguous bool
		dateFound     bool
		description   string
	)

	if len(raw.PageTexts) > 0 {
		combined := strings.Join(raw.PageTexts, "\n")
		dateISO, dateRaw, dateAmbiguous, dateFound = findDateInText(combined, order)
		description = describeFromText(combined)
	} else {
		dateRaw = strings.TrimSpace(raw.DateRaw)
		for _, candidate := range []string{raw.DateISO, raw.DateRaw} {
			if candidate == "" {
				continue
			}
			if iso, ambiguous, ok := NormalizeDate(candidate, order); ok {
				dateISO, dateAmbiguous, dateFound = iso, ambiguous, true
				break
			}
		}
		description = raw.Description
	}

	if dateFound && dateAmbiguous {
		warnings = append(warnings, WarnDateAmbiguous)
	}
	if !dateFound {
		warnings = append(warnings, WarnDateMissing)
	}

	sanitized, truncated := SanitizeDescription(description, maxDescriptionWords)
	if truncated {
		warnings = append(warnings, WarnDescriptionTruncated)
	}
	if sanitized == "" {
		sanitized = fallbackDescription
		warnings = append(warnings, WarnDescriptionMissing)
	}

	confidence := scoreConfidence(method, raw.ConfidenceHint, len(warnings))
	if confidence < lowConfidenceFloor {
		warnings = append(warnings, WarnLowConfidence)
	}

	result := Result{
		SourceFile:            sourceFile,
		InvoiceDateRaw:        dateRaw,
		ShortDescription:      sanitized,
		ShortDescriptionWords: countWords(sanitized),
		ExtractionMethod:      method,
		Confidence:            confidence,
		Warnings:              warnings,
	}
	if dateFound {
		result.InvoiceDate = &dateISO
	}
	if result.Warnings == nil {
		result.Warnings = []Warning{}
	}
	return result
}

func scoreConfidence(method Method, hint float64, warningCount int) float64 {
	base := baselineGeminiVision
	if method == MethodPDFText {
		base = baselinePDFText
	}
	if hint > 0 && hint < base {
		base = hint
	}
	score := base - warningPenalty*float64(warningCount)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Polish diacritics fold to plain ASCII before the generic combining
// mark strip, which would otherwise drop the stroke of l-with-stroke.
var polishFold = strings.NewReplacer(
	"ą", "a", "ć", "c", "ę", "e", "ł", "l", "ń", "n",
	"ó", "o", "ś", "s", "ź", "z", "ż", "z",
	"Ą", "A", "Ć", "C", "Ę", "E", "Ł", "L", "Ń", "N",
	"Ó", "O", "Ś", "S", "Ź", "Z", "Ż", "Z",
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// SanitizeDescription lowercases, ASCII-folds and collapses the value
// to at most maxWords whitespace-delimited tokens. Returns the cleaned
// value and whether tokens were dropped to fit.
func SanitizeDescription(value string, maxWords int) (string, bool) {
	folded := asciiFold(polishFold.Replace(value))
	cleaned := nonAlnum.ReplaceAllString(strings.ToLower(folded), " ")
	words := strings.Fields(cleaned)
	if len(words) == 0 {
		return "", false
	}
	if len(words) > maxWords {
		return strings.Join(words[:maxWords], " "), true
	}
	return strings.Join(words, " "), false
}

func asciiFold(value string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return folded
}

// Lines dominated by invoice boilerplate are skipped when deriving a
// description from raw page text.
var descriptionStopWords = []string{
	"invoice", "faktura", "bill to", "total", "subtotal", "amount due",
	"due date", "tax", "vat", "nip", "payment", "iban", "page",
}

var hasLetter = regexp.MustCompile(`[a-zA-Z]`)

// describeFromText picks a plausible purchased-item line out of raw
// invoice text: the first line with at least two alphabetic tokens that
// is not header boilerplate.
func describeFromText(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if reEmbeddedDate.MatchString(line) {
			continue
		}
		lowered := strings.ToLower(line)
		boilerplate := false
		for _, stop := range descriptionStopWords {
			if strings.Contains(lowered, stop) {
				boilerplate = true
				break
			}
		}
		if boilerplate {
			continue
		}
		alphaTokens := 0
		for _, tok := range strings.Fields(line) {
			if hasLetter.MatchString(tok) {
				alphaTokens++
			}
		}
		if alphaTokens >= 2 {
			return line
		}
	}
	return ""
}
