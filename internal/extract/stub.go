package extract

import (
	"regexp"
	"strings"
)

const undatedToken = "undated"

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._()\[\]-]+`)

// BuildStub derives the rename-safe filename stub for a result. Pure
// string transform: same result and options always produce the same
// stub, and the stub never contains whitespace or path separators.
func BuildStub(result Result, separator, dateSeparator, suffix string) string {
	datePart := undatedToken
	if result.InvoiceDate != nil {
		datePart = strings.ReplaceAll(*result.InvoiceDate, "-", dateSeparator)
	}

	descPart := strings.ReplaceAll(result.ShortDescription, " ", separator)
	if descPart == "" {
		descPart = fallbackDescription
	}

	stub := datePart + separator + descPart
	if cleaned := sanitizeSuffix(suffix, separator); cleaned != "" {
		stub += separator + cleaned
	}
	return strings.Trim(stub, separator)
}

func sanitizeSuffix(suffix, separator string) string {
	cleaned := strings.TrimSpace(suffix)
	cleaned = strings.ReplaceAll(cleaned, "/", "-")
	cleaned = strings.ReplaceAll(cleaned, "\\", "-")
	cleaned = unsafeFilenameChars.ReplaceAllString(cleaned, separator)
	return strings.Trim(cleaned, separator)
}
