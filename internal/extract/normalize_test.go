package extract

import (
	"strings"
	"testing"
)

func visionRaw(dateRaw, dateISO, description string, hint float64) RawOutput {
	return RawOutput{
		DateRaw:        dateRaw,
		DateISO:        dateISO,
		Description:    description,
		ConfidenceHint: hint,
	}
}

func TestNormalize_VisionReply(t *testing.T) {
	raw := visionRaw("10 Feb 2026", "2026-02-10", "monitor arm", 0)
	result := Normalize(raw, "scan.pdf", MethodGeminiVision, OrderDayFirst, nil)

	if result.InvoiceDate == nil || *result.InvoiceDate != "2026-02-10" {
		t.Fatalf("invoice_date = %v, want 2026-02-10", result.InvoiceDate)
	}
	if result.InvoiceDateRaw != "10 Feb 2026" {
		t.Errorf("invoice_date_raw = %q", result.InvoiceDateRaw)
	}
	if result.ShortDescription != "monitor arm" {
		t.Errorf("short_description = %q", result.ShortDescription)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", result.Warnings)
	}
	if result.Confidence != baselineGeminiVision {
		t.Errorf("confidence = %v, want baseline %v", result.Confidence, baselineGeminiVision)
	}
}

func TestNormalize_DescriptionTruncation(t *testing.T) {
	raw := visionRaw("2026-02-10", "", "external monitor arm mount bracket extended", 0)
	result := Normalize(raw, "scan.pdf", MethodGeminiVision, OrderDayFirst, nil)

	if result.ShortDescription != "external monitor arm mount bracket" {
		t.Errorf("short_description = %q", result.ShortDescription)
	}
	if result.ShortDescriptionWords != 5 {
		t.Errorf("short_description_words = %d, want 5", result.ShortDescriptionWords)
	}
	if !result.HasWarning(WarnDescriptionTruncated) {
		t.Error("missing description-truncated warning")
	}
}

func TestNormalize_EmptyDescription(t *testing.T) {
	raw := visionRaw("2026-02-10", "", "!!! ???", 0)
	result := Normalize(raw, "scan.pdf", MethodGeminiVision, OrderDayFirst, nil)

	if result.ShortDescription != fallbackDescription {
		t.Errorf("short_description = %q, want %q", result.ShortDescription, fallbackDescription)
	}
	if !result.HasWarning(WarnDescriptionMissing) {
		t.Error("missing description-missing warning")
	}
}

func TestNormalize_MissingDate(t *testing.T) {
	raw := visionRaw("someday soon", "", "kawa ziarnista", 0)
	result := Normalize(raw, "scan.pdf", MethodGeminiVision, OrderDayFirst, nil)

	if result.InvoiceDate != nil {
		t.Errorf("invoice_date = %v, want nil", *result.InvoiceDate)
	}
	if !result.HasWarning(WarnDateMissing) {
		t.Error("missing date-missing warning")
	}
	if result.InvoiceDateRaw != "someday soon" {
		t.Errorf("invoice_date_raw = %q, should keep the raw string", result.InvoiceDateRaw)
	}
}

func TestNormalize_AmbiguousNumericDate(t *testing.T) {
	raw := visionRaw("02/03/2026", "", "hosting", 0)
	result := Normalize(raw, "scan.pdf", MethodGeminiVision, OrderDayFirst, nil)

	if result.InvoiceDate == nil || *result.InvoiceDate != "2026-03-02" {
		t.Fatalf("invoice_date = %v, want 2026-03-02 under day-first order", result.InvoiceDate)
	}
	if !result.HasWarning(WarnDateAmbiguous) {
		t.Error("missing date-ambiguous warning")
	}
}

func TestNormalize_WordCountInvariant(t *testing.T) {
	inputs := []string{
		"monitor arm", "a", "external monitor arm mount bracket extended",
		"Ładowarka USB-C do kawy? żart", "", "x y z w v u t",
	}
	for _, desc := range inputs {
		result := Normalize(visionRaw("2026-02-10", "", desc, 0), "f.pdf", MethodGeminiVision, OrderDayFirst, nil)
		if got := len(strings.Fields(result.ShortDescription)); result.ShortDescriptionWords != got {
			t.Errorf("desc %q: words field %d != token count %d", desc, result.ShortDescriptionWords, got)
		}
		if result.ShortDescriptionWords > 5 {
			t.Errorf("desc %q: %d words, want <= 5", desc, result.ShortDescriptionWords)
		}
	}
}

func TestNormalize_ConfidenceDecreasesWithWarnings(t *testing.T) {
	clean := Normalize(visionRaw("2026-02-10", "", "monitor arm", 0), "f.pdf", MethodGeminiVision, OrderDayFirst, nil)
	oneWarning := Normalize(visionRaw("", "", "monitor arm", 0), "f.pdf", MethodGeminiVision, OrderDayFirst, nil)
	twoWarnings := Normalize(visionRaw("", "", "external monitor arm mount bracket extended", 0), "f.pdf", MethodGeminiVision, OrderDayFirst, nil)

	if !(clean.Confidence > oneWarning.Confidence) {
		t.Errorf("confidence %v should exceed %v", clean.Confidence, oneWarning.Confidence)
	}
	if !(oneWarning.Confidence > twoWarnings.Confidence) {
		t.Errorf("confidence %v should exceed %v", oneWarning.Confidence, twoWarnings.Confidence)
	}
}

func TestNormalize_LowConfidenceWarning(t *testing.T) {
	// Missing date plus truncated description drags a low vision hint
	// under the threshold.
	raw := visionRaw("", "", "external monitor arm mount bracket extended", 0.6)
	result := Normalize(raw, "f.pdf", MethodGeminiVision, OrderDayFirst, nil)

	if result.Confidence >= lowConfidenceFloor {
		t.Fatalf("confidence = %v, expected below %v", result.Confidence, lowConfidenceFloor)
	}
	if !result.HasWarning(WarnLowConfidence) {
		t.Error("missing low-confidence warning")
	}
}

func TestNormalize_VisionHintCapsBaseline(t *testing.T) {
	hinted := Normalize(visionRaw("2026-02-10", "", "monitor arm", 0.4), "f.pdf", MethodGeminiVision, OrderDayFirst, nil)
	if hinted.Confidence >= baselineGeminiVision {
		t.Errorf("confidence = %v, hint should lower the baseline", hinted.Confidence)
	}
}

func TestNormalize_PageTexts(t *testing.T) {
	pages := []string{
		"Faktura VAT 12/2026\nData wystawienia: 10 Feb 2026",
		"kawa ziarnista arabica\nSubtotal: 120.00\nTotal: 132.00",
	}
	result := Normalize(RawOutput{PageTexts: pages}, "faktura.pdf", MethodPDFText, OrderDayFirst, nil)

	if result.InvoiceDate == nil || *result.InvoiceDate != "2026-02-10" {
		t.Fatalf("invoice_date = %v, want 2026-02-10", result.InvoiceDate)
	}
	if result.ExtractionMethod != MethodPDFText {
		t.Errorf("extraction_method = %q", result.ExtractionMethod)
	}
	if result.ShortDescription != "kawa ziarnista arabica" {
		t.Errorf("short_description = %q, want the item line", result.ShortDescription)
	}
}

func TestNormalize_KeepsCallerWarnings(t *testing.T) {
	raw := visionRaw("2026-02-10", "", "monitor arm", 0)
	result := Normalize(raw, "f.pdf", MethodGeminiVision, OrderDayFirst, []Warning{WarnPageLimitExceeded})

	if !result.HasWarning(WarnPageLimitExceeded) {
		t.Error("caller warning dropped")
	}
	if result.Confidence != baselineGeminiVision-warningPenalty {
		t.Errorf("confidence = %v, caller warnings must count toward the penalty", result.Confidence)
	}
}

func TestSanitizeDescription_Transliteration(t *testing.T) {
	got, truncated := SanitizeDescription("Ładowarka USB-C do kawy? żart", 5)
	if got != "ladowarka usb c do kawy" {
		t.Errorf("sanitized = %q", got)
	}
	if !truncated {
		t.Error("expected truncation: folding splits usb-c into two tokens")
	}
}

func TestSanitizeDescription_FilenameSafety(t *testing.T) {
	got, _ := SanitizeDescription("Ultra-Wide Monitor Arm (Black Edition)!!!", 5)
	if got != "ultra wide monitor arm black" {
		t.Errorf("sanitized = %q", got)
	}
}
