package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateOrder is the day/month preference used to resolve all-numeric
// dates where both fields could be a month.
type DateOrder int

const (
	OrderDayFirst DateOrder = iota
	OrderMonthFirst
)

// OrderFor resolves the effective date order from the configured knob.
// "dmy" and "mdy" force an order; "locale" derives it from the locale
// code (en and en-* read month-first, everything else day-first).
func OrderFor(locale, knob string) DateOrder {
	switch strings.ToLower(strings.TrimSpace(knob)) {
	case "dmy":
		return OrderDayFirst
	case "mdy":
		return OrderMonthFirst
	}
	l := strings.ToLower(strings.TrimSpace(locale))
	if l == "en" || strings.HasPrefix(l, "en-") || strings.HasPrefix(l, "en_") {
		return OrderMonthFirst
	}
	return OrderDayFirst
}

// Layouts tried before any numeric disambiguation. Unambiguous by
// construction: either ISO ordered or with a textual month.
var dateLayouts = []string{
	"2006-01-02",
	"2006/1/2",
	"2006.1.2",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2 2006",
	"January 2 2006",
	"2-Jan-2006",
	"2-January-2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

var (
	reNumericDate  = regexp.MustCompile(`^(\d{1,2})([./-])(\d{1,2})[./-](\d{2,4})$`)
	reEmbeddedDate = regexp.MustCompile(`\b(?:\d{4}-\d{2}-\d{2}|\d{4}[./]\d{1,2}[./]\d{1,2}|\d{1,2}[./-]\d{1,2}[./-]\d{2,4}|[A-Za-z]{3,9} \d{1,2}, \d{4}|\d{1,2} [A-Za-z]{3,9} \d{4})\b`)
)

// NormalizeDate canonicalizes a single human-written date string to an
// ISO calendar date. ambiguous is true when the input was all-numeric
// with both day and month fields <= 12 and order had to decide.
func NormalizeDate(value string, order DateOrder) (iso string, ambiguous bool, ok bool) {
	text := strings.Join(strings.Fields(value), " ")
	if text == "" {
		return "", false, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.Format("2006-01-02"), false, true
		}
	}

	if m := reNumericDate.FindStringSubmatch(text); m != nil {
		return resolveNumeric(m[1], m[3], m[4], order)
	}

	// Last resort: a date embedded in surrounding prose.
	if m := reEmbeddedDate.FindString(text); m != "" && m != text {
		return NormalizeDate(m, order)
	}

	return "", false, false
}

func resolveNumeric(first, second, yearStr string, order DateOrder) (string, bool, bool) {
	a, _ := strconv.Atoi(first)
	b, _ := strconv.Atoi(second)
	year, _ := strconv.Atoi(yearStr)
	if year < 100 {
		if year < 70 {
			year += 2000
		} else {
			year += 1900
		}
	}

	var day, month int
	ambiguous := false
	switch {
	case a > 12 && b <= 12:
		day, month = a, b
	case b > 12 && a <= 12:
		day, month = b, a
	case a <= 12 && b <= 12:
		ambiguous = true
		if order == OrderMonthFirst {
			month, day = a, b
		} else {
			day, month = a, b
		}
	default:
		return "", false, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", false, false
	}
	return t.Format("2006-01-02"), ambiguous, true
}

// findDateInText scans free-form page text for date candidates and
// returns the best one. Preference goes to the first candidate that
// parses without day/month ambiguity; a purely ambiguous candidate is
// used only when nothing better exists. Seeing several distinct
// plausible dates also marks the result ambiguous, since an invoice
// commonly carries issue, due and service dates.
func findDateInText(text string, order DateOrder) (iso, raw string, ambiguous, ok bool) {
	candidates := reEmbeddedDate.FindAllString(text, -1)
	if len(candidates) == 0 {
		return "", "", false, false
	}

	distinct := map[string]struct{}{}
	var firstISO, firstRaw string
	var firstAmbiguous bool
	for _, cand := range candidates {
		candISO, candAmbiguous, candOK := NormalizeDate(cand, order)
		if !candOK {
			continue
		}
		distinct[candISO] = struct{}{}
		if firstISO == "" || (firstAmbiguous && !candAmbiguous) {
			firstISO, firstRaw, firstAmbiguous = candISO, cand, candAmbiguous
		}
	}
	if firstISO == "" {
		return "", "", false, false
	}
	return firstISO, firstRaw, firstAmbiguous || len(distinct) > 1, true
}
