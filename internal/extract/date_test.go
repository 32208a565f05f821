package extract

import "testing"

func TestNormalizeDate_Layouts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		order DateOrder
		want  string
	}{
		{"iso", "2026-02-10", OrderDayFirst, "2026-02-10"},
		{"iso slash", "2026/02/10", OrderDayFirst, "2026-02-10"},
		{"iso dotted", "2026.02.10", OrderDayFirst, "2026-02-10"},
		{"textual day first", "10 Feb 2026", OrderDayFirst, "2026-02-10"},
		{"textual full month", "10 February 2026", OrderDayFirst, "2026-02-10"},
		{"textual month first", "Feb 10, 2026", OrderDayFirst, "2026-02-10"},
		{"dashed textual", "10-Feb-2026", OrderDayFirst, "2026-02-10"},
		{"extra whitespace", "  10   Feb   2026 ", OrderDayFirst, "2026-02-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ambiguous, ok := NormalizeDate(tt.input, tt.order)
			if !ok {
				t.Fatalf("NormalizeDate(%q) not ok", tt.input)
			}
			if ambiguous {
				t.Errorf("NormalizeDate(%q) unexpectedly ambiguous", tt.input)
			}
			if got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeDate_NumericAmbiguity(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		order         DateOrder
		want          string
		wantAmbiguous bool
	}{
		{"both fields low, day first", "02/03/2026", OrderDayFirst, "2026-03-02", true},
		{"both fields low, month first", "02/03/2026", OrderMonthFirst, "2026-02-03", true},
		{"first field is clearly a day", "25/03/2026", OrderMonthFirst, "2026-03-25", false},
		{"second field is clearly a day", "03/25/2026", OrderDayFirst, "2026-03-25", false},
		{"two digit year", "02-03-26", OrderDayFirst, "2026-03-02", true},
		{"nineties year", "02-03-96", OrderDayFirst, "1996-03-02", true},
		{"dotted numeric", "10.02.2026", OrderDayFirst, "2026-02-10", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ambiguous, ok := NormalizeDate(tt.input, tt.order)
			if !ok {
				t.Fatalf("NormalizeDate(%q) not ok", tt.input)
			}
			if got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if ambiguous != tt.wantAmbiguous {
				t.Errorf("NormalizeDate(%q) ambiguous = %v, want %v", tt.input, ambiguous, tt.wantAmbiguous)
			}
		})
	}
}

func TestNormalizeDate_Unparsable(t *testing.T) {
	for _, input := range []string{"", "   ", "not a date", "45/45/2026"} {
		if _, _, ok := NormalizeDate(input, OrderDayFirst); ok {
			t.Errorf("NormalizeDate(%q) ok, want not ok", input)
		}
	}
}

func TestNormalizeDate_Embedded(t *testing.T) {
	got, _, ok := NormalizeDate("Invoice issued 10 Feb 2026 in Warsaw", OrderDayFirst)
	if !ok || got != "2026-02-10" {
		t.Fatalf("embedded date = %q (ok=%v), want 2026-02-10", got, ok)
	}
}

func TestOrderFor(t *testing.T) {
	tests := []struct {
		locale string
		knob   string
		want   DateOrder
	}{
		{"pl", "locale", OrderDayFirst},
		{"de", "locale", OrderDayFirst},
		{"en", "locale", OrderMonthFirst},
		{"en-US", "locale", OrderMonthFirst},
		{"en", "dmy", OrderDayFirst},
		{"pl", "mdy", OrderMonthFirst},
	}

	for _, tt := range tests {
		if got := OrderFor(tt.locale, tt.knob); got != tt.want {
			t.Errorf("OrderFor(%q, %q) = %v, want %v", tt.locale, tt.knob, got, tt.want)
		}
	}
}

func TestFindDateInText_SingleDate(t *testing.T) {
	text := "Faktura VAT\nData wystawienia: 10 Feb 2026\nkawa ziarnista"
	iso, raw, ambiguous, ok := findDateInText(text, OrderDayFirst)
	if !ok {
		t.Fatal("expected a date")
	}
	if iso != "2026-02-10" {
		t.Errorf("iso = %q, want 2026-02-10", iso)
	}
	if raw != "10 Feb 2026" {
		t.Errorf("raw = %q, want %q", raw, "10 Feb 2026")
	}
	if ambiguous {
		t.Error("single textual date should not be ambiguous")
	}
}

func TestFindDateInText_MultipleDatesAreAmbiguous(t *testing.T) {
	text := "Issue date: 2026-02-10\nDue date: 2026-02-24"
	iso, _, ambiguous, ok := findDateInText(text, OrderDayFirst)
	if !ok {
		t.Fatal("expected a date")
	}
	if iso != "2026-02-10" {
		t.Errorf("iso = %q, want the first date", iso)
	}
	if !ambiguous {
		t.Error("several distinct dates should be flagged ambiguous")
	}
}

func TestFindDateInText_IgnoresInvoiceNumbers(t *testing.T) {
	texts := []string{
		"Faktura nr 2311/06/2026\nkawa ziarnista",
		"Zamowienie nr 4512.03.2026",
	}
	for _, text := range texts {
		if iso, raw, _, ok := findDateInText(text, OrderDayFirst); ok {
			t.Errorf("findDateInText(%q) = %q (raw %q), want no date", text, iso, raw)
		}
	}
}

func TestFindDateInText_YearFirstWithSlashOrDot(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Data wystawienia: 2026/02/10", "2026-02-10"},
		{"Data wystawienia: 2026.02.10", "2026-02-10"},
	}
	for _, tt := range tests {
		iso, _, ambiguous, ok := findDateInText(tt.text, OrderDayFirst)
		if !ok {
			t.Fatalf("findDateInText(%q): expected a date", tt.text)
		}
		if iso != tt.want {
			t.Errorf("findDateInText(%q) = %q, want %q", tt.text, iso, tt.want)
		}
		if ambiguous {
			t.Errorf("findDateInText(%q) unexpectedly ambiguous", tt.text)
		}
	}
}

func TestFindDateInText_PrefersUnambiguousCandidate(t *testing.T) {
	text := "ref 02/03/2026\nissued 25 Mar 2026"
	iso, _, _, ok := findDateInText(text, OrderDayFirst)
	if !ok {
		t.Fatal("expected a date")
	}
	if iso != "2026-03-25" {
		t.Errorf("iso = %q, want the unambiguous candidate 2026-03-25", iso)
	}
}
