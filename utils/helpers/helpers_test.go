package helpers

import "testing"

func TestMatchHeader(t *testing.T) {
	if !MatchHeader("  Symbol ", []string{`symbol`, `ticker`}) {
		t.Error("expected Symbol to match")
	}
	if !MatchHeader("Avg. Cost", []string{`avg.*cost`}) {
		t.Error("expected Avg. Cost to match")
	}
	if MatchHeader("ISIN", []string{`symbol`}) {
		t.Error("expected ISIN not to match symbol")
	}
}

func TestToFloat(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1,234.56", 1234.56},
		{" 42 ", 42},
		{"12.5%", 0.125},
		{"", 0},
		{"garbage", 0},
	}
	for _, tc := range cases {
		if got := ToFloat(tc.in); got != tc.want {
			t.Errorf("ToFloat(%q): got %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestToShares(t *testing.T) {
	if got := ToShares("1,250"); got != 1250 {
		t.Errorf("got %d, want 1250", got)
	}
	if got := ToShares("10.9"); got != 10 {
		t.Errorf("fractional quantity: got %d, want 10", got)
	}
	if got := ToShares(""); got != 0 {
		t.Errorf("empty: got %d, want 0", got)
	}
}

func TestCleanHTMLText(t *testing.T) {
	in := "<p>Quarterly results   <b>beat</b>\nestimates.</p>"
	want := "Quarterly results beat estimates."
	if got := CleanHTMLText(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("got %q, want unchanged", got)
	}
	if got := Truncate("abcdefghij", 4); got != "abcd..." {
		t.Errorf("got %q, want abcd...", got)
	}
}

func TestNormalizeString(t *testing.T) {
	if got := NormalizeString("  Avg Cost "); got != "avg cost" {
		t.Errorf("got %q", got)
	}
}
