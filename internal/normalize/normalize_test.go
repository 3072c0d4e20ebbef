package normalize

import (
	"math"
	"testing"
	"time"
)

func TestParseMemory(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1 GB", 1024},
		{"512 KB", 0.5},
		{"100 MB", 100},
		{"100MB", 100},
		{"23.5 MB", 23.5},
		{"1,048,576 KB", 1024},
		{"300 mb", 300},
		{"", 0},
		{"fast", 0},
		{"100 TB", 0},
	}
	for _, tt := range tests {
		if got := ParseMemory(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseMemory(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseComposite_Limit(t *testing.T) {
	c := ParseComposite("3,303 (Limit: 5,000)")
	if c.Value != 3303 {
		t.Errorf("Value = %v, want 3303", c.Value)
	}
	if c.Limit == nil || *c.Limit != 5000 {
		t.Errorf("Limit = %v, want 5000", c.Limit)
	}
	if !c.HasLimit {
		t.Error("HasLimit = false, want true")
	}
}

func TestParseComposite_LimitNone(t *testing.T) {
	c := ParseComposite("1,625 (Limit: none)")
	if c.Value != 1625 {
		t.Errorf("Value = %v, want 1625", c.Value)
	}
	if c.Limit != nil {
		t.Errorf("Limit = %v, want nil", *c.Limit)
	}
	if !c.HasLimit {
		t.Error("HasLimit = false, want true")
	}
}

func TestParseComposite_Peak(t *testing.T) {
	for _, in := range []string{"1,234 (Peak: 2,000)", "1,234 (Peak 2,000)"} {
		c := ParseComposite(in)
		if c.Value != 1234 {
			t.Errorf("ParseComposite(%q).Value = %v, want 1234", in, c.Value)
		}
		if c.Peak != 2000 {
			t.Errorf("ParseComposite(%q).Peak = %v, want 2000", in, c.Peak)
		}
		if !c.HasPeak {
			t.Errorf("ParseComposite(%q).HasPeak = false, want true", in)
		}
	}
}

func TestParseComposite_BareNumber(t *testing.T) {
	c := ParseComposite("42")
	if c.Value != 42 || c.HasLimit || c.HasPeak {
		t.Errorf("ParseComposite(42) = %+v", c)
	}
}

func TestParseComposite_Garbage(t *testing.T) {
	c := ParseComposite("not a number")
	if c.Value != 0 || c.HasLimit || c.HasPeak {
		t.Errorf("ParseComposite(garbage) = %+v, want zero", c)
	}
}

func TestParseStatusSet(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"{down,alarm,unackedAlarm}", []string{"down", "alarm", "unackedalarm"}},
		{`"{ok}"`, []string{"ok"}},
		{"ok", []string{"ok"}},
		{"{ OK , Down }", []string{"ok", "down"}},
		{"", nil},
		{"{}", nil},
	}
	for _, tt := range tests {
		got := ParseStatusSet(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("ParseStatusSet(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseStatusSet(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestParseVendorTimestamp(t *testing.T) {
	ts, ok := ParseVendorTimestamp("19-Aug-25 10:11 PM EDT")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	want := time.Date(2025, time.August, 19, 22, 11, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("got %v, want %v", ts, want)
	}
}

func TestParseVendorTimestamp_NoTimezone(t *testing.T) {
	ts, ok := ParseVendorTimestamp("1-Jan-24 12:05 AM")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	want := time.Date(2024, time.January, 1, 0, 5, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("got %v, want %v", ts, want)
	}
}

func TestParseVendorTimestamp_Noon(t *testing.T) {
	ts, ok := ParseVendorTimestamp("5-Mar-25 12:30 PM EST")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if ts.Hour() != 12 {
		t.Errorf("hour = %d, want 12", ts.Hour())
	}
}

func TestParseVendorTimestamp_Invalid(t *testing.T) {
	for _, in := range []string{"", "yesterday", "32-Aug-25 10:11 PM", "19-Xyz-25 10:11 PM", "2025-08-19T22:11:00Z"} {
		if _, ok := ParseVendorTimestamp(in); ok {
			t.Errorf("ParseVendorTimestamp(%q) succeeded, want failure", in)
		}
	}
}

func TestParsePercent(t *testing.T) {
	if v, ok := ParsePercent("45%"); !ok || v != 45 {
		t.Errorf("ParsePercent(45%%) = %v, %v", v, ok)
	}
	if v, ok := ParsePercent(" 7.5 % "); !ok || v != 7.5 {
		t.Errorf("ParsePercent(7.5%%) = %v, %v", v, ok)
	}
	if _, ok := ParsePercent("45"); ok {
		t.Error("ParsePercent(45) succeeded, want failure")
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		current, limit float64
		want           int
	}{
		{3303, 5000, 66},
		{50, 100, 50},
		{1, 3, 33},
		{2, 3, 67},
		{10, 0, 0},
		{10, -5, 0},
		{150, 100, 150},
	}
	for _, tt := range tests {
		if got := Percentage(tt.current, tt.limit); got != tt.want {
			t.Errorf("Percentage(%v, %v) = %d, want %d", tt.current, tt.limit, got, tt.want)
		}
	}
}

func TestCapacityPercentage_NilLimit(t *testing.T) {
	if got := CapacityPercentage(100, nil); got != 0 {
		t.Errorf("CapacityPercentage(100, nil) = %d, want 0", got)
	}
	limit := 200.0
	if got := CapacityPercentage(100, &limit); got != 50 {
		t.Errorf("CapacityPercentage(100, 200) = %d, want 50", got)
	}
}
