package textfmt

import (
	"math"
	"testing"
)

func TestDurationMs(t *testing.T) {
	tests := []struct {
		ms   float64
		ok   bool
		want string
	}{
		{0, true, "0 ms"},
		{12.4, true, "12 ms"},
		{999, true, "999 ms"},
		{1000, true, "1.0 s"},
		{1250, true, "1.3 s"},
		{59940, true, "59.9 s"},
		{60000, true, "1m 0s"},
		{61500, true, "1m 2s"},
		{125000, true, "2m 5s"},
		{119700, true, "2m 0s"},
		{5, false, ""},
		{-1, true, ""},
		{math.NaN(), true, ""},
	}
	for _, tt := range tests {
		if got := DurationMs(tt.ms, tt.ok); got != tt.want {
			t.Errorf("DurationMs(%v, %v) = %q, want %q", tt.ms, tt.ok, got, tt.want)
		}
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		v    float64
		ok   bool
		want string
	}{
		{1.005, true, "1.01"},
		{0.125, true, "0.13"},
		{0.5, true, "0.50"},
		{0.994, true, "0.99"},
		{0.995, true, "1.00"},
		{-0.25, true, "-0.25"},
		{-0.001, true, "0.00"},
		{0, false, "0.00"},
		{math.NaN(), true, "0.00"},
		{math.Inf(1), true, "0.00"},
	}
	for _, tt := range tests {
		if got := Score(tt.v, tt.ok); got != tt.want {
			t.Errorf("Score(%v, %v) = %q, want %q", tt.v, tt.ok, got, tt.want)
		}
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(80, true); got != "80.0%" {
		t.Fatalf("Percent(80) = %q", got)
	}
	if got := Percent(66.66666, true); got != "66.7%" {
		t.Fatalf("Percent(66.66666) = %q", got)
	}
	if got := Percent(0, false); got != "0.0%" {
		t.Fatalf("Percent(absent) = %q", got)
	}
	if got := Percent(math.NaN(), true); got != "0.0%" {
		t.Fatalf("Percent(NaN) = %q", got)
	}
}

func TestRatio(t *testing.T) {
	if v, ok := Ratio(8, 10); !ok || v != 80 {
		t.Fatalf("Ratio(8, 10) = %v, %v", v, ok)
	}
	if _, ok := Ratio(1, 0); ok {
		t.Fatal("Ratio with zero denominator should not be ok")
	}
}

func TestFixedCarries(t *testing.T) {
	tests := []struct {
		v      float64
		places int
		want   string
	}{
		{9.99, 1, "10.0"},
		{99.5, 0, "100"},
		{12, 2, "12.00"},
		{0.05, 1, "0.1"},
	}
	for _, tt := range tests {
		if got := Fixed(tt.v, tt.places); got != tt.want {
			t.Errorf("Fixed(%v, %d) = %q, want %q", tt.v, tt.places, got, tt.want)
		}
	}
}

func TestJoinLimited(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	if got := JoinLimited(items, 3); got != "a, b, c... (+2 more)" {
		t.Fatalf("JoinLimited truncated = %q", got)
	}
	if got := JoinLimited(items[:2], 3); got != "a, b" {
		t.Fatalf("JoinLimited short = %q", got)
	}
	if got := JoinLimited(nil, 3); got != "" {
		t.Fatalf("JoinLimited(nil) = %q", got)
	}
}

func TestBasename(t *testing.T) {
	tests := map[string]string{
		"/data/uploads/input.xlsx": "input.xlsx",
		"input.csv":                "input.csv",
		"runs/abc/":                "abc",
		"   ":                      "",
		"":                         "",
	}
	for in, want := range tests {
		if got := Basename(in); got != want {
			t.Errorf("Basename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestShortName(t *testing.T) {
	if got := ShortName("ade.detectors.email.header_match"); got != "header_match" {
		t.Fatalf("ShortName = %q", got)
	}
	if got := ShortName("plain"); got != "plain" {
		t.Fatalf("ShortName(plain) = %q", got)
	}
}

func TestCountAndPlural(t *testing.T) {
	if got := Count(1234567); got != "1,234,567" {
		t.Fatalf("Count = %q", got)
	}
	if got := Plural(1, "row"); got != "1 row" {
		t.Fatalf("Plural(1) = %q", got)
	}
	if got := Plural(1204, "row"); got != "1,204 rows" {
		t.Fatalf("Plural(1204) = %q", got)
	}
	if got := Plural(0, "table"); got != "0 tables" {
		t.Fatalf("Plural(0) = %q", got)
	}
}

func TestBytes(t *testing.T) {
	if got := Bytes(2048); got != "2.0 kB" {
		t.Fatalf("Bytes(2048) = %q", got)
	}
	if got := Bytes(-1); got != "" {
		t.Fatalf("Bytes(-1) = %q", got)
	}
}
