package util

import "testing"

func TestRound2(t *testing.T) {
	cases := map[float64]float64{
		55:        55,
		63.333333: 63.33,
		66.666666: 66.67,
		-1.005:    -1.01,
		0.125:     0.13,
	}
	for in, want := range cases {
		if got := Round2(in); got != want {
			t.Fatalf("Round2(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestFormatGrouped(t *testing.T) {
	if got := FormatGrouped(67123.5); got != "67,123.5" {
		t.Fatalf("unexpected %q", got)
	}
	if got := FormatGrouped(1234567); got != "1,234,567" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestFormatFixed2(t *testing.T) {
	if got := FormatFixed2(1.5); got != "1.50" {
		t.Fatalf("unexpected %q", got)
	}
	if got := FormatFixed2(-0.444); got != "-0.44" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestFormatPlain(t *testing.T) {
	if got := FormatPlain(110); got != "110" {
		t.Fatalf("unexpected %q", got)
	}
	if got := FormatPlain(0.00012); got != "0.00012" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestParseFloatDefault(t *testing.T) {
	if got := ParseFloatDefault("12.5", 0); got != 12.5 {
		t.Fatalf("unexpected %v", got)
	}
	if got := ParseFloatDefault("abc", -1); got != -1 {
		t.Fatalf("expected default, got %v", got)
	}
	if _, ok := ParseFloat(""); ok {
		t.Fatalf("empty string must not parse")
	}
}
