package util

import (
	"testing"
	"time"
)

func TestParseFloat(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3.5", 3.5, true},
		{"  2.25 ", 2.25, true},
		{"0", 0, true},
		{"-1.5", -1.5, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"+Inf", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseFloat(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("ParseFloat(%q) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestParseFloatDefault(t *testing.T) {
	if got := ParseFloatDefault("bad", 7); got != 7 {
		t.Errorf("got %v, want default 7", got)
	}
	if got := ParseFloatDefault("1.5", 7); got != 1.5 {
		t.Errorf("got %v, want 1.5", got)
	}
}

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("", 3); got != 3 {
		t.Errorf("empty: got %v", got)
	}
	if got := ParseIntDefault("12", 3); got != 12 {
		t.Errorf("valid: got %v", got)
	}
}

func TestParseTime(t *testing.T) {
	if _, ok := ParseTime(""); ok {
		t.Error("empty string should fail")
	}
	if got, ok := ParseTime("2024-05-01T10:00:00Z"); !ok || got.UTC().Hour() != 10 {
		t.Errorf("rfc3339: got (%v, %v)", got, ok)
	}
	if got, ok := ParseTime("1714557600"); !ok || !got.Equal(time.Unix(1714557600, 0)) {
		t.Errorf("unix: got (%v, %v)", got, ok)
	}
}
