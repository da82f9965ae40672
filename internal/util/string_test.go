package util

import "testing"

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		value any
		want  bool
	}{
		{nil, true},
		{"", true},
		{"   ", true},
		{"Maó", false},
		{0, false},
		{0.0, false},
		{false, false},
		{map[string]any{}, false},
	}

	for _, tc := range cases {
		if got := IsEmpty(tc.value); got != tc.want {
			t.Fatalf("IsEmpty(%v) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("short", 10); got != "short" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := TruncateString("una tarjeta de visita", 11); got != "una tarjeta..." {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := TruncateString("Maó!", 3); got != "Maó..." {
		t.Fatalf("rune-aware truncation failed: %q", got)
	}
}

func TestDigits(t *testing.T) {
	if got := Digits("(971) 12-34-56"); got != "971123456" {
		t.Fatalf("unexpected digits: %q", got)
	}
	if got := Digits("no digits"); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
