package util

import "strings"

// IsEmpty reports whether a value is absent for merge purposes: empty or
// whitespace-only strings count as absent, as do nil values.
func IsEmpty(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	if !ok {
		return false
	}
	return strings.TrimSpace(s) == ""
}

// TruncateString truncates a string to maxRunes runes, appending "..." when
// anything was cut.
func TruncateString(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// Digits returns only the decimal digit runes of s, concatenated.
func Digits(s string) string {
	var builder strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}
