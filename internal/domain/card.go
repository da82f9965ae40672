package domain

import (
	"strings"

	"github.com/aparra/img2card-bot/internal/util"
)

const (
	BeginCardMarker = "BEGIN:VCARD"
	EndCardMarker   = "END:VCARD"

	// FallbackPhone stands in when the generated card carries no TEL line,
	// since chat transports refuse contacts without a phone number.
	FallbackPhone = "111 222 333"
)

// ExtractCard reduces raw generator output to the inclusive
// BEGIN:VCARD..END:VCARD span, discarding any surrounding commentary. The
// second return is false when either marker is missing. Extraction is
// idempotent: applying it to an already-reduced span returns the span.
func ExtractCard(raw string) (string, bool) {
	start := strings.Index(raw, BeginCardMarker)
	if start < 0 {
		return "", false
	}
	end := strings.Index(raw[start:], EndCardMarker)
	if end < 0 {
		return "", false
	}
	return raw[start : start+end+len(EndCardMarker)], true
}

// CardFullName pulls the FN line's value out of a vCard, or "" when absent.
func CardFullName(card string) string {
	return lineValue(card, "FN:")
}

// CardPhone pulls a dialable phone number out of a vCard's first TEL line.
// Parameterized lines ("TEL;type=CELL...:+34...") keep everything after the
// last colon; otherwise non-digit decoration is stripped. Falls back to
// FallbackPhone when no TEL line exists.
func CardPhone(card string) string {
	idx := -1
	term := ""
	for _, t := range []string{"TEL:", "TEL;"} {
		if i := strings.Index(card, t); i >= 0 {
			idx, term = i, t
			break
		}
	}
	if idx < 0 {
		return FallbackPhone
	}

	rest := card[idx+len(term):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	rest = strings.TrimRight(rest, "\r")

	if colon := strings.LastIndexByte(rest, ':'); colon >= 0 {
		return rest[colon+1:]
	}
	return util.Digits(rest)
}

func lineValue(card, term string) string {
	idx := strings.Index(card, term)
	if idx < 0 {
		return ""
	}
	rest := card[idx+len(term):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return strings.TrimRight(rest, "\r")
}
