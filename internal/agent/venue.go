package agent

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aparra/img2card-bot/internal/util"
)

// IsVenueTranscription is the fast routing probe: a transcription that
// mentions "venue" anywhere is handed to the structured parser. This is a
// substring test by design; the parser below is the tolerant second stage.
func IsVenueTranscription(transcription string) bool {
	return strings.Contains(transcription, "venue")
}

// BuildVenueQuery parses a venue-mode transcription as JSON, tolerating
// surrounding code fences and a "json" language tag, and concatenates every
// value whose key contains "venue" into a search query. Keys are visited in
// sorted order so the query is deterministic. Returns false on any parse
// failure or when no venue-keyed value is present; the caller then degrades
// to the personal-card path.
func BuildVenueQuery(transcription string) (string, bool) {
	cleaned := stripCodeFences(transcription)

	var decoded map[string]any
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return "", false
	}

	keys := make([]string, 0, len(decoded))
	for key := range decoded {
		if strings.Contains(key, "venue") {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		value := decoded[key]
		if util.IsEmpty(value) {
			continue
		}
		parts = append(parts, fmt.Sprintf("%v", value))
	}

	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}

func stripCodeFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, "```json"))
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, "```"))
	}
	if strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, "```"))
	}
	return cleaned
}
