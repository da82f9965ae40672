package domain

import "github.com/aparra/img2card-bot/internal/util"

// Record is a loosely-shaped place or locality record. Optional fields are
// omitted entirely rather than stored as empty strings, so a key that exists
// always carries a usable value.
type Record map[string]any

// SetIfPresent stores value under key unless the value is absent (nil, empty
// or whitespace-only string).
func (r Record) SetIfPresent(key string, value any) Record {
	if util.IsEmpty(value) {
		return r
	}
	r[key] = value
	return r
}

// CopyKeyIfPresent copies key from source when source holds a present value.
func (r Record) CopyKeyIfPresent(source Record, key string) Record {
	return r.SetIfPresent(key, source[key])
}

// MergeIfPresent overlays every present value of overlay onto r. A present
// value is never overwritten by an absent one.
func (r Record) MergeIfPresent(overlay Record) Record {
	for key, value := range overlay {
		r.SetIfPresent(key, value)
	}
	return r
}

// GetString returns the string under key, or "" when the key is missing or
// holds a non-string value.
func (r Record) GetString(key string) string {
	if value, ok := r[key].(string); ok {
		return value
	}
	return ""
}
