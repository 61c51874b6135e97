package document

import (
	"regexp"
	"time"
)

// Textual form of an encoded timestamp: strict UTC ISO-8601 with optional
// fractional seconds. Decode only rehydrates strings matching this shape;
// anything looser (offsets, missing Z) passes through untouched.
var timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?Z$`)

// Encode recursively walks a JSON-like tree and replaces every time.Time
// with its ISO-8601 string representation. All other values pass through
// unchanged. The input is never mutated; maps and slices are copied on the
// way down.
func Encode(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Encode(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Encode(val)
		}
		return out
	default:
		return v
	}
}

// Decode recursively walks a JSON-like tree and rehydrates every string
// matching the encoded timestamp pattern into time.Time. All other values
// pass through unchanged. Inverse of Encode for trees whose only special
// values are timestamps.
func Decode(v any) any {
	switch t := v.(type) {
	case string:
		if timestampPattern.MatchString(t) {
			if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
				return ts.UTC()
			}
		}
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Decode(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Decode(val)
		}
		return out
	default:
		return v
	}
}

// DecodeRecord applies Decode to a record payload, returning a typed map.
func DecodeRecord(data map[string]any) map[string]any {
	decoded, _ := Decode(data).(map[string]any)
	return decoded
}
