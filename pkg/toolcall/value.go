package toolcall

import (
	"encoding/json"
	"fmt"
)

// Decoded values use the encoding/json shapes: string, float64, bool, nil,
// []any and map[string]any. The helpers below are the only downcasts the
// adapters perform.

// AsString returns v as a string when it holds one.
func AsString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// AsMap returns v as a mapping when it holds one.
func AsMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// AsSlice returns v as an array when it holds one.
func AsSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

// AsBool returns v as a boolean when it holds one.
func AsBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// AsFloat returns v as a number. Integer kinds are widened so values built
// by hand compare the same as decoded ones.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Stringify renders a tool result for vendors that expect text content.
// Strings pass through untouched; everything else is JSON-encoded.
func Stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
