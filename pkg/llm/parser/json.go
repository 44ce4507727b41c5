// Package parser provides tolerant decoding helpers for structured data that
// language models emit inline, often while the text is still streaming.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUndecodable is returned when no strategy could recover a value.
	ErrUndecodable = errors.New("fragment is not decodable JSON")

	// ErrNotObject is returned by DecodeObject when the value is not a mapping.
	ErrNotObject = errors.New("decoded value is not a JSON object")
)

// Strategy is one step of a decode fallback chain. Apply returns the decoded
// value, or an error to hand over to the next strategy.
type Strategy struct {
	Name  string
	Apply func(fragment string) (any, error)
}

// DefaultStrategies is the ordered chain used by Decode.
var DefaultStrategies = []Strategy{
	{Name: "strict", Apply: decodeStrict},
	{Name: "escape-control-chars", Apply: decodeEscaped},
}

// Decode recovers a JSON value from a fragment that is valid or almost valid.
// Strategies are tried in order; the first success wins.
func Decode(fragment string) (any, error) {
	return DecodeWith(fragment, DefaultStrategies)
}

// DecodeWith runs a custom strategy chain.
func DecodeWith(fragment string, strategies []Strategy) (any, error) {
	var lastErr error
	for _, s := range strategies {
		v, err := s.Apply(fragment)
		if err == nil {
			return v, nil
		}
		lastErr = fmt.Errorf("%s: %w", s.Name, err)
	}
	if lastErr == nil {
		return nil, ErrUndecodable
	}
	return nil, fmt.Errorf("%w (%v)", ErrUndecodable, lastErr)
}

// DecodeObject is Decode restricted to mappings, since tool arguments are
// always key/value.
func DecodeObject(fragment string) (map[string]any, error) {
	v, err := Decode(fragment)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotObject, v)
	}
	return m, nil
}

func decodeStrict(fragment string) (any, error) {
	trimmed := strings.TrimSpace(fragment)
	if trimmed == "" {
		return nil, errors.New("empty fragment")
	}
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeEscaped(fragment string) (any, error) {
	escaped, changed := EscapeControlChars(fragment)
	if !changed {
		return nil, errors.New("no control characters inside strings")
	}
	return decodeStrict(escaped)
}

// EscapeControlChars rewrites literal line breaks and tabs that appear inside
// quoted strings to their escaped form. Characters outside strings are left
// alone. It reports whether anything was rewritten.
func EscapeControlChars(s string) (string, bool) {
	var b strings.Builder
	b.Grow(len(s) + 16)

	inString := false
	escaped := false
	changed := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if !inString {
			if c == '"' {
				inString = true
			}
			b.WriteByte(c)
			continue
		}

		if escaped {
			escaped = false
			b.WriteByte(c)
			continue
		}

		switch c {
		case '\\':
			escaped = true
			b.WriteByte(c)
		case '"':
			inString = false
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
			changed = true
		case '\r':
			// Kept as CR so a CRLF pair decodes to one line break.
			b.WriteString(`\r`)
			changed = true
		case '\t':
			b.WriteString(`\t`)
			changed = true
		default:
			b.WriteByte(c)
		}
	}

	return b.String(), changed
}

// DecodeArguments decodes a vendor argument string into a mapping. A blank
// string yields an empty map. When the string cannot be decoded the empty map
// is returned together with the error, so the caller can keep the raw text.
func DecodeArguments(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	args, err := DecodeObject(raw)
	if err != nil {
		return map[string]any{}, err
	}
	return args, nil
}
