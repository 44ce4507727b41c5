package config

import "errors"

// ErrInvalidSection is wrapped by Validate and SetData failures.
var ErrInvalidSection = errors.New("invalid configuration section")

// Section is one independently stored block of configuration.
type Section interface {
	// ID returns the key the section is stored under (e.g., "extractor")
	ID() string

	// Title returns a short human-readable name
	Title() string

	// Description explains what the section controls
	Description() string

	// Data returns the section as plain values for storage
	Data() map[string]any

	// SetData replaces the section from stored values; unknown keys are ignored
	SetData(data map[string]any) error

	// Validate checks the current values
	Validate() error

	// Reset restores defaults
	Reset()
}

// stringList accepts the shapes a YAML or JSON list of strings decodes to.
func stringList(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...), true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// intValue accepts the numeric shapes produced by YAML and JSON decoders.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
