package config

import (
	"fmt"
	"slices"
	"sync"
)

const (
	// SectionIDExtractor is the identifier for the text extractor section
	SectionIDExtractor = "extractor"

	// DefaultMaxInputBytes bounds the text a single scan will look at.
	DefaultMaxInputBytes = 10 * 1024 * 1024
)

// Recognizer names understood by the text extractor.
const (
	RecognizerFencedJSON    = "fenced-json"
	RecognizerWrappedInvoke = "wrapped-invoke"
	RecognizerWrappedJSON   = "wrapped-json"
	RecognizerBareInvoke    = "bare-invoke"
	RecognizerResultEcho    = "result-echo"
	RecognizerMarkdown      = "markdown"
	RecognizerXMLTool       = "xml-tool"
)

// DefaultRecognizers names the textual encodings enabled out of the box, in
// scan order.
var DefaultRecognizers = []string{
	RecognizerFencedJSON,
	RecognizerWrappedInvoke,
	RecognizerWrappedJSON,
	RecognizerBareInvoke,
	RecognizerResultEcho,
	RecognizerMarkdown,
}

// OptionalRecognizers can be enabled by name but are off by default.
var OptionalRecognizers = []string{
	RecognizerXMLTool,
}

// KnownRecognizer reports whether name is a recognizer the extractor has.
func KnownRecognizer(name string) bool {
	return slices.Contains(DefaultRecognizers, name) || slices.Contains(OptionalRecognizers, name)
}

// ExtractorSection controls which encodings the text extractor scans for.
type ExtractorSection struct {
	recognizers   []string
	maxInputBytes int
	mu            sync.RWMutex
}

// NewExtractorSection creates a section with the default recognizers enabled.
func NewExtractorSection() *ExtractorSection {
	s := &ExtractorSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *ExtractorSection) ID() string {
	return SectionIDExtractor
}

// Title returns the section title.
func (s *ExtractorSection) Title() string {
	return "Tool Call Extraction"
}

// Description returns the section description.
func (s *ExtractorSection) Description() string {
	return "Select the inline tool call encodings to recognize and cap the size of text scanned per call."
}

// Data returns the current configuration data.
func (s *ExtractorSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"recognizers":     slices.Clone(s.recognizers),
		"max_input_bytes": s.maxInputBytes,
	}
}

// SetData updates the configuration from the provided data.
func (s *ExtractorSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if raw, ok := data["recognizers"]; ok {
		names, ok := stringList(raw)
		if !ok {
			return fmt.Errorf("%w: recognizers must be a list of strings, got %T", ErrInvalidSection, raw)
		}
		s.recognizers = names
	}

	if raw, ok := data["max_input_bytes"]; ok {
		n, ok := intValue(raw)
		if !ok {
			return fmt.Errorf("%w: max_input_bytes must be an integer, got %T", ErrInvalidSection, raw)
		}
		s.maxInputBytes = n
	}

	return nil
}

// Validate rejects unknown recognizer names and non-positive limits.
func (s *ExtractorSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, name := range s.recognizers {
		if !KnownRecognizer(name) {
			return fmt.Errorf("%w: unknown recognizer %q", ErrInvalidSection, name)
		}
	}
	if s.maxInputBytes <= 0 {
		return fmt.Errorf("%w: max_input_bytes must be positive, got %d", ErrInvalidSection, s.maxInputBytes)
	}
	return nil
}

// Reset restores the default recognizers and size limit.
func (s *ExtractorSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recognizers = slices.Clone(DefaultRecognizers)
	s.maxInputBytes = DefaultMaxInputBytes
}

// Recognizers returns the enabled recognizer names.
func (s *ExtractorSection) Recognizers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.recognizers)
}

// SetRecognizers replaces the enabled recognizer names.
func (s *ExtractorSection) SetRecognizers(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recognizers = slices.Clone(names)
}

// MaxInputBytes returns the scan size limit.
func (s *ExtractorSection) MaxInputBytes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxInputBytes
}

// SetMaxInputBytes sets the scan size limit.
func (s *ExtractorSection) SetMaxInputBytes(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxInputBytes = n
}
