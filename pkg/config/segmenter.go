package config

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

const (
	// SectionIDSegmenter is the identifier for the content segmenter section
	SectionIDSegmenter = "segmenter"
)

// DefaultFailureKeywords mark a tool segment as failed when no structured
// result says otherwise. Matching is case-insensitive.
var DefaultFailureKeywords = []string{"error", "failed", "failure", "exception", "❌"}

// SegmenterSection controls display segmentation.
type SegmenterSection struct {
	failureKeywords []string
	thinking        bool
	mu              sync.RWMutex
}

// NewSegmenterSection creates a section with default settings.
func NewSegmenterSection() *SegmenterSection {
	s := &SegmenterSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *SegmenterSection) ID() string {
	return SectionIDSegmenter
}

// Title returns the section title.
func (s *SegmenterSection) Title() string {
	return "Content Segmentation"
}

// Description returns the section description.
func (s *SegmenterSection) Description() string {
	return "Keywords that mark a tool step as failed, and whether reasoning tags become thinking segments."
}

// Data returns the current configuration data.
func (s *SegmenterSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"failure_keywords": slices.Clone(s.failureKeywords),
		"thinking":         s.thinking,
	}
}

// SetData updates the configuration from the provided data.
func (s *SegmenterSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if raw, ok := data["failure_keywords"]; ok {
		keywords, ok := stringList(raw)
		if !ok {
			return fmt.Errorf("%w: failure_keywords must be a list of strings, got %T", ErrInvalidSection, raw)
		}
		s.failureKeywords = keywords
	}

	if raw, ok := data["thinking"]; ok {
		enabled, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("%w: thinking must be a boolean, got %T", ErrInvalidSection, raw)
		}
		s.thinking = enabled
	}

	return nil
}

// Validate rejects blank keywords.
func (s *SegmenterSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, kw := range s.failureKeywords {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("%w: failure_keywords[%d] is blank", ErrInvalidSection, i)
		}
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *SegmenterSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failureKeywords = slices.Clone(DefaultFailureKeywords)
	s.thinking = true
}

// FailureKeywords returns the configured failure keywords.
func (s *SegmenterSection) FailureKeywords() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.failureKeywords)
}

// SetFailureKeywords replaces the failure keywords.
func (s *SegmenterSection) SetFailureKeywords(keywords []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failureKeywords = slices.Clone(keywords)
}

// ThinkingEnabled reports whether reasoning tags are segmented.
func (s *SegmenterSection) ThinkingEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.thinking
}

// SetThinkingEnabled toggles reasoning tag segmentation.
func (s *SegmenterSection) SetThinkingEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thinking = enabled
}
