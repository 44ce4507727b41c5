package segment

import "strings"

// Buffer accumulates a streamed message and re-segments the whole text on
// every chunk. Markers whose closing tag or fence has not arrived yet stay
// plain text until they complete.
//
// A Buffer is owned by one stream and is not safe for concurrent use.
type Buffer struct {
	segmenter *Segmenter
	text      strings.Builder
}

// NewBuffer creates a buffer that segments with s, or with the defaults when
// s is nil.
func NewBuffer(s *Segmenter) *Buffer {
	if s == nil {
		s = defaultSegmenter
	}
	return &Buffer{segmenter: s}
}

// Write appends chunk and returns the segmentation of everything received so
// far.
func (b *Buffer) Write(chunk string) []Segment {
	b.text.WriteString(chunk)
	return b.Segments()
}

// Segments returns the current segmentation without appending anything.
func (b *Buffer) Segments() []Segment {
	return b.segmenter.Segment(b.text.String())
}

// IsInThinking reports whether the stream is inside a reasoning tag that has
// not been closed yet.
func (b *Buffer) IsInThinking() bool {
	if !b.segmenter.thinking {
		return false
	}
	text := b.text.String()
	for _, tag := range []string{"think", "thinking"} {
		open := strings.LastIndex(text, "<"+tag+">")
		if open >= 0 && !strings.Contains(text[open:], "</"+tag+">") {
			return true
		}
	}
	return false
}

// String returns the accumulated text.
func (b *Buffer) String() string {
	return b.text.String()
}

// Len returns the number of bytes received.
func (b *Buffer) Len() int {
	return b.text.Len()
}

// Reset clears the buffer for a new stream.
func (b *Buffer) Reset() {
	b.text.Reset()
}
