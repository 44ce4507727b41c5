// Package segment splits assistant text into display segments: plain text,
// tool steps written in the markdown tool convention, and reasoning asides.
package segment

import (
	"regexp"
	"strings"

	"github.com/entrhq/toolcall/pkg/config"
	"github.com/entrhq/toolcall/pkg/extract"
	"github.com/entrhq/toolcall/pkg/llm/parser"
	"github.com/entrhq/toolcall/pkg/logging"
)

// Type is the kind of a display segment.
type Type string

const (
	TypeText     Type = "text"
	TypeTool     Type = "tool"
	TypeThinking Type = "thinking"
)

// Status is the inferred state of a tool segment.
type Status string

const (
	StatusExecuting Status = "executing"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// Segment is one renderable unit. Start and End are byte offsets of the
// source span [Start, End). Text segments hold trimmed content but their span
// covers the whole gap they came from.
type Segment struct {
	Type      Type           `json:"type"`
	Content   string         `json:"content"`
	Name      string         `json:"name,omitempty"`
	Status    Status         `json:"status,omitempty"`
	Result    any            `json:"result,omitempty"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Start     int            `json:"start"`
	End       int            `json:"end"`
}

var thinkingRegexes = []*regexp.Regexp{
	regexp.MustCompile(`(?s)<think>(.*?)</think>`),
	regexp.MustCompile(`(?s)<thinking>(.*?)</thinking>`),
}

// Segmenter turns text into segments. It is immutable after New and safe
// for concurrent use.
type Segmenter struct {
	failureKeywords []string
	thinking        bool
	logger          *logging.Logger
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithFailureKeywords replaces the keywords that mark a tool step as failed.
func WithFailureKeywords(keywords ...string) Option {
	return func(s *Segmenter) {
		s.failureKeywords = lowerAll(keywords)
	}
}

// WithThinking toggles recognition of reasoning tags. When off they are left
// in the surrounding text.
func WithThinking(enabled bool) Option {
	return func(s *Segmenter) {
		s.thinking = enabled
	}
}

// WithLogger sets the logger. The default discards.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Segmenter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithConfig applies a segmenter configuration section.
func WithConfig(section *config.SegmenterSection) Option {
	return func(s *Segmenter) {
		if section == nil {
			return
		}
		s.failureKeywords = lowerAll(section.FailureKeywords())
		s.thinking = section.ThinkingEnabled()
	}
}

// New builds a Segmenter with the default failure keywords and reasoning
// tags enabled.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{
		failureKeywords: lowerAll(config.DefaultFailureKeywords),
		thinking:        true,
		logger:          logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Segment reconstructs text as an ordered list of segments. Markers never
// overlap; blank stretches between them are dropped. Text without any marker
// comes back whole as one text segment. The result is never nil.
func (s *Segmenter) Segment(text string) []Segment {
	pool := s.markers(text)
	if len(pool) == 0 {
		if strings.TrimSpace(text) == "" {
			return []Segment{}
		}
		return []Segment{{Type: TypeText, Content: text, Start: 0, End: len(text)}}
	}

	markers := extract.Resolve(pool, func(seg Segment) (int, int) { return seg.Start, seg.End })
	if dropped := len(pool) - len(markers); dropped > 0 {
		s.logger.Debugf("dropped %d overlapping markers", dropped)
	}

	segments := make([]Segment, 0, 2*len(markers)+1)
	cursor := 0
	for _, m := range markers {
		if gap, ok := textSegment(text, cursor, m.Start); ok {
			segments = append(segments, gap)
		}
		segments = append(segments, m)
		cursor = m.End
	}
	if gap, ok := textSegment(text, cursor, len(text)); ok {
		segments = append(segments, gap)
	}
	return segments
}

// markers pools thinking and tool markers in family order.
func (s *Segmenter) markers(text string) []Segment {
	var pool []Segment

	if s.thinking {
		for _, re := range thinkingRegexes {
			for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
				pool = append(pool, Segment{
					Type:    TypeThinking,
					Content: text[loc[2]:loc[3]],
					Start:   loc[0],
					End:     loc[1],
				})
			}
		}
	}

	for _, t := range extract.FindMarkdownTools(text) {
		if t.Name == "" {
			continue
		}
		content := t.Note
		if t.HasResult {
			content = t.Result
		}
		pool = append(pool, Segment{
			Type:      TypeTool,
			Content:   content,
			Name:      t.Name,
			Status:    s.status(t),
			Result:    t.DecodedResult(),
			Arguments: map[string]any{},
			Start:     t.Start,
			End:       t.End,
		})
	}

	return pool
}

func textSegment(text string, start, end int) (Segment, bool) {
	if start >= end {
		return Segment{}, false
	}
	content := strings.TrimSpace(text[start:end])
	if content == "" {
		return Segment{}, false
	}
	return Segment{Type: TypeText, Content: content, Start: start, End: end}, true
}

// status infers how a tool step went. A captured result decides on its own,
// and only a structured one can report failure. Without a result the note
// after the marker is checked for failure keywords.
func (s *Segmenter) status(t extract.MarkdownTool) Status {
	if !t.HasResult {
		if s.hasFailureKeyword(t.Note) {
			return StatusError
		}
		return StatusExecuting
	}

	decoded, err := parser.Decode(t.Result)
	if err != nil {
		return StatusSuccess
	}
	if m, ok := decoded.(map[string]any); ok && reportsFailure(m) {
		return StatusError
	}
	return StatusSuccess
}

// reportsFailure is true for {"success": false} or a non-empty "error".
func reportsFailure(m map[string]any) bool {
	if ok, isBool := m["success"].(bool); isBool && !ok {
		return true
	}
	switch e := m["error"].(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(e) != ""
	case bool:
		return e
	default:
		return true
	}
}

func (s *Segmenter) hasFailureKeyword(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range s.failureKeywords {
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func lowerAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

var defaultSegmenter = New()

// Split segments text with the default settings.
func Split(text string) []Segment {
	return defaultSegmenter.Segment(text)
}
