// Package extract finds tool calls and tool results that a model wrote
// inline in its text output.
//
// Six textual encodings are recognized by default, each by an independent
// Recognizer, and a seventh (pure XML <tool> elements) can be enabled by
// name. Extract pools their candidates and keeps the non-overlapping ones in
// document order. The input may be a message that is still streaming: a
// marker whose closing tag or fence has not arrived yet never matches, so
// callers simply re-run Extract on the growing text.
package extract

import (
	"strings"

	"github.com/entrhq/toolcall/pkg/config"
	"github.com/entrhq/toolcall/pkg/logging"
	"github.com/entrhq/toolcall/pkg/toolcall"
)

// Kind tells whether an extraction is a request to run a tool or an echo of
// a tool's output.
type Kind string

const (
	KindCall   Kind = "call"
	KindResult Kind = "result"
)

// Extraction is one tool call or tool result recognized in text. Start and
// End are byte offsets forming the half-open span [Start, End) of the whole
// marker in the scanned string.
type Extraction struct {
	Name       string         `json:"name"`
	Arguments  map[string]any `json:"arguments"`
	Result     any            `json:"result,omitempty"`
	Kind       Kind           `json:"kind"`
	Recognizer string         `json:"recognizer"`
	Start      int            `json:"start"`
	End        int            `json:"end"`
}

// ToolCall converts the extraction into a canonical call tagged with the
// text vendor. Result extractions come back already finished.
func (e Extraction) ToolCall() (toolcall.ToolCall, bool) {
	call, ok := toolcall.New("", e.Name, e.Arguments, toolcall.VendorText)
	if !ok {
		return call, false
	}
	if e.Kind == KindResult {
		call.Status = toolcall.StatusSuccess
		call.Result = e.Result
	}
	return call, true
}

// Extractor runs a fixed set of recognizers over text. It is immutable after
// New and safe for concurrent use.
type Extractor struct {
	recognizers   []Recognizer
	maxInputBytes int
	logger        *logging.Logger
}

// Option configures an Extractor.
type Option func(*options)

type options struct {
	names         []string
	custom        []Recognizer
	maxInputBytes int
	logger        *logging.Logger
}

// WithRecognizers enables only the named built-in recognizers, optional ones
// included. Scan order is DefaultRecognizers then OptionalRecognizers
// regardless of the order given here.
func WithRecognizers(names ...string) Option {
	return func(o *options) {
		o.names = append([]string{}, names...)
	}
}

// WithRecognizer appends a caller-defined recognizer after the built-in ones.
func WithRecognizer(r Recognizer) Option {
	return func(o *options) {
		o.custom = append(o.custom, r)
	}
}

// WithMaxInputBytes overrides the input size limit. Non-positive values keep
// the default.
func WithMaxInputBytes(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxInputBytes = n
		}
	}
}

// WithLogger sets the logger for absorbed conditions. The default discards.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithConfig applies an extractor configuration section.
func WithConfig(section *config.ExtractorSection) Option {
	return func(o *options) {
		if section == nil {
			return
		}
		o.names = section.Recognizers()
		if n := section.MaxInputBytes(); n > 0 {
			o.maxInputBytes = n
		}
	}
}

// New builds an Extractor. Without options the default recognizers are
// enabled.
func New(opts ...Option) *Extractor {
	o := options{
		maxInputBytes: config.DefaultMaxInputBytes,
		logger:        logging.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	recognizers := DefaultRecognizers()
	if o.names != nil {
		all := append(recognizers, optionalRecognizers(o.logger.With("xml"))...)
		recognizers = selectRecognizers(all, o.names, o.logger)
	}
	recognizers = append(recognizers, o.custom...)

	return &Extractor{
		recognizers:   recognizers,
		maxInputBytes: o.maxInputBytes,
		logger:        o.logger,
	}
}

func selectRecognizers(all []Recognizer, names []string, logger *logging.Logger) []Recognizer {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	selected := make([]Recognizer, 0, len(names))
	for _, r := range all {
		if wanted[r.Name] {
			selected = append(selected, r)
			delete(wanted, r.Name)
		}
	}
	for name := range wanted {
		logger.Warnf("ignoring unknown recognizer %q", name)
	}
	return selected
}

// Recognizers returns the names of the enabled recognizers in scan order.
func (x *Extractor) Recognizers() []string {
	names := make([]string, len(x.recognizers))
	for i, r := range x.recognizers {
		names[i] = r.Name
	}
	return names
}

// Extract returns every recognized call and result in text, ordered by
// offset and never overlapping. The result is never nil.
func (x *Extractor) Extract(text string) []Extraction {
	if len(text) > x.maxInputBytes {
		x.logger.Warnf("input of %d bytes exceeds limit of %d bytes, skipping scan", len(text), x.maxInputBytes)
		return []Extraction{}
	}

	var pool []Extraction
	for _, r := range x.recognizers {
		for _, e := range r.Find(text) {
			e.Name = strings.TrimSpace(e.Name)
			if e.Name == "" {
				x.logger.Debugf("%s: dropping candidate at %d with blank name", r.Name, e.Start)
				continue
			}
			if e.Arguments == nil {
				e.Arguments = map[string]any{}
			}
			e.Recognizer = r.Name
			pool = append(pool, e)
		}
	}

	accepted := Resolve(pool, func(e Extraction) (int, int) { return e.Start, e.End })
	if dropped := len(pool) - len(accepted); dropped > 0 {
		x.logger.Debugf("dropped %d overlapping candidates", dropped)
	}
	return accepted
}

var defaultExtractor = New()

// Extract scans text with the default recognizers.
func Extract(text string) []Extraction {
	return defaultExtractor.Extract(text)
}
