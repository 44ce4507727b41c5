// Package toolcall defines the canonical tool call shape shared by the vendor
// adapters, the text extractor and the content segmenter.
package toolcall

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Vendor identifies the backend wire format a call was decoded from.
type Vendor string

const (
	// VendorOpenAI is the OpenAI chat-completions format.
	VendorOpenAI Vendor = "openai"

	// VendorGemini is the Gemini generateContent format.
	VendorGemini Vendor = "gemini"

	// VendorOllama is the Ollama chat format.
	VendorOllama Vendor = "ollama"

	// VendorAnthropic is the Anthropic messages format.
	VendorAnthropic Vendor = "anthropic"

	// VendorText marks calls recognized inside free-form assistant text.
	VendorText Vendor = "text"
)

// Status is the lifecycle state of a tool call.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ToolCall is the vendor-neutral representation of one tool invocation.
//
// Name is never empty and Arguments is never nil. Result, Error and the
// timestamps are left for an external executor to fill in.
type ToolCall struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Arguments    map[string]any `json:"arguments"`
	RawArguments string         `json:"raw_arguments,omitempty"`
	Vendor       Vendor         `json:"vendor"`
	Status       Status         `json:"status"`
	Result       any            `json:"result,omitempty"`
	Error        string         `json:"error,omitempty"`
	StartedAt    *time.Time     `json:"started_at,omitempty"`
	EndedAt      *time.Time     `json:"ended_at,omitempty"`
}

// New builds a pending ToolCall. It reports false when the trimmed name is
// empty, in which case the call must be skipped by the caller.
//
// A blank id is replaced with a synthesized one and nil args become an empty map.
func New(id, name string, args map[string]any, vendor Vendor) (ToolCall, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ToolCall{}, false
	}
	if args == nil {
		args = map[string]any{}
	}
	if strings.TrimSpace(id) == "" {
		id = NewID()
	}
	return ToolCall{
		ID:        id,
		Name:      name,
		Arguments: args,
		Vendor:    vendor,
		Status:    StatusPending,
	}, true
}

// NewID synthesizes a call identifier for vendors that do not supply one.
func NewID() string {
	return "call_" + uuid.NewString()
}

// IsFinished reports whether the call reached a terminal status.
func (c ToolCall) IsFinished() bool {
	return c.Status == StatusSuccess || c.Status == StatusError
}

// Duration returns the elapsed time between StartedAt and EndedAt, or zero
// when either is unset.
func (c ToolCall) Duration() time.Duration {
	if c.StartedAt == nil || c.EndedAt == nil {
		return 0
	}
	return c.EndedAt.Sub(*c.StartedAt)
}
