// Package anthropic normalizes Anthropic messages responses. Tool calls are
// the content[] blocks with type "tool_use"; text and thinking blocks are
// ignored here.
package anthropic

import (
	"github.com/entrhq/toolcall/pkg/logging"
	"github.com/entrhq/toolcall/pkg/toolcall"
	"github.com/tidwall/gjson"
)

const blockTypeToolUse = "tool_use"

// Adapter implements the Anthropic-style parse and format rules.
type Adapter struct {
	logger *logging.Logger
}

// New creates an adapter. A nil logger discards output.
func New(logger *logging.Logger) *Adapter {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Adapter{logger: logger}
}

// Vendor returns toolcall.VendorAnthropic.
func (a *Adapter) Vendor() toolcall.Vendor {
	return toolcall.VendorAnthropic
}

// ParseResponse reads the tool_use blocks of content[] in order.
func (a *Adapter) ParseResponse(payload []byte) []toolcall.ToolCall {
	calls := []toolcall.ToolCall{}

	blocks := gjson.GetBytes(payload, "content")
	if !blocks.IsArray() {
		return calls
	}

	for i, block := range blocks.Array() {
		if block.Get("type").String() != blockTypeToolUse {
			continue
		}
		args := map[string]any{}
		if v, ok := toolcall.AsMap(block.Get("input").Value()); ok {
			args = v
		}
		call, ok := toolcall.New(block.Get("id").String(), block.Get("name").String(), args, toolcall.VendorAnthropic)
		if !ok {
			a.logger.Debugf("skipping content[%d]: tool_use without name", i)
			continue
		}
		calls = append(calls, call)
	}

	return calls
}

// FormatResult builds a user message holding one tool_result block.
func (a *Adapter) FormatResult(call toolcall.ToolCall, result any) toolcall.Message {
	return toolcall.Message{
		"role": "user",
		"content": []any{
			map[string]any{
				"type":        "tool_result",
				"tool_use_id": call.ID,
				"content":     toolcall.Stringify(result),
			},
		},
	}
}
