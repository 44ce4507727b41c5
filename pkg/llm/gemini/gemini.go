// Package gemini normalizes Gemini responses whose tool calls are exposed as
// a top-level functionCalls[] array of {name, args}. Args are already a
// mapping, so no decode step is needed.
//
// Raw generateContent bodies carry the same objects as
// candidates[0].content.parts[].functionCall; those are read when the
// top-level array is absent.
package gemini

import (
	"github.com/entrhq/toolcall/pkg/logging"
	"github.com/entrhq/toolcall/pkg/toolcall"
	"github.com/tidwall/gjson"
)

// Adapter implements the Gemini-style parse and format rules.
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

// Vendor returns toolcall.VendorGemini.
func (a *Adapter) Vendor() toolcall.Vendor {
	return toolcall.VendorGemini
}

// ParseResponse reads functionCalls[]. Gemini rarely sends ids; missing ones
// are synthesized.
func (a *Adapter) ParseResponse(payload []byte) []toolcall.ToolCall {
	calls := []toolcall.ToolCall{}

	fcs := gjson.GetBytes(payload, "functionCalls")
	if !fcs.IsArray() {
		fcs = gjson.GetBytes(payload, "candidates.0.content.parts.#.functionCall")
	}
	if !fcs.IsArray() {
		return calls
	}

	for i, fc := range fcs.Array() {
		args := map[string]any{}
		if v, ok := toolcall.AsMap(fc.Get("args").Value()); ok {
			args = v
		}
		call, ok := toolcall.New(fc.Get("id").String(), fc.Get("name").String(), args, toolcall.VendorGemini)
		if !ok {
			a.logger.Debugf("skipping functionCalls[%d]: blank name", i)
			continue
		}
		calls = append(calls, call)
	}

	return calls
}

// FormatResult wraps the result, left structured, in a functionResponse part.
func (a *Adapter) FormatResult(call toolcall.ToolCall, result any) toolcall.Message {
	return toolcall.Message{
		"role": "user",
		"parts": []any{
			map[string]any{
				"functionResponse": map[string]any{
					"name":     call.Name,
					"response": result,
				},
			},
		},
	}
}
