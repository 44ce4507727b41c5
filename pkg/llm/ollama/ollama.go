// Package ollama normalizes Ollama chat responses (message.tool_calls[]).
package ollama

import (
	"github.com/entrhq/toolcall/pkg/llm/parser"
	"github.com/entrhq/toolcall/pkg/logging"
	"github.com/entrhq/toolcall/pkg/toolcall"
	"github.com/tidwall/gjson"
)

// Adapter implements the Ollama-style parse and format rules.
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

// Vendor returns toolcall.VendorOllama.
func (a *Adapter) Vendor() toolcall.Vendor {
	return toolcall.VendorOllama
}

// ParseResponse reads message.tool_calls[].function. Arguments normally
// arrive as a JSON string and go through the sanitizing decoder; newer
// servers send an object, which is taken as is.
func (a *Adapter) ParseResponse(payload []byte) []toolcall.ToolCall {
	calls := []toolcall.ToolCall{}

	tcs := gjson.GetBytes(payload, "message.tool_calls")
	if !tcs.IsArray() {
		return calls
	}

	for i, tc := range tcs.Array() {
		fn := tc.Get("function")
		rawArgs := fn.Get("arguments")

		var (
			args   = map[string]any{}
			raw    string
			badArg error
		)
		switch {
		case rawArgs.IsObject():
			args, _ = toolcall.AsMap(rawArgs.Value())
		case rawArgs.Type == gjson.String:
			args, badArg = parser.DecodeArguments(rawArgs.String())
			if badArg != nil {
				raw = rawArgs.String()
			}
		}

		call, ok := toolcall.New(tc.Get("id").String(), fn.Get("name").String(), args, toolcall.VendorOllama)
		if !ok {
			a.logger.Debugf("skipping tool_calls[%d]: blank function name", i)
			continue
		}
		if badArg != nil {
			a.logger.Debugf("tool call %s: arguments not decodable: %v", call.Name, badArg)
			call.RawArguments = raw
		}
		calls = append(calls, call)
	}

	return calls
}

// FormatResult builds {role: "tool", content}. Ollama matches tool messages
// to calls by position, so there is no id field.
func (a *Adapter) FormatResult(call toolcall.ToolCall, result any) toolcall.Message {
	return toolcall.Message{
		"role":    "tool",
		"content": toolcall.Stringify(result),
	}
}
