// Package openai normalizes OpenAI chat-completion responses.
//
// Tool calls live at choices[0].message.tool_calls[]; each carries an id and
// a function whose arguments are a JSON-encoded string:
//
//	{
//	  "choices": [{
//	    "message": {
//	      "tool_calls": [{
//	        "id": "call-1",
//	        "type": "function",
//	        "function": {"name": "search_files", "arguments": "{\"keyword\":\"hello\"}"}
//	      }]
//	    }
//	  }]
//	}
//
// Results go back as a role "tool" message referencing the call id.
package openai

import (
	"encoding/json"

	"github.com/entrhq/toolcall/pkg/llm/parser"
	"github.com/entrhq/toolcall/pkg/logging"
	"github.com/entrhq/toolcall/pkg/toolcall"
	"github.com/openai/openai-go"
)

// Adapter implements the OpenAI-style parse and format rules.
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

// Vendor returns toolcall.VendorOpenAI.
func (a *Adapter) Vendor() toolcall.Vendor {
	return toolcall.VendorOpenAI
}

// ParseResponse extracts the tool calls of the first choice. Calls without a
// name are skipped; arguments that do not decode leave an empty map and are
// kept verbatim in RawArguments.
func (a *Adapter) ParseResponse(payload []byte) []toolcall.ToolCall {
	calls := []toolcall.ToolCall{}

	var completion openai.ChatCompletion
	if err := json.Unmarshal(payload, &completion); err != nil {
		a.logger.Debugf("payload is not a chat completion: %v", err)
		return calls
	}
	if len(completion.Choices) == 0 {
		return calls
	}

	for i, tc := range completion.Choices[0].Message.ToolCalls {
		args, err := parser.DecodeArguments(tc.Function.Arguments)
		call, ok := toolcall.New(tc.ID, tc.Function.Name, args, toolcall.VendorOpenAI)
		if !ok {
			a.logger.Debugf("skipping tool_calls[%d]: blank function name", i)
			continue
		}
		if err != nil {
			a.logger.Debugf("tool call %s (%s): arguments not decodable: %v", call.ID, call.Name, err)
			call.RawArguments = tc.Function.Arguments
		}
		calls = append(calls, call)
	}

	return calls
}

// FormatResult builds {role: "tool", tool_call_id, content} with the result
// rendered as text.
func (a *Adapter) FormatResult(call toolcall.ToolCall, result any) toolcall.Message {
	return toolcall.Message{
		"role":         "tool",
		"tool_call_id": call.ID,
		"content":      toolcall.Stringify(result),
	}
}
