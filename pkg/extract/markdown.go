package extract

import (
	"regexp"
	"strings"

	"github.com/entrhq/toolcall/pkg/llm/parser"
)

// markdownToolRegex matches the chat-style progress line
//
//	🔧 **Tool: search_files** optional note
//
// (also 🛠️ and ⚙️, and "Executing:" instead of "Tool:") with an optional
// fenced block on the following lines holding the tool's output.
var markdownToolRegex = regexp.MustCompile(
	`(?:🔧|🛠\x{FE0F}?|⚙\x{FE0F}?)[ \t]*\*\*(Tool|Executing):[ \t]*([^*\r\n]*?)[ \t]*\*\*([^\r\n]*)` +
		"(?:[ \\t]*\\r?\\n\\s*```(?:json)?[ \\t]*\\r?\\n((?s:.*?))```)?",
)

// MarkdownTool is one markdown tool marker.
type MarkdownTool struct {
	// Name is the trimmed tool name; it may be empty for malformed markers.
	Name string

	// Label is "Tool" or "Executing".
	Label string

	// Note is whatever followed the bold marker on the same line, trimmed.
	Note string

	// Result is the raw content of the fenced block, trimmed. Only meaningful
	// when HasResult is set.
	Result    string
	HasResult bool

	Start, End int
}

// DecodedResult returns the result block decoded as JSON, or the raw text
// when it does not decode. It is nil when no block was captured.
func (t MarkdownTool) DecodedResult() any {
	if !t.HasResult {
		return nil
	}
	if v, err := parser.Decode(t.Result); err == nil {
		return v
	}
	return t.Result
}

// FindMarkdownTools returns every markdown tool marker in text, in order.
// A result fence that has not been closed yet is not part of the marker.
func FindMarkdownTools(text string) []MarkdownTool {
	matches := markdownToolRegex.FindAllStringSubmatchIndex(text, -1)
	tools := make([]MarkdownTool, 0, len(matches))
	for _, loc := range matches {
		t := MarkdownTool{
			Label: text[loc[2]:loc[3]],
			Name:  strings.TrimSpace(text[loc[4]:loc[5]]),
			Note:  strings.TrimSpace(text[loc[6]:loc[7]]),
			Start: loc[0],
			End:   loc[1],
		}
		if loc[8] >= 0 {
			t.HasResult = true
			t.Result = strings.TrimSpace(text[loc[8]:loc[9]])
		}
		tools = append(tools, t)
	}
	return tools
}
