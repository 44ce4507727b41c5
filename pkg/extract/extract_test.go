package extract

import (
	"bytes"
	"strings"
	"testing"

	"github.com/entrhq/toolcall/pkg/config"
	"github.com/entrhq/toolcall/pkg/logging"
	"github.com/entrhq/toolcall/pkg/toolcall"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fence = "```"

func TestExtract_FencedJSON(t *testing.T) {
	block := fence + "tool_call\n{\"tool\": \"search_files\", \"arguments\": {\"keyword\": \"hello\",},}\n" + fence
	text := "Let me check.\n" + block + "\nDone."

	got := Extract(text)
	require.Len(t, got, 1)

	e := got[0]
	assert.Equal(t, "search_files", e.Name)
	assert.Equal(t, map[string]any{"keyword": "hello"}, e.Arguments)
	assert.Equal(t, KindCall, e.Kind)
	assert.Equal(t, FencedJSON, e.Recognizer)
	assert.Equal(t, block, text[e.Start:e.End])
}

func TestExtract_FencedJSON_Variants(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		label    string
		wantName string
		wantArgs map[string]any
	}{
		{
			name:     "literal newline inside string",
			label:    "tool",
			body:     "{\"name\": \"write_file\", \"args\": {\"content\": \"line1\nline2\"}}",
			wantName: "write_file",
			wantArgs: map[string]any{"content": "line1\nline2"},
		},
		{
			name:     "string arguments are decoded",
			label:    "tool-call",
			body:     `{"tool_name": "read_file", "arguments": "{\"path\": \"x.md\"}"}`,
			wantName: "read_file",
			wantArgs: map[string]any{"path": "x.md"},
		},
		{
			name:     "nested function object",
			label:    "toolcall",
			body:     `{"type": "function", "function": {"name": "get_weather", "arguments": {"city": "Paris"}}}`,
			wantName: "get_weather",
			wantArgs: map[string]any{"city": "Paris"},
		},
		{
			name:     "input key",
			label:    "tool_call",
			body:     `{"tool": "create_note", "input": {"title": "Todo"}}`,
			wantName: "create_note",
			wantArgs: map[string]any{"title": "Todo"},
		},
		{
			name:     "rescue decodes only the arguments block",
			label:    "tool_call",
			body:     "{\"tool\": \"update_file\", \"arguments\": {\"path\": \"a.go\"}, \"content\": \"unterminated}",
			wantName: "update_file",
			wantArgs: map[string]any{"path": "a.go"},
		},
		{
			name:     "rescue keeps a bare name",
			label:    "tool",
			body:     "{\"tool\": \"list_tags\", \"arguments\": [1,",
			wantName: "list_tags",
			wantArgs: map[string]any{},
		},
		{
			name:     "rescue resolves escapes in the name",
			label:    "tool",
			body:     `{"name": "say_\"hi\"", "arguments": {"a": 1,}, oops}`,
			wantName: `say_"hi"`,
			wantArgs: map[string]any{"a": 1.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := fence + tt.label + "\n" + tt.body + "\n" + fence
			got := Extract(text)
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantName, got[0].Name)
			assert.Equal(t, tt.wantArgs, got[0].Arguments)
			assert.Equal(t, 0, got[0].Start)
			assert.Equal(t, len(text), got[0].End)
		})
	}
}

func TestExtract_WrappedInvoke(t *testing.T) {
	text := `<tool_call><invoke name="read_file"><parameter name="path">README.md</parameter></invoke></tool_call>`

	got := Extract(text)
	require.Len(t, got, 1)
	assert.Equal(t, "read_file", got[0].Name)
	assert.Equal(t, map[string]any{"path": "README.md"}, got[0].Arguments)
	assert.Equal(t, WrappedInvoke, got[0].Recognizer)
	assert.Equal(t, 0, got[0].Start)
	assert.Equal(t, len(text), got[0].End)
}

func TestExtract_WrappedInvoke_Multiple(t *testing.T) {
	first := `<invoke name="search"><parameter name="query">  go generics  </parameter><parameter name="limit">5</parameter></invoke>`
	second := `<invoke name="summarize">{"style": "short"}</invoke>`
	text := "<function_calls>\n" + first + "\n" + second + "\n</function_calls>"

	got := Extract(text)
	require.Len(t, got, 2)

	assert.Equal(t, "search", got[0].Name)
	assert.Equal(t, map[string]any{"query": "go generics", "limit": "5"}, got[0].Arguments, "parameters stay strings")
	assert.Equal(t, first, text[got[0].Start:got[0].End])

	assert.Equal(t, "summarize", got[1].Name)
	assert.Equal(t, map[string]any{"style": "short"}, got[1].Arguments)
	assert.Equal(t, second, text[got[1].Start:got[1].End])

	for _, e := range got {
		assert.Equal(t, WrappedInvoke, e.Recognizer)
	}
}

func TestExtract_WrappedJSON(t *testing.T) {
	text := "ok <tool_call>\n{\"name\": \"list_notes\", \"arguments\": {\"tag\": \"go\",}}\n</tool_call>"

	got := Extract(text)
	require.Len(t, got, 1)
	assert.Equal(t, "list_notes", got[0].Name)
	assert.Equal(t, map[string]any{"tag": "go"}, got[0].Arguments)
	assert.Equal(t, WrappedJSON, got[0].Recognizer)
	assert.Equal(t, strings.Index(text, "<tool_call>"), got[0].Start)
	assert.Equal(t, len(text), got[0].End)
}

func TestExtract_WrapperTagsMustPair(t *testing.T) {
	assert.Empty(t, Extract(`<tool_call>{"name": "x"}</function_calls>`))
}

func TestExtract_BareInvoke(t *testing.T) {
	text := `Sure. <invoke name="delete_note"><parameter name="id">42</parameter></invoke> Done.`

	got := Extract(text)
	require.Len(t, got, 1)
	assert.Equal(t, "delete_note", got[0].Name)
	assert.Equal(t, map[string]any{"id": "42"}, got[0].Arguments)
	assert.Equal(t, BareInvoke, got[0].Recognizer)

	t.Run("undecodable body gives empty arguments", func(t *testing.T) {
		got := Extract(`<invoke name="ping">not json</invoke>`)
		require.Len(t, got, 1)
		assert.Equal(t, map[string]any{}, got[0].Arguments)
	})
}

func TestExtract_ResultEcho(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantArgs   map[string]any
		wantResult any
	}{
		{
			name:       "url attribute",
			text:       `<tool_result name="fetch" url="https://example.com">page body</tool_result>`,
			wantArgs:   map[string]any{"url": "https://example.com"},
			wantResult: "page body",
		},
		{
			name:       "mapping body",
			text:       `<tool_result name="search">{"hits": 3}</tool_result>`,
			wantArgs:   map[string]any{"hits": 3.0},
			wantResult: map[string]any{"hits": 3.0},
		},
		{
			name:       "scalar body",
			text:       `<tool_result name="calc">42</tool_result>`,
			wantArgs:   map[string]any{"input": 42.0},
			wantResult: 42.0,
		},
		{
			name:       "undecodable url body",
			text:       `<tool_result name="web" type="url"> https://a.example/b </tool_result>`,
			wantArgs:   map[string]any{"url": "https://a.example/b"},
			wantResult: "https://a.example/b",
		},
		{
			name:       "undecodable text body",
			text:       `<tool_result name="echo">plain words</tool_result>`,
			wantArgs:   map[string]any{"text": "plain words"},
			wantResult: "plain words",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			require.Len(t, got, 1)
			assert.Equal(t, KindResult, got[0].Kind)
			assert.Equal(t, ResultEcho, got[0].Recognizer)
			assert.Equal(t, tt.wantArgs, got[0].Arguments)
			assert.Equal(t, tt.wantResult, got[0].Result)
		})
	}
}

func TestExtract_Markdown(t *testing.T) {
	t.Run("with result block", func(t *testing.T) {
		text := "🔧 **Tool: search_files** done\n" + fence + "json\n{\"success\":true,\"output\":\"3 hits\"}\n" + fence + "\nAll set."

		got := Extract(text)
		require.Len(t, got, 1)
		assert.Equal(t, "search_files", got[0].Name)
		assert.Equal(t, KindResult, got[0].Kind)
		assert.Equal(t, Markdown, got[0].Recognizer)
		assert.Equal(t, map[string]any{"success": true, "output": "3 hits"}, got[0].Result)
		assert.Equal(t, strings.Index(text, "\nAll set."), got[0].End)
	})

	t.Run("without result block", func(t *testing.T) {
		got := Extract("⚙️ **Executing: build_index**")
		require.Len(t, got, 1)
		assert.Equal(t, "build_index", got[0].Name)
		assert.Equal(t, KindCall, got[0].Kind)
		assert.Nil(t, got[0].Result)
	})
}

func TestFindMarkdownTools(t *testing.T) {
	text := "🛠️ **Tool: read_file** ❌ failed\n\n" +
		"🔧 **Executing: grep**\n" + fence + "\nplain output\n" + fence + "\n" +
		"🔧 **Tool: pending**\n" + fence + "json\n{\"partial\": "

	tools := FindMarkdownTools(text)
	require.Len(t, tools, 3)

	assert.Equal(t, "read_file", tools[0].Name)
	assert.Equal(t, "Tool", tools[0].Label)
	assert.Equal(t, "❌ failed", tools[0].Note)
	assert.False(t, tools[0].HasResult)
	assert.Nil(t, tools[0].DecodedResult())

	assert.Equal(t, "grep", tools[1].Name)
	assert.Equal(t, "Executing", tools[1].Label)
	assert.True(t, tools[1].HasResult)
	assert.Equal(t, "plain output", tools[1].Result)
	assert.Equal(t, "plain output", tools[1].DecodedResult())

	assert.Equal(t, "pending", tools[2].Name)
	assert.False(t, tools[2].HasResult, "an unclosed fence is not a result yet")
}

// Scenario: two markers of different families next to each other.
func TestExtract_AdjacentMarkers(t *testing.T) {
	invoke := `<invoke name="a"><parameter name="x">1</parameter></invoke>`
	result := `<tool_result name="b">ok</tool_result>`
	text := invoke + result

	got := Extract(text)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "b", got[1].Name)
	assert.Equal(t, Extraction{
		Name: "a", Arguments: map[string]any{"x": "1"}, Kind: KindCall,
		Recognizer: BareInvoke, Start: 0, End: len(invoke),
	}, got[0])
	assert.Equal(t, len(invoke), got[1].Start)
	assert.Equal(t, len(text), got[1].End)
}

func TestExtract_PartialMarkers(t *testing.T) {
	partials := []string{
		`{"tool":"update_file"`,
		fence + "tool_call\n{\"tool\": \"update_file\", \"arguments\": {}}",
		`<tool_call><invoke name="read_file"><parameter name="path">a`,
		`<tool_call>{"name": "read_file"}`,
		`<invoke name="read_file"><parameter name="path">a</parameter>`,
		`<tool_result name="read_file">partial`,
		"🔧 **Tool: search_fi",
	}
	for _, text := range partials {
		assert.Empty(t, Extract(text), "text: %q", text)
	}
}

func TestExtract_BlankNamesNeverEmitted(t *testing.T) {
	blanks := map[string]string{
		FencedJSON:    fence + "tool_call\n{\"tool\": \"  \", \"arguments\": {\"a\": 1}}\n" + fence,
		WrappedInvoke: `<tool_call><invoke name=" "><parameter name="a">1</parameter></invoke></tool_call>`,
		WrappedJSON:   `<tool_call>{"name": "", "arguments": {}}</tool_call>`,
		BareInvoke:    `<invoke name=""></invoke>`,
		ResultEcho:    `<tool_result type="url">https://example.com</tool_result>`,
		Markdown:      "🔧 **Tool:   **\n" + fence + "json\n{}\n" + fence,
	}

	require.Len(t, blanks, len(DefaultRecognizers()))
	for name, text := range blanks {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, Extract(text))
		})
	}

	// A valid object without a top-level name is not a call, even when a
	// "name" or "tool" key appears deeper inside it.
	nameless := map[string]string{
		"fenced name inside arguments": fence + "tool_call\n{\"arguments\": {\"name\": \"bob\", \"age\": 3}}\n" + fence,
		"wrapped tool inside params":   `<tool_call>{"params": {"tool": "inner"}}</tool_call>`,
		"fenced nested function blank": fence + "tool\n{\"function\": {\"arguments\": {\"tool_name\": \"x\"}}}\n" + fence,
	}
	for name, text := range nameless {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, Extract(text))
		})
	}
}

func TestExtract_RescueOnlyForBrokenObjects(t *testing.T) {
	t.Run("broken object still rescued", func(t *testing.T) {
		got := Extract(fence + "tool_call\n{\"name\": \"read_file\", \"arguments\": {\"path\": \"a.go\"} oops\n" + fence)
		require.Len(t, got, 1)
		assert.Equal(t, "read_file", got[0].Name)
		assert.Equal(t, map[string]any{"path": "a.go"}, got[0].Arguments)
	})
}

func TestExtract_Idempotent(t *testing.T) {
	text := mixedText()
	first := Extract(text)
	second := Extract(text)
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestExtract_NonOverlapping(t *testing.T) {
	got := Extract(mixedText())
	require.Len(t, got, 5)

	for i := range got {
		for j := i + 1; j < len(got); j++ {
			a, b := got[i], got[j]
			assert.False(t, a.Start < b.End && b.Start < a.End, "%s and %s overlap", a.Name, b.Name)
			assert.LessOrEqual(t, a.Start, b.Start, "ordered by offset")
		}
	}
}

// The earliest marker wins even when a later-starting marker of another
// grammar would have described the text better.
func TestExtract_FirstByOffsetWins(t *testing.T) {
	t.Run("markdown result swallows an invoke", func(t *testing.T) {
		text := "🔧 **Tool: outer**\n" + fence + "json\n<invoke name=\"inner\"></invoke>\n" + fence

		got := Extract(text)
		require.Len(t, got, 1)
		assert.Equal(t, "outer", got[0].Name)
		assert.Equal(t, Markdown, got[0].Recognizer)
	})

	t.Run("result echo swallows a markdown marker", func(t *testing.T) {
		got := Extract(`<tool_result name="outer">🔧 **Tool: inner**</tool_result>`)
		require.Len(t, got, 1)
		assert.Equal(t, "outer", got[0].Name)
	})

	t.Run("ties go to the earlier recognizer", func(t *testing.T) {
		fixed := func(name string) Recognizer {
			return Recognizer{Name: name, Find: func(string) []Extraction {
				return []Extraction{{Name: name, Start: 0, End: 4}}
			}}
		}
		x := New(WithRecognizers(), WithRecognizer(fixed("first")), WithRecognizer(fixed("second")))

		got := x.Extract("text")
		require.Len(t, got, 1)
		assert.Equal(t, "first", got[0].Name)
		assert.Equal(t, "first", got[0].Recognizer)
		assert.Equal(t, map[string]any{}, got[0].Arguments)
	})
}

func TestExtract_NoMatches(t *testing.T) {
	got := Extract("just prose, no tools here")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNew_Options(t *testing.T) {
	text := fence + "tool\n{\"tool\": \"a\"}\n" + fence + " <invoke name=\"b\"></invoke>"

	t.Run("recognizer selection", func(t *testing.T) {
		var buf bytes.Buffer
		x := New(WithRecognizers(BareInvoke, "yaml-block", FencedJSON), WithLogger(logging.New("extract", &buf)))

		assert.Equal(t, []string{FencedJSON, BareInvoke}, x.Recognizers())
		assert.Len(t, x.Extract(text), 2)
		assert.Contains(t, buf.String(), `ignoring unknown recognizer "yaml-block"`)
	})

	t.Run("config section", func(t *testing.T) {
		section := config.NewExtractorSection()
		section.SetRecognizers([]string{BareInvoke})

		got := New(WithConfig(section)).Extract(text)
		require.Len(t, got, 1)
		assert.Equal(t, "b", got[0].Name)
	})

	t.Run("input limit", func(t *testing.T) {
		var buf bytes.Buffer
		x := New(WithMaxInputBytes(10), WithLogger(logging.New("extract", &buf)))

		got := x.Extract(text)
		assert.NotNil(t, got)
		assert.Empty(t, got)
		assert.Contains(t, buf.String(), "[WARN]")
		assert.Contains(t, buf.String(), "exceeds limit of 10 bytes")
	})

	t.Run("blank names are logged", func(t *testing.T) {
		var buf bytes.Buffer
		x := New(WithLogger(logging.New("extract", &buf)))
		assert.Empty(t, x.Extract(`<invoke name=" "></invoke>`))
		assert.Contains(t, buf.String(), "bare-invoke: dropping candidate at 0 with blank name")
	})
}

func TestRecognizerNamesMatchConfig(t *testing.T) {
	assert.Equal(t, config.DefaultRecognizers, New().Recognizers())
}

func TestExtraction_ToolCall(t *testing.T) {
	call, ok := Extraction{Name: "read_file", Arguments: map[string]any{"path": "a"}, Kind: KindCall}.ToolCall()
	require.True(t, ok)
	assert.Equal(t, toolcall.VendorText, call.Vendor)
	assert.Equal(t, toolcall.StatusPending, call.Status)
	assert.NotEmpty(t, call.ID)
	assert.Equal(t, map[string]any{"path": "a"}, call.Arguments)

	call, ok = Extraction{Name: "calc", Kind: KindResult, Result: 42.0}.ToolCall()
	require.True(t, ok)
	assert.Equal(t, toolcall.StatusSuccess, call.Status)
	assert.Equal(t, 42.0, call.Result)
	assert.Equal(t, map[string]any{}, call.Arguments)

	_, ok = Extraction{Name: " "}.ToolCall()
	assert.False(t, ok)
}

func mixedText() string {
	return strings.Join([]string{
		"I'll look around first.",
		fence + "tool_call\n{\"tool\": \"list_files\", \"arguments\": {\"dir\": \".\"}}\n" + fence,
		`<tool_result name="list_files">["a.go", "b.go"]</tool_result>`,
		`<function_calls><invoke name="read_file"><parameter name="path">a.go</parameter></invoke></function_calls>`,
		"🔧 **Tool: grep** searching\n" + fence + "json\n{\"matches\": 2}\n" + fence,
		`<invoke name="write_file">{"path": "c.go", "content": "package c\n"}</invoke>`,
		"That's everything.",
	}, "\n\n")
}
