package parser

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Strict(t *testing.T) {
	v, err := Decode(`  {"keyword": "hello", "limit": 3}  `)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"keyword": "hello", "limit": 3.0}, v)
}

// A literal line break inside a string value is rejected by encoding/json but
// recovered by the escape step, yielding the same value as the escaped form.
func TestDecode_LiteralNewlineInString(t *testing.T) {
	raw := "{\"content\": \"line one\nline two\r\nline three\", \"path\": \"a.md\"}"

	var strict any
	require.Error(t, json.Unmarshal([]byte(raw), &strict))

	got, err := Decode(raw)
	require.NoError(t, err)

	var want any
	require.NoError(t, json.Unmarshal([]byte(`{"content": "line one\nline two\r\nline three", "path": "a.md"}`), &want))
	assert.Equal(t, want, got)
}

func TestDecode_CRLFInStringKeepsOneLineBreak(t *testing.T) {
	got, err := DecodeObject("{\"a\": \"x\r\ny\"}")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "x\r\ny"}, got)
	assert.Equal(t, 1, strings.Count(got["a"].(string), "\n"))
}

func TestDecode_NewlinesOutsideStringsUntouched(t *testing.T) {
	v, err := Decode("{\n  \"a\": 1,\n  \"b\": [true, null]\n}")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1.0, "b": []any{true, nil}}, v)
}

func TestDecode_Failures(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
	}{
		{"empty", ""},
		{"whitespace", "   \n"},
		{"truncated object", `{"tool":"update_file"`},
		{"not json", "hello world"},
		{"truncated with newline in string", "{\"a\": \"b\nc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Decode(tt.fragment)
			assert.Nil(t, v)
			assert.True(t, errors.Is(err, ErrUndecodable), "got %v", err)
		})
	}
}

func TestDecodeObject(t *testing.T) {
	m, err := DecodeObject(`{"path":"README.md"}`)
	require.NoError(t, err)
	assert.Equal(t, "README.md", m["path"])

	for _, fragment := range []string{`[1,2]`, `"str"`, `42`, `null`} {
		_, err := DecodeObject(fragment)
		assert.ErrorIs(t, err, ErrNotObject, fragment)
	}

	_, err = DecodeObject(`{`)
	assert.ErrorIs(t, err, ErrUndecodable)
}

func TestDecodeWith_StrategyOrder(t *testing.T) {
	var calls []string
	chain := []Strategy{
		{Name: "first", Apply: func(string) (any, error) {
			calls = append(calls, "first")
			return nil, errors.New("nope")
		}},
		{Name: "second", Apply: func(string) (any, error) {
			calls = append(calls, "second")
			return "ok", nil
		}},
		{Name: "third", Apply: func(string) (any, error) {
			calls = append(calls, "third")
			return "unreachable", nil
		}},
	}

	v, err := DecodeWith("x", chain)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, []string{"first", "second"}, calls)

	_, err = DecodeWith("x", nil)
	assert.ErrorIs(t, err, ErrUndecodable)
}

func TestEscapeControlChars(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		want        string
		wantChanged bool
	}{
		{"no strings", "{\n}", "{\n}", false},
		{"newline in string", "{\"a\":\"x\ny\"}", `{"a":"x\ny"}`, true},
		{"tab in string", "\"a\tb\"", `"a\tb"`, true},
		{"escaped quote keeps string open", "\"say \\\"hi\nthere\\\"\"", `"say \"hi\nthere\""`, true},
		{"escaped backslash closes normally", "\"c:\\\\\"\n", "\"c:\\\\\"\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := EscapeControlChars(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}

func TestDecodeArguments(t *testing.T) {
	args, err := DecodeArguments("")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, args)

	args, err = DecodeArguments(`{"keyword":"hello"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"keyword": "hello"}, args)

	args, err = DecodeArguments(`{"keyword":`)
	assert.ErrorIs(t, err, ErrUndecodable)
	assert.Equal(t, map[string]any{}, args)

	args, err = DecodeArguments(`["not", "an", "object"]`)
	assert.ErrorIs(t, err, ErrNotObject)
	assert.Equal(t, map[string]any{}, args)
}
