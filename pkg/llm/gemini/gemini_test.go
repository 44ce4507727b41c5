package gemini

import (
	"strings"
	"testing"

	"github.com/entrhq/toolcall/pkg/toolcall"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse(t *testing.T) {
	payload := []byte(`{
		"functionCalls": [
			{"name": "list_notes", "args": {"folder": "inbox", "limit": 10}},
			{"name": "", "args": {"x": 1}},
			{"id": "fc-7", "name": "get_time"},
			{"name": "odd_args", "args": "not-a-map"}
		]
	}`)

	calls := New(nil).ParseResponse(payload)
	require.Len(t, calls, 3)

	assert.Equal(t, "list_notes", calls[0].Name)
	assert.Equal(t, map[string]any{"folder": "inbox", "limit": 10.0}, calls[0].Arguments)
	assert.True(t, strings.HasPrefix(calls[0].ID, "call_"))
	assert.Equal(t, toolcall.VendorGemini, calls[0].Vendor)

	assert.Equal(t, "fc-7", calls[1].ID)
	assert.Equal(t, map[string]any{}, calls[1].Arguments)

	assert.Equal(t, "odd_args", calls[2].Name)
	assert.Equal(t, map[string]any{}, calls[2].Arguments)
}

func TestParseResponse_Candidates(t *testing.T) {
	payload := []byte(`{
		"candidates": [{
			"content": {
				"role": "model",
				"parts": [
					{"text": "Checking the calendar."},
					{"functionCall": {"name": "list_events", "args": {"day": "monday"}}},
					{"functionCall": {"name": "get_time", "args": {}}}
				]
			},
			"finishReason": "STOP"
		}]
	}`)

	calls := New(nil).ParseResponse(payload)
	require.Len(t, calls, 2)
	assert.Equal(t, "list_events", calls[0].Name)
	assert.Equal(t, map[string]any{"day": "monday"}, calls[0].Arguments)
	assert.Equal(t, "get_time", calls[1].Name)
}

func TestParseResponse_NoCalls(t *testing.T) {
	for _, payload := range []string{`{}`, `{"functionCalls": {}}`, `{"candidates": []}`} {
		calls := New(nil).ParseResponse([]byte(payload))
		assert.NotNil(t, calls, payload)
		assert.Empty(t, calls, payload)
	}
}

func TestFormatResult(t *testing.T) {
	call := toolcall.ToolCall{ID: "x", Name: "list_notes"}
	result := map[string]any{"notes": []any{"a", "b"}}

	msg := New(nil).FormatResult(call, result)
	assert.Equal(t, "user", msg.Role())

	parts, ok := msg["parts"].([]any)
	require.True(t, ok)
	require.Len(t, parts, 1)

	part := parts[0].(map[string]any)
	fr := part["functionResponse"].(map[string]any)
	assert.Equal(t, "list_notes", fr["name"])
	assert.Equal(t, result, fr["response"])
}
