package toolcall

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		toolName string
		args     map[string]any
		wantOK   bool
		wantName string
	}{
		{name: "valid call", id: "call-1", toolName: "search_files", args: map[string]any{"keyword": "hello"}, wantOK: true, wantName: "search_files"},
		{name: "name is trimmed", id: "call-2", toolName: "  read_file\n", wantOK: true, wantName: "read_file"},
		{name: "empty name rejected", id: "call-3", toolName: ""},
		{name: "whitespace name rejected", id: "call-4", toolName: " \t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, ok := New(tt.id, tt.toolName, tt.args, VendorOpenAI)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantName, call.Name)
			assert.Equal(t, tt.id, call.ID)
			assert.Equal(t, VendorOpenAI, call.Vendor)
			assert.Equal(t, StatusPending, call.Status)
			assert.NotNil(t, call.Arguments)
		})
	}
}

func TestNew_SynthesizesID(t *testing.T) {
	a, ok := New("", "list_notes", nil, VendorGemini)
	require.True(t, ok)
	b, ok := New("  ", "list_notes", nil, VendorGemini)
	require.True(t, ok)

	assert.True(t, strings.HasPrefix(a.ID, "call_"))
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, map[string]any{}, a.Arguments)
}

func TestToolCall_Lifecycle(t *testing.T) {
	call, ok := New("id", "read_file", nil, VendorText)
	require.True(t, ok)
	assert.False(t, call.IsFinished())
	assert.Zero(t, call.Duration())

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	call.Status = StatusError
	call.StartedAt = &start
	call.EndedAt = &end

	assert.True(t, call.IsFinished())
	assert.Equal(t, 1500*time.Millisecond, call.Duration())
}

func TestStringify(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string passes through", "3 hits", "3 hits"},
		{"map is encoded", map[string]any{"success": true, "output": "ok"}, `{"output":"ok","success":true}`},
		{"number", 42.0, "42"},
		{"nil", nil, "null"},
		{"slice", []any{"a", 1.0}, `["a",1]`},
		{"unencodable falls back", math.Inf(1), "+Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stringify(tt.in))
		})
	}
}

func TestDowncasts(t *testing.T) {
	s, ok := AsString("x")
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	_, ok = AsString(1.0)
	assert.False(t, ok)

	m, ok := AsMap(map[string]any{"k": "v"})
	assert.True(t, ok)
	assert.Equal(t, "v", m["k"])

	_, ok = AsMap([]any{})
	assert.False(t, ok)

	sl, ok := AsSlice([]any{1.0})
	assert.True(t, ok)
	assert.Len(t, sl, 1)

	b, ok := AsBool(false)
	assert.True(t, ok)
	assert.False(t, b)

	f, ok := AsFloat(3)
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)

	_, ok = AsFloat("3")
	assert.False(t, ok)
}
