// Package llm selects a vendor adapter and normalizes tool calls across
// backends.
//
// Example usage:
//
//	adapter, err := llm.For(toolcall.VendorAnthropic)
//	if err != nil {
//	    return err // unknown vendor is a configuration bug
//	}
//	for _, call := range adapter.ParseResponse(body) {
//	    out := run(call)
//	    history = append(history, adapter.FormatResult(call, out))
//	}
package llm

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/entrhq/toolcall/pkg/llm/anthropic"
	"github.com/entrhq/toolcall/pkg/llm/gemini"
	"github.com/entrhq/toolcall/pkg/llm/ollama"
	"github.com/entrhq/toolcall/pkg/llm/openai"
	"github.com/entrhq/toolcall/pkg/logging"
	"github.com/entrhq/toolcall/pkg/toolcall"
	"github.com/tidwall/gjson"
)

// ErrUnknownVendor is returned when no adapter is registered for a tag.
var ErrUnknownVendor = errors.New("unknown vendor")

// Adapter converts between one vendor's wire format and toolcall.ToolCall.
//
// ParseResponse never fails: calls without a name are skipped and a payload
// with no recognizable calls yields an empty, non-nil slice. FormatResult
// wraps a call's result in the message shape the vendor expects next.
type Adapter interface {
	Vendor() toolcall.Vendor
	ParseResponse(payload []byte) []toolcall.ToolCall
	FormatResult(call toolcall.ToolCall, result any) toolcall.Message
}

// Option configures the adapters returned by For.
type Option func(*options)

type options struct {
	logger *logging.Logger
}

// WithLogger sets the logger handed to every adapter.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

var constructors = map[toolcall.Vendor]func(*logging.Logger) Adapter{
	toolcall.VendorOpenAI:    func(l *logging.Logger) Adapter { return openai.New(l) },
	toolcall.VendorGemini:    func(l *logging.Logger) Adapter { return gemini.New(l) },
	toolcall.VendorOllama:    func(l *logging.Logger) Adapter { return ollama.New(l) },
	toolcall.VendorAnthropic: func(l *logging.Logger) Adapter { return anthropic.New(l) },
}

// Vendors lists the supported vendor tags in a stable order.
func Vendors() []toolcall.Vendor {
	return []toolcall.Vendor{
		toolcall.VendorOpenAI,
		toolcall.VendorGemini,
		toolcall.VendorOllama,
		toolcall.VendorAnthropic,
	}
}

// For returns the adapter for vendor.
func For(vendor toolcall.Vendor, opts ...Option) (Adapter, error) {
	newAdapter, ok := constructors[vendor]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVendor, vendor)
	}

	o := options{logger: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return newAdapter(o.logger.With(string(vendor))), nil
}

// MustFor is For for statically known vendors. It panics on an unknown tag.
func MustFor(vendor toolcall.Vendor, opts ...Option) Adapter {
	a, err := For(vendor, opts...)
	if err != nil {
		panic(err)
	}
	return a
}

// Parse decodes a vendor payload. payload may be raw JSON ([]byte, string,
// json.RawMessage) or loosely-typed Go values such as map[string]any, which
// are encoded first.
func Parse(vendor toolcall.Vendor, payload any, opts ...Option) ([]toolcall.ToolCall, error) {
	adapter, err := For(vendor, opts...)
	if err != nil {
		return nil, err
	}

	data, err := payloadBytes(payload)
	if err != nil {
		return []toolcall.ToolCall{}, nil
	}
	if !gjson.ValidBytes(data) {
		return []toolcall.ToolCall{}, nil
	}
	return adapter.ParseResponse(data), nil
}

// FormatResult wraps result in the vendor's tool-result message.
func FormatResult(vendor toolcall.Vendor, call toolcall.ToolCall, result any) (toolcall.Message, error) {
	adapter, err := For(vendor)
	if err != nil {
		return nil, err
	}
	return adapter.FormatResult(call, result), nil
}

func payloadBytes(payload any) ([]byte, error) {
	switch p := payload.(type) {
	case nil:
		return nil, errors.New("nil payload")
	case []byte:
		return p, nil
	case json.RawMessage:
		return p, nil
	case string:
		return []byte(p), nil
	}
	return json.Marshal(payload)
}
