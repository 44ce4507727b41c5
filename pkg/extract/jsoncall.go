package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/entrhq/toolcall/pkg/llm/parser"
	"github.com/entrhq/toolcall/pkg/toolcall"
)

var (
	nameKeys      = []string{"tool", "name", "tool_name"}
	argumentsKeys = []string{"arguments", "args", "input"}

	rescueNameRegex      = regexp.MustCompile(`"(?:tool|name|tool_name)"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	rescueArgumentsRegex = regexp.MustCompile(`"(?:arguments|args|input)"\s*:\s*`)

	errNoName = errors.New("no tool name")

	// errNamelessObject ends the chain: the body is a valid object, so a
	// name found further in by the rescue would belong to the arguments.
	errNamelessObject = errors.New("object has no tool name")
)

// CallStrategy is one step of the chain that turns a JSON-ish call body into
// a name and arguments.
type CallStrategy struct {
	Name  string
	Apply func(body string) (name string, args map[string]any, err error)
}

// CallStrategies is the chain used for fenced and wrapped JSON calls: a full
// object decode, then a textual rescue when the object does not parse.
var CallStrategies = []CallStrategy{
	{Name: "object", Apply: objectCall},
	{Name: "rescue", Apply: rescueCall},
}

// decodeCall runs CallStrategies and reports which step succeeded.
func decodeCall(body string) (string, map[string]any, string, error) {
	var errs []error
	for _, s := range CallStrategies {
		name, args, err := s.Apply(body)
		if err == nil {
			return name, args, s.Name, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		if errors.Is(err, errNamelessObject) {
			break
		}
	}
	return "", nil, "", errors.Join(errs...)
}

// objectCall decodes the whole body as an object after trailing-comma repair.
// The name may also live in a nested "function" object, as OpenAI writes it.
func objectCall(body string) (string, map[string]any, error) {
	obj, err := parser.DecodeObject(parser.RepairTrailingCommas(body))
	if err != nil {
		return "", nil, err
	}

	name := firstString(obj, nameKeys)
	args := argumentsOf(obj)

	if name == "" {
		if fn, ok := toolcall.AsMap(obj["function"]); ok {
			name = firstString(fn, nameKeys)
			args = argumentsOf(fn)
		}
	}
	if name == "" {
		return "", nil, errNamelessObject
	}
	return name, args, nil
}

// rescueCall locates the name key textually and decodes only the balanced
// block that follows an arguments key. A name without a decodable block
// still counts as a call with empty arguments.
func rescueCall(body string) (string, map[string]any, error) {
	m := rescueNameRegex.FindStringSubmatch(body)
	if m == nil {
		return "", nil, errNoName
	}
	name := unquote(m[1])
	if strings.TrimSpace(name) == "" {
		return "", nil, errNoName
	}

	args := map[string]any{}
	loc := rescueArgumentsRegex.FindStringIndex(body)
	if loc == nil || loc[1] >= len(body) || body[loc[1]] != '{' {
		return name, args, nil
	}

	start, end, ok := parser.BalancedBlock(body, loc[1])
	if !ok {
		return name, args, nil
	}
	if decoded, err := parser.DecodeObject(parser.RepairTrailingCommas(body[start:end])); err == nil {
		args = decoded
	}
	return name, args, nil
}

func firstString(obj map[string]any, keys []string) string {
	for _, key := range keys {
		if s, ok := toolcall.AsString(obj[key]); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// argumentsOf reads the first arguments key present. A string value is
// itself decoded, since some models double-encode.
func argumentsOf(obj map[string]any) map[string]any {
	for _, key := range argumentsKeys {
		v, present := obj[key]
		if !present {
			continue
		}
		if m, ok := toolcall.AsMap(v); ok {
			return m
		}
		if s, ok := toolcall.AsString(v); ok {
			args, _ := parser.DecodeArguments(s)
			return args
		}
		return map[string]any{}
	}
	return map[string]any{}
}

// unquote resolves JSON escapes in a captured string body.
func unquote(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return s
	}
	return out
}
