package extract

import (
	"regexp"
	"strings"

	"github.com/entrhq/toolcall/pkg/config"
	"github.com/entrhq/toolcall/pkg/llm/parser"
	"github.com/entrhq/toolcall/pkg/logging"
)

// Built-in recognizer names, in scan order.
const (
	FencedJSON    = config.RecognizerFencedJSON
	WrappedInvoke = config.RecognizerWrappedInvoke
	WrappedJSON   = config.RecognizerWrappedJSON
	BareInvoke    = config.RecognizerBareInvoke
	ResultEcho    = config.RecognizerResultEcho
	Markdown      = config.RecognizerMarkdown

	// XMLTool is off unless enabled by name.
	XMLTool = config.RecognizerXMLTool
)

// Recognizer is one named grammar. Find scans the whole text and returns raw
// candidates with spans; filtering and overlap resolution happen in Extract.
type Recognizer struct {
	Name string
	Find func(text string) []Extraction
}

// DefaultRecognizers returns the built-in recognizers in scan order.
func DefaultRecognizers() []Recognizer {
	return []Recognizer{
		{Name: FencedJSON, Find: findFencedJSON},
		{Name: WrappedInvoke, Find: findWrappedInvoke},
		{Name: WrappedJSON, Find: findWrappedJSON},
		{Name: BareInvoke, Find: findBareInvoke},
		{Name: ResultEcho, Find: findResultEcho},
		{Name: Markdown, Find: findMarkdown},
	}
}

// OptionalRecognizers returns the built-in recognizers that only run when
// enabled by name.
func OptionalRecognizers() []Recognizer {
	return optionalRecognizers(logging.Nop())
}

func optionalRecognizers(logger *logging.Logger) []Recognizer {
	return []Recognizer{
		{Name: XMLTool, Find: xmlToolFinder(logger)},
	}
}

// Compile patterns once at package level
var (
	fencedCallRegex = regexp.MustCompile("(?s)```[ \\t]*(?:tool_call|tool-call|toolcall|tool)[ \\t]*\\r?\\n(.*?)```")

	// Go regexp has no backreferences, so each wrapper spelling gets its own
	// pattern to keep open and close tags paired.
	wrapperRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(?s)<tool_call>(.*?)</tool_call>`),
		regexp.MustCompile(`(?s)<function_calls>(.*?)</function_calls>`),
	}

	invokeRegex    = regexp.MustCompile(`(?s)<invoke\s+name="([^"]*)"\s*>(.*?)</invoke>`)
	parameterRegex = regexp.MustCompile(`(?s)<parameter\s+name="([^"]*)"\s*>(.*?)</parameter>`)

	resultEchoRegex = regexp.MustCompile(`(?s)<tool_result\b([^>]*)>(.*?)</tool_result>`)
	attributeRegex  = regexp.MustCompile(`([a-zA-Z_][\w-]*)\s*=\s*"([^"]*)"`)
)

func findFencedJSON(text string) []Extraction {
	var out []Extraction
	for _, loc := range fencedCallRegex.FindAllStringSubmatchIndex(text, -1) {
		name, args, _, err := decodeCall(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		out = append(out, Extraction{
			Name:      name,
			Arguments: args,
			Kind:      KindCall,
			Start:     loc[0],
			End:       loc[1],
		})
	}
	return out
}

// wrapper is one matched <tool_call> or <function_calls> element.
type wrapper struct {
	start, end         int
	bodyStart, bodyEnd int
}

func findWrappers(text string) []wrapper {
	var out []wrapper
	for _, re := range wrapperRegexes {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			out = append(out, wrapper{start: loc[0], end: loc[1], bodyStart: loc[2], bodyEnd: loc[3]})
		}
	}
	return out
}

// findWrappedInvoke emits one candidate per invoke inside a wrapper. A lone
// invoke claims the whole wrapper; several invokes keep their own spans.
func findWrappedInvoke(text string) []Extraction {
	var out []Extraction
	for _, w := range findWrappers(text) {
		invokes := findInvokes(text[w.bodyStart:w.bodyEnd], w.bodyStart)
		if len(invokes) == 1 {
			invokes[0].Start, invokes[0].End = w.start, w.end
		}
		out = append(out, invokes...)
	}
	return out
}

// findWrappedJSON handles wrappers whose body is a JSON call rather than an
// invoke element.
func findWrappedJSON(text string) []Extraction {
	var out []Extraction
	for _, w := range findWrappers(text) {
		body := text[w.bodyStart:w.bodyEnd]
		if strings.Contains(body, "<invoke") {
			continue
		}
		name, args, _, err := decodeCall(body)
		if err != nil {
			continue
		}
		out = append(out, Extraction{
			Name:      name,
			Arguments: args,
			Kind:      KindCall,
			Start:     w.start,
			End:       w.end,
		})
	}
	return out
}

func findBareInvoke(text string) []Extraction {
	return findInvokes(text, 0)
}

// findInvokes parses every invoke element in s. Spans are shifted by offset
// so they index the original text.
func findInvokes(s string, offset int) []Extraction {
	var out []Extraction
	for _, loc := range invokeRegex.FindAllStringSubmatchIndex(s, -1) {
		out = append(out, Extraction{
			Name:      s[loc[2]:loc[3]],
			Arguments: invokeArguments(s[loc[4]:loc[5]]),
			Kind:      KindCall,
			Start:     offset + loc[0],
			End:       offset + loc[1],
		})
	}
	return out
}

// invokeArguments reads parameter children as trimmed strings with no type
// coercion. Without parameters the body itself is decoded as JSON.
func invokeArguments(body string) map[string]any {
	params := parameterRegex.FindAllStringSubmatch(body, -1)
	if len(params) == 0 {
		if strings.TrimSpace(body) == "" {
			return map[string]any{}
		}
		args, err := parser.DecodeObject(body)
		if err != nil {
			return map[string]any{}
		}
		return args
	}

	args := make(map[string]any, len(params))
	for _, p := range params {
		key := strings.TrimSpace(p[1])
		if key == "" {
			continue
		}
		args[key] = strings.TrimSpace(p[2])
	}
	return args
}

// findResultEcho reads <tool_result name="..." type="..." url="...">body</tool_result>.
func findResultEcho(text string) []Extraction {
	var out []Extraction
	for _, loc := range resultEchoRegex.FindAllStringSubmatchIndex(text, -1) {
		attrs := parseAttributes(text[loc[2]:loc[3]])
		body := strings.TrimSpace(text[loc[4]:loc[5]])
		args, result := resultArguments(attrs, body)

		out = append(out, Extraction{
			Name:      attrs["name"],
			Arguments: args,
			Result:    result,
			Kind:      KindResult,
			Start:     loc[0],
			End:       loc[1],
		})
	}
	return out
}

// resultArguments derives the argument set of a result echo and the result
// value carried by its body.
func resultArguments(attrs map[string]string, body string) (map[string]any, any) {
	var result any
	if body != "" {
		result = body
	}

	decoded, err := parser.Decode(body)
	if err == nil {
		result = decoded
	}

	if url, ok := attrs["url"]; ok {
		return map[string]any{"url": url}, result
	}
	if err == nil {
		if m, ok := decoded.(map[string]any); ok {
			return m, result
		}
		return map[string]any{"input": decoded}, result
	}
	if attrs["type"] == "url" {
		return map[string]any{"url": body}, result
	}
	return map[string]any{"text": body}, result
}

func parseAttributes(s string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attributeRegex.FindAllStringSubmatch(s, -1) {
		attrs[m[1]] = m[2]
	}
	return attrs
}

func findMarkdown(text string) []Extraction {
	tools := FindMarkdownTools(text)
	out := make([]Extraction, 0, len(tools))
	for _, t := range tools {
		e := Extraction{
			Name:      t.Name,
			Arguments: map[string]any{},
			Kind:      KindCall,
			Start:     t.Start,
			End:       t.End,
		}
		if t.HasResult {
			e.Kind = KindResult
			e.Result = t.DecodedResult()
		}
		out = append(out, e)
	}
	return out
}
