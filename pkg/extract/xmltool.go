package extract

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/entrhq/toolcall/pkg/logging"
)

// xmlToolRegex matches <tool> elements carrying <tool_name> and an
// <arguments> element whose children are the parameters.
var xmlToolRegex = regexp.MustCompile(`(?s)<tool>.*?</tool>`)

// bareAmpersandRegex matches every ampersand, together with the predefined or
// numeric entity it starts when there is one.
var bareAmpersandRegex = regexp.MustCompile(`&(#[0-9]+;|#x[0-9a-fA-F]+;|(?:amp|lt|gt|quot|apos);)?`)

type xmlToolCall struct {
	XMLName    xml.Name `xml:"tool"`
	ServerName string   `xml:"server_name"`
	ToolName   string   `xml:"tool_name"`
	Arguments  struct {
		InnerXML []byte `xml:",innerxml"`
	} `xml:"arguments"`
}

func xmlToolFinder(logger *logging.Logger) func(string) []Extraction {
	return func(text string) []Extraction {
		var out []Extraction
		for _, loc := range xmlToolRegex.FindAllStringIndex(text, -1) {
			call, err := decodeXMLTool(text[loc[0]:loc[1]], logger)
			if err != nil {
				logger.Debugf("skipping <tool> at %d: %v", loc[0], err)
				continue
			}

			args, err := xmlArguments(call.Arguments.InnerXML)
			if err != nil {
				logger.Debugf("<tool> at %d has unreadable arguments: %v", loc[0], err)
				args = map[string]any{}
			}
			out = append(out, Extraction{
				Name:      call.ToolName,
				Arguments: args,
				Kind:      KindCall,
				Start:     loc[0],
				End:       loc[1],
			})
		}
		return out
	}
}

// decodeXMLTool unmarshals one <tool> element. Models often leave & bare
// in argument text, so a failed decode is retried once with those escaped.
func decodeXMLTool(element string, logger *logging.Logger) (xmlToolCall, error) {
	var call xmlToolCall
	err := xml.Unmarshal([]byte(element), &call)
	if err == nil {
		return call, nil
	}

	escaped := escapeBareAmpersands(element)
	if escaped == element {
		return call, err
	}
	call = xmlToolCall{}
	if retryErr := xml.Unmarshal([]byte(escaped), &call); retryErr != nil {
		return call, errors.Join(err, retryErr)
	}
	logger.Debugf("decoded <tool> after escaping bare ampersands")
	return call, nil
}

func escapeBareAmpersands(s string) string {
	return bareAmpersandRegex.ReplaceAllStringFunc(s, func(m string) string {
		if m == "&" {
			return "&amp;"
		}
		return m
	})
}

// xmlArguments flattens the direct children of <arguments> into trimmed
// strings. Nested elements contribute their text to the enclosing child.
func xmlArguments(inner []byte) (map[string]any, error) {
	wrapped := make([]byte, 0, len(inner)+len("<arguments></arguments>"))
	wrapped = append(wrapped, "<arguments>"...)
	wrapped = append(wrapped, inner...)
	wrapped = append(wrapped, "</arguments>"...)

	decoder := xml.NewDecoder(strings.NewReader(string(wrapped)))
	args := make(map[string]any)

	var (
		depth   int
		current string
		value   strings.Builder
	)
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse arguments XML: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 {
				current = t.Name.Local
				value.Reset()
			}
		case xml.EndElement:
			if depth == 2 {
				if v := strings.TrimSpace(value.String()); v != "" {
					args[current] = v
				}
			}
			depth--
		case xml.CharData:
			if depth >= 2 {
				value.Write(t)
			}
		}
	}
	return args, nil
}
