package parser

import "strings"

// RepairTrailingCommas drops commas that are followed only by whitespace and
// a closing brace or bracket. Commas inside string literals are kept.
func RepairTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			b.WriteByte(c)
			continue
		}

		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}

		if c == ',' {
			j := i + 1
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}

	return b.String()
}

// BalancedBlock locates the first '{' at or after from and returns the
// half-open span of its balanced {...} block. Braces inside strings are
// ignored. ok is false when there is no opening brace or the block never
// closes, which is the normal state of a truncated stream.
func BalancedBlock(s string, from int) (start, end int, ok bool) {
	if from < 0 {
		from = 0
	}
	if from >= len(s) {
		return 0, 0, false
	}
	rel := strings.IndexByte(s[from:], '{')
	if rel < 0 {
		return 0, 0, false
	}
	start = from + rel

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return start, i + 1, true
			}
		}
	}
	return 0, 0, false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
