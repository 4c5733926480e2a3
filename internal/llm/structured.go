package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaValidator checks a decoded value. Returns nil if valid.
type SchemaValidator[T any] func(T) error

// ExtractJSON decodes the first JSON object in raw model output into T.
// Code fences, surrounding prose, comments, trailing commas and bare
// leading-decimal numbers are tolerated. If validator is non-nil the decoded
// value must also pass it.
func ExtractJSON[T any](raw string, validator SchemaValidator[T]) (T, error) {
	var zero T

	block := extractJSONBlock(stripCodeFences(raw))
	if block == "" {
		return zero, fmt.Errorf("%w: no JSON object found in response", ErrInvalidOutput)
	}
	block = rewriteOutsideStrings(block, dropComment, dropTrailingComma, padLeadingDecimal)

	var result T
	if err := json.Unmarshal([]byte(block), &result); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if validator != nil {
		if err := validator(result); err != nil {
			return zero, fmt.Errorf("%w: validation failed: %v", ErrInvalidOutput, err)
		}
	}
	return result, nil
}

// stripCodeFences removes markdown fence lines, keeping their content.
func stripCodeFences(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// extractJSONBlock finds the first balanced { ... } block in the text.
func extractJSONBlock(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// rewriter inspects s at i (outside any string literal). It may write to b
// and returns how many bytes it consumed; 0 leaves s[i] to the next rewriter.
type rewriter func(s string, i int, b *strings.Builder) int

// rewriteOutsideStrings copies s, giving each byte outside string literals
// to the rewriters in order.
func rewriteOutsideStrings(s string, rewriters ...rewriter) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	inString, escaped := false, false
	for i := 0; i < len(s); {
		c := s[i]
		if inString || c == '"' {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = !inString
			}
			b.WriteByte(c)
			i++
			continue
		}
		consumed := 0
		for _, rw := range rewriters {
			if consumed = rw(s, i, &b); consumed > 0 {
				break
			}
		}
		if consumed == 0 {
			b.WriteByte(c)
			consumed = 1
		}
		i += consumed
	}
	return b.String()
}

// dropComment removes // line comments and /* block */ comments.
func dropComment(s string, i int, _ *strings.Builder) int {
	if s[i] != '/' || i+1 >= len(s) {
		return 0
	}
	switch s[i+1] {
	case '/':
		end := strings.IndexByte(s[i:], '\n')
		if end == -1 {
			return len(s) - i
		}
		return end
	case '*':
		end := strings.Index(s[i+2:], "*/")
		if end == -1 {
			return len(s) - i
		}
		return end + 4
	}
	return 0
}

// dropTrailingComma removes a comma directly before a closing bracket.
func dropTrailingComma(s string, i int, _ *strings.Builder) int {
	if s[i] != ',' {
		return 0
	}
	if next := nextNonSpace(s, i+1); next == '}' || next == ']' {
		return 1
	}
	return 0
}

// padLeadingDecimal rewrites ".8" as "0.8", which JSON does not allow.
func padLeadingDecimal(s string, i int, b *strings.Builder) int {
	if s[i] != '.' || i+1 >= len(s) || !isDigit(s[i+1]) || !isNumericBoundary(prevNonSpace(s, i-1)) {
		return 0
	}
	b.WriteString("0.")
	return 1
}

func nextNonSpace(s string, i int) byte {
	for ; i < len(s); i++ {
		if !isSpace(s[i]) {
			return s[i]
		}
	}
	return 0
}

func prevNonSpace(s string, i int) byte {
	for ; i >= 0; i-- {
		if !isSpace(s[i]) {
			return s[i]
		}
	}
	return 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t'
}

func isNumericBoundary(c byte) bool {
	switch c {
	case 0, ':', ',', '[', '{', '-':
		return true
	default:
		return false
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
