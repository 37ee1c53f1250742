package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrUnparsable is returned when no JSON object can be recovered from a model response.
var ErrUnparsable = errors.New("unparsable model response")

var fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")

var smartQuotes = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
	"‘", "'", "’", "'",
)

// ParseJSONObject recovers the first JSON object embedded in a model response and
// decodes it into target. It tolerates surrounding prose, markdown fences, smart
// quotes, trailing commas and raw control characters inside string values.
// Field types are coerced loosely, so "85" fills an int and "true" fills a bool.
func ParseJSONObject(text string, target interface{}) error {
	object, ok := extractObject(stripFences(text))
	if !ok {
		return fmt.Errorf("%w: no JSON object found", ErrUnparsable)
	}

	attempts := []string{
		object,
		repairJSON(object),
		repairJSON(smartQuotes.Replace(object)),
	}

	var lastErr error
	for _, attempt := range attempts {
		var raw map[string]interface{}
		if err := json.Unmarshal([]byte(attempt), &raw); err != nil {
			lastErr = err
			continue
		}
		return decodeLoose(raw, target)
	}

	return fmt.Errorf("%w: %v", ErrUnparsable, lastErr)
}

func decodeLoose(raw map[string]interface{}, target interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           target,
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	return nil
}

func stripFences(text string) string {
	text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "\ufeff"))
	if m := fencedBlock.FindStringSubmatch(text); m != nil && strings.Contains(m[1], "{") {
		return strings.TrimSpace(m[1])
	}
	return text
}

// extractObject returns the first balanced {...} block, ignoring braces inside strings.
// An unterminated object falls back to the span ending at the last closing brace.
func extractObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	if end := strings.LastIndex(text, "}"); end > start {
		return text[start : end+1], true
	}
	return "", false
}

// repairJSON escapes control characters inside strings and drops trailing commas.
func repairJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
				b.WriteByte(ch)
			case ch == '\\':
				escaped = true
				b.WriteByte(ch)
			case ch == '"':
				inString = false
				b.WriteByte(ch)
			case ch == '\n':
				b.WriteString(`\n`)
			case ch == '\r':
				b.WriteString(`\r`)
			case ch == '\t':
				b.WriteString(`\t`)
			case ch < 0x20:
				fmt.Fprintf(&b, `\u%04x`, ch)
			default:
				b.WriteByte(ch)
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
			b.WriteByte(ch)
		case ',':
			if next := nextSignificant(s, i+1); next == '}' || next == ']' {
				continue
			}
			b.WriteByte(ch)
		default:
			b.WriteByte(ch)
		}
	}

	return b.String()
}

func nextSignificant(s string, from int) byte {
	for i := from; i < len(s); i++ {
		switch s[i] {
		case ' ', '\n', '\r', '\t':
			continue
		default:
			return s[i]
		}
	}
	return 0
}
