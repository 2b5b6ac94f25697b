package genai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON returns the first balanced {...} object in text. Models wrap
// their JSON in prose or code fences, and the prose may itself hold braces.
// Braces inside JSON strings do not count. Without any '{' the whole text is
// returned; an object that never closes is returned as far as it goes.
func extractJSON(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return text
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
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
				return text[start : i+1]
			}
		}
	}
	return text[start:]
}

func decodeJSON(text string, v any) error {
	if err := json.Unmarshal([]byte(extractJSON(text)), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
