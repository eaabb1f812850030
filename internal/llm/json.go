package llm

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrNoJSON is returned when a response carries no well-formed JSON value.
var ErrNoJSON = errors.New("no JSON object or array in LLM response")

// ExtractJSON returns the first top-level JSON object or array in raw.
// Prose and code fences around the value are ignored. Brackets inside
// string literals do not count toward nesting.
func ExtractJSON(raw string) (json.RawMessage, error) {
	all := ExtractAllJSON(raw)
	if len(all) == 0 {
		return nil, ErrNoJSON
	}
	return all[0], nil
}

// ExtractObject returns the first top-level JSON object in raw, skipping
// any arrays that precede it.
func ExtractObject(raw string) (json.RawMessage, error) {
	for _, candidate := range ExtractAllJSON(raw) {
		if trimmed := bytes.TrimSpace(candidate); len(trimmed) > 0 && trimmed[0] == '{' {
			return candidate, nil
		}
	}
	return nil, ErrNoJSON
}

// ExtractAllJSON returns every top-level JSON object or array in raw, in
// order of appearance. Values nested inside an earlier match are not
// returned separately.
func ExtractAllJSON(raw string) []json.RawMessage {
	var out []json.RawMessage
	for start := 0; start < len(raw); start++ {
		if raw[start] != '{' && raw[start] != '[' {
			continue
		}
		end, ok := matchClose(raw, start)
		if !ok {
			continue
		}
		candidate := raw[start : end+1]
		if json.Valid([]byte(candidate)) {
			out = append(out, json.RawMessage(candidate))
			start = end
		}
	}
	return out
}

// matchClose scans from an opening bracket to its matching close.
func matchClose(s string, start int) (int, bool) {
	var stack []byte
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
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
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != ch {
				return 0, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
