package legalcontext

import (
	"bytes"
	"encoding/json"
	"fmt"

	"contract-validator/internal/contracts"
	"contract-validator/internal/llm"
)

func firstObject(raw string) (map[string]json.RawMessage, error) {
	for _, candidate := range llm.ExtractAllJSON(raw) {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(candidate, &obj); err == nil {
			return obj, nil
		}
	}
	return nil, fmt.Errorf("%w: no JSON object", ErrMalformedResponse)
}

// decodeReferences accepts a JSON array of references, or an object that
// wraps the array under key. The first candidate with that shape wins.
func decodeReferences(raw, key string, kind contracts.ReferenceType) ([]contracts.LegalReference, error) {
	candidates := llm.ExtractAllJSON(raw)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, llm.ErrNoJSON)
	}
	for _, candidate := range candidates {
		items, ok := referenceList(candidate, key)
		if !ok {
			continue
		}
		out := make([]contracts.LegalReference, 0, len(items))
		for i, item := range items {
			fields, err := requireStrings(item, "title", "description", "relevance", "source")
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
			}
			out = append(out, contracts.LegalReference{
				Title:         fields["title"],
				Description:   fields["description"],
				Relevance:     fields["relevance"],
				Source:        fields["source"],
				ReferenceType: kind,
			})
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: no %s list", ErrMalformedResponse, key)
}

func referenceList(candidate json.RawMessage, key string) ([]map[string]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(candidate)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, false
		}
		inner, ok := wrapper[key]
		if !ok {
			return nil, false
		}
		trimmed = inner
	}
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, false
	}
	return items, true
}

// requireStrings reads string fields, failing on any missing or non-string
// key. JSON null reads as empty.
func requireStrings(obj map[string]json.RawMessage, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		raw, ok := obj[key]
		if !ok {
			return nil, fmt.Errorf("%w: missing key %q", ErrMalformedResponse, key)
		}
		var value *string
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("%w: key %q is not a string", ErrMalformedResponse, key)
		}
		if value != nil {
			out[key] = *value
		}
	}
	return out, nil
}
