package synth

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNoJSON means the response contained no [...] or {...} span
var ErrNoJSON = errors.New("no JSON array or object in response")

// ListKey is the wrapper field of object-shaped responses
const ListKey = "bo_cau_hoi"

// ExtractJSON returns the outermost JSON span of a model response. Code
// fences are dropped; the span runs from the first opening bracket to the
// last matching closing bracket.
func ExtractJSON(text string) (string, error) {
	text = stripFences(text)

	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return "", ErrNoJSON
	}
	closing := "]"
	if text[start] == '{' {
		closing = "}"
	}
	end := strings.LastIndex(text, closing)
	if end < start {
		return "", ErrNoJSON
	}
	return text[start : end+1], nil
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	return strings.TrimSuffix(strings.TrimSpace(text), "```")
}

// ParseItems decodes a response into raw item objects. A top-level array
// is used as is; an object yields its "bo_cau_hoi" list, its first array
// field, or itself as a single item. Non-object elements are dropped.
func ParseItems(text string) ([]map[string]any, error) {
	span, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var v any
	if err := json.Unmarshal([]byte(span), &v); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	var list []any
	switch t := v.(type) {
	case []any:
		list = t
	case map[string]any:
		list = listField(t)
	}

	items := make([]map[string]any, 0, len(list))
	for _, el := range list {
		if m, ok := el.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items, nil
}

func listField(obj map[string]any) []any {
	if l, ok := obj[ListKey].([]any); ok {
		return l
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if l, ok := obj[k].([]any); ok {
			return l
		}
	}
	return []any{obj}
}
