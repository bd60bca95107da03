package interpret

import (
	"encoding/json"
	"strconv"
	"strings"
)

// normalizeDocument maps a decoded JSON value to score records. Three
// shapes are accepted: an object with an "elements" array, a root
// array of element objects, and a single element object. Anything else
// yields nil.
func normalizeDocument(v any) []ParsedElement {
	switch doc := v.(type) {
	case map[string]any:
		if arr, ok := doc["elements"].([]any); ok {
			return normalizeEntries(arr)
		}
		if el, ok := normalizeEntry(doc); ok {
			return []ParsedElement{el}
		}
	case []any:
		return normalizeEntries(doc)
	}
	return nil
}

// normalizeEntries maps an array of raw entries, dropping anything that
// is not an object with a usable name.
func normalizeEntries(arr []any) []ParsedElement {
	var out []ParsedElement
	for _, item := range arr {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if el, ok := normalizeEntry(obj); ok {
			out = append(out, el)
		}
	}
	return out
}

// Accepted field aliases, applied once at the parse boundary. "name"
// wins over "elementName"; critique aliases are tried in order.
var (
	nameAliases     = []string{"name", "elementName"}
	critiqueAliases = []string{"critique", "feedback", "comment"}
)

// normalizeEntry maps one raw object to a ParsedElement. Entries with
// no name under any alias are dropped. Scores are coerced to an
// integer; non-numeric scores become 0. The 0-100 range is deliberately
// not enforced here — only the regex strategies range-filter.
func normalizeEntry(obj map[string]any) (ParsedElement, bool) {
	var name string
	for _, alias := range nameAliases {
		if s, ok := obj[alias].(string); ok && strings.TrimSpace(s) != "" {
			name = strings.TrimSpace(s)
			break
		}
	}
	if name == "" {
		return ParsedElement{}, false
	}

	el := ParsedElement{
		Name:  name,
		Score: coerceScore(obj["score"]),
	}
	for _, alias := range critiqueAliases {
		if s, ok := obj[alias].(string); ok {
			el.Critique = s
			break
		}
	}
	return el, true
}

// coerceScore converts a decoded JSON score value to an int.
func coerceScore(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return int(f)
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return int(f)
		}
	}
	return 0
}

// decodeJSON unmarshals a candidate JSON fragment into a generic value.
func decodeJSON(s string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}

// balancedDelimited returns the text from the opening delimiter at
// start to its matching closer, inclusive, honoring JSON string
// escaping. Returns "" if the input ends before the delimiter closes.
func balancedDelimited(s string, start int, open, close byte) string {
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
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
