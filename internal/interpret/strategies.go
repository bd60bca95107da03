package interpret

import (
	"regexp"
	"strconv"
	"strings"
)

// strategy is one extraction stage in the cascade. Stages are tried in
// order; the first to return a non-empty slice wins. Confidence is
// fixed per stage and non-increasing down the cascade.
type strategy struct {
	stage      int
	name       string
	confidence int
	partial    bool
	extract    func(string) []ParsedElement
}

// cascade returns the full, ordered strategy list.
func cascade() []strategy {
	return []strategy{
		{1, "tagged JSON fence", 100, false, extractTaggedFence},
		{2, "untagged code fence", 90, false, extractAnyFence},
		{3, "embedded elements object", 80, false, extractEmbeddedObject},
		{4, "embedded element array", 70, false, extractEmbeddedArray},
		{5, "whole response as JSON", 60, false, extractWholeDocument},
		{6, "colon-separated score lines", 50, true, extractColonLines},
		{7, "dash-separated score lines", 45, true, extractDashLines},
		{8, "markdown score table", 40, true, extractMarkdownTable},
		{9, "numbered score list", 35, true, extractNumberedList},
	}
}

var (
	taggedFenceRe = regexp.MustCompile("(?s)```(?:json|JSON)[ \t]*\r?\n(.*?)```")
	anyFenceRe    = regexp.MustCompile("(?s)```[a-zA-Z0-9]*[ \t]*\r?\n(.*?)```")

	colonLineRe = regexp.MustCompile(`(?m)^\s*(?:[-*•]\s*)?([\p{L}][\p{L}\p{N} _./-]{0,40}?)\s*[:：]\s*(\d{1,3})\s*(?:점|points?|pts?|/100)?\s*$`)
	dashLineRe  = regexp.MustCompile(`(?m)^\s*([\p{L}][\p{L}\p{N} _./]{0,40}?)\s*[-–]\s*(\d{1,3})\s*(?:점|points?|pts?|/100)?\s*$`)
	numberedRe  = regexp.MustCompile(`(?m)^\s*\d+[.)]\s*([^:：\n]+?)\s*[:：]\s*(\d{1,3})\s*(?:점|points?|pts?)?\s*(?:[-–—]\s*(.*))?$`)
)

// extractTaggedFence parses the contents of ```json fences.
func extractTaggedFence(raw string) []ParsedElement {
	return extractFences(raw, taggedFenceRe)
}

// extractAnyFence parses the contents of any code fence, tagged or not.
func extractAnyFence(raw string) []ParsedElement {
	return extractFences(raw, anyFenceRe)
}

func extractFences(raw string, re *regexp.Regexp) []ParsedElement {
	for _, m := range re.FindAllStringSubmatch(raw, -1) {
		v, ok := decodeJSON(strings.TrimSpace(m[1]))
		if !ok {
			continue
		}
		if els := normalizeDocument(v); len(els) > 0 {
			return els
		}
	}
	return nil
}

// extractEmbeddedObject finds a brace-delimited object containing the
// "elements" token anywhere in the text and parses it.
func extractEmbeddedObject(raw string) []ParsedElement {
	for idx := 0; ; {
		rel := strings.Index(raw[idx:], `"elements"`)
		if rel < 0 {
			return nil
		}
		pos := idx + rel

		// The nearest open brace may belong to a sibling object that
		// closes before the token, so walk outward until a balanced
		// fragment actually spans it.
		for open := strings.LastIndexByte(raw[:pos], '{'); open >= 0; open = strings.LastIndexByte(raw[:open], '{') {
			frag := balancedDelimited(raw, open, '{', '}')
			if frag == "" || open+len(frag) <= pos {
				continue
			}
			if v, ok := decodeJSON(frag); ok {
				if els := normalizeDocument(v); len(els) > 0 {
					return els
				}
			}
		}
		idx = pos + 1
	}
}

// extractEmbeddedArray finds a bracket-delimited array of objects with
// a "name" key anywhere in the text and parses it.
func extractEmbeddedArray(raw string) []ParsedElement {
	for i := 0; i < len(raw); i++ {
		if raw[i] != '[' {
			continue
		}
		frag := balancedDelimited(raw, i, '[', ']')
		if frag == "" {
			continue
		}
		if !strings.Contains(frag, `"name"`) {
			i += len(frag) - 1
			continue
		}
		if v, ok := decodeJSON(frag); ok {
			if els := normalizeDocument(v); len(els) > 0 {
				return els
			}
		}
		i += len(frag) - 1
	}
	return nil
}

// extractWholeDocument parses the entire trimmed response as JSON.
func extractWholeDocument(raw string) []ParsedElement {
	v, ok := decodeJSON(strings.TrimSpace(raw))
	if !ok {
		return nil
	}
	return normalizeDocument(v)
}

// extractColonLines matches "name: score" lines with an optional unit
// suffix. Unlike the structured strategies, scores outside 0-100 are
// rejected here since a bare regex match carries no other evidence the
// number is a score.
func extractColonLines(raw string) []ParsedElement {
	return extractLinePattern(raw, colonLineRe)
}

// extractDashLines matches "name - score" lines.
func extractDashLines(raw string) []ParsedElement {
	return extractLinePattern(raw, dashLineRe)
}

func extractLinePattern(raw string, re *regexp.Regexp) []ParsedElement {
	var out []ParsedElement
	seen := make(map[string]bool)
	for _, m := range re.FindAllStringSubmatch(raw, -1) {
		name := strings.TrimSpace(m[1])
		score, err := strconv.Atoi(m[2])
		if err != nil || score < 0 || score > 100 {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ParsedElement{Name: name, Score: score})
	}
	return out
}

// Header keyword synonyms for resolving markdown table columns.
// Multiple languages are represented because participants answer in
// whatever language they were prompted in.
var (
	nameHeaders     = []string{"name", "element", "criterion", "criteria", "항목", "이름", "요소"}
	scoreHeaders    = []string{"score", "rating", "grade", "점수", "평점"}
	critiqueHeaders = []string{"critique", "feedback", "comment", "notes", "비고", "피드백", "평가"}
)

// extractMarkdownTable locates a markdown table, resolves which columns
// hold name/score/critique by header keywords, and extracts rows whose
// score cell is a number in 0-100.
func extractMarkdownTable(raw string) []ParsedElement {
	lines := strings.Split(raw, "\n")

	for i, line := range lines {
		cells := tableCells(line)
		if len(cells) < 2 {
			continue
		}

		nameCol := matchColumn(cells, nameHeaders)
		scoreCol := matchColumn(cells, scoreHeaders)
		if nameCol < 0 || scoreCol < 0 {
			continue
		}
		critiqueCol := matchColumn(cells, critiqueHeaders)

		var out []ParsedElement
		seen := make(map[string]bool)
		for _, row := range lines[i+1:] {
			rowCells := tableCells(row)
			if len(rowCells) <= scoreCol || len(rowCells) <= nameCol {
				break
			}
			if isSeparatorRow(rowCells) {
				continue
			}

			name := rowCells[nameCol]
			score, err := strconv.Atoi(strings.TrimSuffix(rowCells[scoreCol], "점"))
			if name == "" || err != nil || score < 0 || score > 100 {
				continue
			}
			key := strings.ToLower(name)
			if seen[key] {
				continue
			}
			seen[key] = true

			el := ParsedElement{Name: name, Score: score}
			if critiqueCol >= 0 && critiqueCol < len(rowCells) {
				el.Critique = rowCells[critiqueCol]
			}
			out = append(out, el)
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// tableCells splits a markdown table row into trimmed cells, or nil if
// the line is not a table row.
func tableCells(line string) []string {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "|") {
		return nil
	}
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// isSeparatorRow reports whether the cells form a header separator
// (|---|---|).
func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if strings.Trim(c, "-: ") != "" {
			return false
		}
	}
	return true
}

// matchColumn returns the index of the first cell containing any of the
// keywords, case-insensitively, or -1.
func matchColumn(cells []string, keywords []string) int {
	for i, c := range cells {
		lower := strings.ToLower(c)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return i
			}
		}
	}
	return -1
}

// extractNumberedList matches "N. name: score - critique" lines,
// keeping the first match per name.
func extractNumberedList(raw string) []ParsedElement {
	var out []ParsedElement
	seen := make(map[string]bool)
	for _, m := range numberedRe.FindAllStringSubmatch(raw, -1) {
		name := strings.TrimSpace(m[1])
		score, err := strconv.Atoi(m[2])
		if err != nil || score < 0 || score > 100 {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ParsedElement{
			Name:     name,
			Score:    score,
			Critique: strings.TrimSpace(m[3]),
		})
	}
	return out
}
