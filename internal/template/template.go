/*
Package template implements placeholder extraction from letter templates.

A template is plain UTF-8 text containing zero or more bracket-delimited
placeholders such as [CLIENT NAME]. Placeholders are extracted in first-seen
order with exact-text duplicates collapsed, then categorized by keyword rules
for display and pattern bookkeeping.
*/
package template

import (
	"regexp"
	"strings"
)

// placeholderPattern matches a bracketed token with no nested brackets.
var placeholderPattern = regexp.MustCompile(`\[([^\]]+)\]`)

// Placeholder is a fill-in point detected in a template.
type Placeholder struct {
	// Raw is the placeholder text including brackets, e.g. "[CLIENT NAME]".
	Raw string `json:"raw"`

	// Category is the inferred classification of the placeholder.
	Category Category `json:"category"`
}

// Inner returns the placeholder text without brackets.
func (p Placeholder) Inner() string {
	return strings.TrimSuffix(strings.TrimPrefix(p.Raw, "["), "]")
}

// Extract returns the distinct placeholders in text, in first-seen order.
//
// Duplicates (identical raw text) collapse to one entry. A template with no
// placeholders yields an empty slice, not an error.
func Extract(text string) []Placeholder {
	matches := placeholderPattern.FindAllString(text, -1)

	seen := make(map[string]bool, len(matches))
	placeholders := make([]Placeholder, 0, len(matches))

	for _, raw := range matches {
		if seen[raw] {
			continue
		}
		seen[raw] = true
		placeholders = append(placeholders, Placeholder{
			Raw:      raw,
			Category: Categorize(raw),
		})
	}

	return placeholders
}

// PatternKey derives the durable pattern key for a placeholder set:
// the sorted, pipe-joined raw placeholder strings.
func PatternKey(placeholders []Placeholder) string {
	raws := make([]string, len(placeholders))
	for i, p := range placeholders {
		raws[i] = p.Raw
	}
	return KeyFromRaw(raws)
}
