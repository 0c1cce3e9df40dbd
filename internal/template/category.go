package template

import (
	"sort"
	"strings"
)

// Category classifies a placeholder for display and pattern bookkeeping.
type Category string

const (
	CategoryPersonal   Category = "personal"
	CategoryEmployment Category = "employment"
	CategoryFinancial  Category = "financial"
	CategoryDates      Category = "dates"
	CategoryOther      Category = "other"
)

// categoryRule maps a keyword set to a category. Rules are evaluated in
// order and the first match wins; a placeholder never gets two categories.
type categoryRule struct {
	keywords []string
	category Category
}

var categoryRules = []categoryRule{
	{keywords: []string{"name", "plaintiff"}, category: CategoryPersonal},
	{keywords: []string{"job", "title", "position"}, category: CategoryEmployment},
	{keywords: []string{"pay", "salary", "rate"}, category: CategoryFinancial},
	{keywords: []string{"date", "start", "end"}, category: CategoryDates},
}

// Categorize infers the category of a placeholder from its text.
// The raw text may be passed with or without brackets.
func Categorize(raw string) Category {
	inner := strings.ToLower(strings.Trim(raw, "[]"))

	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(inner, keyword) {
				return rule.category
			}
		}
	}

	return CategoryOther
}

// KeyFromRaw derives the durable pattern key for a set of raw placeholder
// strings: sorted and pipe-joined. The input slice is not modified.
func KeyFromRaw(raws []string) string {
	sorted := make([]string, len(raws))
	copy(sorted, raws)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}
