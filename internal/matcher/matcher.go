/*
Package matcher maps template placeholders to record field values.

Matching is a pure computation with two stages: a fixed synonym table for
common legal-letter phrases, then a bidirectional substring match over the
record's fields in import column order. A miss is not an error; it yields an
empty value that the caller renders as "needs manual entry".
*/
package matcher

import (
	"errors"
	"strings"

	"github.com/casekit/letter-forge/internal/record"
	"github.com/casekit/letter-forge/internal/template"
)

// ErrNoRecord is returned when matching is attempted against an empty record.
var ErrNoRecord = errors.New("no record selected for matching")

// synonym maps a normalized placeholder phrase to candidate field names in
// priority order. The first field present with a non-empty value wins.
type synonym struct {
	phrase string
	fields []string
}

// synonyms is checked in order before any fuzzy matching happens.
var synonyms = []synonym{
	{phrase: "plaintiff full name", fields: []string{"Client_Name__c", "plaintiff_name", "full_name", "name"}},
	{phrase: "client name", fields: []string{"Client_Name__c", "client_name", "name"}},
	{phrase: "defendant name", fields: []string{"defendant_name", "company_name", "employer_name"}},
	{phrase: "start date", fields: []string{"start_date", "hire_date", "employment_start"}},
	{phrase: "end date", fields: []string{"end_date", "termination_date", "employment_end"}},
	{phrase: "job title", fields: []string{"job_title", "position", "title"}},
	{phrase: "pay rate", fields: []string{"pay_rate", "hourly_rate", "salary", "wage"}},
	{phrase: "salary type", fields: []string{"salary_type", "pay_type", "compensation_type"}},
}

// Match returns the best-guess value and category for one placeholder
// against one record.
//
// The function is pure: it never mutates the placeholder or the record.
// An empty value means no match was found, which is a valid outcome.
func Match(p template.Placeholder, rec record.Record) (string, template.Category, error) {
	if rec.IsZero() {
		return "", "", ErrNoRecord
	}

	return findBestValue(p.Inner(), rec), p.Category, nil
}

// MatchAll resolves every placeholder against the record.
func MatchAll(placeholders []template.Placeholder, rec record.Record) ([]Result, error) {
	if rec.IsZero() {
		return nil, ErrNoRecord
	}

	results := make([]Result, len(placeholders))
	for i, p := range placeholders {
		value, category, err := Match(p, rec)
		if err != nil {
			return nil, err
		}
		results[i] = Result{Placeholder: p.Raw, Value: value, Category: category}
	}

	return results, nil
}

// Result is one resolved placeholder.
type Result struct {
	Placeholder string            `json:"placeholder"`
	Value       string            `json:"value"`
	Category    template.Category `json:"category"`
}

// findBestValue implements the two-stage resolution: synonym table first,
// then bidirectional substring containment in import column order.
func findBestValue(inner string, rec record.Record) string {
	lower := strings.ToLower(inner)

	for _, syn := range synonyms {
		if !strings.Contains(lower, syn.phrase) {
			continue
		}
		for _, field := range syn.fields {
			if rec.Has(field) {
				return rec.Get(field)
			}
		}
	}

	// Fuzzy pass. Keys is the import column order, so repeated runs over the
	// same dataset always pick the same field.
	for _, key := range rec.Keys {
		norm := normalizeFieldName(key)
		if norm == "" {
			continue
		}
		if strings.Contains(lower, norm) || strings.Contains(norm, lower) {
			return rec.Get(key)
		}
	}

	return ""
}

// normalizeFieldName lowercases a column name and folds separators so that
// spreadsheet columns like "case_number" or Salesforce fields like
// "Client_Name__c" compare against placeholder phrases like "case number".
func normalizeFieldName(key string) string {
	norm := strings.ToLower(key)
	norm = strings.TrimSuffix(norm, "__c")
	norm = strings.ReplaceAll(norm, "_", " ")
	return strings.TrimSpace(norm)
}
