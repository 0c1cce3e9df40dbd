/*
Package mapping holds the working placeholder-to-value list for one
template/record pair.

The store is the user-editable middle layer between automatic matching and
the generation call: the matcher proposes values, the operator reviews and
edits them, and the confirmed list is exported as the generation payload or
snapshotted as a durable named pattern.
*/
package mapping

import (
	"fmt"
	"time"

	"github.com/casekit/letter-forge/internal/matcher"
	"github.com/casekit/letter-forge/internal/record"
	"github.com/casekit/letter-forge/internal/storage"
	"github.com/casekit/letter-forge/internal/template"
)

// Mapping is one working association of a placeholder to a chosen value.
type Mapping struct {
	Placeholder string            `json:"placeholder"`
	Value       string            `json:"value"`
	Category    template.Category `json:"category"`
}

// Store is the current, editable mapping list for the active template and
// record. Mappings live in memory; only named snapshots persist.
type Store struct {
	templateText string
	mappings     []Mapping
	persist      storage.Storage
}

// Build extracts placeholders from the template, auto-matches them against
// the record, and returns a store ready for review.
//
// An empty record is allowed: every value starts empty and the operator
// fills them by hand or through auto-learning.
func Build(templateText string, rec record.Record, persist storage.Storage) (*Store, error) {
	placeholders := template.Extract(templateText)

	mappings := make([]Mapping, len(placeholders))
	for i, p := range placeholders {
		value := ""
		if !rec.IsZero() {
			matched, _, err := matcher.Match(p, rec)
			if err != nil {
				return nil, fmt.Errorf("failed to match %s: %w", p.Raw, err)
			}
			value = matched
		}
		mappings[i] = Mapping{Placeholder: p.Raw, Value: value, Category: p.Category}
	}

	return &Store{
		templateText: templateText,
		mappings:     mappings,
		persist:      persist,
	}, nil
}

// Mappings returns a copy of the current mapping list.
func (s *Store) Mappings() []Mapping {
	out := make([]Mapping, len(s.mappings))
	copy(out, s.mappings)
	return out
}

// TemplateText returns the template this store was built from.
func (s *Store) TemplateText() string {
	return s.templateText
}

// Len returns the number of mappings.
func (s *Store) Len() int {
	return len(s.mappings)
}

// Set replaces the value at index. Out-of-range indexes are a no-op and
// report false; the category is not revalidated.
func (s *Store) Set(index int, value string) bool {
	if index < 0 || index >= len(s.mappings) {
		return false
	}
	s.mappings[index].Value = value
	return true
}

// SetByPlaceholder replaces the value for a raw placeholder string,
// reporting whether the placeholder exists in the list.
func (s *Store) SetByPlaceholder(placeholder, value string) bool {
	for i := range s.mappings {
		if s.mappings[i].Placeholder == placeholder {
			s.mappings[i].Value = value
			return true
		}
	}
	return false
}

// Export converts the mapping list into the placeholder→value map consumed
// by the generation call.
func (s *Store) Export() map[string]string {
	out := make(map[string]string, len(s.mappings))
	for _, m := range s.mappings {
		out[m.Placeholder] = m.Value
	}
	return out
}

// SavePattern snapshots the current mapping list as a durable named pattern.
// When name is empty a timestamp-derived key is used. Snapshots are appended
// as-is; they are never deduplicated against learned patterns.
func (s *Store) SavePattern(name string) (string, error) {
	key := name
	if key == "" {
		key = fmt.Sprintf("template_%d", time.Now().UnixMilli())
	}

	entries := make([]storage.SnapshotEntry, len(s.mappings))
	for i, m := range s.mappings {
		entries[i] = storage.SnapshotEntry{
			Placeholder: m.Placeholder,
			Category:    string(m.Category),
			LastValue:   m.Value,
			Frequency:   1,
		}
	}

	snapshot := storage.MappingSnapshot{
		Key:       key,
		CreatedAt: time.Now(),
		Entries:   entries,
	}

	if err := s.persist.SaveMappingSnapshot(snapshot); err != nil {
		return "", fmt.Errorf("failed to save pattern: %w", err)
	}

	return key, nil
}

// AutoLearn fills empty values from saved snapshots. Snapshots are scanned
// in insertion order and the first snapshot containing the placeholder wins.
// Returns the number of values filled.
func (s *Store) AutoLearn() (int, error) {
	snapshots, err := s.persist.ListMappingSnapshots()
	if err != nil {
		return 0, fmt.Errorf("failed to load saved patterns: %w", err)
	}

	filled := 0
	for i := range s.mappings {
		if s.mappings[i].Value != "" {
			continue
		}
		for _, snap := range snapshots {
			entry := snap.Lookup(s.mappings[i].Placeholder)
			if entry == nil || entry.LastValue == "" {
				continue
			}
			s.mappings[i].Value = entry.LastValue
			filled++
			break
		}
	}

	return filled, nil
}
