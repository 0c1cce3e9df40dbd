/*
Package storage provides data models for the learning and letter system.

These models represent learning events, template pattern aggregates, saved
mapping snapshots, generated letters, and cached embeddings.
*/
package storage

import "time"

// Feedback values attached to a learning event.
const (
	FeedbackPositive = "positive"
	FeedbackNegative = "negative"
	FeedbackNone     = ""
)

// LearningEvent is one immutable log entry capturing a generation attempt.
//
// The event log is append-only evidence: feedback on an existing letter is
// recorded by appending a new event, never by mutating an old one. The most
// recent entry for a template/content pair is taken as authoritative.
type LearningEvent struct {
	// TemplateStructure is a snapshot of the template's raw text.
	TemplateStructure string `json:"template_structure"`

	// PlaceholderMappings is the mapping set used for the generation.
	PlaceholderMappings map[string]string `json:"placeholder_mappings"`

	// GeneratedContent is the produced letter text, treated as opaque.
	GeneratedContent string `json:"generated_content"`

	// UserFeedback is "positive", "negative", or "" when not rated.
	UserFeedback string `json:"user_feedback,omitempty"`

	// Timestamp is when the generation attempt happened.
	Timestamp time.Time `json:"timestamp"`

	// ImprovementNotes is optional free-text feedback from the operator.
	ImprovementNotes string `json:"improvement_notes,omitempty"`
}

// TemplatePattern is a durable aggregate keyed by a template's placeholder
// set (sorted, pipe-joined raw placeholder strings).
type TemplatePattern struct {
	// Key is the placeholder-set key this pattern aggregates under.
	Key string `json:"key"`

	// Placeholders is the set of raw placeholder strings.
	Placeholders []string `json:"placeholders"`

	// Structure is the most recent raw text seen for this placeholder set.
	Structure string `json:"structure"`

	// CommonMappings maps each placeholder to the distinct values it has
	// historically been assigned.
	CommonMappings map[string][]string `json:"common_mappings"`

	// SuccessRate is the running weighted average of positive feedback, in [0,1].
	SuccessRate float64 `json:"success_rate"`

	// UsageCount is the number of generation events aggregated so far.
	UsageCount int `json:"usage_count"`
}

// SnapshotEntry is one placeholder inside a saved mapping snapshot.
type SnapshotEntry struct {
	// Placeholder is the raw placeholder text including brackets.
	Placeholder string `json:"placeholder"`

	// Category is the placeholder's category at save time.
	Category string `json:"category"`

	// LastValue is the value assigned when the snapshot was taken.
	LastValue string `json:"last_value"`

	// Frequency counts how often this entry has been saved (1 on snapshot).
	Frequency int `json:"frequency"`
}

// MappingSnapshot is a named, user-saved snapshot of a mapping list.
// Snapshots are distinct from auto-derived TemplatePatterns and are never
// deduplicated against them.
type MappingSnapshot struct {
	// Key is the snapshot identifier (timestamp-derived unless named).
	Key string `json:"key"`

	// CreatedAt is when the snapshot was saved.
	CreatedAt time.Time `json:"created_at"`

	// Entries holds one entry per placeholder in the mapping list.
	Entries []SnapshotEntry `json:"entries"`
}

// Lookup returns the snapshot entry for a raw placeholder, or nil.
func (m MappingSnapshot) Lookup(placeholder string) *SnapshotEntry {
	for i := range m.Entries {
		if m.Entries[i].Placeholder == placeholder {
			return &m.Entries[i]
		}
	}
	return nil
}

// Letter is a saved generated demand letter.
type Letter struct {
	// ID is the letter's UUID.
	ID string `json:"id"`

	// PlaintiffName identifies whose letter this is, for listing and export.
	PlaintiffName string `json:"plaintiff_name"`

	// Content is the full letter text.
	Content string `json:"content"`

	// CreatedAt is when the letter was generated.
	CreatedAt time.Time `json:"created_at"`

	// Edited indicates the operator changed the content after generation.
	Edited bool `json:"edited"`
}

// SearchRecord represents a letter search query for analytics.
type SearchRecord struct {
	// SearchID is a unique identifier for this search (UUID).
	SearchID string `json:"search_id"`

	// QueryHash is the SHA256 hash of the search query for privacy.
	QueryHash string `json:"query_hash"`

	// Timestamp is when the search was performed.
	Timestamp time.Time `json:"timestamp"`

	// ResultsCount is the number of results returned.
	ResultsCount int `json:"results_count"`
}
