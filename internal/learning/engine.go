/*
Package learning aggregates generation history into reusable template patterns.

This package provides the event log and pattern maintenance behind the
letter generator: every generation attempt is recorded as an immutable
learning event, patterns keyed by a template's placeholder set accumulate a
running success rate from user feedback, and the accumulated history is
synthesized into enriched instructions for the downstream generation call.
*/
package learning

import (
	"errors"
	"fmt"
	"time"

	"github.com/casekit/letter-forge/internal/storage"
	"github.com/casekit/letter-forge/internal/template"
)

// ErrInvalidTemplate is returned when an operation receives empty template
// text. Recording against an empty template would corrupt pattern data.
var ErrInvalidTemplate = errors.New("template text is empty")

// Feedback values accepted by RecordEvent.
const (
	FeedbackPositive = storage.FeedbackPositive
	FeedbackNegative = storage.FeedbackNegative
	FeedbackNone     = storage.FeedbackNone
)

// Engine is the learning layer over a persisted store.
//
// All operations are synchronous transforms over the store; the engine holds
// no state of its own.
type Engine struct {
	store storage.Storage
}

// NewEngine creates a learning engine backed by the given store.
func NewEngine(store storage.Storage) *Engine {
	return &Engine{store: store}
}

// RecordEvent appends a learning event for a generation attempt and updates
// the pattern keyed by the template's placeholder set. The append, the FIFO
// trim, and the pattern update are applied as one logical operation.
func (e *Engine) RecordEvent(templateText string, mappings map[string]string, generatedText, feedback, notes string) error {
	if templateText == "" {
		return ErrInvalidTemplate
	}
	if feedback != FeedbackPositive && feedback != FeedbackNegative && feedback != FeedbackNone {
		return fmt.Errorf("unknown feedback value %q", feedback)
	}

	if mappings == nil {
		mappings = map[string]string{}
	}

	event := storage.LearningEvent{
		TemplateStructure:   templateText,
		PlaceholderMappings: mappings,
		GeneratedContent:    generatedText,
		UserFeedback:        feedback,
		Timestamp:           time.Now(),
		ImprovementNotes:    notes,
	}

	placeholders := template.Extract(templateText)
	key := template.PatternKey(placeholders)

	raws := make([]string, len(placeholders))
	for i, p := range placeholders {
		raws[i] = p.Raw
	}

	return e.store.RecordGeneration(event, key, func(existing *storage.TemplatePattern) storage.TemplatePattern {
		return updatePattern(existing, raws, event)
	})
}

// RecordFeedback appends a feedback event for previously generated content.
//
// Feedback is evidence, not a correction: the log stays append-only and the
// most recent event for a template/content pair is authoritative.
func (e *Engine) RecordFeedback(templateText, generatedContent, feedback, notes string) error {
	return e.RecordEvent(templateText, map[string]string{}, generatedContent, feedback, notes)
}

// Stats summarizes the learning history for display.
type Stats struct {
	TotalGenerations int
	PositiveCount    int
	NegativeCount    int
	PatternCount     int
}

// Stats computes summary statistics over the event log and pattern table.
func (e *Engine) Stats() (Stats, error) {
	events, err := e.store.GetEvents()
	if err != nil {
		return Stats{}, err
	}

	patterns, err := e.store.GetAllPatterns()
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		TotalGenerations: len(events),
		PatternCount:     len(patterns),
	}
	for _, event := range events {
		switch event.UserFeedback {
		case FeedbackPositive:
			stats.PositiveCount++
		case FeedbackNegative:
			stats.NegativeCount++
		}
	}

	return stats, nil
}
