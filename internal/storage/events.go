package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// RecordGeneration appends a learning event, evicts the oldest entries past
// the 1000-event cap, and applies the pattern update — as one transaction.
//
// Appending the event and updating the pattern must not be observable
// half-done: a second process reading the store sees either both writes or
// neither.
func (s *SQLiteStorage) RecordGeneration(event LearningEvent, patternKey string, apply PatternUpdateFunc) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO learning_events (template_structure, mappings_json, generated_content, feedback, notes, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		event.TemplateStructure,
		toJSON(event.PlaceholderMappings),
		event.GeneratedContent,
		event.UserFeedback,
		event.ImprovementNotes,
		event.Timestamp.Format(timeFormat),
	); err != nil {
		return fmt.Errorf("failed to insert learning event: %w", err)
	}

	// FIFO eviction beyond the cap.
	if _, err := tx.Exec(`
		DELETE FROM learning_events
		WHERE id NOT IN (
			SELECT id FROM learning_events ORDER BY id DESC LIMIT ?
		)
	`, maxLearningEvents); err != nil {
		return fmt.Errorf("failed to trim learning events: %w", err)
	}

	if patternKey != "" && apply != nil {
		if err := applyPatternTx(tx, patternKey, apply); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit generation record: %w", err)
	}

	return nil
}

// GetEvents returns the learning event log, oldest first.
//
// Unreadable rows are skipped with a warning rather than failing the whole
// read; a corrupt log degrades to whatever can still be parsed.
func (s *SQLiteStorage) GetEvents() ([]LearningEvent, error) {
	if !s.enabled || s.db == nil {
		return []LearningEvent{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT template_structure, mappings_json, generated_content, feedback, notes, timestamp
		FROM learning_events
		ORDER BY id ASC
	`)
	if err != nil {
		log.Printf("Warning: failed to query learning events: %v", err)
		return []LearningEvent{}, nil
	}
	defer rows.Close()

	var events []LearningEvent
	for rows.Next() {
		var event LearningEvent
		var mappingsJSON, timestampStr string

		if err := rows.Scan(
			&event.TemplateStructure,
			&mappingsJSON,
			&event.GeneratedContent,
			&event.UserFeedback,
			&event.ImprovementNotes,
			&timestampStr,
		); err != nil {
			log.Printf("Warning: failed to scan learning event: %v", err)
			continue
		}

		if err := json.Unmarshal([]byte(mappingsJSON), &event.PlaceholderMappings); err != nil {
			log.Printf("Warning: failed to parse event mappings: %v", err)
			event.PlaceholderMappings = map[string]string{}
		}

		if ts, err := time.Parse(timeFormat, timestampStr); err == nil {
			event.Timestamp = ts
		}

		events = append(events, event)
	}

	return events, nil
}

// CountEvents returns the number of stored learning events.
func (s *SQLiteStorage) CountEvents() (int, error) {
	if !s.enabled || s.db == nil {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM learning_events").Scan(&count); err != nil {
		log.Printf("Warning: failed to count learning events: %v", err)
		return 0, nil
	}

	return count, nil
}
