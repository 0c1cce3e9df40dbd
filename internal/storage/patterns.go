package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// applyPatternTx reads the pattern for key inside the transaction, applies
// the update function, and writes the result back.
func applyPatternTx(tx *sql.Tx, key string, apply PatternUpdateFunc) error {
	row := tx.QueryRow(`
		SELECT placeholders_json, structure, common_mappings_json, success_rate, usage_count
		FROM template_patterns
		WHERE pattern_key = ?
	`, key)

	var existing *TemplatePattern
	var placeholdersJSON, structure, mappingsJSON string
	var successRate float64
	var usageCount int

	err := row.Scan(&placeholdersJSON, &structure, &mappingsJSON, &successRate, &usageCount)
	switch {
	case err == sql.ErrNoRows:
		existing = nil
	case err != nil:
		return fmt.Errorf("failed to read pattern %q: %w", key, err)
	default:
		p := TemplatePattern{
			Key:         key,
			Structure:   structure,
			SuccessRate: successRate,
			UsageCount:  usageCount,
		}
		if err := json.Unmarshal([]byte(placeholdersJSON), &p.Placeholders); err != nil {
			log.Printf("Warning: failed to parse pattern placeholders: %v", err)
		}
		if err := json.Unmarshal([]byte(mappingsJSON), &p.CommonMappings); err != nil {
			log.Printf("Warning: failed to parse pattern mappings: %v", err)
			p.CommonMappings = map[string][]string{}
		}
		existing = &p
	}

	updated := apply(existing)
	updated.Key = key

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO template_patterns
			(pattern_key, placeholders_json, structure, common_mappings_json, success_rate, usage_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		updated.Key,
		toJSON(updated.Placeholders),
		updated.Structure,
		toJSON(updated.CommonMappings),
		updated.SuccessRate,
		updated.UsageCount,
		time.Now().Format(timeFormat),
	); err != nil {
		return fmt.Errorf("failed to write pattern %q: %w", key, err)
	}

	return nil
}

// GetPattern returns the pattern for a key, or nil if absent.
func (s *SQLiteStorage) GetPattern(key string) (*TemplatePattern, error) {
	if !s.enabled || s.db == nil {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	patterns, err := s.queryPatterns("WHERE pattern_key = ?", key)
	if err != nil || len(patterns) == 0 {
		return nil, nil
	}

	return &patterns[0], nil
}

// GetAllPatterns returns every learned template pattern.
func (s *SQLiteStorage) GetAllPatterns() ([]TemplatePattern, error) {
	if !s.enabled || s.db == nil {
		return []TemplatePattern{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.queryPatterns("")
}

// queryPatterns runs a pattern query with an optional WHERE clause.
// Callers must hold s.mu.
func (s *SQLiteStorage) queryPatterns(where string, args ...interface{}) ([]TemplatePattern, error) {
	query := `
		SELECT pattern_key, placeholders_json, structure, common_mappings_json, success_rate, usage_count
		FROM template_patterns ` + where

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Printf("Warning: failed to query patterns: %v", err)
		return []TemplatePattern{}, nil
	}
	defer rows.Close()

	var patterns []TemplatePattern
	for rows.Next() {
		var p TemplatePattern
		var placeholdersJSON, mappingsJSON string

		if err := rows.Scan(&p.Key, &placeholdersJSON, &p.Structure, &mappingsJSON, &p.SuccessRate, &p.UsageCount); err != nil {
			log.Printf("Warning: failed to scan pattern: %v", err)
			continue
		}

		if err := json.Unmarshal([]byte(placeholdersJSON), &p.Placeholders); err != nil {
			log.Printf("Warning: failed to parse pattern placeholders: %v", err)
		}
		if err := json.Unmarshal([]byte(mappingsJSON), &p.CommonMappings); err != nil {
			log.Printf("Warning: failed to parse pattern mappings: %v", err)
			p.CommonMappings = map[string][]string{}
		}

		patterns = append(patterns, p)
	}

	return patterns, nil
}
