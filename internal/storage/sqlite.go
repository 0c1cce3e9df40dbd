/*
Package storage provides SQLite database migrations and helper functions.

This file contains schema definitions, migration logic, and JSON
serialization utilities for the storage layer.
*/
package storage

import (
	"encoding/json"
	"fmt"
	"log"
)

// runMigrations executes database schema migrations.
func (s *SQLiteStorage) runMigrations() error {
	if !s.enabled || s.db == nil {
		return nil
	}

	if err := s.createMigrationsTable(); err != nil {
		return err
	}

	version, err := s.getCurrentMigrationVersion()
	if err != nil {
		return err
	}

	migrations := []migration{
		{version: 1, name: "initial_schema", up: s.migration001InitialSchema},
	}

	for _, m := range migrations {
		if version < m.version {
			log.Printf("Running migration %d: %s", m.version, m.name)
			if err := m.up(); err != nil {
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
			if err := s.setMigrationVersion(m.version); err != nil {
				return err
			}
		}
	}

	return nil
}

// migration represents a single database migration.
type migration struct {
	version int
	name    string
	up      func() error
}

// createMigrationsTable creates the schema_migrations table.
func (s *SQLiteStorage) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`
	_, err := s.db.Exec(query)
	return err
}

// getCurrentMigrationVersion returns the highest applied migration version.
func (s *SQLiteStorage) getCurrentMigrationVersion() (int, error) {
	query := "SELECT COALESCE(MAX(version), 0) FROM schema_migrations"
	row := s.db.QueryRow(query)

	var version int
	if err := row.Scan(&version); err != nil {
		return 0, err
	}

	return version, nil
}

// setMigrationVersion records a migration as applied.
func (s *SQLiteStorage) setMigrationVersion(version int) error {
	query := "INSERT INTO schema_migrations (version, name) VALUES (?, ?)"
	_, err := s.db.Exec(query, version, fmt.Sprintf("migration_%d", version))
	return err
}

// migration001InitialSchema creates the initial database schema.
func (s *SQLiteStorage) migration001InitialSchema() error {
	// Learning event log (append-only, FIFO capped)
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS learning_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			template_structure TEXT NOT NULL,
			mappings_json TEXT NOT NULL,
			generated_content TEXT NOT NULL,
			feedback TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create learning_events table: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_learning_events_timestamp
		ON learning_events(timestamp DESC)
	`); err != nil {
		return fmt.Errorf("failed to create learning_events timestamp index: %w", err)
	}

	// Template pattern aggregates, keyed by placeholder set
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS template_patterns (
			pattern_key TEXT PRIMARY KEY,
			placeholders_json TEXT NOT NULL,
			structure TEXT NOT NULL,
			common_mappings_json TEXT NOT NULL,
			success_rate REAL NOT NULL,
			usage_count INTEGER NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create template_patterns table: %w", err)
	}

	// User-saved mapping snapshots
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS saved_mappings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			snapshot_key TEXT NOT NULL UNIQUE,
			entries_json TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create saved_mappings table: %w", err)
	}

	// Generated letters
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS letters (
			id TEXT PRIMARY KEY,
			plaintiff_name TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			edited INTEGER NOT NULL DEFAULT 0
		)
	`); err != nil {
		return fmt.Errorf("failed to create letters table: %w", err)
	}

	if _, err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_letters_created
		ON letters(created_at DESC)
	`); err != nil {
		return fmt.Errorf("failed to create letters created index: %w", err)
	}

	// Letter search analytics
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS search_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			search_id TEXT NOT NULL UNIQUE,
			query_hash TEXT NOT NULL,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			results_count INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create search_history table: %w", err)
	}

	// Cached letter embeddings for semantic search
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS letter_embeddings (
			letter_id TEXT PRIMARY KEY,
			vector BLOB NOT NULL,
			version TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create letter_embeddings table: %w", err)
	}

	return nil
}

// toJSON serializes a value for storage in a TEXT column.
func toJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Warning: failed to marshal value: %v", err)
		return "{}"
	}
	return string(data)
}

// vectorToJSON converts a float32 vector to JSON for storage.
func vectorToJSON(vector []float32) string {
	data, err := json.Marshal(vector)
	if err != nil {
		log.Printf("Warning: failed to marshal vector: %v", err)
		return "[]"
	}
	return string(data)
}

// jsonToVector parses JSON storage back to a float32 vector.
func jsonToVector(jsonStr string) ([]float32, error) {
	var vector []float32
	if err := json.Unmarshal([]byte(jsonStr), &vector); err != nil {
		return nil, err
	}
	return vector, nil
}
