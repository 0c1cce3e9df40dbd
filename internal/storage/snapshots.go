package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// SaveMappingSnapshot stores a named mapping snapshot.
func (s *SQLiteStorage) SaveMappingSnapshot(snapshot MappingSnapshot) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`
		INSERT INTO saved_mappings (snapshot_key, entries_json, created_at)
		VALUES (?, ?, ?)
	`,
		snapshot.Key,
		toJSON(snapshot.Entries),
		snapshot.CreatedAt.Format(timeFormat),
	); err != nil {
		return fmt.Errorf("failed to save mapping snapshot: %w", err)
	}

	return nil
}

// ListMappingSnapshots returns saved snapshots in insertion order.
//
// Insertion order (ascending rowid) is the documented iteration order for
// auto-learning lookups, so first-saved snapshots win ties.
func (s *SQLiteStorage) ListMappingSnapshots() ([]MappingSnapshot, error) {
	if !s.enabled || s.db == nil {
		return []MappingSnapshot{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT snapshot_key, entries_json, created_at
		FROM saved_mappings
		ORDER BY id ASC
	`)
	if err != nil {
		log.Printf("Warning: failed to query mapping snapshots: %v", err)
		return []MappingSnapshot{}, nil
	}
	defer rows.Close()

	var snapshots []MappingSnapshot
	for rows.Next() {
		var snap MappingSnapshot
		var entriesJSON, createdStr string

		if err := rows.Scan(&snap.Key, &entriesJSON, &createdStr); err != nil {
			log.Printf("Warning: failed to scan mapping snapshot: %v", err)
			continue
		}

		if err := json.Unmarshal([]byte(entriesJSON), &snap.Entries); err != nil {
			log.Printf("Warning: failed to parse snapshot entries: %v", err)
			continue
		}

		if ts, err := time.Parse(timeFormat, createdStr); err == nil {
			snap.CreatedAt = ts
		}

		snapshots = append(snapshots, snap)
	}

	return snapshots, nil
}
