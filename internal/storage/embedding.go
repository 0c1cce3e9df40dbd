package storage

import (
	"log"
	"time"
)

// SaveEmbedding caches an embedding vector for a letter.
func (s *SQLiteStorage) SaveEmbedding(letterID string, vector []float32, version string) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vectorJSON := vectorToJSON(vector)

	query := `
		INSERT OR REPLACE INTO letter_embeddings (letter_id, vector, version, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		letterID,
		vectorJSON,
		version,
		time.Now().Format(timeFormat),
	)

	if err != nil {
		log.Printf("Warning: failed to save embedding: %v", err)
	}

	return nil
}

// GetEmbedding retrieves a cached embedding for a letter.
func (s *SQLiteStorage) GetEmbedding(letterID string) ([]float32, string, error) {
	if !s.enabled || s.db == nil {
		return nil, "", nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT vector, version
		FROM letter_embeddings
		WHERE letter_id = ?
	`

	rows, err := s.db.Query(query, letterID)
	if err != nil {
		log.Printf("Warning: failed to query embedding: %v", err)
		return nil, "", nil
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, "", nil
	}

	var vectorJSON, version string
	if err := rows.Scan(&vectorJSON, &version); err != nil {
		log.Printf("Warning: failed to scan embedding: %v", err)
		return nil, "", nil
	}

	vector, err := jsonToVector(vectorJSON)
	if err != nil {
		log.Printf("Warning: failed to parse embedding vector: %v", err)
		return nil, "", nil
	}

	return vector, version, nil
}

// RecordSearch records a letter search query for analytics.
func (s *SQLiteStorage) RecordSearch(search SearchRecord) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO search_history (search_id, query_hash, timestamp, results_count)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		search.SearchID,
		search.QueryHash,
		search.Timestamp.Format(timeFormat),
		search.ResultsCount,
	)

	if err != nil {
		log.Printf("Warning: failed to record search: %v", err)
	}

	return nil
}
