package storage

import (
	"database/sql"
	"fmt"
	"log"
	"time"
)

// SaveLetter stores a generated letter. An existing letter with the same ID
// is replaced (letters are edited in place, unlike learning events).
func (s *SQLiteStorage) SaveLetter(letter Letter) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	edited := 0
	if letter.Edited {
		edited = 1
	}

	if _, err := s.db.Exec(`
		INSERT OR REPLACE INTO letters (id, plaintiff_name, content, created_at, edited)
		VALUES (?, ?, ?, ?, ?)
	`,
		letter.ID,
		letter.PlaintiffName,
		letter.Content,
		letter.CreatedAt.Format(timeFormat),
		edited,
	); err != nil {
		return fmt.Errorf("failed to save letter: %w", err)
	}

	return nil
}

// GetLetter retrieves a letter by ID, or nil if absent.
func (s *SQLiteStorage) GetLetter(id string) (*Letter, error) {
	if !s.enabled || s.db == nil {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`
		SELECT id, plaintiff_name, content, created_at, edited
		FROM letters
		WHERE id = ?
	`, id)

	letter, err := scanLetter(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		log.Printf("Warning: failed to read letter %s: %v", id, err)
		return nil, nil
	}

	return letter, nil
}

// ListLetters returns saved letters, newest first.
func (s *SQLiteStorage) ListLetters() ([]Letter, error) {
	if !s.enabled || s.db == nil {
		return []Letter{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT id, plaintiff_name, content, created_at, edited
		FROM letters
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		log.Printf("Warning: failed to query letters: %v", err)
		return []Letter{}, nil
	}
	defer rows.Close()

	var letters []Letter
	for rows.Next() {
		letter, err := scanLetter(rows.Scan)
		if err != nil {
			log.Printf("Warning: failed to scan letter: %v", err)
			continue
		}
		letters = append(letters, *letter)
	}

	return letters, nil
}

// DeleteLetter removes a letter and its cached embedding.
func (s *SQLiteStorage) DeleteLetter(id string) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM letters WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete letter: %w", err)
	}

	if _, err := s.db.Exec("DELETE FROM letter_embeddings WHERE letter_id = ?", id); err != nil {
		log.Printf("Warning: failed to delete letter embedding: %v", err)
	}

	return nil
}

// scanLetter reads a letter from a row scan function.
func scanLetter(scan func(...interface{}) error) (*Letter, error) {
	var letter Letter
	var createdStr string
	var edited int

	if err := scan(&letter.ID, &letter.PlaintiffName, &letter.Content, &createdStr, &edited); err != nil {
		return nil, err
	}

	if ts, err := time.Parse(timeFormat, createdStr); err == nil {
		letter.CreatedAt = ts
	}
	letter.Edited = edited != 0

	return &letter, nil
}
