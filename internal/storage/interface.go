/*
Package storage implements the persistent store for learning data and letters.

This package provides SQLite-based storage for the learning event log,
template pattern aggregates, saved mapping snapshots, generated letters, and
cached letter embeddings, with graceful degradation if the database is
unavailable: a disabled store answers every read with an empty collection and
swallows writes with a logged warning, so the engine keeps working on
in-memory state.

The database is stored at ~/.letter-forge/letterforge.db and uses
modernc.org/sqlite (a pure Go, CGo-free implementation).
*/
package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// maxLearningEvents caps the event log; the oldest entries are evicted
// first when the cap is exceeded.
const maxLearningEvents = 1000

// Storage defines the interface for persistent storage operations.
//
// The engine receives a Storage by injection, never through a package-level
// singleton, so tests can substitute an isolated database.
type Storage interface {
	// Init initializes the database and runs migrations.
	Init() error

	// RecordGeneration appends a learning event, trims the log to the most
	// recent 1000 entries, and applies the pattern update for the event's
	// placeholder set — all within a single transaction.
	RecordGeneration(event LearningEvent, patternKey string, apply PatternUpdateFunc) error

	// GetEvents returns the learning event log, oldest first.
	GetEvents() ([]LearningEvent, error)

	// CountEvents returns the number of stored learning events.
	CountEvents() (int, error)

	// GetPattern returns the pattern for a key, or nil if absent.
	GetPattern(key string) (*TemplatePattern, error)

	// GetAllPatterns returns every learned template pattern.
	GetAllPatterns() ([]TemplatePattern, error)

	// SaveMappingSnapshot stores a named mapping snapshot.
	SaveMappingSnapshot(snapshot MappingSnapshot) error

	// ListMappingSnapshots returns saved snapshots in insertion order.
	ListMappingSnapshots() ([]MappingSnapshot, error)

	// SaveLetter stores a generated letter.
	SaveLetter(letter Letter) error

	// GetLetter retrieves a letter by ID, or nil if absent.
	GetLetter(id string) (*Letter, error)

	// ListLetters returns saved letters, newest first.
	ListLetters() ([]Letter, error)

	// DeleteLetter removes a letter and its cached embedding.
	DeleteLetter(id string) error

	// RecordSearch records a letter search query for analytics.
	RecordSearch(search SearchRecord) error

	// SaveEmbedding caches an embedding vector for a letter.
	SaveEmbedding(letterID string, vector []float32, version string) error

	// GetEmbedding retrieves a cached embedding for a letter.
	GetEmbedding(letterID string) ([]float32, string, error)

	// Clear deletes all learning data (events, patterns, snapshots).
	Clear() error

	// Close closes the database connection.
	Close() error
}

// PatternUpdateFunc computes the next state of a template pattern. It
// receives nil when no pattern exists yet for the key and must return the
// full pattern to persist.
type PatternUpdateFunc func(existing *TemplatePattern) TemplatePattern

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db       *sql.DB
	dbPath   string
	enabled  bool
	mu       sync.Mutex
	initOnce sync.Once
}

// NewStorage creates a new SQLite storage instance.
//
// The database is created at ~/.letter-forge/letterforge.db. If the home
// directory cannot be resolved, the storage is disabled but operations will
// not fail.
func NewStorage() *SQLiteStorage {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Warning: failed to get home directory: %v", err)
		return &SQLiteStorage{enabled: false}
	}

	return NewStorageAt(filepath.Join(home, ".letter-forge", "letterforge.db"))
}

// NewStorageAt creates a storage instance backed by a specific database path.
func NewStorageAt(dbPath string) *SQLiteStorage {
	return &SQLiteStorage{
		dbPath:  dbPath,
		enabled: true,
	}
}

// Init initializes the database and runs migrations.
//
// If initialization fails, storage is disabled and subsequent operations
// become no-ops (graceful degradation).
func (s *SQLiteStorage) Init() error {
	if !s.enabled {
		return nil
	}

	var initErr error
	s.initOnce.Do(func() {
		dbDir := filepath.Dir(s.dbPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			initErr = fmt.Errorf("failed to create db directory: %w", err)
			s.enabled = false
			return
		}

		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			initErr = fmt.Errorf("failed to open database: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}
		s.db = db

		if err := db.Ping(); err != nil {
			initErr = fmt.Errorf("failed to ping database: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}

		if err := s.runMigrations(); err != nil {
			initErr = fmt.Errorf("failed to run migrations: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}
	})

	return initErr
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.db = nil
	return nil
}

// Clear deletes all learning data, keeping saved letters intact.
func (s *SQLiteStorage) Clear() error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"learning_events", "template_patterns", "saved_mappings", "search_history"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if _, err := s.db.Exec("VACUUM"); err != nil {
		log.Printf("Warning: failed to vacuum database: %v", err)
	}

	return nil
}

// Path returns the database file path ("" when storage is disabled).
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// HashQuery creates a SHA256 hash of a query string for privacy.
func HashQuery(query string) string {
	hash := sha256.Sum256([]byte(query))
	return hex.EncodeToString(hash[:])
}

// timeFormat is the timestamp layout used across all tables.
const timeFormat = time.RFC3339
