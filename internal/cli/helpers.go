package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/casekit/letter-forge/internal/config"
	"github.com/casekit/letter-forge/internal/generate"
	"github.com/casekit/letter-forge/internal/record"
	"github.com/casekit/letter-forge/internal/storage"
	"github.com/casekit/letter-forge/internal/template"
)

// openStorage creates and initializes the default letter-forge store.
// Initialization failures degrade to a disabled store rather than erroring,
// so commands that do not strictly need persistence keep working.
func openStorage() storage.Storage {
	store := storage.NewStorage()
	if err := store.Init(); err != nil {
		log.Printf("Warning: storage unavailable, continuing without persistence: %v", err)
	}
	return store
}

// loadTemplate reads template text from a file path, handling HTML imports.
func loadTemplate(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("no template given (use --template)")
	}
	text, err := template.Load(path)
	if err != nil {
		return "", fmt.Errorf("failed to load template: %w", err)
	}
	return text, nil
}

// loadRecord reads one record from a CSV file. A negative row index with an
// empty path yields a zero record, which matches every placeholder to "".
func loadRecord(path string, row int) (record.Record, error) {
	if path == "" {
		return record.Record{}, nil
	}
	dataset, err := record.ImportCSV(path)
	if err != nil {
		return record.Record{}, fmt.Errorf("failed to load data: %w", err)
	}
	rec, err := dataset.Record(row)
	if err != nil {
		return record.Record{}, fmt.Errorf("row %d: %w", row, err)
	}
	return rec, nil
}

// newGenerator builds the configured generator. With no API key it returns
// nil; callers fall back to offline rendering.
func newGenerator(ctx context.Context, cfg *config.Config) (generate.Generator, error) {
	if cfg.Settings.Offline {
		return nil, nil
	}
	apiKey := config.APIKey()
	if apiKey == "" {
		return nil, nil
	}
	return generate.NewGeminiClient(ctx, apiKey, cfg.Settings.Model)
}

// formatJSON pretty-prints a value for export.
func formatJSON(data interface{}) (string, error) {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
