package learning

import (
	"path/filepath"
	"testing"

	"github.com/casekit/letter-forge/internal/storage"
)

func newTestEngine(t *testing.T) (*Engine, storage.Storage) {
	t.Helper()
	store := storage.NewStorageAt(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("storage init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewEngine(store), store
}

// TestRecordEventValidation verifies input checks.
func TestRecordEventValidation(t *testing.T) {
	engine, _ := newTestEngine(t)

	if err := engine.RecordEvent("", nil, "content", FeedbackNone, ""); err != ErrInvalidTemplate {
		t.Errorf("empty template: got %v, want ErrInvalidTemplate", err)
	}

	if err := engine.RecordEvent("Dear [X],", nil, "content", "maybe", ""); err == nil {
		t.Error("unknown feedback value accepted")
	}
}

// TestRecordEventPersistsPattern verifies an event creates and then updates
// the pattern for its placeholder set.
func TestRecordEventPersistsPattern(t *testing.T) {
	engine, store := newTestEngine(t)

	tmpl := "Dear [CLIENT NAME], re [CASE NUMBER]."
	mappings := map[string]string{"[CLIENT NAME]": "Jane Doe", "[CASE NUMBER]": "123"}

	if err := engine.RecordEvent(tmpl, mappings, "letter one", FeedbackPositive, ""); err != nil {
		t.Fatalf("RecordEvent failed: %v", err)
	}

	key := "[CASE NUMBER]|[CLIENT NAME]"
	pattern, err := store.GetPattern(key)
	if err != nil {
		t.Fatalf("GetPattern failed: %v", err)
	}
	if pattern == nil {
		t.Fatal("pattern not created")
	}
	if pattern.SuccessRate != 1.0 {
		t.Errorf("SuccessRate = %v, want 1.0 on positive creation", pattern.SuccessRate)
	}

	// Same placeholder set again, no feedback: count grows, rate unchanged.
	if err := engine.RecordEvent(tmpl, mappings, "letter two", FeedbackNone, ""); err != nil {
		t.Fatalf("second RecordEvent failed: %v", err)
	}
	pattern, _ = store.GetPattern(key)
	if pattern.UsageCount != 2 {
		t.Errorf("UsageCount = %d, want 2", pattern.UsageCount)
	}
	if pattern.SuccessRate != 1.0 {
		t.Errorf("SuccessRate = %v, want unchanged 1.0", pattern.SuccessRate)
	}
}

// TestRecordEventTemplateWithoutPlaceholders verifies templates with no
// placeholders log an event but create no pattern.
func TestRecordEventTemplateWithoutPlaceholders(t *testing.T) {
	engine, store := newTestEngine(t)

	if err := engine.RecordEvent("No placeholders here.", nil, "out", FeedbackNone, ""); err != nil {
		t.Fatalf("RecordEvent failed: %v", err)
	}

	count, _ := store.CountEvents()
	if count != 1 {
		t.Errorf("CountEvents = %d, want 1", count)
	}
	patterns, _ := store.GetAllPatterns()
	if len(patterns) != 0 {
		t.Errorf("pattern created for empty placeholder set: %+v", patterns)
	}
}

// TestRecordFeedback verifies feedback events append without mappings.
func TestRecordFeedback(t *testing.T) {
	engine, store := newTestEngine(t)

	tmpl := "Dear [CLIENT NAME],"
	if err := engine.RecordEvent(tmpl, map[string]string{"[CLIENT NAME]": "Jane"}, "letter", FeedbackNone, ""); err != nil {
		t.Fatalf("RecordEvent failed: %v", err)
	}
	if err := engine.RecordFeedback(tmpl, "letter", FeedbackNegative, "too informal"); err != nil {
		t.Fatalf("RecordFeedback failed: %v", err)
	}

	events, _ := store.GetEvents()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	last := events[len(events)-1]
	if last.UserFeedback != FeedbackNegative {
		t.Errorf("feedback = %q", last.UserFeedback)
	}
	if last.ImprovementNotes != "too informal" {
		t.Errorf("notes = %q", last.ImprovementNotes)
	}
	if len(last.PlaceholderMappings) != 0 {
		t.Errorf("feedback event should carry no mappings: %v", last.PlaceholderMappings)
	}
}

// TestStats verifies summary counting.
func TestStats(t *testing.T) {
	engine, _ := newTestEngine(t)

	tmpl := "Dear [CLIENT NAME],"
	for _, fb := range []string{FeedbackPositive, FeedbackPositive, FeedbackNegative, FeedbackNone} {
		if err := engine.RecordEvent(tmpl, nil, "x", fb, ""); err != nil {
			t.Fatalf("RecordEvent failed: %v", err)
		}
	}

	stats, err := engine.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalGenerations != 4 {
		t.Errorf("TotalGenerations = %d, want 4", stats.TotalGenerations)
	}
	if stats.PositiveCount != 2 || stats.NegativeCount != 1 {
		t.Errorf("counts = +%d/-%d, want +2/-1", stats.PositiveCount, stats.NegativeCount)
	}
	if stats.PatternCount != 1 {
		t.Errorf("PatternCount = %d, want 1", stats.PatternCount)
	}
}
