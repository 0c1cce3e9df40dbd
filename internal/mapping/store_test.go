package mapping

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/casekit/letter-forge/internal/record"
	"github.com/casekit/letter-forge/internal/storage"
)

func newTestStore(t *testing.T) storage.Storage {
	t.Helper()
	store := storage.NewStorageAt(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("storage init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testCaseRecord(t *testing.T) record.Record {
	t.Helper()
	rec, err := record.New(
		[]string{"Client_Name__c", "Case_Number__c", "Amount_Owed__c"},
		[]string{"Jane Doe", "2024-CV-00123", "$4,500.00"},
	)
	if err != nil {
		t.Fatalf("record.New failed: %v", err)
	}
	return rec
}

// TestBuild verifies that a store auto-matches placeholders against the
// record in template order.
func TestBuild(t *testing.T) {
	persist := newTestStore(t)
	tmpl := "Dear [CLIENT NAME], re case [CASE NUMBER], you owe [AMOUNT OWED]."

	store, err := Build(tmpl, testCaseRecord(t), persist)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	mappings := store.Mappings()
	if len(mappings) != 3 {
		t.Fatalf("expected 3 mappings, got %d", len(mappings))
	}

	want := map[string]string{
		"[CLIENT NAME]": "Jane Doe",
		"[CASE NUMBER]": "2024-CV-00123",
		"[AMOUNT OWED]": "$4,500.00",
	}
	for _, m := range mappings {
		if m.Value != want[m.Placeholder] {
			t.Errorf("%s = %q, want %q", m.Placeholder, m.Value, want[m.Placeholder])
		}
	}
	if mappings[0].Placeholder != "[CLIENT NAME]" {
		t.Errorf("mapping order does not follow template order: %q first", mappings[0].Placeholder)
	}
	if store.TemplateText() != tmpl {
		t.Errorf("TemplateText = %q", store.TemplateText())
	}
}

// TestBuildEmptyRecord verifies a zero record yields empty values rather
// than an error.
func TestBuildEmptyRecord(t *testing.T) {
	store, err := Build("Dear [CLIENT NAME],", record.Record{}, newTestStore(t))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := store.Mappings()[0].Value; got != "" {
		t.Errorf("value = %q, want empty", got)
	}
}

// TestSet verifies index edits and out-of-range handling.
func TestSet(t *testing.T) {
	store, err := Build("Dear [CLIENT NAME],", record.Record{}, newTestStore(t))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if !store.Set(0, "John Smith") {
		t.Error("Set(0) reported false")
	}
	if got := store.Mappings()[0].Value; got != "John Smith" {
		t.Errorf("value after Set = %q", got)
	}

	for _, index := range []int{-1, 1, 100} {
		if store.Set(index, "x") {
			t.Errorf("Set(%d) reported true for out-of-range index", index)
		}
	}
	if got := store.Mappings()[0].Value; got != "John Smith" {
		t.Errorf("out-of-range Set mutated the list: %q", got)
	}
}

// TestSetByPlaceholder verifies edits keyed by raw placeholder text.
func TestSetByPlaceholder(t *testing.T) {
	store, err := Build("[CLIENT NAME] vs [DEFENDANT NAME]", record.Record{}, newTestStore(t))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if !store.SetByPlaceholder("[DEFENDANT NAME]", "Acme Corp") {
		t.Error("SetByPlaceholder reported false for existing placeholder")
	}
	if store.SetByPlaceholder("[MISSING]", "x") {
		t.Error("SetByPlaceholder reported true for unknown placeholder")
	}
	if got := store.Export()["[DEFENDANT NAME]"]; got != "Acme Corp" {
		t.Errorf("exported value = %q", got)
	}
}

// TestMappingsReturnsCopy verifies callers cannot mutate the store through
// the returned slice.
func TestMappingsReturnsCopy(t *testing.T) {
	store, err := Build("Dear [CLIENT NAME],", record.Record{}, newTestStore(t))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	store.Mappings()[0].Value = "tampered"
	if got := store.Mappings()[0].Value; got == "tampered" {
		t.Error("Mappings exposed internal state")
	}
}

// TestSavePattern verifies snapshot persistence and the default key.
func TestSavePattern(t *testing.T) {
	persist := newTestStore(t)
	store, err := Build("Dear [CLIENT NAME],", testCaseRecord(t), persist)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	key, err := store.SavePattern("employment-demand")
	if err != nil {
		t.Fatalf("SavePattern failed: %v", err)
	}
	if key != "employment-demand" {
		t.Errorf("key = %q", key)
	}

	defaultKey, err := store.SavePattern("")
	if err != nil {
		t.Fatalf("SavePattern with empty name failed: %v", err)
	}
	if !strings.HasPrefix(defaultKey, "template_") {
		t.Errorf("default key = %q, want template_ prefix", defaultKey)
	}

	snapshots, err := persist.ListMappingSnapshots()
	if err != nil {
		t.Fatalf("ListMappingSnapshots failed: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snapshots))
	}
	entry := snapshots[0].Lookup("[CLIENT NAME]")
	if entry == nil || entry.LastValue != "Jane Doe" {
		t.Errorf("snapshot entry = %+v", entry)
	}
}

// TestAutoLearn verifies empty values are filled from saved snapshots and
// that the first snapshot containing a placeholder wins.
func TestAutoLearn(t *testing.T) {
	persist := newTestStore(t)

	first, err := Build("[CLIENT NAME] / [CASE NUMBER]", testCaseRecord(t), persist)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, err := first.SavePattern("older"); err != nil {
		t.Fatalf("SavePattern failed: %v", err)
	}

	second, err := Build("[CLIENT NAME]", record.Record{}, persist)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	second.Set(0, "Rival Value")
	if _, err := second.SavePattern("newer"); err != nil {
		t.Fatalf("SavePattern failed: %v", err)
	}

	target, err := Build("[CLIENT NAME] owes on [CASE NUMBER]; see [UNSEEN FIELD].", record.Record{}, persist)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	target.SetByPlaceholder("[CASE NUMBER]", "manually set")

	filled, err := target.AutoLearn()
	if err != nil {
		t.Fatalf("AutoLearn failed: %v", err)
	}
	if filled != 1 {
		t.Errorf("filled = %d, want 1", filled)
	}

	exported := target.Export()
	if exported["[CLIENT NAME]"] != "Jane Doe" {
		t.Errorf("[CLIENT NAME] = %q, want value from the oldest snapshot", exported["[CLIENT NAME]"])
	}
	if exported["[CASE NUMBER]"] != "manually set" {
		t.Errorf("AutoLearn overwrote a non-empty value: %q", exported["[CASE NUMBER]"])
	}
	if exported["[UNSEEN FIELD]"] != "" {
		t.Errorf("[UNSEEN FIELD] = %q, want empty", exported["[UNSEEN FIELD]"])
	}
}
