package search

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

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

func saveLetter(t *testing.T, store storage.Storage, id, plaintiff, content string) {
	t.Helper()
	err := store.SaveLetter(storage.Letter{
		ID:            id,
		PlaintiffName: plaintiff,
		Content:       content,
		CreatedAt:     time.Now(),
	})
	if err != nil {
		t.Fatalf("SaveLetter failed: %v", err)
	}
}

// TestIndexerReindex verifies a new indexer picks up letters already in
// storage.
func TestIndexerReindex(t *testing.T) {
	store := newTestStore(t)
	saveLetter(t, store, "letter-1", "Jane Doe", "Demand for unpaid overtime wages.")
	saveLetter(t, store, "letter-2", "John Smith", "Notice of lease termination.")

	idx, err := NewIndexer(store, nil)
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}
	defer idx.Close()

	count, err := idx.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Count = %d, want 2", count)
	}
}

// TestSearchBM25 verifies keyword relevance over indexed letters.
func TestSearchBM25(t *testing.T) {
	store := newTestStore(t)
	saveLetter(t, store, "letter-1", "Jane Doe", "Demand for unpaid overtime wages owed to our client.")
	saveLetter(t, store, "letter-2", "John Smith", "Notice of lease termination effective immediately.")

	idx, err := NewIndexer(store, nil)
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}
	defer idx.Close()

	results, err := idx.SearchBM25("overtime wages", 5)
	if err != nil {
		t.Fatalf("SearchBM25 failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("no results for matching query")
	}
	if results[0].LetterID != "letter-1" {
		t.Errorf("top hit = %q, want letter-1", results[0].LetterID)
	}
	if results[0].PlaintiffName != "Jane Doe" {
		t.Errorf("plaintiff = %q", results[0].PlaintiffName)
	}
	if !strings.Contains(results[0].Snippet, "overtime") {
		t.Errorf("snippet = %q", results[0].Snippet)
	}
}

// TestIndexAndRemoveLetter verifies incremental index maintenance.
func TestIndexAndRemoveLetter(t *testing.T) {
	store := newTestStore(t)

	idx, err := NewIndexer(store, nil)
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}
	defer idx.Close()

	letter := storage.Letter{ID: "letter-9", PlaintiffName: "Ana Ruiz", Content: "Security deposit demand."}
	if err := idx.IndexLetter(letter); err != nil {
		t.Fatalf("IndexLetter failed: %v", err)
	}
	if count, _ := idx.Count(); count != 1 {
		t.Errorf("Count after index = %d, want 1", count)
	}

	if err := idx.RemoveLetter("letter-9"); err != nil {
		t.Fatalf("RemoveLetter failed: %v", err)
	}
	if count, _ := idx.Count(); count != 0 {
		t.Errorf("Count after remove = %d, want 0", count)
	}
}

// TestSearchHybridKeywordFallback verifies hybrid search works without an
// embedder and records the query hash.
func TestSearchHybridKeywordFallback(t *testing.T) {
	store := newTestStore(t)
	saveLetter(t, store, "letter-1", "Jane Doe", "Demand for unpaid overtime wages.")

	idx, err := NewIndexer(store, nil)
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}
	defer idx.Close()

	results, err := idx.SearchHybrid(context.Background(), "overtime", 5, DefaultFusionConfig)
	if err != nil {
		t.Fatalf("SearchHybrid failed: %v", err)
	}
	if len(results) != 1 || results[0].LetterID != "letter-1" {
		t.Errorf("results = %+v", results)
	}
}

// fakeEmbedder maps texts to fixed 2-d vectors by keyword.
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if strings.Contains(strings.ToLower(text), "overtime") {
		return []float32{1, 0}, nil
	}
	return []float32{0, 1}, nil
}

// TestSearchSemantic verifies cosine ranking and embedding caching.
func TestSearchSemantic(t *testing.T) {
	store := newTestStore(t)
	saveLetter(t, store, "letter-1", "Jane Doe", "Demand for unpaid overtime wages.")
	saveLetter(t, store, "letter-2", "John Smith", "Notice of lease termination.")

	idx, err := NewIndexer(store, fakeEmbedder{})
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}
	defer idx.Close()

	results, err := idx.SearchSemantic(context.Background(), "overtime pay dispute", 5)
	if err != nil {
		t.Fatalf("SearchSemantic failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].LetterID != "letter-1" {
		t.Errorf("top hit = %q, want letter-1", results[0].LetterID)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("scores not descending: %v >= %v expected", results[0].Score, results[1].Score)
	}

	vec, version, err := store.GetEmbedding("letter-1")
	if err != nil || vec == nil {
		t.Fatalf("embedding not cached: %v, %v", vec, err)
	}
	if version != embeddingVersion {
		t.Errorf("cached version = %q", version)
	}
}

// TestSearchSemanticNoEmbedder verifies the nil-embedder sentinel.
func TestSearchSemanticNoEmbedder(t *testing.T) {
	idx, err := NewIndexer(newTestStore(t), nil)
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}
	defer idx.Close()

	results, err := idx.SearchSemantic(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("SearchSemantic failed: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil results without embedder, got %v", results)
	}
}

// TestFuseScores verifies weighted fusion across both result sets.
func TestFuseScores(t *testing.T) {
	bm25 := []LetterResult{
		{LetterID: "a", Score: 2.0},
		{LetterID: "b", Score: 1.0},
	}
	semantic := []LetterResult{
		{LetterID: "b", Score: 0.9},
		{LetterID: "c", Score: 0.1},
	}

	fused := fuseScores(bm25, semantic, FusionConfig{SemanticWeight: 0.7, KeywordWeight: 0.3})

	byID := map[string]float64{}
	for _, r := range fused {
		byID[r.LetterID] = r.Score
	}
	if len(byID) != 3 {
		t.Fatalf("expected 3 fused results, got %d", len(byID))
	}

	// After normalization: bm25 a=1, b=0; semantic b=1, c=0.
	assertClose := func(id string, want float64) {
		t.Helper()
		if got := byID[id]; got < want-1e-9 || got > want+1e-9 {
			t.Errorf("%s score = %v, want %v", id, got, want)
		}
	}
	assertClose("a", 0.3)
	assertClose("b", 0.7)
	assertClose("c", 0.0)
}

// TestNormalizeScores verifies range scaling and the equal-scores case.
func TestNormalizeScores(t *testing.T) {
	normalized := normalizeScores([]LetterResult{
		{LetterID: "a", Score: 10},
		{LetterID: "b", Score: 5},
		{LetterID: "c", Score: 0},
	})
	if normalized[0].Score != 1.0 || normalized[1].Score != 0.5 || normalized[2].Score != 0.0 {
		t.Errorf("normalized = %v %v %v", normalized[0].Score, normalized[1].Score, normalized[2].Score)
	}

	equal := normalizeScores([]LetterResult{{Score: 3}, {Score: 3}})
	if equal[0].Score != 1.0 || equal[1].Score != 1.0 {
		t.Errorf("equal scores should normalize to 1.0: %v %v", equal[0].Score, equal[1].Score)
	}

	if got := normalizeScores(nil); got != nil {
		t.Errorf("nil input should pass through, got %v", got)
	}
}

// TestMakeSnippet verifies the content preview cap.
func TestMakeSnippet(t *testing.T) {
	short := "Short letter."
	if got := makeSnippet(short); got != short {
		t.Errorf("makeSnippet(short) = %q", got)
	}

	long := strings.Repeat("x", snippetLength+50)
	got := makeSnippet(long)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("long snippet missing ellipsis: %q", got)
	}
	if len([]rune(got)) != snippetLength+1 {
		t.Errorf("snippet length = %d runes", len([]rune(got)))
	}
}

// TestCosineSimilarity verifies the similarity measure.
func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0.0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if got < tt.want-1e-9 || got > tt.want+1e-9 {
				t.Errorf("cosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestSearchBM25Limit verifies the result cap.
func TestSearchBM25Limit(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 5; i++ {
		saveLetter(t, store, fmt.Sprintf("letter-%d", i), "Jane Doe", "Demand for unpaid wages.")
	}

	idx, err := NewIndexer(store, nil)
	if err != nil {
		t.Fatalf("NewIndexer failed: %v", err)
	}
	defer idx.Close()

	results, err := idx.SearchBM25("wages", 3)
	if err != nil {
		t.Fatalf("SearchBM25 failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("len(results) = %d, want 3", len(results))
	}
}
