package search

import (
	"fmt"
	"log"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/casekit/letter-forge/internal/storage"
)

// Indexer manages the full-text index over saved letters.
type Indexer struct {
	bleveIndex bleve.Index
	store      storage.Storage
	embedder   Embedder
	mu         sync.RWMutex
}

// NewIndexer creates an in-memory Bleve index and fills it from storage.
// The embedder may be nil; semantic search is then unavailable and hybrid
// search degrades to keyword-only.
func NewIndexer(store storage.Storage, embedder Embedder) (*Indexer, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	idx := &Indexer{
		bleveIndex: index,
		store:      store,
		embedder:   embedder,
	}

	if err := idx.Reindex(); err != nil {
		return nil, err
	}

	return idx, nil
}

// buildIndexMapping creates the Bleve index mapping for letters.
func buildIndexMapping() mapping.IndexMapping {
	letterMapping := bleve.NewDocumentMapping()

	plaintiffField := bleve.NewTextFieldMapping()
	letterMapping.AddFieldMappingsAt("plaintiff", plaintiffField)

	contentField := bleve.NewTextFieldMapping()
	letterMapping.AddFieldMappingsAt("content", contentField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", letterMapping)

	return indexMapping
}

// Reindex rebuilds the index from every letter in storage.
func (i *Indexer) Reindex() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	letters, err := i.store.ListLetters()
	if err != nil {
		return fmt.Errorf("failed to load letters for indexing: %w", err)
	}

	batch := i.bleveIndex.NewBatch()
	for _, letter := range letters {
		doc := map[string]interface{}{
			"plaintiff": letter.PlaintiffName,
			"content":   letter.Content,
		}
		if err := batch.Index(letter.ID, doc); err != nil {
			log.Printf("Warning: failed to index letter %s: %v", letter.ID, err)
		}
	}

	if err := i.bleveIndex.Batch(batch); err != nil {
		return fmt.Errorf("failed to batch index letters: %w", err)
	}

	return nil
}

// IndexLetter adds or updates one letter in the index.
func (i *Indexer) IndexLetter(letter storage.Letter) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	doc := map[string]interface{}{
		"plaintiff": letter.PlaintiffName,
		"content":   letter.Content,
	}
	if err := i.bleveIndex.Index(letter.ID, doc); err != nil {
		return fmt.Errorf("failed to index letter %s: %w", letter.ID, err)
	}

	return nil
}

// RemoveLetter deletes one letter from the index.
func (i *Indexer) RemoveLetter(id string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.bleveIndex.Delete(id); err != nil {
		return fmt.Errorf("failed to remove letter %s from index: %w", id, err)
	}

	return nil
}

// Count returns the total number of indexed letters.
func (i *Indexer) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	docCount, err := i.bleveIndex.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get doc count: %w", err)
	}

	return docCount, nil
}

// Close closes the index and releases resources.
func (i *Indexer) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.bleveIndex != nil {
		return i.bleveIndex.Close()
	}

	return nil
}
