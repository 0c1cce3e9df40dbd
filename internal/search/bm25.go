package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
)

// SearchBM25 performs BM25 keyword search over indexed letters.
func (i *Indexer) SearchBM25(query string, limit int) ([]LetterResult, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	searchQuery := bleve.NewMatchQuery(query)
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, limit, 0, false)
	searchRequest.Fields = []string{"plaintiff", "content"}

	results, err := i.bleveIndex.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	return convertBleveResults(results), nil
}

// convertBleveResults converts Bleve hits to LetterResults.
func convertBleveResults(results *bleve.SearchResult) []LetterResult {
	letterResults := make([]LetterResult, 0, len(results.Hits))

	for _, hit := range results.Hits {
		plaintiff, _ := hit.Fields["plaintiff"].(string)
		content, _ := hit.Fields["content"].(string)

		letterResults = append(letterResults, LetterResult{
			LetterID:      hit.ID,
			PlaintiffName: plaintiff,
			Snippet:       makeSnippet(content),
			Score:         hit.Score,
		})
	}

	return letterResults
}
