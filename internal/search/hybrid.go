package search

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/casekit/letter-forge/internal/storage"
)

// FusionConfig defines weights for hybrid score fusion.
type FusionConfig struct {
	SemanticWeight float64
	KeywordWeight  float64
}

// DefaultFusionConfig provides balanced fusion (70% semantic, 30% keyword).
var DefaultFusionConfig = FusionConfig{
	SemanticWeight: 0.7,
	KeywordWeight:  0.3,
}

// SearchHybrid combines BM25 and semantic scores, falling back to keyword
// search alone when embeddings are unavailable. Each search is recorded in
// storage for analytics (query hashed, never stored in clear).
func (i *Indexer) SearchHybrid(ctx context.Context, query string, limit int, config FusionConfig) ([]LetterResult, error) {
	if limit <= 0 {
		limit = 10
	}

	bm25Results, err := i.SearchBM25(query, limit*2)
	if err != nil {
		return nil, err
	}

	semanticResults, err := i.SearchSemantic(ctx, query, limit*2)
	if err != nil || semanticResults == nil {
		i.recordSearch(query, len(bm25Results))
		return bm25Results, nil
	}

	fused := fuseScores(bm25Results, semanticResults, config)

	sort.Slice(fused, func(a, b int) bool {
		return fused[a].Score > fused[b].Score
	})
	if len(fused) > limit {
		fused = fused[:limit]
	}

	i.recordSearch(query, len(fused))
	return fused, nil
}

// recordSearch logs a search event; failures are ignored.
func (i *Indexer) recordSearch(query string, resultCount int) {
	_ = i.store.RecordSearch(storage.SearchRecord{
		SearchID:     uuid.NewString(),
		QueryHash:    storage.HashQuery(query),
		Timestamp:    time.Now(),
		ResultsCount: resultCount,
	})
}

// fuseScores combines BM25 and semantic results using weighted fusion.
// Normalization keeps the two score spaces comparable before weighting.
func fuseScores(bm25Results, semanticResults []LetterResult, config FusionConfig) []LetterResult {
	bm25Results = normalizeScores(bm25Results)
	semanticResults = normalizeScores(semanticResults)

	byID := make(map[string]LetterResult)
	for _, result := range bm25Results {
		result.Score *= config.KeywordWeight
		byID[result.LetterID] = result
	}

	for _, result := range semanticResults {
		if existing, ok := byID[result.LetterID]; ok {
			existing.Score += config.SemanticWeight * result.Score
			byID[result.LetterID] = existing
			continue
		}
		result.Score *= config.SemanticWeight
		byID[result.LetterID] = result
	}

	fused := make([]LetterResult, 0, len(byID))
	for _, result := range byID {
		fused = append(fused, result)
	}

	return fused
}

// normalizeScores normalizes scores to [0, 1] range.
func normalizeScores(results []LetterResult) []LetterResult {
	if len(results) == 0 {
		return results
	}

	minScore := results[0].Score
	maxScore := results[0].Score
	for _, result := range results {
		if result.Score < minScore {
			minScore = result.Score
		}
		if result.Score > maxScore {
			maxScore = result.Score
		}
	}

	normalized := make([]LetterResult, len(results))
	if maxScore == minScore {
		for i, result := range results {
			normalized[i] = result
			normalized[i].Score = 1.0
		}
		return normalized
	}

	for i, result := range results {
		normalized[i] = result
		normalized[i].Score = (result.Score - minScore) / (maxScore - minScore)
	}

	return normalized
}
