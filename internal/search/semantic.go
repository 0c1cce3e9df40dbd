package search

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"google.golang.org/genai"
)

// embeddingVersion tags cached vectors so a model change invalidates them.
const embeddingVersion = "gemini-embedding-001"

// Embedder generates embedding vectors for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GenAIEmbedder embeds text using Google's Gemini API.
type GenAIEmbedder struct {
	client *genai.Client
	model  string
}

// NewGenAIEmbedder creates a Gemini-backed embedder.
func NewGenAIEmbedder(ctx context.Context, apiKey string) (*GenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	return &GenAIEmbedder{client: client, model: embeddingVersion}, nil
}

// Embed generates an embedding for a single text.
func (e *GenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	result, err := e.client.Models.EmbedContent(ctx,
		e.model,
		contents,
		&genai.EmbedContentConfig{
			TaskType: "SEMANTIC_SIMILARITY",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("embed request failed: %w", err)
	}

	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	return result.Embeddings[0].Values, nil
}

// SearchSemantic ranks letters by cosine similarity to the query embedding.
// Returns nil when no embedder is configured; callers fall back to BM25.
//
// Letter embeddings are computed lazily and cached in storage, so only the
// first search after a new letter pays an embedding call for it.
func (i *Indexer) SearchSemantic(ctx context.Context, query string, limit int) ([]LetterResult, error) {
	if i.embedder == nil {
		return nil, nil
	}

	if limit <= 0 {
		limit = 10
	}

	queryVec, err := i.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	letters, err := i.store.ListLetters()
	if err != nil {
		return nil, err
	}

	results := make([]LetterResult, 0, len(letters))
	for _, letter := range letters {
		vec, version, err := i.store.GetEmbedding(letter.ID)
		if err != nil || vec == nil || version != embeddingVersion {
			vec, err = i.embedder.Embed(ctx, letter.Content)
			if err != nil {
				log.Printf("Warning: failed to embed letter %s: %v", letter.ID, err)
				continue
			}
			if err := i.store.SaveEmbedding(letter.ID, vec, embeddingVersion); err != nil {
				log.Printf("Warning: failed to cache embedding for %s: %v", letter.ID, err)
			}
		}

		results = append(results, LetterResult{
			LetterID:      letter.ID,
			PlaintiffName: letter.PlaintiffName,
			Snippet:       makeSnippet(letter.Content),
			Score:         cosineSimilarity(queryVec, vec),
		})
	}

	sort.Slice(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// cosineSimilarity computes cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
