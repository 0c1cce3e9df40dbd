/*
Package search implements full-text search over saved demand letters.

This package provides BM25 keyword search via Bleve with optional semantic
search via Gemini embeddings and hybrid fusion for ranked results. Letter
embeddings are cached in storage so repeat searches do not re-embed.
*/
package search

// LetterResult represents a single search hit with relevance score.
type LetterResult struct {
	LetterID      string  `json:"id"`
	PlaintiffName string  `json:"plaintiff"`
	Snippet       string  `json:"snippet"`
	Score         float64 `json:"score"`
}

// snippetLength caps the content preview attached to a result.
const snippetLength = 160

// makeSnippet trims letter content to a short preview.
func makeSnippet(content string) string {
	if len(content) <= snippetLength {
		return content
	}
	return content[:snippetLength] + "…"
}
