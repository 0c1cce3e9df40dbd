/*
Package generate produces filled demand letters from a template and mapping.

The generation call itself is an external collaborator: a Gemini invocation
that receives the enriched instructions and returns the letter as an opaque
string. An offline renderer provides a deterministic local fallback that
performs plain placeholder substitution without a network call.
*/
package generate

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/casekit/letter-forge/internal/learning"
)

// Generator produces a letter from prepared generation instructions.
type Generator interface {
	// Generate returns the generated letter text. The response is treated
	// as opaque; no format parsing happens here.
	Generate(ctx context.Context, instructions string) (string, error)

	// Name identifies the generator for display.
	Name() string
}

// GeminiClient calls the Gemini API to process a template.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// defaultModel is used when no model is configured.
const defaultModel = "gemini-2.0-flash"

// NewGeminiClient creates a Gemini-backed generator.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

// Generate sends the instructions to Gemini and returns the letter text.
// Temperature is pinned to zero: the task is substitution, not authorship.
func (g *GeminiClient) Generate(ctx context.Context, instructions string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(learning.SystemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0),
		MaxOutputTokens:   4000,
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(instructions), config)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("generation returned no content")
	}

	return text, nil
}

// Name identifies the generator for display.
func (g *GeminiClient) Name() string {
	return fmt.Sprintf("gemini:%s", g.model)
}
