package generate

import (
	"context"
	"strings"
)

// OfflineRenderer fills a template locally without a network call.
//
// Substitution is literal: each mapped placeholder is replaced by its value
// with the brackets removed, and unmapped or empty-valued placeholders stay
// bracketed so the gap is visible in the output. A wrong guess in a legal
// document is worse than an obvious hole.
type OfflineRenderer struct {
	templateText string
	mappings     map[string]string
}

// NewOfflineRenderer creates a local substitution renderer.
func NewOfflineRenderer(templateText string, mappings map[string]string) *OfflineRenderer {
	return &OfflineRenderer{templateText: templateText, mappings: mappings}
}

// Generate performs the local substitution. The instructions argument is
// ignored; the renderer works from the raw template.
func (r *OfflineRenderer) Generate(_ context.Context, _ string) (string, error) {
	return Render(r.templateText, r.mappings), nil
}

// Name identifies the generator for display.
func (r *OfflineRenderer) Name() string {
	return "offline"
}

// Render substitutes mapped placeholder values into template text.
// Placeholders with no value remain bracketed.
func Render(templateText string, mappings map[string]string) string {
	result := templateText
	for placeholder, value := range mappings {
		if value == "" {
			continue
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}
