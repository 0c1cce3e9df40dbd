package learning

import (
	"fmt"
	"sort"
	"strings"

	"github.com/casekit/letter-forge/internal/storage"
)

const (
	// qualifyingSuccessRate selects patterns worth citing in the prompt.
	qualifyingSuccessRate = 0.7

	// maxCitedPatterns caps how many patterns the prompt summarizes.
	maxCitedPatterns = 3
)

// SystemInstruction is the fixed system prompt for the generation call.
const SystemInstruction = "You are a precise legal document processor. " +
	"Your only job is to replace bracketed placeholders with provided values " +
	"while preserving EXACT formatting. Do not modify any other content."

// formattingRules is emitted only when at least one qualifying pattern
// exists; with no learning signal the rules would be noise.
const formattingRules = `CRITICAL FORMATTING RULES (learned from successful generations):
1. NEVER modify text outside of bracketed placeholders [LIKE THIS]
2. Preserve ALL spacing, line breaks, and paragraph structure EXACTLY
3. Replace ONLY the bracketed content, keeping brackets removed
4. Maintain all legal citations, headers, and section formatting
5. Keep all punctuation and capitalization as originally formatted`

// BuildInstructions produces the text block for the downstream generation
// call. Pure function over its inputs.
//
// Patterns with a success rate above 0.7 are cited, best first, at most
// three. The formatting-rules block rides along with the citations and is
// omitted when no pattern qualifies.
func BuildInstructions(templateText string, mappings map[string]string, events []storage.LearningEvent, patterns []storage.TemplatePattern) string {
	var sb strings.Builder

	if enrichment := enrichmentBlock(len(events), patterns); enrichment != "" {
		sb.WriteString(enrichment)
		sb.WriteString("\n")
	}

	sb.WriteString("You are a legal document processor with advanced pattern recognition. ")
	sb.WriteString("Your ONLY task is to replace bracketed placeholders with provided values while preserving EXACT formatting.\n\n")

	sb.WriteString("TEMPLATE TO PROCESS:\n")
	sb.WriteString(templateText)
	sb.WriteString("\n\n")

	sb.WriteString("REPLACEMENT VALUES:\n")
	for _, placeholder := range sortedKeys(mappings) {
		fmt.Fprintf(&sb, "%s → %q\n", placeholder, mappings[placeholder])
	}
	sb.WriteString("\n")

	sb.WriteString(`PROCESSING INSTRUCTIONS:
- Find each bracketed placeholder [PLACEHOLDER] in the template
- Replace it with the corresponding value, removing the brackets
- If no value is provided for a placeholder, leave it as [PLACEHOLDER]
- Preserve ALL other text, formatting, spacing, and structure EXACTLY
- Do not add, remove, or modify any other content

Generate the complete processed document:`)

	return sb.String()
}

// BuildInstructionsFromStore reads history from the store and builds the
// generation instructions.
func (e *Engine) BuildInstructionsFromStore(templateText string, mappings map[string]string) (string, error) {
	events, err := e.store.GetEvents()
	if err != nil {
		return "", err
	}

	patterns, err := e.store.GetAllPatterns()
	if err != nil {
		return "", err
	}

	return BuildInstructions(templateText, mappings, events, patterns), nil
}

// enrichmentBlock renders the learned-best-practices section, or "" when no
// pattern qualifies.
func enrichmentBlock(eventCount int, patterns []storage.TemplatePattern) string {
	qualifying := make([]storage.TemplatePattern, 0, len(patterns))
	for _, p := range patterns {
		if p.SuccessRate > qualifyingSuccessRate {
			qualifying = append(qualifying, p)
		}
	}

	if len(qualifying) == 0 {
		return ""
	}

	sort.SliceStable(qualifying, func(i, j int) bool {
		return qualifying[i].SuccessRate > qualifying[j].SuccessRate
	})
	if len(qualifying) > maxCitedPatterns {
		qualifying = qualifying[:maxCitedPatterns]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "LEARNED BEST PRACTICES (from %d previous generations):\n", eventCount)
	for _, p := range qualifying {
		fmt.Fprintf(&sb, "- Success rate: %.1f%% for similar templates\n", p.SuccessRate*100)
	}
	sb.WriteString("\n")
	sb.WriteString(formattingRules)
	sb.WriteString("\n")

	return sb.String()
}

// sortedKeys returns map keys in sorted order so prompt output is stable.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
