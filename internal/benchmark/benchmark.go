/*
Package benchmark measures the letter-forge core pipeline.

It times the three local stages for a template/dataset pair:
1. Extraction: placeholder scanning of the template
2. Matching: synonym and fuzzy resolution against each record
3. Rendering: offline substitution of resolved values

It also estimates the prompt-size overhead the learning enrichment adds
on top of the raw template (tiktoken-compatible approximation:
~4 characters per token for English text, ~3 for JSON/code).
*/
package benchmark

import (
	"fmt"
	"strings"
	"time"

	"github.com/casekit/letter-forge/internal/generate"
	"github.com/casekit/letter-forge/internal/matcher"
	"github.com/casekit/letter-forge/internal/record"
	"github.com/casekit/letter-forge/internal/template"
)

// CharsPerTextToken approximates tokens in English prose.
const CharsPerTextToken = 4

// StageTiming holds timings for one pipeline stage.
type StageTiming struct {
	Total   time.Duration `json:"total"`
	PerUnit time.Duration `json:"perUnit"`
}

// Result contains pipeline benchmark results.
type Result struct {
	Records      int `json:"records"`
	Placeholders int `json:"placeholders"`
	Iterations   int `json:"iterations"`

	Extract StageTiming `json:"extract"`
	Match   StageTiming `json:"match"`
	Render  StageTiming `json:"render"`

	// TemplateTokens estimates the raw template's prompt cost.
	TemplateTokens int `json:"templateTokens"`
	// InstructionTokens estimates the full enriched-instruction cost.
	InstructionTokens int `json:"instructionTokens"`
	// OverheadPercent is how much larger the enriched prompt is.
	OverheadPercent float64 `json:"overheadPercent"`
}

// CountTextTokens estimates tokens for prose.
func CountTextTokens(text string) int {
	return len(text) / CharsPerTextToken
}

// Run benchmarks the local pipeline for a template over a dataset.
// instructions is the enriched prompt a generation run would send; pass ""
// to skip the overhead estimate.
func Run(templateText string, dataset *record.Dataset, iterations int, instructions string) (*Result, error) {
	if iterations < 1 {
		iterations = 1
	}
	if dataset == nil || dataset.Count() == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}

	placeholders := template.Extract(templateText)
	if len(placeholders) == 0 {
		return nil, fmt.Errorf("template has no placeholders")
	}

	result := &Result{
		Records:      dataset.Count(),
		Placeholders: len(placeholders),
		Iterations:   iterations,
	}

	// Stage 1: extraction
	start := time.Now()
	for i := 0; i < iterations; i++ {
		template.Extract(templateText)
	}
	result.Extract.Total = time.Since(start)
	result.Extract.PerUnit = result.Extract.Total / time.Duration(iterations)

	// Stage 2: matching, every record each iteration
	matchUnits := 0
	start = time.Now()
	for i := 0; i < iterations; i++ {
		for r := 0; r < dataset.Count(); r++ {
			rec, err := dataset.Record(r)
			if err != nil {
				return nil, err
			}
			if _, err := matcher.MatchAll(placeholders, rec); err != nil {
				return nil, err
			}
			matchUnits++
		}
	}
	result.Match.Total = time.Since(start)
	result.Match.PerUnit = result.Match.Total / time.Duration(matchUnits)

	// Stage 3: offline rendering with the first record's values
	rec, err := dataset.Record(0)
	if err != nil {
		return nil, err
	}
	matches, err := matcher.MatchAll(placeholders, rec)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(matches))
	for _, m := range matches {
		values[m.Placeholder] = m.Value
	}

	start = time.Now()
	for i := 0; i < iterations; i++ {
		generate.Render(templateText, values)
	}
	result.Render.Total = time.Since(start)
	result.Render.PerUnit = result.Render.Total / time.Duration(iterations)

	result.TemplateTokens = CountTextTokens(templateText)
	if instructions != "" {
		result.InstructionTokens = CountTextTokens(instructions)
		if result.TemplateTokens > 0 {
			result.OverheadPercent = float64(result.InstructionTokens-result.TemplateTokens) /
				float64(result.TemplateTokens) * 100
		}
	}

	return result, nil
}

// FormatResult formats the benchmark result for display.
func FormatResult(result *Result) string {
	var sb strings.Builder

	sb.WriteString("╔══════════════════════════════════════════════════════════════╗\n")
	sb.WriteString("║              PIPELINE BENCHMARK RESULTS                      ║\n")
	sb.WriteString("╠══════════════════════════════════════════════════════════════╣\n")
	sb.WriteString(fmt.Sprintf("║  Records: %-4d  Placeholders: %-4d  Iterations: %-5d        ║\n",
		result.Records, result.Placeholders, result.Iterations))
	sb.WriteString("║                                                              ║\n")
	sb.WriteString(fmt.Sprintf("║  Extract:  %-12v per template                         ║\n", result.Extract.PerUnit))
	sb.WriteString(fmt.Sprintf("║  Match:    %-12v per record                           ║\n", result.Match.PerUnit))
	sb.WriteString(fmt.Sprintf("║  Render:   %-12v per letter                           ║\n", result.Render.PerUnit))
	if result.InstructionTokens > 0 {
		sb.WriteString("║                                                              ║\n")
		sb.WriteString(fmt.Sprintf("║  Template tokens:     ~%-6d                                ║\n", result.TemplateTokens))
		sb.WriteString(fmt.Sprintf("║  Instruction tokens:  ~%-6d                                ║\n", result.InstructionTokens))
		sb.WriteString(fmt.Sprintf("║  Enrichment overhead: %.1f%%                                  ║\n", result.OverheadPercent))
	}
	sb.WriteString("╚══════════════════════════════════════════════════════════════╝\n")

	return sb.String()
}
