package generate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/casekit/letter-forge/internal/learning"
	"github.com/casekit/letter-forge/internal/mapping"
	"github.com/casekit/letter-forge/internal/matcher"
	"github.com/casekit/letter-forge/internal/record"
	"github.com/casekit/letter-forge/internal/storage"
	"github.com/casekit/letter-forge/internal/template"
)

// Options configures one generation run.
type Options struct {
	// TemplateText is the raw template. Required.
	TemplateText string

	// Record is the active case record. May be zero; matching then yields
	// empty values for every placeholder.
	Record record.Record

	// Overrides replaces matched values per placeholder before generation.
	Overrides map[string]string

	// AutoLearn fills remaining empty values from saved mapping snapshots.
	AutoLearn bool

	// SavePatternAs snapshots the final mapping list under this name
	// ("" = no snapshot, "auto" callers pass a generated name).
	SavePatternAs string

	// SaveLetter persists the generated letter.
	SaveLetter bool

	// SkipLearning suppresses the learning event for this run
	// (settings.learningEnabled = false).
	SkipLearning bool
}

// Result is the outcome of one generation run.
type Result struct {
	// LetterID is the saved letter's UUID ("" when not saved).
	LetterID string

	// Content is the generated letter text.
	Content string

	// Mappings is the final mapping list used for generation.
	Mappings []mapping.Mapping

	// Unfilled lists placeholders that had no value at generation time.
	Unfilled []string

	// PlaintiffName is the detected subject of the letter.
	PlaintiffName string
}

// Run executes the full generation flow: extract, match, auto-learn, build
// enriched instructions, call the generator, then persist the letter and
// (unless SkipLearning is set) the learning event.
//
// A nil Generator renders the template offline with the resolved mappings
// instead of calling the LLM.
func Run(ctx context.Context, opts Options, store storage.Storage, engine *learning.Engine, gen Generator) (*Result, error) {
	if opts.TemplateText == "" {
		return nil, learning.ErrInvalidTemplate
	}

	ms, err := mapping.Build(opts.TemplateText, opts.Record, store)
	if err != nil {
		return nil, err
	}

	for placeholder, value := range opts.Overrides {
		if !ms.SetByPlaceholder(placeholder, value) {
			return nil, fmt.Errorf("placeholder %q not found in template", placeholder)
		}
	}

	if opts.AutoLearn {
		if _, err := ms.AutoLearn(); err != nil {
			return nil, err
		}
	}

	if opts.SavePatternAs != "" {
		if _, err := ms.SavePattern(opts.SavePatternAs); err != nil {
			return nil, err
		}
	}

	exported := ms.Export()

	var content string
	if gen == nil {
		content = Render(opts.TemplateText, exported)
	} else {
		instructions, err := engine.BuildInstructionsFromStore(opts.TemplateText, exported)
		if err != nil {
			return nil, err
		}
		content, err = gen.Generate(ctx, instructions)
		if err != nil {
			return nil, err
		}
	}

	result := &Result{
		Content:       content,
		Mappings:      ms.Mappings(),
		PlaintiffName: detectPlaintiff(opts.Record),
	}
	for _, m := range result.Mappings {
		if m.Value == "" {
			result.Unfilled = append(result.Unfilled, m.Placeholder)
		}
	}

	if opts.SaveLetter {
		letter := storage.Letter{
			ID:            uuid.NewString(),
			PlaintiffName: result.PlaintiffName,
			Content:       content,
			CreatedAt:     time.Now(),
		}
		if err := store.SaveLetter(letter); err != nil {
			return nil, err
		}
		result.LetterID = letter.ID
	}

	if !opts.SkipLearning {
		if err := engine.RecordEvent(opts.TemplateText, exported, content, learning.FeedbackNone, ""); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// detectPlaintiff pulls the letter subject's name out of the record using
// the same matching rules as placeholder resolution.
func detectPlaintiff(rec record.Record) string {
	if rec.IsZero() {
		return "unknown"
	}

	probe := template.Placeholder{Raw: "[PLAINTIFF FULL NAME]", Category: template.CategoryPersonal}
	name, _, err := matcher.Match(probe, rec)
	if err != nil || name == "" {
		return "unknown"
	}

	return name
}
