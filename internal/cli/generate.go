package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/casekit/letter-forge/internal/config"
	"github.com/casekit/letter-forge/internal/generate"
	"github.com/casekit/letter-forge/internal/learning"
)

// NewGenerateCmd creates the 'generate' command, the main generation flow.
func NewGenerateCmd() *cobra.Command {
	var templatePath string
	var dataPath string
	var row int
	var overrides []string
	var offline bool
	var autoLearn bool
	var savePattern string
	var noSave bool
	var outputPath string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a demand letter from a template and case record",
		Long: `Run the full generation flow for one case record:

  1. Extract placeholders from the template
  2. Match them against the record (synonyms, then fuzzy)
  3. Apply manual --set overrides and optional auto-learned values
  4. Build enriched instructions from learning history
  5. Call the LLM (or render offline) and save the letter

Every run records a learning event; use 'feedback' afterwards to rate
the result and improve future generations.`,
		Example: `  letter-forge generate --template demand.txt --data cases.csv
  letter-forge generate -t demand.txt -d cases.csv --row 2 \
      --set "[CLIENT NAME]=Jane Doe" --auto-learn
  letter-forge generate -t demand.txt --offline -o letter.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(templatePath, dataPath, row, overrides, offline,
				autoLearn, savePattern, noSave, outputPath)
		},
	}

	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "Template file (.txt or .html)")
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "CSV file with case records")
	cmd.Flags().IntVarP(&row, "row", "r", 0, "Record row index (0-based)")
	cmd.Flags().StringArrayVarP(&overrides, "set", "s", nil, `Override a value: "[PLACEHOLDER]=value" (repeatable)`)
	cmd.Flags().BoolVar(&offline, "offline", false, "Render locally instead of calling the LLM")
	cmd.Flags().BoolVar(&autoLearn, "auto-learn", false, "Fill empty values from saved patterns")
	cmd.Flags().StringVar(&savePattern, "save-pattern", "", "Save the final mappings under this name")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not persist the generated letter")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the letter to a file (default: stdout)")

	return cmd
}

// runGenerate executes one generation run.
func runGenerate(templatePath, dataPath string, row int, overrides []string,
	offline, autoLearn bool, savePattern string, noSave bool, outputPath string) error {

	cfg := config.LoadOrDefault()
	if offline {
		cfg.Settings.Offline = true
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	text, err := loadTemplate(templatePath)
	if err != nil {
		return err
	}

	rec, err := loadRecord(dataPath, row)
	if err != nil {
		return err
	}

	overrideMap, err := parseOverrides(overrides)
	if err != nil {
		return err
	}

	store := openStorage()
	defer store.Close()
	engine := learning.NewEngine(store)

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Settings.TimeoutSeconds)*time.Second)
	defer cancel()

	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	opts := generate.Options{
		TemplateText:  text,
		Record:        rec,
		Overrides:     overrideMap,
		AutoLearn:     autoLearn,
		SavePatternAs: savePattern,
		SaveLetter:    !noSave,
		SkipLearning:  !cfg.LearningActive(),
	}

	if gen == nil {
		// No API key or forced offline; Run substitutes values locally.
		fmt.Fprintln(os.Stderr, "Rendering offline (no LLM call).")
	}

	result, err := generate.Run(ctx, opts, store, engine, gen)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	if len(result.Unfilled) > 0 {
		fmt.Fprintf(os.Stderr, "⚠️  Unfilled placeholders: %s\n", strings.Join(result.Unfilled, ", "))
	}
	if result.LetterID != "" {
		fmt.Fprintf(os.Stderr, "✓ Letter saved (id: %s, plaintiff: %s)\n", result.LetterID, result.PlaintiffName)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(result.Content), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outputPath)
		return nil
	}

	fmt.Println(result.Content)
	return nil
}

// parseOverrides splits "[PLACEHOLDER]=value" pairs.
func parseOverrides(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		idx := strings.Index(pair, "=")
		if idx <= 0 {
			return nil, fmt.Errorf("invalid --set %q (want \"[PLACEHOLDER]=value\")", pair)
		}
		out[pair[:idx]] = pair[idx+1:]
	}
	return out, nil
}
