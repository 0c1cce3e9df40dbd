/*
Package main is the entry point for the letter-forge CLI.

letter-forge generates demand letters from bracketed templates and CSV
case records, learning from user feedback to improve future generations.

Usage:
  letter-forge [command]

Available Commands:
  init        Create default configuration and data directory
  extract     Extract placeholders from a template
  match       Match template placeholders against a case record
  generate    Generate a demand letter from a template and case record
  batch       Generate letters for every record in a CSV file
  feedback    Record feedback on a generated letter
  suggest     Show improvement suggestions from learning history
  patterns    Inspect learned template patterns and saved mappings
  letters     Manage saved letters
  learning    Manage the learning system
  serve       Run the MCP server (stdio transport)
  benchmark   Measure extraction, matching, and rendering performance
  verify      Verify configuration, storage, and API key
  update      Update letter-forge to the latest release
  help        Help about any command

Examples:
  # First-time setup
  letter-forge init

  # Generate a letter for the first CSV row
  letter-forge generate --template demand.txt --data cases.csv

  # Rate the result so future letters improve
  letter-forge feedback positive --template demand.txt
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/casekit/letter-forge/internal/cli"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "letter-forge",
		Short: "Generate demand letters that learn from your feedback",
		Long: `letter-forge turns a bracketed letter template and a CSV of case records
into finished demand letters.

Placeholders like [CLIENT NAME] are matched against record fields using a
synonym table and fuzzy field-name matching. Every generation is recorded
as a learning event: rate a letter with 'feedback' and the template's
pattern accumulates a success rate that enriches future LLM prompts.

Generation uses the Gemini API when GEMINI_API_KEY is set, and falls back
to offline template rendering when it is not.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	}

	// Add subcommands
	rootCmd.AddCommand(cli.NewInitCmd())
	rootCmd.AddCommand(cli.NewExtractCmd())
	rootCmd.AddCommand(cli.NewMatchCmd())
	rootCmd.AddCommand(cli.NewGenerateCmd())
	rootCmd.AddCommand(cli.NewBatchCmd())
	rootCmd.AddCommand(cli.NewFeedbackCmd())
	rootCmd.AddCommand(cli.NewSuggestCmd())
	rootCmd.AddCommand(cli.NewPatternsCmd())
	rootCmd.AddCommand(cli.NewLettersCmd())
	rootCmd.AddCommand(cli.NewLearningCmd())
	rootCmd.AddCommand(cli.NewServeCmd())
	rootCmd.AddCommand(cli.NewBenchmarkCmd())
	rootCmd.AddCommand(cli.NewVerifyCmd())
	rootCmd.AddCommand(cli.NewUpdateCmd())
	rootCmd.AddCommand(cli.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
