package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/casekit/letter-forge/internal/mapping"
)

// NewPatternsCmd creates the 'patterns' command group for learned template
// patterns and saved mapping snapshots.
func NewPatternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Inspect learned template patterns and saved mappings",
		Long: `Template patterns accumulate automatically: each generation updates the
pattern keyed by the template's placeholder set with usage counts and a
feedback-driven success rate.

Saved mappings are explicit snapshots of a reviewed mapping list, created
with 'patterns save' or 'generate --save-pattern', and reused by
'generate --auto-learn'.`,
	}

	cmd.AddCommand(newPatternsListCmd())
	cmd.AddCommand(newPatternsSaveCmd())

	return cmd
}

// newPatternsListCmd lists learned patterns and saved snapshots.
func newPatternsListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List learned patterns and saved mapping snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStorage()
			defer store.Close()

			patterns, err := store.GetAllPatterns()
			if err != nil {
				return fmt.Errorf("failed to load patterns: %w", err)
			}
			snapshots, err := store.ListMappingSnapshots()
			if err != nil {
				return fmt.Errorf("failed to load saved mappings: %w", err)
			}

			if jsonOutput {
				out, err := formatJSON(map[string]interface{}{
					"patterns":  patterns,
					"snapshots": snapshots,
				})
				if err != nil {
					return err
				}
				fmt.Println(out)
				return nil
			}

			fmt.Printf("Learned patterns (%d):\n\n", len(patterns))
			for _, p := range patterns {
				fmt.Printf("  %s\n", p.Key)
				fmt.Printf("    Success rate: %.0f%%  Used: %d time(s)\n", p.SuccessRate*100, p.UsageCount)
			}
			if len(patterns) == 0 {
				fmt.Println("  (none yet; patterns accumulate as you generate)")
			}

			fmt.Printf("\nSaved mappings (%d):\n\n", len(snapshots))
			for _, s := range snapshots {
				fmt.Printf("  %s  (%d entries, saved %s)\n", s.Key, len(s.Entries), s.CreatedAt.Format("2006-01-02"))
			}
			if len(snapshots) == 0 {
				fmt.Println("  (none; use 'patterns save' or 'generate --save-pattern')")
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}

// newPatternsSaveCmd snapshots the mapping for a template/record pair.
func newPatternsSaveCmd() *cobra.Command {
	var templatePath string
	var dataPath string
	var row int
	var name string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a reviewed mapping as a reusable snapshot",
		Example: `  letter-forge patterns save -t demand.txt -d cases.csv --name standard-demand
  letter-forge patterns save -t demand.txt -d cases.csv --row 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := loadTemplate(templatePath)
			if err != nil {
				return err
			}
			rec, err := loadRecord(dataPath, row)
			if err != nil {
				return err
			}

			store := openStorage()
			defer store.Close()

			ms, err := mapping.Build(text, rec, store)
			if err != nil {
				return fmt.Errorf("failed to build mappings: %w", err)
			}

			key, err := ms.SavePattern(name)
			if err != nil {
				return err
			}

			fmt.Printf("✓ Saved mapping snapshot %q (%d entries)\n", key, ms.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "Template file (.txt or .html)")
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "CSV file with case records")
	cmd.Flags().IntVarP(&row, "row", "r", 0, "Record row index (0-based)")
	cmd.Flags().StringVar(&name, "name", "", "Snapshot name (default: timestamp-derived)")

	return cmd
}
