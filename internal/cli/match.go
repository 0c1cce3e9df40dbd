package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/casekit/letter-forge/internal/mapping"
)

// NewMatchCmd creates the 'match' command for previewing placeholder mappings.
func NewMatchCmd() *cobra.Command {
	var templatePath string
	var dataPath string
	var row int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match template placeholders against a case record",
		Long: `Match every placeholder in a template against one row of a CSV case
record and show the resulting mapping.

Matching tries the synonym table first, then fuzzy field-name matching.
Unmatched placeholders are shown empty; fix them at generation time with
--set or fill them from saved snapshots with generate --auto-learn.`,
		Example: `  letter-forge match --template demand.txt --data cases.csv
  letter-forge match --template demand.txt --data cases.csv --row 2 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(templatePath, dataPath, row, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "Template file (.txt or .html)")
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "CSV file with case records")
	cmd.Flags().IntVarP(&row, "row", "r", 0, "Record row index (0-based)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// runMatch builds and displays the mapping for one record.
func runMatch(templatePath, dataPath string, row int, jsonOutput bool) error {
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

	if jsonOutput {
		out, err := formatJSON(ms.Export())
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	fmt.Printf("Mappings (%d):\n\n", ms.Len())
	unmatched := 0
	for _, m := range ms.Mappings() {
		if m.Value == "" {
			unmatched++
			fmt.Printf("  %-40s (no match)\n", m.Placeholder)
			continue
		}
		fmt.Printf("  %-40s %q\n", m.Placeholder, m.Value)
	}

	if unmatched > 0 {
		fmt.Println()
		fmt.Printf("%d placeholder(s) unmatched.\n", unmatched)
		fmt.Println("Use 'generate --set \"[PLACEHOLDER]=value\"' to fill them manually.")
	}

	return nil
}
