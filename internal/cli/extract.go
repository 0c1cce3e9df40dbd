package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/casekit/letter-forge/internal/template"
)

// NewExtractCmd creates the 'extract' command for listing template placeholders.
func NewExtractCmd() *cobra.Command {
	var templatePath string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract placeholders from a template",
		Long: `Scan a template for [BRACKETED] placeholders and list them with their
inferred categories (personal, employment, financial, dates, other).

Placeholders are reported in order of first appearance; repeats are
collapsed to one entry.`,
		Example: `  letter-forge extract --template demand.txt
  letter-forge extract --template demand.html --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(templatePath, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "Template file (.txt or .html)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// runExtract lists the placeholders found in the template.
func runExtract(templatePath string, jsonOutput bool) error {
	text, err := loadTemplate(templatePath)
	if err != nil {
		return err
	}

	placeholders := template.Extract(text)

	if jsonOutput {
		type entry struct {
			Placeholder string `json:"placeholder"`
			Category    string `json:"category"`
		}
		entries := make([]entry, len(placeholders))
		for i, p := range placeholders {
			entries[i] = entry{Placeholder: p.Raw, Category: string(p.Category)}
		}
		out, err := formatJSON(entries)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	if len(placeholders) == 0 {
		fmt.Println("No placeholders found.")
		fmt.Println("Placeholders use [BRACKETED] syntax, e.g. [CLIENT NAME].")
		return nil
	}

	fmt.Printf("Placeholders (%d):\n\n", len(placeholders))
	for _, p := range placeholders {
		fmt.Printf("  %-40s %s\n", p.Raw, p.Category)
	}

	return nil
}
