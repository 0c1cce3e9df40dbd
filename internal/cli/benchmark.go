package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/casekit/letter-forge/internal/benchmark"
	"github.com/casekit/letter-forge/internal/learning"
	"github.com/casekit/letter-forge/internal/mapping"
	"github.com/casekit/letter-forge/internal/record"
)

// NewBenchmarkCmd creates the 'benchmark' command for pipeline timing.
func NewBenchmarkCmd() *cobra.Command {
	var templatePath string
	var dataPath string
	var iterations int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Measure extraction, matching, and rendering performance",
		Long: `Time the local pipeline stages for a template/dataset pair:

  1. Extraction: placeholder scanning of the template
  2. Matching:   synonym and fuzzy resolution against each record
  3. Rendering:  offline substitution of resolved values

Also estimates how many prompt tokens the learning enrichment adds on
top of the raw template.`,
		Example: `  letter-forge benchmark --template demand.txt --data cases.csv
  letter-forge benchmark -t demand.txt -d cases.csv --iterations 1000 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmarkCmd(templatePath, dataPath, iterations, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "Template file (.txt or .html)")
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "CSV file with case records")
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 100, "Iterations per stage")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// runBenchmarkCmd executes the pipeline benchmark.
func runBenchmarkCmd(templatePath, dataPath string, iterations int, jsonOutput bool) error {
	text, err := loadTemplate(templatePath)
	if err != nil {
		return err
	}

	if dataPath == "" {
		return fmt.Errorf("no data file given (use --data)")
	}
	dataset, err := record.ImportCSV(dataPath)
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}

	store := openStorage()
	defer store.Close()
	engine := learning.NewEngine(store)

	// Build the enriched instructions once for the overhead estimate.
	instructions := ""
	if rec, recErr := dataset.Record(0); recErr == nil {
		if ms, buildErr := mapping.Build(text, rec, store); buildErr == nil {
			if built, instErr := engine.BuildInstructionsFromStore(text, ms.Export()); instErr == nil {
				instructions = built
			}
		}
	}

	result, err := benchmark.Run(text, dataset, iterations, instructions)
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}

	if jsonOutput {
		out, err := formatJSON(result)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	fmt.Println()
	fmt.Print(benchmark.FormatResult(result))
	fmt.Println()

	return nil
}
