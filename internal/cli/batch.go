package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/casekit/letter-forge/internal/batch"
	"github.com/casekit/letter-forge/internal/config"
	"github.com/casekit/letter-forge/internal/learning"
	"github.com/casekit/letter-forge/internal/record"
)

// NewBatchCmd creates the 'batch' command for generating letters for every
// record in a dataset.
func NewBatchCmd() *cobra.Command {
	var templatePath string
	var dataPath string
	var poolSize int
	var offline bool
	var autoLearn bool

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate letters for every record in a CSV file",
		Long: `Run the generation flow once per CSV row using a bounded worker pool.

Each record is processed independently; a failure on one row does not
abort the batch. Generated letters are saved and every run records a
learning event.`,
		Example: `  letter-forge batch --template demand.txt --data cases.csv
  letter-forge batch -t demand.txt -d cases.csv --pool 5 --auto-learn`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(templatePath, dataPath, poolSize, offline, autoLearn)
		},
	}

	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "Template file (.txt or .html)")
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "CSV file with case records")
	cmd.Flags().IntVarP(&poolSize, "pool", "p", 0, "Worker pool size (default from config)")
	cmd.Flags().BoolVar(&offline, "offline", false, "Render locally instead of calling the LLM")
	cmd.Flags().BoolVar(&autoLearn, "auto-learn", false, "Fill empty values from saved patterns")

	return cmd
}

// runBatch generates one letter per dataset record.
func runBatch(templatePath, dataPath string, poolSize int, offline, autoLearn bool) error {
	cfg := config.LoadOrDefault()
	if offline {
		cfg.Settings.Offline = true
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if poolSize <= 0 {
		poolSize = cfg.Settings.PoolSize
	}

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
	if dataset.Count() == 0 {
		return fmt.Errorf("no records in %s", dataPath)
	}

	store := openStorage()
	defer store.Close()
	engine := learning.NewEngine(store)

	// Budget scales with the dataset; each record still has the single-run
	// timeout available on average.
	timeout := time.Duration(cfg.Settings.TimeoutSeconds) * time.Second * time.Duration(dataset.Count())
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}
	if gen == nil {
		fmt.Println("Rendering offline (no LLM call).")
	}

	fmt.Printf("Generating %d letter(s) with %d worker(s)...\n\n", dataset.Count(), poolSize)
	start := time.Now()

	pool := batch.NewPool(poolSize, store, engine, gen, !cfg.LearningActive())
	results := pool.Run(ctx, text, dataset, autoLearn)

	succeeded := 0
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("  ✗ row %d: %v\n", r.Index, r.Err)
			continue
		}
		succeeded++
		fmt.Printf("  ✓ row %d: %s (id: %s)\n", r.Index, r.Result.PlaintiffName, r.Result.LetterID)
	}

	fmt.Println()
	fmt.Printf("Done: %d/%d succeeded in %v\n", succeeded, len(results), time.Since(start).Round(time.Millisecond))

	if succeeded < len(results) {
		return fmt.Errorf("%d record(s) failed", len(results)-succeeded)
	}
	return nil
}
