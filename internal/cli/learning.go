/*
Package cli provides commands for managing the learning system.

These commands allow users to view learning statistics, export event
history, and clear learned data.
*/
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/casekit/letter-forge/internal/learning"
)

// NewLearningCmd creates the learning command group.
func NewLearningCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learning",
		Short: "Manage the learning system (event log and pattern tracking)",
		Long: `The learning system records every generation as an event and maintains
per-template patterns with feedback-driven success rates. Patterns with
high success rates enrich the instructions sent to the LLM.

All data is stored locally in ~/.letter-forge/letterforge.db.

Commands:
  status  Show learning statistics
  export  Export event history as JSON
  clear   Delete learned data (keeps saved letters)`,
	}

	cmd.AddCommand(newLearningStatusCmd())
	cmd.AddCommand(newLearningExportCmd())
	cmd.AddCommand(newLearningClearCmd())

	return cmd
}

// newLearningStatusCmd shows learning statistics.
func newLearningStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show learning statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStorage()
			defer store.Close()
			engine := learning.NewEngine(store)

			stats, err := engine.Stats()
			if err != nil {
				return fmt.Errorf("failed to read learning data: %w", err)
			}

			fmt.Println("Learning System Status")
			fmt.Println("======================")
			fmt.Printf("Total generations: %d\n", stats.TotalGenerations)
			fmt.Printf("Positive feedback: %d\n", stats.PositiveCount)
			fmt.Printf("Negative feedback: %d\n", stats.NegativeCount)
			fmt.Printf("Template patterns: %d\n", stats.PatternCount)
			fmt.Println()
			fmt.Println("Note: Run 'letter-forge learning export' to view event history")

			return nil
		},
	}
}

// newLearningExportCmd exports event history as JSON.
func newLearningExportCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export event history as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStorage()
			defer store.Close()

			events, err := store.GetEvents()
			if err != nil {
				return fmt.Errorf("failed to read events: %w", err)
			}
			patterns, err := store.GetAllPatterns()
			if err != nil {
				return fmt.Errorf("failed to read patterns: %w", err)
			}

			out, err := formatJSON(map[string]interface{}{
				"events":   events,
				"patterns": patterns,
			})
			if err != nil {
				return fmt.Errorf("failed to encode export: %w", err)
			}

			if outputFile != "" {
				if err := os.WriteFile(outputFile, []byte(out), 0644); err != nil {
					return fmt.Errorf("failed to write export: %w", err)
				}
				fmt.Printf("✓ Exported %d event(s) to %s\n", len(events), outputFile)
				return nil
			}

			fmt.Println(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

// newLearningClearCmd deletes all learning data.
func newLearningClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete learned data (saved letters are kept)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Print("This will delete all events, patterns, and saved mappings. Continue? (y/N): ")
				var response string
				fmt.Scanln(&response)

				if response != "y" && response != "Y" {
					fmt.Println("Cancelled")
					return nil
				}
			}

			store := openStorage()
			defer store.Close()

			if err := store.Clear(); err != nil {
				return fmt.Errorf("failed to clear learning data: %w", err)
			}

			fmt.Println("Learning data cleared successfully")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompt")
	return cmd
}
