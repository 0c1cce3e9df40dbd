package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/casekit/letter-forge/internal/learning"
)

// NewSuggestCmd creates the 'suggest' command for improvement suggestions.
func NewSuggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Show improvement suggestions from learning history",
		Long: `Analyze the learning history and suggest concrete improvements.

Suggestions appear when letters have received negative feedback or when
a template pattern's success rate has dropped below 50%.`,
		Example: `  letter-forge suggest`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest()
		},
	}

	return cmd
}

// runSuggest prints improvement suggestions.
func runSuggest() error {
	store := openStorage()
	defer store.Close()
	engine := learning.NewEngine(store)

	suggestions, err := engine.ImprovementSuggestions()
	if err != nil {
		return fmt.Errorf("failed to compute suggestions: %w", err)
	}

	if len(suggestions) == 0 {
		fmt.Println("No suggestions. Generation history looks healthy.")
		return nil
	}

	fmt.Printf("Improvement suggestions (%d):\n\n", len(suggestions))
	for _, s := range suggestions {
		fmt.Printf("  • %s\n", s)
	}

	return nil
}
