package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/casekit/letter-forge/internal/config"
	"github.com/casekit/letter-forge/internal/search"
)

// NewLettersCmd creates the 'letters' command group for saved letters.
func NewLettersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "letters",
		Short: "Manage saved letters",
		Long: `Generated letters are saved to the local database. These commands list,
show, search, export, and delete them.`,
	}

	cmd.AddCommand(newLettersListCmd())
	cmd.AddCommand(newLettersShowCmd())
	cmd.AddCommand(newLettersSearchCmd())
	cmd.AddCommand(newLettersDeleteCmd())
	cmd.AddCommand(newLettersExportCmd())

	return cmd
}

// newLettersListCmd lists saved letters, newest first.
func newLettersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved letters (newest first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStorage()
			defer store.Close()

			letters, err := store.ListLetters()
			if err != nil {
				return fmt.Errorf("failed to list letters: %w", err)
			}

			if len(letters) == 0 {
				fmt.Println("No saved letters. Run 'letter-forge generate' first.")
				return nil
			}

			fmt.Printf("Saved letters (%d):\n\n", len(letters))
			for _, l := range letters {
				edited := ""
				if l.Edited {
					edited = " (edited)"
				}
				fmt.Printf("  %s  %-24s %s%s\n", l.ID, l.PlaintiffName, l.CreatedAt.Format("2006-01-02 15:04"), edited)
			}
			return nil
		},
	}
}

// newLettersShowCmd prints one letter's content.
func newLettersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <letter-id>",
		Short: "Print a saved letter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStorage()
			defer store.Close()

			letter, err := store.GetLetter(args[0])
			if err != nil {
				return fmt.Errorf("failed to load letter: %w", err)
			}
			if letter == nil {
				return fmt.Errorf("letter %q not found", args[0])
			}

			fmt.Println(letter.Content)
			return nil
		},
	}
}

// newLettersSearchCmd searches saved letters by name or content.
func newLettersSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search saved letters by plaintiff name or content",
		Long: `Search saved letters with keyword ranking, blended with semantic
similarity when a GEMINI_API_KEY is available for embeddings.`,
		Example: `  letter-forge letters search "Jane Doe"
  letter-forge letters search "unpaid overtime wages" --limit 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLettersSearch(args[0], limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Maximum results")
	return cmd
}

// runLettersSearch indexes saved letters and runs a hybrid search.
func runLettersSearch(query string, limit int) error {
	store := openStorage()
	defer store.Close()

	ctx := context.Background()

	var embedder search.Embedder
	if apiKey := config.APIKey(); apiKey != "" {
		if emb, err := search.NewGenAIEmbedder(ctx, apiKey); err == nil {
			embedder = emb
		}
	}

	indexer, err := search.NewIndexer(store, embedder)
	if err != nil {
		return fmt.Errorf("failed to build search index: %w", err)
	}
	defer indexer.Close()

	results, err := indexer.SearchHybrid(ctx, query, limit, search.DefaultFusionConfig)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Printf("No letters match %q.\n", query)
		return nil
	}

	fmt.Printf("Results (%d):\n\n", len(results))
	for _, r := range results {
		fmt.Printf("  %s  %s\n", r.LetterID, r.PlaintiffName)
		fmt.Printf("    %s\n\n", r.Snippet)
	}
	return nil
}

// newLettersDeleteCmd removes a saved letter.
func newLettersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <letter-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved letter",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStorage()
			defer store.Close()

			letter, err := store.GetLetter(args[0])
			if err != nil {
				return fmt.Errorf("failed to load letter: %w", err)
			}
			if letter == nil {
				return fmt.Errorf("letter %q not found", args[0])
			}

			if err := store.DeleteLetter(args[0]); err != nil {
				return fmt.Errorf("failed to delete letter: %w", err)
			}

			fmt.Printf("✓ Deleted letter %s (%s)\n", letter.ID, letter.PlaintiffName)
			return nil
		},
	}
}

// newLettersExportCmd writes a letter to a file.
func newLettersExportCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export <letter-id>",
		Short: "Export a saved letter to a text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := openStorage()
			defer store.Close()

			letter, err := store.GetLetter(args[0])
			if err != nil {
				return fmt.Errorf("failed to load letter: %w", err)
			}
			if letter == nil {
				return fmt.Errorf("letter %q not found", args[0])
			}

			path := outputPath
			if path == "" {
				path = letter.ID + ".txt"
			}

			if err := os.WriteFile(path, []byte(letter.Content), 0644); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}

			fmt.Printf("✓ Exported to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: <letter-id>.txt)")
	return cmd
}
