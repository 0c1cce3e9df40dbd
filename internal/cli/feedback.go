package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/casekit/letter-forge/internal/learning"
	"github.com/casekit/letter-forge/internal/storage"
)

// NewFeedbackCmd creates the 'feedback' command for rating generated letters.
func NewFeedbackCmd() *cobra.Command {
	var templatePath string
	var letterID string
	var notes string

	cmd := &cobra.Command{
		Use:       "feedback [positive|negative]",
		Short:     "Record feedback on a generated letter",
		ValidArgs: []string{storage.FeedbackPositive, storage.FeedbackNegative},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Long: `Rate a previously generated letter. Feedback feeds the learning
engine: positive ratings raise the success rate of the template's
pattern, negative ratings weigh down the running average so later
positives recover it more slowly, and trigger improvement suggestions.

The template used for generation is required so feedback lands on the
right pattern. Without --letter, the most recently saved letter is rated.`,
		Example: `  letter-forge feedback positive --template demand.txt
  letter-forge feedback negative -t demand.txt --letter 4f1c... \
      --notes "Wrong salutation, too informal"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeedback(args[0], templatePath, letterID, notes)
		},
	}

	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "Template file used for the generation")
	cmd.Flags().StringVarP(&letterID, "letter", "l", "", "Letter ID (default: most recent letter)")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Improvement notes")

	return cmd
}

// runFeedback records a feedback event for a saved letter.
func runFeedback(feedback, templatePath, letterID, notes string) error {
	text, err := loadTemplate(templatePath)
	if err != nil {
		return err
	}

	store := openStorage()
	defer store.Close()
	engine := learning.NewEngine(store)

	content, err := resolveLetterContent(store, letterID)
	if err != nil {
		return err
	}

	if err := engine.RecordFeedback(text, content, feedback, notes); err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}

	fmt.Printf("✓ Recorded %s feedback\n", feedback)
	if feedback == storage.FeedbackNegative {
		fmt.Println("  Run 'letter-forge suggest' to see improvement suggestions.")
	}

	return nil
}

// resolveLetterContent loads the rated letter's content by ID, falling back
// to the most recently saved letter.
func resolveLetterContent(store storage.Storage, letterID string) (string, error) {
	if letterID != "" {
		letter, err := store.GetLetter(letterID)
		if err != nil {
			return "", fmt.Errorf("failed to load letter: %w", err)
		}
		if letter == nil {
			return "", fmt.Errorf("letter %q not found", letterID)
		}
		return letter.Content, nil
	}

	letters, err := store.ListLetters()
	if err != nil {
		return "", fmt.Errorf("failed to list letters: %w", err)
	}
	if len(letters) == 0 {
		return "", fmt.Errorf("no saved letters; generate one first")
	}
	return letters[0].Content, nil
}
