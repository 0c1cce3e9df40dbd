/*
Package cli implements the command-line interface for letter-forge.

Each command is implemented as a separate function that returns a *cobra.Command,
allowing for clean separation and easy testing.
*/
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/casekit/letter-forge/internal/config"
)

// NewInitCmd creates the 'init' command for first-time setup.
//
// Init:
// 1. Writes a default config to ~/.letter-forge.json (unless one exists)
// 2. Creates the data directory for the learning database
// 3. Reports whether a Gemini API key is available
func NewInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration and data directory",
		Long: `Set up letter-forge for first use.

This writes a default configuration to ~/.letter-forge.json, creates the
~/.letter-forge data directory for the learning database, and checks
whether a GEMINI_API_KEY is available for LLM generation.

Without an API key, generation falls back to offline template rendering.`,
		Example: `  # First-time setup
  letter-forge init

  # Overwrite an existing config with defaults
  letter-forge init --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config with defaults")

	return cmd
}

// runInit executes the setup logic.
func runInit(force bool) error {
	configPath, err := config.GetDefaultConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil && !force {
		fmt.Printf("✓ Config already exists: %s\n", configPath)
		fmt.Println("  Use --force to overwrite with defaults.")
	} else {
		cfg := config.NewConfig()
		if err := config.Save(cfg, configPath); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Printf("✓ Wrote default config: %s\n", configPath)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	dataDir := home + "/.letter-forge"
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	fmt.Printf("✓ Data directory: %s\n", dataDir)

	if config.APIKey() == "" {
		fmt.Println("⚠️  No GEMINI_API_KEY found (env or .env file).")
		fmt.Println("   Generation will use offline template rendering until one is set.")
	} else {
		fmt.Println("✓ GEMINI_API_KEY found")
	}

	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  letter-forge extract --template demand.txt")
	fmt.Println("  letter-forge match --template demand.txt --data cases.csv")
	fmt.Println("  letter-forge generate --template demand.txt --data cases.csv")

	return nil
}
