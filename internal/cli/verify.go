package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/casekit/letter-forge/internal/config"
	"github.com/casekit/letter-forge/internal/storage"
)

// NewVerifyCmd creates the 'verify' command for verifying configuration.
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify configuration, storage, and API key",
		Long: `Verify that the configuration is valid, the learning database can be
opened, and an API key is available for LLM generation.`,
		Example: `  letter-forge verify`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify()
		},
	}

	return cmd
}

// runVerify validates the configuration and environment.
func runVerify() error {
	configPath, err := config.GetDefaultConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("✗ Config file: %v\n", err)
		fmt.Println("  Using defaults. Run 'letter-forge init' to create one.")
		cfg = config.NewConfig()
	} else {
		fmt.Printf("✓ Config file: %s\n", configPath)
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Printf("✗ Config values: %v\n", err)
	} else {
		fmt.Printf("✓ Config values: model=%s pool=%d timeout=%ds\n",
			cfg.Settings.Model, cfg.Settings.PoolSize, cfg.Settings.TimeoutSeconds)
	}

	if err := config.ValidatePaths(cfg); err != nil {
		fmt.Printf("✗ Configured paths: %v\n", err)
	} else if cfg.TemplatePath != "" || cfg.DataPath != "" {
		fmt.Println("✓ Configured paths exist")
	}

	store := storage.NewStorage()
	if err := store.Init(); err != nil {
		fmt.Printf("✗ Storage: %v\n", err)
	} else {
		count, countErr := store.CountEvents()
		if countErr != nil {
			fmt.Printf("✗ Storage: opened but unreadable: %v\n", countErr)
		} else {
			fmt.Printf("✓ Storage: %d learning event(s)\n", count)
		}
	}
	defer store.Close()

	if config.APIKey() == "" {
		fmt.Println("✗ GEMINI_API_KEY: not found (generation will render offline)")
	} else {
		fmt.Println("✓ GEMINI_API_KEY: found")
	}

	return nil
}
