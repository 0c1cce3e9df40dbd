/*
Package config provides validation helpers for letter-forge configuration.

This file contains shared validation functions used by CLI commands
to detect and prevent configuration issues before they reach the
generation pipeline.
*/
package config

import (
	"fmt"
	"os"
)

// Validate checks a config for values that would break the pipeline.
// Returns an error describing the first problem found.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if cfg.Settings.Model == "" {
		return fmt.Errorf("settings.model: empty model name")
	}

	if cfg.Settings.PoolSize < 1 {
		return fmt.Errorf("settings.poolSize: must be at least 1, got %d", cfg.Settings.PoolSize)
	}

	if cfg.Settings.TimeoutSeconds < 1 {
		return fmt.Errorf("settings.timeoutSeconds: must be at least 1, got %d", cfg.Settings.TimeoutSeconds)
	}

	if cfg.RecordIndex < 0 {
		return fmt.Errorf("recordIndex: must be non-negative, got %d", cfg.RecordIndex)
	}

	return nil
}

// ValidatePaths checks that the configured template and data files exist
// and are readable. Empty paths are allowed (they can be supplied as flags).
func ValidatePaths(cfg *Config) error {
	if cfg.TemplatePath != "" {
		if _, err := os.Stat(cfg.TemplatePath); err != nil {
			return fmt.Errorf("templatePath: %w", err)
		}
	}
	if cfg.DataPath != "" {
		if _, err := os.Stat(cfg.DataPath); err != nil {
			return fmt.Errorf("dataPath: %w", err)
		}
	}
	return nil
}
