package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/joho/godotenv"
)

// apiKeyEnvVar names the environment variable holding the Gemini API key.
const apiKeyEnvVar = "GEMINI_API_KEY"

// LoadFrom reads config with enhanced error handling
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &ConfigNotFoundError{
				Path: path,
				Hint: "Run 'letter-forge init' to create configuration",
			}
		}
		return nil, fmt.Errorf("failed to access config: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, &PermissionError{
				Path:    path,
				Op:      "read",
				Fix:     getReadPermissionFix(path),
				Details: getPermissionDetails(path),
			}
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &InvalidConfigError{
			Path:    path,
			Message: fmt.Sprintf("JSON parse error: %v", err),
			Hint:    "Restore from .bak file if available",
		}
	}

	applySettingsDefaults(&cfg)

	return &cfg, nil
}

// applySettingsDefaults fills missing settings from the defaults. A config
// that omits a key (or the whole settings block) must behave like a fresh
// install, not load zero values that break generation downstream.
func applySettingsDefaults(cfg *Config) {
	defaults := NewConfig().Settings
	if cfg.Settings == nil {
		cfg.Settings = defaults
		return
	}
	if cfg.Settings.Model == "" {
		cfg.Settings.Model = defaults.Model
	}
	if cfg.Settings.PoolSize == 0 {
		cfg.Settings.PoolSize = defaults.PoolSize
	}
	if cfg.Settings.TimeoutSeconds == 0 {
		cfg.Settings.TimeoutSeconds = defaults.TimeoutSeconds
	}
}

// APIKey resolves the Gemini API key from the environment. A .env file in
// the working directory is loaded first so local setups need no shell
// exports; a missing .env is not an error.
func APIKey() string {
	_ = godotenv.Load()
	return os.Getenv(apiKeyEnvVar)
}

// getReadPermissionFix returns platform-specific fix command
func getReadPermissionFix(path string) string {
	switch runtime.GOOS {
	case "windows":
		return fmt.Sprintf("Right-click %s → Properties → Security → Edit permissions", path)
	default: // unix-like
		return fmt.Sprintf("Run: chmod 644 %s", path)
	}
}

// getPermissionDetails checks file ownership and permissions
func getPermissionDetails(path string) string {
	if runtime.GOOS == "windows" {
		return "" // Not applicable on Windows
	}

	info, err := os.Stat(path)
	if err != nil {
		return ""
	}

	return fmt.Sprintf("Current permissions: %04o", info.Mode().Perm())
}
