package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/casekit/letter-forge/internal/version"
)

// NewUpdateCmd creates the 'update' command for self-updating the binary.
func NewUpdateCmd() *cobra.Command {
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update letter-forge to the latest release",
		Long: `Check GitHub for a newer letter-forge release and install it in place.
The downloaded binary is verified against the release's SHA256 checksum
and the previous binary is kept as a .bak backup.`,
		Example: `  letter-forge update
  letter-forge update --check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(checkOnly)
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only report whether an update is available")

	return cmd
}

// runUpdate checks the release API directly (no daily cache; this command
// is an explicit user request) and optionally installs the new binary.
func runUpdate(checkOnly bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	current := strings.TrimPrefix(version.Version, "v")

	latest, err := version.LatestVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}

	if latest == "" || latest == current {
		fmt.Printf("letter-forge %s is up to date.\n", version.Version)
		return nil
	}

	fmt.Printf("Update available: %s (current: %s)\n", latest, version.Version)
	if checkOnly {
		return nil
	}

	fmt.Println("Downloading...")
	tempPath, err := version.DownloadUpdate(ctx, latest)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	if err := version.ApplyUpdate(tempPath); err != nil {
		return fmt.Errorf("failed to install update: %w", err)
	}

	fmt.Printf("✓ Updated to %s\n", latest)
	return nil
}
