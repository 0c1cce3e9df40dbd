package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/casekit/letter-forge/internal/config"
	"github.com/casekit/letter-forge/internal/learning"
	"github.com/casekit/letter-forge/internal/mcp"
	"github.com/casekit/letter-forge/internal/search"
	"github.com/casekit/letter-forge/internal/version"
)

// NewServeCmd creates the 'serve' command for running the MCP server.
//
// This exposes the letter workflow to AI clients via stdio transport:
// letter_extract, letter_match, letter_map_set, letter_generate,
// letter_feedback, letter_search, letter_suggestions
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio transport)",
		Long: `Start the letter-forge MCP server using stdio transport.

This server exposes 7 tools to AI clients:
  • letter_extract     - Extract placeholders from a template
  • letter_match       - Match placeholders against a case record
  • letter_map_set     - Override a placeholder value in the session
  • letter_generate    - Generate a letter from the session mapping
  • letter_feedback    - Record feedback on the last letter
  • letter_search      - Search previously generated letters
  • letter_suggestions - Improvement suggestions from learning history`,
		Example: `  # Run directly
  letter-forge serve

  # Add to Claude Code
  claude mcp add letter-forge -- letter-forge serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	return cmd
}

// runServe starts the MCP server with stdio transport and signal handling.
// Implements graceful shutdown on SIGINT/SIGTERM/SIGQUIT.
func runServe() error {
	cfg := config.LoadOrDefault()
	if err := config.Validate(cfg); err != nil {
		return err
	}

	store := openStorage()
	defer store.Close()
	engine := learning.NewEngine(store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		log.Printf("Warning: LLM generator unavailable, using offline rendering: %v", err)
	}

	var embedder search.Embedder
	if apiKey := config.APIKey(); apiKey != "" {
		if emb, embErr := search.NewGenAIEmbedder(ctx, apiKey); embErr == nil {
			embedder = emb
		} else {
			log.Printf("Warning: embeddings unavailable, search is keyword-only: %v", embErr)
		}
	}

	indexer, err := search.NewIndexer(store, embedder)
	if err != nil {
		log.Printf("Warning: letter search unavailable: %v", err)
		indexer = nil
	} else {
		defer indexer.Close()
	}

	server := mcp.NewServer(cfg, store, engine, gen, indexer)

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	go checkForUpdates(ctx)

	// Run server in separate goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run()
	}()

	// Wait for either signal or server error
	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v, shutting down gracefully...", sig)
		return nil

	case err := <-errChan:
		// Server.Run() returned (stdin closed or error)
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}

// checkForUpdates checks for new version in background (context-aware).
func checkForUpdates(parentCtx context.Context) {
	select {
	case <-parentCtx.Done():
		return
	default:
	}

	ctx, cancel := context.WithTimeout(parentCtx, 10*time.Second)
	defer cancel()

	latest, err := version.CheckUpdate(ctx)
	if err != nil {
		log.Printf("Update check failed: %v", err)
		return
	}

	if latest != "" {
		log.Printf("Update available: %s (current: %s)", latest, version.Version)
		log.Printf("Downloading in background...")

		tempPath, err := version.DownloadUpdate(ctx, latest)
		if err != nil {
			log.Printf("Download failed: %v", err)
			return
		}

		log.Printf("Update downloaded to %s. Run 'letter-forge update' to install.", tempPath)
	}
}
