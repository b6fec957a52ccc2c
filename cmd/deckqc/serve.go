package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/petrotools/deckqc/internal/config"
	"github.com/petrotools/deckqc/internal/log"
	"github.com/petrotools/deckqc/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the deck QC web server",
		Long: `Serve starts an HTTP server with a web UI for deck QC.

The server exposes:
  POST /api/qc   - upload a deck file and receive the QC report
  POST /api/ask  - ask the advisor a question (requires LLM configuration)
  GET  /healthz  - liveness probe
  GET  /         - upload form

Examples:
  # Serve on the default address
  deckqc serve

  # Serve on a custom address
  deckqc serve --addr :9090

  # Serve with LLM-backed plans and answers
  deckqc serve --llm-plan -c myconfig.yaml`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("addr", "a", config.DefaultServerAddr,
		"Address to listen on")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .deckqc in current or home directory)")
	cmd.Flags().Bool("llm-plan", false,
		"Generate remediation plans with the configured LLM")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ServerAddr, err = cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg.LLMPlan, err = cmd.Flags().GetBool("llm-plan")
	if err != nil {
		return err
	}

	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cfg.File, err = config.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, stopping server...")
		cancel()
	}()

	return runServe(ctx, cfg, logger)
}

// runServe builds the collaborators and runs the HTTP server until the
// context is cancelled.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	adv, err := buildAdvisor(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// The advisor answers questions only when an LLM client is configured.
	// Without one the server keeps /api/qc working and reports /api/ask as
	// unavailable.
	var asker server.Asker
	if cfg.LLMPlan {
		asker = adv
	}

	srv, err := server.New(cfg, adv, asker, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("starting server", "addr", cfg.ServerAddr)
	return srv.ListenAndServe(ctx)
}
