package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/petrotools/deckqc/internal/advisor"
	"github.com/petrotools/deckqc/internal/config"
	"github.com/petrotools/deckqc/internal/database"
	"github.com/petrotools/deckqc/internal/knowledge"
	"github.com/petrotools/deckqc/internal/log"
	"github.com/petrotools/deckqc/internal/model"
	"github.com/petrotools/deckqc/internal/pipeline"
	"github.com/petrotools/deckqc/internal/report"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [deck-file...]",
		Short: "Run QC checks on simulation input decks",
		Long: `Check runs quality-control rules over one or more input decks.

Each deck is split into keyword sections and evaluated for:
- Structural problems (missing END keyword, well controls without WELSPECS)
- Well name mismatches between WELSPECS and control sections
- Unrealistic initial pressures in the SOLUTION section
- Missing PVT tables (PVTO, PVTW, PVTG) in PROPS
- COMPDAT entries without an OPEN/CLOSED status

Examples:
  # Check a single deck
  deckqc check field.DATA

  # Check several decks concurrently
  deckqc check north.DATA south.DATA east.DATA

  # Output a JSON report
  deckqc check --json field.DATA

  # Write a Markdown report to a file
  deckqc check --markdown -o report.md field.DATA

  # Use a custom configuration file
  deckqc check -c myconfig.yaml field.DATA

Configuration file (.deckqc) example:
  keywords:
    - RUNSPEC
    - GRID
  llm:
    model: gpt-4o-mini
    api_key_env: OPENAI_API_KEY`,
		Args: cobra.ArbitraryArgs,
		RunE: runCheckCmd,
	}

	// Check behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each deck check")
	cmd.Flags().StringSliceP("keywords", "k", nil,
		"Override the recognized section keywords (comma-separated)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent checks")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .deckqc in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-history", false,
		"Do not save results to the history database")

	// Advisor flags
	cmd.Flags().Bool("llm-plan", false,
		"Generate the remediation plan with the configured LLM")

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Handle interrupt signals for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCheck(ctx, cfg, logger)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Verbose = getVerboseFlag(cmd)

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Keywords, err = cmd.Flags().GetStringSlice("keywords")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file, a missing file is an
	// error; an implicit missing file is not.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.File, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noHistory
	cfg.DBDir = config.XDGDataDir()

	cfg.LLMPlan, err = cmd.Flags().GetBool("llm-plan")
	if err != nil {
		return nil, err
	}

	// Positional arguments are deck file paths
	cfg.Decks = args

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildAdvisor assembles the planner from config: LLM-backed when
// --llm-plan is set, heuristic otherwise. The knowledge store is indexed
// from the configured documents when present.
func buildAdvisor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*advisor.Advisor, error) {
	opts := []advisor.AdvisorOption{advisor.WithAdvisorLogger(logger)}

	if cfg.LLMPlan {
		var settings *config.LLMSettings
		if cfg.File != nil {
			settings = cfg.File.LLM
		}
		client, err := advisor.NewOpenAIClientFromConfig(settings)
		if err != nil {
			return nil, fmt.Errorf("llm setup failed: %w", err)
		}
		opts = append(opts, advisor.WithLLMClient(client))
	}

	if cfg.File != nil && len(cfg.File.Knowledge) > 0 {
		store, err := openKnowledgeStore(ctx, cfg, logger)
		if err != nil {
			logger.Warn("knowledge store unavailable", "error", err)
		} else {
			opts = append(opts, advisor.WithRetriever(store))
		}
	}

	return advisor.New(opts...), nil
}

// openKnowledgeStore opens the knowledge index and (re)indexes the
// configured documents.
func openKnowledgeStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*knowledge.Store, error) {
	var storeOpts []knowledge.StoreOption
	if llm := cfg.File.LLM; llm != nil && llm.EmbeddingModel != "" && llm.APIKey() != "" {
		embedder, err := knowledge.NewOpenAIEmbedder(llm.EmbeddingModel, llm.APIKey(), llm.BaseURL)
		if err == nil {
			storeOpts = append(storeOpts, knowledge.WithEmbedder(embedder))
		}
	}

	store, err := knowledge.OpenStore(filepath.Join(config.XDGDataDir(), "knowledge"), storeOpts...)
	if err != nil {
		return nil, err
	}

	for _, doc := range cfg.File.Knowledge {
		if err := store.AddFile(ctx, doc.Name, doc.Path); err != nil {
			logger.Warn("failed to index knowledge document", "name", doc.Name, "error", err)
		}
	}

	return store, nil
}

// runCheck executes the checks.
func runCheck(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting check",
		"decks", cfg.Decks,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.HistoryDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Debug("database opened", "dir", cfg.DBDir)
	}

	planner, err := buildAdvisor(ctx, cfg, logger)
	if err != nil {
		return err
	}

	pipelineFactory := func() *pipeline.Pipeline {
		p := pipeline.New(
			pipeline.WithLogger(logger),
			pipeline.WithContinueOnError(true),
		)
		p.AddSteps(
			pipeline.NewExtractStep(
				pipeline.WithKeywords(cfg.EffectiveKeywords()),
				pipeline.WithExtractLogger(logger),
			),
			pipeline.NewQCStep(logger),
			pipeline.NewPlanStep(planner, logger),
		)
		return p
	}

	// Concurrent checking for multiple decks
	if len(cfg.Decks) > 1 && cfg.BatchSize > 1 {
		return runBatchCheck(ctx, cfg, db, pipelineFactory, logger)
	}

	return runSequentialCheck(ctx, cfg, db, pipelineFactory, logger)
}

// runSequentialCheck checks decks one at a time.
func runSequentialCheck(ctx context.Context, cfg *config.Config, db *database.HistoryDB, factory func() *pipeline.Pipeline, logger *slog.Logger) error {
	var failed bool
	for _, deckPath := range cfg.Decks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		qcReport := model.NewQCReport(deckPath)

		startTime := time.Now()
		if err := factory().Execute(ctx, qcReport); err != nil {
			logger.Error("check failed", "deck", deckPath, "error", err)
		}
		logger.Debug("check finished",
			"deck", deckPath,
			"elapsed", time.Since(startTime).Round(time.Millisecond),
		)

		if err := outputReport(cfg, qcReport); err != nil {
			logger.Error("report failed", "deck", deckPath, "error", err)
		}

		if err := saveReport(ctx, db, qcReport, logger); err != nil {
			logger.Error("failed to save report", "deck", deckPath, "error", err)
		}

		// QC issues are data, not failures; only a check that could not
		// run (load error, step failure) affects the exit code.
		if qcReport.Errored() {
			failed = true
		}
	}

	if failed {
		return errors.New("one or more decks could not be checked")
	}
	return nil
}

// runBatchCheck checks multiple decks concurrently using BatchProcessor.
func runBatchCheck(ctx context.Context, cfg *config.Config, db *database.HistoryDB, factory func() *pipeline.Pipeline, logger *slog.Logger) error {
	fmt.Printf("Checking %d decks (concurrency: %d)...\n\n", len(cfg.Decks), cfg.BatchSize)

	bp := pipeline.NewBatchProcessor(
		factory,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Stream results through a callback as decks finish
	var mu sync.Mutex
	var failed bool
	err := bp.ProcessBatchWithCallback(ctx, cfg.Decks, func(qcReport *model.QCReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] %s\n", index+1, len(cfg.Decks), qcReport.Deck)

		if err := outputReport(cfg, qcReport); err != nil {
			logger.Error("report failed", "deck", qcReport.Deck, "error", err)
		}

		if err := saveReport(ctx, db, qcReport, logger); err != nil {
			logger.Error("failed to save report", "deck", qcReport.Deck, "error", err)
		}

		if qcReport.Errored() {
			failed = true
		}
	})
	if err != nil {
		return err
	}

	if failed {
		return errors.New("one or more decks could not be checked")
	}
	return nil
}

// outputReport outputs the QC report in the requested format.
func outputReport(cfg *config.Config, qcReport *model.QCReport) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := w.Write(qcReport)
	return err
}

// saveReport saves the QC report to the history database.
// A nil db makes this a no-op.
func saveReport(ctx context.Context, db *database.HistoryDB, qcReport *model.QCReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	if err := db.SaveReport(ctx, qcReport); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	logger.Debug("report saved to history", "deck", qcReport.Deck)
	return nil
}
