package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/petrotools/deckqc/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchProcessor checks multiple deck files concurrently.
// It uses errgroup to manage goroutines and respect the concurrency limit.
//
// Design decision: Batch handling lives outside Pipeline so the pipeline
// stays focused on a single deck and the batch layer can grow its own
// policies (ordering, callbacks, limits) without touching step execution.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline for each deck.
	// A factory keeps per-deck state from leaking between checks.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of decks checked at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed reports, indexed by input position.
	results []*model.QCReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent checks.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called once per deck to create a fresh
// pipeline instance.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
		results:         make([]*model.QCReport, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch checks multiple deck files concurrently.
// Results keep the input order regardless of completion order.
//
// Returns all reports collected, including ones whose check failed; a
// failed check records its error on the report. The error return only
// reflects batch-level problems such as cancellation.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, decks []string) ([]*model.QCReport, error) {
	bp.logger.Info("starting batch check",
		"total_decks", len(decks),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.QCReport, len(decks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, deckPath := range decks {
		i, deckPath := i, deckPath
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Debug("checking deck",
				"deck", deckPath,
				"index", i+1,
				"total", len(decks),
			)

			report := model.NewQCReport(deckPath)

			pipeline := bp.pipelineFactory()
			err := pipeline.Execute(ctx, report)

			// Store result regardless of error; the report carries the
			// error information for failed checks.
			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("deck check failed",
					"deck", deckPath,
					"error", err,
				)
				// Don't return the error to errgroup: the remaining
				// decks should still be checked.
				return nil
			}

			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch check complete",
		"total_decks", len(decks),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}

// ProcessBatchWithCallback checks multiple decks and calls a callback for
// each completed report. Useful for streaming output as decks finish.
//
// The callback runs on the goroutine that finished the check, so it must
// be safe for concurrent use if it touches shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	decks []string,
	callback func(report *model.QCReport, index int),
) error {
	bp.logger.Info("starting batch check with callback",
		"total_decks", len(decks),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, deckPath := range decks {
		i, deckPath := i, deckPath
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			report := model.NewQCReport(deckPath)
			pipeline := bp.pipelineFactory()
			_ = pipeline.Execute(ctx, report) //nolint:errcheck // Error is stored in report

			callback(report, i)

			return nil
		})
	}

	return g.Wait()
}
