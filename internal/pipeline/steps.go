package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/petrotools/deckqc/internal/deck"
	"github.com/petrotools/deckqc/internal/model"
	"github.com/petrotools/deckqc/internal/qc"
)

// ExtractStep loads the deck file (unless content is already present on
// the report) and splits it into keyword sections.
//
// Design decision: Loading and extraction share a step because neither is
// useful without the other and both must complete before any rule runs.
// The web UI preloads Content from the upload, so the step only touches
// the filesystem when Content is empty.
type ExtractStep struct {
	// keywords is the section vocabulary; nil means the standard set.
	keywords []string

	// logger for structured logging.
	logger *slog.Logger
}

// ExtractStepOption configures an ExtractStep.
type ExtractStepOption func(*ExtractStep)

// WithKeywords sets a custom section vocabulary.
func WithKeywords(keywords []string) ExtractStepOption {
	return func(s *ExtractStep) {
		s.keywords = keywords
	}
}

// WithExtractLogger sets a custom logger for the extract step.
func WithExtractLogger(logger *slog.Logger) ExtractStepOption {
	return func(s *ExtractStep) {
		s.logger = logger
	}
}

// NewExtractStep creates a new extraction step.
func NewExtractStep(opts ...ExtractStepOption) *ExtractStep {
	s := &ExtractStep{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do loads and segments the deck, filling the report's section data.
func (s *ExtractStep) Do(_ context.Context, report *model.QCReport) error {
	if report.Content == "" {
		content, err := deck.Load(report.Deck)
		if err != nil {
			return fmt.Errorf("extract step: %w", err)
		}
		report.Content = content
	}

	sections := deck.Extract(report.Content, s.keywords)
	report.Sections = sections
	report.SectionNames = sections.Keywords()
	report.SectionLines = deck.Summary(sections)

	pvt := deck.ExtractPVTBlocks(sections.Get("PROPS"))
	tables := make([]string, 0, len(pvt))
	for kw := range pvt {
		tables = append(tables, kw)
	}
	sort.Strings(tables)
	report.PVTTables = tables

	s.logger.Debug("deck extracted",
		"deck", report.Deck,
		"sections", len(report.SectionNames),
		"pvt_tables", len(report.PVTTables),
	)

	return nil
}

// QCStep runs the full QC rule set over the extracted sections.
type QCStep struct {
	logger *slog.Logger
}

// NewQCStep creates a new QC step.
func NewQCStep(logger *slog.Logger) *QCStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &QCStep{logger: logger}
}

// Name returns the step name.
func (s *QCStep) Name() string {
	return "qc"
}

// Do evaluates every QC rule and stores the ordered issue list.
// Missing sections were never an error for the rules, so this step cannot
// fail short of a nil report.
func (s *QCStep) Do(_ context.Context, report *model.QCReport) error {
	sections := report.Sections
	if sections == nil {
		sections = deck.NewSections()
	}

	report.Issues = qc.Run(report.Content, sections)

	s.logger.Debug("qc completed",
		"deck", report.Deck,
		"issues", len(report.Issues),
	)

	return nil
}

// Planner produces a remediation plan from an issue list.
// Implementations live in the advisor package; the pipeline only needs
// this narrow contract.
type Planner interface {
	// Plan returns ordered remediation actions and a source label
	// ("heuristic" or "llm") describing how they were produced.
	Plan(ctx context.Context, issues []string, sections *deck.Sections) ([]string, string, error)
}

// PlanStep derives a remediation plan from the QC issues.
type PlanStep struct {
	planner Planner
	logger  *slog.Logger
}

// NewPlanStep creates a new plan step.
func NewPlanStep(planner Planner, logger *slog.Logger) *PlanStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanStep{planner: planner, logger: logger}
}

// Name returns the step name.
func (s *PlanStep) Name() string {
	return "plan"
}

// Do fills the report's plan. A planner failure is not critical: the
// issue list is the contract surface, so the error is logged and the
// report keeps an empty plan.
func (s *PlanStep) Do(ctx context.Context, report *model.QCReport) error {
	if s.planner == nil {
		return nil
	}

	plan, source, err := s.planner.Plan(ctx, report.Issues, report.Sections)
	if err != nil {
		s.logger.Warn("plan generation failed",
			"deck", report.Deck,
			"error", err,
		)
		return nil
	}

	report.Plan = plan
	report.PlanSource = source
	return nil
}
