package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/petrotools/deckqc/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showSections controls whether the section inventory is printed.
	showSections bool

	// verbose enables additional detail such as the remediation plan
	// source and the performed pipeline steps.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowSections configures the writer to print the section inventory.
func WithShowSections(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showSections = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter:   newBaseWriter(output),
		showSections: true,
		verbose:      false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.QCReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSections(&sb, report)
	w.writeIssues(&sb, report)
	w.writePlan(&sb, report)
	w.writeFooter(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

// WriteAll outputs a batch of reports separated by blank lines, followed
// by a pass/fail tally.
func (w *SimpleWriter) WriteAll(reports []*model.QCReport) (int, error) {
	var total int
	passed := 0

	for _, report := range reports {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
		if report.Passed() {
			passed++
		}
	}

	summary := fmt.Sprintf("\n%d/%d decks passed QC\n", passed, len(reports))
	n, err := w.output.Write([]byte(summary))
	return total + n, err
}

// writeHeader writes the report header with check information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.QCReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          DECK QC REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Deck:       %s\n", report.Deck))
	sb.WriteString(fmt.Sprintf("Checked:    %s\n", report.DateChecked.Format("2006-01-02 15:04:05 MST")))

	switch {
	case report.TimedOut:
		sb.WriteString("Status:     TIMED OUT (partial results)\n")
	case report.ErrorMessage != "":
		sb.WriteString(fmt.Sprintf("Status:     ERROR - %s\n", report.ErrorMessage))
	case report.Passed():
		sb.WriteString("Status:     PASSED\n")
	default:
		sb.WriteString(fmt.Sprintf("Status:     %d issue(s) found\n", report.IssueCount()))
	}

	sb.WriteString("\n")
}

// writeSections writes the section inventory with line counts.
func (w *SimpleWriter) writeSections(sb *strings.Builder, report *model.QCReport) {
	if !w.showSections || len(report.SectionNames) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SECTIONS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, name := range report.SectionNames {
		sb.WriteString(fmt.Sprintf("  %-12s %4d line(s)\n", name, report.SectionLines[name]))
	}

	if len(report.PVTTables) > 0 {
		tables := append([]string(nil), report.PVTTables...)
		sort.Strings(tables)
		sb.WriteString(fmt.Sprintf("\n  PVT tables in PROPS: %s\n", strings.Join(tables, ", ")))
	}

	sb.WriteString("\n")
}

// writeIssues writes the QC issue list in rule evaluation order.
func (w *SimpleWriter) writeIssues(sb *strings.Builder, report *model.QCReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ISSUES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Issues) == 0 {
		sb.WriteString("  No issues found\n\n")
		return
	}

	for i, issue := range report.Issues {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, issue))
	}
	sb.WriteString("\n")
}

// writePlan writes the remediation plan when one exists.
func (w *SimpleWriter) writePlan(sb *strings.Builder, report *model.QCReport) {
	if len(report.Plan) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("REMEDIATION PLAN\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for i, action := range report.Plan {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, action))
	}

	if w.verbose && report.PlanSource != "" {
		sb.WriteString(fmt.Sprintf("\n  (plan source: %s)\n", report.PlanSource))
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, report *model.QCReport) {
	if w.verbose && len(report.PerformedSteps) > 0 {
		sb.WriteString(fmt.Sprintf("Steps: %s\n", strings.Join(report.PerformedSteps, " -> ")))
	}
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
