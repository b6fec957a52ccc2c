package model

import (
	"time"

	"github.com/petrotools/deckqc/internal/deck"
)

// QCReport is the result of checking one deck.
// It accumulates state as pipeline steps run: extraction fills the section
// data, the QC step fills Issues, and the plan step fills Plan.
//
// Design decision: We use a single struct rather than one type per step
// because the report is the unit of serialization (JSON output, history
// database rows) and a single shape keeps those paths trivial.
type QCReport struct {
	// Deck is the path or display name of the checked deck file.
	Deck string `json:"deck"`

	// DateChecked is when the check was performed.
	DateChecked time.Time `json:"date_checked"`

	// Content is the sanitized deck text.
	// Excluded from JSON: decks can be large and the text is re-loadable.
	Content string `json:"-"`

	// Sections is the extracted section mapping.
	// Excluded from JSON; SectionNames and SectionLines carry the
	// serializable view.
	Sections *deck.Sections `json:"-"`

	// SectionNames lists the extracted section keywords in deck order.
	SectionNames []string `json:"sections,omitempty"`

	// SectionLines maps each section keyword to its line count.
	SectionLines map[string]int `json:"section_lines,omitempty"`

	// PVTTables lists the PVT table keywords found inside PROPS.
	PVTTables []string `json:"pvt_tables,omitempty"`

	// Issues is the ordered QC issue list. Order reflects rule evaluation
	// order. An empty slice means the deck passed every check.
	Issues []string `json:"issues"`

	// Plan is the ordered remediation plan derived from Issues.
	Plan []string `json:"plan,omitempty"`

	// PlanSource records how the plan was produced ("heuristic" or "llm").
	PlanSource string `json:"plan_source,omitempty"`

	// TimedOut is true if the check was cancelled before completion.
	TimedOut bool `json:"timed_out,omitempty"`

	// Error contains any error that occurred during the check.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`

	// PerformedSteps lists the pipeline steps that actually ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`
}

// NewQCReport creates a report for the given deck path.
func NewQCReport(deckPath string) *QCReport {
	return &QCReport{
		Deck:        deckPath,
		DateChecked: time.Now(),
		Issues:      make([]string, 0),
	}
}

// IssueCount returns the number of detected issues.
func (r *QCReport) IssueCount() int {
	return len(r.Issues)
}

// Passed reports whether the deck cleared every QC rule.
// A report that errored before QC ran did not pass.
func (r *QCReport) Passed() bool {
	return len(r.Issues) == 0 && r.Error == nil && r.ErrorMessage == ""
}

// Errored reports whether the check itself failed to run.
// A report with QC issues but no error has not errored: issues are data.
func (r *QCReport) Errored() bool {
	return r.Error != nil || r.ErrorMessage != ""
}

// SetError records a check error in both the error and serializable fields.
func (r *QCReport) SetError(err error) {
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}
