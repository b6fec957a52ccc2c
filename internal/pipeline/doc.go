// Package pipeline orchestrates the deck check flow.
//
// A Pipeline executes an ordered list of Steps against one QCReport:
// extraction fills the section data, the QC step fills the issue list, and
// the plan step derives remediation actions. A BatchProcessor runs one
// pipeline per deck file with bounded concurrency for multi-deck checks.
//
// The steps themselves are thin adapters over pure functions (deck.Extract,
// qc.Run, the planner); the pipeline adds ordering, cancellation checks,
// and structured logging around them.
package pipeline
