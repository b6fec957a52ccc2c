// Package model defines the core data structures shared across deckqc.
//
// The central type is QCReport: one deck check's sections, issues, and
// remediation plan. Multiple packages (pipeline, report, database, server)
// consume it, so it lives in its own package to prevent import cycles.
//
// Issues are deliberately bare strings with no severity or code attached.
// The QC contract is a flat, order-preserving list of human-readable
// problems; any richer presentation (grouping, rendering, diffing) is a
// consumer concern layered above the list.
package model
