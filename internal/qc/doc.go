// Package qc implements quality-control rules for simulation input decks.
//
// Rules come in two flavors:
//   - Structural rules check keyword presence and cross-section referential
//     integrity (END marker, WELSPECS versus well control sections).
//   - Value rules check numeric and content thresholds inside a single
//     section (initial pressure plausibility, PVT table completeness,
//     COMPDAT entry status keywords).
//
// Every rule is a pure function from the deck text and/or section mapping
// to a slice of human-readable issue strings. Rules never mutate their
// inputs, never depend on each other, and never fail: a missing section is
// an empty string and a malformed numeric token is skipped. Run evaluates
// the full rule set in a fixed order and concatenates the results; the
// issue list it returns is the sole contract surface consumed by reports,
// the advisor, and the web UI.
//
// Design decision: Several checks are deliberately substring-based
// ("PRESSURE" header detection, PVT keyword presence, OPEN/CLOSED status).
// That is the documented detection policy inherited from field practice,
// not a shortcut; tightening them to token-level parsing would change
// which decks pass QC.
package qc
