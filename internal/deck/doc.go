// Package deck loads ECLIPSE-style simulation input decks and splits them
// into keyword-delimited sections.
//
// A deck is a flat, line-oriented text format: an uppercase keyword at the
// start of a line opens a section, and every following line belongs to that
// section until the next recognized keyword appears. The extractor performs
// only this flat segmentation; it does not parse per-keyword record grammar.
//
// Design decision: Extraction is a pure function over already-loaded text.
// File access and byte sanitization live in Load/Sanitize so that every
// downstream consumer (QC rules, reports, the web UI) works on clean UTF-8
// and never has to handle decode errors.
package deck
