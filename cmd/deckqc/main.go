// Package main provides the entry point for the deckqc CLI.
//
// deckqc is a quality-control tool for reservoir simulation input decks.
// It extracts keyword sections, runs structural and value checks, and
// suggests remediation actions.
//
// Usage:
//
//	deckqc check <deck-file>
//	deckqc check --json field.DATA
//
// See --help for all available options.
package main

// main is the entry point for deckqc.
func main() {
	Execute()
}
