package qc

import "github.com/petrotools/deckqc/internal/deck"

// rule pairs a name with a rule function. The name is not part of the
// issue contract; it exists for RuleNames and debugging.
type rule struct {
	name string
	fn   func(content string, sections *deck.Sections) []string
}

// ruleSet is the full ordered rule set. Evaluation order is part of the
// contract: issue ordering in Run's output reflects this declaration
// order, not severity.
var ruleSet = []rule{
	{name: "end_keyword", fn: func(content string, _ *deck.Sections) []string {
		if !CheckEndKeyword(content) {
			return []string{"Missing END keyword."}
		}
		return nil
	}},
	{name: "wellspecs_vs_controls", fn: func(_ string, sections *deck.Sections) []string {
		return WellSpecsVsControls(sections)
	}},
	{name: "initial_pressure", fn: func(_ string, sections *deck.Sections) []string {
		return InitialPressure(sections)
	}},
	{name: "pvt_completeness", fn: func(_ string, sections *deck.Sections) []string {
		return PVTCompleteness(sections)
	}},
	{name: "compdat_status", fn: func(_ string, sections *deck.Sections) []string {
		return Compdat(sections)
	}},
}

// Run evaluates every QC rule against the deck and returns the
// concatenated issue list.
//
// There is no short-circuiting: a failure in one rule never suppresses
// later rules, and a clean deck returns an empty (non-nil) slice rather
// than a sentinel "ok" issue. Ownership of the returned slice passes to
// the caller; Run keeps no state between invocations.
func Run(content string, sections *deck.Sections) []string {
	issues := []string{}
	for _, r := range ruleSet {
		issues = append(issues, r.fn(content, sections)...)
	}
	return issues
}

// RuleNames returns the rule names in evaluation order.
func RuleNames() []string {
	names := make([]string, len(ruleSet))
	for i, r := range ruleSet {
		names[i] = r.name
	}
	return names
}
