package advisor

import (
	"strings"

	"github.com/petrotools/deckqc/internal/deck"
)

// Plan action strings. Keeping them as constants lets the compare
// command and the tests match on identity rather than substrings.
const (
	// PlanReady is the whole plan when the deck has no issues.
	PlanReady = "Deck passed QC. Ready for simulation."

	planAppendEnd       = "Append END keyword at bottom of deck."
	planVerifyWells     = "Verify well locations, KB depth, and coordinates."
	planCheckNaming     = "Cross-check well naming consistency across sections."
	planPressureRealism = "Check SOLUTION initial pressures for realism (>1000 psi)."
)

// BuildPlan derives an ordered remediation plan from QC issues.
//
// Each issue contributes the actions it implies, in issue order;
// duplicate actions are dropped so a deck with several well-name issues
// still yields one naming action. The SOLUTION-pressure reminder fires
// for flawed decks whose SOLUTION section mentions pressure data, since
// pressure entries deserve a second look whenever the deck has problems
// at all.
func BuildPlan(issues []string, sections *deck.Sections) []string {
	if len(issues) == 0 {
		return []string{PlanReady}
	}

	solutionMentionsPressure := strings.Contains(
		strings.ToLower(sections.Get("SOLUTION")), "pressure",
	)

	plan := make([]string, 0, len(issues))
	seen := make(map[string]struct{})

	add := func(action string) {
		if _, ok := seen[action]; ok {
			return
		}
		seen[action] = struct{}{}
		plan = append(plan, action)
	}

	for _, issue := range issues {
		if strings.Contains(issue, "END") {
			add(planAppendEnd)
		}
		if strings.Contains(issue, "WELSPECS") {
			add(planVerifyWells)
		}
		if strings.Contains(strings.ToLower(issue), "missing") {
			add(planCheckNaming)
		}
		if solutionMentionsPressure {
			add(planPressureRealism)
		}
	}

	return plan
}
