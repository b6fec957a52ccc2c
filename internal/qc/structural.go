package qc

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/petrotools/deckqc/internal/deck"
)

// ControlKeywords are the well control sections whose entries must refer
// to wells declared in WELSPECS.
var ControlKeywords = []string{"WCONPROD", "WCONINJE", "WCONHIST"}

// quotedName matches the first single-quote-delimited token on a line.
var quotedName = regexp.MustCompile(`'([^']+)'`)

// CheckEndKeyword reports whether the END keyword appears anywhere in the
// deck text. This is a whole-document substring check, independent of
// section extraction: a deck missing its terminator is broken even if the
// extractor happens to segment it cleanly.
func CheckEndKeyword(content string) bool {
	return strings.Contains(content, "END")
}

// extractWellNames collects single-quoted well names from a text block.
//
// Only the first quoted token per line is taken; a line carrying several
// quoted strings (well name, group name, fluid phase) contributes just the
// leading one, which in both WELSPECS and the control sections is the well
// name. Duplicates collapse to set semantics.
func extractWellNames(block string) map[string]struct{} {
	names := make(map[string]struct{})
	for _, line := range strings.Split(block, "\n") {
		if m := quotedName.FindStringSubmatch(line); m != nil {
			names[m[1]] = struct{}{}
		}
	}
	return names
}

// WellSpecsVsControls cross-references well control entries against the
// WELSPECS declarations and returns the resulting issues.
//
// Outcomes, in order:
//  1. Controls exist but WELSPECS is absent or empty: one issue.
//  2. Both exist and controls reference undeclared wells: one issue
//     listing the missing names.
//  3. Otherwise: no issues.
func WellSpecsVsControls(sections *deck.Sections) []string {
	issues := []string{}

	wels := sections.Get("WELSPECS")

	var controls strings.Builder
	for _, kw := range ControlKeywords {
		controls.WriteString(sections.Get(kw))
	}
	wcon := controls.String()

	if wcon != "" && wels == "" {
		issues = append(issues, "Well controls found but no WELSPECS section.")
	}

	if wels != "" && wcon != "" {
		welsNames := extractWellNames(wels)
		ctrlNames := extractWellNames(wcon)

		missing := make([]string, 0)
		for name := range ctrlNames {
			if _, ok := welsNames[name]; !ok {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			// The contract is set semantics; sorting just makes the
			// issue string deterministic.
			sort.Strings(missing)
			issues = append(issues, fmt.Sprintf("Wells missing in WELSPECS: %s", strings.Join(missing, ", ")))
		}
	}

	return issues
}
