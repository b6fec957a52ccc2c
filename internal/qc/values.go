package qc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/petrotools/deckqc/internal/deck"
)

// MinPlausiblePressure is the lower bound (psi) for a believable initial
// reservoir pressure. Values below it almost always indicate a unit mix-up
// or a placeholder left in the SOLUTION section.
const MinPlausiblePressure = 500.0

// RequiredPVTTables are the PVT keywords a PROPS section must carry for a
// three-phase black-oil run.
var RequiredPVTTables = []string{"PVTO", "PVTW", "PVTG"}

// InitialPressure scans the SOLUTION section for implausibly low initial
// pressures.
//
// Lines mentioning "pressure" (any case) are treated as headers or
// comments and skipped. For remaining lines the first whitespace-separated
// token is parsed as a float; a parse failure skips the line silently.
// Each parsed value below MinPlausiblePressure yields one issue.
func InitialPressure(sections *deck.Sections) []string {
	issues := []string{}

	for _, line := range strings.Split(sections.Get("SOLUTION"), "\n") {
		if strings.Contains(strings.ToUpper(line), "PRESSURE") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		p, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			continue
		}
		if p < MinPlausiblePressure {
			issues = append(issues, fmt.Sprintf("Unrealistic initial pressure: %g psi.", p))
		}
	}

	return issues
}

// PVTCompleteness checks that the PROPS section contains every required
// PVT table keyword. The check is a literal substring match. All missing
// tables are reported in a single issue rather than one per table.
func PVTCompleteness(sections *deck.Sections) []string {
	props := sections.Get("PROPS")

	missing := make([]string, 0)
	for _, kw := range RequiredPVTTables {
		if !strings.Contains(props, kw) {
			missing = append(missing, kw)
		}
	}

	if len(missing) > 0 {
		return []string{fmt.Sprintf("Missing PVT tables: %s", strings.Join(missing, ", "))}
	}
	return []string{}
}

// Compdat checks that every completion entry in the COMPDAT section
// carries an OPEN or CLOSED status token (case-insensitive).
//
// Blank lines and the keyword header line are skipped; every other
// offending line yields its own issue. The rule intentionally does not
// deduplicate: five bad entries are five problems to fix.
func Compdat(sections *deck.Sections) []string {
	issues := []string{}

	for _, line := range strings.Split(sections.Get("COMPDAT"), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		upper := strings.ToUpper(trimmed)
		if strings.HasPrefix(upper, "COMPDAT") {
			continue
		}
		if !strings.Contains(upper, "OPEN") && !strings.Contains(upper, "CLOSED") {
			issues = append(issues, "COMPDAT entry missing OPEN/CLOSED keyword.")
		}
	}

	return issues
}
