package qc

import (
	"strings"
	"testing"

	"github.com/petrotools/deckqc/internal/deck"
)

// TestInitialPressure tests the plausibility threshold on SOLUTION values.
func TestInitialPressure(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		solution   string
		wantIssues int
		wantCite   string
	}{
		{
			name:       "implausibly low value",
			solution:   "SOLUTION\n400\n",
			wantIssues: 1,
			wantCite:   "400",
		},
		{
			name:       "plausible value",
			solution:   "SOLUTION\n1200\n",
			wantIssues: 0,
		},
		{
			name:       "exactly at threshold",
			solution:   "SOLUTION\n500\n",
			wantIssues: 0,
		},
		{
			name:       "pressure header line skipped",
			solution:   "SOLUTION\nPRESSURE\n400 units listed in header context\n",
			wantIssues: 1,
			wantCite:   "400",
		},
		{
			name:       "lowercase pressure mention skipped",
			solution:   "SOLUTION\n-- initial pressure follows\n2500\n",
			wantIssues: 0,
		},
		{
			name:       "parse failures skipped",
			solution:   "SOLUTION\nEQUIL\n-- comment\n/\n",
			wantIssues: 0,
		},
		{
			name:       "multiple low values",
			solution:   "SOLUTION\n100\n200\n",
			wantIssues: 2,
		},
		{
			name:       "missing section",
			solution:   "",
			wantIssues: 0,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sections := deck.NewSections()
			if tc.solution != "" {
				sections.Set("SOLUTION", tc.solution)
			}

			issues := InitialPressure(sections)
			if len(issues) != tc.wantIssues {
				t.Fatalf("got %d issues %v, expected %d", len(issues), issues, tc.wantIssues)
			}
			if tc.wantCite != "" && !strings.Contains(issues[0], tc.wantCite) {
				t.Errorf("issue should cite the value %s: %q", tc.wantCite, issues[0])
			}
		})
	}
}

// TestInitialPressureCitesBareValue pins the %g formatting: a bare "400"
// is cited as 400, not 400.0.
func TestInitialPressureCitesBareValue(t *testing.T) {
	t.Parallel()

	sections := deck.NewSections()
	sections.Set("SOLUTION", "SOLUTION\n400\n")

	issues := InitialPressure(sections)
	if len(issues) != 1 {
		t.Fatalf("got %d issues, expected 1", len(issues))
	}
	if issues[0] != "Unrealistic initial pressure: 400 psi." {
		t.Errorf("got %q, expected exact issue wording", issues[0])
	}
}

// TestPVTCompleteness tests required PVT table detection in PROPS.
func TestPVTCompleteness(t *testing.T) {
	t.Parallel()

	t.Run("only PVTO present", func(t *testing.T) {
		t.Parallel()

		sections := deck.NewSections()
		sections.Set("PROPS", "PROPS\nPVTO\n 0.1 100 1.05 1.2 /\n")

		issues := PVTCompleteness(sections)
		if len(issues) != 1 {
			t.Fatalf("got %d issues, expected exactly 1 aggregated issue", len(issues))
		}
		if !strings.Contains(issues[0], "PVTW") || !strings.Contains(issues[0], "PVTG") {
			t.Errorf("issue should list PVTW and PVTG as missing: %q", issues[0])
		}
		if strings.Contains(issues[0], "PVTO") {
			t.Errorf("issue must not list present table PVTO: %q", issues[0])
		}
	})

	t.Run("all tables present", func(t *testing.T) {
		t.Parallel()

		sections := deck.NewSections()
		sections.Set("PROPS", "PROPS\nPVTO\nPVTW\nPVTG\n")

		if issues := PVTCompleteness(sections); len(issues) != 0 {
			t.Errorf("got %v, expected no issues", issues)
		}
	})

	t.Run("missing PROPS section", func(t *testing.T) {
		t.Parallel()

		issues := PVTCompleteness(deck.NewSections())
		if len(issues) != 1 {
			t.Fatalf("got %d issues, expected 1 (all tables missing)", len(issues))
		}
		for _, kw := range RequiredPVTTables {
			if !strings.Contains(issues[0], kw) {
				t.Errorf("issue should list %s: %q", kw, issues[0])
			}
		}
	})
}

// TestCompdat tests per-line status keyword checking.
func TestCompdat(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		compdat    string
		wantIssues int
	}{
		{
			name:       "entries with status",
			compdat:    "COMPDAT\n 'P1' 10 10 1 3 'OPEN' 2* 0.5 /\n 'I1' 1 1 1 5 'CLOSED' 2* 0.5 /",
			wantIssues: 0,
		},
		{
			name:       "lowercase status accepted",
			compdat:    "COMPDAT\n 'P1' 10 10 1 3 'open' 2* 0.5 /",
			wantIssues: 0,
		},
		{
			name:       "one entry missing status",
			compdat:    "COMPDAT\n 'P1' 10 10 1 3 'OPEN' 2* 0.5 /\n 'P2' 11 11 1 3 2* 0.5 /",
			wantIssues: 1,
		},
		{
			name:       "no deduplication across bad lines",
			compdat:    "COMPDAT\n 'P1' 1 1 1 1 /\n 'P2' 2 2 1 1 /\n 'P3' 3 3 1 1 /",
			wantIssues: 3,
		},
		{
			name:       "blank lines skipped",
			compdat:    "COMPDAT\n\n 'P1' 10 10 1 3 'OPEN' /\n\n",
			wantIssues: 0,
		},
		{
			name:       "missing section",
			compdat:    "",
			wantIssues: 0,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sections := deck.NewSections()
			if tc.compdat != "" {
				sections.Set("COMPDAT", tc.compdat)
			}

			if issues := Compdat(sections); len(issues) != tc.wantIssues {
				t.Errorf("got %d issues %v, expected %d", len(issues), issues, tc.wantIssues)
			}
		})
	}
}
