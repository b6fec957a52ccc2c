package main

import (
	"context"
	"testing"
	"time"

	"github.com/petrotools/deckqc/internal/database"
	"github.com/petrotools/deckqc/internal/model"
)

// TestNewCompareCmd tests the compare command creation.
func TestNewCompareCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "compare [deck-file]" {
			t.Errorf("expected use 'compare [deck-file]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has list flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("list")
		if flag == nil {
			t.Fatal("expected list flag")
		}
		if flag.Shorthand != "l" {
			t.Errorf("expected shorthand 'l', got %q", flag.Shorthand)
		}
	})

	t.Run("has list-decks flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("list-decks")
		if flag == nil {
			t.Fatal("expected list-decks flag")
		}
		if flag.Shorthand != "L" {
			t.Errorf("expected shorthand 'L', got %q", flag.Shorthand)
		}
	})

	t.Run("has with-id flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("with-id")
		if flag == nil {
			t.Fatal("expected with-id flag")
		}
		if flag.Shorthand != "i" {
			t.Errorf("expected shorthand 'i', got %q", flag.Shorthand)
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})
}

// reportAt builds a QC report with fixed issues and timestamp.
func reportAt(deck string, checked time.Time, issues ...string) *model.QCReport {
	report := model.NewQCReport(deck)
	report.DateChecked = checked
	report.Issues = append(report.Issues, issues...)
	return report
}

// TestCompareReports tests the issue diff between two reports.
func TestCompareReports(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	t.Run("detects new and resolved issues", func(t *testing.T) {
		t.Parallel()

		previous := reportAt("field.DATA", base,
			"Missing END keyword.",
			"Well controls found but no WELSPECS section.",
		)
		current := reportAt("field.DATA", base.Add(time.Hour),
			"Missing END keyword.",
			"Missing PVT tables: PVTG",
		)

		result := compareReports(previous, current)

		if len(result.NewIssues) != 1 || result.NewIssues[0] != "Missing PVT tables: PVTG" {
			t.Errorf("unexpected new issues: %v", result.NewIssues)
		}
		if len(result.ResolvedIssues) != 1 || result.ResolvedIssues[0] != "Well controls found but no WELSPECS section." {
			t.Errorf("unexpected resolved issues: %v", result.ResolvedIssues)
		}
		if result.UnchangedCount != 1 {
			t.Errorf("expected 1 unchanged issue, got %d", result.UnchangedCount)
		}
		if result.Direction != trendUnchanged {
			t.Errorf("expected direction %q, got %q", trendUnchanged, result.Direction)
		}
	})

	t.Run("improved when issues decrease", func(t *testing.T) {
		t.Parallel()

		previous := reportAt("field.DATA", base, "Missing END keyword.", "Missing PVT tables: PVTG")
		current := reportAt("field.DATA", base.Add(time.Hour), "Missing PVT tables: PVTG")

		result := compareReports(previous, current)

		if result.Direction != trendImproved {
			t.Errorf("expected direction %q, got %q", trendImproved, result.Direction)
		}
		if len(result.NewIssues) != 0 {
			t.Errorf("expected no new issues, got %v", result.NewIssues)
		}
	})

	t.Run("worsened when issues increase", func(t *testing.T) {
		t.Parallel()

		previous := reportAt("field.DATA", base)
		current := reportAt("field.DATA", base.Add(time.Hour), "Missing END keyword.")

		result := compareReports(previous, current)

		if result.Direction != trendWorsened {
			t.Errorf("expected direction %q, got %q", trendWorsened, result.Direction)
		}
	})

	t.Run("carries check metadata", func(t *testing.T) {
		t.Parallel()

		previous := reportAt("field.DATA", base, "Missing END keyword.")
		current := reportAt("field.DATA", base.Add(time.Hour))

		result := compareReports(previous, current)

		if result.Deck != "field.DATA" {
			t.Errorf("expected deck 'field.DATA', got %q", result.Deck)
		}
		if result.PreviousCheck.IssueCount != 1 {
			t.Errorf("expected previous issue count 1, got %d", result.PreviousCheck.IssueCount)
		}
		if result.CurrentCheck.IssueCount != 0 {
			t.Errorf("expected current issue count 0, got %d", result.CurrentCheck.IssueCount)
		}
		if !result.CurrentCheck.DateChecked.After(result.PreviousCheck.DateChecked) {
			t.Error("expected current check to be newer than previous")
		}
	})
}

// TestFormatTrend tests the trend formatting.
func TestFormatTrend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		direction string
		want      string
	}{
		{trendImproved, "IMPROVED (fewer issues)"},
		{trendWorsened, "WORSENED (more issues)"},
		{trendUnchanged, "UNCHANGED"},
		{"", "UNCHANGED"},
	}

	for _, tt := range tests {
		if got := formatTrend(tt.direction); got != tt.want {
			t.Errorf("formatTrend(%q) = %q, want %q", tt.direction, got, tt.want)
		}
	}
}

// TestFormatIssueCount tests the issue count formatting.
func TestFormatIssueCount(t *testing.T) {
	t.Parallel()

	if got := formatIssueCount(0); got != "no issues" {
		t.Errorf("formatIssueCount(0) = %q", got)
	}
	if got := formatIssueCount(3); got != "3 issue(s)" {
		t.Errorf("formatIssueCount(3) = %q", got)
	}
}

// TestRunComparison tests comparison against a real history database.
func TestRunComparison(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	openDB := func(t *testing.T) *database.HistoryDB {
		t.Helper()
		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		return db
	}

	t.Run("compares the latest two checks", func(t *testing.T) {
		t.Parallel()

		db := openDB(t)
		base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

		if err := db.SaveReport(ctx, reportAt("field.DATA", base, "Missing END keyword.")); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
		if err := db.SaveReport(ctx, reportAt("field.DATA", base.Add(time.Hour))); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}

		if err := runComparison(ctx, db, "field.DATA", 0, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("errors without history", func(t *testing.T) {
		t.Parallel()

		db := openDB(t)
		err := runComparison(ctx, db, "unknown.DATA", 0, false)
		if err == nil {
			t.Error("expected error for deck without history")
		}
	})

	t.Run("errors with a single check", func(t *testing.T) {
		t.Parallel()

		db := openDB(t)
		if err := db.SaveReport(ctx, reportAt("single.DATA", time.Now())); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}

		err := runComparison(ctx, db, "single.DATA", 0, false)
		if err == nil {
			t.Error("expected error when only one check exists")
		}
	})

	t.Run("rejects the latest check's own ID", func(t *testing.T) {
		t.Parallel()

		db := openDB(t)
		base := time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)

		if err := db.SaveReport(ctx, reportAt("self.DATA", base, "Missing END keyword.")); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
		if err := db.SaveReport(ctx, reportAt("self.DATA", base.Add(time.Hour))); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}

		meta, err := db.GetHistoryMetadata(ctx, "self.DATA")
		if err != nil {
			t.Fatalf("failed to get metadata: %v", err)
		}
		if len(meta) != 2 {
			t.Fatalf("expected 2 checks, got %d", len(meta))
		}

		// The latest check cannot be compared against itself.
		err = runComparison(ctx, db, "self.DATA", meta[0].ID, false)
		if err == nil {
			t.Error("expected error when comparing the latest check with itself")
		}

		// An earlier check is a valid comparison target.
		if err := runComparison(ctx, db, "self.DATA", meta[1].ID, false); err != nil {
			t.Errorf("unexpected error for an earlier check ID: %v", err)
		}
	})

	t.Run("errors for unknown check ID", func(t *testing.T) {
		t.Parallel()

		db := openDB(t)
		if err := db.SaveReport(ctx, reportAt("field.DATA", time.Now())); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}

		err := runComparison(ctx, db, "field.DATA", 9999, false)
		if err == nil {
			t.Error("expected error for unknown check ID")
		}
	})

	t.Run("outputs JSON without error", func(t *testing.T) {
		t.Parallel()

		db := openDB(t)
		base := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)

		if err := db.SaveReport(ctx, reportAt("json.DATA", base, "Missing END keyword.")); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
		if err := db.SaveReport(ctx, reportAt("json.DATA", base.Add(time.Hour))); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}

		if err := runComparison(ctx, db, "json.DATA", 0, true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

// TestListHelpers tests the listing helpers against a real database.
func TestListHelpers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.SaveReport(ctx, reportAt("list.DATA", time.Now(), "Missing END keyword.")); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	if err := listCheckedDecks(ctx, db); err != nil {
		t.Errorf("listCheckedDecks() error = %v", err)
	}
	if err := listCheckHistory(ctx, db, "list.DATA"); err != nil {
		t.Errorf("listCheckHistory() error = %v", err)
	}
	if err := listCheckHistory(ctx, db, "absent.DATA"); err != nil {
		t.Errorf("listCheckHistory() error = %v", err)
	}
}
