package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/petrotools/deckqc/internal/config"
	"github.com/petrotools/deckqc/internal/database"
	"github.com/petrotools/deckqc/internal/model"
)

// Constants for QC trend direction.
const (
	trendImproved  = "improved"
	trendWorsened  = "worsened"
	trendUnchanged = "unchanged"
)

// NewCompareCmd creates the compare command.
// This command compares QC results with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [deck-file]",
		Short: "Compare QC results with historical data",
		Long: `Compare displays differences between the current and previous QC checks.

This command retrieves historical QC data from the database and shows:
- New issues that appeared since the last check
- Resolved issues that are no longer reported
- The overall QC trend for the deck

The comparison requires at least two checks in the database for the
specified deck. Use 'deckqc check' to run checks and save results.

Examples:
  # Compare latest two checks for a deck
  deckqc compare field.DATA

  # List all check history for a deck
  deckqc compare --list field.DATA

  # Compare with a specific historical check by ID
  deckqc compare --with-id 5 field.DATA

  # Output comparison in JSON format
  deckqc compare --json field.DATA

  # List all checked decks in the database
  deckqc compare --list-decks`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List check history for the specified deck")
	cmd.Flags().BoolP("list-decks", "L", false,
		"List all checked decks in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-id", "i", 0,
		"Compare with a specific check by ID (use --list to see available IDs)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	// Handle --list-decks first (requires database but no deck argument)
	listDecks, err := cmd.Flags().GetBool("list-decks")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database so a bad invocation
	// does not take the write lock.
	var deckPath string
	if !listDecks {
		if len(args) == 0 {
			return errors.New("deck file is required (use --list-decks to see checked decks)")
		}
		deckPath = args[0]
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if listDecks {
		return listCheckedDecks(ctx, db)
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listCheckHistory(ctx, db, deckPath)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	withID, err := cmd.Flags().GetInt64("with-id")
	if err != nil {
		return err
	}

	return runComparison(ctx, db, deckPath, withID, jsonOutput)
}

// listCheckedDecks lists all decks that have check records in the database.
func listCheckedDecks(ctx context.Context, db *database.HistoryDB) error {
	decks, err := db.ListDecks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list decks: %w", err)
	}

	if len(decks) == 0 {
		fmt.Println("No checked decks found in the database.")
		fmt.Println("\nUse 'deckqc check <deck-file>' to check a deck.")
		return nil
	}

	fmt.Printf("Checked decks (%d):\n\n", len(decks))
	for _, deck := range decks {
		fmt.Printf("  • %s\n", deck)
	}
	fmt.Println("\nUse 'deckqc compare --list <deck-file>' to see check history for a deck.")

	return nil
}

// listCheckHistory lists all check records for a specific deck.
func listCheckHistory(ctx context.Context, db *database.HistoryDB, deckPath string) error {
	reports, err := db.GetHistoryMetadata(ctx, deckPath)
	if err != nil {
		return fmt.Errorf("failed to get check history: %w", err)
	}

	if len(reports) == 0 {
		fmt.Printf("No check history found for %s\n", deckPath)
		fmt.Println("\nUse 'deckqc check' to check this deck.")
		return nil
	}

	fmt.Printf("Check history for %s (%d checks):\n\n", deckPath, len(reports))
	fmt.Printf("  %-6s  %-20s  %-8s  %s\n", "ID", "Date", "Status", "Issues")
	fmt.Println("  " + strings.Repeat("-", 50))

	for _, meta := range reports {
		status := "FAILED"
		if meta.Passed {
			status = "PASSED"
		}
		fmt.Printf("  %-6d  %-20s  %-8s  %d\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			status,
			meta.IssueCount,
		)
	}

	fmt.Println("\nUse 'deckqc compare <deck-file>' to compare the latest two checks.")
	fmt.Println("Use 'deckqc compare --with-id <id> <deck-file>' to compare with a specific check.")

	return nil
}

// runComparison performs the actual comparison between QC reports.
func runComparison(ctx context.Context, db *database.HistoryDB, deckPath string, withID int64, jsonOutput bool) error {
	pair, err := db.GetLatestPair(ctx, deckPath)
	if err != nil {
		return fmt.Errorf("failed to get check history: %w", err)
	}

	if len(pair) == 0 {
		return fmt.Errorf("no check history found for %s", deckPath)
	}

	// Latest report is always the current one
	current := pair[0]

	var previous *model.QCReport
	if withID > 0 {
		// Comparing the latest check against itself is always "unchanged"
		// and never what the user meant.
		meta, err := db.GetHistoryMetadata(ctx, deckPath)
		if err != nil {
			return fmt.Errorf("failed to get check history: %w", err)
		}
		if len(meta) > 0 && meta[0].ID == withID {
			return fmt.Errorf("check ID %d is the latest check; pick an earlier one (use --list)", withID)
		}

		previous, err = db.GetReportByID(ctx, withID)
		if err != nil {
			return fmt.Errorf("failed to get check with ID %d: %w", withID, err)
		}
		if previous == nil {
			return fmt.Errorf("check with ID %d not found", withID)
		}
		if previous.Deck != deckPath {
			return fmt.Errorf("check ID %d belongs to %s, not %s", withID, previous.Deck, deckPath)
		}
	} else {
		if len(pair) < 2 {
			return fmt.Errorf("at least 2 checks are required for comparison (found %d)", len(pair))
		}
		previous = pair[1]
	}

	comparison := compareReports(previous, current)

	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	return outputComparisonText(comparison)
}

// ComparisonResult holds the result of comparing two QC reports.
type ComparisonResult struct {
	// Deck is the compared deck path.
	Deck string `json:"deck"`

	// PreviousCheck contains metadata about the previous check.
	PreviousCheck CheckMetadata `json:"previous_check"`

	// CurrentCheck contains metadata about the current check.
	CurrentCheck CheckMetadata `json:"current_check"`

	// NewIssues contains issues that are new in the current check.
	NewIssues []string `json:"new_issues,omitempty"`

	// ResolvedIssues contains issues present previously but no longer reported.
	ResolvedIssues []string `json:"resolved_issues,omitempty"`

	// UnchangedCount is the number of issues present in both checks.
	UnchangedCount int `json:"unchanged_count"`

	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`
}

// CheckMetadata contains metadata about a check for comparison display.
type CheckMetadata struct {
	// DateChecked is when the check was performed.
	DateChecked time.Time `json:"date_checked"`

	// IssueCount is the number of issues found by this check.
	IssueCount int `json:"issue_count"`
}

// compareReports compares two QC reports and generates a comparison result.
// Issues are matched by exact string since rule output is deterministic.
func compareReports(previous, current *model.QCReport) *ComparisonResult {
	result := &ComparisonResult{
		Deck: current.Deck,
		PreviousCheck: CheckMetadata{
			DateChecked: previous.DateChecked,
			IssueCount:  previous.IssueCount(),
		},
		CurrentCheck: CheckMetadata{
			DateChecked: current.DateChecked,
			IssueCount:  current.IssueCount(),
		},
	}

	previousIssues := make(map[string]bool, len(previous.Issues))
	for _, issue := range previous.Issues {
		previousIssues[issue] = true
	}
	currentIssues := make(map[string]bool, len(current.Issues))
	for _, issue := range current.Issues {
		currentIssues[issue] = true
	}

	// Preserve rule evaluation order in the diff lists
	for _, issue := range current.Issues {
		if !previousIssues[issue] {
			result.NewIssues = append(result.NewIssues, issue)
		}
	}
	for _, issue := range previous.Issues {
		if currentIssues[issue] {
			result.UnchangedCount++
		} else {
			result.ResolvedIssues = append(result.ResolvedIssues, issue)
		}
	}

	switch {
	case result.CurrentCheck.IssueCount < result.PreviousCheck.IssueCount:
		result.Direction = trendImproved
	case result.CurrentCheck.IssueCount > result.PreviousCheck.IssueCount:
		result.Direction = trendWorsened
	default:
		result.Direction = trendUnchanged
	}

	return result
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("QC Comparison: %s\n", result.Deck)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nQC Trend: %s\n", formatTrend(result.Direction))

	fmt.Printf("\nPrevious check: %s  (%s)\n",
		result.PreviousCheck.DateChecked.Format("2006-01-02 15:04:05"),
		formatIssueCount(result.PreviousCheck.IssueCount))
	fmt.Printf("Current check:  %s  (%s)\n",
		result.CurrentCheck.DateChecked.Format("2006-01-02 15:04:05"),
		formatIssueCount(result.CurrentCheck.IssueCount))

	if len(result.NewIssues) > 0 {
		fmt.Printf("\nNew Issues (%d):\n", len(result.NewIssues))
		for _, issue := range result.NewIssues {
			fmt.Printf("  [+] %s\n", issue)
		}
	}

	if len(result.ResolvedIssues) > 0 {
		fmt.Printf("\nResolved Issues (%d):\n", len(result.ResolvedIssues))
		for _, issue := range result.ResolvedIssues {
			fmt.Printf("  [-] %s\n", issue)
		}
	}

	if result.UnchangedCount > 0 {
		fmt.Printf("\nUnchanged: %d issue(s)\n", result.UnchangedCount)
	}

	if result.CurrentCheck.IssueCount == 0 {
		fmt.Println("\nThe deck currently passes all QC rules.")
	}

	return nil
}

// formatTrend formats the QC trend direction for display.
func formatTrend(direction string) string {
	switch direction {
	case trendImproved:
		return "IMPROVED (fewer issues)"
	case trendWorsened:
		return "WORSENED (more issues)"
	default:
		return "UNCHANGED"
	}
}

// formatIssueCount formats an issue count for display.
func formatIssueCount(n int) string {
	if n == 0 {
		return "no issues"
	}
	return strconv.Itoa(n) + " issue(s)"
}
