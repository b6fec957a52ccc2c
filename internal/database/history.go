package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/petrotools/deckqc/internal/model"
)

// HistoryDB provides SQLite-based storage for QC reports.
//
// Design decision: We use a single database file for all decks rather
// than one file per deck. Cross-deck queries (listing checked decks,
// comparing runs) stay trivial and backup is a single file copy.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "deckqc.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- QC reports store complete check results as JSON
	CREATE TABLE IF NOT EXISTS qc_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		deck TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL,
		issue_count INTEGER NOT NULL DEFAULT 0,
		passed INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_reports_deck ON qc_reports(deck);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON qc_reports(timestamp);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport saves a complete QC report as JSON.
func (hdb *HistoryDB) SaveReport(ctx context.Context, report *model.QCReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	passed := 0
	if report.Passed() {
		passed = 1
	}

	query := `
	INSERT INTO qc_reports (deck, report_json, issue_count, passed)
	VALUES (?, ?, ?, ?)
	`

	if _, err := hdb.db.ExecContext(ctx, query,
		report.Deck,
		string(reportJSON),
		report.IssueCount(),
		passed,
	); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

// GetLatestReport retrieves the most recent report for a deck.
// Returns nil without error when no report exists.
func (hdb *HistoryDB) GetLatestReport(ctx context.Context, deck string) (*model.QCReport, error) {
	query := `
	SELECT report_json FROM qc_reports
	WHERE deck = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, query, deck).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.QCReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// GetLatestPair retrieves the two most recent reports for a deck, newest
// first. This is the comparison unit: latest against the run before it.
// Returns fewer than two reports when the history is shorter.
func (hdb *HistoryDB) GetLatestPair(ctx context.Context, deck string) ([]*model.QCReport, error) {
	query := `
	SELECT report_json FROM qc_reports
	WHERE deck = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 2
	`

	rows, err := hdb.db.QueryContext(ctx, query, deck)
	if err != nil {
		return nil, fmt.Errorf("failed to get report pair: %w", err)
	}
	defer rows.Close()

	return scanReports(rows)
}

// GetHistory retrieves all reports for a deck, newest first.
func (hdb *HistoryDB) GetHistory(ctx context.Context, deck string) ([]*model.QCReport, error) {
	query := `
	SELECT report_json FROM qc_reports
	WHERE deck = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query, deck)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	return scanReports(rows)
}

// scanReports decodes report rows, skipping malformed JSON.
func scanReports(rows *sql.Rows) ([]*model.QCReport, error) {
	var reports []*model.QCReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		var report model.QCReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// ListDecks returns all deck paths with stored reports.
func (hdb *HistoryDB) ListDecks(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT deck FROM qc_reports
	ORDER BY deck
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	var decks []string
	for rows.Next() {
		var deck string
		if err := rows.Scan(&deck); err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		decks = append(decks, deck)
	}

	return decks, rows.Err()
}

// ReportMetadata contains summary information about a stored report.
// This is used for history listings without loading the full report.
type ReportMetadata struct {
	// ID is the unique identifier of the report row.
	ID int64

	// Deck is the checked deck path.
	Deck string

	// Timestamp is when the check was performed.
	Timestamp time.Time

	// IssueCount is the number of QC issues recorded.
	IssueCount int

	// Passed is true when the deck cleared every rule.
	Passed bool
}

// GetHistoryMetadata retrieves report metadata for a deck, newest first.
// This is more efficient than GetHistory when only metadata is needed.
func (hdb *HistoryDB) GetHistoryMetadata(ctx context.Context, deck string) ([]ReportMetadata, error) {
	query := `
	SELECT id, deck, timestamp, issue_count, passed
	FROM qc_reports
	WHERE deck = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := hdb.db.QueryContext(ctx, query, deck)
	if err != nil {
		return nil, fmt.Errorf("failed to get history metadata: %w", err)
	}
	defer rows.Close()

	var results []ReportMetadata
	for rows.Next() {
		var meta ReportMetadata
		var timestamp string
		var passed int

		if err := rows.Scan(&meta.ID, &meta.Deck, &timestamp, &meta.IssueCount, &passed); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		meta.Passed = passed != 0

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetReportByID retrieves a report by its database ID.
// Returns nil without error when the ID is unknown.
func (hdb *HistoryDB) GetReportByID(ctx context.Context, id int64) (*model.QCReport, error) {
	query := `
	SELECT report_json FROM qc_reports
	WHERE id = ?
	`

	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.QCReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
