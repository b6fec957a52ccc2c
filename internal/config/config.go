package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout bounds one full deck check, including an optional
	// LLM plan call. Local extraction and QC finish in milliseconds; the
	// generous value exists entirely for the remote advisor round trip.
	DefaultTimeout = 60 * time.Second

	// DefaultBatchSize of 4 concurrent checks is plenty: each check is a
	// short, CPU-light pass over an in-memory file. Higher values mostly
	// matter when the LLM advisor is enabled for every deck.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "deckqc"

	// DefaultServerAddr is the listen address for the web upload UI.
	DefaultServerAddr = ":8080"

	// DefaultMaxUploadSize limits deck uploads through the web UI.
	// Simulation decks are text; 10MB covers even very large field models
	// while keeping the server safe from arbitrary uploads.
	DefaultMaxUploadSize = 10 * 1024 * 1024 // 10MB
)

// Config holds all configuration options for deckqc.
// It is populated from CLI flags plus an optional config file and passed
// through the application by dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs.
// The number of options is manageable, and nesting would add complexity
// without significant benefit.
type Config struct {
	// Keywords is the recognized section vocabulary. Empty means the
	// standard fourteen-keyword deck vocabulary.
	Keywords []string

	// Timeout bounds a single deck check end to end.
	Timeout time.Duration

	// BatchSize is the number of concurrent checks when processing
	// multiple deck files.
	BatchSize int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .deckqc in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// JSONReport enables JSON report output.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// Decks is the list of deck file paths to check.
	Decks []string

	// DBDir is the directory for the SQLite history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to persist check results for later
	// comparison with the compare command.
	SaveToDB bool

	// LLMPlan enables LLM-generated remediation plans. Requires LLM
	// settings in the config file (or environment); without them the
	// heuristic planner is used and this flag is an error.
	LLMPlan bool

	// ServerAddr is the listen address for the serve command.
	ServerAddr string

	// MaxUploadSize limits deck uploads through the web UI, in bytes.
	MaxUploadSize int64

	// File holds settings loaded from the YAML config file.
	File *File
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero. This also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:       DefaultTimeout,
		BatchSize:     DefaultBatchSize,
		ServerAddr:    DefaultServerAddr,
		MaxUploadSize: DefaultMaxUploadSize,
	}
}

// XDGDataDir returns the XDG data directory for deckqc.
// On Linux: ~/.local/share/deckqc
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for deckqc.
// On Linux: ~/.config/deckqc
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first specific error found; fixing one error often makes
// the rest irrelevant. Called once after CLI parsing, before any checking.
func (c *Config) Validate() error {
	if len(c.Decks) == 0 {
		return ErrNoDeck
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.LLMPlan && (c.File == nil || c.File.LLM == nil || c.File.LLM.Model == "") {
		return ErrLLMNotConfigured
	}
	return nil
}

// EffectiveKeywords returns the section vocabulary to use: the CLI
// override, then the config file vocabulary, then nil (standard set).
func (c *Config) EffectiveKeywords() []string {
	if len(c.Keywords) > 0 {
		return c.Keywords
	}
	if c.File != nil && len(c.File.Keywords) > 0 {
		return c.File.Keywords
	}
	return nil
}
