package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen to be polite toward scanned sites while still
// producing a useful report in a single run.
const (
	// DefaultTimeout is the per-request timeout. 30 seconds is generous for
	// a healthy site; anything slower is itself a finding worth reporting.
	DefaultTimeout = 30 * time.Second

	// DefaultCrawlDepth of 3 covers the home page, section pages, and
	// article pages of a typical site layout. Deeper crawls rarely surface
	// new issue categories and multiply scan time.
	DefaultCrawlDepth = 3

	// DefaultBatchSize of 2 concurrent site scans keeps a multi-site run
	// from competing with itself for bandwidth. Each scan already runs
	// several fetch workers internally.
	DefaultBatchSize = 2

	// DefaultMaxPages is the maximum number of pages to crawl per site.
	// This prevents runaway crawling on large or infinitely-generating sites.
	// Users can override this via the --max-pages CLI flag.
	DefaultMaxPages = 100

	// DefaultConcurrency is the number of concurrent page fetches within a
	// single site scan. Four workers saturate most small sites without
	// looking like abuse in the server logs.
	DefaultConcurrency = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "seoscan"

	// DefaultCrawlDelay is the per-host delay between requests during
	// crawling. This is a politeness setting; 1 second is conservative and
	// respectful of server resources. Can be adjusted via --delay.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultUserAgent identifies seoscan in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify scanner traffic in their logs.
	DefaultUserAgent = "seoscan/1.0 (+https://github.com/seoscan/seoscan)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 10MB is far beyond any sane HTML page while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultReportFile is the report output path used when --output is not
	// given and a file format was requested.
	DefaultReportFile = "seo_report.json"
)

// Config holds all configuration options for seoscan.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Timeout is the timeout for each HTTP request.
	// This applies to individual requests, not the overall scan duration.
	Timeout time.Duration

	// CrawlDepth is the maximum link depth for web crawling.
	// Depth 0 means only fetch the seed page.
	// Higher values find more content but take longer and use more resources.
	CrawlDepth int

	// MaxPages is the maximum number of pages to crawl per site.
	// This prevents runaway crawling on large or infinitely-generating sites.
	// A value of 0 means use the default (DefaultMaxPages).
	MaxPages int

	// Concurrency is the number of concurrent page fetches within one scan.
	// A value of 0 means use the default (DefaultConcurrency).
	Concurrency int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of concurrent scans when processing multiple sites.
	// Higher values increase throughput but may overwhelm system resources.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .seoscan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the config file.
	// This is populated by LoadConfigFile and used during scanning.
	SiteConfigs *File

	// JSONReport enables JSON report output instead of human-readable format.
	// When true, outputs the scored report as JSON.
	// When false, outputs human-readable simple report (default).
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of human-readable format.
	// When true, outputs GitHub Flavored Markdown with tables, alerts, and pie charts.
	// When false, outputs human-readable simple report (default).
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// Targets is the list of seed URLs to scan.
	// Must contain at least one http or https URL.
	Targets []string

	// IgnoreRobots disables robots.txt checking entirely.
	// Disallow rules and Crawl-delay directives are not fetched or applied.
	// The politeness delay between requests still applies.
	IgnoreRobots bool

	// DBDir is the directory path for storing the SQLite database.
	// When set, scan results are saved to the database for historical comparison.
	// When empty, scan results are not persisted.
	// Defaults to XDG data directory (~/.local/share/seoscan on Linux).
	DBDir string

	// SaveToDB indicates whether to save scan results to the database.
	// This is automatically set to true when DBDir is configured.
	SaveToDB bool

	// CrawlDelay is the per-host delay between HTTP requests during crawling.
	// This is a "politeness" setting to avoid overwhelming sites.
	// A robots.txt Crawl-delay directive can stretch it further, never shrink it.
	CrawlDelay time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	// A descriptive User-Agent helps site operators identify scanner traffic.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory exhaustion.
	// Set to 0 to use the default (10MB).
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, depth).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		CrawlDepth:  DefaultCrawlDepth,
		MaxPages:    DefaultMaxPages,
		Concurrency: DefaultConcurrency,
		BatchSize:   DefaultBatchSize,
		CrawlDelay:  DefaultCrawlDelay,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for seoscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/seoscan
// On macOS: ~/Library/Application Support/seoscan
// On Windows: %LOCALAPPDATA%\seoscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for seoscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/seoscan
// On macOS: ~/Library/Application Support/seoscan
// On Windows: %APPDATA%\seoscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for seoscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/seoscan
// On macOS: ~/Library/Caches/seoscan
// On Windows: %LOCALAPPDATA%\seoscan\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any scanning begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one site to scan
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// BatchSize must be positive; zero would mean no scanning
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// CrawlDepth must be non-negative; depth 0 is a single-page scan
	if c.CrawlDepth < 0 {
		return ErrInvalidDepth
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// CrawlDelay must be non-negative
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	// MaxBodySize must be non-negative; 0 means use the default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
