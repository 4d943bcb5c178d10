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

	"github.com/seoscan/seoscan/internal/model"
)

// ScanDB provides SQLite-based storage for crawl data and scan reports.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all scanned sites
// rather than one file per site. This simplifies history queries across
// sites and backup/restore operations.
type ScanDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ScanDB behavior.
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

// Open opens or creates a ScanDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ScanDB, error) {
	dbPath := filepath.Join(dbDir, "seoscan.db")

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

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
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

	// SQLite only supports one writer; multiple readers can improve
	// performance but a single connection keeps things predictable.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &ScanDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *ScanDB) Close() error {
	return sdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (sdb *ScanDB) createTables() error {
	schema := `
	-- Page records store individual page fetches
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		site TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		status_code INTEGER,
		title TEXT,
		load_time_ms INTEGER,
		word_count INTEGER,
		score INTEGER,
		UNIQUE(url, site)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	CREATE INDEX IF NOT EXISTS idx_pages_site ON pages(site);
	CREATE INDEX IF NOT EXISTS idx_pages_timestamp ON pages(timestamp);

	-- Scan reports store complete scan results as JSON
	CREATE TABLE IF NOT EXISTS scan_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		overall_score INTEGER DEFAULT 0,
		pages_crawled INTEGER DEFAULT 0,
		report_json TEXT NOT NULL,
		issue_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_site ON scan_reports(site);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON scan_reports(timestamp);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// PageRecord represents a stored page result.
type PageRecord struct {
	ID         int64
	URL        string
	Site       string
	Timestamp  time.Time
	StatusCode int
	Title      string
	LoadTimeMS int64
	WordCount  int
	Score      int
}

// InsertPageRecord inserts or updates a page record.
// Uses UPSERT to handle duplicates (same URL + site).
func (sdb *ScanDB) InsertPageRecord(ctx context.Context, record *PageRecord) (int64, error) {
	query := `
	INSERT INTO pages (url, site, status_code, title, load_time_ms, word_count, score)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url, site) DO UPDATE SET
		status_code = excluded.status_code,
		title = excluded.title,
		load_time_ms = excluded.load_time_ms,
		word_count = excluded.word_count,
		score = excluded.score,
		timestamp = CURRENT_TIMESTAMP
	`

	result, err := sdb.db.ExecContext(ctx, query,
		record.URL,
		record.Site,
		record.StatusCode,
		record.Title,
		record.LoadTimeMS,
		record.WordCount,
		record.Score,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert page record: %w", err)
	}

	return result.LastInsertId()
}

// GetPageRecord retrieves a page record by URL and site.
func (sdb *ScanDB) GetPageRecord(ctx context.Context, url, site string) (*PageRecord, error) {
	query := `
	SELECT id, url, site, timestamp, status_code, title, load_time_ms, word_count, score
	FROM pages
	WHERE url = ? AND site = ?
	`

	var record PageRecord
	var timestamp string

	err := sdb.db.QueryRowContext(ctx, query, url, site).Scan(
		&record.ID,
		&record.URL,
		&record.Site,
		&timestamp,
		&record.StatusCode,
		&record.Title,
		&record.LoadTimeMS,
		&record.WordCount,
		&record.Score,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page record: %w", err)
	}

	record.Timestamp = parseTimestamp(timestamp)
	return &record, nil
}

// HasRecentCrawl checks if a URL was crawled within the specified duration.
func (sdb *ScanDB) HasRecentCrawl(ctx context.Context, url string, duration time.Duration) (bool, error) {
	query := `
	SELECT COUNT(*) FROM pages
	WHERE url = ? AND timestamp > datetime('now', ?)
	`

	// SQLite datetime modifier format
	modifier := fmt.Sprintf("-%d seconds", int(duration.Seconds()))

	var count int
	err := sdb.db.QueryRowContext(ctx, query, url, modifier).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check recent crawl: %w", err)
	}

	return count > 0, nil
}

// SaveScanReport saves a complete scan report as JSON, along with the page
// records that back incremental re-crawl decisions.
func (sdb *ScanDB) SaveScanReport(ctx context.Context, report *model.ScanReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	overall := 0
	summary := map[string]int{
		"critical": 0,
		"warning":  0,
		"info":     0,
	}
	if report.SEO != nil {
		overall = report.SEO.OverallScore
		critical, warning, info := report.SEO.CountBySeverity()
		summary["critical"] = critical
		summary["warning"] = warning
		summary["info"] = info
	}
	summaryJSON, _ := json.Marshal(summary) //nolint:errcheck,errchkjson // summary is a simple map; Marshal won't fail

	query := `
	INSERT INTO scan_reports (site, overall_score, pages_crawled, report_json, issue_summary)
	VALUES (?, ?, ?, ?, ?)
	`

	_, err = sdb.db.ExecContext(ctx, query,
		report.SeedURL,
		overall,
		report.PagesCrawled,
		string(reportJSON),
		string(summaryJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save scan report: %w", err)
	}

	scores := make(map[string]int)
	if report.SEO != nil {
		for _, pr := range report.SEO.PageReports {
			scores[pr.URL] = pr.Score
		}
	}

	for _, page := range report.Pages {
		record := &PageRecord{
			URL:        page.URL,
			Site:       report.SeedURL,
			StatusCode: page.StatusCode,
			Title:      page.Title,
			LoadTimeMS: page.LoadTimeMillis,
			WordCount:  page.WordCount,
			Score:      scores[page.URL],
		}
		if _, err := sdb.InsertPageRecord(ctx, record); err != nil {
			return fmt.Errorf("failed to save page record for %s: %w", page.URL, err)
		}
	}

	return nil
}

// GetLatestScanReport retrieves the most recent scan report for a site.
func (sdb *ScanDB) GetLatestScanReport(ctx context.Context, site string) (*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE site = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := sdb.db.QueryRowContext(ctx, query, site).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// GetRecentScanReports retrieves the most recent n scan reports for a site,
// newest first. Used by the compare command.
func (sdb *ScanDB) GetRecentScanReports(ctx context.Context, site string, n int) ([]*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE site = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`

	rows, err := sdb.db.QueryContext(ctx, query, site, n)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	var reports []*model.ScanReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		var report model.ScanReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// ListScannedSites returns a list of all scanned sites.
func (sdb *ScanDB) ListScannedSites(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT site FROM scan_reports
	ORDER BY site
	`

	rows, err := sdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}

	return sites, rows.Err()
}

// ScanReportMetadata contains summary information about a scan report.
// This is used for displaying scan history without loading the full report.
type ScanReportMetadata struct {
	// ID is the unique identifier of the scan report in the database.
	ID int64

	// Site is the scanned seed URL.
	Site string

	// Timestamp is when the scan was performed.
	Timestamp time.Time

	// OverallScore is the site score at the time of the scan.
	OverallScore int

	// PagesCrawled is how many pages the scan covered.
	PagesCrawled int

	// IssueSummary contains counts of issues by severity level.
	IssueSummary map[string]int
}

// GetScanHistoryWithMetadata retrieves scan report metadata for a site.
// This is more efficient than loading full reports when only metadata
// is needed.
func (sdb *ScanDB) GetScanHistoryWithMetadata(ctx context.Context, site string) ([]ScanReportMetadata, error) {
	query := `
	SELECT id, site, timestamp, overall_score, pages_crawled, issue_summary
	FROM scan_reports
	WHERE site = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := sdb.db.QueryContext(ctx, query, site)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	var results []ScanReportMetadata
	for rows.Next() {
		var meta ScanReportMetadata
		var timestamp string
		var summaryJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Site, &timestamp, &meta.OverallScore, &meta.PagesCrawled, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)

		if summaryJSON.Valid && summaryJSON.String != "" {
			if err := json.Unmarshal([]byte(summaryJSON.String), &meta.IssueSummary); err != nil {
				meta.IssueSummary = make(map[string]int)
			}
		} else {
			meta.IssueSummary = make(map[string]int)
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetScanReportByID retrieves a scan report by its database ID.
func (sdb *ScanDB) GetScanReportByID(ctx context.Context, id int64) (*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE id = ?
	`

	var reportJSON string
	err := sdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	var report model.ScanReport
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
// SQLite may return timestamps in different formats depending on
// configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
