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

	"github.com/seoscan/seoscan/internal/config"
	"github.com/seoscan/seoscan/internal/database"
	"github.com/seoscan/seoscan/internal/model"
	"github.com/spf13/cobra"
)

// Constants for score direction and summary messages.
const (
	scoreDirectionWorsened  = "worsened"
	scoreDirectionImproved  = "improved"
	scoreDirectionUnchanged = "unchanged"
	noIssuesMessage         = "No issues"
)

// NewCompareCmd creates the compare command.
// This command compares scan results with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [url]",
		Short: "Compare scan results with historical data",
		Long: `Compare displays differences between the current and previous scan results.

This command retrieves historical scan data from the database and shows:
- New issues that appeared since the last scan
- Resolved issues that are no longer present
- The change in overall score and per-severity issue counts

The comparison requires at least two scans in the database for the specified
site. Use 'seoscan scan' to perform scans and save results.

Examples:
  # Compare latest two scans for a site
  seoscan compare https://example.com

  # List all scan history for a site
  seoscan compare --list https://example.com

  # Compare with a specific historical scan by ID
  seoscan compare --with-scan-id 5 https://example.com

  # Compare scans since a specific date
  seoscan compare --since "2026-01-01" https://example.com

  # Output comparison in JSON format
  seoscan compare --json https://example.com

  # List all scanned sites in the database
  seoscan compare --list-sites`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List scan history for the specified site")
	cmd.Flags().BoolP("list-sites", "L", false,
		"List all scanned sites in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-scan-id", "i", 0,
		"Compare with a specific scan by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first scan after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	// Handle --list-sites flag first (requires database but no site)
	listSites, err := cmd.Flags().GetBool("list-sites")
	if err != nil {
		return err
	}

	// Validate arguments before opening database (unless --list-sites)
	// This prevents database lock issues when validation fails
	var site string
	if !listSites {
		// Require a site URL for other operations
		if len(args) == 0 {
			return errors.New("site URL is required (use --list-sites to see available sites)")
		}

		// Normalize the URL so it matches what scans were saved under
		site, err = normalizeSeed(args[0])
		if err != nil {
			return fmt.Errorf("invalid URL: %w", err)
		}
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	// Open database
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Handle --list-sites flag
	if listSites {
		return listScannedSites(ctx, db)
	}

	// Handle --list flag
	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listScanHistory(ctx, db, site)
	}

	// Get output format flags
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	// Get comparison target flags
	withScanID, err := cmd.Flags().GetInt64("with-scan-id")
	if err != nil {
		return err
	}
	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}

	// Perform comparison
	return runComparison(ctx, db, site, withScanID, sinceDate, jsonOutput, markdownOutput)
}

// listScannedSites lists all sites that have scan records in the database.
func listScannedSites(ctx context.Context, db *database.ScanDB) error {
	sites, err := db.ListScannedSites(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sites: %w", err)
	}

	if len(sites) == 0 {
		fmt.Println("No scanned sites found in the database.")
		fmt.Println("\nUse 'seoscan scan <url>' to scan a site.")
		return nil
	}

	fmt.Printf("Scanned sites (%d):\n\n", len(sites))
	for _, site := range sites {
		fmt.Printf("  • %s\n", site)
	}
	fmt.Println("\nUse 'seoscan compare --list <url>' to see scan history for a site.")

	return nil
}

// listScanHistory lists all scan records for a specific site.
func listScanHistory(ctx context.Context, db *database.ScanDB, site string) error {
	reports, err := db.GetScanHistoryWithMetadata(ctx, site)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(reports) == 0 {
		fmt.Printf("No scan history found for %s\n", site)
		fmt.Println("\nUse 'seoscan scan' to scan this site.")
		return nil
	}

	fmt.Printf("Scan history for %s (%d scans):\n\n", site, len(reports))
	fmt.Printf("  %-6s  %-20s  %-6s  %-6s  %s\n", "ID", "Date", "Score", "Pages", "Issues")
	fmt.Println("  " + strings.Repeat("-", 60))

	for _, meta := range reports {
		issueSummary := formatIssueSummary(meta.IssueSummary)
		fmt.Printf("  %-6d  %-20s  %-6d  %-6d  %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			meta.OverallScore,
			meta.PagesCrawled,
			issueSummary,
		)
	}

	fmt.Println("\nUse 'seoscan compare <url>' to compare the latest two scans.")
	fmt.Println("Use 'seoscan compare --with-scan-id <id> <url>' to compare with a specific scan.")

	return nil
}

// formatIssueSummary formats the issue summary map into a human-readable string.
func formatIssueSummary(summary map[string]int) string {
	if summary == nil {
		return "N/A"
	}

	var parts []string
	if v := summary["critical"]; v > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", v))
	}
	if v := summary["warning"]; v > 0 {
		parts = append(parts, fmt.Sprintf("W:%d", v))
	}
	if v := summary["info"]; v > 0 {
		parts = append(parts, fmt.Sprintf("I:%d", v))
	}

	if len(parts) == 0 {
		return noIssuesMessage
	}
	return strings.Join(parts, " ")
}

// runComparison performs the actual comparison between scan reports.
func runComparison(ctx context.Context, db *database.ScanDB, site string, withScanID int64, sinceDate string, jsonOutput, markdownOutput bool) error {
	// Two reports cover the default case; fetch more when a historical
	// target may be further back
	limit := 2
	if withScanID > 0 || sinceDate != "" {
		limit = 1000
	}

	reports, err := db.GetRecentScanReports(ctx, site, limit)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(reports) == 0 {
		return fmt.Errorf("no scan history found for %s", site)
	}

	if len(reports) < 2 && withScanID == 0 && sinceDate == "" {
		return fmt.Errorf("at least 2 scans are required for comparison (found %d)", len(reports))
	}

	// Determine which reports to compare
	var currentReport, previousReport *model.ScanReport

	// Latest report is always the current one
	currentReport = reports[0]

	if withScanID > 0 {
		// Find the report with the specified ID
		previousReport, err = db.GetScanReportByID(ctx, withScanID)
		if err != nil {
			return fmt.Errorf("failed to get scan with ID %d: %w", withScanID, err)
		}
		if previousReport == nil {
			return fmt.Errorf("scan with ID %d not found", withScanID)
		}
		// Validate that the scan ID belongs to the same site
		if previousReport.SeedURL != site {
			return fmt.Errorf("scan ID %d belongs to %s, not %s", withScanID, previousReport.SeedURL, site)
		}
	} else if sinceDate != "" {
		// Parse the date and find the first (oldest) report at or after the specified date
		parsedDate, err := time.Parse("2006-01-02", sinceDate)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}

		// Reports are sorted by timestamp DESC (newest first), so iterate in reverse
		// to find the first (oldest) report at or after the date
		for i := len(reports) - 1; i >= 0; i-- {
			r := reports[i]
			if r.DateScanned.After(parsedDate) || r.DateScanned.Equal(parsedDate) {
				previousReport = r
				break // Stop at the first (oldest) matching report
			}
		}
		if previousReport == nil {
			return fmt.Errorf("no scans found since %s", sinceDate)
		}
		// If only one scan matches and it's the current report, we can't compare
		if previousReport == currentReport {
			return fmt.Errorf("only one scan found since %s; at least 2 scans are required for comparison", sinceDate)
		}
	} else {
		// Default: compare with the previous scan
		previousReport = reports[1]
	}

	// Generate comparison result
	comparison := compareReports(previousReport, currentReport)

	// Output the result
	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	if markdownOutput {
		return outputComparisonMarkdown(comparison)
	}
	return outputComparisonText(comparison)
}

// ComparisonResult holds the result of comparing two scan reports.
type ComparisonResult struct {
	// Site is the scanned seed URL.
	Site string `json:"site"`

	// PreviousScan contains metadata about the previous scan.
	PreviousScan ScanMetadata `json:"previous_scan"`

	// CurrentScan contains metadata about the current scan.
	CurrentScan ScanMetadata `json:"current_scan"`

	// NewIssues contains issues that are new in the current scan.
	NewIssues []model.Issue `json:"new_issues,omitempty"`

	// ResolvedIssues contains issues that were in the previous scan but not in current.
	ResolvedIssues []model.Issue `json:"resolved_issues,omitempty"`

	// UnchangedCount is the number of issues that remain unchanged.
	UnchangedCount int `json:"unchanged_count"`

	// ScoreChange describes the overall change between the scans.
	ScoreChange ScoreChange `json:"score_change"`
}

// ScanMetadata contains metadata about a scan for comparison display.
type ScanMetadata struct {
	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// OverallScore is the site score, 0-100.
	OverallScore int `json:"overall_score"`

	// PagesCrawled is how many pages the scan covered.
	PagesCrawled int `json:"pages_crawled"`

	// TotalIssues is the total number of issues in this scan.
	TotalIssues int `json:"total_issues"`

	// CriticalCount is the number of critical issues.
	CriticalCount int `json:"critical_count"`

	// WarningCount is the number of warning issues.
	WarningCount int `json:"warning_count"`

	// InfoCount is the number of informational issues.
	InfoCount int `json:"info_count"`
}

// ScoreChange describes the change between two scans.
type ScoreChange struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// ScoreDelta is the change in overall score. Positive means better.
	ScoreDelta int `json:"score_delta"`

	// CriticalDelta is the change in critical issue count.
	CriticalDelta int `json:"critical_delta"`

	// WarningDelta is the change in warning issue count.
	WarningDelta int `json:"warning_delta"`

	// InfoDelta is the change in informational issue count.
	InfoDelta int `json:"info_delta"`
}

// compareReports compares two scan reports and generates a comparison result.
func compareReports(previous, current *model.ScanReport) *ComparisonResult {
	result := &ComparisonResult{
		Site:         current.SeedURL,
		PreviousScan: scanMetadata(previous),
		CurrentScan:  scanMetadata(current),
	}

	// Build issue maps for comparison
	previousIssues := issueMap(previous)
	currentIssues := issueMap(current)

	// Find new issues (in current but not in previous)
	for key, issue := range currentIssues {
		if _, exists := previousIssues[key]; !exists {
			result.NewIssues = append(result.NewIssues, issue)
		}
	}

	// Find resolved issues (in previous but not in current)
	for key, issue := range previousIssues {
		if _, exists := currentIssues[key]; !exists {
			result.ResolvedIssues = append(result.ResolvedIssues, issue)
		} else {
			result.UnchangedCount++
		}
	}

	// Calculate score change
	result.ScoreChange = calculateScoreChange(result.PreviousScan, result.CurrentScan)

	return result
}

// scanMetadata extracts comparison metadata from a scan report.
func scanMetadata(r *model.ScanReport) ScanMetadata {
	meta := ScanMetadata{
		DateScanned:  r.DateScanned,
		PagesCrawled: r.PagesCrawled,
	}
	if r.SEO != nil {
		critical, warning, info := r.SEO.CountBySeverity()
		meta.OverallScore = r.SEO.OverallScore
		meta.TotalIssues = r.SEO.TotalIssues()
		meta.CriticalCount = critical
		meta.WarningCount = warning
		meta.InfoCount = info
	}
	return meta
}

// issueMap flattens a report's page and site issues into a keyed map.
func issueMap(r *model.ScanReport) map[string]model.Issue {
	issues := make(map[string]model.Issue)
	if r.SEO == nil {
		return issues
	}
	for _, pr := range r.SEO.PageReports {
		for _, is := range pr.Issues {
			issues[issueKey(is)] = is
		}
	}
	for _, is := range r.SEO.SiteIssues {
		issues[issueKey(is)] = is
	}
	return issues
}

// issueKey generates a unique key for an issue for comparison purposes.
func issueKey(is model.Issue) string {
	return is.Kind + "|" + is.AffectedURL + "|" + is.Message
}

// calculateScoreChange calculates the change between two scans.
// Direction follows the overall score: a higher score is an improvement.
func calculateScoreChange(previous, current ScanMetadata) ScoreChange {
	change := ScoreChange{
		ScoreDelta:    current.OverallScore - previous.OverallScore,
		CriticalDelta: current.CriticalCount - previous.CriticalCount,
		WarningDelta:  current.WarningCount - previous.WarningCount,
		InfoDelta:     current.InfoCount - previous.InfoCount,
	}

	switch {
	case change.ScoreDelta > 0:
		change.Direction = scoreDirectionImproved
	case change.ScoreDelta < 0:
		change.Direction = scoreDirectionWorsened
	default:
		change.Direction = scoreDirectionUnchanged
	}

	return change
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(result *ComparisonResult) error {
	fmt.Printf("# Scan Comparison: %s\n\n", result.Site)

	// Score change summary
	fmt.Println("## Summary")
	fmt.Printf("\n**Status:** %s\n\n", formatScoreDirection(result.ScoreChange.Direction))

	// Scan metadata table
	fmt.Println("| Metric | Previous | Current | Change |")
	fmt.Println("|--------|----------|---------|--------|")
	fmt.Printf("| Date | %s | %s | - |\n",
		result.PreviousScan.DateScanned.Format("2006-01-02 15:04"),
		result.CurrentScan.DateScanned.Format("2006-01-02 15:04"))
	fmt.Printf("| Overall Score | %d | %d | %s |\n",
		result.PreviousScan.OverallScore,
		result.CurrentScan.OverallScore,
		formatDelta(result.ScoreChange.ScoreDelta))
	fmt.Printf("| Pages Crawled | %d | %d | %s |\n",
		result.PreviousScan.PagesCrawled,
		result.CurrentScan.PagesCrawled,
		formatDelta(result.CurrentScan.PagesCrawled-result.PreviousScan.PagesCrawled))
	fmt.Printf("| Critical | %d | %d | %s |\n",
		result.PreviousScan.CriticalCount,
		result.CurrentScan.CriticalCount,
		formatDelta(result.ScoreChange.CriticalDelta))
	fmt.Printf("| Warning | %d | %d | %s |\n",
		result.PreviousScan.WarningCount,
		result.CurrentScan.WarningCount,
		formatDelta(result.ScoreChange.WarningDelta))
	fmt.Printf("| Info | %d | %d | %s |\n",
		result.PreviousScan.InfoCount,
		result.CurrentScan.InfoCount,
		formatDelta(result.ScoreChange.InfoDelta))
	fmt.Printf("| **Total Issues** | **%d** | **%d** | **%s** |\n",
		result.PreviousScan.TotalIssues,
		result.CurrentScan.TotalIssues,
		formatDelta(result.CurrentScan.TotalIssues-result.PreviousScan.TotalIssues))

	// New issues
	if len(result.NewIssues) > 0 {
		fmt.Printf("\n## New Issues (%d)\n\n", len(result.NewIssues))
		for _, is := range result.NewIssues {
			fmt.Printf("- **[%s]** %s: %s\n", is.Severity, is.Kind, is.Message)
			if is.AffectedURL != "" {
				fmt.Printf("  - URL: `%s`\n", is.AffectedURL)
			}
		}
	}

	// Resolved issues
	if len(result.ResolvedIssues) > 0 {
		fmt.Printf("\n## Resolved Issues (%d)\n\n", len(result.ResolvedIssues))
		for _, is := range result.ResolvedIssues {
			fmt.Printf("- ~~**[%s]** %s: %s~~\n", is.Severity, is.Kind, is.Message)
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Printf("\n---\n\n*%d issues unchanged*\n", result.UnchangedCount)
	}

	return nil
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Scan Comparison: %s\n", result.Site)
	fmt.Println(strings.Repeat("=", 60))

	// Score change summary
	fmt.Printf("\nStatus: %s\n", formatScoreDirection(result.ScoreChange.Direction))

	// Scan dates
	fmt.Printf("\nPrevious scan: %s (score %d, %d pages)\n",
		result.PreviousScan.DateScanned.Format("2006-01-02 15:04:05"),
		result.PreviousScan.OverallScore,
		result.PreviousScan.PagesCrawled)
	fmt.Printf("Current scan:  %s (score %d, %d pages)\n",
		result.CurrentScan.DateScanned.Format("2006-01-02 15:04:05"),
		result.CurrentScan.OverallScore,
		result.CurrentScan.PagesCrawled)

	// Summary table
	fmt.Println("\nIssue Summary:")
	fmt.Printf("  %-10s  %-10s  %-10s  %-10s\n", "Severity", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Critical",
		result.PreviousScan.CriticalCount, result.CurrentScan.CriticalCount,
		formatDelta(result.ScoreChange.CriticalDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Warning",
		result.PreviousScan.WarningCount, result.CurrentScan.WarningCount,
		formatDelta(result.ScoreChange.WarningDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Info",
		result.PreviousScan.InfoCount, result.CurrentScan.InfoCount,
		formatDelta(result.ScoreChange.InfoDelta))
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Total",
		result.PreviousScan.TotalIssues, result.CurrentScan.TotalIssues,
		formatDelta(result.CurrentScan.TotalIssues-result.PreviousScan.TotalIssues))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Score",
		result.PreviousScan.OverallScore, result.CurrentScan.OverallScore,
		formatDelta(result.ScoreChange.ScoreDelta))

	// New issues
	if len(result.NewIssues) > 0 {
		fmt.Printf("\nNew Issues (%d):\n", len(result.NewIssues))
		for _, is := range result.NewIssues {
			fmt.Printf("  [+] [%s] %s: %s\n", is.Severity, is.Kind, is.Message)
			if is.AffectedURL != "" {
				fmt.Printf("      URL: %s\n", is.AffectedURL)
			}
		}
	}

	// Resolved issues
	if len(result.ResolvedIssues) > 0 {
		fmt.Printf("\nResolved Issues (%d):\n", len(result.ResolvedIssues))
		for _, is := range result.ResolvedIssues {
			fmt.Printf("  [-] [%s] %s: %s\n", is.Severity, is.Kind, is.Message)
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Printf("\nUnchanged: %d issues\n", result.UnchangedCount)
	}

	return nil
}

// formatScoreDirection formats the score change direction for display.
func formatScoreDirection(direction string) string {
	switch direction {
	case scoreDirectionImproved:
		return "IMPROVED (score increased)"
	case scoreDirectionWorsened:
		return "WORSENED (score decreased)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
