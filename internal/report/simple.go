package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/seoscan/seoscan/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no issues are shown.
	showEmpty bool

	// verbose enables remediation detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with impact and recommendations.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writePages(&sb, report)
	w.writeSiteIssues(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with scan information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          SEO SCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Site:           %s\n", report.SeedURL))
	sb.WriteString(fmt.Sprintf("Scan Date:      %s\n", report.DateScanned.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Max Depth:      %d\n", report.MaxDepth))
	sb.WriteString(fmt.Sprintf("Pages Crawled:  %d\n", report.PagesCrawled))

	switch {
	case report.TimedOut:
		sb.WriteString("Status:         TRUNCATED (partial results)\n")
	case report.Error != "":
		sb.WriteString(fmt.Sprintf("Status:         ERROR - %s\n", report.Error))
	default:
		sb.WriteString("Status:         Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the score and severity summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.ScanReport) {
	if report.SEO == nil {
		return
	}
	critical, warning, info := report.SEO.CountBySeverity()

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  OVERALL SCORE: %d / 100\n\n", report.SEO.OverallScore))
	sb.WriteString(fmt.Sprintf("  CRITICAL: %d\n", critical))
	sb.WriteString(fmt.Sprintf("  WARNING:  %d\n", warning))
	sb.WriteString(fmt.Sprintf("  INFO:     %d\n", info))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  TOTAL:    %d issues\n", report.SEO.TotalIssues()))
	sb.WriteString("\n")
}

// writePages writes every page with its score and issues.
func (w *SimpleWriter) writePages(sb *strings.Builder, report *model.ScanReport) {
	if report.SEO == nil || (len(report.SEO.PageReports) == 0 && !w.showEmpty) {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, pr := range report.SEO.PageReports {
		sb.WriteString(fmt.Sprintf("[%3d] %s\n", pr.Score, pr.URL))
		for _, is := range pr.Issues {
			w.writeIssue(sb, is)
		}
		if len(pr.Issues) == 0 && w.showEmpty {
			sb.WriteString("      no issues\n")
		}
	}
	sb.WriteString("\n")
}

// writeSiteIssues writes site-wide findings.
func (w *SimpleWriter) writeSiteIssues(sb *strings.Builder, report *model.ScanReport) {
	if report.SEO == nil || (len(report.SEO.SiteIssues) == 0 && !w.showEmpty) {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SITE-WIDE ISSUES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.SEO.SiteIssues) == 0 {
		sb.WriteString("  No site-wide issues\n")
	}
	for _, is := range report.SEO.SiteIssues {
		w.writeIssue(sb, is)
	}
	sb.WriteString("\n")
}

// writeIssue writes a single issue line with its severity indicator.
func (w *SimpleWriter) writeIssue(sb *strings.Builder, is model.Issue) {
	sb.WriteString(fmt.Sprintf("  [%s] %s: %s\n", w.getSeverityIndicator(is.Severity), is.Category, is.Message))
	if w.verbose {
		if is.Impact != "" {
			sb.WriteString(fmt.Sprintf("        Impact: %s\n", is.Impact))
		}
		if is.Recommendation != "" {
			sb.WriteString(fmt.Sprintf("        Fix: %s\n", is.Recommendation))
		}
	}
}

// getSeverityIndicator returns a visual indicator for the severity level.
func (w *SimpleWriter) getSeverityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityWarning:
		return "!"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by seoscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
