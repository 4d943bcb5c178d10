package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/seoscan/seoscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writePages(md, report)
	w.writeSiteIssues(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with scan information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.ScanReport) {
	md.H1("SEO Scan Report")
	md.PlainText("")

	rows := [][]string{
		{"Site", "`" + report.SeedURL + "`"},
		{"Scan Date", report.DateScanned.Format("2006-01-02 15:04:05 MST")},
		{"Max Depth", strconv.Itoa(report.MaxDepth)},
		{"Pages Crawled", strconv.Itoa(report.PagesCrawled)},
		{"Status", w.getStatusText(report)},
	}
	if report.SEO != nil {
		rows = append(rows, []string{"Overall Score", scoreBadge(report.SEO.OverallScore)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.ScanReport) string {
	if report.TimedOut {
		return "⚠️ Truncated (partial results)"
	}
	if report.Error != "" {
		return "❌ Error - " + report.Error
	}
	return "✅ Complete"
}

// scoreBadge renders a score with a quick visual grade.
func scoreBadge(score int) string {
	switch {
	case score >= 90:
		return fmt.Sprintf("🟢 %d / 100", score)
	case score >= 70:
		return fmt.Sprintf("🟡 %d / 100", score)
	default:
		return fmt.Sprintf("🔴 %d / 100", score)
	}
}

// writeSummary writes the severity summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.ScanReport) {
	if report.SEO == nil {
		return
	}
	critical, warning, info := report.SEO.CountBySeverity()

	md.H2("Issue Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(critical)},
			{"🟠 Warning", strconv.Itoa(warning)},
			{"⚪ Info", strconv.Itoa(info)},
			{"**Total**", "**" + strconv.Itoa(report.SEO.TotalIssues()) + "**"},
		},
	})
	md.PlainText("")

	if report.SEO.TotalIssues() > 0 {
		w.writePieChart(md, critical, warning, info)
	}

	w.writeAlert(md, critical, warning, report.SEO.TotalIssues())
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, critical, warning, info int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issue Severity Distribution"),
		piechart.WithShowData(true),
	)

	if critical > 0 {
		chart.LabelAndIntValue("Critical", uint64(critical))
	}
	if warning > 0 {
		chart.LabelAndIntValue("Warning", uint64(warning))
	}
	if info > 0 {
		chart.LabelAndIntValue("Info", uint64(info))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, critical, warning, total int) {
	switch {
	case critical > 0:
		md.Cautionf(
			"Critical SEO issues detected! %d critical issue(s) require immediate attention.",
			critical,
		)
	case warning > 0:
		md.Warningf(
			"%d warning(s) found. Fixing them will improve search visibility.",
			warning,
		)
	case total > 0:
		md.Note("Only informational findings detected.")
	default:
		md.Tip("No SEO issues detected.")
	}
	md.PlainText("")
}

// writePages writes the per-page score table and issue details.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.ScanReport) {
	if report.SEO == nil || len(report.SEO.PageReports) == 0 {
		md.H2("Pages")
		md.PlainText("")
		md.PlainText("No pages were crawled.")
		md.PlainText("")
		return
	}

	md.H2("Pages")
	md.PlainText("")

	rows := make([][]string, len(report.SEO.PageReports))
	for i, pr := range report.SEO.PageReports {
		rows[i] = []string{
			truncateString(pr.URL, 60),
			strconv.Itoa(pr.Score),
			strconv.Itoa(len(pr.Issues)),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Score", "Issues"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, pr := range report.SEO.PageReports {
		if len(pr.Issues) == 0 {
			continue
		}
		md.PlainText("### " + truncateString(pr.URL, 80))
		md.PlainText("")
		w.writeIssuesTable(md, pr.Issues)
	}
}

// writeSiteIssues writes findings that span the whole site.
func (w *MarkdownWriter) writeSiteIssues(md *markdown.Markdown, report *model.ScanReport) {
	if report.SEO == nil || len(report.SEO.SiteIssues) == 0 {
		return
	}

	md.H2("Site-Wide Issues")
	md.PlainText("")
	w.writeIssuesTable(md, report.SEO.SiteIssues)
}

// writeIssuesTable writes a table of issues with details.
func (w *MarkdownWriter) writeIssuesTable(md *markdown.Markdown, issues []model.Issue) {
	rows := make([][]string, len(issues))
	for i, is := range issues {
		rows[i] = []string{
			is.Severity.String(),
			is.Category.String(),
			truncateString(is.Message, 70),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Category", "Issue"},
		Rows:   rows,
	})
	md.PlainText("")

	// Add remediation details for every issue that carries them
	for _, is := range issues {
		if is.Recommendation != "" {
			md.Details(truncateString(is.Message, 60), is.Impact+" "+is.Recommendation)
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by seoscan*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
