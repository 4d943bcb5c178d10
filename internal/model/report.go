package model

import "time"

// Issue is one concrete finding attached to a page or to the whole site.
// Kind, impact, and recommendation carry the catalog metadata from
// severity.go; the rest describes the specific occurrence.
type Issue struct {
	// Kind identifies the issue in the catalog (severity.go).
	Kind string `json:"kind"`

	// Category groups the issue by page aspect.
	Category Category `json:"category"`

	// Severity is INFO, WARNING, or CRITICAL.
	Severity Severity `json:"severity"`

	// Message describes the specific instance ("2 images missing alt text").
	Message string `json:"message"`

	// AffectedURL is the page the issue belongs to (the seed for site
	// issues).
	AffectedURL string `json:"affectedUrl"`

	// Impact explains why the issue matters.
	Impact string `json:"impact,omitempty"`

	// Recommendation suggests the fix.
	Recommendation string `json:"recommendation,omitempty"`
}

// NewIssue builds an Issue for the given catalog kind, filling category,
// severity, impact, and recommendation from the central mapping.
func NewIssue(kind, message, affectedURL string) Issue {
	info := GetIssueInfo(kind)
	return Issue{
		Kind:           kind,
		Category:       info.Category,
		Severity:       info.Severity,
		Message:        message,
		AffectedURL:    affectedURL,
		Impact:         info.Impact,
		Recommendation: info.Recommendation,
	}
}

// PageReport is the scored view of a single page.
type PageReport struct {
	// URL is the page URL.
	URL string `json:"url"`

	// Score is the page score, 0-100.
	Score int `json:"score"`

	// Issues lists every finding for the page in check order.
	Issues []Issue `json:"issues"`
}

// SEOReport is the final aggregated report. It is created once by the
// scorer, after the crawl finishes, and immutable thereafter.
type SEOReport struct {
	// OverallScore is the arithmetic mean of page scores, rounded.
	OverallScore int `json:"overallScore"`

	// PageReports preserves the order of the input page results.
	PageReports []PageReport `json:"pageReports"`

	// SiteIssues are findings computed across all pages.
	SiteIssues []Issue `json:"siteIssues"`
}

// CountBySeverity tallies all issues (page and site level) per severity.
func (r *SEOReport) CountBySeverity() (critical, warning, info int) {
	count := func(issues []Issue) {
		for _, is := range issues {
			switch is.Severity {
			case SeverityCritical:
				critical++
			case SeverityWarning:
				warning++
			case SeverityInfo:
				info++
			}
		}
	}
	for _, pr := range r.PageReports {
		count(pr.Issues)
	}
	count(r.SiteIssues)
	return critical, warning, info
}

// TotalIssues returns the number of issues across all pages and the site.
func (r *SEOReport) TotalIssues() int {
	n := len(r.SiteIssues)
	for _, pr := range r.PageReports {
		n += len(pr.Issues)
	}
	return n
}

// ScanReport is the top-level scan result: crawl metadata, the raw page
// results in completion order, and the aggregated SEO report.
//
// Design decision: We keep raw pages and the scored report in one structure
// to simplify serialization and history storage; the scored SEOReport is
// what the --output file contains, the wrapper is what --json prints.
type ScanReport struct {
	// SeedURL is the normalized crawl starting point.
	SeedURL string `json:"seedUrl"`

	// DateScanned is when the crawl started.
	DateScanned time.Time `json:"dateScanned"`

	// MaxDepth is the configured depth bound.
	MaxDepth int `json:"maxDepth"`

	// PagesCrawled is len(Pages), duplicated for cheap history queries.
	PagesCrawled int `json:"pagesCrawled"`

	// TimedOut is true when the crawl was cancelled or hit its page budget
	// before the frontier drained; the report covers what was collected.
	TimedOut bool `json:"timedOut"`

	// Pages holds the per-page analysis results.
	Pages []*PageResult `json:"pages"`

	// SEO is the aggregated, scored report.
	SEO *SEOReport `json:"seo,omitempty"`

	// Error holds a fatal crawl error message, if any.
	Error string `json:"error,omitempty"`
}

// NewScanReport creates a report shell for the given seed.
func NewScanReport(seedURL string, maxDepth int) *ScanReport {
	return &ScanReport{
		SeedURL:     NormalizeURL(seedURL),
		DateScanned: time.Now(),
		MaxDepth:    maxDepth,
		Pages:       make([]*PageResult, 0),
	}
}

// AddPage appends a page result and keeps PagesCrawled in sync.
func (r *ScanReport) AddPage(page *PageResult) {
	r.Pages = append(r.Pages, page)
	r.PagesCrawled = len(r.Pages)
}
