package model

// Severity represents how strongly an SEO issue affects a page's ranking
// potential.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityInfo indicates signals that are worth surfacing but carry no
	// score deduction. Examples: title length outside the optimal window,
	// oversized HTML, undetected page language.
	SeverityInfo Severity = iota

	// SeverityWarning indicates issues that measurably hurt a page.
	// Examples: missing meta description, heading level skips, slow loads.
	SeverityWarning

	// SeverityCritical indicates issues that make a page effectively
	// invisible or broken for search engines. Examples: missing title,
	// server errors, unreachable pages.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Category groups issues by the page aspect they concern.
type Category int

const (
	// CategoryMeta covers <title> and meta tags.
	CategoryMeta Category = iota

	// CategoryHeaders covers the H1-H6 heading outline.
	CategoryHeaders

	// CategoryImages covers image accessibility (alt text).
	CategoryImages

	// CategoryLinks covers link health and HTTP status problems.
	CategoryLinks

	// CategoryPerformance covers load time and page weight.
	CategoryPerformance

	// CategoryMobile covers mobile-friendliness signals.
	CategoryMobile

	// CategoryContent covers text quality and quantity.
	CategoryContent
)

// String returns the category name used in reports.
func (c Category) String() string {
	switch c {
	case CategoryMeta:
		return "META"
	case CategoryHeaders:
		return "HEADERS"
	case CategoryImages:
		return "IMAGES"
	case CategoryLinks:
		return "LINKS"
	case CategoryPerformance:
		return "PERFORMANCE"
	case CategoryMobile:
		return "MOBILE"
	case CategoryContent:
		return "CONTENT"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler so severities serialize as
// their names rather than bare integers.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// MarshalText implements encoding.TextMarshaler for categories.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// IssueInfo contains metadata about an issue kind: which category and
// severity it belongs to, plus remediation guidance for the report.
type IssueInfo struct {
	Category       Category
	Severity       Severity
	Impact         string
	Recommendation string
}

// issueInfoMapping maps issue kinds to their metadata.
// This centralized mapping ensures consistent classification across the
// analyzer, the scorer, and the report writers.
//
// Design decision: We use a map rather than embedding category and severity
// at each emission site because:
// 1. It provides a single source of truth for issue classification
// 2. Severity adjustments don't require touching scoring logic
// 3. It makes it easy to generate rubric documentation
var issueInfoMapping = map[string]IssueInfo{
	// CRITICAL - page is broken or invisible to search engines
	"missing_title": {
		Category:       CategoryMeta,
		Severity:       SeverityCritical,
		Impact:         "Pages without a <title> cannot present a headline in search results and rank poorly.",
		Recommendation: "Add a unique, descriptive <title> of 50-60 characters.",
	},
	"client_error": {
		Category:       CategoryLinks,
		Severity:       SeverityCritical,
		Impact:         "The page returns a 4xx status; search engines will drop it from the index.",
		Recommendation: "Fix or redirect the broken URL, and repair the links pointing at it.",
	},
	"server_error": {
		Category:       CategoryLinks,
		Severity:       SeverityCritical,
		Impact:         "The page returns a 5xx status; repeated server errors cause de-indexing.",
		Recommendation: "Investigate the server fault; return 503 with Retry-After during maintenance.",
	},
	"fetch_failed": {
		Category:       CategoryLinks,
		Severity:       SeverityCritical,
		Impact:         "The page could not be fetched at all (timeout or connection failure).",
		Recommendation: "Check DNS, TLS, and server availability for the affected URL.",
	},

	// WARNING - measurable ranking damage
	"missing_meta_description": {
		Category:       CategoryMeta,
		Severity:       SeverityWarning,
		Impact:         "Without a meta description, search engines synthesize a snippet, lowering click-through.",
		Recommendation: "Add a meta description of roughly 50-160 characters summarizing the page.",
	},
	"missing_alt_text": {
		Category:       CategoryImages,
		Severity:       SeverityWarning,
		Impact:         "Images without alt text are invisible to image search and screen readers.",
		Recommendation: "Add descriptive alt attributes; use alt=\"\" only for purely decorative images.",
	},
	"heading_level_skip": {
		Category:       CategoryHeaders,
		Severity:       SeverityWarning,
		Impact:         "Skipped heading levels (e.g. H1 directly to H3) confuse document outline parsing.",
		Recommendation: "Nest headings sequentially without skipping levels.",
	},
	"missing_h1": {
		Category:       CategoryHeaders,
		Severity:       SeverityWarning,
		Impact:         "Pages without an H1 lack a primary topic signal.",
		Recommendation: "Add exactly one H1 describing the page's main subject.",
	},
	"multiple_h1": {
		Category:       CategoryHeaders,
		Severity:       SeverityWarning,
		Impact:         "Multiple H1 elements dilute the primary topic signal.",
		Recommendation: "Keep a single H1 and demote the others to H2.",
	},
	"slow_load_time": {
		Category:       CategoryPerformance,
		Severity:       SeverityWarning,
		Impact:         "Load times above 3 seconds hurt both ranking and visitor retention.",
		Recommendation: "Compress assets, enable caching, and defer non-critical scripts.",
	},
	"missing_viewport": {
		Category:       CategoryMobile,
		Severity:       SeverityWarning,
		Impact:         "Without a viewport meta tag the page fails mobile-friendliness checks.",
		Recommendation: "Add <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">.",
	},
	"thin_content": {
		Category:       CategoryContent,
		Severity:       SeverityWarning,
		Impact:         "Pages under 300 words are often classified as thin content and rank poorly.",
		Recommendation: "Expand the page with substantive text or consolidate it into a related page.",
	},

	// INFO - recorded for the report, no score deduction
	"title_length": {
		Category:       CategoryMeta,
		Severity:       SeverityInfo,
		Impact:         "Titles outside 50-60 characters are truncated or padded in search results.",
		Recommendation: "Rewrite the title to fit the 50-60 character window.",
	},
	"meta_description_length": {
		Category:       CategoryMeta,
		Severity:       SeverityInfo,
		Impact:         "Meta descriptions over 160 characters are truncated in search snippets.",
		Recommendation: "Shorten the description to at most 160 characters.",
	},
	"html_too_large": {
		Category:       CategoryPerformance,
		Severity:       SeverityInfo,
		Impact:         "HTML documents over 100 KB slow parsing, especially on mobile connections.",
		Recommendation: "Trim inline assets and move repeated markup into cached resources.",
	},
	"keyword_stuffing": {
		Category:       CategoryContent,
		Severity:       SeverityInfo,
		Impact:         "A single keyword above 3% density reads as over-optimization.",
		Recommendation: "Vary phrasing; write for readers rather than for keyword frequency.",
	},
	"language_undetected": {
		Category:       CategoryContent,
		Severity:       SeverityInfo,
		Impact:         "The page language could not be determined from its text.",
		Recommendation: "Declare lang on <html> and ensure the page has enough prose to classify.",
	},

	// Site-level issues (affectedUrl is the seed)
	"site_error_rate": {
		Category:       CategoryLinks,
		Severity:       SeverityCritical,
		Impact:         "A large share of crawled pages return HTTP errors, signalling a broken site.",
		Recommendation: "Audit the error pages and fix or redirect them before the next crawl.",
	},
	"site_slow_average": {
		Category:       CategoryPerformance,
		Severity:       SeverityWarning,
		Impact:         "Average load time across the site exceeds 2 seconds.",
		Recommendation: "Profile the slowest pages; shared bottlenecks usually explain site-wide latency.",
	},
	"site_duplicate_titles": {
		Category:       CategoryMeta,
		Severity:       SeverityWarning,
		Impact:         "Multiple pages share the same title, making them compete against each other.",
		Recommendation: "Give every indexable page a unique title.",
	},
}

// GetIssueInfo returns the classification metadata for an issue kind.
// Unknown kinds default to an INFO-level content issue.
func GetIssueInfo(kind string) IssueInfo {
	if info, ok := issueInfoMapping[kind]; ok {
		return info
	}
	return IssueInfo{
		Category:       CategoryContent,
		Severity:       SeverityInfo,
		Impact:         "Unclassified signal. Review manually.",
		Recommendation: "Investigate the finding and assess impact.",
	}
}

// IssueKinds returns all known issue kinds. Used by tests and by the
// rubric documentation generator to keep the catalog and scorer in sync.
func IssueKinds() []string {
	kinds := make([]string, 0, len(issueInfoMapping))
	for k := range issueInfoMapping {
		kinds = append(kinds, k)
	}
	return kinds
}
