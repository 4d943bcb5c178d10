// Package scorer turns crawled page results into a scored SEO report.
//
// Scoring is deterministic: the same page results always produce the same
// report, issue for issue and byte for byte. Checks run in a fixed order
// per page, and site-level checks run over the pages in their given order.
package scorer

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/seoscan/seoscan/internal/model"
)

// Score deductions per issue kind. Deductions subtract from a page's
// starting score of 100; the result is floored at zero.
const (
	deductMissingTitle    = 15
	deductMissingMetaDesc = 10
	deductMissingAlt      = 2
	deductMissingAltCap   = 20
	deductHeadingSkip     = 5
	deductMissingH1       = 10
	deductMultipleH1      = 5
	deductSlowLoad        = 10
	deductMissingViewport = 15
	deductThinContent     = 5
	deductClientError     = 20
	deductServerError     = 30
)

// Thresholds used by the checks.
const (
	slowLoadMillis     = 3000
	thinContentWords   = 300
	titleLengthMin     = 50
	titleLengthMax     = 60
	metaDescLengthMax  = 160
	htmlSizeLimit      = 100 * 1024
	stuffingDensity    = 0.03
	siteErrorRateLimit = 0.10
	siteSlowAvgMillis  = 2000
)

// Score aggregates page results into the final report. The page order of
// the input is preserved in the output.
func Score(seedURL string, pages []*model.PageResult) *model.SEOReport {
	report := &model.SEOReport{
		PageReports: make([]model.PageReport, 0, len(pages)),
	}

	total := 0
	for _, page := range pages {
		pr := scorePage(page)
		total += pr.Score
		report.PageReports = append(report.PageReports, pr)
	}

	if len(pages) > 0 {
		report.OverallScore = int(math.Round(float64(total) / float64(len(pages))))
	}

	report.SiteIssues = siteIssues(seedURL, pages)
	return report
}

// scorePage runs the per-page checks in a fixed order and returns the
// scored view. A page that never produced a response scores zero with a
// single fetch_failed issue.
func scorePage(page *model.PageResult) model.PageReport {
	pr := model.PageReport{URL: page.URL, Score: 100, Issues: []model.Issue{}}

	if page.Failed() {
		pr.Score = 0
		pr.Issues = append(pr.Issues, model.NewIssue("fetch_failed",
			fmt.Sprintf("page could not be fetched: %s", page.FetchError), page.URL))
		return pr
	}

	deduct := func(kind, message string, points int) {
		pr.Issues = append(pr.Issues, model.NewIssue(kind, message, page.URL))
		pr.Score -= points
	}
	note := func(kind, message string) {
		pr.Issues = append(pr.Issues, model.NewIssue(kind, message, page.URL))
	}

	// HTTP status.
	switch {
	case page.StatusCode >= 500:
		deduct("server_error", fmt.Sprintf("page returned HTTP %d", page.StatusCode), deductServerError)
	case page.StatusCode >= 400:
		deduct("client_error", fmt.Sprintf("page returned HTTP %d", page.StatusCode), deductClientError)
	}

	// Title.
	if page.Title == "" {
		deduct("missing_title", "page has no <title> element", deductMissingTitle)
	} else if n := utf8.RuneCountInString(page.Title); n < titleLengthMin || n > titleLengthMax {
		note("title_length", fmt.Sprintf("title is %d characters, optimal is %d-%d", n, titleLengthMin, titleLengthMax))
	}

	// Meta description.
	if page.MetaDescription == "" {
		deduct("missing_meta_description", "page has no meta description", deductMissingMetaDesc)
	} else if n := utf8.RuneCountInString(page.MetaDescription); n > metaDescLengthMax {
		note("meta_description_length", fmt.Sprintf("meta description is %d characters, limit is %d", n, metaDescLengthMax))
	}

	// Heading outline.
	h1s := 0
	for _, h := range page.HeaderOutline {
		if h.Level == 1 {
			h1s++
		}
	}
	switch {
	case h1s == 0 && len(page.HeaderOutline) > 0:
		deduct("missing_h1", "page has headings but no H1", deductMissingH1)
	case h1s > 1:
		deduct("multiple_h1", fmt.Sprintf("page has %d H1 elements", h1s), deductMultipleH1)
	}
	for i := 1; i < len(page.HeaderOutline); i++ {
		prev, cur := page.HeaderOutline[i-1].Level, page.HeaderOutline[i].Level
		if cur > prev+1 {
			deduct("heading_level_skip",
				fmt.Sprintf("heading outline jumps from H%d to H%d", prev, cur), deductHeadingSkip)
		}
	}

	// Image alt text.
	if missing := page.ImagesWithoutAlt(); missing > 0 {
		points := missing * deductMissingAlt
		if points > deductMissingAltCap {
			points = deductMissingAltCap
		}
		deduct("missing_alt_text",
			fmt.Sprintf("%d of %d images missing alt text", missing, len(page.Images)), points)
	}

	// Performance.
	if page.LoadTimeMillis > slowLoadMillis {
		deduct("slow_load_time", fmt.Sprintf("page loaded in %dms", page.LoadTimeMillis), deductSlowLoad)
	}
	if page.HTMLSizeBytes > htmlSizeLimit {
		note("html_too_large", fmt.Sprintf("HTML document is %d bytes", page.HTMLSizeBytes))
	}

	// Mobile.
	if !page.HasViewportMeta {
		deduct("missing_viewport", "page has no viewport meta tag", deductMissingViewport)
	}

	// Content.
	if page.WordCount < thinContentWords {
		deduct("thin_content",
			fmt.Sprintf("page has %d words of visible text", page.WordCount), deductThinContent)
	}
	for _, kw := range page.TopKeywords {
		if kw.Density > stuffingDensity {
			note("keyword_stuffing",
				fmt.Sprintf("keyword %q appears %d times (%.1f%% density)", kw.Word, kw.Count, kw.Density*100))
			break
		}
	}
	if page.Language == "" && page.WordCount > 0 {
		note("language_undetected", "page language could not be detected")
	}

	if pr.Score < 0 {
		pr.Score = 0
	}
	return pr
}

// siteIssues computes findings that only make sense across the whole crawl.
func siteIssues(seedURL string, pages []*model.PageResult) []model.Issue {
	issues := []model.Issue{}
	if len(pages) == 0 {
		return issues
	}

	// Error rate counts both HTTP errors and transport failures.
	errors := 0
	var loadTotal int64
	loaded := 0
	for _, p := range pages {
		if p.Failed() || p.HTTPError() {
			errors++
		}
		if !p.Failed() {
			loadTotal += p.LoadTimeMillis
			loaded++
		}
	}
	if rate := float64(errors) / float64(len(pages)); rate > siteErrorRateLimit {
		issues = append(issues, model.NewIssue("site_error_rate",
			fmt.Sprintf("%d of %d pages returned errors (%.0f%%)", errors, len(pages), rate*100), seedURL))
	}
	if loaded > 0 {
		if avg := loadTotal / int64(loaded); avg > siteSlowAvgMillis {
			issues = append(issues, model.NewIssue("site_slow_average",
				fmt.Sprintf("average load time is %dms across %d pages", avg, loaded), seedURL))
		}
	}

	// Duplicate titles, one issue per duplicated title, sorted for
	// deterministic output.
	byTitle := make(map[string][]string)
	for _, p := range pages {
		if p.Title != "" {
			byTitle[p.Title] = append(byTitle[p.Title], p.URL)
		}
	}
	var dupes []string
	for title, urls := range byTitle {
		if len(urls) > 1 {
			dupes = append(dupes, title)
		}
	}
	sort.Strings(dupes)
	for _, title := range dupes {
		urls := byTitle[title]
		issues = append(issues, model.NewIssue("site_duplicate_titles",
			fmt.Sprintf("title %q is shared by %d pages: %s", title, len(urls), strings.Join(urls, ", ")),
			seedURL))
	}

	return issues
}
