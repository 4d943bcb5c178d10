// Package analyzer extracts SEO-relevant structure from fetched HTML.
//
// Analysis is a total function: any byte sequence produces a PageResult.
// Pages that are not HTML simply yield empty structural fields, which the
// scorer then grades. The analyzer never fetches anything itself.
package analyzer

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seoscan/seoscan/internal/model"
)

// headingLevels maps element names to outline levels.
var headingLevels = map[string]int{
	"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6,
}

// Analyzer turns raw HTML into the structural fields of a PageResult.
type Analyzer struct {
	keywordLimit int
}

// New creates an analyzer reporting at most limit top keywords per page.
// A non-positive limit defaults to 10.
func New(limit int) *Analyzer {
	if limit <= 0 {
		limit = 10
	}
	return &Analyzer{keywordLimit: limit}
}

// Analyze fills page with everything derivable from body. The base URL is
// used to resolve relative links. Analyze never fails: unparseable input
// leaves the structural fields empty.
func (a *Analyzer) Analyze(page *model.PageResult, base *url.URL, body []byte) {
	page.HTMLSizeBytes = len(body)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return
	}

	page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	page.MetaDescription = metaContent(doc, "description")
	page.HasViewportMeta = metaContent(doc, "viewport") != ""

	a.collectHeadings(page, doc)
	a.collectImages(page, doc)
	page.InternalLinks, page.ExternalLinks = extractLinks(doc, base)

	page.ParagraphCount = doc.Find("p").Length()
	page.ListCount = doc.Find("ul, ol").Length()

	text := visibleText(doc)
	words := splitWords(text)
	page.WordCount = len(words)
	page.Language = detectLanguage(text)
	page.Readability = readability(text, words)
	page.TopKeywords = topKeywords(words, a.keywordLimit)
}

// metaContent returns the content attribute of <meta name="..."> matching
// the given name case-insensitively.
func metaContent(doc *goquery.Document, name string) string {
	var content string
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		n, _ := s.Attr("name")
		if !strings.EqualFold(n, name) {
			return true
		}
		c, _ := s.Attr("content")
		content = strings.TrimSpace(c)
		return false
	})
	return content
}

// collectHeadings records headings in document order so level skips can be
// detected later.
func (a *Analyzer) collectHeadings(page *model.PageResult, doc *goquery.Document) {
	counts := make(map[int]int)
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		level, ok := headingLevels[goquery.NodeName(s)]
		if !ok {
			return
		}
		counts[level]++
		page.HeaderOutline = append(page.HeaderOutline, model.Heading{
			Level: level,
			Text:  strings.TrimSpace(s.Text()),
		})
	})
	if len(counts) > 0 {
		page.HeadingCounts = counts
	}
}

func (a *Analyzer) collectImages(page *model.PageResult, doc *goquery.Document) {
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		alt, hasAttr := s.Attr("alt")
		page.Images = append(page.Images, model.ImageRef{
			Src:    src,
			HasAlt: hasAttr && strings.TrimSpace(alt) != "",
		})
	})
}

// visibleText returns the rendered text of the body with script, style, and
// noscript content removed.
func visibleText(doc *goquery.Document) string {
	body := doc.Find("body").Clone()
	if body.Length() == 0 {
		return ""
	}
	body.Find("script, style, noscript").Remove()
	return body.Text()
}

// splitWords breaks text into words, keeping only runs that contain at
// least one letter or digit.
func splitWords(text string) []string {
	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if hasAlnum(f) {
			words = append(words, f)
		}
	}
	return words
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') || r > 127 {
			return true
		}
	}
	return false
}
