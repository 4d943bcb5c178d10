package analyzer

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seoscan/seoscan/internal/model"
)

// skippedSchemes lists anchor href schemes that never yield crawlable pages.
var skippedSchemes = map[string]bool{
	"javascript": true,
	"mailto":     true,
	"tel":        true,
	"data":       true,
	"ftp":        true,
}

// extractLinks resolves every anchor href against base and splits the
// results into same-site and off-site groups. Links are normalized and
// deduplicated; fragments, unsupported schemes, and unparseable hrefs are
// dropped.
func extractLinks(doc *goquery.Document, base *url.URL) (internal, external []string) {
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		if skippedSchemes[strings.ToLower(ref.Scheme)] {
			return
		}

		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}

		normalized := model.NormalizeURL(abs.String())
		if seen[normalized] {
			return
		}
		seen[normalized] = true

		if model.SameSite(base.Host, abs.Host) {
			internal = append(internal, normalized)
		} else {
			external = append(external, normalized)
		}
	})

	return internal, external
}
