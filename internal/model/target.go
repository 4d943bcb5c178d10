package model

import (
	"net"
	"net/url"
	"strings"
)

// CrawlTarget is one unit of crawl work: an absolute URL and the number of
// hops it sits from the seed. Targets are immutable once enqueued.
type CrawlTarget struct {
	// URL is the absolute URL to fetch.
	URL string

	// Depth is the hop count from the seed (the seed itself is 0).
	Depth int
}

// NormalizeURL normalizes a URL for deduplication.
//
// Design decision: We normalize URLs because:
//  1. The same page can have different URL representations
//  2. Fragment (#anchor) doesn't change content
//  3. An empty path and "/" address the same resource
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	// http://example.com and http://example.com/ are the same URL.
	if u.Path == "" {
		u.Path = "/"
	}

	// /about and /about/ almost always serve identical content; treating
	// them as distinct doubles the crawl for no new information.
	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String()
}

// RegistrableHost returns the host used for internal/external link
// classification: lowercased, port stripped, and with a leading "www."
// removed so that www.example.com and example.com count as the same site.
func RegistrableHost(host string) string {
	host = strings.ToLower(host)
	if strings.Contains(host, ":") {
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
	}
	return strings.TrimPrefix(host, "www.")
}

// SameSite reports whether two hosts belong to the same registrable host.
func SameSite(a, b string) bool {
	return RegistrableHost(a) == RegistrableHost(b)
}
