// Package policy decides whether and when a URL may be fetched.
//
// It combines two concerns the crawler must consult before every request:
// robots.txt compliance (fetched once per host and cached, permissive when
// the file is absent or malformed) and per-host politeness (a minimum
// interval between consecutive requests to the same host, stretched by the
// robots.txt Crawl-delay directive when that is longer).
package policy
