// Package crawler walks a site breadth-first from a seed URL and produces
// one PageResult per visited page.
//
// A single coordinator goroutine owns the frontier and the page list;
// workers only fetch and analyze. Per-page failures become failed
// PageResults and never abort the crawl. The crawl ends when the frontier
// drains, the page budget is reached, or the context is canceled; in the
// latter two cases the result is marked truncated but remains valid.
package crawler
