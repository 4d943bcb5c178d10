package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/seoscan/seoscan/internal/analyzer"
	"github.com/seoscan/seoscan/internal/fetcher"
	"github.com/seoscan/seoscan/internal/frontier"
	"github.com/seoscan/seoscan/internal/model"
	"github.com/seoscan/seoscan/internal/policy"
)

// Crawler performs breadth-first crawls of a single site.
type Crawler struct {
	fetcher  *fetcher.Fetcher
	gate     *policy.Gate
	analyzer *analyzer.Analyzer
	logger   *slog.Logger

	maxDepth    int
	maxPages    int
	concurrency int

	ignorePatterns []string
	followPatterns []string
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithMaxDepth sets the maximum crawl depth.
// 0 = only the seed page, 1 = the seed plus linked pages, etc.
func WithMaxDepth(depth int) Option {
	return func(c *Crawler) {
		c.maxDepth = depth
	}
}

// WithMaxPages sets the maximum number of pages to crawl.
func WithMaxPages(maxPages int) Option {
	return func(c *Crawler) {
		c.maxPages = maxPages
	}
}

// WithConcurrency sets the number of fetch workers.
func WithConcurrency(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger sets the crawl logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// WithIgnorePatterns sets URL path patterns to skip during crawling.
// Patterns use glob syntax (e.g., "/admin/*", "*.pdf", "/logout*").
func WithIgnorePatterns(patterns []string) Option {
	return func(c *Crawler) {
		c.ignorePatterns = patterns
	}
}

// WithFollowPatterns sets URL path patterns to follow during crawling.
// If set, only URLs matching at least one pattern are crawled. Empty means
// all URLs are allowed, subject to ignore patterns.
func WithFollowPatterns(patterns []string) Option {
	return func(c *Crawler) {
		c.followPatterns = patterns
	}
}

// New creates a Crawler. The fetcher and policy gate are required; the
// analyzer defaults to a standard one when nil.
func New(f *fetcher.Fetcher, gate *policy.Gate, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher:     f,
		gate:        gate,
		analyzer:    analyzer.New(0),
		logger:      slog.Default(),
		maxDepth:    3,
		maxPages:    100,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is what a crawl produces: the visited pages in completion order
// and whether the crawl stopped before the frontier drained.
type Result struct {
	Pages     []*model.PageResult
	Truncated bool
}

// completion carries one finished unit of work back to the coordinator.
// A nil page means the URL was skipped (robots policy) and counts nothing.
type completion struct {
	page  *model.PageResult
	depth int
}

// Crawl walks the site starting at seedURL. An invalid seed is the only
// error; every per-page failure is recorded as a failed PageResult instead.
// Cancellation stops dispatching, drains in-flight work, and returns a
// truncated result.
func (c *Crawler) Crawl(ctx context.Context, seedURL string) (*Result, error) {
	seed, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL %q: %w", seedURL, err)
	}
	if seed.Scheme != "http" && seed.Scheme != "https" {
		return nil, fmt.Errorf("seed URL %q must be http or https", seedURL)
	}

	fr := frontier.New(c.maxDepth)
	fr.Enqueue(model.CrawlTarget{URL: seed.String(), Depth: 0})

	tasks := make(chan model.CrawlTarget)
	completions := make(chan completion)

	var wg sync.WaitGroup
	for i := 0; i < c.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.worker(ctx, tasks, completions)
		}()
	}

	res := &Result{Pages: make([]*model.PageResult, 0)}
	inflight := 0
	canceled := false
	ctxDone := ctx.Done()
	var held *model.CrawlTarget

	for {
		// Pick the next target unless one is already waiting for a free
		// worker or the page budget is spent.
		if held == nil && !canceled && len(res.Pages)+inflight < c.maxPages {
			if t, ok := fr.Dequeue(); ok {
				held = &t
			}
		}

		if held == nil && inflight == 0 {
			break
		}

		dispatch := tasks
		var next model.CrawlTarget
		if held != nil {
			next = *held
		} else {
			dispatch = nil // block dispatch, wait for completions
		}

		select {
		case dispatch <- next:
			held = nil
			inflight++

		case done := <-completions:
			inflight--
			c.collect(res, fr, done, canceled)

		case <-ctxDone:
			canceled = true
			res.Truncated = true
			held = nil
			ctxDone = nil // keep the loop draining without re-firing
		}
	}

	close(tasks)
	wg.Wait()

	if !canceled && fr.Pending() > 0 {
		// Page budget hit with work left over.
		res.Truncated = true
	}
	return res, nil
}

// collect appends a finished page and feeds its links back to the frontier.
// Pages that failed only because the crawl was canceled are dropped; they
// were never really visited. Pages that failed for their own reasons stay
// in the result even when the cancel arrives before their completion does.
func (c *Crawler) collect(res *Result, fr *frontier.Frontier, done completion, canceled bool) {
	if done.page == nil {
		return
	}
	if canceled && isCancelFailure(done.page.FetchError) {
		return
	}

	res.Pages = append(res.Pages, done.page)
	fr.MarkVisited(done.page.URL)

	if done.page.Failed() {
		return
	}
	for _, link := range done.page.InternalLinks {
		if c.shouldCrawl(link) {
			fr.Enqueue(model.CrawlTarget{URL: link, Depth: done.depth + 1})
		}
	}
}

// isCancelFailure reports whether a fetch error came from the crawl's own
// context ending. FetchError is a flattened string by the time it reaches
// the coordinator, so this matches on the context error messages.
func isCancelFailure(fetchError string) bool {
	if fetchError == "" {
		return false
	}
	return strings.Contains(fetchError, context.Canceled.Error()) ||
		strings.Contains(fetchError, context.DeadlineExceeded.Error())
}

// worker fetches and analyzes targets until the task channel closes. The
// coordinator always drains completions, so sends never block forever.
func (c *Crawler) worker(ctx context.Context, tasks <-chan model.CrawlTarget, completions chan<- completion) {
	for t := range tasks {
		completions <- c.process(ctx, t)
	}
}

// process handles one target: policy check, politeness wait, fetch, analyze.
func (c *Crawler) process(ctx context.Context, t model.CrawlTarget) completion {
	u, err := url.Parse(t.URL)
	if err != nil {
		return completion{
			page:  &model.PageResult{URL: t.URL, FetchError: err.Error()},
			depth: t.Depth,
		}
	}

	if !c.gate.Allowed(ctx, u) {
		c.logger.Debug("skipping disallowed URL", "url", t.URL)
		return completion{depth: t.Depth}
	}

	if err := c.gate.Wait(ctx, u.Host); err != nil {
		return completion{
			page:  &model.PageResult{URL: t.URL, FetchError: err.Error()},
			depth: t.Depth,
		}
	}

	page := &model.PageResult{URL: t.URL}
	fetched, err := c.fetcher.Fetch(ctx, t.URL)
	if err != nil {
		c.logger.Debug("fetch failed", "url", t.URL, "error", err)
		page.FetchError = err.Error()
		return completion{page: page, depth: t.Depth}
	}

	page.StatusCode = fetched.StatusCode
	page.LoadTimeMillis = fetched.LoadTime.Milliseconds()
	c.analyzer.Analyze(page, u, fetched.Body)

	c.logger.Debug("crawled page",
		"url", t.URL, "status", fetched.StatusCode, "depth", t.Depth, "links", len(page.InternalLinks))
	return completion{page: page, depth: t.Depth}
}
