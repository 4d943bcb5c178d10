package policy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

const (
	// robotsFetchTimeout bounds a single robots.txt fetch.
	robotsFetchTimeout = 10 * time.Second

	// maxRobotsSize caps how much of a robots.txt response is read.
	maxRobotsSize = 512 * 1024
)

// hostRules holds the parsed robots.txt rules for one host. A nil group
// means no restrictions apply to that host.
type hostRules struct {
	group *robotstxt.Group
}

// Gate answers whether a URL may be crawled and enforces per-host request
// pacing. It fetches robots.txt at most once per host and caches the parsed
// rules for the lifetime of the gate.
//
// The gate is permissive: a missing, unreachable, or malformed robots.txt
// places no restrictions on the host.
type Gate struct {
	client    *http.Client
	userAgent string
	ignore    bool
	logger    *slog.Logger

	mu    sync.Mutex
	rules map[string]*hostRules

	limiter *hostLimiter
}

// NewGate creates a policy gate. The delay is the minimum interval between
// requests to the same host; the robots.txt Crawl-delay directive overrides
// it per host when longer. When ignore is true every URL is allowed and
// robots.txt is never fetched, but the politeness delay still applies.
func NewGate(client *http.Client, userAgent string, delay time.Duration, ignore bool, logger *slog.Logger) *Gate {
	if client == nil {
		client = &http.Client{Timeout: robotsFetchTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		client:    client,
		userAgent: userAgent,
		ignore:    ignore,
		logger:    logger,
		rules:     make(map[string]*hostRules),
		limiter:   newHostLimiter(delay),
	}
}

// Allowed reports whether the gate permits fetching u. The first call for a
// host fetches and caches that host's robots.txt.
func (g *Gate) Allowed(ctx context.Context, u *url.URL) bool {
	if g.ignore {
		return true
	}

	r := g.hostRules(ctx, u)
	if r.group == nil {
		return true
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return r.group.Test(path)
}

// Wait blocks until a request to host may proceed under the politeness
// policy. It returns early with the context error if ctx is canceled.
func (g *Gate) Wait(ctx context.Context, host string) error {
	return g.limiter.wait(ctx, host)
}

// hostRules returns the cached rules for u's host, fetching robots.txt on
// first use. The fetch also records the host's Crawl-delay with the limiter.
func (g *Gate) hostRules(ctx context.Context, u *url.URL) *hostRules {
	host := strings.ToLower(u.Host)

	g.mu.Lock()
	if r, ok := g.rules[host]; ok {
		g.mu.Unlock()
		return r
	}
	g.mu.Unlock()

	r := g.fetchRules(ctx, u.Scheme, host)

	g.mu.Lock()
	// Another goroutine may have fetched concurrently; first result wins.
	if cached, ok := g.rules[host]; ok {
		g.mu.Unlock()
		return cached
	}
	g.rules[host] = r
	g.mu.Unlock()
	return r
}

func (g *Gate) fetchRules(ctx context.Context, scheme, host string) *hostRules {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", scheme, host)

	fetchCtx, cancel := context.WithTimeout(ctx, robotsFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return &hostRules{}
	}
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Debug("robots.txt unreachable, allowing host", "host", host, "error", err)
		return &hostRules{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.logger.Debug("robots.txt not available, allowing host", "host", host, "status", resp.StatusCode)
		return &hostRules{}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsSize))
	if err != nil {
		return &hostRules{}
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		g.logger.Debug("robots.txt unparseable, allowing host", "host", host, "error", err)
		return &hostRules{}
	}

	group := data.FindGroup(g.userAgent)
	if group != nil && group.CrawlDelay > 0 {
		g.limiter.setHostDelay(host, group.CrawlDelay)
	}
	return &hostRules{group: group}
}
