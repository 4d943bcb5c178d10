// Package frontier implements the crawl traversal state: the FIFO queue of
// pending (URL, depth) targets and the visited set that guarantees each
// normalized URL is fetched at most once per crawl.
package frontier

import (
	"sync"

	"github.com/seoscan/seoscan/internal/model"
)

// Frontier owns the not-yet-visited queue and the visited set for one crawl
// session. Dequeue order is FIFO, which yields breadth-first traversal:
// depth N is drained before depth N+1, so "depth 3" always means at most
// three hops from the seed regardless of link order on any page.
//
// All methods are safe for concurrent use, though the crawler routes every
// mutation through its single coordinator goroutine anyway.
type Frontier struct {
	mu sync.Mutex

	// queue holds pending targets in FIFO order.
	queue []model.CrawlTarget

	// seen tracks every normalized URL that was enqueued, dequeued, or
	// marked visited. Membership means "never enqueue this again".
	seen map[string]bool

	// maxDepth bounds how far from the seed targets may sit.
	maxDepth int
}

// New creates a Frontier with the given depth bound.
// Depth 0 means only the seed is ever crawled.
func New(maxDepth int) *Frontier {
	return &Frontier{
		queue:    make([]model.CrawlTarget, 0),
		seen:     make(map[string]bool),
		maxDepth: maxDepth,
	}
}

// Enqueue adds a target unless it exceeds the depth bound or its normalized
// URL has been seen before. Both conditions are expected during a crawl
// (pages link back to each other constantly), so rejection is a silent
// no-op, never an error.
func (f *Frontier) Enqueue(target model.CrawlTarget) {
	if target.Depth < 0 || target.Depth > f.maxDepth {
		return
	}

	key := model.NormalizeURL(target.URL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen[key] {
		return
	}
	f.seen[key] = true
	f.queue = append(f.queue, target)
}

// Dequeue returns the next target in FIFO order.
// The second return value is false when the queue is empty.
func (f *Frontier) Dequeue() (model.CrawlTarget, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return model.CrawlTarget{}, false
	}

	target := f.queue[0]
	f.queue = f.queue[1:]
	return target, true
}

// MarkVisited records completion of a URL. Idempotent; also blocks future
// enqueues of the URL even if it was never queued (e.g. redirect targets).
func (f *Frontier) MarkVisited(rawURL string) {
	key := model.NormalizeURL(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[key] = true
}

// Seen reports whether a URL was already enqueued or visited.
func (f *Frontier) Seen(rawURL string) bool {
	key := model.NormalizeURL(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[key]
}

// Pending returns the number of queued targets.
func (f *Frontier) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}
