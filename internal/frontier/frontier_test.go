package frontier

import (
	"fmt"
	"testing"

	"github.com/seoscan/seoscan/internal/model"
)

// TestFrontierFIFO verifies breadth-first dequeue order.
func TestFrontierFIFO(t *testing.T) {
	t.Parallel()

	f := New(3)
	f.Enqueue(model.CrawlTarget{URL: "http://example.com/a", Depth: 0})
	f.Enqueue(model.CrawlTarget{URL: "http://example.com/b", Depth: 1})
	f.Enqueue(model.CrawlTarget{URL: "http://example.com/c", Depth: 1})

	want := []string{"http://example.com/a", "http://example.com/b", "http://example.com/c"}
	for i, w := range want {
		target, ok := f.Dequeue()
		if !ok {
			t.Fatalf("dequeue %d: queue unexpectedly empty", i)
		}
		if target.URL != w {
			t.Errorf("dequeue %d = %q, want %q", i, target.URL, w)
		}
	}

	if _, ok := f.Dequeue(); ok {
		t.Error("queue should be empty")
	}
}

// TestFrontierDedup verifies normalized duplicates are dropped silently.
func TestFrontierDedup(t *testing.T) {
	t.Parallel()

	f := New(3)
	f.Enqueue(model.CrawlTarget{URL: "http://example.com/page", Depth: 0})
	f.Enqueue(model.CrawlTarget{URL: "http://example.com/page#frag", Depth: 1})
	f.Enqueue(model.CrawlTarget{URL: "HTTP://EXAMPLE.COM/page", Depth: 1})
	f.Enqueue(model.CrawlTarget{URL: "http://example.com/page/", Depth: 2})

	if got := f.Pending(); got != 1 {
		t.Errorf("pending = %d, want 1 (all variants normalize to one URL)", got)
	}
}

// TestFrontierDepthBound verifies over-depth targets are rejected.
func TestFrontierDepthBound(t *testing.T) {
	t.Parallel()

	t.Run("drops targets past max depth", func(t *testing.T) {
		t.Parallel()

		f := New(2)
		f.Enqueue(model.CrawlTarget{URL: "http://example.com/ok", Depth: 2})
		f.Enqueue(model.CrawlTarget{URL: "http://example.com/deep", Depth: 3})
		f.Enqueue(model.CrawlTarget{URL: "http://example.com/neg", Depth: -1})

		if got := f.Pending(); got != 1 {
			t.Errorf("pending = %d, want 1", got)
		}
	})

	t.Run("depth zero admits only the seed", func(t *testing.T) {
		t.Parallel()

		f := New(0)
		f.Enqueue(model.CrawlTarget{URL: "http://example.com/", Depth: 0})
		f.Enqueue(model.CrawlTarget{URL: "http://example.com/linked", Depth: 1})

		if got := f.Pending(); got != 1 {
			t.Errorf("pending = %d, want 1", got)
		}
	})
}

// TestFrontierMarkVisited verifies visited URLs are never re-enqueued.
func TestFrontierMarkVisited(t *testing.T) {
	t.Parallel()

	f := New(3)
	f.MarkVisited("http://example.com/done")
	f.MarkVisited("http://example.com/done") // idempotent

	f.Enqueue(model.CrawlTarget{URL: "http://example.com/done", Depth: 1})
	if f.Pending() != 0 {
		t.Error("visited URL should not be enqueued again")
	}

	if !f.Seen("http://example.com/done#section") {
		t.Error("Seen should match on normalized URL")
	}
}

// TestFrontierConcurrentEnqueue checks the frontier tolerates concurrent use.
func TestFrontierConcurrentEnqueue(t *testing.T) {
	t.Parallel()

	f := New(5)
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				f.Enqueue(model.CrawlTarget{
					URL:   fmt.Sprintf("http://example.com/p%d-%d", n, j),
					Depth: 1,
				})
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	if got := f.Pending(); got != 800 {
		t.Errorf("pending = %d, want 800", got)
	}
}
