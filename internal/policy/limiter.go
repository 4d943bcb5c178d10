package policy

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// hostLimiter spaces out requests to the same host. Each host gets its own
// token bucket with a one-token burst, so concurrent workers targeting one
// host are serialized at the configured interval while requests to distinct
// hosts proceed independently.
type hostLimiter struct {
	baseDelay time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	delays   map[string]time.Duration
}

func newHostLimiter(baseDelay time.Duration) *hostLimiter {
	return &hostLimiter{
		baseDelay: baseDelay,
		limiters:  make(map[string]*rate.Limiter),
		delays:    make(map[string]time.Duration),
	}
}

// setHostDelay stretches the interval for one host. Shorter values than the
// base delay are ignored.
func (l *hostLimiter) setHostDelay(host string, delay time.Duration) {
	if delay <= l.baseDelay {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.delays[host] = delay
	if lim, ok := l.limiters[host]; ok {
		lim.SetLimit(rate.Every(delay))
	}
}

// wait blocks until a request to host is permitted or ctx is canceled.
func (l *hostLimiter) wait(ctx context.Context, host string) error {
	return l.get(host).Wait(ctx)
}

func (l *hostLimiter) get(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.limiters[host]; ok {
		return lim
	}
	delay := l.baseDelay
	if d, ok := l.delays[host]; ok && d > delay {
		delay = d
	}
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	lim := rate.NewLimiter(limit, 1)
	l.limiters[host] = lim
	return lim
}
