// Package fetcher retrieves pages over HTTP with bounded time, body size,
// and redirect depth. HTTP error statuses are results, not errors: the
// caller receives the status code and decides what it means. Errors are
// reserved for requests that produced no response at all.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// maxRedirects bounds how many redirects a single fetch follows.
	maxRedirects = 5

	// DefaultMaxBodySize caps how many bytes of a response body are read.
	DefaultMaxBodySize = 10 * 1024 * 1024
)

// ErrTooManyRedirects is returned when a fetch exceeds the redirect limit.
var ErrTooManyRedirects = errors.New("fetcher: too many redirects")

// ErrorKind classifies why a fetch produced no response.
type ErrorKind int

const (
	// KindConnection covers DNS failures, refused connections, and TLS errors.
	KindConnection ErrorKind = iota
	// KindTimeout means the request deadline elapsed.
	KindTimeout
	// KindRedirect means the redirect chain exceeded the limit.
	KindRedirect
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindTimeout:
		return "timeout"
	case KindRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Error describes a fetch that produced no usable response.
type Error struct {
	Kind ErrorKind
	URL  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Result holds one fetched page.
type Result struct {
	// URL is the address after following redirects.
	URL string
	// StatusCode is the final HTTP status, including 4xx and 5xx.
	StatusCode int
	// Body is the response body, truncated at the configured size cap.
	Body []byte
	// ContentType is the response Content-Type header.
	ContentType string
	// LoadTime is the wall-clock duration of the request.
	LoadTime time.Duration
}

// Fetcher performs HTTP GET requests for the crawler.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	timeout     time.Duration
	maxBodySize int64
}

// New creates a fetcher. The timeout applies per request. A zero
// maxBodySize falls back to DefaultMaxBodySize.
func New(userAgent string, timeout time.Duration, maxBodySize int64) *Fetcher {
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return ErrTooManyRedirects
			}
			return nil
		},
	}
	return &Fetcher{
		client:      client,
		userAgent:   userAgent,
		timeout:     timeout,
		maxBodySize: maxBodySize,
	}
}

// NewWithClient creates a fetcher using the given HTTP client. The client's
// redirect policy is replaced with the fetcher's redirect cap. Used by tests
// that need httptest server clients.
func NewWithClient(client *http.Client, userAgent string, timeout time.Duration, maxBodySize int64) *Fetcher {
	f := New(userAgent, timeout, maxBodySize)
	client.CheckRedirect = f.client.CheckRedirect
	f.client = client
	return f
}

// Fetch retrieves rawURL. It returns a *Error when the request produced no
// response; HTTP error statuses come back as a normal Result.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindConnection, URL: rawURL, Err: err}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return nil, &Error{Kind: classify(ctx, err), URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		if ctx.Err() != nil {
			return nil, &Error{Kind: KindTimeout, URL: rawURL, Err: err}
		}
		return nil, &Error{Kind: KindConnection, URL: rawURL, Err: err}
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Result{
		URL:         finalURL,
		StatusCode:  resp.StatusCode,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		LoadTime:    elapsed,
	}, nil
}

func classify(ctx context.Context, err error) ErrorKind {
	if errors.Is(err, ErrTooManyRedirects) {
		return KindRedirect
	}
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return KindTimeout
	}
	return KindConnection
}
