// Package rod fetches JavaScript-rendered pages with a headless Chrome browser.
package rod

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/webqa"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Defaults for browser fetching.
const (
	DefaultFetchTimeout = 10 * time.Second

	// DefaultMaxPages is the number of pages rendered before the browser is
	// restarted. Chrome's memory baseline creeps up under load and never
	// returns to its initial level.
	DefaultMaxPages = 75
)

// Ensure Fetcher implements webqa.Fetcher at compile time.
var _ webqa.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines. A browser that
// is being recycled stays open until every page rendering on it finishes.
type Fetcher struct {
	timeout   time.Duration
	userAgent string
	maxPages  int

	// start launches a browser session. Replaced in tests.
	start func() (*session, error)

	mu      sync.Mutex
	current *session
	pages   int
	closed  bool
}

// session is one running browser and the number of fetches using it.
type session struct {
	browser  *rod.Browser
	shutdown func() error

	inflight int
	retired  bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout bounds each page load.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

// WithUserAgent overrides the browser's User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithMaxPages sets how many pages are rendered before the browser restarts.
func WithMaxPages(n int) Option {
	return func(f *Fetcher) { f.maxPages = n }
}

// NewFetcher launches a headless Chrome browser. Close must be called when
// the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:  DefaultFetchTimeout,
		maxPages: DefaultMaxPages,
		start:    launch,
	}
	for _, opt := range opts {
		opt(f)
	}

	s, err := f.start()
	if err != nil {
		return nil, err
	}
	f.current = s
	return f, nil
}

// Fetch navigates to url and returns the rendered HTML. A load that exceeds
// the fetch timeout is reported as ETIMEOUT.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*webqa.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s, err := f.acquire()
	if err != nil {
		return nil, err
	}
	defer f.release(s)

	fetchCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, webqa.Errorf(webqa.EUNAVAILABLE, "open page: %v", err)
	}
	defer page.Close()
	page = page.Context(fetchCtx)

	if f.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.userAgent}); err != nil {
			return nil, fetchError(ctx, fetchCtx, url, err)
		}
	}
	if err := page.Navigate(url); err != nil {
		return nil, fetchError(ctx, fetchCtx, url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fetchError(ctx, fetchCtx, url, err)
	}
	html, err := page.HTML()
	if err != nil {
		return nil, fetchError(ctx, fetchCtx, url, err)
	}

	return &webqa.Page{URL: url, HTML: html}, nil
}

// fetchError maps a browser failure to an application error. Cancellation
// of the caller's context is passed through unchanged.
func fetchError(ctx, fetchCtx context.Context, url string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(fetchCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return webqa.Errorf(webqa.ETIMEOUT, "render %s: timed out", url)
	}
	return webqa.Errorf(webqa.EUNAVAILABLE, "render %s: %v", url, err)
}

// acquire returns the current session, starting a new one once maxPages
// pages have been rendered. The old session is retired and shut down when
// its last fetch is released. If a restart fails the old session is kept.
func (f *Fetcher) acquire() (*session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, webqa.Errorf(webqa.EINVALID, "fetcher closed")
	}

	if f.maxPages > 0 && f.pages >= f.maxPages {
		if next, err := f.start(); err == nil {
			f.retire(f.current)
			f.current = next
			f.pages = 0
		}
	}
	f.pages++
	f.current.inflight++
	return f.current, nil
}

// release marks a fetch on s as finished.
func (f *Fetcher) release(s *session) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s.inflight--
	if s.retired && s.inflight == 0 {
		_ = s.shutdown()
	}
}

// retire marks s as no longer current and shuts it down if idle. Must be
// called with mu held.
func (f *Fetcher) retire(s *session) error {
	s.retired = true
	if s.inflight == 0 {
		return s.shutdown()
	}
	return nil
}

// launch starts a headless browser session.
func launch() (*session, error) {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	return &session{
		browser: browser,
		shutdown: func() error {
			err := browser.Close()
			l.Kill()
			return err
		},
	}, nil
}

// Close releases browser resources. Fetches still in progress finish on
// their browser, which is shut down as the last one completes. Close is
// safe to call multiple times.
func (f *Fetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	return f.retire(f.current)
}
