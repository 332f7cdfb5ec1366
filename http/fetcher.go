// Package http provides an HTTP-based implementation of webqa.Fetcher
// for fetching pages that don't require JavaScript rendering.
package http

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/webqa"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default per-request timeout.
const DefaultFetchTimeout = 10 * time.Second

// DefaultUserAgent identifies requests the way a browser would.
const DefaultUserAgent = "Mozilla/5.0"

// Ensure Fetcher implements webqa.Fetcher at compile time.
var _ webqa.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using HTTP GET requests.
// A single attempt is made per call; retrying is left to callers.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	limiter   webqa.DomainLimiter
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithLimiter makes the fetcher wait on limiter before each request.
func WithLimiter(l webqa.DomainLimiter) Option {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the HTML content from the given URL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*webqa.Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, webqa.Errorf(webqa.EINVALID, "invalid url %q: %v", rawURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, webqa.Errorf(webqa.EINVALID, "invalid url %q: absolute http(s) url required", rawURL)
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, u.Hostname()); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, webqa.Errorf(webqa.EINVALID, "invalid url %q: %v", rawURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, requestError(ctx, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, webqa.Errorf(webqa.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, rawURL)
	}

	// Pages are decoded to UTF-8 using the declared or sniffed charset.
	r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, webqa.Errorf(webqa.EUNAVAILABLE, "decode %s: %v", rawURL, err)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, requestError(ctx, rawURL, err)
	}

	return &webqa.Page{
		URL:        rawURL,
		HTML:       string(body),
		StatusCode: resp.StatusCode,
	}, nil
}

// Close releases resources. For HTTP fetcher this only drops idle
// keep-alive connections.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// requestError classifies a transport error. Cancellation of the caller's
// context is returned as is so it is never mistaken for a timeout.
func requestError(ctx context.Context, rawURL string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if IsTimeout(err) {
		return webqa.Errorf(webqa.ETIMEOUT, "timeout fetching %s", rawURL)
	}
	return webqa.Errorf(webqa.EUNAVAILABLE, "request to %s failed: %v", rawURL, err)
}

// IsTimeout reports whether err was caused by a request timing out.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
