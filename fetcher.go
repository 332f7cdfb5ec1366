package webqa

import "context"

// Page is the raw result of fetching a URL.
type Page struct {
	URL  string
	HTML string

	// StatusCode is the HTTP status, or zero when the backend does not
	// report one (the browser fetcher).
	StatusCode int
}

// Fetcher retrieves raw HTML for a URL.
type Fetcher interface {
	// Fetch retrieves the page at url.
	// Returns ETIMEOUT when the request timed out, EUNAVAILABLE for any other
	// request-level failure (connection refused, DNS failure, non-2xx status)
	// and EINVALID for a malformed URL.
	Fetch(ctx context.Context, url string) (*Page, error)

	// Close releases resources held by the fetcher.
	Close() error
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
