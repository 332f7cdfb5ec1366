// Package qa answers questions about web pages by chaining fetch, extract,
// index, and query stages.
package qa

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webqa"
)

// Default retry policy for timed-out fetches.
const (
	DefaultFetchAttempts   = 3
	DefaultFetchRetryDelay = 2 * time.Second
)

// Ensure RetryFetcher implements webqa.Fetcher at compile time.
var _ webqa.Fetcher = (*RetryFetcher)(nil)

// RetryFetcher retries timed-out fetches with a fixed delay between attempts.
// Any error other than ETIMEOUT is returned immediately.
type RetryFetcher struct {
	next webqa.Fetcher

	Attempts int
	Delay    time.Duration
	Logger   *slog.Logger
}

// NewRetryFetcher wraps next with the default retry policy.
func NewRetryFetcher(next webqa.Fetcher) *RetryFetcher {
	return &RetryFetcher{
		next:     next,
		Attempts: DefaultFetchAttempts,
		Delay:    DefaultFetchRetryDelay,
	}
}

// Fetch calls the wrapped fetcher until it succeeds, fails with a non-timeout
// error, or runs out of attempts.
func (f *RetryFetcher) Fetch(ctx context.Context, url string) (*webqa.Page, error) {
	attempts := max(f.Attempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		page, err := f.next.Fetch(ctx, url)
		if err == nil {
			return page, nil
		}
		if webqa.ErrorCode(err) != webqa.ETIMEOUT {
			return nil, err
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		if f.Logger != nil {
			f.Logger.Warn("fetch timed out, retrying",
				"url", url,
				"attempt", attempt,
				"of", attempts,
				"delay", f.Delay,
				"err", err,
			)
		}

		timer := time.NewTimer(f.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, webqa.Errorf(webqa.ETIMEOUT, "timed out after %d attempts: %s", attempts, webqa.ErrorMessage(lastErr))
}

// Close closes the wrapped fetcher.
func (f *RetryFetcher) Close() error {
	return f.next.Close()
}
