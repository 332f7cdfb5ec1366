package mock

import (
	"context"

	"github.com/fwojciec/webqa"
)

var _ webqa.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of webqa.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*webqa.Page, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*webqa.Page, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}

var _ webqa.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of webqa.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
