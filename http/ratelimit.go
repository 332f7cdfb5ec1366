package http

import (
	"context"
	"sync"

	"github.com/fwojciec/webqa"
	"golang.org/x/time/rate"
)

var _ webqa.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter spaces out fetches to the same host using one token bucket
// per host with a burst of 1. Fetches to different hosts never wait on each
// other. A non-positive rate disables limiting.
type DomainLimiter struct {
	mu    sync.Mutex
	hosts map[string]*rate.Limiter
	limit rate.Limit
}

// NewDomainLimiter returns a limiter allowing rps fetches per second per host.
func NewDomainLimiter(rps float64) *DomainLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &DomainLimiter{
		hosts: make(map[string]*rate.Limiter),
		limit: limit,
	}
}

// Wait blocks until a fetch to domain is allowed or ctx is done.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return d.bucket(domain).Wait(ctx)
}

func (d *DomainLimiter) bucket(domain string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.hosts[domain]
	if !ok {
		l = rate.NewLimiter(d.limit, 1)
		d.hosts[domain] = l
	}
	return l
}
