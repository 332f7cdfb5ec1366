package http_test

import (
	"context"
	"testing"
	"time"

	webqahttp "github.com/fwojciec/webqa/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestDomainLimiter_Wait(t *testing.T) {
	t.Parallel()

	t.Run("first fetch to a host does not wait", func(t *testing.T) {
		t.Parallel()

		limiter := webqahttp.NewDomainLimiter(5)

		begin := time.Now()
		require.NoError(t, limiter.Wait(context.Background(), "example.com"))
		assert.Less(t, time.Since(begin), 50*time.Millisecond)
	})

	t.Run("second fetch to same host is delayed", func(t *testing.T) {
		t.Parallel()

		limiter := webqahttp.NewDomainLimiter(10)
		require.NoError(t, limiter.Wait(context.Background(), "example.com"))

		begin := time.Now()
		require.NoError(t, limiter.Wait(context.Background(), "example.com"))
		assert.GreaterOrEqual(t, time.Since(begin), 80*time.Millisecond)
	})

	t.Run("hosts are limited independently", func(t *testing.T) {
		t.Parallel()

		limiter := webqahttp.NewDomainLimiter(1)
		require.NoError(t, limiter.Wait(context.Background(), "a.example.com"))

		begin := time.Now()
		require.NoError(t, limiter.Wait(context.Background(), "b.example.com"))
		assert.Less(t, time.Since(begin), 50*time.Millisecond)
	})

	t.Run("non-positive rate never waits", func(t *testing.T) {
		t.Parallel()

		limiter := webqahttp.NewDomainLimiter(0)

		begin := time.Now()
		for range 20 {
			require.NoError(t, limiter.Wait(context.Background(), "example.com"))
		}
		assert.Less(t, time.Since(begin), 50*time.Millisecond)
	})

	t.Run("gives up when context expires", func(t *testing.T) {
		t.Parallel()

		limiter := webqahttp.NewDomainLimiter(1)
		require.NoError(t, limiter.Wait(context.Background(), "example.com"))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		assert.Error(t, limiter.Wait(ctx, "example.com"))
	})

	t.Run("is safe for concurrent use", func(t *testing.T) {
		t.Parallel()

		limiter := webqahttp.NewDomainLimiter(200)

		var g errgroup.Group
		for range 8 {
			g.Go(func() error {
				return limiter.Wait(context.Background(), "example.com")
			})
		}
		assert.NoError(t, g.Wait())
	})
}
