package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/webqa"
	webqahttp "github.com/fwojciec/webqa/http"
	"github.com/fwojciec/webqa/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingServer returns a server whose handler hangs until the client gives up.
func blockingServer(t *testing.T) *httptest.Server {
	t.Helper()
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})
	return server
}

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns HTML body and status from server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body><p>Hello World</p></body></html>"))
		}))
		defer server.Close()

		fetcher := webqahttp.NewFetcher()
		defer fetcher.Close()

		page, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<html><body><p>Hello World</p></body></html>", page.HTML)
		assert.Equal(t, http.StatusOK, page.StatusCode)
		assert.Equal(t, server.URL, page.URL)
	})

	t.Run("sends browser-like user agent", func(t *testing.T) {
		t.Parallel()

		var got string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("User-Agent")
		}))
		defer server.Close()

		fetcher := webqahttp.NewFetcher()
		_, err := fetcher.Fetch(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, "Mozilla/5.0", got)
	})

	t.Run("uses custom user agent option", func(t *testing.T) {
		t.Parallel()

		var got string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("User-Agent")
		}))
		defer server.Close()

		fetcher := webqahttp.NewFetcher(webqahttp.WithUserAgent("webqa-test"))
		_, err := fetcher.Fetch(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, "webqa-test", got)
	})

	t.Run("returns ETIMEOUT when server is too slow", func(t *testing.T) {
		t.Parallel()

		server := blockingServer(t)

		fetcher := webqahttp.NewFetcher(webqahttp.WithTimeout(20 * time.Millisecond))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Equal(t, webqa.ETIMEOUT, webqa.ErrorCode(err))
	})

	t.Run("returns context error on cancellation", func(t *testing.T) {
		t.Parallel()

		server := blockingServer(t)

		fetcher := webqahttp.NewFetcher()
		defer fetcher.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fetcher.Fetch(ctx, server.URL)
		require.ErrorIs(t, err, context.Canceled)
		assert.NotEqual(t, webqa.ETIMEOUT, webqa.ErrorCode(err))
	})

	t.Run("returns EUNAVAILABLE for non-existent host", func(t *testing.T) {
		t.Parallel()

		fetcher := webqahttp.NewFetcher(webqahttp.WithTimeout(2 * time.Second))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), "http://non-existent-host.invalid/page")
		require.Error(t, err)
		assert.Equal(t, webqa.EUNAVAILABLE, webqa.ErrorCode(err))
	})

	t.Run("returns EUNAVAILABLE for refused connection", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		addr := server.URL
		server.Close()

		fetcher := webqahttp.NewFetcher()
		_, err := fetcher.Fetch(context.Background(), addr)
		require.Error(t, err)
		assert.Equal(t, webqa.EUNAVAILABLE, webqa.ErrorCode(err))
	})

	t.Run("returns EUNAVAILABLE for non-2xx status codes", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("404 Not Found"))
		}))
		defer server.Close()

		fetcher := webqahttp.NewFetcher()
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Equal(t, webqa.EUNAVAILABLE, webqa.ErrorCode(err))
		assert.Contains(t, webqa.ErrorMessage(err), "404")
	})

	t.Run("decodes charset from content type to UTF-8", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			_, _ = w.Write([]byte("<html><body><p>Caf\xe9 cr\xe8me</p></body></html>"))
		}))
		defer server.Close()

		fetcher := webqahttp.NewFetcher()
		defer fetcher.Close()

		page, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.True(t, utf8.ValidString(page.HTML))
		assert.Contains(t, page.HTML, "<p>Café crème</p>")
	})

	t.Run("decodes charset from meta tag", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><head><meta charset="iso-8859-1"></head><body><p>Fa\xe7ade</p></body></html>`))
		}))
		defer server.Close()

		fetcher := webqahttp.NewFetcher()
		defer fetcher.Close()

		page, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.True(t, utf8.ValidString(page.HTML))
		assert.Contains(t, page.HTML, "<p>Façade</p>")
	})

	t.Run("keeps undeclared UTF-8 intact", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body><p>Zoë naïve 東京</p></body></html>"))
		}))
		defer server.Close()

		fetcher := webqahttp.NewFetcher()
		defer fetcher.Close()

		page, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Contains(t, page.HTML, "<p>Zoë naïve 東京</p>")
	})

	t.Run("returns EINVALID for malformed url", func(t *testing.T) {
		t.Parallel()

		fetcher := webqahttp.NewFetcher()

		for _, raw := range []string{"not a url", "ftp://example.com/file", "/relative/path", "http://"} {
			_, err := fetcher.Fetch(context.Background(), raw)
			require.Error(t, err, raw)
			assert.Equal(t, webqa.EINVALID, webqa.ErrorCode(err), raw)
		}
	})

	t.Run("waits on limiter with request host", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		var domains []string
		limiter := &mock.DomainLimiter{
			WaitFn: func(_ context.Context, domain string) error {
				domains = append(domains, domain)
				return nil
			},
		}

		fetcher := webqahttp.NewFetcher(webqahttp.WithLimiter(limiter))
		_, err := fetcher.Fetch(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, []string{"127.0.0.1"}, domains)
	})

	t.Run("returns limiter error without requesting", func(t *testing.T) {
		t.Parallel()

		requested := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requested = true
		}))
		defer server.Close()

		limiter := &mock.DomainLimiter{
			WaitFn: func(ctx context.Context, domain string) error {
				return context.Canceled
			},
		}

		fetcher := webqahttp.NewFetcher(webqahttp.WithLimiter(limiter))
		_, err := fetcher.Fetch(context.Background(), server.URL)

		require.ErrorIs(t, err, context.Canceled)
		assert.False(t, requested)
	})
}

func TestIsTimeout(t *testing.T) {
	t.Parallel()

	assert.True(t, webqahttp.IsTimeout(context.DeadlineExceeded))
	assert.False(t, webqahttp.IsTimeout(context.Canceled))
	assert.False(t, webqahttp.IsTimeout(nil))
}

// Compile-time verification that Fetcher implements webqa.Fetcher
var _ webqa.Fetcher = (*webqahttp.Fetcher)(nil)
