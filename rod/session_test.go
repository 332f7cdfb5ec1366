package rod

import (
	"sync"
	"testing"

	"github.com/fwojciec/webqa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSessions hands out sessions without a browser and counts shutdowns.
type fakeSessions struct {
	mu       sync.Mutex
	started  int
	shutdown map[*session]int
}

func (fs *fakeSessions) start() (*session, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.started++
	s := &session{}
	s.shutdown = func() error {
		fs.mu.Lock()
		defer fs.mu.Unlock()
		fs.shutdown[s]++
		return nil
	}
	return s, nil
}

func (fs *fakeSessions) shutdowns(s *session) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.shutdown[s]
}

func newTestFetcher(t *testing.T, maxPages int) (*Fetcher, *fakeSessions) {
	t.Helper()
	fs := &fakeSessions{shutdown: map[*session]int{}}
	f := &Fetcher{maxPages: maxPages, start: fs.start}
	s, err := f.start()
	require.NoError(t, err)
	f.current = s
	return f, fs
}

func TestFetcher_Recycle(t *testing.T) {
	t.Parallel()

	t.Run("keeps retired browser open until in-flight fetches finish", func(t *testing.T) {
		t.Parallel()

		f, fs := newTestFetcher(t, 2)

		s1, err := f.acquire()
		require.NoError(t, err)
		s2, err := f.acquire()
		require.NoError(t, err)
		require.Same(t, s1, s2)

		s3, err := f.acquire()
		require.NoError(t, err)
		assert.NotSame(t, s1, s3)
		assert.Equal(t, 2, fs.started)
		assert.Zero(t, fs.shutdowns(s1), "browser closed while pages were still rendering")

		f.release(s1)
		assert.Zero(t, fs.shutdowns(s1))

		f.release(s2)
		assert.Equal(t, 1, fs.shutdowns(s1))

		f.release(s3)
		assert.Zero(t, fs.shutdowns(s3))
	})

	t.Run("shuts down idle browser immediately on recycle", func(t *testing.T) {
		t.Parallel()

		f, fs := newTestFetcher(t, 1)

		s1, err := f.acquire()
		require.NoError(t, err)
		f.release(s1)

		s2, err := f.acquire()
		require.NoError(t, err)
		assert.NotSame(t, s1, s2)
		assert.Equal(t, 1, fs.shutdowns(s1))
	})

	t.Run("close waits for in-flight fetch", func(t *testing.T) {
		t.Parallel()

		f, fs := newTestFetcher(t, 10)

		s, err := f.acquire()
		require.NoError(t, err)

		require.NoError(t, f.Close())
		assert.Zero(t, fs.shutdowns(s))

		_, err = f.acquire()
		assert.Equal(t, webqa.EINVALID, webqa.ErrorCode(err))

		f.release(s)
		assert.Equal(t, 1, fs.shutdowns(s))

		require.NoError(t, f.Close())
		assert.Equal(t, 1, fs.shutdowns(s))
	})

	t.Run("concurrent fetches shut down each browser exactly once", func(t *testing.T) {
		t.Parallel()

		f, fs := newTestFetcher(t, 3)

		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s, err := f.acquire()
				if err != nil {
					return
				}
				f.release(s)
			}()
		}
		wg.Wait()
		require.NoError(t, f.Close())

		fs.mu.Lock()
		defer fs.mu.Unlock()
		assert.Len(t, fs.shutdown, fs.started)
		for _, n := range fs.shutdown {
			assert.Equal(t, 1, n)
		}
	})
}
