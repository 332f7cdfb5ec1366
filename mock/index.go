package mock

import (
	"context"

	"github.com/fwojciec/webqa"
)

var _ webqa.Index = (*Index)(nil)

// Index is a mock implementation of webqa.Index.
type Index struct {
	SearchFn func(ctx context.Context, query string, limit int) ([]webqa.SearchResult, error)
	LenFn    func() int
	CloseFn  func() error
}

func (i *Index) Search(ctx context.Context, query string, limit int) ([]webqa.SearchResult, error) {
	return i.SearchFn(ctx, query, limit)
}

func (i *Index) Len() int {
	return i.LenFn()
}

func (i *Index) Close() error {
	return i.CloseFn()
}

var _ webqa.Indexer = (*Indexer)(nil)

// Indexer is a mock implementation of webqa.Indexer.
type Indexer struct {
	BuildIndexFn func(ctx context.Context, path string) (webqa.Index, error)
}

func (i *Indexer) BuildIndex(ctx context.Context, path string) (webqa.Index, error) {
	return i.BuildIndexFn(ctx, path)
}

var _ webqa.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of webqa.Embedder.
type Embedder struct {
	EmbedFn func(ctx context.Context, texts []string) ([][]float32, error)
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return e.EmbedFn(ctx, texts)
}
