// Package bleve implements a keyword index over artifact chunks using an
// in-memory bleve index. It needs no embedding model.
package bleve

import (
	"context"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve"
	"github.com/fwojciec/webqa"
)

// Ensure types implement their interfaces at compile time.
var (
	_ webqa.Indexer = (*Indexer)(nil)
	_ webqa.Index   = (*Index)(nil)
)

// Indexer builds keyword indexes from artifacts.
type Indexer struct {
	ChunkSize    int
	ChunkOverlap int
}

// NewIndexer returns an Indexer with default chunking.
func NewIndexer() *Indexer {
	return &Indexer{
		ChunkSize:    webqa.DefaultChunkSize,
		ChunkOverlap: webqa.DefaultChunkOverlap,
	}
}

type document struct {
	Content string `json:"content"`
}

// BuildIndex reads the artifact at path and indexes its chunks.
func (i *Indexer) BuildIndex(ctx context.Context, path string) (webqa.Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, webqa.Errorf(webqa.ENOTFOUND, "read artifact: %v", err)
	}

	texts := webqa.SplitText(string(data), i.ChunkSize, i.ChunkOverlap)
	if len(texts) == 0 {
		return nil, webqa.Errorf(webqa.ENOTFOUND, "no documents found to index")
	}

	bi, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, webqa.Errorf(webqa.EINTERNAL, "create index: %v", err)
	}

	batch := bi.NewBatch()
	chunks := make(map[string]*webqa.Chunk, len(texts))
	for pos, text := range texts {
		if err := ctx.Err(); err != nil {
			_ = bi.Close()
			return nil, err
		}
		c := &webqa.Chunk{ID: strconv.Itoa(pos), Position: pos, Content: text}
		chunks[c.ID] = c
		if err := batch.Index(c.ID, document{Content: text}); err != nil {
			_ = bi.Close()
			return nil, webqa.Errorf(webqa.EINTERNAL, "index chunk %d: %v", pos, err)
		}
	}
	if err := bi.Batch(batch); err != nil {
		_ = bi.Close()
		return nil, webqa.Errorf(webqa.EINTERNAL, "index batch: %v", err)
	}

	return &Index{index: bi, chunks: chunks}, nil
}

// Index is a keyword index over one artifact.
type Index struct {
	index  bleve.Index
	chunks map[string]*webqa.Chunk
}

// Search runs a match query for query and returns up to limit chunks by
// descending relevance. Ties keep document order. A non-positive limit
// returns every matching chunk.
func (x *Index) Search(ctx context.Context, query string, limit int) ([]webqa.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, webqa.Errorf(webqa.EINVALID, "query required")
	}

	size := limit
	if size <= 0 {
		size = len(x.chunks)
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), size, 0, false)
	res, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, webqa.Errorf(webqa.EINTERNAL, "search: %v", err)
	}

	results := make([]webqa.SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		c, ok := x.chunks[hit.ID]
		if !ok {
			continue
		}
		results = append(results, webqa.SearchResult{Chunk: c, Score: float32(hit.Score)})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Position < results[j].Chunk.Position
	})
	return results, nil
}

// Len returns the number of indexed chunks.
func (x *Index) Len() int {
	return len(x.chunks)
}

// Close releases the underlying bleve index.
func (x *Index) Close() error {
	return x.index.Close()
}
