// Package vector implements an in-memory semantic index ranked by cosine
// similarity over embeddings.
package vector

import (
	"context"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/fwojciec/webqa"
)

// Ensure types implement their interfaces at compile time.
var (
	_ webqa.Indexer = (*Indexer)(nil)
	_ webqa.Index   = (*Index)(nil)
)

// Indexer splits an artifact into chunks and embeds each one.
type Indexer struct {
	Embedder webqa.Embedder

	ChunkSize    int
	ChunkOverlap int
}

// NewIndexer returns an Indexer with default chunking.
func NewIndexer(embedder webqa.Embedder) *Indexer {
	return &Indexer{
		Embedder:     embedder,
		ChunkSize:    webqa.DefaultChunkSize,
		ChunkOverlap: webqa.DefaultChunkOverlap,
	}
}

// BuildIndex reads the artifact at path and embeds its chunks.
func (idx *Indexer) BuildIndex(ctx context.Context, path string) (webqa.Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, webqa.Errorf(webqa.ENOTFOUND, "read artifact: %v", err)
	}

	texts := webqa.SplitText(string(data), idx.ChunkSize, idx.ChunkOverlap)
	if len(texts) == 0 {
		return nil, webqa.Errorf(webqa.ENOTFOUND, "no documents found to index")
	}

	vecs, err := embed(ctx, idx.Embedder, texts)
	if err != nil {
		return nil, err
	}

	chunks := make([]*webqa.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = &webqa.Chunk{
			ID:        strconv.Itoa(i),
			Position:  i,
			Content:   text,
			Embedding: Normalize(vecs[i]),
		}
	}

	return &Index{embedder: idx.Embedder, chunks: chunks}, nil
}

func embed(ctx context.Context, e webqa.Embedder, texts []string) ([][]float32, error) {
	vecs, err := e.Embed(ctx, texts)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if code := webqa.ErrorCode(err); code != webqa.EINTERNAL {
			return nil, err
		}
		return nil, webqa.Errorf(webqa.EUNAVAILABLE, "embed: %v", err)
	}
	if len(vecs) != len(texts) {
		return nil, webqa.Errorf(webqa.EINTERNAL, "embedder returned %d vectors for %d texts", len(vecs), len(texts))
	}
	return vecs, nil
}

// Index holds embedded chunks of a single artifact.
type Index struct {
	embedder webqa.Embedder

	mu     sync.RWMutex
	chunks []*webqa.Chunk
	closed bool
}

// Search embeds query and returns up to limit chunks by descending cosine
// similarity. Ties keep document order. A non-positive limit returns every
// chunk.
func (x *Index) Search(ctx context.Context, query string, limit int) ([]webqa.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, webqa.Errorf(webqa.EINVALID, "query required")
	}

	x.mu.RLock()
	closed := x.closed
	x.mu.RUnlock()
	if closed {
		return nil, webqa.Errorf(webqa.EINVALID, "index closed")
	}

	vecs, err := embed(ctx, x.embedder, []string{query})
	if err != nil {
		return nil, err
	}
	q := Normalize(vecs[0])

	x.mu.RLock()
	results := make([]webqa.SearchResult, len(x.chunks))
	for i, c := range x.chunks {
		results[i] = webqa.SearchResult{Chunk: c, Score: Dot(q, c.Embedding)}
	}
	x.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Len returns the number of indexed chunks.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.chunks)
}

// Close drops the indexed chunks.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.chunks = nil
	x.closed = true
	return nil
}

// Normalize returns v scaled to unit length. NaN and infinite components are
// zeroed. Zero vectors are returned as is.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, f := range v {
		if isFinite(f) {
			sum += float64(f) * float64(f)
		}
	}
	out := make([]float32, len(v))
	mag := math.Sqrt(sum)
	for i, f := range v {
		if !isFinite(f) {
			continue
		}
		if mag < 1e-10 {
			out[i] = f
			continue
		}
		out[i] = float32(float64(f) / mag)
	}
	return out
}

// Dot returns the dot product of a and b over their common length. For unit
// vectors this is the cosine similarity.
func Dot(a, b []float32) float32 {
	n := min(len(a), len(b))
	var dot float64
	for i := range n {
		dot += float64(a[i]) * float64(b[i])
	}
	return float32(dot)
}

func isFinite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
