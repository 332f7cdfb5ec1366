package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/webqa"
)

// Ensure EmbeddingCache implements webqa.Embedder at compile time.
var _ webqa.Embedder = (*EmbeddingCache)(nil)

// EmbeddingCache wraps an Embedder and stores computed vectors keyed by
// model and content hash. Repeated questions about the same page skip the
// embedding model entirely.
type EmbeddingCache struct {
	db    *DB
	next  webqa.Embedder
	model string

	now func() time.Time
}

// NewEmbeddingCache returns a cache in front of next. model namespaces the
// stored vectors so switching models never returns stale entries.
func NewEmbeddingCache(db *DB, next webqa.Embedder, model string) *EmbeddingCache {
	return &EmbeddingCache{db: db, next: next, model: model, now: time.Now}
}

// Embed returns cached vectors where available and embeds the rest.
func (c *EmbeddingCache) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	hashes := make([]string, len(texts))
	var missing []int
	for i, text := range texts {
		hashes[i] = hashContent(text)
		vec, err := c.lookup(ctx, hashes[i])
		if err != nil {
			return nil, err
		}
		if vec == nil {
			missing = append(missing, i)
			continue
		}
		out[i] = vec
	}
	if len(missing) == 0 {
		return out, nil
	}

	pending := make([]string, len(missing))
	for j, i := range missing {
		pending[j] = texts[i]
	}
	vecs, err := c.next.Embed(ctx, pending)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(pending) {
		return nil, webqa.Errorf(webqa.EINTERNAL, "embedder returned %d vectors for %d texts", len(vecs), len(pending))
	}

	if err := c.store(ctx, missing, hashes, vecs); err != nil {
		return nil, err
	}
	for j, i := range missing {
		out[i] = vecs[j]
	}
	return out, nil
}

func (c *EmbeddingCache) lookup(ctx context.Context, hash string) ([]float32, error) {
	var blob []byte
	var dims int
	err := c.db.QueryRowContext(ctx,
		`SELECT dims, vector FROM embeddings WHERE model = ? AND content_hash = ?`,
		c.model, hash,
	).Scan(&dims, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, webqa.Errorf(webqa.EINTERNAL, "lookup embedding: %v", err)
	}
	vec, err := decodeVector(blob)
	if err != nil || len(vec) != dims {
		// Treat a corrupt row as a miss; it is replaced on store.
		return nil, nil
	}
	return vec, nil
}

func (c *EmbeddingCache) store(ctx context.Context, idx []int, hashes []string, vecs [][]float32) error {
	tx, err := c.db.BeginTx(ctx)
	if err != nil {
		return webqa.Errorf(webqa.EINTERNAL, "begin: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	created := c.now().UTC().Format(time.RFC3339)
	for j, i := range idx {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO embeddings (model, content_hash, dims, vector, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (model, content_hash) DO UPDATE SET
				dims = excluded.dims,
				vector = excluded.vector,
				created_at = excluded.created_at
		`, c.model, hashes[i], len(vecs[j]), encodeVector(vecs[j]), created); err != nil {
			return webqa.Errorf(webqa.EINTERNAL, "store embedding: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return webqa.Errorf(webqa.EINTERNAL, "commit: %v", err)
	}
	return nil
}

// Len returns the number of cached vectors for the cache's model.
func (c *EmbeddingCache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM embeddings WHERE model = ?`, c.model,
	).Scan(&n); err != nil {
		return 0, webqa.Errorf(webqa.EINTERNAL, "count embeddings: %v", err)
	}
	return n, nil
}

// hashContent returns the hex xxHash of content.
func hashContent(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// encodeVector packs v as little-endian float32 values.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}
