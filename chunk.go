package webqa

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Chunk is a section of an artifact optimized for embedding and retrieval.
type Chunk struct {
	ID        string    `json:"id"`
	Position  int       `json:"position"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// SearchResult represents a search match.
type SearchResult struct {
	Chunk *Chunk  `json:"chunk"`
	Score float32 `json:"score"`
}

// Index is a searchable representation of a single artifact.
type Index interface {
	// Search returns up to limit chunks ordered by relevance to query.
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)

	// Len returns the number of indexed chunks.
	Len() int

	// Close releases resources held by the index.
	Close() error
}

// Indexer builds an Index from an artifact on disk.
type Indexer interface {
	// BuildIndex reads the artifact at path and indexes its content.
	// Returns ENOTFOUND if the artifact is empty or unreadable.
	BuildIndex(ctx context.Context, path string) (Index, error)
}

// Embedder computes semantic embeddings for text.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Default chunking parameters, in characters.
const (
	DefaultChunkSize    = 512
	DefaultChunkOverlap = 64
)

// SplitText splits text into word-aligned chunks of at most size characters.
// Consecutive chunks repeat trailing words of the previous chunk totalling
// at most overlap characters. A single word longer than size becomes its own
// chunk. Whitespace-only text yields no chunks.
func SplitText(text string, size, overlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if size <= 0 {
		return []string{strings.Join(words, " ")}
	}
	if overlap >= size {
		overlap = size / 2
	}

	var chunks []string
	var cur []string
	curLen := 0

	for _, w := range words {
		wl := utf8.RuneCountInString(w)
		if len(cur) > 0 && curLen+1+wl > size {
			chunks = append(chunks, strings.Join(cur, " "))
			cur, curLen = tailWords(cur, overlap)
			if len(cur) > 0 && curLen+1+wl > size {
				cur, curLen = nil, 0
			}
		}
		if len(cur) > 0 {
			curLen++
		}
		cur = append(cur, w)
		curLen += wl
	}
	if len(cur) > 0 {
		chunks = append(chunks, strings.Join(cur, " "))
	}
	return chunks
}

// tailWords returns the longest suffix of words whose joined length is at
// most n characters, along with that length.
func tailWords(words []string, n int) ([]string, int) {
	if n <= 0 {
		return nil, 0
	}
	total := 0
	start := len(words)
	for i := len(words) - 1; i >= 0; i-- {
		l := utf8.RuneCountInString(words[i])
		if start < len(words) {
			l++
		}
		if total+l > n {
			break
		}
		total += l
		start = i
	}
	// The tail must not be the whole previous chunk or we'd never advance.
	if start == 0 {
		return nil, 0
	}
	out := make([]string, len(words)-start)
	copy(out, words[start:])
	return out, total
}
