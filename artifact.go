package webqa

import (
	"context"
	"time"
	"unicode/utf8"
)

// MaxArtifactChars is the number of characters kept from a page's text.
const MaxArtifactChars = 1000

// Artifact is the truncated plain-text snapshot of a page, persisted between
// extraction and indexing.
type Artifact struct {
	Key       string    `json:"key"`
	Path      string    `json:"path"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// ArtifactStore persists text artifacts.
type ArtifactStore interface {
	// Save writes content to a new artifact, creating any missing
	// directories and overwriting prior content at the same location.
	Save(ctx context.Context, content string) (*Artifact, error)

	// Remove deletes the artifact's backing storage.
	// Removing an artifact that no longer exists is not an error.
	Remove(ctx context.Context, a *Artifact) error
}

// Truncate returns the first n characters of s. The cut is not word-boundary
// aware and may split a word in two.
func Truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
