// Package fs provides file-based storage for page text artifacts.
package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/webqa"
	"github.com/google/uuid"
)

// DefaultSharedName is the file name used in shared mode.
const DefaultSharedName = "web_content.txt"

// Ensure ArtifactStore implements webqa.ArtifactStore at compile time.
var _ webqa.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore writes artifacts as UTF-8 text files under a base directory.
// By default each artifact gets its own file so concurrent requests never
// share one.
type ArtifactStore struct {
	baseDir string
	shared  string

	now   func() time.Time
	newID func() string
}

// Option configures an ArtifactStore.
type Option func(*ArtifactStore)

// WithSharedPath makes every Save overwrite the single file name under the
// base directory. Concurrent requests race on it; use only for
// single-request deployments that need a stable path.
func WithSharedPath(name string) Option {
	return func(s *ArtifactStore) {
		if name == "" {
			name = DefaultSharedName
		}
		s.shared = name
	}
}

// NewArtifactStore creates a store rooted at baseDir.
func NewArtifactStore(baseDir string, opts ...Option) *ArtifactStore {
	s := &ArtifactStore{
		baseDir: baseDir,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save writes content to a new artifact file, creating the base directory if
// needed.
func (s *ArtifactStore) Save(ctx context.Context, content string) (*webqa.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := s.newID()
	name := key + ".txt"
	if s.shared != "" {
		name = s.shared
	}
	path := filepath.Join(s.baseDir, name)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, webqa.Errorf(webqa.EINTERNAL, "create artifact dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return nil, webqa.Errorf(webqa.EINTERNAL, "write artifact: %v", err)
	}

	return &webqa.Artifact{
		Key:       key,
		Path:      path,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}, nil
}

// Remove deletes the artifact's file. In shared mode the file is left in
// place since another request may already own it.
func (s *ArtifactStore) Remove(_ context.Context, a *webqa.Artifact) error {
	if a == nil || a.Path == "" || s.shared != "" {
		return nil
	}
	if err := os.Remove(a.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return webqa.Errorf(webqa.EINTERNAL, "remove artifact: %v", err)
	}
	return nil
}
