package mock

import (
	"context"

	"github.com/fwojciec/webqa"
)

var _ webqa.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore is a mock implementation of webqa.ArtifactStore.
type ArtifactStore struct {
	SaveFn   func(ctx context.Context, content string) (*webqa.Artifact, error)
	RemoveFn func(ctx context.Context, a *webqa.Artifact) error
}

func (s *ArtifactStore) Save(ctx context.Context, content string) (*webqa.Artifact, error) {
	return s.SaveFn(ctx, content)
}

func (s *ArtifactStore) Remove(ctx context.Context, a *webqa.Artifact) error {
	return s.RemoveFn(ctx, a)
}
