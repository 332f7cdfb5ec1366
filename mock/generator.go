package mock

import (
	"context"

	"github.com/fwojciec/webqa"
)

var _ webqa.Generator = (*Generator)(nil)

// Generator is a mock implementation of webqa.Generator.
type Generator struct {
	GenerateFn func(ctx context.Context, prompt string) (string, error)
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.GenerateFn(ctx, prompt)
}

var _ webqa.QueryEngine = (*QueryEngine)(nil)

// QueryEngine is a mock implementation of webqa.QueryEngine.
type QueryEngine struct {
	QueryFn func(ctx context.Context, idx webqa.Index, question string) (string, error)
}

func (q *QueryEngine) Query(ctx context.Context, idx webqa.Index, question string) (string, error) {
	return q.QueryFn(ctx, idx, question)
}
