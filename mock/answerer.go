package mock

import (
	"context"

	"github.com/fwojciec/webqa"
)

var _ webqa.Answerer = (*Answerer)(nil)

// Answerer is a mock implementation of webqa.Answerer.
type Answerer struct {
	AnswerFn func(ctx context.Context, req webqa.AnswerRequest) *webqa.AnswerResult
}

func (a *Answerer) Answer(ctx context.Context, req webqa.AnswerRequest) *webqa.AnswerResult {
	return a.AnswerFn(ctx, req)
}
