package webqa

import "context"

// Generator produces text from a prompt using a language model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// QueryEngine answers a question against an index.
type QueryEngine interface {
	// Query retrieves context from idx and asks a language model to answer
	// question. Returns ENOTFOUND if retrieval yields nothing or the model
	// returns an empty answer.
	Query(ctx context.Context, idx Index, question string) (string, error)
}
