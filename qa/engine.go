package qa

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/webqa"
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 2

// Ensure QueryEngine implements webqa.QueryEngine at compile time.
var _ webqa.QueryEngine = (*QueryEngine)(nil)

// QueryEngine retrieves the most relevant chunks and asks a Generator to
// answer from them.
type QueryEngine struct {
	Generator webqa.Generator
	TopK      int
}

// NewQueryEngine returns a QueryEngine retrieving DefaultTopK chunks.
func NewQueryEngine(gen webqa.Generator) *QueryEngine {
	return &QueryEngine{Generator: gen, TopK: DefaultTopK}
}

// Query answers question from idx. Returns ENOTFOUND when retrieval yields
// nothing or the model answers with blank text.
func (e *QueryEngine) Query(ctx context.Context, idx webqa.Index, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", webqa.Errorf(webqa.EINVALID, "question required")
	}

	topK := e.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	results, err := idx.Search(ctx, question, topK)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", webqa.Errorf(webqa.ENOTFOUND, "no relevant context")
	}

	answer, err := e.Generator.Generate(ctx, BuildPrompt(results, question))
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", webqa.Errorf(webqa.ENOTFOUND, "empty answer")
	}
	return answer, nil
}

// BuildPrompt formats retrieved chunks and the question for the model.
func BuildPrompt(results []webqa.SearchResult, question string) string {
	var sb strings.Builder
	sb.WriteString("Context information is below.\n")
	sb.WriteString("---------------------\n")
	for _, r := range results {
		if r.Chunk == nil {
			continue
		}
		sb.WriteString(r.Chunk.Content)
		sb.WriteString("\n\n")
	}
	sb.WriteString("---------------------\n")
	sb.WriteString("Given the context information and not prior knowledge, answer the query.\n")
	fmt.Fprintf(&sb, "Query: %s\n", question)
	sb.WriteString("Answer: ")
	return sb.String()
}
