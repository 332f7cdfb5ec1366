// Package gemini implements text generation and embeddings with Google Gemini.
package gemini

import (
	"context"
	"strings"

	"github.com/fwojciec/webqa"
	"google.golang.org/genai"
)

// Default model names.
const (
	DefaultLLMModel   = "gemini-2.5-flash"
	DefaultEmbedModel = "text-embedding-004"
)

// NewClient creates a Gemini API client authenticated with apiKey.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, webqa.Errorf(webqa.EINVALID, "gemini api key required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, webqa.Errorf(webqa.EUNAVAILABLE, "gemini client: %v", err)
	}
	return client, nil
}

// Ensure Generator implements webqa.Generator at compile time.
var _ webqa.Generator = (*Generator)(nil)

// Generator answers prompts using Google Gemini.
type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator creates a new Generator. An empty model selects DefaultLLMModel.
func NewGenerator(client *genai.Client, model string) *Generator {
	if model == "" {
		model = DefaultLLMModel
	}
	return &Generator{client: client, model: model}
}

// Generate sends prompt to the model and returns the trimmed reply.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", webqa.Errorf(webqa.EINVALID, "prompt required")
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		BuildConfig(),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", webqa.Errorf(webqa.EUNAVAILABLE, "gemini generate: %v", err)
	}
	if result == nil {
		return "", webqa.Errorf(webqa.EINTERNAL, "gemini returned nil result")
	}

	return strings.TrimSpace(result.Text()), nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.1)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You answer questions about a single web page. Use only the provided context. If the context does not contain the answer, reply with an empty message.",
			}},
		},
		Temperature: &temp,
	}
}

// Ensure Embedder implements webqa.Embedder at compile time.
var _ webqa.Embedder = (*Embedder)(nil)

// Embedder computes embeddings using Google Gemini.
type Embedder struct {
	client *genai.Client
	model  string
}

// NewEmbedder creates a new Embedder. An empty model selects DefaultEmbedModel.
func NewEmbedder(client *genai.Client, model string) *Embedder {
	if model == "" {
		model = DefaultEmbedModel
	}
	return &Embedder{client: client, model: model}
}

// Model returns the embedding model name.
func (e *Embedder) Model() string { return e.model }

// Embed returns one vector per text, in input order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = &genai.Content{Parts: []*genai.Part{{Text: text}}}
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, nil)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, webqa.Errorf(webqa.EUNAVAILABLE, "gemini embed: %v", err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		return nil, webqa.Errorf(webqa.EUNAVAILABLE, "gemini embed: unexpected embedding count")
	}

	out := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil {
			return nil, webqa.Errorf(webqa.EUNAVAILABLE, "gemini embed: missing embedding %d", i)
		}
		out[i] = emb.Values
	}
	return out, nil
}
