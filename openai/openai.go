// Package openai talks to an OpenAI-compatible API for embeddings and text
// generation. By default it targets a local Ollama server.
package openai

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/webqa"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Defaults for a local Ollama server.
const (
	DefaultBaseURL     = "http://localhost:11434/v1/"
	DefaultAPIKey      = "ollama"
	DefaultEmbedModel  = "all-minilm"
	DefaultLLMModel    = "mistral"
	DefaultTemperature = 0.1
)

// DefaultSystemPrompt instructs the model to stay within the retrieved context.
const DefaultSystemPrompt = "You answer questions about a single web page. " +
	"Use only the provided context. If the context does not contain the answer, reply with an empty message."

// Config holds client settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// MaxRetries is the client's retry count. Zero disables retries.
	MaxRetries int
}

// NewClient returns an API client for cfg. Empty fields fall back to the
// Ollama defaults.
func NewClient(cfg Config) openai.Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = DefaultAPIKey
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	opts = append(opts, option.WithMaxRetries(max(cfg.MaxRetries, 0)))
	return openai.NewClient(opts...)
}

// Ensure Embedder implements webqa.Embedder at compile time.
var _ webqa.Embedder = (*Embedder)(nil)

// Embedder computes embeddings with the embeddings endpoint.
type Embedder struct {
	client openai.Client
	model  string
}

// NewEmbedder creates an Embedder. An empty model selects DefaultEmbedModel.
func NewEmbedder(client openai.Client, model string) *Embedder {
	if strings.TrimSpace(model) == "" {
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

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return nil, apiError(ctx, "embed", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, webqa.Errorf(webqa.EUNAVAILABLE, "embed: got %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(out) {
			return nil, webqa.Errorf(webqa.EUNAVAILABLE, "embed: index %d out of range", d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			vec[i] = float32(f)
		}
		out[d.Index] = vec
	}
	return out, nil
}

// Ensure Generator implements webqa.Generator at compile time.
var _ webqa.Generator = (*Generator)(nil)

// Generator produces answers with the chat completions endpoint.
type Generator struct {
	client openai.Client
	model  string

	SystemPrompt string
	Temperature  float64
}

// NewGenerator creates a Generator. An empty model selects DefaultLLMModel.
func NewGenerator(client openai.Client, model string) *Generator {
	if strings.TrimSpace(model) == "" {
		model = DefaultLLMModel
	}
	return &Generator{
		client:       client,
		model:        model,
		SystemPrompt: DefaultSystemPrompt,
		Temperature:  DefaultTemperature,
	}
}

// Generate sends prompt as a user message and returns the trimmed reply.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", webqa.Errorf(webqa.EINVALID, "prompt required")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if g.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(g.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(g.model),
		Messages:    messages,
		Temperature: openai.Float(g.Temperature),
	})
	if err != nil {
		return "", apiError(ctx, "generate", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// apiError maps client failures onto application codes. Context errors pass
// through unchanged.
func apiError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return webqa.Errorf(webqa.ETIMEOUT, "%s: %v", op, err)
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		// A missing model is a server-side problem, not a missing answer.
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 && apiErr.StatusCode != 404 {
			return webqa.Errorf(webqa.EINVALID, "%s: %v", op, err)
		}
	}
	return webqa.Errorf(webqa.EUNAVAILABLE, "%s: %v", op, err)
}
