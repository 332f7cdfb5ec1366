package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/webqa"
	"github.com/prometheus/client_golang/prometheus"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Answerer webqa.Answerer
	Registry *prometheus.Registry
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config `embed:""`

	Serve ServeCmd `cmd:"" help:"Serve the question answering API"`
	Ask   AskCmd   `cmd:"" help:"Answer a single question about a web page"`
}

// Config holds the flags shared by every command.
type Config struct {
	LogLevel string `name:"log-level" default:"info" env:"WEBQA_LOG_LEVEL" help:"Log level (debug, info, warn, error)"`

	FetchTimeout    time.Duration `name:"fetch-timeout" default:"10s" env:"WEBQA_FETCH_TIMEOUT" help:"Timeout for a single fetch attempt"`
	FetchAttempts   int           `name:"fetch-attempts" default:"3" env:"WEBQA_FETCH_ATTEMPTS" help:"Fetch attempts on timeout"`
	FetchRetryDelay time.Duration `name:"fetch-retry-delay" default:"2s" env:"WEBQA_FETCH_RETRY_DELAY" help:"Delay between timed out fetch attempts"`
	UserAgent       string        `name:"user-agent" default:"Mozilla/5.0" env:"WEBQA_USER_AGENT" help:"User-Agent header sent with fetches"`
	FetchRPS        float64       `name:"fetch-rps" default:"0" env:"WEBQA_FETCH_RPS" help:"Per-domain fetch rate limit, 0 disables"`
	Fetcher         string        `name:"fetcher" default:"http" enum:"http,browser" env:"WEBQA_FETCHER" help:"Fetch backend (http, browser)"`

	Extractor      string `name:"extractor" default:"paragraphs" enum:"paragraphs,trafilatura,readability" env:"WEBQA_EXTRACTOR" help:"Text extraction mode"`
	MaxChars       int    `name:"max-chars" default:"1000" env:"WEBQA_MAX_CHARS" help:"Maximum characters kept from a page, at most 1000"`
	ArtifactDir    string `name:"artifact-dir" env:"WEBQA_ARTIFACT_DIR" help:"Directory for extracted text artifacts (default: <tmp>/webqa)"`
	SharedArtifact bool   `name:"shared-artifact" env:"WEBQA_SHARED_ARTIFACT" help:"Write every request to one shared artifact file"`
	KeepArtifacts  bool   `name:"keep-artifacts" env:"WEBQA_KEEP_ARTIFACTS" help:"Leave artifact files on disk after answering"`

	Index      string `name:"index" default:"vector" enum:"vector,keyword" env:"WEBQA_INDEX" help:"Retrieval index (vector, keyword)"`
	TopK       int    `name:"top-k" default:"2" env:"WEBQA_TOP_K" help:"Chunks retrieved per question"`
	Provider   string `name:"provider" default:"ollama" enum:"ollama,gemini" env:"WEBQA_PROVIDER" help:"Model provider (ollama, gemini)"`
	BaseURL    string `name:"base-url" env:"WEBQA_BASE_URL" help:"OpenAI-compatible API base URL (default: local Ollama)"`
	EmbedModel string `name:"embed-model" env:"WEBQA_EMBED_MODEL" help:"Embedding model name"`
	LLMModel   string `name:"llm-model" env:"WEBQA_LLM_MODEL" help:"Generation model name"`
	Cache      string `name:"cache" env:"WEBQA_CACHE" help:"SQLite file caching embeddings, empty disables"`

	QueryTimeout time.Duration `name:"query-timeout" default:"0s" env:"WEBQA_QUERY_TIMEOUT" help:"Timeout for indexing and querying, 0 disables"`
	GeminiAPIKey string        `name:"gemini-api-key" env:"GEMINI_API_KEY" help:"Gemini API key for --provider=gemini"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `default:":5000" env:"WEBQA_ADDR" help:"Address to listen on"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	URL      string `arg:"" help:"Web page URL"`
	Question string `arg:"" help:"Question to ask about the page"`
}
