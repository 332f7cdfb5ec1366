package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/webqa"
	webqableve "github.com/fwojciec/webqa/bleve"
	"github.com/fwojciec/webqa/fs"
	"github.com/fwojciec/webqa/gemini"
	"github.com/fwojciec/webqa/goquery"
	"github.com/fwojciec/webqa/htmltomarkdown"
	webqahttp "github.com/fwojciec/webqa/http"
	webqaopenai "github.com/fwojciec/webqa/openai"
	webqaprom "github.com/fwojciec/webqa/prometheus"
	"github.com/fwojciec/webqa/qa"
	"github.com/fwojciec/webqa/readability"
	"github.com/fwojciec/webqa/rod"
	webqaslog "github.com/fwojciec/webqa/slog"
	"github.com/fwojciec/webqa/sqlite"
	"github.com/fwojciec/webqa/trafilatura"
	"github.com/fwojciec/webqa/vector"
	"github.com/openai/openai-go/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Answerer replaces the wired pipeline when set. Used for end-to-end
	// testing of the commands.
	Answerer webqa.Answerer

	// Resources released by Close, in reverse order of acquisition.
	closers []func() error
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close releases the fetcher, the embedding cache and any other resources
// opened by Run.
func (m *Main) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	m.closers = nil
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("webqa"),
		kong.Description("Answer questions about a web page with a local language model."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'webqa --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger, err := newLogger(stderr, cli.LogLevel)
	if err != nil {
		return err
	}
	deps.Logger = logger
	deps.Registry = newRegistry()

	answerer := m.Answerer
	if answerer == nil {
		defer m.Close()
		answerer, err = m.buildAnswerer(ctx, &cli.Config, logger, stderr)
		if err != nil {
			return err
		}
	}

	deps.Answerer, err = webqaprom.NewAnswerer(answerer, deps.Registry)
	if err != nil {
		return err
	}

	return kongCtx.Run(deps)
}

// buildAnswerer wires the question answering pipeline described by cfg.
func (m *Main) buildAnswerer(ctx context.Context, cfg *Config, logger *slog.Logger, stderr io.Writer) (webqa.Answerer, error) {
	fetcher, err := m.buildFetcher(cfg)
	if err != nil {
		return nil, err
	}
	retry := qa.NewRetryFetcher(fetcher)
	retry.Attempts = cfg.FetchAttempts
	retry.Delay = cfg.FetchRetryDelay
	retry.Logger = logger

	extractor, err := buildExtractor(cfg.Extractor)
	if err != nil {
		return nil, err
	}

	artifactDir := cfg.ArtifactDir
	if artifactDir == "" {
		artifactDir = filepath.Join(os.TempDir(), "webqa")
	}
	var storeOpts []fs.Option
	if cfg.SharedArtifact {
		storeOpts = append(storeOpts, fs.WithSharedPath(fs.DefaultSharedName))
	}
	artifacts := fs.NewArtifactStore(artifactDir, storeOpts...)

	var client *genai.Client
	if cfg.Provider == "gemini" {
		client, err = gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: set GEMINI_API_KEY. Get a key at https://aistudio.google.com/apikey")
			return nil, err
		}
	}

	indexer, err := m.buildIndexer(cfg, client, logger)
	if err != nil {
		return nil, err
	}

	engine := qa.NewQueryEngine(webqaslog.NewLoggingGenerator(buildGenerator(cfg, client), logger))
	engine.TopK = cfg.TopK

	p := qa.NewPipeline(
		webqaslog.NewLoggingFetcher(retry, logger),
		extractor,
		artifacts,
		webqaslog.NewLoggingIndexer(indexer, logger),
		engine,
	)
	p.Logger = logger
	p.MaxChars = cfg.MaxChars
	p.QueryTimeout = cfg.QueryTimeout
	p.KeepArtifacts = cfg.KeepArtifacts
	return p, nil
}

func (m *Main) buildFetcher(cfg *Config) (webqa.Fetcher, error) {
	if cfg.Fetcher == "browser" {
		f, err := rod.NewFetcher(
			rod.WithFetchTimeout(cfg.FetchTimeout),
			rod.WithUserAgent(cfg.UserAgent),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to start browser (Chrome or Chromium must be installed): %w", err)
		}
		m.closers = append(m.closers, f.Close)
		return f, nil
	}

	opts := []webqahttp.Option{
		webqahttp.WithTimeout(cfg.FetchTimeout),
		webqahttp.WithUserAgent(cfg.UserAgent),
	}
	if cfg.FetchRPS > 0 {
		opts = append(opts, webqahttp.WithLimiter(webqahttp.NewDomainLimiter(cfg.FetchRPS)))
	}
	f := webqahttp.NewFetcher(opts...)
	m.closers = append(m.closers, f.Close)
	return f, nil
}

func buildExtractor(mode string) (webqa.Extractor, error) {
	switch mode {
	case "", "paragraphs":
		return goquery.NewExtractor(), nil
	case "trafilatura":
		return &webqa.ContentTextExtractor{
			Content:   trafilatura.NewExtractor(),
			Converter: htmltomarkdown.NewConverter(),
		}, nil
	case "readability":
		return &webqa.ContentTextExtractor{
			Content:   readability.NewExtractor(),
			Converter: htmltomarkdown.NewConverter(),
		}, nil
	}
	return nil, webqa.Errorf(webqa.EINVALID, "unknown extractor %q", mode)
}

// modelEmbedder is an Embedder that reports its model, which keys the
// embedding cache.
type modelEmbedder interface {
	webqa.Embedder
	Model() string
}

func (m *Main) buildIndexer(cfg *Config, client *genai.Client, logger *slog.Logger) (webqa.Indexer, error) {
	if cfg.Index == "keyword" {
		return webqableve.NewIndexer(), nil
	}

	var embedder modelEmbedder
	if client != nil {
		embedder = gemini.NewEmbedder(client, cfg.EmbedModel)
	} else {
		embedder = webqaopenai.NewEmbedder(openAIClient(cfg), cfg.EmbedModel)
	}

	var e webqa.Embedder = webqaslog.NewLoggingEmbedder(embedder, logger)
	if cfg.Cache != "" {
		db := sqlite.NewDB(cfg.Cache)
		if err := db.Open(); err != nil {
			return nil, fmt.Errorf("failed to open embedding cache at %q: %w", cfg.Cache, err)
		}
		m.closers = append(m.closers, db.Close)
		e = sqlite.NewEmbeddingCache(db, e, embedder.Model())
	}
	return vector.NewIndexer(e), nil
}

func buildGenerator(cfg *Config, client *genai.Client) webqa.Generator {
	if client != nil {
		return gemini.NewGenerator(client, cfg.LLMModel)
	}
	return webqaopenai.NewGenerator(openAIClient(cfg), cfg.LLMModel)
}

func openAIClient(cfg *Config) openai.Client {
	return webqaopenai.NewClient(webqaopenai.Config{BaseURL: cfg.BaseURL})
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, webqa.Errorf(webqa.EINVALID, "invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// newRegistry returns a metrics registry carrying the runtime collectors.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
