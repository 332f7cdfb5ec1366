// Package slog provides logging decorators for webqa services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webqa"
)

// Ensure LoggingFetcher implements webqa.Fetcher.
var _ webqa.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with request logging.
type LoggingFetcher struct {
	next   webqa.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next webqa.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL, status, and body size of each fetch.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (page *webqa.Page, err error) {
	defer func(begin time.Time) {
		var bytes, status int
		if page != nil {
			bytes, status = len(page.HTML), page.StatusCode
		}
		f.logger.Info("fetch",
			"url", url,
			"status", status,
			"bytes", bytes,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

// Ensure LoggingIndexer implements webqa.Indexer.
var _ webqa.Indexer = (*LoggingIndexer)(nil)

// LoggingIndexer wraps an Indexer with build logging.
type LoggingIndexer struct {
	next   webqa.Indexer
	logger *slog.Logger
}

// NewLoggingIndexer creates a new LoggingIndexer.
func NewLoggingIndexer(next webqa.Indexer, logger *slog.Logger) *LoggingIndexer {
	return &LoggingIndexer{next: next, logger: logger}
}

// BuildIndex logs the artifact path and resulting chunk count.
func (i *LoggingIndexer) BuildIndex(ctx context.Context, path string) (idx webqa.Index, err error) {
	defer func(begin time.Time) {
		var chunks int
		if idx != nil {
			chunks = idx.Len()
		}
		i.logger.Info("build index",
			"path", path,
			"chunks", chunks,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return i.next.BuildIndex(ctx, path)
}

// Ensure LoggingEmbedder implements webqa.Embedder.
var _ webqa.Embedder = (*LoggingEmbedder)(nil)

// LoggingEmbedder wraps an Embedder with debug logging.
type LoggingEmbedder struct {
	next   webqa.Embedder
	logger *slog.Logger
}

// NewLoggingEmbedder creates a new LoggingEmbedder.
func NewLoggingEmbedder(next webqa.Embedder, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{next: next, logger: logger}
}

// Embed logs batch size and vector dimensions at debug level.
func (e *LoggingEmbedder) Embed(ctx context.Context, texts []string) (vecs [][]float32, err error) {
	defer func(begin time.Time) {
		var dims int
		if len(vecs) > 0 {
			dims = len(vecs[0])
		}
		e.logger.Debug("embed",
			"texts", len(texts),
			"dims", dims,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Embed(ctx, texts)
}

// Ensure LoggingGenerator implements webqa.Generator.
var _ webqa.Generator = (*LoggingGenerator)(nil)

// LoggingGenerator wraps a Generator with request logging. Prompt and
// answer text are not logged, only their sizes.
type LoggingGenerator struct {
	next   webqa.Generator
	logger *slog.Logger
}

// NewLoggingGenerator creates a new LoggingGenerator.
func NewLoggingGenerator(next webqa.Generator, logger *slog.Logger) *LoggingGenerator {
	return &LoggingGenerator{next: next, logger: logger}
}

// Generate logs prompt and answer sizes.
func (g *LoggingGenerator) Generate(ctx context.Context, prompt string) (answer string, err error) {
	defer func(begin time.Time) {
		g.logger.Info("generate",
			"prompt_bytes", len(prompt),
			"answer_bytes", len(answer),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return g.next.Generate(ctx, prompt)
}
