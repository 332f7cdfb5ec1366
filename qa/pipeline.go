package qa

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webqa"
)

// Ensure Pipeline implements webqa.Answerer at compile time.
var _ webqa.Answerer = (*Pipeline)(nil)

// Pipeline drives one request through fetching, extracting, indexing, and
// querying. Each stage either hands a value to the next or stops the run
// with a failure reason. It holds no locks; all state is per call.
type Pipeline struct {
	Fetcher   webqa.Fetcher
	Extractor webqa.Extractor
	Artifacts webqa.ArtifactStore
	Indexer   webqa.Indexer
	Engine    webqa.QueryEngine
	Logger    *slog.Logger

	// MaxChars caps the artifact length in characters. Values outside
	// 1..webqa.MaxArtifactChars fall back to webqa.MaxArtifactChars.
	MaxChars int

	// QueryTimeout bounds indexing and querying together. Zero means none.
	QueryTimeout time.Duration

	// KeepArtifacts leaves artifact files on disk after the run.
	KeepArtifacts bool

	// Observe, if set, is called on every state transition.
	Observe func(from, to webqa.State)
}

// NewPipeline returns a Pipeline with default limits.
func NewPipeline(fetcher webqa.Fetcher, extractor webqa.Extractor, artifacts webqa.ArtifactStore, indexer webqa.Indexer, engine webqa.QueryEngine) *Pipeline {
	return &Pipeline{
		Fetcher:   fetcher,
		Extractor: extractor,
		Artifacts: artifacts,
		Indexer:   indexer,
		Engine:    engine,
		MaxChars:  webqa.MaxArtifactChars,
	}
}

// run tracks the current state of a single Answer call.
type run struct {
	p     *Pipeline
	state webqa.State
	begin time.Time
	url   string
}

func (r *run) to(next webqa.State, reason webqa.Reason, err error) {
	from := r.state
	r.state = next
	if l := r.p.Logger; l != nil {
		attrs := []any{
			"url", r.url,
			"from", from,
			"to", next,
			"duration", time.Since(r.begin),
		}
		if reason != webqa.ReasonNone {
			attrs = append(attrs, "reason", reason)
		}
		if err != nil {
			attrs = append(attrs, "err", err)
			l.Warn("stage transition", attrs...)
		} else {
			l.Info("stage transition", attrs...)
		}
	}
	if r.p.Observe != nil {
		r.p.Observe(from, next)
	}
	r.begin = time.Now()
}

func (r *run) fail(reason webqa.Reason, err error) *webqa.AnswerResult {
	r.to(webqa.StateFailed, reason, err)
	return webqa.Failed(reason, err)
}

// Answer runs req to completion. It never returns an error; failures are
// encoded in the result.
func (p *Pipeline) Answer(ctx context.Context, req webqa.AnswerRequest) *webqa.AnswerResult {
	r := &run{p: p, state: webqa.StateIdle, begin: time.Now(), url: req.URL}

	if err := req.Validate(); err != nil {
		return r.fail(webqa.ReasonMissingInput, err)
	}

	r.to(webqa.StateFetching, webqa.ReasonNone, nil)
	page, err := p.Fetcher.Fetch(ctx, req.URL)
	if err != nil {
		return r.fail(webqa.ReasonFetchError, err)
	}

	r.to(webqa.StateExtracting, webqa.ReasonNone, nil)
	artifact, err := p.extract(ctx, page)
	if err != nil {
		return r.fail(webqa.ReasonExtractError, err)
	}
	defer p.cleanup(artifact)

	if p.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.QueryTimeout)
		defer cancel()
	}

	r.to(webqa.StateIndexing, webqa.ReasonNone, nil)
	idx, err := p.Indexer.BuildIndex(ctx, artifact.Path)
	if err != nil {
		return r.fail(webqa.ReasonIndexError, err)
	}
	defer func() {
		if err := idx.Close(); err != nil && p.Logger != nil {
			p.Logger.Warn("close index", "err", err)
		}
	}()

	r.to(webqa.StateQuerying, webqa.ReasonNone, nil)
	answer, err := p.Engine.Query(ctx, idx, req.Question)
	switch {
	case webqa.ErrorCode(err) == webqa.ENOTFOUND:
		return r.fail(webqa.ReasonNoAnswer, err)
	case err != nil:
		return r.fail(webqa.ReasonQueryError, err)
	case answer == "":
		return r.fail(webqa.ReasonNoAnswer, nil)
	}

	r.to(webqa.StateDone, webqa.ReasonNone, nil)
	return &webqa.AnswerResult{Answer: answer, Found: true}
}

// extract turns the fetched page into a persisted, truncated artifact.
func (p *Pipeline) extract(ctx context.Context, page *webqa.Page) (*webqa.Artifact, error) {
	text, err := p.Extractor.Extract(page.HTML)
	if err != nil {
		return nil, err
	}

	maxChars := p.MaxChars
	if maxChars <= 0 || maxChars > webqa.MaxArtifactChars {
		maxChars = webqa.MaxArtifactChars
	}
	return p.Artifacts.Save(ctx, webqa.Truncate(text, maxChars))
}

func (p *Pipeline) cleanup(a *webqa.Artifact) {
	if p.KeepArtifacts {
		return
	}
	if err := p.Artifacts.Remove(context.Background(), a); err != nil && p.Logger != nil {
		p.Logger.Warn("remove artifact", "path", a.Path, "err", err)
	}
}
