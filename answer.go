package webqa

import (
	"context"
	"strings"
)

// AnswerRequest asks a question about the page at URL.
type AnswerRequest struct {
	URL      string `json:"url"`
	Question string `json:"question"`
}

// Validate returns an error if the request contains invalid fields.
func (r *AnswerRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return Errorf(EINVALID, "url required")
	}
	if strings.TrimSpace(r.Question) == "" {
		return Errorf(EINVALID, "question required")
	}
	return nil
}

// State is a step of the answer pipeline.
type State string

// Pipeline states, in order.
const (
	StateIdle       State = "idle"
	StateFetching   State = "fetching"
	StateExtracting State = "extracting"
	StateIndexing   State = "indexing"
	StateQuerying   State = "querying"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Reason tags why a pipeline run failed.
type Reason string

// Failure reasons. Each maps to a fixed user-facing message.
const (
	ReasonNone         Reason = ""
	ReasonMissingInput Reason = "missing_input"
	ReasonFetchError   Reason = "fetch_error"
	ReasonExtractError Reason = "extract_error"
	ReasonIndexError   Reason = "index_error"
	ReasonNoAnswer     Reason = "no_answer"
	ReasonQueryError   Reason = "query_error"
)

// User-facing messages.
const (
	MsgMissingInput = "URL and question are required."
	MsgFetchError   = "Failed to fetch webpage."
	MsgExtractError = "Failed to extract webpage content."
	MsgIndexError   = "Failed to load index."
	MsgNoAnswer     = "No relevant answer found."
	MsgQueryError   = "Error fetching answer."
)

// Message returns the fixed user-facing message for r.
func (r Reason) Message() string {
	switch r {
	case ReasonMissingInput:
		return MsgMissingInput
	case ReasonFetchError:
		return MsgFetchError
	case ReasonExtractError:
		return MsgExtractError
	case ReasonIndexError:
		return MsgIndexError
	case ReasonNoAnswer:
		return MsgNoAnswer
	default:
		return MsgQueryError
	}
}

// AnswerResult is the terminal output of a pipeline run.
type AnswerResult struct {
	Answer string `json:"answer"`
	Found  bool   `json:"found"`
	Reason Reason `json:"reason,omitempty"`

	// Err holds the internal failure for logging. Never shown to callers.
	Err error `json:"-"`
}

// Failed returns a result for a run that stopped with reason.
func Failed(reason Reason, err error) *AnswerResult {
	return &AnswerResult{Answer: reason.Message(), Reason: reason, Err: err}
}

// Answerer answers questions about web pages.
type Answerer interface {
	// Answer runs the request to completion. It never returns an error:
	// every failure is encoded in the result's Reason and Answer.
	Answer(ctx context.Context, req AnswerRequest) *AnswerResult
}
