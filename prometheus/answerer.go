// Package prometheus records answer pipeline metrics.
package prometheus

import (
	"context"
	"time"

	"github.com/fwojciec/webqa"
	"github.com/prometheus/client_golang/prometheus"
)

// ReasonOK labels successful answers.
const ReasonOK = "ok"

// Ensure Answerer implements webqa.Answerer at compile time.
var _ webqa.Answerer = (*Answerer)(nil)

// Answerer wraps an Answerer and counts and times every run by outcome.
type Answerer struct {
	next webqa.Answerer

	answers  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewAnswerer registers the answer metrics with reg and returns a decorator
// around next.
func NewAnswerer(next webqa.Answerer, reg prometheus.Registerer) (*Answerer, error) {
	a := &Answerer{
		next: next,
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "webqa",
			Name:      "answers_total",
			Help:      "Answer requests by outcome reason.",
		}, []string{"reason"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "webqa",
			Name:      "answer_duration_seconds",
			Help:      "Time to answer a request by outcome reason.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"reason"}),
	}
	for _, c := range []prometheus.Collector{a.answers, a.duration} {
		if err := reg.Register(c); err != nil {
			return nil, webqa.Errorf(webqa.EINTERNAL, "register metrics: %v", err)
		}
	}
	return a, nil
}

// Answer delegates to the wrapped Answerer and records the outcome.
func (a *Answerer) Answer(ctx context.Context, req webqa.AnswerRequest) *webqa.AnswerResult {
	begin := time.Now()
	result := a.next.Answer(ctx, req)

	reason := ReasonOK
	if result != nil && result.Reason != webqa.ReasonNone {
		reason = string(result.Reason)
	}
	a.answers.WithLabelValues(reason).Inc()
	a.duration.WithLabelValues(reason).Observe(time.Since(begin).Seconds())
	return result
}
