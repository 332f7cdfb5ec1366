package mock

import "github.com/fwojciec/webqa"

var _ webqa.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of webqa.Extractor.
type Extractor struct {
	ExtractFn func(html string) (string, error)
}

func (e *Extractor) Extract(html string) (string, error) {
	return e.ExtractFn(html)
}

var _ webqa.ContentExtractor = (*ContentExtractor)(nil)

// ContentExtractor is a mock implementation of webqa.ContentExtractor.
type ContentExtractor struct {
	ExtractFn func(html string) (*webqa.ExtractResult, error)
}

func (e *ContentExtractor) Extract(html string) (*webqa.ExtractResult, error) {
	return e.ExtractFn(html)
}
