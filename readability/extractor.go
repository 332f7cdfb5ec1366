// Package readability isolates a page's main content with go-readability.
package readability

import (
	"strings"

	"github.com/fwojciec/webqa"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements webqa.ContentExtractor at compile time.
var _ webqa.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the page's main content. Blank input yields an empty
// result; readability failures are reported as EINVALID.
func (e *Extractor) Extract(rawHTML string) (*webqa.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return &webqa.ExtractResult{}, nil
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, webqa.Errorf(webqa.EINVALID, "readability: %v", err)
	}

	return &webqa.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
