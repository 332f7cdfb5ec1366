// Package goquery extracts page text using CSS selectors.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/webqa"
)

// DefaultSelector matches paragraph elements.
const DefaultSelector = "p"

// Ensure Extractor implements webqa.Extractor at compile time.
var _ webqa.Extractor = (*Extractor)(nil)

// Extractor concatenates the text of every element matching a selector,
// in document order, separated by single spaces.
type Extractor struct {
	selector string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSelector overrides the CSS selector used to find text elements.
func WithSelector(selector string) Option {
	return func(e *Extractor) {
		e.selector = selector
	}
}

// NewExtractor creates a new paragraph Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{selector: DefaultSelector}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the joined text of all matching elements. Pages without
// matches yield an empty string.
func (e *Extractor) Extract(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", webqa.Errorf(webqa.EINVALID, "failed to parse HTML: %v", err)
	}

	sel := doc.Find(e.selector)
	parts := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})

	return strings.Join(parts, " "), nil
}
