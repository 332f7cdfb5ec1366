// Package trafilatura isolates a page's main content with go-trafilatura.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/webqa"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements webqa.ContentExtractor at compile time.
var _ webqa.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor. Comments and tables are dropped
// since only running text is indexed.
func NewExtractor() *Extractor {
	return &Extractor{
		opts: trafilatura.Options{
			EnableFallback:  true,
			ExcludeComments: true,
			ExcludeTables:   true,
		},
	}
}

// Extract returns the page's main content. Blank input or a page without
// recognizable content yields an empty result.
func (e *Extractor) Extract(rawHTML string) (*webqa.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return &webqa.ExtractResult{}, nil
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		// trafilatura reports "no content" as an error; treat it as an empty page.
		return &webqa.ExtractResult{}, nil
	}

	out := &webqa.ExtractResult{Title: result.Metadata.Title}
	if result.ContentNode != nil {
		out.ContentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, webqa.Errorf(webqa.EINTERNAL, "render content: %v", err)
		}
	}
	return out, nil
}

func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
