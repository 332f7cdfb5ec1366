package webqa

// Extractor turns raw HTML into plain text suitable for indexing.
type Extractor interface {
	// Extract parses html and returns its text in document order.
	// A page without extractable text yields an empty string, not an error.
	Extract(html string) (string, error)
}

// ExtractResult holds the main content of an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	ContentHTML string
}

// ContentExtractor extracts main content from HTML pages, removing boilerplate.
type ContentExtractor interface {
	Extract(html string) (*ExtractResult, error)
}

// Ensure ContentTextExtractor implements Extractor at compile time.
var _ Extractor = (*ContentTextExtractor)(nil)

// ContentTextExtractor adapts a ContentExtractor and a Converter into an
// Extractor: main content is isolated first, then converted to text.
type ContentTextExtractor struct {
	Content   ContentExtractor
	Converter Converter
}

// Extract returns the converted main content of html.
// Pages where no main content is found yield an empty string.
func (e *ContentTextExtractor) Extract(html string) (string, error) {
	result, err := e.Content.Extract(html)
	if err != nil {
		return "", err
	}
	if result == nil || result.ContentHTML == "" {
		return "", nil
	}
	return e.Converter.Convert(result.ContentHTML)
}
