package goquery_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/webqa"
	"github.com/fwojciec/webqa/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("joins paragraph text in document order", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<body>
<h1>Title is ignored</h1>
<p>First paragraph.</p>
<div><p>Second <b>bold</b> paragraph.</p></div>
<ul><li>List items are ignored</li></ul>
<p>Third.</p>
</body>
</html>`

		text, err := goquery.NewExtractor().Extract(html)

		require.NoError(t, err)
		assert.Equal(t, "First paragraph. Second bold paragraph. Third.", text)
	})

	t.Run("keeps whitespace inside paragraphs", func(t *testing.T) {
		t.Parallel()

		text, err := goquery.NewExtractor().Extract("<p>a\n  b</p><p>c</p>")

		require.NoError(t, err)
		assert.Equal(t, "a\n  b c", text)
	})

	t.Run("returns empty string when page has no paragraphs", func(t *testing.T) {
		t.Parallel()

		text, err := goquery.NewExtractor().Extract("<html><body><div>no paragraphs</div></body></html>")

		require.NoError(t, err)
		assert.Empty(t, text)
	})

	t.Run("handles empty input", func(t *testing.T) {
		t.Parallel()

		text, err := goquery.NewExtractor().Extract("")

		require.NoError(t, err)
		assert.Empty(t, text)
	})

	t.Run("uses custom selector", func(t *testing.T) {
		t.Parallel()

		html := `<article><p>in article</p></article><p>outside</p>`

		text, err := goquery.NewExtractor(goquery.WithSelector("article p")).Extract(html)

		require.NoError(t, err)
		assert.Equal(t, "in article", text)
	})

	t.Run("output truncates to artifact budget", func(t *testing.T) {
		t.Parallel()

		var sb strings.Builder
		for range 40 {
			sb.WriteString("<p>" + strings.Repeat("x", 49) + "</p>")
		}

		text, err := goquery.NewExtractor().Extract(sb.String())
		require.NoError(t, err)

		// 40 paragraphs of 49 chars joined by 39 spaces.
		assert.Len(t, text, 40*49+39)
		assert.Len(t, webqa.Truncate(text, webqa.MaxArtifactChars), 1000)
	})
}
