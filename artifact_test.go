package webqa_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/fwojciec/webqa"
	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	t.Parallel()

	t.Run("returns short text unchanged", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "hello world", webqa.Truncate("hello world", 1000))
	})

	t.Run("cuts to exactly n characters", func(t *testing.T) {
		t.Parallel()

		text := strings.Repeat("abcdefghij", 150)

		got := webqa.Truncate(text, webqa.MaxArtifactChars)

		assert.Len(t, got, 1000)
		assert.Equal(t, text[:1000], got)
	})

	t.Run("may cut mid-word", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "hello wo", webqa.Truncate("hello world", 8))
	})

	t.Run("counts characters not bytes", func(t *testing.T) {
		t.Parallel()

		text := strings.Repeat("ż", 1200)

		got := webqa.Truncate(text, webqa.MaxArtifactChars)

		assert.Equal(t, 1000, utf8.RuneCountInString(got))
		assert.True(t, utf8.ValidString(got))
	})

	t.Run("returns empty string for zero limit", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, webqa.Truncate("hello", 0))
	})

	t.Run("handles empty input", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, webqa.Truncate("", 10))
	})
}
