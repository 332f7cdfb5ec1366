package webqa_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/webqa"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := webqa.Errorf(webqa.ETIMEOUT, "fetch %q timed out", "https://example.com")

	assert.Equal(t, webqa.ETIMEOUT, webqa.ErrorCode(err))
	assert.Equal(t, "fetch \"https://example.com\" timed out", webqa.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, webqa.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, webqa.ErrorMessage(nil))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("indexing: %w", webqa.Errorf(webqa.ENOTFOUND, "no documents"))

	assert.Equal(t, webqa.ENOTFOUND, webqa.ErrorCode(err))
	assert.Equal(t, "no documents", webqa.ErrorMessage(err))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := errors.New("disk on fire")

	assert.Equal(t, webqa.EINTERNAL, webqa.ErrorCode(err))
	assert.Equal(t, "Internal error.", webqa.ErrorMessage(err))
}
