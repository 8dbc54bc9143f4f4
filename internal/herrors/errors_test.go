package herrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDerivesCategoryAndSeverity(t *testing.T) {
	err := New(ErrCodeFileNotFound, "missing", nil)
	assert.Equal(t, CategoryIO, err.Category)
	assert.Equal(t, SeverityError, err.Severity)

	fatal := New(ErrCodeCorruptIndex, "corrupt", nil)
	assert.Equal(t, SeverityFatal, fatal.Severity)
	assert.True(t, IsFatal(fatal))
}

func TestWrapNil(t *testing.T) {
	require.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	a := New(ErrCodeInvalidQuery, "empty query", nil)
	b := New(ErrCodeInvalidQuery, "different message", nil)
	assert.True(t, errors.Is(a, b))

	c := New(ErrCodeInternal, "other", nil)
	assert.False(t, errors.Is(a, c))
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("disk full")
	wrapped := Wrap(ErrCodeStorageError, cause)
	assert.Equal(t, cause, errors.Unwrap(wrapped))
}

func TestCodeExtraction(t *testing.T) {
	assert.Equal(t, ErrCodeInternal, Code(New(ErrCodeInternal, "x", nil)))
	assert.Equal(t, "", Code(errors.New("plain")))
}
