package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStructuredError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("ingest: %w", NewObligationsError("prog", 2, 1))

	assert.True(t, errors.Is(err, ErrInconsistentObligations))
	assert.False(t, errors.Is(err, ErrInvalidLayout))
	assert.Equal(t, KindInconsistentObligations, KindOf(err))
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}

func TestFormatError(t *testing.T) {
	err := NewStaleError("file:///a.v", 3, 5).WithComponent("panel")

	out := FormatError(err)
	assert.Contains(t, out, "Error [StaleRequest]")
	assert.Contains(t, out, "Component: panel")
	assert.Contains(t, out, "Resource: file:///a.v")

	assert.Equal(t, "boom", FormatError(errors.New("boom")))
}

func TestNewLayoutError(t *testing.T) {
	err := NewLayoutError("negative break width %d", -1)
	assert.Equal(t, "[InvalidLayout] negative break width -1", err.Error())
	assert.ErrorIs(t, err, ErrInvalidLayout)
}
