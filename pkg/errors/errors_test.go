package errors_test

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vsinha/fleetdash/pkg/errors"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"not found", errors.NewNotFoundError("reservation", "R1"), errors.ErrNotFound},
		{"validation", errors.NewValidationError("unit", "", "must not be empty"), errors.ErrInvalidInput},
		{"conflict", errors.NewConflictError("unit", "U1", "R2"), errors.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("override: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
		})
	}
}

func TestWrapHelpers(t *testing.T) {
	assert.NoError(t, errors.WrapIO("read", "x.csv", nil))
	assert.NoError(t, errors.WrapResource("save", "state", "", nil))

	err := errors.WrapIO("open", "missing.xlsx", fs.ErrNotExist)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, "open missing.xlsx: file does not exist", err.Error())

	var ioErr *errors.IOError
	assert.True(t, stderrors.As(err, &ioErr))
	assert.Equal(t, "missing.xlsx", ioErr.Path)

	err = errors.WrapResource("load", "state", "fleetdash_state_v1", fs.ErrPermission)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Contains(t, err.Error(), "failed to load state fleetdash_state_v1")
}

func TestPredicates(t *testing.T) {
	assert.True(t, errors.IsNotFound(errors.NewNotFoundError("unit", "U9")))
	assert.True(t, errors.IsConflict(errors.NewConflictError("unit", "U9", "R1")))
	assert.True(t, errors.IsValidationError(errors.NewValidationError("", nil, "bad")))
	assert.False(t, errors.IsNotFound(errors.ErrConflict))
}
