package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without internal",
			err:  ErrConflict,
			want: "conflict: Entity was modified concurrently",
		},
		{
			name: "with internal",
			err:  ErrDatabase.WithInternal(errors.New("connection refused")),
			want: "database_error: Database operation failed (connection refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Is_MatchesByCode(t *testing.T) {
	err := NewNotFound("mlmodel", "fraud_detection")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))

	wrapped := ErrConflict.WithInternal(errors.New("version 1.2 != 1.3"))
	assert.True(t, errors.Is(wrapped, ErrConflict))
}

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := ErrInternal.WithInternal(inner)
	assert.Equal(t, inner, errors.Unwrap(err))
}

func TestError_WithMessage_DoesNotMutateSentinel(t *testing.T) {
	custom := ErrInvalidArgument.WithMessage("unknown field 'foo'")
	assert.Equal(t, "unknown field 'foo'", custom.Message)
	assert.Equal(t, "Invalid argument", ErrInvalidArgument.Message)
	assert.Equal(t, custom.Code, ErrInvalidArgument.Code)
}

func TestToHTTPError(t *testing.T) {
	status, body := ToHTTPError(NewNotFound("pipeline", "etl.daily"))
	assert.Equal(t, http.StatusNotFound, status)

	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "not_found", errBody["code"])
	assert.Equal(t, "pipeline 'etl.daily' not found", errBody["message"])
}

func TestToHTTPError_UnknownError(t *testing.T) {
	status, body := ToHTTPError(errors.New("some random error"))
	assert.Equal(t, http.StatusInternalServerError, status)

	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "internal_error", errBody["code"])
}
