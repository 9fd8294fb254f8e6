package timeseries

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridiandata/meridian/pkg/apperror"
)

func TestCursor_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		ts   int64
	}{
		{"zero", 0},
		{"typical millis", 1700000000000},
		{"negative", -42},
		{"max int64", 1<<63 - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor := EncodeCursor(tt.ts)
			assert.NotEmpty(t, cursor)

			got, err := DecodeCursor(cursor)
			require.NoError(t, err)
			assert.Equal(t, tt.ts, got)
		})
	}
}

func TestDecodeCursor_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{"not base64", "!!not-base64!!"},
		{"base64 of non-number", "aGVsbG8="}, // "hello"
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCursor(tt.cursor)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperror.ErrInvalidCursor))
		})
	}
}
