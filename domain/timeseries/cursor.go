package timeseries

import (
	"encoding/base64"
	"strconv"

	"github.com/meridiandata/meridian/pkg/apperror"
)

// Cursors are opaque to callers: a base64 wrapping of the decimal
// millisecond timestamp that bounds the page. Callers pass them back
// verbatim as before/after.

// EncodeCursor wraps a timestamp into an opaque cursor.
func EncodeCursor(ts int64) string {
	return base64.StdEncoding.EncodeToString([]byte(strconv.FormatInt(ts, 10)))
}

// DecodeCursor unwraps a cursor back into its timestamp.
func DecodeCursor(cursor string) (int64, error) {
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, apperror.ErrInvalidCursor.WithInternal(err)
	}
	ts, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, apperror.ErrInvalidCursor.WithInternal(err)
	}
	return ts, nil
}
