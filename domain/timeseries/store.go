package timeseries

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// Store is the time-series extension contract. Each upsert is atomic per
// row; no cross-row locking is required.
type Store interface {
	// UpsertAt writes the payload at exactly ts, replacing any record
	// already stored at that instant for the same (entity, extension).
	UpsertAt(ctx context.Context, entityID uuid.UUID, entityFQN, extension string, ts int64, payload json.RawMessage) error

	// DeleteAt removes the record at exactly ts. Absence surfaces
	// not_found: deleting a record that was never written is caller error.
	DeleteAt(ctx context.Context, entityID uuid.UUID, extension string, ts int64) error

	// GetAtOrBefore returns the most recent record at or before ts, or nil
	// when the partition holds nothing that old.
	GetAtOrBefore(ctx context.Context, entityID uuid.UUID, extension string, ts int64) (*Record, error)

	// Latest returns the newest record of the partition, or nil when empty.
	Latest(ctx context.Context, entityID uuid.UUID, extension string) (*Record, error)

	// ListPage returns one page in ascending timestamp order. A non-nil
	// before cursor selects reverse paging (records strictly before the
	// cursor); otherwise paging runs forward from the after cursor, or
	// from the beginning. Total is the partition's record count,
	// independent of the window.
	ListPage(ctx context.Context, filter Filter, limit int, before, after *string) (*ResultList, error)
}
