package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/meridiandata/meridian/domain/entity"
	"github.com/meridiandata/meridian/domain/relationship"
	"github.com/meridiandata/meridian/domain/timeseries"
)

// EntityRecord is the stored shape of a catalog entity. The JSON column
// holds the projected entity document; envelope columns are authoritative
// and overwrite whatever the document carries when the record is decoded.
type EntityRecord struct {
	bun.BaseModel `bun:"table:catalog.entity,alias:e"`

	ID         uuid.UUID       `bun:"id,pk,type:uuid"`
	EntityType string          `bun:"entity_type,notnull"`
	Name       string          `bun:"name,notnull"`
	FQN        string          `bun:"fqn,notnull"`
	JSON       json.RawMessage `bun:"json,type:jsonb,notnull"`
	Tags       []string        `bun:"tags,type:jsonb"`
	Version    float64         `bun:"version,notnull"`
	UpdatedAt  time.Time       `bun:"updated_at,notnull"`
	UpdatedBy  string          `bun:"updated_by"`
	Deleted    bool            `bun:"deleted,notnull"`
}

// ChangeEvent is one row of an entity's version history: the
// ChangeDescription that moved it from PrevVersion to Version.
type ChangeEvent struct {
	bun.BaseModel `bun:"table:catalog.entity_change_event,alias:ce"`

	EntityID    uuid.UUID                 `bun:"entity_id,pk,type:uuid"`
	EntityType  string                    `bun:"entity_type,notnull"`
	PrevVersion float64                   `bun:"prev_version,notnull"`
	Version     float64                   `bun:"version,pk"`
	Change      *entity.ChangeDescription `bun:"change,type:jsonb"`
	UpdatedAt   time.Time                 `bun:"updated_at,notnull"`
	UpdatedBy   string                    `bun:"updated_by"`
}

// EntityStore persists entity records. Lookups return (nil, nil) when no
// record exists so callers can distinguish absence from failure without
// sentinel errors on the hot path.
type EntityStore interface {
	Insert(ctx context.Context, rec *EntityRecord) error
	// Update replaces the record only while it still carries
	// expectedVersion, returning apperror.ErrConflict otherwise.
	Update(ctx context.Context, rec *EntityRecord, expectedVersion entity.Version) error
	GetByID(ctx context.Context, entityType string, id uuid.UUID) (*EntityRecord, error)
	GetByName(ctx context.Context, entityType, fqn string) (*EntityRecord, error)
}

// HistoryStore persists version-history events.
type HistoryStore interface {
	Append(ctx context.Context, event *ChangeEvent) error
	// List returns an entity's events newest first.
	List(ctx context.Context, entityID uuid.UUID) ([]ChangeEvent, error)
}

// Stores is the persistence context handed to one mutation cycle. Inside
// RunInTx every store is bound to the same transaction, so an update and
// its relationship deltas commit or roll back together.
type Stores struct {
	Entities      EntityStore
	History       HistoryStore
	Relationships relationship.Store
	TimeSeries    timeseries.Store
}

// TxRunner runs a function against a transactional persistence context.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
	// View returns non-transactional store handles for read paths.
	View() Stores
}

// ReferenceResolver validates an entity reference against stored state
// and fills in its name and fully qualified name.
type ReferenceResolver interface {
	// Resolve returns the completed reference, apperror.ErrNotFound when
	// no such entity exists, or apperror.ErrInvalidReference when the
	// reference is malformed.
	Resolve(ctx context.Context, ref *entity.EntityReference) (*entity.EntityReference, error)
}
