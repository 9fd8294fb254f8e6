package relationship

import (
	"context"

	"github.com/google/uuid"
)

// Target is an edge endpoint as seen from a query: the related entity's
// identity plus the relation that reached it.
type Target struct {
	ID       uuid.UUID
	Type     string
	Relation Relation
}

// Store is the relationship graph contract consumed by the mutation
// engine and by entity read paths. Implementations must make Add
// idempotent and DeleteTo/DeleteFrom no-ops when nothing matches.
type Store interface {
	// Add upserts a typed edge. Inserting an identical edge is a no-op.
	Add(ctx context.Context, fromID uuid.UUID, fromType string, toID uuid.UUID, toType string, relation Relation) error

	// DeleteTo removes outgoing edges of the given relation from fromID to
	// entities of toType. Absence is not an error.
	DeleteTo(ctx context.Context, fromID uuid.UUID, relation Relation, toType string) error

	// Remove deletes one specific edge. Absence is not an error.
	Remove(ctx context.Context, fromID, toID uuid.UUID, relation Relation) error

	// DeleteAll removes every edge touching the entity, in either
	// direction. Called from the owning entity's deletion path.
	DeleteAll(ctx context.Context, id uuid.UUID) error

	// FindTo returns the single entity related via an outgoing edge of the
	// given relation and target type, or nil when there is none. When the
	// store holds more than one matching edge the earliest inserted wins.
	FindTo(ctx context.Context, fromID uuid.UUID, relation Relation, toType string) (*Target, error)

	// FindFrom is the inbound mirror of FindTo: the single entity of
	// fromType that points at toID via the given relation. Used to recover
	// an entity's container.
	FindFrom(ctx context.Context, toID uuid.UUID, relation Relation, fromType string) (*Target, error)
}
