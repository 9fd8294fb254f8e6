package catalog

import (
	"context"
	"fmt"

	"github.com/meridiandata/meridian/domain/entity"
)

// FieldSpec declares one diffable scalar or object field of an entity
// type: its change-description name, its version significance, and an
// accessor.
type FieldSpec[T entity.Object] struct {
	Name         string
	Significance Significance
	Get          func(T) any
}

// ListSpec declares one diffable list field. Match pairs stored and
// incoming elements (e.g. by name); Nested, when set, compares a matched
// pair and may record per-element changes on the recorder.
type ListSpec[T entity.Object] struct {
	Name         string
	Significance Significance
	Get          func(T) []any
	Match        func(stored, incoming any) bool
	Nested       func(rec *Recorder, stored, incoming any)
}

// Definition describes one entity type to the Engine. The engine owns
// the update cycle; the definition contributes the type-specific parts
// as data and hooks.
type Definition[T entity.Object] struct {
	// EntityType is the stored discriminator, e.g. "mlmodel".
	EntityType string

	// New allocates an empty entity for decoding stored documents.
	New func() T

	// Fields and Lists drive the structural diff beyond the envelope
	// fields the engine compares itself.
	Fields []FieldSpec[T]
	Lists  []ListSpec[T]

	// Prepare validates the incoming entity and resolves its references
	// before any transaction opens. Optional.
	Prepare func(ctx context.Context, resolver ReferenceResolver, e T) error

	// SetFullyQualifiedName derives the entity's FQN and cascades it
	// into named children.
	SetFullyQualifiedName func(e T) error

	// RestoreImmutable reverts type-specific immutable attributes of
	// updated to the stored values, beyond the envelope attributes the
	// engine restores itself. Optional.
	RestoreImmutable func(original, updated T)

	// Reconcile merges stored values the incoming payload legitimately
	// omits, before the diff runs (e.g. a task description the client
	// did not send). Optional.
	Reconcile func(original, updated T)

	// StoreRelationships writes the entity's graph edges after creation.
	// Optional.
	StoreRelationships func(ctx context.Context, s Stores, e T) error

	// UpdateRelationships diffs reference-valued fields between original
	// and updated, records their changes, and applies the edge deltas.
	// Optional.
	UpdateRelationships func(ctx context.Context, s Stores, rec *Recorder, original, updated T) error

	// CollectTags walks the entity and its nested structures and returns
	// every tag label for the aggregated projection. Optional; the
	// engine always includes the envelope tags.
	CollectTags func(e T) []entity.TagLabel

	// Project returns the document stored in the JSON column, with
	// derived reference fields stripped so they are rebuilt from the
	// graph on read. Must not mutate e. Optional; defaults to e itself.
	Project func(e T) any

	// Hydrate rebuilds derived reference fields from the graph after a
	// stored document is decoded. Optional.
	Hydrate func(ctx context.Context, s Stores, e T) error
}

func (d Definition[T]) validate() error {
	if d.EntityType == "" {
		return fmt.Errorf("definition: missing entity type")
	}
	if d.New == nil {
		return fmt.Errorf("definition %s: missing New", d.EntityType)
	}
	if d.SetFullyQualifiedName == nil {
		return fmt.Errorf("definition %s: missing SetFullyQualifiedName", d.EntityType)
	}
	for _, f := range d.Fields {
		if f.Name == "" || f.Get == nil {
			return fmt.Errorf("definition %s: incomplete field spec", d.EntityType)
		}
	}
	for _, l := range d.Lists {
		if l.Name == "" || l.Get == nil || l.Match == nil {
			return fmt.Errorf("definition %s: incomplete list spec %q", d.EntityType, l.Name)
		}
	}
	return nil
}
