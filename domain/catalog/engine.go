package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/google/uuid"

	"github.com/meridiandata/meridian/domain/entity"
	"github.com/meridiandata/meridian/pkg/apperror"
	"github.com/meridiandata/meridian/pkg/logger"
)

// Engine drives the mutation lifecycle for one entity type: create,
// idempotent create-or-update with structural diff and version bump,
// JSON patch, soft delete and restore, reads and version history.
type Engine[T entity.Object] struct {
	def      Definition[T]
	runner   TxRunner
	resolver ReferenceResolver
	log      *slog.Logger
}

// NewEngine validates the definition and builds an engine for it.
func NewEngine[T entity.Object](def Definition[T], runner TxRunner, resolver ReferenceResolver, log *slog.Logger) (*Engine[T], error) {
	if err := def.validate(); err != nil {
		return nil, err
	}
	return &Engine[T]{
		def:      def,
		runner:   runner,
		resolver: resolver,
		log:      log.With(logger.Scope("catalog." + def.EntityType)),
	}, nil
}

// Create stores a new entity at the initial version and writes its
// structural relationships. Fails with a conflict when an entity with
// the same fully qualified name already exists.
func (e *Engine[T]) Create(ctx context.Context, obj T, updatedBy string) (T, error) {
	var zero T
	if err := e.prepare(ctx, obj); err != nil {
		return zero, err
	}
	err := e.runner.RunInTx(ctx, func(ctx context.Context, s Stores) error {
		return e.create(ctx, s, obj, updatedBy)
	})
	if err != nil {
		return zero, err
	}
	return obj, nil
}

// CreateOrUpdate stores the entity if no record with its fully qualified
// name exists, and otherwise runs the full update cycle against the
// stored record: immutable attributes are silently reverted, every other
// field is diffed, the version is bumped per the recorded significance,
// relationship deltas are applied, and a history event is appended only
// when something actually changed. Returns the resulting entity and
// whether it was created.
func (e *Engine[T]) CreateOrUpdate(ctx context.Context, obj T, updatedBy string) (T, bool, error) {
	var zero T
	if err := e.prepare(ctx, obj); err != nil {
		return zero, false, err
	}

	var created bool
	err := e.runner.RunInTx(ctx, func(ctx context.Context, s Stores) error {
		row, err := s.Entities.GetByName(ctx, e.def.EntityType, obj.GetEnvelope().FullyQualifiedName)
		if err != nil {
			return err
		}
		if row == nil {
			created = true
			return e.create(ctx, s, obj, updatedBy)
		}
		original, err := e.decode(ctx, s, row)
		if err != nil {
			return err
		}
		return e.update(ctx, s, original, obj, updatedBy)
	})
	if err != nil {
		return zero, false, err
	}
	return obj, created, nil
}

// Patch applies an RFC 6902 JSON patch to the stored entity and runs the
// update cycle on the result.
func (e *Engine[T]) Patch(ctx context.Context, id uuid.UUID, patchJSON []byte, updatedBy string) (T, error) {
	var zero T

	patch, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return zero, apperror.ErrInvalidArgument.WithMessage("invalid JSON patch").WithInternal(err)
	}

	var result T
	err = e.runner.RunInTx(ctx, func(ctx context.Context, s Stores) error {
		row, err := e.getRow(ctx, s, id, true)
		if err != nil {
			return err
		}
		original, err := e.decode(ctx, s, row)
		if err != nil {
			return err
		}

		doc, err := json.Marshal(original)
		if err != nil {
			return apperror.ErrInternal.WithInternal(err)
		}
		patched, err := patch.Apply(doc)
		if err != nil {
			return apperror.ErrInvalidArgument.WithMessage("JSON patch does not apply").WithInternal(err)
		}
		updated := e.def.New()
		if err := json.Unmarshal(patched, updated); err != nil {
			return apperror.ErrInvalidArgument.WithMessage("patched entity is malformed").WithInternal(err)
		}

		if err := e.prepareInTx(ctx, s, updated); err != nil {
			return err
		}
		if err := e.update(ctx, s, original, updated, updatedBy); err != nil {
			return err
		}
		result = updated
		return nil
	})
	if err != nil {
		return zero, err
	}
	return result, nil
}

// GetByID loads an entity by id. Soft-deleted entities are returned only
// when includeDeleted is set.
func (e *Engine[T]) GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (T, error) {
	var zero T
	s := e.runner.View()
	row, err := e.getRow(ctx, s, id, includeDeleted)
	if err != nil {
		return zero, err
	}
	return e.decode(ctx, s, row)
}

// GetByName loads an entity by fully qualified name.
func (e *Engine[T]) GetByName(ctx context.Context, fqn string, includeDeleted bool) (T, error) {
	var zero T
	s := e.runner.View()
	row, err := s.Entities.GetByName(ctx, e.def.EntityType, fqn)
	if err != nil {
		return zero, err
	}
	if row == nil || (row.Deleted && !includeDeleted) {
		return zero, apperror.NewNotFound(e.def.EntityType, fqn)
	}
	return e.decode(ctx, s, row)
}

// Delete soft-deletes the entity. Its record and relationships remain in
// place so it can be restored.
func (e *Engine[T]) Delete(ctx context.Context, id uuid.UUID, updatedBy string) (T, error) {
	return e.setDeleted(ctx, id, updatedBy, true)
}

// Restore brings a soft-deleted entity back.
func (e *Engine[T]) Restore(ctx context.Context, id uuid.UUID, updatedBy string) (T, error) {
	return e.setDeleted(ctx, id, updatedBy, false)
}

// VersionHistory returns the entity's change events, newest first.
func (e *Engine[T]) VersionHistory(ctx context.Context, id uuid.UUID) ([]ChangeEvent, error) {
	s := e.runner.View()
	if _, err := e.getRow(ctx, s, id, true); err != nil {
		return nil, err
	}
	return s.History.List(ctx, id)
}

func (e *Engine[T]) prepare(ctx context.Context, obj T) error {
	env := obj.GetEnvelope()
	if env.Name == "" {
		return apperror.NewInvalidArgument("entity name must not be empty")
	}
	if e.def.Prepare != nil {
		if err := e.def.Prepare(ctx, e.resolver, obj); err != nil {
			return err
		}
	}
	return e.def.SetFullyQualifiedName(obj)
}

// prepareInTx is the patch-path variant: resolution runs against the
// open transaction's view of the world via the same resolver.
func (e *Engine[T]) prepareInTx(ctx context.Context, _ Stores, obj T) error {
	return e.prepare(ctx, obj)
}

func (e *Engine[T]) create(ctx context.Context, s Stores, obj T, updatedBy string) error {
	env := obj.GetEnvelope()
	if env.ID == uuid.Nil {
		env.ID = uuid.New()
	}
	env.Version = entity.InitialVersion
	env.UpdatedAt = time.Now().UTC()
	env.UpdatedBy = updatedBy
	env.Deleted = false
	env.ChangeDescription = nil

	row, err := e.encode(obj)
	if err != nil {
		return err
	}
	if err := s.Entities.Insert(ctx, row); err != nil {
		return err
	}
	if e.def.StoreRelationships != nil {
		if err := e.def.StoreRelationships(ctx, s, obj); err != nil {
			return err
		}
	}
	e.log.InfoContext(ctx, "entity created",
		slog.String("id", env.ID.String()),
		slog.String("fqn", env.FullyQualifiedName))
	return nil
}

func (e *Engine[T]) update(ctx context.Context, s Stores, original, updated T, updatedBy string) error {
	orig := original.GetEnvelope()
	env := updated.GetEnvelope()

	// Immutable attributes are reverted silently, never recorded.
	env.ID = orig.ID
	env.Name = orig.Name
	env.FullyQualifiedName = orig.FullyQualifiedName
	if e.def.RestoreImmutable != nil {
		e.def.RestoreImmutable(original, updated)
	}

	// An empty incoming description keeps the stored one.
	if env.Description == "" {
		env.Description = orig.Description
	}
	if e.def.Reconcile != nil {
		e.def.Reconcile(original, updated)
	}

	rec := NewRecorder(orig.Version)

	if orig.Deleted {
		rec.RecordChange("deleted", true, false, Minor)
	}
	rec.RecordChange("description", orig.Description, env.Description, Minor)
	rec.RecordChange("displayName", orig.DisplayName, env.DisplayName, Minor)
	rec.RecordListChange("tags",
		ToAnySlice(orig.Tags), ToAnySlice(env.Tags),
		Minor, matchTagLabels, nil)

	for _, f := range e.def.Fields {
		rec.RecordChange(f.Name, f.Get(original), f.Get(updated), f.Significance)
	}
	for _, l := range e.def.Lists {
		rec.RecordListChange(l.Name, l.Get(original), l.Get(updated), l.Significance, l.Match, l.Nested)
	}
	if e.def.UpdateRelationships != nil {
		if err := e.def.UpdateRelationships(ctx, s, rec, original, updated); err != nil {
			return err
		}
	}

	env.Version = rec.NextVersion()
	env.ChangeDescription = rec.Description()
	env.UpdatedAt = time.Now().UTC()
	env.UpdatedBy = updatedBy
	env.Deleted = false

	row, err := e.encode(updated)
	if err != nil {
		return err
	}
	if err := s.Entities.Update(ctx, row, orig.Version); err != nil {
		return err
	}

	if !rec.Changed() {
		return nil
	}
	event := &ChangeEvent{
		EntityID:    env.ID,
		EntityType:  e.def.EntityType,
		PrevVersion: float64(orig.Version),
		Version:     float64(env.Version),
		Change:      env.ChangeDescription,
		UpdatedAt:   env.UpdatedAt,
		UpdatedBy:   updatedBy,
	}
	if err := s.History.Append(ctx, event); err != nil {
		return err
	}
	e.log.InfoContext(ctx, "entity updated",
		slog.String("id", env.ID.String()),
		slog.String("version", env.Version.String()))
	return nil
}

func (e *Engine[T]) setDeleted(ctx context.Context, id uuid.UUID, updatedBy string, deleted bool) (T, error) {
	var zero T
	var result T
	err := e.runner.RunInTx(ctx, func(ctx context.Context, s Stores) error {
		row, err := e.getRow(ctx, s, id, true)
		if err != nil {
			return err
		}
		if row.Deleted == deleted {
			if deleted {
				return apperror.NewNotFound(e.def.EntityType, id.String())
			}
			return apperror.ErrInvalidArgument.WithMessagef("%s %s is not deleted", e.def.EntityType, id)
		}
		obj, err := e.decode(ctx, s, row)
		if err != nil {
			return err
		}
		row.Deleted = deleted
		row.UpdatedAt = time.Now().UTC()
		row.UpdatedBy = updatedBy
		if err := s.Entities.Update(ctx, row, entity.Version(row.Version)); err != nil {
			return err
		}
		obj.GetEnvelope().Deleted = deleted
		result = obj
		return nil
	})
	if err != nil {
		return zero, err
	}
	return result, nil
}

func (e *Engine[T]) getRow(ctx context.Context, s Stores, id uuid.UUID, includeDeleted bool) (*EntityRecord, error) {
	row, err := s.Entities.GetByID(ctx, e.def.EntityType, id)
	if err != nil {
		return nil, err
	}
	if row == nil || (row.Deleted && !includeDeleted) {
		return nil, apperror.NewNotFound(e.def.EntityType, id.String())
	}
	return row, nil
}

// decode rebuilds a full entity from a stored record: the projected
// document plus the authoritative envelope columns, then the graph-backed
// derived fields.
func (e *Engine[T]) decode(ctx context.Context, s Stores, row *EntityRecord) (T, error) {
	var zero T
	obj := e.def.New()
	if err := json.Unmarshal(row.JSON, obj); err != nil {
		return zero, apperror.ErrInternal.WithMessagef("corrupt stored %s document", e.def.EntityType).WithInternal(err)
	}
	env := obj.GetEnvelope()
	env.ID = row.ID
	env.Name = row.Name
	env.FullyQualifiedName = row.FQN
	env.Version = entity.Version(row.Version)
	env.UpdatedAt = row.UpdatedAt
	env.UpdatedBy = row.UpdatedBy
	env.Deleted = row.Deleted
	if e.def.Hydrate != nil {
		if err := e.def.Hydrate(ctx, s, obj); err != nil {
			return zero, err
		}
	}
	return obj, nil
}

func (e *Engine[T]) encode(obj T) (*EntityRecord, error) {
	env := obj.GetEnvelope()
	doc := any(obj)
	if e.def.Project != nil {
		doc = e.def.Project(obj)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, apperror.ErrInternal.WithInternal(err)
	}

	tags := env.Tags
	if e.def.CollectTags != nil {
		tags = entity.MergeTags(tags, e.def.CollectTags(obj))
	}

	return &EntityRecord{
		ID:         env.ID,
		EntityType: e.def.EntityType,
		Name:       env.Name,
		FQN:        env.FullyQualifiedName,
		JSON:       data,
		Tags:       entity.TagFQNs(tags),
		Version:    float64(env.Version),
		UpdatedAt:  env.UpdatedAt,
		UpdatedBy:  env.UpdatedBy,
		Deleted:    env.Deleted,
	}, nil
}

func matchTagLabels(stored, incoming any) bool {
	a, ok := stored.(entity.TagLabel)
	if !ok {
		return false
	}
	b, ok := incoming.(entity.TagLabel)
	if !ok {
		return false
	}
	return a.TagFQN == b.TagFQN
}
