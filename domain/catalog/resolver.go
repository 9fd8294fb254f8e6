package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/meridiandata/meridian/domain/entity"
	"github.com/meridiandata/meridian/pkg/apperror"
)

// Resolver validates entity references against the catalog.entity table
// regardless of entity type.
type Resolver struct {
	store EntityStore
}

func NewResolver(db *bun.DB) *Resolver {
	return &Resolver{store: &entityStore{db: db}}
}

// Resolve looks the reference up by id, or by fully qualified name when
// no id is set, and returns a completed copy. References to soft-deleted
// entities resolve; the Deleted flag on the result tells them apart.
func (r *Resolver) Resolve(ctx context.Context, ref *entity.EntityReference) (*entity.EntityReference, error) {
	if ref == nil {
		return nil, apperror.ErrInvalidReference.WithMessage("reference is nil")
	}
	if ref.Type == "" {
		return nil, apperror.ErrInvalidReference.WithMessage("reference has no entity type")
	}

	var (
		rec *EntityRecord
		err error
	)
	switch {
	case ref.ID != uuid.Nil:
		rec, err = r.store.GetByID(ctx, ref.Type, ref.ID)
	case ref.FullyQualifiedName != "":
		rec, err = r.store.GetByName(ctx, ref.Type, ref.FullyQualifiedName)
	default:
		return nil, apperror.ErrInvalidReference.
			WithMessagef("%s reference has neither id nor fully qualified name", ref.Type)
	}
	if err != nil {
		return nil, err
	}
	if rec == nil {
		target := ref.FullyQualifiedName
		if ref.ID != uuid.Nil {
			target = ref.ID.String()
		}
		return nil, apperror.NewNotFound(ref.Type, target)
	}

	return &entity.EntityReference{
		ID:                 rec.ID,
		Type:               rec.EntityType,
		Name:               rec.Name,
		FullyQualifiedName: rec.FQN,
		Deleted:            rec.Deleted,
	}, nil
}
