package relationship

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/meridiandata/meridian/pkg/apperror"
)

// Repository is the bun-backed Store implementation. It accepts any
// bun.IDB, so the mutation engine can hand it a transaction and keep
// relationship writes atomic with the entity row write.
type Repository struct {
	db bun.IDB
}

var _ Store = (*Repository)(nil)

// NewRepository creates a relationship repository over db.
func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy of the repository bound to the transaction.
func (r *Repository) WithTx(tx bun.IDB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Add(ctx context.Context, fromID uuid.UUID, fromType string, toID uuid.UUID, toType string, relation Relation) error {
	if !relation.Valid() {
		return apperror.NewInvalidArgument("unknown relation kind")
	}

	edge := &Edge{
		FromID:   fromID,
		FromType: fromType,
		ToID:     toID,
		ToType:   toType,
		Relation: relation,
	}

	_, err := r.db.NewInsert().
		Model(edge).
		On("CONFLICT (from_id, to_id, relation) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

func (r *Repository) DeleteTo(ctx context.Context, fromID uuid.UUID, relation Relation, toType string) error {
	_, err := r.db.NewDelete().
		Model((*Edge)(nil)).
		Where("from_id = ?", fromID).
		Where("relation = ?", relation).
		Where("to_type = ?", toType).
		Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

func (r *Repository) Remove(ctx context.Context, fromID, toID uuid.UUID, relation Relation) error {
	_, err := r.db.NewDelete().
		Model((*Edge)(nil)).
		Where("from_id = ?", fromID).
		Where("to_id = ?", toID).
		Where("relation = ?", relation).
		Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

func (r *Repository) DeleteAll(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*Edge)(nil)).
		Where("from_id = ? OR to_id = ?", id, id).
		Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

func (r *Repository) FindTo(ctx context.Context, fromID uuid.UUID, relation Relation, toType string) (*Target, error) {
	edge := new(Edge)
	err := r.db.NewSelect().
		Model(edge).
		Where("from_id = ?", fromID).
		Where("relation = ?", relation).
		Where("to_type = ?", toType).
		Order("created_at ASC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return &Target{ID: edge.ToID, Type: edge.ToType, Relation: edge.Relation}, nil
}

func (r *Repository) FindFrom(ctx context.Context, toID uuid.UUID, relation Relation, fromType string) (*Target, error) {
	edge := new(Edge)
	err := r.db.NewSelect().
		Model(edge).
		Where("to_id = ?", toID).
		Where("relation = ?", relation).
		Where("from_type = ?", fromType).
		Order("created_at ASC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return &Target{ID: edge.FromID, Type: edge.FromType, Relation: edge.Relation}, nil
}
