package catalog

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/meridiandata/meridian/domain/entity"
	"github.com/meridiandata/meridian/domain/relationship"
	"github.com/meridiandata/meridian/domain/timeseries"
	"github.com/meridiandata/meridian/internal/database"
	"github.com/meridiandata/meridian/pkg/apperror"
	"github.com/meridiandata/meridian/pkg/pgutils"
)

// Repository is the Postgres-backed TxRunner. It hands each mutation
// cycle a persistence context whose stores all share one transaction.
type Repository struct {
	db  *bun.DB
	log *slog.Logger
}

func NewRepository(db *bun.DB, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}

func (r *Repository) RunInTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	tx, err := database.BeginSafeTx(ctx, r.db)
	if err != nil {
		return apperror.ErrDatabase.WithMessage("failed to begin transaction").WithInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(ctx, r.stores(tx.Tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperror.ErrDatabase.WithMessage("failed to commit transaction").WithInternal(err)
	}
	return nil
}

func (r *Repository) View() Stores {
	return r.stores(r.db)
}

func (r *Repository) stores(db bun.IDB) Stores {
	return Stores{
		Entities:      &entityStore{db: db},
		History:       &historyStore{db: db},
		Relationships: relationship.NewRepository(db),
		TimeSeries:    timeseries.NewRepository(db),
	}
}

type entityStore struct {
	db bun.IDB
}

func (s *entityStore) Insert(ctx context.Context, rec *EntityRecord) error {
	_, err := s.db.NewInsert().Model(rec).Exec(ctx)
	if err != nil {
		if pgutils.IsUniqueViolation(err) {
			return apperror.ErrConflict.
				WithMessagef("%s %q already exists", rec.EntityType, rec.FQN).
				WithInternal(err)
		}
		return apperror.ErrDatabase.WithMessage("failed to insert entity").WithInternal(err)
	}
	return nil
}

func (s *entityStore) Update(ctx context.Context, rec *EntityRecord, expectedVersion entity.Version) error {
	res, err := s.db.NewUpdate().
		Model(rec).
		WherePK().
		Where("e.version = ?", float64(expectedVersion)).
		Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithMessage("failed to update entity").WithInternal(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}
	if affected == 0 {
		return apperror.ErrConflict.
			WithMessagef("%s %q was modified concurrently", rec.EntityType, rec.FQN)
	}
	return nil
}

func (s *entityStore) GetByID(ctx context.Context, entityType string, id uuid.UUID) (*EntityRecord, error) {
	rec := new(EntityRecord)
	err := s.db.NewSelect().
		Model(rec).
		Where("e.entity_type = ?", entityType).
		Where("e.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.ErrDatabase.WithMessage("failed to load entity").WithInternal(err)
	}
	return rec, nil
}

func (s *entityStore) GetByName(ctx context.Context, entityType, fqn string) (*EntityRecord, error) {
	rec := new(EntityRecord)
	err := s.db.NewSelect().
		Model(rec).
		Where("e.entity_type = ?", entityType).
		Where("e.fqn = ?", fqn).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.ErrDatabase.WithMessage("failed to load entity").WithInternal(err)
	}
	return rec, nil
}

type historyStore struct {
	db bun.IDB
}

func (s *historyStore) Append(ctx context.Context, event *ChangeEvent) error {
	_, err := s.db.NewInsert().Model(event).Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithMessage("failed to append change event").WithInternal(err)
	}
	return nil
}

func (s *historyStore) List(ctx context.Context, entityID uuid.UUID) ([]ChangeEvent, error) {
	var events []ChangeEvent
	err := s.db.NewSelect().
		Model(&events).
		Where("ce.entity_id = ?", entityID).
		Order("ce.version DESC").
		Scan(ctx)
	if err != nil {
		return nil, apperror.ErrDatabase.WithMessage("failed to load change events").WithInternal(err)
	}
	return events, nil
}
