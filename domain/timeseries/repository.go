package timeseries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/meridiandata/meridian/pkg/apperror"
)

// Repository is the bun-backed Store implementation.
type Repository struct {
	db bun.IDB
}

var _ Store = (*Repository)(nil)

// NewRepository creates a time-series repository over db.
func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) UpsertAt(ctx context.Context, entityID uuid.UUID, entityFQN, extension string, ts int64, payload json.RawMessage) error {
	record := &Record{
		EntityID:  entityID,
		EntityFQN: entityFQN,
		Extension: extension,
		Timestamp: ts,
		JSON:      payload,
	}

	_, err := r.db.NewInsert().
		Model(record).
		On("CONFLICT (entity_id, extension, ts) DO UPDATE").
		Set("json = EXCLUDED.json").
		Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}
	return nil
}

func (r *Repository) DeleteAt(ctx context.Context, entityID uuid.UUID, extension string, ts int64) error {
	res, err := r.db.NewDelete().
		Model((*Record)(nil)).
		Where("entity_id = ?", entityID).
		Where("extension = ?", extension).
		Where("ts = ?", ts).
		Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperror.ErrNotFound.WithMessagef("no %s record at timestamp %d", extension, ts)
	}
	return nil
}

func (r *Repository) GetAtOrBefore(ctx context.Context, entityID uuid.UUID, extension string, ts int64) (*Record, error) {
	record := new(Record)
	err := r.db.NewSelect().
		Model(record).
		Where("entity_id = ?", entityID).
		Where("extension = ?", extension).
		Where("ts <= ?", ts).
		Order("ts DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return record, nil
}

func (r *Repository) Latest(ctx context.Context, entityID uuid.UUID, extension string) (*Record, error) {
	return r.GetAtOrBefore(ctx, entityID, extension, math.MaxInt64)
}

func (r *Repository) ListPage(ctx context.Context, filter Filter, limit int, before, after *string) (*ResultList, error) {
	if limit <= 0 {
		return nil, apperror.NewInvalidArgument("limit must be positive")
	}

	total, err := r.count(ctx, filter)
	if err != nil {
		return nil, err
	}

	var records []Record
	var paging Paging

	if before != nil { // reverse paging
		ts, err := DecodeCursor(*before)
		if err != nil {
			return nil, err
		}
		err = r.partition(filter).
			Where("ts < ?", ts).
			Order("ts DESC").
			Limit(limit + 1).
			Scan(ctx, &records)
		if err != nil {
			return nil, apperror.ErrDatabase.WithInternal(err)
		}
		records, paging = assembleReversePage(records, limit)
	} else { // forward paging or first page
		ts := int64(math.MinInt64)
		if after != nil {
			if ts, err = DecodeCursor(*after); err != nil {
				return nil, err
			}
		}
		err = r.partition(filter).
			Where("ts > ?", ts).
			Order("ts ASC").
			Limit(limit + 1).
			Scan(ctx, &records)
		if err != nil {
			return nil, apperror.ErrDatabase.WithInternal(err)
		}
		records, paging = assembleForwardPage(records, limit, after == nil)
	}

	paging.Total = total
	return &ResultList{Data: records, Paging: paging}, nil
}

func (r *Repository) partition(filter Filter) *bun.SelectQuery {
	return r.db.NewSelect().
		Model((*Record)(nil)).
		Where("entity_id = ?", filter.EntityID).
		Where("extension = ?", filter.Extension)
}

func (r *Repository) count(ctx context.Context, filter Filter) (int, error) {
	count, err := r.partition(filter).Count(ctx)
	if err != nil {
		return 0, apperror.ErrDatabase.WithInternal(err)
	}
	return count, nil
}
