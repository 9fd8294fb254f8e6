package testutil

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/meridiandata/meridian/domain/timeseries"
	"github.com/meridiandata/meridian/pkg/apperror"
)

// MemTimeSeries is a map-backed timeseries.Store speaking the same
// cursor protocol as the Postgres repository.
type MemTimeSeries struct {
	mu      sync.Mutex
	records []timeseries.Record
}

func NewMemTimeSeries() *MemTimeSeries {
	return &MemTimeSeries{}
}

func (s *MemTimeSeries) UpsertAt(_ context.Context, entityID uuid.UUID, entityFQN, extension string, ts int64, payload json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.EntityID == entityID && r.Extension == extension && r.Timestamp == ts {
			s.records[i].JSON = payload
			return nil
		}
	}
	s.records = append(s.records, timeseries.Record{
		EntityID:  entityID,
		EntityFQN: entityFQN,
		Extension: extension,
		Timestamp: ts,
		JSON:      payload,
	})
	return nil
}

func (s *MemTimeSeries) DeleteAt(_ context.Context, entityID uuid.UUID, extension string, ts int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.EntityID == entityID && r.Extension == extension && r.Timestamp == ts {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return apperror.ErrNotFound.WithMessagef("no %s record at timestamp %d", extension, ts)
}

func (s *MemTimeSeries) GetAtOrBefore(_ context.Context, entityID uuid.UUID, extension string, ts int64) (*timeseries.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *timeseries.Record
	for i, r := range s.records {
		if r.EntityID == entityID && r.Extension == extension && r.Timestamp <= ts {
			if best == nil || r.Timestamp > best.Timestamp {
				best = &s.records[i]
			}
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (s *MemTimeSeries) Latest(ctx context.Context, entityID uuid.UUID, extension string) (*timeseries.Record, error) {
	return s.GetAtOrBefore(ctx, entityID, extension, math.MaxInt64)
}

func (s *MemTimeSeries) ListPage(_ context.Context, filter timeseries.Filter, limit int, before, after *string) (*timeseries.ResultList, error) {
	if limit <= 0 {
		return nil, apperror.NewInvalidArgument("limit must be positive")
	}

	s.mu.Lock()
	all := make([]timeseries.Record, 0)
	for _, r := range s.records {
		if r.EntityID == filter.EntityID && r.Extension == filter.Extension {
			all = append(all, r)
		}
	}
	s.mu.Unlock()
	sort.Slice(all, func(i, j int) bool { return all[i].Timestamp < all[j].Timestamp })

	total := len(all)
	var page []timeseries.Record
	var paging timeseries.Paging

	if before != nil {
		ts, err := timeseries.DecodeCursor(*before)
		if err != nil {
			return nil, err
		}
		var older []timeseries.Record
		for _, r := range all {
			if r.Timestamp < ts {
				older = append(older, r)
			}
		}
		if len(older) > limit {
			page = older[len(older)-limit:]
			cur := timeseries.EncodeCursor(page[0].Timestamp)
			paging.Before = &cur
		} else {
			page = older
		}
		if len(page) > 0 {
			cur := timeseries.EncodeCursor(page[len(page)-1].Timestamp)
			paging.After = &cur
		}
	} else {
		ts := int64(math.MinInt64)
		if after != nil {
			var err error
			if ts, err = timeseries.DecodeCursor(*after); err != nil {
				return nil, err
			}
		}
		var newer []timeseries.Record
		for _, r := range all {
			if r.Timestamp > ts {
				newer = append(newer, r)
			}
		}
		hasMore := len(newer) > limit
		if hasMore {
			newer = newer[:limit]
		}
		page = newer
		if hasMore && len(page) > 0 {
			cur := timeseries.EncodeCursor(page[len(page)-1].Timestamp)
			paging.After = &cur
		}
		if after != nil && len(page) > 0 {
			cur := timeseries.EncodeCursor(page[0].Timestamp)
			paging.Before = &cur
		}
	}

	paging.Total = total
	return &timeseries.ResultList{Data: page, Paging: paging}, nil
}
