// Package testutil provides in-memory implementations of the catalog
// persistence contracts so engine and service behavior can be tested
// without a database.
package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/meridiandata/meridian/domain/catalog"
	"github.com/meridiandata/meridian/domain/entity"
	"github.com/meridiandata/meridian/pkg/apperror"
)

// MemEntityStore is a map-backed catalog.EntityStore.
type MemEntityStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*catalog.EntityRecord
}

func NewMemEntityStore() *MemEntityStore {
	return &MemEntityStore{rows: make(map[uuid.UUID]*catalog.EntityRecord)}
}

func (s *MemEntityStore) Insert(_ context.Context, rec *catalog.EntityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rows {
		if existing.EntityType == rec.EntityType && existing.FQN == rec.FQN {
			return apperror.ErrConflict.WithMessagef("%s %q already exists", rec.EntityType, rec.FQN)
		}
	}
	cp := *rec
	s.rows[rec.ID] = &cp
	return nil
}

func (s *MemEntityStore) Update(_ context.Context, rec *catalog.EntityRecord, expectedVersion entity.Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.rows[rec.ID]
	if !ok || !entity.Version(existing.Version).Equal(expectedVersion) {
		return apperror.ErrConflict.WithMessagef("%s %q was modified concurrently", rec.EntityType, rec.FQN)
	}
	cp := *rec
	s.rows[rec.ID] = &cp
	return nil
}

func (s *MemEntityStore) GetByID(_ context.Context, entityType string, id uuid.UUID) (*catalog.EntityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.rows[id]
	if !ok || rec.EntityType != entityType {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *MemEntityStore) GetByName(_ context.Context, entityType, fqn string) (*catalog.EntityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.rows {
		if rec.EntityType == entityType && rec.FQN == fqn {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

// MemHistoryStore is a slice-backed catalog.HistoryStore.
type MemHistoryStore struct {
	mu     sync.Mutex
	events []catalog.ChangeEvent
}

func NewMemHistoryStore() *MemHistoryStore {
	return &MemHistoryStore{}
}

func (s *MemHistoryStore) Append(_ context.Context, event *catalog.ChangeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *event)
	return nil
}

func (s *MemHistoryStore) List(_ context.Context, entityID uuid.UUID) ([]catalog.ChangeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []catalog.ChangeEvent
	for _, ev := range s.events {
		if ev.EntityID == entityID {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

// Events returns every appended event in insertion order.
func (s *MemHistoryStore) Events() []catalog.ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.ChangeEvent, len(s.events))
	copy(out, s.events)
	return out
}
