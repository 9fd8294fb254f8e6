package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/meridiandata/meridian/domain/relationship"
)

type memEdge struct {
	fromID   uuid.UUID
	fromType string
	toID     uuid.UUID
	toType   string
	relation relationship.Relation
}

// MemGraph is a slice-backed relationship.Store. Insertion order stands
// in for created_at ordering.
type MemGraph struct {
	mu    sync.Mutex
	edges []memEdge
}

func NewMemGraph() *MemGraph {
	return &MemGraph{}
}

func (g *MemGraph) Add(_ context.Context, fromID uuid.UUID, fromType string, toID uuid.UUID, toType string, relation relationship.Relation) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, e := range g.edges {
		if e.fromID == fromID && e.toID == toID && e.relation == relation {
			return nil
		}
	}
	g.edges = append(g.edges, memEdge{fromID, fromType, toID, toType, relation})
	return nil
}

func (g *MemGraph) DeleteTo(_ context.Context, fromID uuid.UUID, relation relationship.Relation, toType string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edges = filterEdges(g.edges, func(e memEdge) bool {
		return !(e.fromID == fromID && e.relation == relation && e.toType == toType)
	})
	return nil
}

func (g *MemGraph) Remove(_ context.Context, fromID, toID uuid.UUID, relation relationship.Relation) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edges = filterEdges(g.edges, func(e memEdge) bool {
		return !(e.fromID == fromID && e.toID == toID && e.relation == relation)
	})
	return nil
}

func (g *MemGraph) DeleteAll(_ context.Context, id uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edges = filterEdges(g.edges, func(e memEdge) bool {
		return e.fromID != id && e.toID != id
	})
	return nil
}

func (g *MemGraph) FindTo(_ context.Context, fromID uuid.UUID, relation relationship.Relation, toType string) (*relationship.Target, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, e := range g.edges {
		if e.fromID == fromID && e.relation == relation && e.toType == toType {
			return &relationship.Target{ID: e.toID, Type: e.toType, Relation: e.relation}, nil
		}
	}
	return nil, nil
}

func (g *MemGraph) FindFrom(_ context.Context, toID uuid.UUID, relation relationship.Relation, fromType string) (*relationship.Target, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, e := range g.edges {
		if e.toID == toID && e.relation == relation && e.fromType == fromType {
			return &relationship.Target{ID: e.fromID, Type: e.fromType, Relation: e.relation}, nil
		}
	}
	return nil, nil
}

// CountEdges returns how many stored edges carry the relation.
func (g *MemGraph) CountEdges(relation relationship.Relation) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, e := range g.edges {
		if e.relation == relation {
			n++
		}
	}
	return n
}

// HasEdge reports whether the exact edge is stored.
func (g *MemGraph) HasEdge(fromID, toID uuid.UUID, relation relationship.Relation) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, e := range g.edges {
		if e.fromID == fromID && e.toID == toID && e.relation == relation {
			return true
		}
	}
	return false
}

func filterEdges(edges []memEdge, keep func(memEdge) bool) []memEdge {
	out := edges[:0]
	for _, e := range edges {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
