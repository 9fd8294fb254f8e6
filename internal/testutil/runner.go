package testutil

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/meridiandata/meridian/domain/catalog"
	"github.com/meridiandata/meridian/domain/entity"
	"github.com/meridiandata/meridian/pkg/apperror"
)

// Runner is an in-memory catalog.TxRunner. It has no rollback; tests
// exercise the engine's logic, not transactional isolation.
type Runner struct {
	Entities   *MemEntityStore
	History    *MemHistoryStore
	Graph      *MemGraph
	TimeSeries *MemTimeSeries
}

func NewRunner() *Runner {
	return &Runner{
		Entities:   NewMemEntityStore(),
		History:    NewMemHistoryStore(),
		Graph:      NewMemGraph(),
		TimeSeries: NewMemTimeSeries(),
	}
}

func (r *Runner) RunInTx(ctx context.Context, fn func(ctx context.Context, s catalog.Stores) error) error {
	return fn(ctx, r.View())
}

func (r *Runner) View() catalog.Stores {
	return catalog.Stores{
		Entities:      r.Entities,
		History:       r.History,
		Relationships: r.Graph,
		TimeSeries:    r.TimeSeries,
	}
}

// Resolver is a fixture-backed catalog.ReferenceResolver. Register the
// entities a test expects to exist; everything else resolves to a
// not-found error.
type Resolver struct {
	known map[string]*entity.EntityReference
}

func NewResolver() *Resolver {
	return &Resolver{known: make(map[string]*entity.EntityReference)}
}

// Register makes a reference resolvable by id and by fully qualified
// name, returning it for fixture reuse.
func (r *Resolver) Register(entityType, name, fqn string) *entity.EntityReference {
	ref := &entity.EntityReference{
		ID:                 uuid.New(),
		Type:               entityType,
		Name:               name,
		FullyQualifiedName: fqn,
	}
	r.known[entityType+"/"+ref.ID.String()] = ref
	r.known[entityType+"/"+fqn] = ref
	return ref
}

func (r *Resolver) Resolve(_ context.Context, ref *entity.EntityReference) (*entity.EntityReference, error) {
	if ref == nil || ref.Type == "" {
		return nil, apperror.ErrInvalidReference.WithMessage("reference is incomplete")
	}
	if ref.ID != uuid.Nil {
		if found, ok := r.known[ref.Type+"/"+ref.ID.String()]; ok {
			cp := *found
			return &cp, nil
		}
		return nil, apperror.NewNotFound(ref.Type, ref.ID.String())
	}
	if ref.FullyQualifiedName != "" {
		if found, ok := r.known[ref.Type+"/"+ref.FullyQualifiedName]; ok {
			cp := *found
			return &cp, nil
		}
		return nil, apperror.NewNotFound(ref.Type, ref.FullyQualifiedName)
	}
	return nil, apperror.ErrInvalidReference.WithMessage(
		fmt.Sprintf("%s reference has neither id nor fully qualified name", ref.Type))
}
