package mlmodel

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/meridiandata/meridian/domain/catalog"
)

// Service is the ML model API surface over the generic mutation engine.
type Service struct {
	engine *catalog.Engine[*MlModel]
}

func NewService(runner catalog.TxRunner, resolver catalog.ReferenceResolver, log *slog.Logger) (*Service, error) {
	engine, err := catalog.NewEngine(Definition(), runner, resolver, log)
	if err != nil {
		return nil, err
	}
	return &Service{engine: engine}, nil
}

func (s *Service) Create(ctx context.Context, m *MlModel, updatedBy string) (*MlModel, error) {
	return s.engine.Create(ctx, m, updatedBy)
}

func (s *Service) CreateOrUpdate(ctx context.Context, m *MlModel, updatedBy string) (*MlModel, bool, error) {
	return s.engine.CreateOrUpdate(ctx, m, updatedBy)
}

func (s *Service) Patch(ctx context.Context, id uuid.UUID, patchJSON []byte, updatedBy string) (*MlModel, error) {
	return s.engine.Patch(ctx, id, patchJSON, updatedBy)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*MlModel, error) {
	return s.engine.GetByID(ctx, id, includeDeleted)
}

func (s *Service) GetByName(ctx context.Context, fqn string, includeDeleted bool) (*MlModel, error) {
	return s.engine.GetByName(ctx, fqn, includeDeleted)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, updatedBy string) (*MlModel, error) {
	return s.engine.Delete(ctx, id, updatedBy)
}

func (s *Service) Restore(ctx context.Context, id uuid.UUID, updatedBy string) (*MlModel, error) {
	return s.engine.Restore(ctx, id, updatedBy)
}

func (s *Service) VersionHistory(ctx context.Context, id uuid.UUID) ([]catalog.ChangeEvent, error) {
	return s.engine.VersionHistory(ctx, id)
}
