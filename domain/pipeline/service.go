package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/meridiandata/meridian/domain/catalog"
	"github.com/meridiandata/meridian/domain/timeseries"
	"github.com/meridiandata/meridian/internal/config"
	"github.com/meridiandata/meridian/pkg/apperror"
	"github.com/meridiandata/meridian/pkg/logger"
	"github.com/meridiandata/meridian/pkg/mathutil"
)

// Service is the pipeline API surface: entity mutations through the
// generic engine plus the execution-status time series.
type Service struct {
	engine *catalog.Engine[*Pipeline]
	runner catalog.TxRunner
	cfg    *config.Config
	log    *slog.Logger
}

func NewService(runner catalog.TxRunner, resolver catalog.ReferenceResolver, cfg *config.Config, log *slog.Logger) (*Service, error) {
	engine, err := catalog.NewEngine(Definition(), runner, resolver, log)
	if err != nil {
		return nil, err
	}
	return &Service{
		engine: engine,
		runner: runner,
		cfg:    cfg,
		log:    log.With(logger.Scope("pipeline.status")),
	}, nil
}

func (s *Service) Create(ctx context.Context, p *Pipeline, updatedBy string) (*Pipeline, error) {
	return s.engine.Create(ctx, p, updatedBy)
}

func (s *Service) CreateOrUpdate(ctx context.Context, p *Pipeline, updatedBy string) (*Pipeline, bool, error) {
	return s.engine.CreateOrUpdate(ctx, p, updatedBy)
}

func (s *Service) Patch(ctx context.Context, id uuid.UUID, patchJSON []byte, updatedBy string) (*Pipeline, error) {
	return s.engine.Patch(ctx, id, patchJSON, updatedBy)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*Pipeline, error) {
	return s.engine.GetByID(ctx, id, includeDeleted)
}

func (s *Service) GetByName(ctx context.Context, fqn string, includeDeleted bool) (*Pipeline, error) {
	return s.engine.GetByName(ctx, fqn, includeDeleted)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, updatedBy string) (*Pipeline, error) {
	return s.engine.Delete(ctx, id, updatedBy)
}

func (s *Service) Restore(ctx context.Context, id uuid.UUID, updatedBy string) (*Pipeline, error) {
	return s.engine.Restore(ctx, id, updatedBy)
}

func (s *Service) VersionHistory(ctx context.Context, id uuid.UUID) ([]catalog.ChangeEvent, error) {
	return s.engine.VersionHistory(ctx, id)
}

// AddStatus upserts one execution status at its timestamp. Re-reporting
// the same run overwrites it in place; history rows never pile up per
// timestamp. Task statuses must reference tasks the pipeline defines.
func (s *Service) AddStatus(ctx context.Context, fqn string, status PipelineStatus) (*PipelineStatus, error) {
	p, err := s.engine.GetByName(ctx, fqn, false)
	if err != nil {
		return nil, err
	}

	known := p.taskNames()
	for _, ts := range status.TaskStatuses {
		if _, ok := known[ts.Name]; !ok {
			return nil, apperror.ErrInvalidArgument.
				WithMessagef("invalid task name %q for pipeline %q", ts.Name, fqn)
		}
	}

	payload, err := json.Marshal(status)
	if err != nil {
		return nil, apperror.ErrInternal.WithInternal(err)
	}
	store := s.runner.View().TimeSeries
	if err := store.UpsertAt(ctx, p.ID, p.FullyQualifiedName, StatusExtension, status.Timestamp, payload); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "pipeline status recorded",
		slog.String("fqn", fqn),
		slog.Int64("timestamp", status.Timestamp))
	return &status, nil
}

// DeleteStatus removes the status at the exact timestamp.
func (s *Service) DeleteStatus(ctx context.Context, fqn string, timestamp int64) error {
	p, err := s.engine.GetByName(ctx, fqn, false)
	if err != nil {
		return err
	}
	return s.runner.View().TimeSeries.DeleteAt(ctx, p.ID, StatusExtension, timestamp)
}

// ListStatuses pages through the pipeline's execution statuses, oldest
// first, using opaque before/after cursors.
func (s *Service) ListStatuses(ctx context.Context, fqn string, limit int, before, after *string) (*StatusList, error) {
	limit = mathutil.ClampLimit(limit, s.cfg.DefaultPageSize, s.cfg.MaxPageSize)
	p, err := s.engine.GetByName(ctx, fqn, true)
	if err != nil {
		return nil, err
	}
	result, err := s.runner.View().TimeSeries.ListPage(ctx,
		timeseries.Filter{EntityID: p.ID, Extension: StatusExtension},
		limit, before, after)
	if err != nil {
		return nil, err
	}
	statuses, err := decodeStatuses(result.Data)
	if err != nil {
		return nil, apperror.ErrInternal.WithMessage("corrupt stored pipeline status").WithInternal(err)
	}
	return &StatusList{Data: statuses, Paging: result.Paging}, nil
}

// LatestStatus returns the most recent execution status, or a not-found
// error when none was ever reported.
func (s *Service) LatestStatus(ctx context.Context, fqn string) (*PipelineStatus, error) {
	p, err := s.engine.GetByName(ctx, fqn, true)
	if err != nil {
		return nil, err
	}
	record, err := s.runner.View().TimeSeries.Latest(ctx, p.ID, StatusExtension)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperror.ErrNotFound.WithMessagef("pipeline %q has no recorded status", fqn)
	}
	var status PipelineStatus
	if err := json.Unmarshal(record.JSON, &status); err != nil {
		return nil, apperror.ErrInternal.WithMessage("corrupt stored pipeline status").WithInternal(err)
	}
	return &status, nil
}
