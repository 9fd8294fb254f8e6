package pipeline_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridiandata/meridian/domain/entity"
	"github.com/meridiandata/meridian/domain/pipeline"
	"github.com/meridiandata/meridian/internal/config"
	"github.com/meridiandata/meridian/internal/testutil"
	"github.com/meridiandata/meridian/pkg/apperror"
)

type fixture struct {
	svc      *pipeline.Service
	runner   *testutil.Runner
	resolver *testutil.Resolver
	service  *entity.EntityReference
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	runner := testutil.NewRunner()
	resolver := testutil.NewResolver()
	cfg := &config.Config{DefaultPageSize: 10, MaxPageSize: 1000}
	svc, err := pipeline.NewService(runner, resolver, cfg, slog.Default())
	require.NoError(t, err)
	return &fixture{
		svc:      svc,
		runner:   runner,
		resolver: resolver,
		service:  resolver.Register("pipelineService", "airflow", "airflow"),
	}
}

func (f *fixture) pipeline(name string, tasks ...pipeline.Task) *pipeline.Pipeline {
	p := &pipeline.Pipeline{
		Tasks:   tasks,
		Service: &entity.EntityReference{ID: f.service.ID, Type: "pipelineService"},
	}
	p.Name = name
	return p
}

func TestCreateCascadesTaskNames(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline("daily", pipeline.Task{Name: "extract"}, pipeline.Task{Name: "load"})

	created, err := f.svc.Create(context.Background(), p, "tester")
	require.NoError(t, err)
	assert.Equal(t, "airflow.daily", created.FullyQualifiedName)
	assert.Equal(t, "airflow.daily.extract", created.Tasks[0].FullyQualifiedName)
	assert.Equal(t, "airflow.daily.load", created.Tasks[1].FullyQualifiedName)
}

func TestServiceRefSurvivesRoundTrip(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(context.Background(), f.pipeline("daily"), "tester")
	require.NoError(t, err)

	// The stored document carries no service reference; only the
	// CONTAINS edge does.
	row, err := f.runner.Entities.GetByID(context.Background(), pipeline.EntityType, created.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.NotContains(t, string(row.JSON), `"service"`)

	got, err := f.svc.GetByID(context.Background(), created.ID, false)
	require.NoError(t, err)
	require.NotNil(t, got.Service)
	assert.Equal(t, f.service.ID, got.Service.ID)
	assert.Equal(t, "pipelineService", got.Service.Type)
}

func TestDuplicateTaskNamesRejected(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline("daily", pipeline.Task{Name: "extract"}, pipeline.Task{Name: "extract"})
	_, err := f.svc.Create(context.Background(), p, "tester")
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
}

func TestTaskDescriptionChangeIsNested(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline("daily", pipeline.Task{Name: "extract", Description: "pulls raw rows"})
	_, _, err := f.svc.CreateOrUpdate(context.Background(), p, "tester")
	require.NoError(t, err)

	upd := f.pipeline("daily", pipeline.Task{Name: "extract", Description: "pulls raw rows hourly"})
	result, _, err := f.svc.CreateOrUpdate(context.Background(), upd, "tester")
	require.NoError(t, err)

	assert.True(t, result.Version.Equal(0.2))
	require.NotNil(t, result.ChangeDescription)
	require.Len(t, result.ChangeDescription.Fields, 1)
	fc := result.ChangeDescription.Fields[0]
	assert.Equal(t, "tasks.extract.description", fc.Name)
	assert.Equal(t, entity.ChangeUpdated, fc.Kind)
	assert.Equal(t, "pulls raw rows hourly", fc.NewValue)
}

func TestTaskDescriptionRetainedOnPut(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline("daily", pipeline.Task{Name: "extract", Description: "pulls raw rows"})
	_, _, err := f.svc.CreateOrUpdate(context.Background(), p, "tester")
	require.NoError(t, err)

	// An ingestion run re-putting the pipeline without documentation
	// must not erase the stored description.
	upd := f.pipeline("daily", pipeline.Task{Name: "extract"})
	result, _, err := f.svc.CreateOrUpdate(context.Background(), upd, "tester")
	require.NoError(t, err)

	assert.Equal(t, "pulls raw rows", result.Tasks[0].Description)
	assert.Nil(t, result.ChangeDescription)
	assert.True(t, result.Version.Equal(entity.InitialVersion))
}

func TestTaskListChanges(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline("daily", pipeline.Task{Name: "extract"}, pipeline.Task{Name: "load"})
	_, _, err := f.svc.CreateOrUpdate(context.Background(), p, "tester")
	require.NoError(t, err)

	upd := f.pipeline("daily", pipeline.Task{Name: "extract"}, pipeline.Task{Name: "transform"})
	result, _, err := f.svc.CreateOrUpdate(context.Background(), upd, "tester")
	require.NoError(t, err)

	require.NotNil(t, result.ChangeDescription)
	kinds := make(map[entity.ChangeKind][]any)
	for _, fc := range result.ChangeDescription.Fields {
		require.Equal(t, "tasks", fc.Name)
		kinds[fc.Kind] = append(kinds[fc.Kind], fc)
	}
	assert.Len(t, kinds[entity.ChangeAdded], 1)
	assert.Len(t, kinds[entity.ChangeDeleted], 1)
	assert.True(t, result.Version.Equal(0.2))
}

func TestStatusUpsertAtSameTimestamp(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline("daily", pipeline.Task{Name: "extract"})
	_, err := f.svc.Create(context.Background(), p, "tester")
	require.NoError(t, err)

	ctx := context.Background()
	_, err = f.svc.AddStatus(ctx, "airflow.daily", pipeline.PipelineStatus{
		Timestamp:       100,
		ExecutionStatus: "Pending",
	})
	require.NoError(t, err)

	// Re-reporting the run at the same timestamp replaces the record.
	_, err = f.svc.AddStatus(ctx, "airflow.daily", pipeline.PipelineStatus{
		Timestamp:       100,
		ExecutionStatus: "Successful",
	})
	require.NoError(t, err)

	page, err := f.svc.ListStatuses(ctx, "airflow.daily", 10, nil, nil)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Successful", page.Data[0].ExecutionStatus)
	assert.Equal(t, 1, page.Paging.Total)
}

func TestStatusRejectsUnknownTask(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline("daily", pipeline.Task{Name: "extract"})
	_, err := f.svc.Create(context.Background(), p, "tester")
	require.NoError(t, err)

	_, err = f.svc.AddStatus(context.Background(), "airflow.daily", pipeline.PipelineStatus{
		Timestamp:       100,
		ExecutionStatus: "Successful",
		TaskStatuses:    []pipeline.TaskStatus{{Name: "ghost", ExecutionStatus: "Failed"}},
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
}

func TestStatusPaginationVisitsEveryRecord(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline("daily", pipeline.Task{Name: "extract"})
	_, err := f.svc.Create(context.Background(), p, "tester")
	require.NoError(t, err)

	ctx := context.Background()
	for ts := int64(1); ts <= 10; ts++ {
		_, err = f.svc.AddStatus(ctx, "airflow.daily", pipeline.PipelineStatus{
			Timestamp:       ts,
			ExecutionStatus: "Successful",
		})
		require.NoError(t, err)
	}

	var visited []int64
	var after *string
	for {
		page, err := f.svc.ListStatuses(ctx, "airflow.daily", 3, nil, after)
		require.NoError(t, err)
		assert.Equal(t, 10, page.Paging.Total)
		for _, s := range page.Data {
			visited = append(visited, s.Timestamp)
		}
		if page.Paging.After == nil {
			break
		}
		after = page.Paging.After
	}

	require.Len(t, visited, 10)
	for i, ts := range visited {
		assert.Equal(t, int64(i+1), ts, "statuses must arrive oldest first without gaps")
	}
}

func TestStatusDefaultPageSize(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline("daily", pipeline.Task{Name: "extract"})
	_, err := f.svc.Create(context.Background(), p, "tester")
	require.NoError(t, err)

	ctx := context.Background()
	for ts := int64(1); ts <= 12; ts++ {
		_, err = f.svc.AddStatus(ctx, "airflow.daily", pipeline.PipelineStatus{
			Timestamp:       ts,
			ExecutionStatus: "Successful",
		})
		require.NoError(t, err)
	}

	page, err := f.svc.ListStatuses(ctx, "airflow.daily", 0, nil, nil)
	require.NoError(t, err)
	assert.Len(t, page.Data, 10, "non-positive limit falls back to the configured page size")
	assert.NotNil(t, page.Paging.After)
}

func TestStatusReversePagination(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline("daily", pipeline.Task{Name: "extract"})
	_, err := f.svc.Create(context.Background(), p, "tester")
	require.NoError(t, err)

	ctx := context.Background()
	for ts := int64(1); ts <= 6; ts++ {
		_, err = f.svc.AddStatus(ctx, "airflow.daily", pipeline.PipelineStatus{
			Timestamp:       ts,
			ExecutionStatus: "Successful",
		})
		require.NoError(t, err)
	}

	// Walk forward to the second page, then back.
	first, err := f.svc.ListStatuses(ctx, "airflow.daily", 2, nil, nil)
	require.NoError(t, err)
	second, err := f.svc.ListStatuses(ctx, "airflow.daily", 2, nil, first.Paging.After)
	require.NoError(t, err)
	require.NotNil(t, second.Paging.Before)

	back, err := f.svc.ListStatuses(ctx, "airflow.daily", 2, second.Paging.Before, nil)
	require.NoError(t, err)
	require.Len(t, back.Data, 2)
	assert.Equal(t, int64(1), back.Data[0].Timestamp)
	assert.Equal(t, int64(2), back.Data[1].Timestamp)
}

func TestLatestStatus(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline("daily", pipeline.Task{Name: "extract"})
	_, err := f.svc.Create(context.Background(), p, "tester")
	require.NoError(t, err)

	ctx := context.Background()
	_, err = f.svc.LatestStatus(ctx, "airflow.daily")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	for ts := int64(1); ts <= 3; ts++ {
		_, err = f.svc.AddStatus(ctx, "airflow.daily", pipeline.PipelineStatus{
			Timestamp:       ts,
			ExecutionStatus: "Successful",
		})
		require.NoError(t, err)
	}
	latest, err := f.svc.LatestStatus(ctx, "airflow.daily")
	require.NoError(t, err)
	assert.Equal(t, int64(3), latest.Timestamp)
}

func TestDeleteStatus(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline("daily", pipeline.Task{Name: "extract"})
	_, err := f.svc.Create(context.Background(), p, "tester")
	require.NoError(t, err)

	ctx := context.Background()
	_, err = f.svc.AddStatus(ctx, "airflow.daily", pipeline.PipelineStatus{
		Timestamp:       100,
		ExecutionStatus: "Successful",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteStatus(ctx, "airflow.daily", 100))
	assert.ErrorIs(t, f.svc.DeleteStatus(ctx, "airflow.daily", 100), apperror.ErrNotFound)
}
