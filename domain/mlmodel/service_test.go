package mlmodel_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridiandata/meridian/domain/entity"
	"github.com/meridiandata/meridian/domain/mlmodel"
	"github.com/meridiandata/meridian/domain/relationship"
	"github.com/meridiandata/meridian/internal/testutil"
	"github.com/meridiandata/meridian/pkg/apperror"
)

type fixture struct {
	svc      *mlmodel.Service
	runner   *testutil.Runner
	resolver *testutil.Resolver
	service  *entity.EntityReference
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	runner := testutil.NewRunner()
	resolver := testutil.NewResolver()
	svc, err := mlmodel.NewService(runner, resolver, slog.Default())
	require.NoError(t, err)
	return &fixture{
		svc:      svc,
		runner:   runner,
		resolver: resolver,
		service:  resolver.Register("mlmodelService", "mlflow", "mlflow"),
	}
}

func (f *fixture) model(name string) *mlmodel.MlModel {
	m := &mlmodel.MlModel{
		Algorithm: "regression",
		Service:   &entity.EntityReference{ID: f.service.ID, Type: "mlmodelService"},
	}
	m.Name = name
	return m
}

func TestCreateCascadesFullyQualifiedNames(t *testing.T) {
	f := newFixture(t)
	table := f.resolver.Register("table", "users", "warehouse.users")

	m := f.model("churn")
	m.MlFeatures = []mlmodel.MlFeature{{
		Name:     "age",
		DataType: "numerical",
		FeatureSources: []mlmodel.FeatureSource{{
			Name:       "birthdate",
			DataSource: &entity.EntityReference{ID: table.ID, Type: "table"},
		}},
	}}

	created, err := f.svc.Create(context.Background(), m, "tester")
	require.NoError(t, err)

	assert.Equal(t, "mlflow.churn", created.FullyQualifiedName)
	assert.Equal(t, "mlflow.churn.age", created.MlFeatures[0].FullyQualifiedName)
	assert.Equal(t, "mlflow.churn.age.birthdate", created.MlFeatures[0].FeatureSources[0].FullyQualifiedName)

	// The owning service contains the model.
	target, err := f.runner.Graph.FindFrom(context.Background(), created.ID, relationship.Contains, "mlmodelService")
	require.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, f.service.ID, target.ID)
}

func TestCreateRequiresService(t *testing.T) {
	f := newFixture(t)
	m := &mlmodel.MlModel{Algorithm: "regression"}
	m.Name = "churn"
	_, err := f.svc.Create(context.Background(), m, "tester")
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
}

func TestAlgorithmChangeIsMajor(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.CreateOrUpdate(context.Background(), f.model("churn"), "tester")
	require.NoError(t, err)

	// First a server change brings the model to 1.0.
	upd := f.model("churn")
	upd.Server = "http://serving.internal"
	result, _, err := f.svc.CreateOrUpdate(context.Background(), upd, "tester")
	require.NoError(t, err)
	require.True(t, result.Version.Equal(1.0), "got %s", result.Version)

	// Then swapping the algorithm bumps 1.0 to 2.0 with one UPDATED record.
	upd = f.model("churn")
	upd.Server = "http://serving.internal"
	upd.Algorithm = "xgboost"
	result, _, err = f.svc.CreateOrUpdate(context.Background(), upd, "tester")
	require.NoError(t, err)

	assert.True(t, result.Version.Equal(2.0), "got %s", result.Version)
	require.NotNil(t, result.ChangeDescription)
	require.Len(t, result.ChangeDescription.Fields, 1)
	fc := result.ChangeDescription.Fields[0]
	assert.Equal(t, "algorithm", fc.Name)
	assert.Equal(t, entity.ChangeUpdated, fc.Kind)
	assert.Equal(t, "regression", fc.OldValue)
	assert.Equal(t, "xgboost", fc.NewValue)
}

func TestDashboardEdgeDelta(t *testing.T) {
	f := newFixture(t)
	d1 := f.resolver.Register("dashboard", "metrics", "looker.metrics")
	d2 := f.resolver.Register("dashboard", "drift", "looker.drift")

	m := f.model("churn")
	m.Dashboard = &entity.EntityReference{ID: d1.ID, Type: "dashboard"}
	created, _, err := f.svc.CreateOrUpdate(context.Background(), m, "tester")
	require.NoError(t, err)
	assert.True(t, f.runner.Graph.HasEdge(created.ID, d1.ID, relationship.Uses))

	upd := f.model("churn")
	upd.Dashboard = &entity.EntityReference{ID: d2.ID, Type: "dashboard"}
	result, _, err := f.svc.CreateOrUpdate(context.Background(), upd, "tester")
	require.NoError(t, err)

	assert.False(t, f.runner.Graph.HasEdge(created.ID, d1.ID, relationship.Uses), "old edge must be removed")
	assert.True(t, f.runner.Graph.HasEdge(created.ID, d2.ID, relationship.Uses))
	require.NotNil(t, result.ChangeDescription)
	assert.Equal(t, "dashboard", result.ChangeDescription.Fields[0].Name)

	// Re-putting the same dashboard must neither record nor touch edges.
	again := f.model("churn")
	again.Dashboard = &entity.EntityReference{ID: d2.ID, Type: "dashboard"}
	result, _, err = f.svc.CreateOrUpdate(context.Background(), again, "tester")
	require.NoError(t, err)
	assert.Nil(t, result.ChangeDescription)
	assert.Equal(t, 1, f.runner.Graph.CountEdges(relationship.Uses))
}

func TestUpstreamLineageFollowsFeatureSources(t *testing.T) {
	f := newFixture(t)
	t1 := f.resolver.Register("table", "users", "warehouse.users")
	t2 := f.resolver.Register("table", "orders", "warehouse.orders")

	m := f.model("churn")
	m.MlFeatures = []mlmodel.MlFeature{
		{Name: "age", FeatureSources: []mlmodel.FeatureSource{
			{Name: "birthdate", DataSource: &entity.EntityReference{ID: t1.ID, Type: "table"}},
		}},
		{Name: "spend", FeatureSources: []mlmodel.FeatureSource{
			{Name: "total", DataSource: &entity.EntityReference{ID: t2.ID, Type: "table"}},
		}},
	}
	created, _, err := f.svc.CreateOrUpdate(context.Background(), m, "tester")
	require.NoError(t, err)
	assert.True(t, f.runner.Graph.HasEdge(t1.ID, created.ID, relationship.Upstream))
	assert.True(t, f.runner.Graph.HasEdge(t2.ID, created.ID, relationship.Upstream))

	// Dropping the spend feature drops its lineage edge.
	upd := f.model("churn")
	upd.MlFeatures = m.MlFeatures[:1]
	_, _, err = f.svc.CreateOrUpdate(context.Background(), upd, "tester")
	require.NoError(t, err)
	assert.True(t, f.runner.Graph.HasEdge(t1.ID, created.ID, relationship.Upstream))
	assert.False(t, f.runner.Graph.HasEdge(t2.ID, created.ID, relationship.Upstream))
}

func TestTagsAggregateAcrossNesting(t *testing.T) {
	f := newFixture(t)
	m := f.model("churn")
	m.Tags = []entity.TagLabel{{TagFQN: "Tier.Gold"}}
	m.MlFeatures = []mlmodel.MlFeature{{
		Name: "age",
		Tags: []entity.TagLabel{{TagFQN: "PII.Sensitive"}},
		FeatureSources: []mlmodel.FeatureSource{{
			Name: "birthdate",
			Tags: []entity.TagLabel{{TagFQN: "PII.Sensitive"}, {TagFQN: "Source.Raw"}},
		}},
	}}

	created, err := f.svc.Create(context.Background(), m, "tester")
	require.NoError(t, err)

	row, err := f.runner.Entities.GetByID(context.Background(), mlmodel.EntityType, created.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.ElementsMatch(t, []string{"Tier.Gold", "PII.Sensitive", "Source.Raw"}, row.Tags)
}

func TestServiceIsImmutable(t *testing.T) {
	f := newFixture(t)
	other := f.resolver.Register("mlmodelService", "sagemaker", "sagemaker")

	created, err := f.svc.Create(context.Background(), f.model("churn"), "tester")
	require.NoError(t, err)

	patch := []byte(`[{"op":"replace","path":"/service","value":{"id":"` + other.ID.String() + `","type":"mlmodelService"}}]`)
	result, err := f.svc.Patch(context.Background(), created.ID, patch, "tester")
	require.NoError(t, err)

	assert.Equal(t, f.service.ID, result.Service.ID, "service reference must be silently reverted")
	assert.Equal(t, "mlflow.churn", result.FullyQualifiedName)
	assert.Nil(t, result.ChangeDescription)
	assert.True(t, result.Version.Equal(entity.InitialVersion))
}

func TestDashboardSurvivesRoundTrip(t *testing.T) {
	f := newFixture(t)
	d := f.resolver.Register("dashboard", "metrics", "looker.metrics")

	m := f.model("churn")
	m.Dashboard = &entity.EntityReference{ID: d.ID, Type: "dashboard"}
	created, err := f.svc.Create(context.Background(), m, "tester")
	require.NoError(t, err)

	// The stored document carries no dashboard; reads rebuild it from
	// the graph.
	got, err := f.svc.GetByID(context.Background(), created.ID, false)
	require.NoError(t, err)
	require.NotNil(t, got.Dashboard)
	assert.Equal(t, d.ID, got.Dashboard.ID)
}

func TestServiceRefSurvivesRoundTrip(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(context.Background(), f.model("churn"), "tester")
	require.NoError(t, err)

	// The stored document carries no service reference; only the
	// CONTAINS edge does.
	row, err := f.runner.Entities.GetByID(context.Background(), mlmodel.EntityType, created.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.NotContains(t, string(row.JSON), `"service"`)

	got, err := f.svc.GetByID(context.Background(), created.ID, false)
	require.NoError(t, err)
	require.NotNil(t, got.Service)
	assert.Equal(t, f.service.ID, got.Service.ID)
	assert.Equal(t, "mlmodelService", got.Service.Type)
}
