package mlmodel

import (
	"context"

	"github.com/meridiandata/meridian/domain/catalog"
	"github.com/meridiandata/meridian/domain/entity"
	"github.com/meridiandata/meridian/domain/relationship"
	"github.com/meridiandata/meridian/pkg/apperror"
)

const serviceType = "mlmodelService"

// Definition describes the ML model type to the mutation engine.
func Definition() catalog.Definition[*MlModel] {
	return catalog.Definition[*MlModel]{
		EntityType: EntityType,
		New:        func() *MlModel { return &MlModel{} },

		Fields: []catalog.FieldSpec[*MlModel]{
			{Name: "algorithm", Significance: catalog.Major, Get: func(m *MlModel) any { return m.Algorithm }},
			{Name: "target", Significance: catalog.Major, Get: func(m *MlModel) any { return m.Target }},
			{Name: "server", Significance: catalog.Major, Get: func(m *MlModel) any { return m.Server }},
			{Name: "mlStore", Significance: catalog.Minor, Get: func(m *MlModel) any { return m.MlStore }},
		},
		Lists: []catalog.ListSpec[*MlModel]{
			{
				Name:         "mlFeatures",
				Significance: catalog.Minor,
				Get:          func(m *MlModel) []any { return catalog.ToAnySlice(m.MlFeatures) },
				Match:        matchFeature,
			},
			{
				Name:         "mlHyperParameters",
				Significance: catalog.Minor,
				Get:          func(m *MlModel) []any { return catalog.ToAnySlice(m.MlHyperParameters) },
				Match:        matchHyperParameter,
			},
		},

		Prepare:               prepare,
		SetFullyQualifiedName: (*MlModel).SetFullyQualifiedNames,
		RestoreImmutable: func(original, updated *MlModel) {
			updated.Service = original.Service
		},
		StoreRelationships:  storeRelationships,
		UpdateRelationships: updateRelationships,
		CollectTags:         (*MlModel).CollectTags,
		Project:             project,
		Hydrate:             hydrate,
	}
}

func matchFeature(stored, incoming any) bool {
	return stored.(MlFeature).Name == incoming.(MlFeature).Name &&
		stored.(MlFeature).DataType == incoming.(MlFeature).DataType
}

func matchHyperParameter(stored, incoming any) bool {
	return stored.(MlHyperParameter).Name == incoming.(MlHyperParameter).Name
}

// prepare resolves every outbound reference before the transaction
// opens: the owning service, the optional dashboard, and each feature
// source's data asset.
func prepare(ctx context.Context, resolver catalog.ReferenceResolver, m *MlModel) error {
	if m.Service == nil {
		return apperror.NewInvalidArgument("mlmodel requires a service reference")
	}
	service, err := resolver.Resolve(ctx, m.Service)
	if err != nil {
		return err
	}
	m.Service = service

	if m.Dashboard != nil {
		dashboard, err := resolver.Resolve(ctx, m.Dashboard)
		if err != nil {
			return err
		}
		m.Dashboard = dashboard
	}

	seen := make(map[string]struct{}, len(m.MlFeatures))
	for i := range m.MlFeatures {
		f := &m.MlFeatures[i]
		if _, dup := seen[f.Name]; dup {
			return apperror.ErrInvalidArgument.WithMessagef("duplicate feature name %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		for j := range f.FeatureSources {
			s := &f.FeatureSources[j]
			if s.DataSource == nil {
				continue
			}
			resolved, err := resolver.Resolve(ctx, s.DataSource)
			if err != nil {
				return err
			}
			s.DataSource = resolved
		}
	}
	return nil
}

func storeRelationships(ctx context.Context, s catalog.Stores, m *MlModel) error {
	err := s.Relationships.Add(ctx, m.Service.ID, serviceType, m.ID, EntityType, relationship.Contains)
	if err != nil {
		return err
	}
	if m.Dashboard != nil {
		err = s.Relationships.Add(ctx, m.ID, EntityType, m.Dashboard.ID, m.Dashboard.Type, relationship.Uses)
		if err != nil {
			return err
		}
	}
	return addLineage(ctx, s, m, nil)
}

// updateRelationships records the dashboard change and keeps the USES
// edge and the upstream lineage in step with the new payload.
func updateRelationships(ctx context.Context, s catalog.Stores, rec *catalog.Recorder, original, updated *MlModel) error {
	if rec.RecordChangeWith("dashboard", original.Dashboard, updated.Dashboard, catalog.Minor, catalog.SameReference) {
		if err := s.Relationships.DeleteTo(ctx, updated.ID, relationship.Uses, "dashboard"); err != nil {
			return err
		}
		if updated.Dashboard != nil {
			err := s.Relationships.Add(ctx, updated.ID, EntityType, updated.Dashboard.ID, updated.Dashboard.Type, relationship.Uses)
			if err != nil {
				return err
			}
		}
	}
	return addLineage(ctx, s, updated, original)
}

// addLineage adds an UPSTREAM edge from every feature-source data asset
// to the model and, given the previous payload, removes edges whose
// source is no longer referenced.
func addLineage(ctx context.Context, s catalog.Stores, m, previous *MlModel) error {
	desired := m.upstreamSources()
	for _, src := range desired {
		err := s.Relationships.Add(ctx, src.ID, src.Type, m.ID, EntityType, relationship.Upstream)
		if err != nil {
			return err
		}
	}
	if previous == nil {
		return nil
	}
	for key, src := range previous.upstreamSources() {
		if _, still := desired[key]; still {
			continue
		}
		if err := s.Relationships.Remove(ctx, src.ID, m.ID, relationship.Upstream); err != nil {
			return err
		}
	}
	return nil
}

// project strips the graph-derived references from the stored document:
// the dashboard (USES edge) and the owning service (CONTAINS edge).
func project(m *MlModel) any {
	cp := *m
	cp.Dashboard = nil
	cp.Service = nil
	return &cp
}

func hydrate(ctx context.Context, s catalog.Stores, m *MlModel) error {
	target, err := s.Relationships.FindTo(ctx, m.ID, relationship.Uses, "dashboard")
	if err != nil {
		return err
	}
	if target != nil {
		m.Dashboard = &entity.EntityReference{ID: target.ID, Type: target.Type}
	}

	owner, err := s.Relationships.FindFrom(ctx, m.ID, relationship.Contains, serviceType)
	if err != nil {
		return err
	}
	if owner != nil {
		m.Service = &entity.EntityReference{ID: owner.ID, Type: owner.Type}
	}
	return nil
}
