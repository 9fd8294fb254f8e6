package pipeline

import (
	"context"

	"github.com/meridiandata/meridian/domain/catalog"
	"github.com/meridiandata/meridian/domain/entity"
	"github.com/meridiandata/meridian/domain/relationship"
	"github.com/meridiandata/meridian/pkg/apperror"
)

const serviceType = "pipelineService"

// Definition describes the pipeline type to the mutation engine.
func Definition() catalog.Definition[*Pipeline] {
	return catalog.Definition[*Pipeline]{
		EntityType: EntityType,
		New:        func() *Pipeline { return &Pipeline{} },

		Fields: []catalog.FieldSpec[*Pipeline]{
			{Name: "sourceUrl", Significance: catalog.Minor, Get: func(p *Pipeline) any { return p.SourceURL }},
			{Name: "concurrency", Significance: catalog.Minor, Get: func(p *Pipeline) any { return p.Concurrency }},
			{Name: "pipelineLocation", Significance: catalog.Minor, Get: func(p *Pipeline) any { return p.PipelineLocation }},
			{Name: "scheduleInterval", Significance: catalog.Minor, Get: func(p *Pipeline) any { return p.ScheduleInterval }},
			{Name: "startDate", Significance: catalog.Minor, Get: func(p *Pipeline) any { return p.StartDate }},
		},
		Lists: []catalog.ListSpec[*Pipeline]{
			{
				Name:         "tasks",
				Significance: catalog.Minor,
				Get:          func(p *Pipeline) []any { return catalog.ToAnySlice(p.Tasks) },
				Match:        matchTask,
				Nested:       diffTask,
			},
		},

		Prepare:               prepare,
		SetFullyQualifiedName: (*Pipeline).SetFullyQualifiedNames,
		RestoreImmutable: func(original, updated *Pipeline) {
			updated.Service = original.Service
		},
		Reconcile:          retainTaskDescriptions,
		StoreRelationships: storeRelationships,
		CollectTags:        (*Pipeline).CollectTags,
		Project:            project,
		Hydrate:            hydrate,
	}
}

// project strips the owning service reference from the stored document;
// the CONTAINS edge is the source of truth.
func project(p *Pipeline) any {
	cp := *p
	cp.Service = nil
	return &cp
}

func hydrate(ctx context.Context, s catalog.Stores, p *Pipeline) error {
	owner, err := s.Relationships.FindFrom(ctx, p.ID, relationship.Contains, serviceType)
	if err != nil {
		return err
	}
	if owner != nil {
		p.Service = &entity.EntityReference{ID: owner.ID, Type: owner.Type}
	}
	return nil
}

func matchTask(stored, incoming any) bool {
	return stored.(Task).Name == incoming.(Task).Name
}

// diffTask records per-task changes for tasks present in both versions,
// named "tasks.<name>.<field>".
func diffTask(rec *catalog.Recorder, stored, incoming any) {
	s, i := stored.(Task), incoming.(Task)
	prefix := "tasks." + s.Name + "."
	rec.RecordChange(prefix+"description", s.Description, i.Description, catalog.Minor)
	rec.RecordChange(prefix+"displayName", s.DisplayName, i.DisplayName, catalog.Minor)
	rec.RecordChange(prefix+"sourceUrl", s.SourceURL, i.SourceURL, catalog.Minor)
}

// retainTaskDescriptions keeps a stored task description when the
// incoming payload omits it, so ingestion runs that do not carry
// documentation cannot erase it.
func retainTaskDescriptions(original, updated *Pipeline) {
	stored := make(map[string]string, len(original.Tasks))
	for _, t := range original.Tasks {
		stored[t.Name] = t.Description
	}
	for i := range updated.Tasks {
		t := &updated.Tasks[i]
		if t.Description == "" {
			t.Description = stored[t.Name]
		}
	}
}

func prepare(ctx context.Context, resolver catalog.ReferenceResolver, p *Pipeline) error {
	if p.Service == nil {
		return apperror.NewInvalidArgument("pipeline requires a service reference")
	}
	service, err := resolver.Resolve(ctx, p.Service)
	if err != nil {
		return err
	}
	p.Service = service

	seen := make(map[string]struct{}, len(p.Tasks))
	for _, t := range p.Tasks {
		if t.Name == "" {
			return apperror.NewInvalidArgument("task name must not be empty")
		}
		if _, dup := seen[t.Name]; dup {
			return apperror.ErrInvalidArgument.WithMessagef("duplicate task name %q", t.Name)
		}
		seen[t.Name] = struct{}{}
	}
	return nil
}

func storeRelationships(ctx context.Context, s catalog.Stores, p *Pipeline) error {
	return s.Relationships.Add(ctx, p.Service.ID, serviceType, p.ID, EntityType, relationship.Contains)
}
