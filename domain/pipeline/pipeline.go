// Package pipeline is the data pipeline catalog entity: tasks, the diff
// definition, and the execution-status time series.
package pipeline

import (
	"github.com/meridiandata/meridian/domain/entity"
)

const EntityType = "pipeline"

// StatusExtension keys the pipeline execution statuses in the
// time-series store.
const StatusExtension = "pipeline.pipelineStatus"

// Pipeline is a scheduled data pipeline and its tasks. No pipeline field
// is breaking for consumers; every change bumps the minor version.
type Pipeline struct {
	entity.Envelope

	SourceURL        string                  `json:"sourceUrl,omitempty"`
	Concurrency      int                     `json:"concurrency,omitempty"`
	PipelineLocation string                  `json:"pipelineLocation,omitempty"`
	ScheduleInterval string                  `json:"scheduleInterval,omitempty"`
	StartDate        string                  `json:"startDate,omitempty"`
	Tasks            []Task                  `json:"tasks,omitempty"`
	Service          *entity.EntityReference `json:"service,omitempty"`
}

func (p *Pipeline) EntityType() string { return EntityType }

// Task is one node of the pipeline DAG.
type Task struct {
	Name               string            `json:"name"`
	DisplayName        string            `json:"displayName,omitempty"`
	Description        string            `json:"description,omitempty"`
	FullyQualifiedName string            `json:"fullyQualifiedName,omitempty"`
	SourceURL          string            `json:"sourceUrl,omitempty"`
	TaskType           string            `json:"taskType,omitempty"`
	DownstreamTasks    []string          `json:"downstreamTasks,omitempty"`
	Tags               []entity.TagLabel `json:"tags,omitempty"`
}

// CollectTags gathers pipeline and task tags.
func (p *Pipeline) CollectTags() []entity.TagLabel {
	var all []entity.TagLabel
	all = entity.MergeTags(all, p.Tags)
	for _, t := range p.Tasks {
		all = entity.MergeTags(all, t.Tags)
	}
	return all
}

// SetFullyQualifiedNames derives the pipeline FQN under its service and
// cascades into its tasks.
func (p *Pipeline) SetFullyQualifiedNames() error {
	parent := ""
	if p.Service != nil {
		parent = p.Service.FullyQualifiedName
	}
	fqn, err := entity.BuildFQN(parent, p.Name)
	if err != nil {
		return err
	}
	p.FullyQualifiedName = fqn

	for i := range p.Tasks {
		t := &p.Tasks[i]
		if t.FullyQualifiedName, err = entity.BuildFQN(p.FullyQualifiedName, t.Name); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) taskNames() map[string]struct{} {
	names := make(map[string]struct{}, len(p.Tasks))
	for _, t := range p.Tasks {
		names[t.Name] = struct{}{}
	}
	return names
}
