package pipeline

import (
	"encoding/json"

	"github.com/meridiandata/meridian/domain/timeseries"
)

// PipelineStatus is one execution record of a pipeline run, keyed by its
// timestamp within the pipeline's status time series.
type PipelineStatus struct {
	Timestamp       int64        `json:"timestamp"`
	ExecutionStatus string       `json:"executionStatus"`
	TaskStatuses    []TaskStatus `json:"taskStatus,omitempty"`
}

// TaskStatus is the per-task outcome within one run.
type TaskStatus struct {
	Name            string `json:"name"`
	ExecutionStatus string `json:"executionStatus"`
	LogLink         string `json:"logLink,omitempty"`
}

// StatusList is one page of execution statuses plus the cursors to walk
// the series.
type StatusList struct {
	Data   []PipelineStatus  `json:"data"`
	Paging timeseries.Paging `json:"paging"`
}

func decodeStatuses(records []timeseries.Record) ([]PipelineStatus, error) {
	out := make([]PipelineStatus, 0, len(records))
	for _, r := range records {
		var status PipelineStatus
		if err := json.Unmarshal(r.JSON, &status); err != nil {
			return nil, err
		}
		out = append(out, status)
	}
	return out, nil
}
