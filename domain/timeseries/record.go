// Package timeseries stores append-only, timestamp-keyed JSON side-records
// attached to catalog entities (status snapshots, profiles), with
// bidirectional cursor pagination over the timestamp key.
package timeseries

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record is one time-series extension row. (EntityID, Extension,
// Timestamp) is the unique key: at most one record per exact timestamp per
// entity and extension.
type Record struct {
	bun.BaseModel `bun:"table:catalog.entity_extension_tsdb,alias:ts"`

	EntityID  uuid.UUID       `bun:"entity_id,pk,type:uuid" json:"entityId"`
	EntityFQN string          `bun:"entity_fqn,notnull" json:"entityFQN"`
	Extension string          `bun:"extension,pk" json:"extension"`
	Timestamp int64           `bun:"ts,pk" json:"timestamp"`
	JSON      json.RawMessage `bun:"json,type:jsonb,notnull" json:"json"`
}

// Filter scopes a listing to one entity's extension partition.
type Filter struct {
	EntityID  uuid.UUID
	Extension string
}

// Paging carries the opaque cursors and the unfiltered total for one page.
type Paging struct {
	Before *string `json:"before,omitempty"`
	After  *string `json:"after,omitempty"`
	Total  int     `json:"total"`
}

// ResultList is one page of records in ascending timestamp order.
type ResultList struct {
	Data   []Record `json:"data"`
	Paging Paging   `json:"paging"`
}
