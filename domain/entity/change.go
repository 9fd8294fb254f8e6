package entity

// ChangeKind classifies a single field change within an update.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "ADDED"
	ChangeUpdated ChangeKind = "UPDATED"
	ChangeDeleted ChangeKind = "DELETED"
)

// FieldChange records one field-level difference between the stored and
// incoming representation of an entity.
type FieldChange struct {
	Name     string     `json:"name"`
	Kind     ChangeKind `json:"kind"`
	OldValue any        `json:"oldValue,omitempty"`
	NewValue any        `json:"newValue,omitempty"`
}

// ChangeDescription is the structural diff produced by one update,
// attached to the updated entity and persisted for audit. It is computed
// once and never mutated afterwards.
type ChangeDescription struct {
	PreviousVersion Version       `json:"previousVersion"`
	NewVersion      Version       `json:"newVersion"`
	Fields          []FieldChange `json:"fields,omitempty"`
}
