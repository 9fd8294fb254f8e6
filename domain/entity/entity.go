// Package entity defines the universal envelope shared by every catalog
// entity type, plus the pure helpers operating on it: fully-qualified name
// composition, tag aggregation and semantic version arithmetic.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// EntityReference is a pointer to another catalog entity. References are
// exchanged between entities and the relationship graph; they never embed
// the target's payload.
type EntityReference struct {
	ID                 uuid.UUID `json:"id"`
	Type               string    `json:"type"`
	Name               string    `json:"name,omitempty"`
	FullyQualifiedName string    `json:"fullyQualifiedName,omitempty"`
	DisplayName        string    `json:"displayName,omitempty"`
	Deleted            bool      `json:"deleted,omitempty"`
}

// Envelope carries the identity, naming, and versioning state common to
// all entity types. Concrete entities embed it and expose it through the
// Object interface.
//
// id, name and fullyQualifiedName are immutable after creation: an update
// that attempts to change them is silently reverted to the stored value,
// and the reversion is not counted as a change.
type Envelope struct {
	ID                 uuid.UUID          `json:"id"`
	Name               string             `json:"name"`
	DisplayName        string             `json:"displayName,omitempty"`
	Description        string             `json:"description,omitempty"`
	FullyQualifiedName string             `json:"fullyQualifiedName,omitempty"`
	Version            Version            `json:"version"`
	UpdatedAt          time.Time          `json:"updatedAt"`
	UpdatedBy          string             `json:"updatedBy,omitempty"`
	Deleted            bool               `json:"deleted,omitempty"`
	Tags               []TagLabel         `json:"tags,omitempty"`
	ChangeDescription  *ChangeDescription `json:"changeDescription,omitempty"`
}

// GetEnvelope lets concrete entity types satisfy Object by embedding
// Envelope.
func (e *Envelope) GetEnvelope() *Envelope { return e }

// Object is implemented by every concrete entity type, usually by
// embedding Envelope and declaring EntityType.
type Object interface {
	// GetEnvelope returns the mutable universal envelope.
	GetEnvelope() *Envelope
	// EntityType returns the type tag, e.g. "mlmodel".
	EntityType() string
}

// Reference builds an EntityReference for an object.
func Reference(o Object) *EntityReference {
	env := o.GetEnvelope()
	return &EntityReference{
		ID:                 env.ID,
		Type:               o.EntityType(),
		Name:               env.Name,
		FullyQualifiedName: env.FullyQualifiedName,
		DisplayName:        env.DisplayName,
		Deleted:            env.Deleted,
	}
}
