// Package relationship maintains the directed, typed edge graph between
// catalog entities, independent of any entity payload.
package relationship

import "fmt"

// Relation enumerates the edge kinds. Values are stored as ordinals, so
// new kinds must be appended, never reordered.
type Relation int

const (
	// Contains links a container to a contained entity (service -> model).
	// Containment edges are created once at entity creation and are not
	// revisited on update.
	Contains Relation = iota
	// Uses links an entity to another it consumes (model -> dashboard).
	// Recomputed on every update.
	Uses
	// Upstream links a data source to an entity derived from it. Recomputed
	// on every update.
	Upstream
	// Owns links an owner (user, team) to an owned entity.
	Owns
	MentionedIn
	TestedBy
	AppliedTo
	ParentOf
)

var relationNames = map[Relation]string{
	Contains:    "contains",
	Uses:        "uses",
	Upstream:    "upstream",
	Owns:        "owns",
	MentionedIn: "mentionedIn",
	TestedBy:    "testedBy",
	AppliedTo:   "appliedTo",
	ParentOf:    "parentOf",
}

func (r Relation) String() string {
	if name, ok := relationNames[r]; ok {
		return name
	}
	return fmt.Sprintf("relation(%d)", int(r))
}

// Valid reports whether r is a known relation kind.
func (r Relation) Valid() bool {
	_, ok := relationNames[r]
	return ok
}
