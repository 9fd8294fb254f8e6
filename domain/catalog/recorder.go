// Package catalog implements the generic change-management core: the
// field-level change recorder, the per-type entity definitions, and the
// mutation engine that drives one atomic update cycle for any entity type.
package catalog

import (
	"encoding/json"
	"reflect"

	"github.com/meridiandata/meridian/domain/entity"
)

// Significance classifies a field for the version-bump decision. Any
// changed Major field bumps the entity version by 1.0; otherwise any
// change at all bumps it by 0.1.
type Significance int

const (
	Minor Significance = iota
	Major
)

// Recorder accumulates the field changes of one update cycle and decides
// the resulting version. One Recorder serves exactly one (original,
// updated) pair and is discarded afterwards.
type Recorder struct {
	previous entity.Version
	fields   []entity.FieldChange
	major    bool
}

// NewRecorder creates a recorder for an update starting from the stored
// version.
func NewRecorder(previous entity.Version) *Recorder {
	return &Recorder{previous: previous}
}

// RecordChange compares two scalar or object values by JSON value
// equality and records the difference, classified as ADDED, UPDATED or
// DELETED. Nothing is recorded when both values are semantically empty.
// Returns whether a change was recorded.
func (r *Recorder) RecordChange(field string, oldVal, newVal any, significance Significance) bool {
	return r.RecordChangeWith(field, oldVal, newVal, significance, jsonEqual)
}

// RecordChangeWith is RecordChange with a caller-supplied equality
// predicate, for values whose stored and incoming representations differ
// while naming the same thing (e.g. entity references compared by id).
func (r *Recorder) RecordChangeWith(field string, oldVal, newVal any, significance Significance, eq func(a, b any) bool) bool {
	oldEmpty, newEmpty := isEmpty(oldVal), isEmpty(newVal)
	if oldEmpty && newEmpty {
		return false
	}
	if !oldEmpty && !newEmpty && eq(oldVal, newVal) {
		return false
	}

	change := entity.FieldChange{Name: field}
	switch {
	case oldEmpty:
		change.Kind = entity.ChangeAdded
		change.NewValue = newVal
	case newEmpty:
		change.Kind = entity.ChangeDeleted
		change.OldValue = oldVal
	default:
		change.Kind = entity.ChangeUpdated
		change.OldValue = oldVal
		change.NewValue = newVal
	}

	r.fields = append(r.fields, change)
	if significance == Major {
		r.major = true
	}
	return true
}

// RecordListChange aligns two lists with the caller-supplied match
// predicate. Unmatched old elements are recorded as one DELETED change,
// unmatched new elements as one ADDED change; matched pairs run the
// optional nested comparator, which may itself record per-element updates
// (e.g. "tasks.ingest.description").
func (r *Recorder) RecordListChange(
	field string,
	oldList, newList []any,
	significance Significance,
	match func(stored, incoming any) bool,
	nested func(r *Recorder, stored, incoming any),
) (added, deleted []any, changed bool) {
	for _, incoming := range newList {
		stored := findMatch(oldList, incoming, match)
		if stored == nil {
			added = append(added, incoming)
			continue
		}
		if nested != nil {
			nested(r, stored, incoming)
		}
	}
	for _, stored := range oldList {
		if findMatch(newList, stored, func(a, b any) bool { return match(b, a) }) == nil {
			deleted = append(deleted, stored)
		}
	}

	if len(added) > 0 {
		r.fields = append(r.fields, entity.FieldChange{
			Name:     field,
			Kind:     entity.ChangeAdded,
			NewValue: added,
		})
	}
	if len(deleted) > 0 {
		r.fields = append(r.fields, entity.FieldChange{
			Name:     field,
			Kind:     entity.ChangeDeleted,
			OldValue: deleted,
		})
	}

	changed = len(added) > 0 || len(deleted) > 0
	if changed && significance == Major {
		r.major = true
	}
	return added, deleted, changed
}

// Changed reports whether any field change was recorded.
func (r *Recorder) Changed() bool {
	return len(r.fields) > 0
}

// NextVersion returns the version resulting from the recorded changes:
// unchanged when nothing was recorded, +1.0 for any major change, +0.1
// otherwise.
func (r *Recorder) NextVersion() entity.Version {
	if !r.Changed() {
		return r.previous
	}
	return r.previous.Next(r.major)
}

// Description materializes the accumulated ChangeDescription, or nil for
// a no-op update.
func (r *Recorder) Description() *entity.ChangeDescription {
	if !r.Changed() {
		return nil
	}
	return &entity.ChangeDescription{
		PreviousVersion: r.previous,
		NewVersion:      r.NextVersion(),
		Fields:          r.fields,
	}
}

func findMatch(list []any, candidate any, match func(stored, incoming any) bool) any {
	for _, elem := range list {
		if match(elem, candidate) {
			return elem
		}
	}
	return nil
}

// jsonEqual compares two values by their JSON serialization, giving value
// equality across pointer and struct representations.
func jsonEqual(a, b any) bool {
	aJSON, _ := json.Marshal(a)
	bJSON, _ := json.Marshal(b)
	return string(aJSON) == string(bJSON)
}

// isEmpty reports whether a value is semantically null: nil, a nil
// pointer, an empty string, or an empty slice or map.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil() || isEmpty(rv.Elem().Interface())
	case reflect.String:
		return rv.Len() == 0
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	default:
		return false
	}
}

// SameReference compares two *entity.EntityReference values by id, the
// equality predicate for reference-valued fields.
func SameReference(a, b any) bool {
	ra, ok := a.(*entity.EntityReference)
	if !ok {
		return false
	}
	rb, ok := b.(*entity.EntityReference)
	if !ok {
		return false
	}
	return ra.ID == rb.ID
}

// ToAnySlice adapts a typed slice for RecordListChange.
func ToAnySlice[E any](in []E) []any {
	out := make([]any, len(in))
	for i := range in {
		out[i] = in[i]
	}
	return out
}
