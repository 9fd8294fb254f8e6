package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridiandata/meridian/domain/entity"
)

func TestRecorderRecordChange(t *testing.T) {
	tests := []struct {
		name         string
		oldVal       any
		newVal       any
		significance Significance
		wantRecorded bool
		wantKind     entity.ChangeKind
		wantVersion  entity.Version
	}{
		{
			name:         "both empty records nothing",
			oldVal:       "",
			newVal:       nil,
			significance: Major,
			wantRecorded: false,
			wantVersion:  1.2,
		},
		{
			name:         "equal values record nothing",
			oldVal:       "xgboost",
			newVal:       "xgboost",
			significance: Major,
			wantRecorded: false,
			wantVersion:  1.2,
		},
		{
			name:         "added minor",
			oldVal:       nil,
			newVal:       "a new description",
			significance: Minor,
			wantRecorded: true,
			wantKind:     entity.ChangeAdded,
			wantVersion:  1.3,
		},
		{
			name:         "deleted minor",
			oldVal:       "old description",
			newVal:       "",
			significance: Minor,
			wantRecorded: true,
			wantKind:     entity.ChangeDeleted,
			wantVersion:  1.3,
		},
		{
			name:         "updated major bumps to next integer",
			oldVal:       "random-forest",
			newVal:       "xgboost",
			significance: Major,
			wantRecorded: true,
			wantKind:     entity.ChangeUpdated,
			wantVersion:  2.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecorder(1.2)
			got := rec.RecordChange("field", tt.oldVal, tt.newVal, tt.significance)
			assert.Equal(t, tt.wantRecorded, got)
			assert.True(t, rec.NextVersion().Equal(tt.wantVersion),
				"want %s got %s", tt.wantVersion, rec.NextVersion())
			if tt.wantRecorded {
				desc := rec.Description()
				require.NotNil(t, desc)
				require.Len(t, desc.Fields, 1)
				assert.Equal(t, tt.wantKind, desc.Fields[0].Kind)
			} else {
				assert.Nil(t, rec.Description())
			}
		})
	}
}

func TestRecorderPointerEquality(t *testing.T) {
	type server struct {
		URL string `json:"url"`
	}
	rec := NewRecorder(0.3)
	recorded := rec.RecordChange("server", &server{URL: "http://a"}, &server{URL: "http://a"}, Major)
	assert.False(t, recorded, "equal values behind distinct pointers must not be recorded")
	assert.True(t, rec.NextVersion().Equal(0.3))
}

type namedThing struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func matchByName(stored, incoming any) bool {
	return stored.(namedThing).Name == incoming.(namedThing).Name
}

func TestRecorderRecordListChange(t *testing.T) {
	oldList := ToAnySlice([]namedThing{
		{Name: "age", Description: "years"},
		{Name: "income"},
	})
	newList := ToAnySlice([]namedThing{
		{Name: "age", Description: "age in years"},
		{Name: "region"},
	})

	rec := NewRecorder(0.1)
	added, deleted, changed := rec.RecordListChange("features", oldList, newList, Minor,
		matchByName,
		func(r *Recorder, stored, incoming any) {
			r.RecordChange("features."+stored.(namedThing).Name+".description",
				stored.(namedThing).Description, incoming.(namedThing).Description, Minor)
		})

	assert.True(t, changed)
	require.Len(t, added, 1)
	assert.Equal(t, "region", added[0].(namedThing).Name)
	require.Len(t, deleted, 1)
	assert.Equal(t, "income", deleted[0].(namedThing).Name)

	desc := rec.Description()
	require.NotNil(t, desc)
	// nested update for age, plus one ADDED and one DELETED list entry
	require.Len(t, desc.Fields, 3)
	assert.Equal(t, "features.age.description", desc.Fields[0].Name)
	assert.Equal(t, entity.ChangeUpdated, desc.Fields[0].Kind)
	assert.True(t, rec.NextVersion().Equal(0.2))
}

func TestRecorderListNoChange(t *testing.T) {
	list := ToAnySlice([]namedThing{{Name: "age"}, {Name: "income"}})
	rec := NewRecorder(2.0)
	added, deleted, changed := rec.RecordListChange("features", list, list, Major, matchByName, nil)
	assert.Empty(t, added)
	assert.Empty(t, deleted)
	assert.False(t, changed)
	assert.False(t, rec.Changed())
	assert.True(t, rec.NextVersion().Equal(2.0))
}

func TestRecorderMajorListChange(t *testing.T) {
	rec := NewRecorder(1.5)
	_, _, changed := rec.RecordListChange("targets",
		ToAnySlice([]namedThing{{Name: "churn"}}),
		ToAnySlice([]namedThing{{Name: "upsell"}}),
		Major, matchByName, nil)
	assert.True(t, changed)
	assert.True(t, rec.NextVersion().Equal(2.0))
}
