// Package mlmodel is the ML model catalog entity: its payload types, its
// diff definition, and its service facade.
package mlmodel

import (
	"github.com/meridiandata/meridian/domain/entity"
)

const EntityType = "mlmodel"

// MlModel is a trained machine-learning model registered in the catalog.
// Algorithm, target and server changes are breaking for consumers, so
// they bump the major version.
type MlModel struct {
	entity.Envelope

	Algorithm         string                  `json:"algorithm"`
	MlFeatures        []MlFeature             `json:"mlFeatures,omitempty"`
	MlHyperParameters []MlHyperParameter      `json:"mlHyperParameters,omitempty"`
	Target            string                  `json:"target,omitempty"`
	Server            string                  `json:"server,omitempty"`
	MlStore           *MlStore                `json:"mlStore,omitempty"`
	Dashboard         *entity.EntityReference `json:"dashboard,omitempty"`
	Service           *entity.EntityReference `json:"service,omitempty"`
}

func (m *MlModel) EntityType() string { return EntityType }

// MlFeature is one input feature of the model. Its fully qualified name
// is derived from the model's and cascades into its sources.
type MlFeature struct {
	Name               string            `json:"name"`
	DataType           string            `json:"dataType,omitempty"`
	Description        string            `json:"description,omitempty"`
	FullyQualifiedName string            `json:"fullyQualifiedName,omitempty"`
	FeatureAlgorithm   string            `json:"featureAlgorithm,omitempty"`
	FeatureSources     []FeatureSource   `json:"featureSources,omitempty"`
	Tags               []entity.TagLabel `json:"tags,omitempty"`
}

// FeatureSource ties a feature to the data asset it is computed from.
// The dataSource reference feeds the model's upstream lineage.
type FeatureSource struct {
	Name               string                  `json:"name"`
	DataType           string                  `json:"dataType,omitempty"`
	Description        string                  `json:"description,omitempty"`
	FullyQualifiedName string                  `json:"fullyQualifiedName,omitempty"`
	DataSource         *entity.EntityReference `json:"dataSource,omitempty"`
	Tags               []entity.TagLabel       `json:"tags,omitempty"`
}

// MlHyperParameter is one training hyper-parameter.
type MlHyperParameter struct {
	Name        string `json:"name"`
	Value       string `json:"value,omitempty"`
	Description string `json:"description,omitempty"`
}

// MlStore points at the model's artifact storage.
type MlStore struct {
	Storage         string `json:"storage,omitempty"`
	ImageRepository string `json:"imageRepository,omitempty"`
}

// CollectTags gathers every tag on the model and its nested features and
// feature sources.
func (m *MlModel) CollectTags() []entity.TagLabel {
	var all []entity.TagLabel
	all = entity.MergeTags(all, m.Tags)
	for _, f := range m.MlFeatures {
		all = entity.MergeTags(all, f.Tags)
		for _, s := range f.FeatureSources {
			all = entity.MergeTags(all, s.Tags)
		}
	}
	return all
}

// SetFullyQualifiedNames derives the model FQN under its service and
// cascades into features and feature sources.
func (m *MlModel) SetFullyQualifiedNames() error {
	parent := ""
	if m.Service != nil {
		parent = m.Service.FullyQualifiedName
	}
	fqn, err := entity.BuildFQN(parent, m.Name)
	if err != nil {
		return err
	}
	m.FullyQualifiedName = fqn

	for i := range m.MlFeatures {
		f := &m.MlFeatures[i]
		if f.FullyQualifiedName, err = entity.BuildFQN(m.FullyQualifiedName, f.Name); err != nil {
			return err
		}
		for j := range f.FeatureSources {
			s := &f.FeatureSources[j]
			if s.FullyQualifiedName, err = entity.BuildFQN(f.FullyQualifiedName, s.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// upstreamSources returns the distinct data assets feeding the model's
// features, keyed by id.
func (m *MlModel) upstreamSources() map[string]*entity.EntityReference {
	out := make(map[string]*entity.EntityReference)
	for _, f := range m.MlFeatures {
		for _, s := range f.FeatureSources {
			if s.DataSource != nil {
				out[s.DataSource.ID.String()] = s.DataSource
			}
		}
	}
	return out
}
