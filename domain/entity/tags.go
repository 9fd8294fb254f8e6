package entity

// TagLabel attaches a classification or glossary term to an entity or one
// of its nested children. Labels are compared by TagFQN.
type TagLabel struct {
	TagFQN    string `json:"tagFQN"`
	LabelType string `json:"labelType,omitempty"`
	Source    string `json:"source,omitempty"`
}

// MergeTags appends tags from `from` that are not already present in
// `into` (by TagFQN) and returns the result. First-seen ordering wins, so
// repeated merges over an entity's nested structure are deterministic
// regardless of duplicates.
func MergeTags(into []TagLabel, from []TagLabel) []TagLabel {
	seen := make(map[string]struct{}, len(into))
	for _, t := range into {
		seen[t.TagFQN] = struct{}{}
	}
	for _, t := range from {
		if _, ok := seen[t.TagFQN]; ok {
			continue
		}
		seen[t.TagFQN] = struct{}{}
		into = append(into, t)
	}
	return into
}

// TagFQNs projects a label set to its FQNs, in order. Used when flattening
// the aggregate tag set into the search-indexing column.
func TagFQNs(tags []TagLabel) []string {
	fqns := make([]string, len(tags))
	for i, t := range tags {
		fqns[i] = t.TagFQN
	}
	return fqns
}
