package entity

import (
	"strings"

	"github.com/meridiandata/meridian/pkg/apperror"
)

// FQN separator. Name segments that contain the separator (or a quote)
// are double-quoted in the composed FQN, so the hierarchy stays parseable.
const fqnSeparator = "."

// BuildFQN derives the fully-qualified name of a child from its parent's
// FQN and its own local name. With no parent, the FQN is the quoted local
// name. An empty local name is rejected; it has no valid position in a
// hierarchy.
//
// BuildFQN is pure and must be reapplied to every nested named child
// whenever the parent's FQN changes.
func BuildFQN(parentFQN, name string) (string, error) {
	if name == "" {
		return "", apperror.NewInvalidArgument("entity name cannot be empty")
	}
	quoted := quoteName(name)
	if parentFQN == "" {
		return quoted, nil
	}
	return parentFQN + fqnSeparator + quoted, nil
}

// SplitFQN breaks an FQN into its name segments, honoring quoting.
func SplitFQN(fqn string) []string {
	var parts []string
	var cur strings.Builder
	inQuote := false

	for i := 0; i < len(fqn); i++ {
		c := fqn[i]
		switch {
		case c == '\\' && i+1 < len(fqn) && fqn[i+1] == '"':
			cur.WriteByte('"')
			i++
		case c == '"':
			inQuote = !inQuote
		case c == '.' && !inQuote:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	parts = append(parts, cur.String())
	return parts
}

func quoteName(name string) string {
	if !strings.ContainsAny(name, `."`) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `\"`) + `"`
}
