package entity

import (
	"math"
	"strconv"
)

// Version is the semantic version of an entity. It moves in 0.1 steps for
// backward-compatible changes and jumps to the next whole number for
// breaking ones: 1.3 -> 1.4 (minor), 1.3 -> 2.0 (major).
type Version float64

// InitialVersion is assigned at entity creation.
const InitialVersion Version = 0.1

// Next returns the version after a change of the given significance.
func (v Version) Next(major bool) Version {
	if major {
		return Version(math.Floor(float64(v)) + 1.0)
	}
	return round1(Version(float64(v) + 0.1))
}

// Equal compares versions at the 0.1 granularity they are stored with.
func (v Version) Equal(other Version) bool {
	return round1(v) == round1(other)
}

func (v Version) String() string {
	return strconv.FormatFloat(float64(round1(v)), 'f', 1, 64)
}

func round1(v Version) Version {
	return Version(math.Round(float64(v)*10) / 10)
}
