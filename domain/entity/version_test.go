package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion_Next(t *testing.T) {
	tests := []struct {
		name  string
		from  Version
		major bool
		want  Version
	}{
		{"initial minor", 0.1, false, 0.2},
		{"minor step", 1.3, false, 1.4},
		{"minor carries decimal", 0.9, false, 1.0},
		{"major from fresh entity", 0.1, true, 1.0},
		{"major truncates minor steps", 1.3, true, 2.0},
		{"major from whole version", 2.0, true, 3.0},
		{"long minor run stays exact", 1.9, false, 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.from.Next(tt.major)
			assert.True(t, got.Equal(tt.want), "Next(%v) = %s, want %s", tt.major, got, tt.want)
		})
	}
}

func TestVersion_Equal_ToleratesFloatDrift(t *testing.T) {
	// 0.1 added repeatedly drifts in binary floating point; Equal compares
	// at the stored 0.1 granularity.
	v := InitialVersion
	for i := 0; i < 9; i++ {
		v = v.Next(false)
	}
	assert.True(t, v.Equal(1.0), "ten minor bumps = %s, want 1.0", v)
}

func TestVersion_String(t *testing.T) {
	assert.Equal(t, "0.1", InitialVersion.String())
	assert.Equal(t, "2.0", Version(2).String())
	assert.Equal(t, "1.3", Version(1.3).String())
}
