package mathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampInt(t *testing.T) {
	assert.Equal(t, 5, ClampInt(5, 0, 10))
	assert.Equal(t, 0, ClampInt(-3, 0, 10))
	assert.Equal(t, 10, ClampInt(42, 0, 10))
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name    string
		limit   int
		want    int
	}{
		{"zero falls back to default", 0, 10},
		{"negative falls back to default", -1, 10},
		{"in range passes through", 25, 25},
		{"above max is capped", 5000, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampLimit(tt.limit, 10, 1000))
		})
	}
}
