package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrowthRate(t *testing.T) {
	tests := []struct {
		name      string
		today     int64
		yesterday int64
		want      float64
	}{
		{"both zero", 0, 0, 0},
		{"growth from zero baseline", 5, 0, 100},
		{"halved", 3, 6, -50.0},
		{"doubled", 10, 5, 100},
		{"slight growth rounds to one decimal", 7, 6, 16.7},
		{"collapse to zero", 0, 4, -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GrowthRate(tt.today, tt.yesterday))
		})
	}
}

func TestRetentionRate(t *testing.T) {
	assert.Equal(t, 0.0, RetentionRate(10, 0), "zero users")
	assert.Equal(t, 50.0, RetentionRate(5, 10))
	assert.Equal(t, 33.3, RetentionRate(1, 3))
	assert.Equal(t, 100.0, RetentionRate(10, 10))
}
