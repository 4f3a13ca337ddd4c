package inflation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{4.2}, 4.2},
		{"odd count unsorted", []float64{3, 1, 2}, 2},
		{"even count unsorted", []float64{4, 1, 3, 2}, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calculateMedian(tt.values))
		})
	}

	values := []float64{3, 1, 2}
	calculateMedian(values)
	assert.Equal(t, []float64{3, 1, 2}, values, "input must not be reordered")
}

func TestCalculateMean(t *testing.T) {
	assert.Equal(t, 0.0, calculateMean(nil))
	assert.Equal(t, 2.5, calculateMean([]float64{1, 2, 3, 4}))
}

func TestCalculateCorrelation(t *testing.T) {
	tests := []struct {
		name    string
		x, y    []float64
		want    float64
		defined bool
	}{
		{"perfect positive", []float64{1, 2, 3}, []float64{2, 4, 6}, 1, true},
		{"perfect negative", []float64{1, 2, 3}, []float64{3, 2, 1}, -1, true},
		{"constant x", []float64{5, 5, 5}, []float64{1, 2, 3}, math.NaN(), false},
		{"constant y", []float64{1, 2, 3}, []float64{7, 7, 7}, math.NaN(), false},
		{"single point", []float64{1}, []float64{1}, math.NaN(), false},
		{"length mismatch", []float64{1, 2}, []float64{1, 2, 3}, math.NaN(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := calculateCorrelation(tt.x, tt.y)
			assert.Equal(t, tt.defined, ok)
			if !tt.defined {
				assert.True(t, math.IsNaN(got))
				return
			}
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.LessOrEqual(t, math.Abs(got), 1.0)
		})
	}
}
