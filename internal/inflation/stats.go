package inflation

import (
	"math"
	"sort"
)

// calculateMean computes the arithmetic mean of values
func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// calculateMedian computes the median without reordering the input
func calculateMedian(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// calculateCorrelation computes the Pearson correlation coefficient.
// The second return value is false when either series has zero variance,
// in which case the coefficient is NaN.
func calculateCorrelation(x, y []float64) (float64, bool) {
	if len(x) != len(y) || len(x) < MinComparisonRows {
		return math.NaN(), false
	}

	meanX := calculateMean(x)
	meanY := calculateMean(y)

	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	if varX == 0 || varY == 0 {
		return math.NaN(), false
	}

	r := cov / math.Sqrt(varX*varY)

	// Rounding can push |r| marginally past 1
	return math.Max(-1, math.Min(1, r)), true
}

// summarize builds SummaryStats from paired implied and reference rates
func summarize(implied, reference []float64) SummaryStats {
	absDiffs := make([]float64, len(implied))
	for i := range implied {
		absDiffs[i] = math.Abs(implied[i] - reference[i])
	}

	r, ok := calculateCorrelation(implied, reference)

	return SummaryStats{
		Rows:                     len(implied),
		MeanAbsoluteDifference:   calculateMean(absDiffs),
		MedianAbsoluteDifference: calculateMedian(absDiffs),
		PearsonCorrelation:       r,
		CorrelationDefined:       ok,
	}
}
