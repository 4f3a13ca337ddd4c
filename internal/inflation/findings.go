package inflation

// Findings are the headline numbers of an analysis
type Findings struct {
	FirstPeriod int `json:"first_period"`
	LastPeriod  int `json:"last_period"`

	// Total price change from FirstPeriod to LastPeriod (%)
	ImpliedTotal float64 `json:"implied_total_inflation"`

	// Nil when the reference index does not reach LastPeriod
	ReferenceTotal *float64 `json:"reference_total_inflation,omitempty"`

	// ReferenceTotal minus ImpliedTotal in percentage points
	DifferencePoints *float64 `json:"difference_points,omitempty"`

	AverageReferenceRate float64 `json:"average_reference_rate"`
}

// KeyFindings summarises the span covered by both the implied and the
// reference-deflated series. When the reference index covers only the base
// period, the span falls back to the full implied series without reference
// totals.
func (a *Analysis) KeyFindings() (Findings, bool) {
	if a == nil || len(a.Implied) == 0 {
		return Findings{}, false
	}

	f := Findings{
		FirstPeriod:          a.BasePeriod,
		AverageReferenceRate: a.AverageReferenceRate(),
	}

	if n := len(a.Combined); n > 1 {
		last := a.Combined[n-1]
		f.LastPeriod = last.Period
		f.ImpliedTotal = last.CumulativeRate
		f.ReferenceTotal = floatPtr(last.ReferenceCumulativeRate)
		f.DifferencePoints = floatPtr(last.CumulativeDifference)
		return f, true
	}

	last, _ := a.Last()
	f.LastPeriod = last.Period
	f.ImpliedTotal = last.CumulativeRate
	return f, true
}
