package inflation

import (
	"fmt"
	"math"
	"sort"
)

// JoinWithReference inner-joins the implied series with the reference
// series on period. Periods found in only one series are not silently
// discarded: they are listed in DroppedPeriods.
func JoinWithReference(implied []ImpliedInflationRecord, reference []ReferenceInflationRecord) (Join, error) {
	refByPeriod := make(map[int]float64, len(reference))
	for _, r := range reference {
		if _, dup := refByPeriod[r.Period]; dup {
			return Join{}, invalidInput(r.Period, "period", r.Period, "duplicate reference period")
		}
		if err := validateRate(r); err != nil {
			return Join{}, err
		}
		refByPeriod[r.Period] = r.Rate
	}

	seen := make(map[int]bool, len(implied))
	var dropped []int
	records := make([]ComparisonRecord, 0, len(implied))

	for _, imp := range implied {
		if seen[imp.Period] {
			return Join{}, invalidInput(imp.Period, "period", imp.Period, "duplicate implied period")
		}
		seen[imp.Period] = true

		rate, ok := refByPeriod[imp.Period]
		if !ok {
			dropped = append(dropped, imp.Period)
			continue
		}

		rec := ComparisonRecord{
			Period:        imp.Period,
			ReferenceRate: rate,
		}
		if imp.YoYRate != nil {
			rec.ImpliedRate = floatPtr(*imp.YoYRate)
			rec.Difference = floatPtr(*imp.YoYRate - rate)
		}
		records = append(records, rec)
	}

	for period := range refByPeriod {
		if !seen[period] {
			dropped = append(dropped, period)
		}
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Period < records[j].Period })
	sort.Ints(dropped)

	return Join{Records: records, DroppedPeriods: dropped}, nil
}

// CompareWithReference joins both series and computes summary statistics
// over rows with a defined implied rate. Rows without one are kept in the
// result but excluded from the statistics rather than treated as zero.
func CompareWithReference(implied []ImpliedInflationRecord, reference []ReferenceInflationRecord) (Comparison, error) {
	join, err := JoinWithReference(implied, reference)
	if err != nil {
		return Comparison{}, err
	}

	var impliedRates, referenceRates []float64
	for _, rec := range join.Records {
		if !rec.Usable() {
			continue
		}
		impliedRates = append(impliedRates, *rec.ImpliedRate)
		referenceRates = append(referenceRates, rec.ReferenceRate)
	}

	if len(impliedRates) < MinComparisonRows {
		return Comparison{}, &CalculationError{
			Kind:    ErrInsufficientData,
			Message: fmt.Sprintf("%d comparable periods, at least %d required (dropped periods: %v)",
				len(impliedRates), MinComparisonRows, join.DroppedPeriods),
		}
	}

	return Comparison{
		Join:  join,
		Stats: summarize(impliedRates, referenceRates),
	}, nil
}

func validateRate(r ReferenceInflationRecord) error {
	if math.IsNaN(r.Rate) || math.IsInf(r.Rate, 0) {
		return invalidInput(r.Period, "reference_rate", r.Rate, "rate is not a finite number")
	}
	if r.Rate <= -100 {
		return invalidInput(r.Period, "reference_rate", r.Rate, "rate must be above -100%")
	}
	return nil
}
