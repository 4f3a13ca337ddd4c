package inflation

import (
	"sort"
)

// DeflateWithReference converts nominal sales into real sales using the
// reference inflation rates instead of the published real series.
//
// Reference rates after basePeriod are compounded into a price index that
// is 1.0 at the base period. Periods up to and including the base period
// in the reference series are ignored. Compounding stops at the first
// missing year, since carrying on would skip a year of inflation; the
// period after the gap is reported in Deflation.GapBefore.
//
// A record is emitted for the base period and for every later sales period
// the index covers. Sales periods beyond the last compounded period are
// left out rather than assigned a stale index.
func DeflateWithReference(sales []SalesRecord, reference []ReferenceInflationRecord, basePeriod int) (Deflation, error) {
	nominal := make(map[int]float64, len(sales))
	for _, s := range sales {
		if _, dup := nominal[s.Period]; dup {
			return Deflation{}, invalidInput(s.Period, "period", s.Period, "duplicate sales period")
		}
		if err := validateValue(s.Period, "nominal_value", s.Nominal); err != nil {
			return Deflation{}, err
		}
		nominal[s.Period] = s.Nominal
	}

	baseNominal, ok := nominal[basePeriod]
	if !ok {
		return Deflation{}, invalidInput(basePeriod, "period", basePeriod, "base period missing from sales records")
	}

	rates := make([]ReferenceInflationRecord, 0, len(reference))
	for _, r := range reference {
		if r.Period > basePeriod {
			rates = append(rates, r)
		}
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].Period < rates[j].Period })

	out := []DeflatedRecord{{
		Period:          basePeriod,
		Nominal:         baseNominal,
		RealByReference: baseNominal,
		ReferenceIndex:  1.0,
		CumulativeRate:  0,
	}}

	for i, r := range rates {
		if i > 0 && rates[i-1].Period == r.Period {
			return Deflation{}, invalidInput(r.Period, "period", r.Period, "duplicate reference period")
		}
		if err := validateRate(r); err != nil {
			return Deflation{}, err
		}
	}

	result := Deflation{}
	index := 1.0
	prevPeriod := basePeriod
	for _, r := range rates {
		if r.Period != prevPeriod+1 {
			result.GapBefore = r.Period
			break
		}

		index *= 1 + r.Rate/100
		prevPeriod = r.Period

		n, ok := nominal[r.Period]
		if !ok {
			continue
		}

		out = append(out, DeflatedRecord{
			Period:          r.Period,
			Nominal:         n,
			RealByReference: n / index,
			ReferenceIndex:  index,
			CumulativeRate:  (index - 1) * 100,
		})
	}

	result.Records = out
	return result, nil
}

// Combine lines up the published real series, the implied index and the
// reference-deflated series for every period present in all three
func Combine(sales []SalesRecord, implied []ImpliedInflationRecord, deflated []DeflatedRecord) ([]CombinedRecord, error) {
	bySales := make(map[int]SalesRecord, len(sales))
	for _, s := range sales {
		bySales[s.Period] = s
	}
	byImplied := make(map[int]ImpliedInflationRecord, len(implied))
	for _, r := range implied {
		byImplied[r.Period] = r
	}

	out := make([]CombinedRecord, 0, len(deflated))
	for _, d := range deflated {
		s, ok := bySales[d.Period]
		if !ok {
			return nil, invalidInput(d.Period, "period", d.Period, "deflated period has no sales record")
		}
		imp, ok := byImplied[d.Period]
		if !ok {
			return nil, invalidInput(d.Period, "period", d.Period, "deflated period has no implied index")
		}

		out = append(out, CombinedRecord{
			Period:                  d.Period,
			Nominal:                 s.Nominal,
			Real:                    s.Real,
			RealByReference:         d.RealByReference,
			RealDifference:          d.RealByReference - s.Real,
			PriceIndex:              imp.PriceIndex,
			ReferenceIndex:          d.ReferenceIndex,
			CumulativeRate:          imp.CumulativeRate,
			ReferenceCumulativeRate: d.CumulativeRate,
			CumulativeDifference:    d.CumulativeRate - imp.CumulativeRate,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}
