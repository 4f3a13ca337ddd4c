package inflation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"
)

// ComputeImpliedIndex derives the implied price index and inflation rates
// from nominal and real sales. Records are sorted by period internally, so
// the result does not depend on input order. The index is the nominal/real
// ratio of each period relative to the ratio of basePeriod, times 100.
//
// Any invalid record fails the whole computation; no partial series is
// returned.
func ComputeImpliedIndex(records []SalesRecord, basePeriod int) ([]ImpliedInflationRecord, error) {
	if len(records) == 0 {
		return nil, invalidInput(0, "", nil, "no sales records provided")
	}

	sorted := make([]SalesRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Period < sorted[j].Period })

	if err := validateSales(sorted, basePeriod); err != nil {
		return nil, err
	}

	ratios := make([]float64, len(sorted))
	baseRatio := 0.0
	for i, rec := range sorted {
		if rec.Real == 0 {
			return nil, &CalculationError{
				Kind:    ErrDivisionByZero,
				Period:  rec.Period,
				Field:   "real_value",
				Value:   rec.Real,
				Message: "real value must be non-zero to derive a price index",
			}
		}
		ratios[i] = rec.Nominal / rec.Real
		if rec.Period == basePeriod {
			baseRatio = ratios[i]
		}
	}

	if baseRatio == 0 {
		// Zero nominal sales in the base period cannot anchor an index
		return nil, &CalculationError{
			Kind:    ErrDivisionByZero,
			Period:  basePeriod,
			Field:   "nominal_value",
			Value:   0.0,
			Message: "base period nominal value must be non-zero",
		}
	}

	out := make([]ImpliedInflationRecord, len(sorted))
	for i, rec := range sorted {
		index := ratios[i] / baseRatio * 100
		out[i] = ImpliedInflationRecord{
			Period:         rec.Period,
			PriceIndex:     index,
			CumulativeRate: index - 100,
		}
		if i > 0 {
			prev := out[i-1].PriceIndex
			if prev == 0 {
				return nil, &CalculationError{
					Kind:    ErrDivisionByZero,
					Period:  rec.Period,
					Field:   "price_index",
					Value:   prev,
					Message: fmt.Sprintf("preceding period %d has a zero price index", out[i-1].Period),
				}
			}
			out[i].YoYRate = floatPtr((index/prev - 1) * 100)
		}
	}

	return out, nil
}

// validateSales checks sorted records for duplicates, a unique base period
// and finite non-negative values
func validateSales(sorted []SalesRecord, basePeriod int) error {
	baseCount := 0
	for i, rec := range sorted {
		if i > 0 && sorted[i-1].Period == rec.Period {
			return invalidInput(rec.Period, "period", rec.Period, "duplicate period")
		}
		if rec.Period == basePeriod {
			baseCount++
		}
		if err := validateValue(rec.Period, "nominal_value", rec.Nominal); err != nil {
			return err
		}
		if err := validateValue(rec.Period, "real_value", rec.Real); err != nil {
			return err
		}
	}

	if baseCount == 0 {
		return invalidInput(basePeriod, "period", basePeriod, "base period missing from sales records")
	}
	return nil
}

func validateValue(period int, field string, v float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return invalidInput(period, field, v, "value is not a finite number")
	case v < 0:
		return invalidInput(period, field, v, "value must not be negative")
	}
	return nil
}

// Calculator runs the full analysis for a configured base period
type Calculator struct {
	basePeriod int
	logger     *slog.Logger
}

// NewCalculator creates a calculator anchored at basePeriod
func NewCalculator(basePeriod int, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Calculator{
		basePeriod: basePeriod,
		logger:     logger,
	}
}

// BasePeriod returns the period whose index is normalised to 100
func (c *Calculator) BasePeriod() int {
	return c.basePeriod
}

// Analysis bundles every table derived from one set of inputs
type Analysis struct {
	BasePeriod int                        `json:"base_period"`
	Sales      []SalesRecord              `json:"sales"`
	Reference  []ReferenceInflationRecord `json:"reference"`
	Implied    []ImpliedInflationRecord   `json:"implied"`
	Comparison Comparison                 `json:"comparison"`
	Deflated   []DeflatedRecord           `json:"deflated"`
	Combined   []CombinedRecord           `json:"combined"`

	// ReferenceGap is the reference period after which deflation stopped
	// because the year before it is missing. Zero when complete.
	ReferenceGap int `json:"reference_gap,omitempty"`
}

// Analyze computes the implied series, compares it with the reference series
// and deflates nominal sales with the reference rates
func (c *Calculator) Analyze(ctx context.Context, sales []SalesRecord, reference []ReferenceInflationRecord) (*Analysis, error) {
	start := time.Now()

	c.logger.InfoContext(ctx, "starting inflation analysis",
		"base_period", c.basePeriod,
		"sales_records", len(sales),
		"reference_records", len(reference),
	)

	implied, err := ComputeImpliedIndex(sales, c.basePeriod)
	if err != nil {
		c.logger.ErrorContext(ctx, "implied index computation failed", "error", err)
		return nil, fmt.Errorf("compute implied index: %w", err)
	}

	comparison, err := CompareWithReference(implied, reference)
	if err != nil {
		c.logger.ErrorContext(ctx, "reference comparison failed", "error", err)
		return nil, fmt.Errorf("compare with reference: %w", err)
	}
	if len(comparison.DroppedPeriods) > 0 {
		c.logger.WarnContext(ctx, "periods missing from one series were dropped",
			"dropped_periods", comparison.DroppedPeriods,
		)
	}

	deflation, err := DeflateWithReference(sales, reference, c.basePeriod)
	if err != nil {
		c.logger.ErrorContext(ctx, "reference deflation failed", "error", err)
		return nil, fmt.Errorf("deflate with reference: %w", err)
	}
	if deflation.GapBefore != 0 {
		c.logger.WarnContext(ctx, "reference series has a gap, deflation stopped early",
			"gap_before", deflation.GapBefore,
			"deflated_periods", len(deflation.Records),
		)
	}

	combined, err := Combine(sales, implied, deflation.Records)
	if err != nil {
		return nil, fmt.Errorf("combine series: %w", err)
	}

	c.logger.InfoContext(ctx, "inflation analysis completed",
		"duration", time.Since(start),
		"periods", len(implied),
		"compared_rows", comparison.Stats.Rows,
		"mean_abs_diff", comparison.Stats.MeanAbsoluteDifference,
		"correlation_defined", comparison.Stats.CorrelationDefined,
	)

	sortedSales := make([]SalesRecord, len(sales))
	copy(sortedSales, sales)
	sort.Slice(sortedSales, func(i, j int) bool { return sortedSales[i].Period < sortedSales[j].Period })

	sortedRef := make([]ReferenceInflationRecord, len(reference))
	copy(sortedRef, reference)
	sort.Slice(sortedRef, func(i, j int) bool { return sortedRef[i].Period < sortedRef[j].Period })

	return &Analysis{
		BasePeriod:   c.basePeriod,
		Sales:        sortedSales,
		Reference:    sortedRef,
		Implied:      implied,
		Comparison:   comparison,
		Deflated:     deflation.Records,
		Combined:     combined,
		ReferenceGap: deflation.GapBefore,
	}, nil
}

// Last returns the final period of the implied series
func (a *Analysis) Last() (ImpliedInflationRecord, bool) {
	if a == nil || len(a.Implied) == 0 {
		return ImpliedInflationRecord{}, false
	}
	return a.Implied[len(a.Implied)-1], true
}

// AverageReferenceRate returns the mean of the reference yearly rates
func (a *Analysis) AverageReferenceRate() float64 {
	rates := make([]float64, len(a.Reference))
	for i, r := range a.Reference {
		rates[i] = r.Rate
	}
	return calculateMean(rates)
}
