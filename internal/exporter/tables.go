package exporter

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/egruenh-co/lakner-inflation/internal/inflation"
)

// Sheet names used in the workbook
const (
	SheetResults    = "Results"
	SheetComparison = "Comparison"
	SheetSummary    = "Summary"
)

// Table is a named header plus rows of values. Cells hold int, float64,
// *float64, string or nil; nil and NaN render as empty cells.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

// Records renders the rows as CSV text
func (t Table) Records(decimals int) [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = formatCell(v, decimals)
		}
		out[i] = rec
	}
	return out
}

// ResultsTable lists the implied index of every sales period
func ResultsTable(a *inflation.Analysis) Table {
	sales := make(map[int]inflation.SalesRecord, len(a.Sales))
	for _, s := range a.Sales {
		sales[s.Period] = s
	}

	t := Table{
		Name: SheetResults,
		Headers: []string{
			"period", "nominal_value", "real_value",
			"price_index", "cumulative_rate", "yoy_inflation_rate",
		},
	}
	for _, r := range a.Implied {
		s := sales[r.Period]
		t.Rows = append(t.Rows, []interface{}{
			r.Period, s.Nominal, s.Real, r.PriceIndex, r.CumulativeRate, r.YoYRate,
		})
	}
	return t
}

// ComparisonTable merges the rate comparison with the combined real-value
// view. A period appears once if either table has it; columns of the table
// that lacks the period stay empty.
func ComparisonTable(a *inflation.Analysis) Table {
	byComparison := make(map[int]inflation.ComparisonRecord, len(a.Comparison.Records))
	byCombined := make(map[int]inflation.CombinedRecord, len(a.Combined))
	periods := make([]int, 0, len(a.Comparison.Records)+len(a.Combined))

	for _, r := range a.Comparison.Records {
		byComparison[r.Period] = r
		periods = append(periods, r.Period)
	}
	for _, r := range a.Combined {
		if _, ok := byComparison[r.Period]; !ok {
			periods = append(periods, r.Period)
		}
		byCombined[r.Period] = r
	}
	sort.Ints(periods)

	t := Table{
		Name: SheetComparison,
		Headers: []string{
			"period", "yoy_inflation_rate", "reference_rate", "difference",
			"nominal_value", "real_value", "real_by_reference", "real_difference",
			"cumulative_rate", "reference_cumulative_rate", "cumulative_difference",
		},
	}

	for _, p := range periods {
		row := make([]interface{}, len(t.Headers))
		row[0] = p
		if c, ok := byComparison[p]; ok {
			row[1], row[2], row[3] = c.ImpliedRate, c.ReferenceRate, c.Difference
		}
		if c, ok := byCombined[p]; ok {
			row[4], row[5], row[6], row[7] = c.Nominal, c.Real, c.RealByReference, c.RealDifference
			row[8], row[9], row[10] = c.CumulativeRate, c.ReferenceCumulativeRate, c.CumulativeDifference
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// SummaryTable is a two-column metric/value listing of the comparison
// statistics and key findings
func SummaryTable(a *inflation.Analysis) Table {
	stats := a.Comparison.Stats
	t := Table{
		Name:    SheetSummary,
		Headers: []string{"metric", "value"},
		Rows: [][]interface{}{
			{"base_period", a.BasePeriod},
			{"periods", len(a.Implied)},
			{"comparison_rows", stats.Rows},
			{"mean_absolute_difference", stats.MeanAbsoluteDifference},
			{"median_absolute_difference", stats.MedianAbsoluteDifference},
			{"pearson_correlation", definedOrNil(stats.PearsonCorrelation, stats.CorrelationDefined)},
			{"dropped_periods", joinInts(a.Comparison.DroppedPeriods)},
		},
	}

	if f, ok := a.KeyFindings(); ok {
		t.Rows = append(t.Rows,
			[]interface{}{"last_period", f.LastPeriod},
			[]interface{}{"implied_total_inflation", f.ImpliedTotal},
			[]interface{}{"reference_total_inflation", f.ReferenceTotal},
			[]interface{}{"difference_points", f.DifferencePoints},
			[]interface{}{"average_reference_rate", f.AverageReferenceRate},
		)
	}
	return t
}

func definedOrNil(v float64, defined bool) interface{} {
	if !defined || math.IsNaN(v) {
		return nil
	}
	return v
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
