package inflation

// DefaultBasePeriod is the year whose price index is normalised to 100.
const DefaultBasePeriod = 2020

// MinComparisonRows is the minimum number of usable joined rows for
// comparison statistics. Correlation is undefined below two points.
const MinComparisonRows = 2

// SalesRecord is one period of the Lakner sales series
type SalesRecord struct {
	Period  int     `json:"period"`
	Nominal float64 `json:"nominal_value"` // Sales in current prices (bn EUR)
	Real    float64 `json:"real_value"`    // Sales in base-period prices (bn EUR)
}

// ImpliedInflationRecord is the price index derived from one SalesRecord.
// YoYRate is nil for the first period of the series, which has no predecessor.
type ImpliedInflationRecord struct {
	Period         int      `json:"period"`
	PriceIndex     float64  `json:"price_index"`        // Base period = 100
	CumulativeRate float64  `json:"cumulative_rate"`    // Price change since base period (%)
	YoYRate        *float64 `json:"yoy_inflation_rate"` // Change vs. preceding period (%)
}

// HasYoY reports whether a year-over-year rate is defined for the record
func (r ImpliedInflationRecord) HasYoY() bool {
	return r.YoYRate != nil
}

// ReferenceInflationRecord is one period of an official inflation series
type ReferenceInflationRecord struct {
	Period int     `json:"period"`
	Rate   float64 `json:"reference_rate"` // Percent
}

// ComparisonRecord joins implied and reference inflation for one period.
// ImpliedRate and Difference are nil when the implied series has no
// year-over-year rate for the period.
type ComparisonRecord struct {
	Period        int      `json:"period"`
	ImpliedRate   *float64 `json:"yoy_inflation_rate"`
	ReferenceRate float64  `json:"reference_rate"`
	Difference    *float64 `json:"difference"`
}

// Usable reports whether the row contributes to summary statistics
func (r ComparisonRecord) Usable() bool {
	return r.ImpliedRate != nil && r.Difference != nil
}

// SummaryStats describes how closely the implied series tracks the reference
type SummaryStats struct {
	Rows                     int     `json:"rows"`
	MeanAbsoluteDifference   float64 `json:"mean_absolute_difference"`
	MedianAbsoluteDifference float64 `json:"median_absolute_difference"`
	PearsonCorrelation       float64 `json:"pearson_correlation"` // NaN when undefined
	CorrelationDefined       bool    `json:"correlation_defined"`
}

// Join is the result of aligning the implied and reference series on period
type Join struct {
	Records []ComparisonRecord `json:"records"`

	// DroppedPeriods lists periods present in only one of the two series
	DroppedPeriods []int `json:"dropped_periods"`
}

// Comparison is a Join plus statistics over its usable rows
type Comparison struct {
	Join
	Stats SummaryStats `json:"stats"`
}

// DeflatedRecord is a sales period deflated with the reference series
type DeflatedRecord struct {
	Period          int     `json:"period"`
	Nominal         float64 `json:"nominal_value"`
	RealByReference float64 `json:"real_by_reference"`
	ReferenceIndex  float64 `json:"reference_index"` // Base period = 1.0
	CumulativeRate  float64 `json:"reference_cumulative_rate"`
}

// Deflation is the reference-deflated sales series
type Deflation struct {
	Records []DeflatedRecord `json:"records"`

	// GapBefore is the first reference period after a missing year. The
	// index is not compounded from there on. Zero when there is no gap.
	GapBefore int `json:"gap_before,omitempty"`
}

// CombinedRecord lines up the Lakner and reference views of one period
type CombinedRecord struct {
	Period                  int     `json:"period"`
	Nominal                 float64 `json:"nominal_value"`
	Real                    float64 `json:"real_value"`
	RealByReference         float64 `json:"real_by_reference"`
	RealDifference          float64 `json:"real_difference"` // Reference minus Lakner
	PriceIndex              float64 `json:"price_index"`
	ReferenceIndex          float64 `json:"reference_index"`
	CumulativeRate          float64 `json:"cumulative_rate"`
	ReferenceCumulativeRate float64 `json:"reference_cumulative_rate"`
	CumulativeDifference    float64 `json:"cumulative_difference"` // Reference minus Lakner (pp)
}

func floatPtr(v float64) *float64 {
	return &v
}
