// Package inflation derives an implied food price index from nominal and
// real organic sales and reconciles it with an official inflation series.
//
// # Price index
//
// For every period the deflator is the ratio of nominal to real sales. The
// index expresses that ratio relative to the base period:
//
//	PriceIndex_t     = (Nominal_t / Real_t) / (Nominal_base / Real_base) * 100
//	CumulativeRate_t = PriceIndex_t - 100
//	YoYRate_t        = (PriceIndex_t / PriceIndex_t-1 - 1) * 100
//
// The first period of the sorted series has no YoYRate (nil, not zero).
//
// # Comparison
//
// CompareWithReference joins the implied rates with a reference series on
// period and reports mean and median absolute difference and the Pearson
// correlation. Periods present in only one series are listed in
// Join.DroppedPeriods.
//
// # Reference deflation
//
// DeflateWithReference compounds the reference rates into an index of its
// own and divides nominal sales by it, giving a second estimate of real
// sales to set against the published one.
//
// # Errors
//
// All operations fail fast. Match the returned error with errors.Is against
// ErrInvalidInput, ErrDivisionByZero or ErrInsufficientData; use errors.As
// with *CalculationError for the offending period and field.
package inflation
