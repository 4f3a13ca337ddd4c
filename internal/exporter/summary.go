package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/egruenh-co/lakner-inflation/internal/files"
	"github.com/egruenh-co/lakner-inflation/internal/inflation"
)

// Summary is the machine-readable digest of one run
type Summary struct {
	RunID       string    `json:"run_id,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	BasePeriod  int       `json:"base_period"`
	Periods     []int     `json:"periods"`

	ComparisonRows           int      `json:"comparison_rows"`
	MeanAbsoluteDifference   float64  `json:"mean_absolute_difference"`
	MedianAbsoluteDifference float64  `json:"median_absolute_difference"`
	PearsonCorrelation       *float64 `json:"pearson_correlation"` // null when undefined
	DroppedPeriods           []int    `json:"dropped_periods"`
	ReferenceGap             int      `json:"reference_gap,omitempty"` // deflation stopped before this period

	Findings *inflation.Findings `json:"findings,omitempty"`

	Implied    []inflation.ImpliedInflationRecord `json:"implied"`
	Comparison []inflation.ComparisonRecord       `json:"comparison"`
	Combined   []inflation.CombinedRecord         `json:"combined"`
}

// NewSummary collects the digest of an analysis
func NewSummary(runID string, a *inflation.Analysis, now time.Time) Summary {
	stats := a.Comparison.Stats
	s := Summary{
		RunID:                    runID,
		GeneratedAt:              now.UTC(),
		BasePeriod:               a.BasePeriod,
		Periods:                  make([]int, 0, len(a.Implied)),
		ComparisonRows:           stats.Rows,
		MeanAbsoluteDifference:   stats.MeanAbsoluteDifference,
		MedianAbsoluteDifference: stats.MedianAbsoluteDifference,
		DroppedPeriods:           a.Comparison.DroppedPeriods,
		ReferenceGap:             a.ReferenceGap,
		Implied:                  a.Implied,
		Comparison:               a.Comparison.Records,
		Combined:                 a.Combined,
	}
	if s.DroppedPeriods == nil {
		s.DroppedPeriods = []int{}
	}
	for _, r := range a.Implied {
		s.Periods = append(s.Periods, r.Period)
	}
	if stats.CorrelationDefined && !math.IsNaN(stats.PearsonCorrelation) {
		r := stats.PearsonCorrelation
		s.PearsonCorrelation = &r
	}
	if f, ok := a.KeyFindings(); ok {
		s.Findings = &f
	}
	return s
}

// WriteSummaryJSON writes the summary as indented JSON
func WriteSummaryJSON(path string, s Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	return files.WriteAtomic(path, func(w io.Writer) error {
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
		return nil
	})
}
