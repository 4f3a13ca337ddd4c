package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/egruenh-co/lakner-inflation/internal/inflation"
)

// Printer writes the human-readable analysis report
type Printer struct {
	w io.Writer
}

// NewPrinter creates a printer writing to w
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Print writes every section of the report
func (p *Printer) Print(a *inflation.Analysis) {
	p.header(fmt.Sprintf("Organic sales: implied inflation relative to %d", a.BasePeriod), 70)
	p.RawData(a)
	p.IndexTable(a)
	p.header("Lakner vs. reference inflation", 80)
	p.ReferenceRates(a)
	p.RateComparison(a)
	p.RealComparison(a)
	p.CumulativeComparison(a)
	p.Findings(a)
}

func (p *Printer) header(title string, width int) {
	fmt.Fprintln(p.w, strings.Repeat("=", width))
	fmt.Fprintf(p.w, " %s\n", title)
	fmt.Fprintln(p.w, strings.Repeat("=", width))
	fmt.Fprintln(p.w)
}

func (p *Printer) section(title string, width int) {
	fmt.Fprintf(p.w, "%s\n%s\n", title, strings.Repeat("-", width))
}

// RawData lists nominal and real sales per period
func (p *Printer) RawData(a *inflation.Analysis) {
	p.section("Raw data:", 50)
	for _, s := range a.Sales {
		fmt.Fprintf(p.w, "%d: Nominal %6.2f bn EUR, Real %6.2f bn EUR\n", s.Period, s.Nominal, s.Real)
	}
	fmt.Fprintln(p.w)
}

// IndexTable lists the implied index with cumulative and yearly rates. The
// base period is marked "Basis"; a first period before the base shows "n/a".
func (p *Printer) IndexTable(a *inflation.Analysis) {
	p.section("Implied inflation:", 50)
	fmt.Fprintf(p.w, "%-6s %-12s %-12s %-12s\n", "Year", "Price index", "Cumulative", "Yearly")
	fmt.Fprintf(p.w, "%-6s %-12s %-12s %-12s\n", "", fmt.Sprintf("(%d=100)", a.BasePeriod), "(%)", "(%)")
	fmt.Fprintln(p.w, strings.Repeat("-", 50))

	for _, r := range a.Implied {
		yearly := "n/a"
		switch {
		case r.Period == a.BasePeriod:
			yearly = "Basis"
		case r.YoYRate != nil:
			yearly = fmt.Sprintf("%+6.2f", *r.YoYRate)
		}
		fmt.Fprintf(p.w, "%-6d %10.4f   %+8.2f     %s\n", r.Period, r.PriceIndex, r.CumulativeRate, yearly)
	}

	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "- Price index: price level relative to %d\n", a.BasePeriod)
	fmt.Fprintf(p.w, "- Cumulative: total price change since %d in %%\n", a.BasePeriod)
	fmt.Fprintln(p.w, "- Yearly: price change against the preceding year in %")
	fmt.Fprintln(p.w)
}

// ReferenceRates lists the reference yearly rates
func (p *Printer) ReferenceRates(a *inflation.Analysis) {
	p.section("Reference food inflation (yearly):", 50)
	for _, r := range a.Reference {
		fmt.Fprintf(p.w, "%d: %+6.1f%%\n", r.Period, r.Rate)
	}
	fmt.Fprintln(p.w)
}

// RateComparison lists implied against reference yearly rates and the
// summary statistics
func (p *Printer) RateComparison(a *inflation.Analysis) {
	p.section("Yearly rates, implied vs. reference:", 60)
	fmt.Fprintf(p.w, "%-6s %-12s %-12s %-10s\n", "Year", "Lakner (%)", "Reference", "Difference")
	fmt.Fprintln(p.w, strings.Repeat("-", 60))
	for _, r := range a.Comparison.Records {
		fmt.Fprintf(p.w, "%-6d %8s     %8.2f       %7s\n",
			r.Period, optional(r.ImpliedRate, "%.2f"), r.ReferenceRate, optional(r.Difference, "%+.2f"))
	}

	stats := a.Comparison.Stats
	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "Compared periods:           %d\n", stats.Rows)
	fmt.Fprintf(p.w, "Mean absolute difference:   %.2f pp\n", stats.MeanAbsoluteDifference)
	fmt.Fprintf(p.w, "Median absolute difference: %.2f pp\n", stats.MedianAbsoluteDifference)
	if stats.CorrelationDefined {
		fmt.Fprintf(p.w, "Pearson correlation:        %.3f\n", stats.PearsonCorrelation)
	} else {
		fmt.Fprintln(p.w, "Pearson correlation:        undefined (a series has no variance)")
	}
	if len(a.Comparison.DroppedPeriods) > 0 {
		fmt.Fprintf(p.w, "Periods in only one series: %s\n", joinPeriods(a.Comparison.DroppedPeriods))
	}
	fmt.Fprintln(p.w)
}

// RealComparison lists published real sales against the reference-deflated
// values
func (p *Printer) RealComparison(a *inflation.Analysis) {
	p.section("Real sales, published vs. deflated with reference rates:", 70)
	fmt.Fprintf(p.w, "%-6s %-10s %-15s %-15s %-10s\n", "Year", "Nominal", "Real (Lakner)", "Real (ref.)", "Difference")
	fmt.Fprintln(p.w, strings.Repeat("-", 70))
	for _, c := range a.Combined {
		fmt.Fprintf(p.w, "%-6d %8.2f   %10.2f      %10.2f       %+7.2f\n",
			c.Period, c.Nominal, c.Real, c.RealByReference, c.RealDifference)
	}
	if a.ReferenceGap != 0 {
		fmt.Fprintf(p.w, "Reference year %d is missing, deflation stops before %d\n", a.ReferenceGap-1, a.ReferenceGap)
	}
	fmt.Fprintln(p.w)
}

// CumulativeComparison lists cumulative inflation of both sources
func (p *Printer) CumulativeComparison(a *inflation.Analysis) {
	p.section(fmt.Sprintf("Cumulative inflation since %d:", a.BasePeriod), 60)
	fmt.Fprintf(p.w, "%-6s %-12s %-12s %-10s\n", "Year", "Lakner (%)", "Ref. (%)", "Difference")
	fmt.Fprintln(p.w, strings.Repeat("-", 60))
	for _, c := range a.Combined {
		fmt.Fprintf(p.w, "%-6d %8.2f     %8.2f       %+7.2f\n",
			c.Period, c.CumulativeRate, c.ReferenceCumulativeRate, c.CumulativeDifference)
	}
	fmt.Fprintln(p.w)
}

// Findings prints the headline numbers
func (p *Printer) Findings(a *inflation.Analysis) {
	f, ok := a.KeyFindings()
	if !ok {
		return
	}

	p.section("Key findings:", 30)
	span := fmt.Sprintf("%d-%d", f.FirstPeriod, f.LastPeriod)
	fmt.Fprintf(p.w, "* Total inflation %s (Lakner): %+.2f%%\n", span, f.ImpliedTotal)
	if f.ReferenceTotal != nil {
		fmt.Fprintf(p.w, "* Total inflation %s (reference): %+.2f%%\n", span, *f.ReferenceTotal)
		fmt.Fprintf(p.w, "* Difference: %+.2f percentage points\n", *f.DifferencePoints)
	}
	fmt.Fprintf(p.w, "* Average yearly reference inflation: %+.2f%%\n", f.AverageReferenceRate)
	fmt.Fprintln(p.w)
}

// Outputs lists the files written by the run
func (p *Printer) Outputs(files []string) {
	for _, f := range files {
		fmt.Fprintf(p.w, "Saved %s\n", f)
	}
}

func optional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func joinPeriods(periods []int) string {
	parts := make([]string, len(periods))
	for i, p := range periods {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ", ")
}
