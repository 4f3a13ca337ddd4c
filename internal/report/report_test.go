package report

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egruenh-co/lakner-inflation/internal/chart"
	"github.com/egruenh-co/lakner-inflation/internal/inflation"
)

func sampleAnalysis(t *testing.T) *inflation.Analysis {
	t.Helper()

	sales := []inflation.SalesRecord{
		{Period: 2020, Nominal: 14.99, Real: 14.99},
		{Period: 2021, Nominal: 15.87, Real: 15.34},
		{Period: 2022, Nominal: 15.31, Real: 13.62},
		{Period: 2023, Nominal: 16.08, Real: 13.21},
	}
	reference := []inflation.ReferenceInflationRecord{
		{Period: 2021, Rate: 3.1},
		{Period: 2022, Rate: 13.4},
		{Period: 2023, Rate: 12.4},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := inflation.NewCalculator(2020, logger).Analyze(context.Background(), sales, reference)
	require.NoError(t, err)
	return a
}

func TestPrinter_Print(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Print(sampleAnalysis(t))
	out := buf.String()

	for _, want := range []string{
		"Organic sales: implied inflation relative to 2020",
		"2020: Nominal  14.99 bn EUR, Real  14.99 bn EUR",
		"(2020=100)",
		"Reference food inflation (yearly):",
		"2022:  +13.4%",
		"Compared periods:           3",
		"Pearson correlation:",
		"Periods in only one series: 2020",
		"Real sales, published vs. deflated with reference rates:",
		"Cumulative inflation since 2020:",
		"* Total inflation 2020-2023 (Lakner):",
		"* Difference:",
		"* Average yearly reference inflation: +9.63%",
	} {
		assert.Contains(t, out, want)
	}
}

func TestPrinter_IndexTableMarksBase(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).IndexTable(sampleAnalysis(t))

	var baseLine string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "2020 ") {
			baseLine = line
		}
	}
	require.NotEmpty(t, baseLine)
	assert.Contains(t, baseLine, "100.0000")
	assert.True(t, strings.HasSuffix(baseLine, "Basis"), "got %q", baseLine)
}

func TestPrinter_IndexTableBeforeBase(t *testing.T) {
	a := &inflation.Analysis{
		BasePeriod: 2020,
		Implied: []inflation.ImpliedInflationRecord{
			{Period: 2019, PriceIndex: 90, CumulativeRate: -10},
			{Period: 2020, PriceIndex: 100},
		},
	}
	yoy := 11.11
	a.Implied[1].YoYRate = &yoy

	var buf bytes.Buffer
	NewPrinter(&buf).IndexTable(a)
	out := buf.String()

	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "Basis")
	assert.NotContains(t, out, "+11.11")
}

func TestPrinter_UndefinedCorrelation(t *testing.T) {
	a := sampleAnalysis(t)
	a.Comparison.Stats.CorrelationDefined = false

	var buf bytes.Buffer
	NewPrinter(&buf).RateComparison(a)
	assert.Contains(t, buf.String(), "undefined")
}

func TestPrinter_RealComparisonNotesReferenceGap(t *testing.T) {
	a := sampleAnalysis(t)

	var buf bytes.Buffer
	NewPrinter(&buf).RealComparison(a)
	assert.NotContains(t, buf.String(), "deflation stops")

	a.ReferenceGap = 2023
	buf.Reset()
	NewPrinter(&buf).RealComparison(a)
	assert.Contains(t, buf.String(), "Reference year 2022 is missing, deflation stops before 2023")
}

func TestPrinter_Outputs(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Outputs([]string{"a.csv", "b.png"})
	assert.Equal(t, "Saved a.csv\nSaved b.png\n", buf.String())
}

func TestAnalysisFigure(t *testing.T) {
	fig := AnalysisFigure(sampleAnalysis(t))
	require.NoError(t, fig.Validate())
	require.Len(t, fig.Panels, 4)

	assert.Equal(t, []string{"2020", "2021", "2022", "2023"}, fig.Panels[0].Categories)
	require.NotNil(t, fig.Panels[1].Baseline)
	assert.Equal(t, 100.0, *fig.Panels[1].Baseline)
	assert.Equal(t, chart.Bar, fig.Panels[2].Kind)

	// Yearly bars leave out the base period
	assert.Equal(t, []string{"2021", "2022", "2023"}, fig.Panels[3].Categories)
}

func TestComparisonFigure(t *testing.T) {
	a := sampleAnalysis(t)
	fig := ComparisonFigure(a)
	require.NoError(t, fig.Validate())
	require.Len(t, fig.Panels, 4)

	assert.Len(t, fig.Panels[0].Series, 3)
	indices := fig.Panels[1].Series
	require.Len(t, indices, 2)
	assert.InDelta(t, 103.1, indices[1].Values[1], 1e-9)
	assert.Equal(t, []string{"2021", "2022", "2023"}, fig.Panels[2].Categories)

	_, err := chart.Render(fig)
	assert.NoError(t, err)
}

func TestComparisonFigure_WithoutCombinedRows(t *testing.T) {
	a := sampleAnalysis(t)
	a.Combined = nil

	fig := ComparisonFigure(a)
	require.NoError(t, fig.Validate())
	assert.Len(t, fig.Panels, 1)
}
