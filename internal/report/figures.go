package report

import (
	"fmt"
	"strconv"

	"github.com/egruenh-co/lakner-inflation/internal/chart"
	"github.com/egruenh-co/lakner-inflation/internal/inflation"
)

var (
	blue   = chart.Palette[0]
	red    = chart.Palette[1]
	green  = chart.Palette[2]
	orange = chart.Palette[3]
)

// AnalysisFigure plots the Lakner series: sales, price index, cumulative
// and yearly inflation
func AnalysisFigure(a *inflation.Analysis) chart.Figure {
	sales := salesByPeriod(a)

	var periods []string
	var nominal, realSales, index, cumulative []float64
	var yoyPeriods []string
	var yoy []float64
	for _, r := range a.Implied {
		periods = append(periods, label(r.Period))
		s := sales[r.Period]
		nominal = append(nominal, s.Nominal)
		realSales = append(realSales, s.Real)
		index = append(index, r.PriceIndex)
		cumulative = append(cumulative, r.CumulativeRate)
		if r.YoYRate != nil && r.Period != a.BasePeriod {
			yoyPeriods = append(yoyPeriods, label(r.Period))
			yoy = append(yoy, *r.YoYRate)
		}
	}

	base := 100.0
	panels := []chart.Panel{
		{
			Title:      "Organic sales (Lakner): nominal vs. real",
			YLabel:     "bn EUR",
			Kind:       chart.Line,
			Categories: periods,
			Series: []chart.Series{
				{Name: "Nominal", Values: nominal, Color: blue},
				{Name: fmt.Sprintf("Real (base %d)", a.BasePeriod), Values: realSales, Color: red},
			},
		},
		{
			Title:      fmt.Sprintf("Price index (%d = 100)", a.BasePeriod),
			YLabel:     "Index",
			Kind:       chart.Line,
			Categories: periods,
			Series:     []chart.Series{{Name: "Price index", Values: index, Color: green}},
			Baseline:   &base,
		},
		{
			Title:      fmt.Sprintf("Cumulative inflation since %d", a.BasePeriod),
			YLabel:     "%",
			Kind:       chart.Bar,
			Categories: periods,
			Series:     []chart.Series{{Name: "Cumulative", Values: cumulative, Color: orange}},
		},
	}
	if len(yoy) > 0 {
		panels = append(panels, chart.Panel{
			Title:      "Yearly inflation rate",
			YLabel:     "%",
			Kind:       chart.Bar,
			Categories: yoyPeriods,
			Series:     []chart.Series{{Name: "Year over year", Values: yoy, Color: red}},
		})
	}

	return chart.Figure{
		Title:  "Implied inflation from organic sales",
		Panels: panels,
	}
}

// ComparisonFigure plots the Lakner series against the reference series
func ComparisonFigure(a *inflation.Analysis) chart.Figure {
	var periods []string
	var nominal, realSales, realRef, index, refIndex, cumulative, refCumulative []float64
	for _, c := range a.Combined {
		periods = append(periods, label(c.Period))
		nominal = append(nominal, c.Nominal)
		realSales = append(realSales, c.Real)
		realRef = append(realRef, c.RealByReference)
		index = append(index, c.PriceIndex)
		refIndex = append(refIndex, c.ReferenceIndex*100)
		cumulative = append(cumulative, c.CumulativeRate)
		refCumulative = append(refCumulative, c.ReferenceCumulativeRate)
	}

	var refPeriods []string
	var refRates []float64
	for _, r := range a.Reference {
		refPeriods = append(refPeriods, label(r.Period))
		refRates = append(refRates, r.Rate)
	}

	base := 100.0
	var panels []chart.Panel
	if len(periods) > 0 {
		panels = append(panels,
			chart.Panel{
				Title:      "Nominal and real sales",
				YLabel:     "bn EUR",
				Kind:       chart.Line,
				Categories: periods,
				Series: []chart.Series{
					{Name: "Nominal", Values: nominal, Color: blue},
					{Name: "Real (Lakner)", Values: realSales, Color: red},
					{Name: "Real (reference)", Values: realRef, Color: green},
				},
			},
			chart.Panel{
				Title:      fmt.Sprintf("Price indices (%d = 100)", a.BasePeriod),
				YLabel:     "Index",
				Kind:       chart.Line,
				Categories: periods,
				Series: []chart.Series{
					{Name: "Lakner", Values: index, Color: red},
					{Name: "Reference", Values: refIndex, Color: green},
				},
				Baseline: &base,
			},
		)
	}
	if len(refPeriods) > 0 {
		panels = append(panels, chart.Panel{
			Title:      "Reference food inflation (yearly)",
			YLabel:     "%",
			Kind:       chart.Bar,
			Categories: refPeriods,
			Series:     []chart.Series{{Name: "Reference", Values: refRates, Color: green}},
		})
	}
	if len(periods) > 0 {
		panels = append(panels, chart.Panel{
			Title:      fmt.Sprintf("Cumulative inflation since %d", a.BasePeriod),
			YLabel:     "%",
			Kind:       chart.Bar,
			Categories: periods,
			Series: []chart.Series{
				{Name: "Lakner (implied)", Values: cumulative, Color: red},
				{Name: "Reference", Values: refCumulative, Color: green},
			},
		})
	}

	return chart.Figure{
		Title:  "Lakner vs. reference inflation",
		Panels: panels,
	}
}

func salesByPeriod(a *inflation.Analysis) map[int]inflation.SalesRecord {
	m := make(map[int]inflation.SalesRecord, len(a.Sales))
	for _, s := range a.Sales {
		m[s.Period] = s
	}
	return m
}

func label(period int) string {
	return strconv.Itoa(period)
}
