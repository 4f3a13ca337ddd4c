package chart

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	titlePad = vg.Length(8)

	// maxCategoryLabels caps the labelled x ticks per panel
	maxCategoryLabels = 12

	// barFill is the share of a panel's width covered by bars
	barFill = 0.7
)

var baselineColor = color.RGBA{R: 0x70, G: 0x70, B: 0x70, A: 0xff}

func titleStyle() text.Style {
	sty := plot.New().Title.TextStyle
	sty.Font.Size = vg.Points(18)
	sty.XAlign = draw.XCenter
	sty.YAlign = draw.YTop
	return sty
}

// newPlot builds one panel. Categories sit at x = 0..n-1.
func newPlot(p Panel, width vg.Length) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = p.Title
	pl.Y.Label.Text = p.YLabel
	pl.X.Tick.Marker = categoryTicks(p.Categories)
	pl.Legend.Top = true
	pl.Legend.Left = true

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	pl.Add(grid)

	var err error
	switch p.Kind {
	case Bar:
		err = addBars(pl, p, width)
	default:
		err = addLines(pl, p)
	}
	if err != nil {
		return nil, err
	}

	if p.Baseline != nil {
		n := float64(len(p.Categories))
		base, err := plotter.NewLine(plotter.XYs{
			{X: -0.5, Y: *p.Baseline},
			{X: n - 0.5, Y: *p.Baseline},
		})
		if err != nil {
			return nil, err
		}
		base.Color = baselineColor
		base.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		pl.Add(base)
	}

	pl.X.Min = -0.5
	pl.X.Max = float64(len(p.Categories)) - 0.5
	return pl, nil
}

func addLines(pl *plot.Plot, p Panel) error {
	for i, s := range p.Series {
		c := seriesColor(s, i)

		var thumb plot.Thumbnailer
		for _, seg := range segments(s.Values) {
			line, points, err := plotter.NewLinePoints(seg)
			if err != nil {
				return err
			}
			line.Color = c
			line.Width = vg.Points(2)
			points.Color = c
			points.Shape = draw.CircleGlyph{}
			points.Radius = vg.Points(3)
			pl.Add(line, points)
			if thumb == nil {
				thumb = line
			}
		}
		if thumb != nil && s.Name != "" {
			pl.Legend.Add(s.Name, thumb)
		}
	}
	return nil
}

// addBars groups the series side by side around each category
func addBars(pl *plot.Plot, p Panel, width vg.Length) error {
	k := len(p.Series)
	w := width * barFill / vg.Length(len(p.Categories)*k)

	for i, s := range p.Series {
		vals := make(plotter.Values, len(s.Values))
		for j, v := range s.Values {
			if finite(v) {
				vals[j] = v
			}
		}

		bars, err := plotter.NewBarChart(vals, w)
		if err != nil {
			return err
		}
		bars.Color = seriesColor(s, i)
		bars.LineStyle.Width = 0
		bars.Offset = (vg.Length(i) - vg.Length(k-1)/2) * w
		pl.Add(bars)
		if s.Name != "" {
			pl.Legend.Add(s.Name, bars)
		}
	}
	return nil
}

// segments splits values into runs of finite points
func segments(values []float64) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for i, v := range values {
		if !finite(v) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: float64(i), Y: v})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// categoryTicks labels every category, thinned out for long series
func categoryTicks(categories []string) plot.ConstantTicks {
	every := (len(categories) + maxCategoryLabels - 1) / maxCategoryLabels
	if every < 1 {
		every = 1
	}
	ticks := make(plot.ConstantTicks, len(categories))
	for i, c := range categories {
		ticks[i] = plot.Tick{Value: float64(i)}
		if i%every == 0 {
			ticks[i].Label = c
		}
	}
	return ticks
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
