package chart

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Kind selects how a panel draws its series
type Kind int

const (
	Line Kind = iota
	Bar
)

// Default figure size in pixels
const (
	DefaultWidth  = 1200
	DefaultHeight = 900
)

// Palette used for series without an explicit color
var Palette = []color.RGBA{
	{R: 0x1f, G: 0x5f, B: 0xbf, A: 0xff}, // blue
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}, // red
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}, // green
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}, // orange
	{R: 0x94, G: 0x67, B: 0xbd, A: 0xff}, // purple
}

// ErrEmptyFigure is returned when there is nothing to draw
var ErrEmptyFigure = errors.New("figure has no panels")

// Series is one named sequence of values aligned with the panel categories
type Series struct {
	Name   string
	Values []float64
	Color  color.RGBA // zero value picks from Palette
}

// Panel is one chart in the grid
type Panel struct {
	Title      string
	YLabel     string
	Kind       Kind
	Categories []string
	Series     []Series

	// Baseline draws a dashed horizontal line, e.g. the base index of 100
	Baseline *float64
}

// Figure is a titled grid of panels
type Figure struct {
	Title  string
	Width  int
	Height int
	Panels []Panel
}

// Validate checks that every series matches its panel's categories
func (f Figure) Validate() error {
	if len(f.Panels) == 0 {
		return ErrEmptyFigure
	}
	for i, p := range f.Panels {
		if len(p.Categories) == 0 {
			return fmt.Errorf("panel %d (%s): no categories", i, p.Title)
		}
		if len(p.Series) == 0 {
			return fmt.Errorf("panel %d (%s): no series", i, p.Title)
		}
		for _, s := range p.Series {
			if len(s.Values) != len(p.Categories) {
				return fmt.Errorf("panel %d (%s): series %q has %d values for %d categories",
					i, p.Title, s.Name, len(s.Values), len(p.Categories))
			}
		}
	}
	return nil
}

// Render draws the figure onto an image of Width x Height pixels
func Render(f Figure) (image.Image, error) {
	c, err := render(f)
	if err != nil {
		return nil, err
	}
	return c.Image(), nil
}

// WritePNG renders the figure as PNG into w
func WritePNG(w io.Writer, f Figure) error {
	c, err := render(f)
	if err != nil {
		return err
	}
	_, err = vgimg.PngCanvas{Canvas: c}.WriteTo(w)
	return err
}

func render(f Figure) (*vgimg.Canvas, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	w, h := f.Width, f.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}

	img := vgimg.NewWith(vgimg.UseImage(image.NewRGBA(image.Rect(0, 0, w, h))))
	dc := draw.New(img)
	dc.SetColor(color.White)
	dc.Fill(dc.Rectangle.Path())

	body := dc
	if f.Title != "" {
		sty := titleStyle()
		dc.FillText(sty, vg.Point{X: (dc.Min.X + dc.Max.X) / 2, Y: dc.Max.Y - titlePad}, f.Title)
		body = draw.Crop(dc, 0, 0, 0, -(sty.Height(f.Title) + 2*titlePad))
	}

	cols := 2
	if len(f.Panels) == 1 {
		cols = 1
	}
	rows := (len(f.Panels) + cols - 1) / cols
	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Points(12),
		PadY:      vg.Points(12),
		PadTop:    vg.Points(6),
		PadBottom: vg.Points(6),
		PadLeft:   vg.Points(6),
		PadRight:  vg.Points(6),
	}

	for i, p := range f.Panels {
		cell := tiles.At(body, i%cols, i/cols)
		pl, err := newPlot(p, cell.Max.X-cell.Min.X)
		if err != nil {
			return nil, fmt.Errorf("panel %d (%s): %w", i, p.Title, err)
		}
		pl.Draw(cell)
	}

	return img, nil
}

func seriesColor(s Series, i int) color.RGBA {
	if s.Color.A != 0 {
		return s.Color
	}
	return Palette[i%len(Palette)]
}
