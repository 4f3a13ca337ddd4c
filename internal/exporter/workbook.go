package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/egruenh-co/lakner-inflation/internal/files"
	"github.com/egruenh-co/lakner-inflation/internal/inflation"
)

// SheetCharts holds the native workbook charts
const SheetCharts = "Charts"

// WorkbookOptions configures the XLSX export
type WorkbookOptions struct {
	Decimals int
	Charts   bool
}

// WorkbookExporter writes the analysis tables into one XLSX workbook with
// a sheet per table and optional native charts
type WorkbookExporter struct {
	opts   WorkbookOptions
	logger *slog.Logger
}

// NewWorkbookExporter creates a workbook exporter
func NewWorkbookExporter(opts WorkbookOptions, logger *slog.Logger) *WorkbookExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookExporter{
		opts:   opts,
		logger: logger.With(slog.String("component", "workbook_exporter")),
	}
}

// Build assembles the workbook in memory. The caller closes the file.
func (e *WorkbookExporter) Build(a *inflation.Analysis) (*excelize.File, error) {
	f := excelize.NewFile()

	tables := []Table{ResultsTable(a), ComparisonTable(a), SummaryTable(a)}
	if err := f.SetSheetName(f.GetSheetName(0), tables[0].Name); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, t := range tables[1:] {
		if _, err := f.NewSheet(t.Name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", t.Name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	numFmt := numberFormat(e.opts.Decimals)
	valueStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create number style: %w", err)
	}

	for _, t := range tables {
		if err := writeSheet(f, t, headerStyle, valueStyle); err != nil {
			f.Close()
			return nil, err
		}
	}

	if e.opts.Charts && len(a.Implied) > 0 {
		if _, err := f.NewSheet(SheetCharts); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", SheetCharts, err)
		}
		if err := addCharts(f, len(tables[0].Rows), len(tables[1].Rows)); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Export builds the workbook and writes it to path
func (e *WorkbookExporter) Export(ctx context.Context, path string, a *inflation.Analysis) error {
	f, err := e.Build(a)
	if err != nil {
		return err
	}
	defer f.Close()

	err = files.WriteAtomic(path, func(w io.Writer) error {
		if err := f.Write(w); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.logger.InfoContext(ctx, "Workbook written",
		slog.String("path", path),
		slog.Any("sheets", f.GetSheetList()),
		slog.Bool("charts", e.opts.Charts))
	return nil
}

func writeSheet(f *excelize.File, t Table, headerStyle, valueStyle int) error {
	for j, h := range t.Headers {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(t.Name, cell, h); err != nil {
			return fmt.Errorf("failed to write header %s: %w", h, err)
		}
	}
	if err := f.SetRowStyle(t.Name, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", t.Name, err)
	}

	for i, row := range t.Rows {
		for j, v := range row {
			value, ok := cellValue(v)
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(t.Name, cell, value); err != nil {
				return fmt.Errorf("failed to write %s!%s: %w", t.Name, cell, err)
			}
			if _, isFloat := value.(float64); isFloat {
				if err := f.SetCellStyle(t.Name, cell, cell, valueStyle); err != nil {
					return err
				}
			}
		}
	}

	last, err := excelize.ColumnNumberToName(len(t.Headers))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(t.Name, "A", last, 18); err != nil {
		return err
	}
	return f.SetPanes(t.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// cellValue unwraps optional values; false means the cell stays empty
func cellValue(v interface{}) (interface{}, bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case *float64:
		if x == nil {
			return nil, false
		}
		return cellValue(*x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, false
		}
		return x, true
	default:
		return v, true
	}
}

func numberFormat(decimals int) string {
	if decimals <= 0 {
		return "0"
	}
	return "0." + strings.Repeat("0", decimals)
}

type chartSpec struct {
	cell   string
	kind   excelize.ChartType
	title  string
	yTitle string
	sheet  string
	first  int // first data row
	last   int
	series []seriesSpec
}

type seriesSpec struct {
	column string
	name   string
}

// addCharts mirrors the PNG figures: four Lakner panels from the Results
// sheet and two reference panels from the Comparison sheet
func addCharts(f *excelize.File, resultRows, comparisonRows int) error {
	specs := []chartSpec{
		{cell: "A1", kind: excelize.Line, title: "Nominal vs. real sales", yTitle: "bn EUR",
			sheet: SheetResults, first: 2, last: resultRows + 1,
			series: []seriesSpec{{"B", "Nominal"}, {"C", "Real"}}},
		{cell: "J1", kind: excelize.Line, title: "Implied price index", yTitle: "Index",
			sheet: SheetResults, first: 2, last: resultRows + 1,
			series: []seriesSpec{{"D", "Price index"}}},
		{cell: "A18", kind: excelize.Col, title: "Cumulative inflation", yTitle: "%",
			sheet: SheetResults, first: 2, last: resultRows + 1,
			series: []seriesSpec{{"E", "Cumulative"}}},
		{cell: "J18", kind: excelize.Col, title: "Yearly inflation", yTitle: "%",
			sheet: SheetResults, first: 3, last: resultRows + 1,
			series: []seriesSpec{{"F", "Year over year"}}},
	}
	if comparisonRows > 0 {
		specs = append(specs,
			chartSpec{cell: "A35", kind: excelize.Line, title: "Real sales: published vs. deflated", yTitle: "bn EUR",
				sheet: SheetComparison, first: 2, last: comparisonRows + 1,
				series: []seriesSpec{{"F", "Real (Lakner)"}, {"G", "Real (reference)"}}},
			chartSpec{cell: "J35", kind: excelize.Col, title: "Cumulative inflation comparison", yTitle: "%",
				sheet: SheetComparison, first: 2, last: comparisonRows + 1,
				series: []seriesSpec{{"I", "Lakner (implied)"}, {"J", "Reference"}}},
		)
	}

	for _, spec := range specs {
		if spec.last < spec.first {
			continue
		}
		chart := &excelize.Chart{
			Type:      spec.kind,
			Title:     []excelize.RichTextRun{{Text: spec.title}},
			Legend:    excelize.ChartLegend{Position: "bottom"},
			Dimension: excelize.ChartDimension{Width: 560, Height: 320},
			YAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: spec.yTitle}}},
		}
		for _, s := range spec.series {
			series := excelize.ChartSeries{
				Name:       s.name,
				Categories: fmt.Sprintf("%s!$A$%d:$A$%d", spec.sheet, spec.first, spec.last),
				Values:     fmt.Sprintf("%s!$%s$%d:$%s$%d", spec.sheet, s.column, spec.first, s.column, spec.last),
			}
			if spec.kind == excelize.Line {
				series.Marker = excelize.ChartMarker{Symbol: "circle", Size: 6}
			}
			chart.Series = append(chart.Series, series)
		}
		if err := f.AddChart(SheetCharts, spec.cell, chart); err != nil {
			return fmt.Errorf("failed to add chart %q: %w", spec.title, err)
		}
	}
	return nil
}
