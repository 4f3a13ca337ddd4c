package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"unicode/utf8"

	apperrors "github.com/egruenh-co/lakner-inflation/internal/errors"
	"github.com/egruenh-co/lakner-inflation/internal/inflation"
	"github.com/egruenh-co/lakner-inflation/internal/validation"
)

// Column names of the input tables
const (
	ColumnPeriod        = "jahr"
	ColumnNominal       = "umsatz_nominal"
	ColumnReal          = "umsatz_real"
	ColumnReferenceRate = "inflation_rate_jahr"
)

// Observation is one (period, value) pair read from an input table
type Observation struct {
	Period int     `csv:"jahr" validate:"gte=1000,lte=9999"`
	Value  float64 `csv:"value" validate:"gte=0"`
}

type rateRow struct {
	Period int     `csv:"jahr" validate:"gte=1000,lte=9999"`
	Rate   float64 `csv:"inflation_rate_jahr" validate:"gt=-100"`
}

// MergeReport lists the periods that only one of the sales files contains
type MergeReport struct {
	NominalOnly []int `json:"nominal_only,omitempty"`
	RealOnly    []int `json:"real_only,omitempty"`
}

// Dropped returns all unmatched periods in ascending order
func (m MergeReport) Dropped() []int {
	out := append(append([]int{}, m.NominalOnly...), m.RealOnly...)
	sort.Ints(out)
	return out
}

// LoaderOptions configures how input tables are read
type LoaderOptions struct {
	// Separator is the CSV field delimiter; ";" when empty
	Separator string
	// RateScale multiplies reference rates into percent: 100 for
	// fractions such as 0.058, 1 for rates already in percent
	RateScale float64
}

// Loader reads the sales and reference tables into calculator records
type Loader struct {
	separator rune
	rateScale float64
	files     *validation.FileValidator
	rows      *validation.StructValidator
	logger    *slog.Logger
}

// NewLoader creates a loader
func NewLoader(opts LoaderOptions, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	sep := ';'
	if r, _ := utf8.DecodeRuneInString(opts.Separator); r != utf8.RuneError {
		sep = r
	}
	scale := opts.RateScale
	if scale == 0 {
		scale = 100
	}
	return &Loader{
		separator: sep,
		rateScale: scale,
		files:     validation.NewFileValidator(logger),
		rows:      validation.NewStructValidator("csv"),
		logger:    logger.With(slog.String("component", "loader")),
	}
}

// LoadSeries reads the period column and valueColumn of one table. Values
// must be non-negative and every period may appear only once.
func (l *Loader) LoadSeries(ctx context.Context, path, valueColumn string) ([]Observation, error) {
	table, err := l.readTable(path)
	if err != nil {
		return nil, err
	}

	periodCol, err := table.Column(ColumnPeriod)
	if err != nil {
		return nil, err
	}
	valueCol, err := table.Column(valueColumn)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]int, len(table.Rows))
	out := make([]Observation, 0, len(table.Rows))
	for _, row := range table.Rows {
		obs := Observation{}
		if obs.Period, err = ParsePeriod(row.Cell(periodCol)); err != nil {
			return nil, rowError(path, row.Line, ColumnPeriod, err)
		}
		if obs.Value, err = ParseNumber(row.Cell(valueCol)); err != nil {
			return nil, rowError(path, row.Line, valueColumn, err)
		}
		if err := l.rows.Validate(obs); err != nil {
			return nil, rowError(path, row.Line, valueColumn, err)
		}
		if first, dup := seen[obs.Period]; dup {
			return nil, rowError(path, row.Line, ColumnPeriod,
				fmt.Errorf("period %d already defined on line %d", obs.Period, first))
		}
		seen[obs.Period] = row.Line
		out = append(out, obs)
	}

	if len(out) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("%s: no data rows", filepath.Base(path)), inflation.ErrInvalidInput).
			WithContext("file", path)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })

	l.logger.DebugContext(ctx, "Series loaded",
		slog.String("file", path),
		slog.String("column", valueColumn),
		slog.Int("rows", len(out)))

	return out, nil
}

// LoadSales reads the nominal and real sales tables and inner-joins them on
// the period column. Periods found in only one file are dropped, logged and
// reported.
func (l *Loader) LoadSales(ctx context.Context, nominalPath, realPath string) ([]inflation.SalesRecord, MergeReport, error) {
	nominal, err := l.LoadSeries(ctx, nominalPath, ColumnNominal)
	if err != nil {
		return nil, MergeReport{}, err
	}
	realSeries, err := l.LoadSeries(ctx, realPath, ColumnReal)
	if err != nil {
		return nil, MergeReport{}, err
	}

	records, report := MergeSales(nominal, realSeries)

	if dropped := report.Dropped(); len(dropped) > 0 {
		l.logger.WarnContext(ctx, "Periods without a nominal and real value were dropped",
			slog.Any("nominal_only", report.NominalOnly),
			slog.Any("real_only", report.RealOnly))
	}

	if len(records) == 0 {
		return nil, report, apperrors.NewParsingError("nominal and real sales share no period", inflation.ErrInvalidInput).
			WithContext("nominal_file", nominalPath).
			WithContext("real_file", realPath)
	}

	l.logger.InfoContext(ctx, "Sales data loaded",
		slog.Int("periods", len(records)),
		slog.Int("first_period", records[0].Period),
		slog.Int("last_period", records[len(records)-1].Period))

	return records, report, nil
}

// MergeSales inner-joins two period-sorted series
func MergeSales(nominal, realSeries []Observation) ([]inflation.SalesRecord, MergeReport) {
	realByPeriod := make(map[int]float64, len(realSeries))
	for _, o := range realSeries {
		realByPeriod[o.Period] = o.Value
	}

	var report MergeReport
	records := make([]inflation.SalesRecord, 0, len(nominal))
	matched := make(map[int]bool, len(nominal))
	for _, n := range nominal {
		r, ok := realByPeriod[n.Period]
		if !ok {
			report.NominalOnly = append(report.NominalOnly, n.Period)
			continue
		}
		matched[n.Period] = true
		records = append(records, inflation.SalesRecord{Period: n.Period, Nominal: n.Value, Real: r})
	}
	for _, o := range realSeries {
		if !matched[o.Period] {
			report.RealOnly = append(report.RealOnly, o.Period)
		}
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Period < records[j].Period })
	sort.Ints(report.NominalOnly)
	sort.Ints(report.RealOnly)
	return records, report
}

// LoadReference reads the reference inflation table and converts the rates
// to percent
func (l *Loader) LoadReference(ctx context.Context, path string) ([]inflation.ReferenceInflationRecord, error) {
	table, err := l.readTable(path)
	if err != nil {
		return nil, err
	}

	periodCol, err := table.Column(ColumnPeriod)
	if err != nil {
		return nil, err
	}
	rateCol, err := table.Column(ColumnReferenceRate)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(table.Rows))
	out := make([]inflation.ReferenceInflationRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		var rr rateRow
		if rr.Period, err = ParsePeriod(row.Cell(periodCol)); err != nil {
			return nil, rowError(path, row.Line, ColumnPeriod, err)
		}
		raw, err := ParseNumber(row.Cell(rateCol))
		if err != nil {
			return nil, rowError(path, row.Line, ColumnReferenceRate, err)
		}
		rr.Rate = raw * l.rateScale
		if err := l.rows.Validate(rr); err != nil {
			return nil, rowError(path, row.Line, ColumnReferenceRate, err)
		}
		if seen[rr.Period] {
			return nil, rowError(path, row.Line, ColumnPeriod, fmt.Errorf("duplicate period %d", rr.Period))
		}
		seen[rr.Period] = true
		out = append(out, inflation.ReferenceInflationRecord{Period: rr.Period, Rate: rr.Rate})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })

	l.logger.InfoContext(ctx, "Reference rates loaded",
		slog.String("file", path),
		slog.Int("periods", len(out)),
		slog.Float64("rate_scale", l.rateScale))

	return out, nil
}

func (l *Loader) readTable(path string) (*Table, error) {
	if err := l.files.ValidateTableFile(path); err != nil {
		return nil, classifyFileError(path, err)
	}
	return ReadTable(path, l.separator)
}

func classifyFileError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return apperrors.NewNotFoundError(filepath.Base(path), err).WithContext("path", path)
	}
	return apperrors.NewAppValidationError(fmt.Sprintf("unusable input file %s", filepath.Base(path)), err).
		WithContext("path", path)
}

func rowError(path string, line int, column string, err error) error {
	return apperrors.NewParsingError(
		fmt.Sprintf("%s line %d, column %s", filepath.Base(path), line, column),
		fmt.Errorf("%w: %v", inflation.ErrInvalidInput, err),
	).WithContext("file", path).WithContext("line", line).WithContext("column", column)
}
