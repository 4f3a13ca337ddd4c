package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/egruenh-co/lakner-inflation/internal/errors"
	"github.com/egruenh-co/lakner-inflation/internal/inflation"
)

const utf8BOM = "\ufeff"

// Table is a header plus data rows read from a CSV file or the first sheet
// of a workbook. Header names and cells are whitespace-trimmed.
type Table struct {
	Source string
	Header []string
	Rows   []Row
}

// Row is one data row with its 1-based line (CSV) or row (XLSX) number
type Row struct {
	Line   int
	Fields []string
}

// ReadTable reads path as CSV (with the given separator) or XLSX, chosen by
// extension
func ReadTable(path string, separator rune) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readWorkbook(path)
	default:
		return readCSV(path, separator)
	}
}

func readCSV(path string, separator rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = separator
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	var records []Row
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("%s: malformed CSV", filepath.Base(path)), err).
				WithContext("file", path)
		}
		line, _ := r.FieldPos(0)
		records = append(records, Row{Line: line, Fields: fields})
	}

	return buildTable(path, records)
}

// readWorkbook reads the first sheet of an XLSX file
func readWorkbook(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("%s: workbook has no sheets", filepath.Base(path)), inflation.ErrInvalidInput).
			WithContext("file", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("%s: failed to read sheet %q", filepath.Base(path), sheets[0]), err).
			WithContext("file", path)
	}

	records := make([]Row, 0, len(rows))
	for i, fields := range rows {
		records = append(records, Row{Line: i + 1, Fields: fields})
	}

	return buildTable(path, records)
}

func buildTable(path string, records []Row) (*Table, error) {
	t := &Table{Source: path}

	for _, rec := range records {
		fields := make([]string, len(rec.Fields))
		blank := true
		for i, field := range rec.Fields {
			fields[i] = strings.TrimSpace(field)
			if fields[i] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}

		if t.Header == nil {
			if len(fields) > 0 {
				fields[0] = strings.TrimSpace(strings.TrimPrefix(fields[0], utf8BOM))
			}
			t.Header = fields
			continue
		}
		t.Rows = append(t.Rows, Row{Line: rec.Line, Fields: fields})
	}

	if t.Header == nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("%s: file is empty", filepath.Base(path)), inflation.ErrInvalidInput).
			WithContext("file", path)
	}

	return t, nil
}

// Column returns the index of the named column, matched case-insensitively
func (t *Table) Column(name string) (int, error) {
	for i, h := range t.Header {
		if strings.EqualFold(h, name) {
			return i, nil
		}
	}
	return -1, apperrors.NewParsingError(
		fmt.Sprintf("%s: missing column %q (found %s)", filepath.Base(t.Source), name, strings.Join(t.Header, ", ")),
		inflation.ErrInvalidInput,
	).WithContext("file", t.Source).WithContext("column", name)
}

// Cell returns the trimmed value at col, or "" if the row is short
func (r Row) Cell(col int) string {
	if col < 0 || col >= len(r.Fields) {
		return ""
	}
	return r.Fields[col]
}

// ParseNumber parses a decimal number written with either a decimal point
// or a decimal comma. When both appear, the later one is the decimal
// separator and the other groups thousands.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return 0, errors.New("empty value")
	}

	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			return 0, fmt.Errorf("ambiguous number %q", s)
		}
		s = strings.Replace(s, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}

// ParsePeriod parses a year such as "2021" or a spreadsheet rendering such
// as "2021.0"
func ParsePeriod(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	v, err := ParseNumber(s)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, fmt.Errorf("period %q is not a whole number", s)
	}
	return int(v), nil
}

func openError(path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return apperrors.NewNotFoundError(filepath.Base(path), err).WithContext("path", path)
	}
	return apperrors.NewStorageError(fmt.Sprintf("failed to open %s", filepath.Base(path)), err).
		WithContext("path", path)
}
