package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/egruenh-co/lakner-inflation/internal/config"
	"github.com/egruenh-co/lakner-inflation/internal/files"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths     *config.Paths
	separator rune
	decimals  int
	logger    *slog.Logger
}

// CSVOptions configures the output format
type CSVOptions struct {
	Separator rune // ';' when zero
	Decimals  int
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths, opts CSVOptions, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Separator == 0 {
		opts.Separator = ';'
	}
	return &CSVWriter{
		paths:     paths,
		separator: opts.Separator,
		decimals:  opts.Decimals,
		logger:    logger.With(slog.String("component", "csv_writer")),
	}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options. The file is
// renamed into place once complete.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	w.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	return files.WriteAtomic(fullPath, func(out io.Writer) error {
		return w.write(out, options)
	})
}

func (w *CSVWriter) write(out io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	writer.Comma = w.separator

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteTable writes a table with its header row and a BOM
func (w *CSVWriter) WriteTable(filePath string, t Table) error {
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   t.Headers,
		Records:   t.Records(w.decimals),
		BOMPrefix: true,
	})
}

// resolvePath places relative file names in the reports directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return w.paths.GetReportPath(filePath)
}
