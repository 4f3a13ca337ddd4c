package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds every absolute location a run reads from or writes to
type Paths struct {
	DataDir    string
	ReportsDir string
	ChartsDir  string
	LogsDir    string

	// Inputs
	NominalFile   string
	RealFile      string
	ReferenceFile string

	// Outputs
	ResultsCSV      string
	ComparisonCSV   string
	SummaryJSON     string
	Workbook        string
	AnalysisChart   string
	ComparisonChart string

	// Telemetry
	LogFile     string
	TraceFile   string
	MetricsFile string
}

// ResolvePaths turns the configured locations into absolute paths. Relative
// entries are taken relative to baseDir, or to the working directory when
// baseDir is empty.
func (c *Config) ResolvePaths(baseDir string) (*Paths, error) {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		baseDir = wd
	}

	abs := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(baseDir, p)
	}
	under := func(dir, p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(dir, p)
	}

	dataDir := abs(c.Paths.DataDir)
	reportsDir := abs(c.Paths.ReportsDir)
	chartsDir := abs(c.Paths.ChartsDir)
	logsDir := abs(c.Paths.LogsDir)

	return &Paths{
		DataDir:    dataDir,
		ReportsDir: reportsDir,
		ChartsDir:  chartsDir,
		LogsDir:    logsDir,

		NominalFile:   filepath.Join(dataDir, c.Analysis.NominalFile),
		RealFile:      filepath.Join(dataDir, c.Analysis.RealFile),
		ReferenceFile: filepath.Join(dataDir, c.Analysis.ReferenceFile),

		ResultsCSV:      filepath.Join(reportsDir, ResultsCSVFile),
		ComparisonCSV:   filepath.Join(reportsDir, ComparisonCSVFile),
		SummaryJSON:     filepath.Join(reportsDir, SummaryJSONFile),
		Workbook:        filepath.Join(reportsDir, WorkbookFile),
		AnalysisChart:   filepath.Join(chartsDir, AnalysisChartFile),
		ComparisonChart: filepath.Join(chartsDir, ComparisonChartFile),

		LogFile:     under(logsDir, c.Logging.FilePath),
		TraceFile:   under(logsDir, c.Telemetry.TraceFile),
		MetricsFile: under(logsDir, c.Telemetry.MetricsFile),
	}, nil
}

// EnsureDirectories creates the output directories if they don't exist.
// The data directory is an input and is never created.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.ReportsDir,
		p.ChartsDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists",
			slog.String("directory", dir))
	}

	return nil
}

// InputFiles lists the three input tables in load order
func (p *Paths) InputFiles() []string {
	return []string{p.NominalFile, p.RealFile, p.ReferenceFile}
}

// GetReportPath returns a file path in the reports directory
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetChartPath returns a file path in the charts directory
func (p *Paths) GetChartPath(filename string) string {
	return filepath.Join(p.ChartsDir, filename)
}

// LogPathResolution logs all resolved paths at debug level
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Path resolution",
		slog.String("data_dir", p.DataDir),
		slog.String("reports_dir", p.ReportsDir),
		slog.String("charts_dir", p.ChartsDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("nominal_file", p.NominalFile),
		slog.String("real_file", p.RealFile),
		slog.String("reference_file", p.ReferenceFile),
	)
}
