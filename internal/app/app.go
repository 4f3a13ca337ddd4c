package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/egruenh-co/lakner-inflation/internal/chart"
	"github.com/egruenh-co/lakner-inflation/internal/config"
	"github.com/egruenh-co/lakner-inflation/internal/dataprocessing"
	apperrors "github.com/egruenh-co/lakner-inflation/internal/errors"
	"github.com/egruenh-co/lakner-inflation/internal/exporter"
	"github.com/egruenh-co/lakner-inflation/internal/files"
	"github.com/egruenh-co/lakner-inflation/internal/inflation"
	"github.com/egruenh-co/lakner-inflation/internal/infrastructure"
	"github.com/egruenh-co/lakner-inflation/internal/report"
	"github.com/egruenh-co/lakner-inflation/internal/validation"
)

// Pipeline stages, used as span names and metric labels
const (
	StageResolve = "resolve_inputs"
	StageLoad    = "load"
	StageAnalyze = "analyze"
	StageReport  = "report"
	StageExport  = "export"
)

// Artifact kinds
const (
	ArtifactResultsCSV      = "results_csv"
	ArtifactComparisonCSV   = "comparison_csv"
	ArtifactSummaryJSON     = "summary_json"
	ArtifactWorkbook        = "workbook"
	ArtifactAnalysisChart   = "analysis_chart"
	ArtifactComparisonChart = "comparison_chart"
)

// Application wires configuration, loader, calculator and exporters for a
// single analysis run
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.RunMetrics

	// Stdout receives the console report
	Stdout io.Writer

	validator *validation.FileValidator
	files     *files.Manager
	loader    *dataprocessing.Loader
	calc      *inflation.Calculator
	now       func() time.Time
}

// Artifact is one file written by a run
type Artifact struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// Result is the outcome of a successful run
type Result struct {
	RunID     string
	TraceID   string // empty unless tracing is enabled
	Analysis  *inflation.Analysis
	Merge     dataprocessing.MergeReport
	Artifacts []Artifact
	Duration  time.Duration
}

// NewApplication creates an application. otelProviders may be nil, in
// which case spans and metrics are not recorded.
func NewApplication(cfg *config.Config, paths *config.Paths, logger *slog.Logger, otelProviders *infrastructure.OTelProviders) (*Application, error) {
	if cfg == nil || paths == nil {
		return nil, fmt.Errorf("config and paths are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Stdout:        os.Stdout,
		validator:     validation.NewFileValidator(logger),
		files:         files.NewManager(paths, infrastructure.WithComponent(logger, "files")),
		loader: dataprocessing.NewLoader(dataprocessing.LoaderOptions{
			Separator: cfg.Analysis.Separator,
			RateScale: cfg.ReferenceRateScale(),
		}, infrastructure.WithComponent(logger, "loader")),
		calc: inflation.NewCalculator(cfg.Analysis.BasePeriod, infrastructure.WithComponent(logger, "calculator")),
		now:  time.Now,
	}

	if otelProviders != nil {
		metrics, err := infrastructure.NewRunMetrics(otelProviders.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create run metrics: %w", err)
		}
		app.Metrics = metrics
	}

	return app, nil
}

// Run loads the inputs, computes the analysis, prints the report and
// writes every enabled artifact. It honours cfg.Analysis.Timeout.
func (a *Application) Run(ctx context.Context) (result *Result, err error) {
	start := time.Now()
	ctx = infrastructure.EnsureRunID(ctx)

	if timeout := a.Config.Analysis.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ctx, span := a.tracer().Start(ctx, "analysis.run", trace.WithAttributes(
		attribute.Int("base_period", a.Config.Analysis.BasePeriod),
		attribute.String("run_id", infrastructure.GetRunID(ctx)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		a.Metrics.RecordRuntime(ctx)
		a.Metrics.RecordRun(ctx, time.Since(start), err)
	}()

	a.Logger.InfoContext(ctx, "Analysis run starting",
		slog.String("app", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("base_period", a.Config.Analysis.BasePeriod),
		slog.String("data_dir", a.Paths.DataDir))

	var inputs inputFiles
	if err := a.stage(ctx, StageResolve, func(ctx context.Context) (err error) {
		inputs, err = a.resolveInputs(ctx)
		return err
	}); err != nil {
		return nil, err
	}

	var sales []inflation.SalesRecord
	var reference []inflation.ReferenceInflationRecord
	var merge dataprocessing.MergeReport
	if err := a.stage(ctx, StageLoad, func(ctx context.Context) (err error) {
		sales, reference, merge, err = a.load(ctx, inputs)
		return err
	}); err != nil {
		return nil, err
	}

	var analysis *inflation.Analysis
	if err := a.stage(ctx, StageAnalyze, func(ctx context.Context) (err error) {
		analysis, err = a.calc.Analyze(ctx, sales, reference)
		return err
	}); err != nil {
		return nil, err
	}
	a.Metrics.RecordAnalysis(ctx, analysis)

	if err := a.stage(ctx, StageReport, func(ctx context.Context) error {
		report.NewPrinter(a.Stdout).Print(analysis)
		return nil
	}); err != nil {
		return nil, err
	}

	var artifacts []Artifact
	if err := a.stage(ctx, StageExport, func(ctx context.Context) (err error) {
		artifacts, err = a.export(ctx, analysis)
		return err
	}); err != nil {
		return nil, err
	}

	paths := make([]string, len(artifacts))
	for i, art := range artifacts {
		paths[i] = art.Path
	}
	report.NewPrinter(a.Stdout).Outputs(paths)

	result = &Result{
		RunID:     infrastructure.GetRunID(ctx),
		TraceID:   infrastructure.TraceIDFromContext(ctx),
		Analysis:  analysis,
		Merge:     merge,
		Artifacts: artifacts,
		Duration:  time.Since(start),
	}

	a.Logger.InfoContext(ctx, "Analysis run completed",
		slog.Duration("duration", result.Duration),
		slog.Int("periods", len(analysis.Implied)),
		slog.Int("artifacts", len(artifacts)))

	return result, nil
}

// stage runs fn inside its own span and records its duration. A cancelled
// or expired context stops the pipeline before the stage starts.
func (a *Application) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeCanceled, "run cancelled before "+name, err)
	}

	ctx, span := a.tracer().Start(ctx, "analysis."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	a.Metrics.RecordStage(ctx, name, time.Since(start), err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		a.Logger.DebugContext(ctx, "Stage failed",
			slog.String("stage", name),
			slog.String("error", err.Error()))
		return err
	}

	a.Logger.DebugContext(ctx, "Stage completed",
		slog.String("stage", name),
		slog.Duration("duration", time.Since(start)))
	return nil
}

type inputFiles struct {
	nominal, realSales, reference string
}

// resolveInputs accepts an .xlsx sibling for every configured .csv input
func (a *Application) resolveInputs(ctx context.Context) (inputFiles, error) {
	if err := a.validator.ValidateInputDirectory(a.Paths.DataDir); err != nil {
		return inputFiles{}, apperrors.NewNotFoundError("data directory", err).
			WithContext("path", a.Paths.DataDir)
	}

	resolve := func(path string) (string, error) {
		resolved, err := a.validator.ResolveTableFile(filepath.Dir(path), filepath.Base(path))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return "", apperrors.NewNotFoundError(filepath.Base(path), err).
					WithContext("path", path).
					WithContext("available", a.availableTables())
			}
			return "", apperrors.NewAppValidationError("unusable input file", err).WithContext("path", path)
		}
		return resolved, nil
	}

	var in inputFiles
	var err error
	if in.nominal, err = resolve(a.Paths.NominalFile); err != nil {
		return in, err
	}
	if in.realSales, err = resolve(a.Paths.RealFile); err != nil {
		return in, err
	}
	if in.reference, err = resolve(a.Paths.ReferenceFile); err != nil {
		return in, err
	}

	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"input.nominal":   in.nominal,
		"input.real":      in.realSales,
		"input.reference": in.reference,
	})
	return in, nil
}

// availableTables lists the tables found in the data directory
func (a *Application) availableTables() []string {
	tables, err := files.NewDiscovery(a.Paths.DataDir).FindTables("")
	if err != nil {
		return nil
	}
	return files.Names(tables)
}

// load reads the sales and reference tables concurrently
func (a *Application) load(ctx context.Context, in inputFiles) ([]inflation.SalesRecord, []inflation.ReferenceInflationRecord, dataprocessing.MergeReport, error) {
	var (
		sales     []inflation.SalesRecord
		merge     dataprocessing.MergeReport
		reference []inflation.ReferenceInflationRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, merge, err = a.loader.LoadSales(gctx, in.nominal, in.realSales)
		return err
	})
	g.Go(func() error {
		var err error
		reference, err = a.loader.LoadReference(gctx, in.reference)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, merge, err
	}

	if len(merge.Dropped()) > 0 {
		infrastructure.AddSpanEvent(ctx, "periods.unmatched", map[string]interface{}{
			"nominal_only": merge.NominalOnly,
			"real_only":    merge.RealOnly,
		})
	}

	a.Metrics.RecordRecords(ctx, "sales", len(sales))
	a.Metrics.RecordRecords(ctx, "reference", len(reference))
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"records.sales":     len(sales),
		"records.reference": len(reference),
		"periods.unmatched": merge.Dropped(),
	})

	return sales, reference, merge, nil
}

// export writes all enabled artifacts concurrently. Artifacts are returned
// in a fixed order regardless of completion order.
func (a *Application) export(ctx context.Context, analysis *inflation.Analysis) ([]Artifact, error) {
	if err := a.validator.ValidateOutputDirectory(a.Paths.ReportsDir); err != nil {
		return nil, apperrors.NewStorageError("reports directory is not writable", err).
			WithContext("path", a.Paths.ReportsDir)
	}

	cfg := a.Config.Analysis
	csvWriter := exporter.NewCSVWriter(a.Paths, exporter.CSVOptions{
		Separator: separatorRune(cfg.Separator),
		Decimals:  cfg.DecimalPlaces,
	}, a.Logger)

	type job struct {
		kind string
		path string
		run  func(ctx context.Context) error
	}

	jobs := []job{
		{ArtifactResultsCSV, a.Paths.ResultsCSV, func(context.Context) error {
			return csvWriter.WriteTable(a.Paths.ResultsCSV, exporter.ResultsTable(analysis))
		}},
		{ArtifactComparisonCSV, a.Paths.ComparisonCSV, func(context.Context) error {
			return csvWriter.WriteTable(a.Paths.ComparisonCSV, exporter.ComparisonTable(analysis))
		}},
		{ArtifactSummaryJSON, a.Paths.SummaryJSON, func(ctx context.Context) error {
			summary := exporter.NewSummary(infrastructure.GetRunID(ctx), analysis, a.now())
			return exporter.WriteSummaryJSON(a.Paths.SummaryJSON, summary)
		}},
	}
	if cfg.Workbook {
		workbook := exporter.NewWorkbookExporter(exporter.WorkbookOptions{
			Decimals: cfg.DecimalPlaces,
			Charts:   cfg.Charts,
		}, a.Logger)
		jobs = append(jobs, job{ArtifactWorkbook, a.Paths.Workbook, func(ctx context.Context) error {
			return workbook.Export(ctx, a.Paths.Workbook, analysis)
		}})
	}
	if cfg.Charts {
		jobs = append(jobs,
			job{ArtifactAnalysisChart, a.Paths.AnalysisChart, func(context.Context) error {
				return a.files.WriteFile(a.Paths.AnalysisChart, func(w io.Writer) error {
					return chart.WritePNG(w, report.AnalysisFigure(analysis))
				})
			}},
			job{ArtifactComparisonChart, a.Paths.ComparisonChart, func(context.Context) error {
				return a.files.WriteFile(a.Paths.ComparisonChart, func(w io.Writer) error {
					return chart.WritePNG(w, report.ComparisonFigure(analysis))
				})
			}},
		)
	}

	var mu sync.Mutex
	written := make(map[string]bool, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			jctx, span := a.tracer().Start(gctx, "export."+j.kind,
				trace.WithAttributes(attribute.String("path", j.path)))
			defer span.End()

			if a.files.FileExists(j.path) {
				a.Logger.DebugContext(jctx, "Replacing existing output", slog.String("path", j.path))
			}

			if err := j.run(jctx); err != nil {
				infrastructure.RecordError(jctx, err)
				return apperrors.NewStorageError("failed to write "+j.kind, err).WithContext("path", j.path)
			}

			a.Metrics.RecordArtifact(jctx, j.kind)
			mu.Lock()
			written[j.kind] = true
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	artifacts := make([]Artifact, 0, len(jobs))
	for _, j := range jobs {
		if written[j.kind] {
			artifacts = append(artifacts, Artifact{Kind: j.kind, Path: j.path})
		}
	}
	return artifacts, nil
}

func (a *Application) tracer() trace.Tracer {
	if a.OTelProviders != nil && a.OTelProviders.Tracer != nil {
		return a.OTelProviders.Tracer
	}
	return tracenoop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)
}

func separatorRune(sep string) rune {
	for _, r := range sep {
		return r
	}
	return ';'
}
