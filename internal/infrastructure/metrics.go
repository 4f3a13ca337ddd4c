package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/egruenh-co/lakner-inflation/internal/inflation"
)

// RunMetrics holds the instruments recorded by one analysis run
type RunMetrics struct {
	RunsTotal        metric.Int64Counter
	RunDuration      metric.Float64Histogram
	StageDuration    metric.Float64Histogram
	StageErrors      metric.Int64Counter
	RecordsLoaded    metric.Int64Counter
	PeriodsDropped   metric.Int64Counter
	ArtifactsWritten metric.Int64Counter

	// Results of the last run
	ComparisonRows      metric.Int64Gauge
	MeanAbsDifference   metric.Float64Gauge
	MedianAbsDifference metric.Float64Gauge
	Correlation         metric.Float64Gauge
	CumulativeInflation metric.Float64Gauge

	// Runtime snapshot
	HeapAllocBytes metric.Int64Gauge
	Goroutines     metric.Int64Gauge
}

// NewRunMetrics creates the run instruments on meter
func NewRunMetrics(meter metric.Meter) (*RunMetrics, error) {
	var (
		m   RunMetrics
		err error
	)

	if m.RunsTotal, err = meter.Int64Counter("runs",
		metric.WithDescription("Analysis runs by final status")); err != nil {
		return nil, err
	}
	if m.RunDuration, err = meter.Float64Histogram("run_duration",
		metric.WithDescription("Wall time of a complete analysis run"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.StageDuration, err = meter.Float64Histogram("stage_duration",
		metric.WithDescription("Wall time per pipeline stage"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.StageErrors, err = meter.Int64Counter("stage_errors",
		metric.WithDescription("Failed pipeline stages")); err != nil {
		return nil, err
	}
	if m.RecordsLoaded, err = meter.Int64Counter("records_loaded",
		metric.WithDescription("Rows loaded per input source")); err != nil {
		return nil, err
	}
	if m.PeriodsDropped, err = meter.Int64Counter("periods_dropped",
		metric.WithDescription("Periods present in only one series")); err != nil {
		return nil, err
	}
	if m.ArtifactsWritten, err = meter.Int64Counter("artifacts_written",
		metric.WithDescription("Output files written by kind")); err != nil {
		return nil, err
	}
	if m.ComparisonRows, err = meter.Int64Gauge("comparison_rows",
		metric.WithDescription("Periods used for the comparison statistics")); err != nil {
		return nil, err
	}
	if m.MeanAbsDifference, err = meter.Float64Gauge("mean_abs_difference_percent",
		metric.WithDescription("Mean absolute difference of implied and reference yearly rates")); err != nil {
		return nil, err
	}
	if m.MedianAbsDifference, err = meter.Float64Gauge("median_abs_difference_percent",
		metric.WithDescription("Median absolute difference of implied and reference yearly rates")); err != nil {
		return nil, err
	}
	if m.Correlation, err = meter.Float64Gauge("rate_correlation",
		metric.WithDescription("Pearson correlation of implied and reference yearly rates")); err != nil {
		return nil, err
	}
	if m.CumulativeInflation, err = meter.Float64Gauge("cumulative_inflation_percent",
		metric.WithDescription("Price change from the base period to the last period")); err != nil {
		return nil, err
	}
	if m.HeapAllocBytes, err = meter.Int64Gauge("heap_alloc",
		metric.WithDescription("Heap bytes allocated at the end of the run")); err != nil {
		return nil, err
	}
	if m.Goroutines, err = meter.Int64Gauge("goroutines",
		metric.WithDescription("Goroutines alive at the end of the run")); err != nil {
		return nil, err
	}

	return &m, nil
}

func statusAttr(err error) attribute.KeyValue {
	if err != nil {
		return attribute.String("status", "failure")
	}
	return attribute.String("status", "success")
}

// RecordRun records the outcome of a complete run
func (m *RunMetrics) RecordRun(ctx context.Context, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(statusAttr(err))
	m.RunsTotal.Add(ctx, 1, attrs)
	m.RunDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordStage records the duration and outcome of one pipeline stage
func (m *RunMetrics) RecordStage(ctx context.Context, stage string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	stageAttr := attribute.String("stage", stage)
	m.StageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(stageAttr, statusAttr(err)))
	if err != nil {
		m.StageErrors.Add(ctx, 1, metric.WithAttributes(stageAttr,
			attribute.String("error.type", fmt.Sprintf("%T", err))))
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("stage.metrics_recorded", trace.WithAttributes(
			stageAttr,
			attribute.Bool("success", err == nil),
			attribute.Float64("duration_seconds", duration.Seconds()),
		))
	}
}

// RecordRecords records how many rows a source contributed
func (m *RunMetrics) RecordRecords(ctx context.Context, source string, n int) {
	if m == nil {
		return
	}
	m.RecordsLoaded.Add(ctx, int64(n), metric.WithAttributes(attribute.String("source", source)))
}

// RecordArtifact records one written output file
func (m *RunMetrics) RecordArtifact(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.ArtifactsWritten.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordAnalysis records the comparison statistics and the cumulative
// inflation of both sources. An undefined correlation is not recorded.
func (m *RunMetrics) RecordAnalysis(ctx context.Context, a *inflation.Analysis) {
	if m == nil || a == nil {
		return
	}

	stats := a.Comparison.Stats
	m.PeriodsDropped.Add(ctx, int64(len(a.Comparison.DroppedPeriods)))
	m.ComparisonRows.Record(ctx, int64(stats.Rows))
	m.MeanAbsDifference.Record(ctx, stats.MeanAbsoluteDifference)
	m.MedianAbsDifference.Record(ctx, stats.MedianAbsoluteDifference)
	if stats.CorrelationDefined {
		m.Correlation.Record(ctx, stats.PearsonCorrelation)
	}

	if last, ok := a.Last(); ok {
		m.CumulativeInflation.Record(ctx, last.CumulativeRate,
			metric.WithAttributes(attribute.String("source", "implied")))
	}
	if n := len(a.Deflated); n > 0 {
		m.CumulativeInflation.Record(ctx, a.Deflated[n-1].CumulativeRate,
			metric.WithAttributes(attribute.String("source", "reference")))
	}
}

// RecordRuntime takes a snapshot of heap and goroutine counts
func (m *RunMetrics) RecordRuntime(ctx context.Context) {
	if m == nil {
		return
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.HeapAllocBytes.Record(ctx, int64(ms.HeapAlloc))
	m.Goroutines.Record(ctx, int64(runtime.NumGoroutine()))
}
