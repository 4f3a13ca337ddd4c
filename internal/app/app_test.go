package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/egruenh-co/lakner-inflation/internal/config"
	apperrors "github.com/egruenh-co/lakner-inflation/internal/errors"
	"github.com/egruenh-co/lakner-inflation/internal/inflation"
	"github.com/egruenh-co/lakner-inflation/internal/infrastructure"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeInputs(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		config.NominalSalesFile:  "jahr;umsatz_nominal\n2020;14,99\n2021;15,87\n2022;15,31\n2023;16,08\n",
		config.RealSalesFile:     "jahr;umsatz_real\n2020;14,99\n2021;15,34\n2022;13,62\n2023;13,21\n",
		config.ReferenceRateFile: "jahr;inflation_rate_jahr\n2021;0,031\n2022;0,134\n2023;0,124\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
}

func newTestApp(t *testing.T, dir string, mutate func(*config.Config)) (*Application, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	paths, err := cfg.ResolvePaths(dir)
	require.NoError(t, err)

	application, err := NewApplication(cfg, paths, quietLogger(), nil)
	require.NoError(t, err)

	var stdout bytes.Buffer
	application.Stdout = &stdout
	return application, &stdout
}

func TestNewApplication_RequiresConfig(t *testing.T) {
	_, err := NewApplication(nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestApplication_Run(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir)
	application, stdout := newTestApp(t, dir, nil)

	ctx := infrastructure.WithRunID(context.Background(), "run-123")
	result, err := application.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, "run-123", result.RunID)
	require.NotNil(t, result.Analysis)
	assert.Len(t, result.Analysis.Implied, 4)
	assert.Equal(t, 3, result.Analysis.Comparison.Stats.Rows)
	assert.Empty(t, result.Merge.Dropped())

	kinds := make([]string, len(result.Artifacts))
	for i, art := range result.Artifacts {
		kinds[i] = art.Kind
		assert.FileExists(t, art.Path)
	}
	assert.Equal(t, []string{
		ArtifactResultsCSV,
		ArtifactComparisonCSV,
		ArtifactSummaryJSON,
		ArtifactWorkbook,
		ArtifactAnalysisChart,
		ArtifactComparisonChart,
	}, kinds)

	out := stdout.String()
	assert.Contains(t, out, "Organic sales: implied inflation relative to 2020")
	assert.Contains(t, out, "Lakner vs. reference inflation")
	assert.Contains(t, out, "2022:  +13.4%")
	assert.Contains(t, out, "Saved "+application.Paths.ResultsCSV)

	raw, err := os.ReadFile(application.Paths.SummaryJSON)
	require.NoError(t, err)
	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &summary))
	assert.Equal(t, "run-123", summary["run_id"])
}

func TestApplication_RunWithoutChartsOrWorkbook(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir)
	application, _ := newTestApp(t, dir, func(cfg *config.Config) {
		cfg.Analysis.Charts = false
		cfg.Analysis.Workbook = false
	})

	result, err := application.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Artifacts, 3)
	assert.NoFileExists(t, application.Paths.Workbook)
	assert.NoFileExists(t, application.Paths.AnalysisChart)
}

func TestApplication_RunResolvesWorkbookSibling(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir)

	// bio_umsatz_real.csv supplied as bio_umsatz_real.xlsx
	require.NoError(t, os.Remove(filepath.Join(dir, config.RealSalesFile)))
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"jahr", "umsatz_real"},
		{2020, 14.99},
		{2021, 15.34},
		{2022, 13.62},
		{2023, 13.21},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	stem := strings.TrimSuffix(config.RealSalesFile, filepath.Ext(config.RealSalesFile))
	require.NoError(t, f.SaveAs(filepath.Join(dir, stem+".xlsx")))
	require.NoError(t, f.Close())

	application, _ := newTestApp(t, dir, func(cfg *config.Config) {
		cfg.Analysis.Charts = false
		cfg.Analysis.Workbook = false
	})
	result, err := application.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Analysis.Implied, 4)
	assert.InDelta(t, 15.87/15.34*100, result.Analysis.Implied[1].PriceIndex, 1e-9)
}

func TestApplication_RunMissingInput(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir)
	require.NoError(t, os.Remove(filepath.Join(dir, config.ReferenceRateFile)))

	application, stdout := newTestApp(t, dir, nil)
	result, err := application.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, result)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrTypeNotFound, appErr.Type)
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Empty(t, stdout.String())
	assert.NoDirExists(t, application.Paths.ReportsDir)
}

func TestApplication_RunMissingDataDir(t *testing.T) {
	dir := t.TempDir()
	application, _ := newTestApp(t, dir, func(cfg *config.Config) {
		cfg.Paths.DataDir = "does-not-exist"
	})

	_, err := application.Run(context.Background())
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrTypeNotFound, appErr.Type)
}

func TestApplication_RunCalculationError(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir)
	application, stdout := newTestApp(t, dir, func(cfg *config.Config) {
		cfg.Analysis.BasePeriod = 2015
	})

	_, err := application.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, inflation.ErrInvalidInput)
	assert.Empty(t, stdout.String(), "no report for a failed analysis")
	assert.NoFileExists(t, application.Paths.ResultsCSV)
}

func TestApplication_RunCancelled(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir)
	application, _ := newTestApp(t, dir, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := application.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrTypeCanceled, appErr.Type)
}

func TestApplication_RunRecordsMetrics(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir)

	cfg := config.Default()
	cfg.Analysis.Charts = false
	cfg.Telemetry.TracingEnabled = true
	paths, err := cfg.ResolvePaths(dir)
	require.NoError(t, err)

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry, paths), quietLogger())
	require.NoError(t, err)

	application, err := NewApplication(cfg, paths, quietLogger(), providers)
	require.NoError(t, err)
	require.NotNil(t, application.Metrics)
	application.Stdout = io.Discard

	result, err := application.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.TraceID, 32)
	require.NoError(t, providers.Shutdown(context.Background()))

	metrics, err := os.ReadFile(paths.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "artifacts_written")
	assert.Contains(t, string(metrics), "stage_duration")

	traces, err := os.ReadFile(paths.TraceFile)
	require.NoError(t, err)
	assert.Contains(t, string(traces), "analysis.run")
	assert.Contains(t, string(traces), "analysis."+StageLoad)
}

func TestSeparatorRune(t *testing.T) {
	assert.Equal(t, ';', separatorRune(";"))
	assert.Equal(t, ',', separatorRune(","))
	assert.Equal(t, ';', separatorRune(""))
}
