package exporter

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/egruenh-co/lakner-inflation/internal/inflation"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleAnalysis(t *testing.T) *inflation.Analysis {
	t.Helper()

	sales := []inflation.SalesRecord{
		{Period: 2020, Nominal: 100, Real: 100},
		{Period: 2021, Nominal: 110, Real: 100},
		{Period: 2022, Nominal: 115.5, Real: 100},
	}
	reference := []inflation.ReferenceInflationRecord{
		{Period: 2021, Rate: 8},
		{Period: 2022, Rate: 12},
		{Period: 2023, Rate: 5},
	}

	a, err := inflation.NewCalculator(2020, quietLogger()).Analyze(context.Background(), sales, reference)
	require.NoError(t, err)
	return a
}
