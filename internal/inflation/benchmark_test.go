package inflation

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"testing"
)

// Series lengths from a short published history up to a long synthetic one
var benchmarkSizes = []struct {
	name string
	size int
}{
	{"five_years", 5},
	{"thirty_years", 30},
	{"century", 100},
}

func generateBenchmarkSeries(n int) ([]SalesRecord, []ReferenceInflationRecord) {
	rng := rand.New(rand.NewSource(42))
	sales := make([]SalesRecord, n)
	reference := make([]ReferenceInflationRecord, 0, n-1)

	nominal, realValue := 10.0, 10.0
	for i := 0; i < n; i++ {
		period := 1950 + i
		sales[i] = SalesRecord{Period: period, Nominal: nominal, Real: realValue}
		if i > 0 {
			reference = append(reference, ReferenceInflationRecord{Period: period, Rate: rng.Float64()*8 - 1})
		}
		nominal *= 1 + rng.Float64()*0.1
		realValue *= 1 + (rng.Float64()*0.06 - 0.02)
	}

	// Shuffle so the sort is part of the measurement
	rng.Shuffle(n, func(a, b int) { sales[a], sales[b] = sales[b], sales[a] })
	return sales, reference
}

func BenchmarkComputeImpliedIndex(b *testing.B) {
	for _, bm := range benchmarkSizes {
		b.Run(bm.name, func(b *testing.B) {
			sales, _ := generateBenchmarkSeries(bm.size)

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if _, err := ComputeImpliedIndex(sales, 1950); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCompareWithReference(b *testing.B) {
	for _, bm := range benchmarkSizes {
		b.Run(bm.name, func(b *testing.B) {
			sales, reference := generateBenchmarkSeries(bm.size)
			implied, err := ComputeImpliedIndex(sales, 1950)
			if err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if _, err := CompareWithReference(implied, reference); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCalculator_Analyze(b *testing.B) {
	calc := NewCalculator(1950, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	for _, bm := range benchmarkSizes {
		b.Run(bm.name, func(b *testing.B) {
			sales, reference := generateBenchmarkSeries(bm.size)

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if _, err := calc.Analyze(ctx, sales, reference); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
