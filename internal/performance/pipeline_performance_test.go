package performance

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablenorm/internal/config"
	"tablenorm/internal/dataprocessing"
	"tablenorm/internal/normalizer"
	"tablenorm/internal/table"
)

var tableSizes = []int{100, 1_000, 10_000}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// messyRecords generates n employee rows with the defects of the sample
// file: mixed case, blanks, mixed date styles and every tenth row repeated.
func messyRecords(n int) [][]string {
	departments := []string{"hr", " Finance", "IT ", "operations"}
	records := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		if i%10 == 9 {
			records = append(records, records[i-1])
			continue
		}
		age := fmt.Sprint(20 + i%40)
		if i%7 == 0 {
			age = " "
		}
		salary := fmt.Sprintf("%d", 30000+(i%50)*1000)
		if i%11 == 0 {
			salary = ""
		}
		date := fmt.Sprintf("%04d/%d/%d", 2015+i%8, 1+i%12, 1+i%28)
		if i%2 == 0 {
			date = fmt.Sprintf("%02d-%02d-%04d", 1+i%28, 1+i%12, 2015+i%8)
		}
		records = append(records, []string{
			fmt.Sprintf("employee  %d", i),
			age,
			salary,
			date,
			departments[i%len(departments)],
		})
	}
	return records
}

func messyTable(n int) *table.Table {
	return table.FromRecords([]string{"Name", " Age ", "salary ", " join_date ", "Department"}, messyRecords(n))
}

func writeMessyCSV(tb testing.TB, path string, n int) {
	tb.Helper()
	var b strings.Builder
	b.WriteString("Name, Age ,salary , join_date ,Department\n")
	for _, rec := range messyRecords(n) {
		b.WriteString(strings.Join(rec, ","))
		b.WriteByte('\n')
	}
	require.NoError(tb, os.WriteFile(path, []byte(b.String()), 0644))
}

func newNormalizer(tb testing.TB) *normalizer.Normalizer {
	tb.Helper()
	settings, err := dataprocessing.SettingsFromConfig(config.Default())
	require.NoError(tb, err)
	n, err := normalizer.New(settings.Normalizer, discardLogger)
	require.NoError(tb, err)
	return n
}

// BenchmarkNormalize measures the in-memory pipeline without any I/O
func BenchmarkNormalize(b *testing.B) {
	for _, size := range tableSizes {
		b.Run(fmt.Sprintf("Rows_%d", size), func(b *testing.B) {
			n := newNormalizer(b)
			ctx := context.Background()

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				b.StopTimer()
				t := messyTable(size)
				b.StartTimer()

				out, stats := n.Normalize(ctx, t)
				if out.NumRows() != stats.RowsOut {
					b.Fatalf("row count mismatch at iteration %d", i)
				}
			}
		})
	}
}

// BenchmarkProcessFile measures one full read, clean and CSV write
func BenchmarkProcessFile(b *testing.B) {
	for _, size := range tableSizes {
		b.Run(fmt.Sprintf("Rows_%d", size), func(b *testing.B) {
			dir := b.TempDir()
			input := filepath.Join(dir, "messy.csv")
			writeMessyCSV(b, input, size)

			p := newProcessor(b, 1)
			ctx := context.Background()
			job := dataprocessing.Job{Input: input, Output: filepath.Join(dir, "cleaned.csv")}

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if _, err := p.Process(ctx, job); err != nil {
					b.Fatalf("Process failed at iteration %d: %v", i, err)
				}
			}
		})
	}
}

// BenchmarkConcurrentBatch measures batch throughput for increasing worker counts
func BenchmarkConcurrentBatch(b *testing.B) {
	benchmarks := []struct {
		name    string
		workers int
	}{
		{"Workers_1", 1},
		{"Workers_2", 2},
		{"Workers_4", 4},
		{"Workers_8", 8},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			in := b.TempDir()
			out := b.TempDir()
			for f := 0; f < 16; f++ {
				writeMessyCSV(b, filepath.Join(in, fmt.Sprintf("part_%02d.csv", f)), 1_000)
			}

			p := newProcessor(b, bm.workers)
			jobs, err := p.PlanBatch(in, out, "")
			require.NoError(b, err)
			ctx := context.Background()

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if _, err := p.ProcessBatch(ctx, jobs); err != nil {
					b.Fatalf("batch failed at iteration %d: %v", i, err)
				}
			}
		})
	}
}

func newProcessor(tb testing.TB, workers int) *dataprocessing.Processor {
	tb.Helper()
	cfg := config.Default()
	cfg.Workers = workers
	settings, err := dataprocessing.SettingsFromConfig(cfg)
	require.NoError(tb, err)
	p, err := dataprocessing.NewProcessor(settings, nil, discardLogger)
	require.NoError(tb, err)
	return p
}

// TestBatchOutputIndependentOfWorkers checks that concurrency never changes
// what gets written
func TestBatchOutputIndependentOfWorkers(t *testing.T) {
	in := t.TempDir()
	for f := 0; f < 6; f++ {
		writeMessyCSV(t, filepath.Join(in, fmt.Sprintf("part_%d.csv", f)), 200+f*50)
	}

	outputs := make(map[int]map[string]string)
	for _, workers := range []int{1, 3, 6} {
		out := t.TempDir()
		p := newProcessor(t, workers)
		jobs, err := p.PlanBatch(in, out, "")
		require.NoError(t, err)

		_, err = p.ProcessBatch(context.Background(), jobs)
		require.NoError(t, err)

		outputs[workers] = make(map[string]string)
		for _, job := range jobs {
			content, err := os.ReadFile(job.Output)
			require.NoError(t, err)
			outputs[workers][filepath.Base(job.Output)] = string(content)
		}
	}

	require.Len(t, outputs[1], 6)
	assert.Equal(t, outputs[1], outputs[3])
	assert.Equal(t, outputs[1], outputs[6])
}

// TestNormalizeLargeTable checks the pipeline invariants on a table far
// larger than the sample
func TestNormalizeLargeTable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large table test in short mode")
	}

	const size = 50_000
	n := newNormalizer(t)

	var m1, m2 runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m1)

	out, stats := n.Normalize(context.Background(), messyTable(size))

	runtime.ReadMemStats(&m2)
	t.Logf("normalized %d rows, %d KB allocated", size, (m2.TotalAlloc-m1.TotalAlloc)/1024)

	assert.Equal(t, size, stats.RowsIn)
	assert.Equal(t, size/10, stats.DuplicatesRemoved)
	assert.Equal(t, size-size/10, out.NumRows())

	missing := out.MissingCounts()
	for i, c := range out.Columns() {
		switch c {
		case "age", "salary":
			assert.Zero(t, missing[i], c)
			assert.Equal(t, table.KindInteger, out.ColumnKind(c), c)
		case "join_date":
			assert.Zero(t, missing[i], c)
			assert.Equal(t, table.KindDate, out.ColumnKind(c), c)
		}
	}
	assert.Equal(t, normalizer.DefaultPreferredOrder(), out.Columns())
}
