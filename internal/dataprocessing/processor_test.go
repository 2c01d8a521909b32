package dataprocessing

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablenorm/internal/config"
	apperrors "tablenorm/internal/errors"
	"tablenorm/internal/files"
	"tablenorm/internal/shared/testutil"
)

const cleanedEmployees = `name,age,salary,join_date,department
Rahul Sharma,25,50000,2022-01-10,Hr
Priya Singh,27,55000,2021-02-10,Finance
Amit,30,50000,2021-05-07,It
Ananya,27,62000,2022-11-15,Finance
Ravi Kumar,28,45000,2020-08-15,Operations
Sakshi Gupta,27,48000,2021-03-03,Hr
Deepak,27,50000,2021-12-01,It
`

func newTestProcessor(t *testing.T, mutate func(*config.Config)) (*Processor, *testutil.BufferedSlogHandler) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())

	settings, err := SettingsFromConfig(cfg)
	require.NoError(t, err)

	logger, handler := testutil.NewTestLogger(t)
	p, err := NewProcessor(settings, nil, logger)
	require.NoError(t, err)
	return p, handler
}

func TestProcessor_Process(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteFile(t, dir, "messy_data.csv", files.SampleCSV)
	output := filepath.Join(dir, "out", "cleaned_data.csv")

	p, handler := newTestProcessor(t, nil)

	result, err := p.Process(context.Background(), Job{Input: input, Output: output})
	require.NoError(t, err)
	require.NotNil(t, result)

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, cleanedEmployees, string(content))

	assert.NoError(t, result.Err)
	assert.Equal(t, 7, result.Table.NumRows())
	assert.Equal(t, 8, result.Stats.RowsIn)
	assert.Equal(t, 1, result.Stats.DuplicatesRemoved)
	assert.Positive(t, result.Duration)

	assert.Equal(t, 8, result.Summary.RowsRead)
	assert.Equal(t, 7, result.Summary.RowsWritten)
	assert.Equal(t, output, result.Summary.Output)

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "file processed")
	testutil.AssertLogAttr(t, handler, "component", "processor")
	testutil.AssertNoErrors(t, handler)

	records := handler.GetRecordsByMessage("file processed")
	require.Len(t, records, 1)
	assert.NotEmpty(t, records[0].Attrs["rows_written"])
}

func TestProcessor_Process_OutputFormats(t *testing.T) {
	for _, name := range []string{"cleaned.tsv", "cleaned.xlsx", "cleaned.parquet", "cleaned.db"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			input := testutil.WriteFile(t, dir, "messy.csv", files.SampleCSV)
			output := filepath.Join(dir, name)

			p, _ := newTestProcessor(t, nil)
			_, err := p.Process(context.Background(), Job{Input: input, Output: output})

			require.NoError(t, err)
			info, err := os.Stat(output)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}
}

func TestProcessor_Process_MonthFirstAndConstantFill(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteFile(t, dir, "in.csv", "Name,Age,Join Date\nsam,20,02-10-2021\nriya,,12-31-2020\n")
	output := filepath.Join(dir, "out.csv")

	p, _ := newTestProcessor(t, func(c *config.Config) {
		c.Cleaning.DateOrder = "MDY"
		c.Cleaning.Fill = "constant"
		c.Cleaning.FillValue = 18
	})

	result, err := p.Process(context.Background(), Job{Input: input, Output: output})
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"Sam", "20", "2021-02-10"},
		{"Riya", "18", "2020-12-31"},
	}, result.Table.Records())
	assert.Equal(t, []string{"name", "age", "join_date"}, result.Table.Columns())
	assert.Equal(t, []string{"department", "salary"}, result.Stats.SkippedColumns)
}

func TestProcessor_Process_Errors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, dir string) Job
		wantType apperrors.ErrorType
	}{
		{
			name: "missing input",
			setup: func(t *testing.T, dir string) Job {
				return Job{Input: filepath.Join(dir, "nope.csv"), Output: filepath.Join(dir, "out.csv")}
			},
			wantType: apperrors.ErrTypeNotFound,
		},
		{
			name: "empty input",
			setup: func(t *testing.T, dir string) Job {
				return Job{Input: testutil.WriteFile(t, dir, "empty.csv", ""), Output: filepath.Join(dir, "out.csv")}
			},
			wantType: apperrors.ErrTypeInput,
		},
		{
			name: "unsupported output",
			setup: func(t *testing.T, dir string) Job {
				return Job{Input: testutil.WriteFile(t, dir, "in.csv", "a\n1\n"), Output: filepath.Join(dir, "out.json")}
			},
			wantType: apperrors.ErrTypeValidation,
		},
		{
			name: "output overwrites input",
			setup: func(t *testing.T, dir string) Job {
				in := testutil.WriteFile(t, dir, "in.csv", "a\n1\n")
				return Job{Input: in, Output: in}
			},
			wantType: apperrors.ErrTypeValidation,
		},
		{
			name: "malformed csv",
			setup: func(t *testing.T, dir string) Job {
				return Job{Input: testutil.WriteFile(t, dir, "bad.csv", "a,b\n1,x\"y\n"), Output: filepath.Join(dir, "out.csv")}
			},
			wantType: apperrors.ErrTypeParsing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			job := tt.setup(t, dir)
			p, handler := newTestProcessor(t, nil)

			result, err := p.Process(context.Background(), job)

			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)
			require.NotNil(t, result)
			assert.Equal(t, err, result.Err)
			assert.Nil(t, result.Table)

			if job.Output != job.Input {
				assert.NoFileExists(t, job.Output)
			}
			testutil.AssertLogContains(t, handler, slog.LevelError, "file processing failed")
		})
	}
}

func TestProcessor_Process_Cancelled(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteFile(t, dir, "in.csv", files.SampleCSV)
	output := filepath.Join(dir, "out.csv")

	p, _ := newTestProcessor(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Process(ctx, Job{Input: input, Output: output})

	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, output)
}

func TestProcessor_Process_HeaderOnly(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteFile(t, dir, "in.csv", "Name, Age \n")
	output := filepath.Join(dir, "out.csv")

	p, _ := newTestProcessor(t, nil)
	result, err := p.Process(context.Background(), Job{Input: input, Output: output})

	require.NoError(t, err)
	assert.Equal(t, 0, result.Table.NumRows())
	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "name,age\n", string(content))
}

func TestNewProcessor_InvalidRules(t *testing.T) {
	cfg := config.Default()
	settings, err := SettingsFromConfig(cfg)
	require.NoError(t, err)
	settings.Normalizer.DateOrder = "YMD"

	_, err = NewProcessor(settings, nil, nil)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestNewProcessor_ConstantFillOutsideIntegerRange(t *testing.T) {
	cfg := config.Default()
	cfg.Cleaning.Fill = "constant"
	cfg.Cleaning.FillValue = 1e20
	require.NoError(t, cfg.Validate())
	settings, err := SettingsFromConfig(cfg)
	require.NoError(t, err)

	_, err = NewProcessor(settings, nil, nil)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
	assert.Equal(t, apperrors.ExitUsage, apperrors.ExitCode(err))
	assert.Contains(t, err.Error(), "outside the integer range")
}
