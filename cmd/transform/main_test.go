package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tablenorm/internal/errors"
)

const employees = `name,age,salary,join_date,department
Rahul Sharma,25,50000,2022-01-10,Hr
Priya Singh,27,55000,2021-02-10,Finance
Amit,30,50000,2021-05-07,It
Ananya,27,62000,2022-11-15,Finance
Ravi Kumar,28,45000,2020-08-15,Operations
Sakshi Gupta,27,48000,2021-03-03,Hr
Deepak,27,50000,2021-12-01,It
`

func writeEmployees(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	t.Chdir(dir)
	path = filepath.Join(dir, "cleaned.csv")
	require.NoError(t, os.WriteFile(path, []byte(employees), 0644))
	return dir, path
}

func TestBuildSteps(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		titles  []string
		wantErr bool
	}{
		{name: "none", args: nil},
		{
			name:   "pipeline order is fixed",
			args:   []string{"-describe", "-group", "department", "-value", "salary", "-top", "salary", "-sort", "age", "-filter", "salary>45000"},
			titles: []string{"Filter: salary>45000", "Sorted by age (ascending)", "Top 1 by salary", "mean of salary by department", "Summary statistics"},
		},
		{
			name:   "descending sort and sum",
			args:   []string{"-sort", "salary", "-desc", "-group", "department", "-value", "salary", "-agg", "sum"},
			titles: []string{"Sorted by salary (descending)", "sum of salary by department"},
		},
		{name: "bad filter", args: []string{"-filter", "salary ~ 3"}, wantErr: true},
		{name: "bad aggregation", args: []string{"-group", "d", "-value", "s", "-agg", "mode"}, wantErr: true},
		{name: "non-positive n", args: []string{"-top", "salary", "-n", "0"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseFlags(append([]string{"-in", "x.csv"}, tt.args...), &bytes.Buffer{})
			require.NoError(t, err)

			steps, err := buildSteps(opts)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
				return
			}
			require.NoError(t, err)
			var titles []string
			for _, s := range steps {
				titles = append(titles, s.title)
			}
			assert.Equal(t, tt.titles, titles)
		})
	}
}

func TestRun_FilterSortTop(t *testing.T) {
	_, in := writeEmployees(t)
	var stdout, stderr bytes.Buffer

	code := run([]string{"-in", in, "-filter", "salary>49000", "-sort", "salary", "-desc", "-top", "salary", "-n", "2"}, &stdout, &stderr)

	require.Equal(t, apperrors.ExitOK, code, stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "---- Original data (7 rows) ----")
	assert.Contains(t, out, "---- Filter: salary>49000 (5 rows) ----")
	assert.Contains(t, out, "---- Sorted by salary (descending) (5 rows) ----")
	assert.Contains(t, out, "---- Top 2 by salary (2 rows) ----")

	last := out[strings.LastIndex(out, "---- Top 2"):]
	assert.Less(t, strings.Index(last, "Ananya"), strings.Index(last, "Priya Singh"))
	assert.NotContains(t, last, "Ravi Kumar")
}

func TestRun_GroupToFile(t *testing.T) {
	dir, in := writeEmployees(t)
	result := filepath.Join(dir, "by_department.csv")
	var stdout, stderr bytes.Buffer

	code := run([]string{"-in", in, "-filter", "salary>49000", "-group", "department", "-value", "salary", "-agg", "count", "-out", result, "-quiet"}, &stdout, &stderr)

	require.Equal(t, apperrors.ExitOK, code, stderr.String())
	content, err := os.ReadFile(result)
	require.NoError(t, err)
	assert.Equal(t, "department,salary_count\nFinance,2\nHr,1\nIt,2\n", string(content))

	out := stdout.String()
	assert.NotContains(t, out, "Original data")
	assert.NotContains(t, out, "Filter:")
	assert.Contains(t, out, "count of salary by department (3 rows)")
	assert.Contains(t, out, "Wrote 3 rows to "+result)
}

func TestRun_Mean(t *testing.T) {
	_, in := writeEmployees(t)
	var stdout, stderr bytes.Buffer

	code := run([]string{"-in", in, "-group", "department", "-value", "salary", "-quiet"}, &stdout, &stderr)

	require.Equal(t, apperrors.ExitOK, code, stderr.String())
	out := stdout.String()
	for _, want := range []string{"salary_mean", "58500", "49000", "45000"} {
		assert.Contains(t, out, want)
	}
}

func TestRun_Describe(t *testing.T) {
	_, in := writeEmployees(t)
	var stdout, stderr bytes.Buffer

	code := run([]string{"-in", in, "-describe", "-quiet"}, &stdout, &stderr)

	require.Equal(t, apperrors.ExitOK, code, stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "Summary statistics (8 rows)")
	for _, want := range []string{"stat", "age", "salary", "25%", "max", "62000"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "department")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     func(in string) []string
		wantCode int
	}{
		{name: "help", args: func(string) []string { return []string{"-h"} }, wantCode: apperrors.ExitOK},
		{name: "no input", args: func(string) []string { return nil }, wantCode: apperrors.ExitUsage},
		{name: "group without value", args: func(in string) []string { return []string{"-in", in, "-group", "department"} }, wantCode: apperrors.ExitUsage},
		{name: "bad filter", args: func(in string) []string { return []string{"-in", in, "-filter", "salary"} }, wantCode: apperrors.ExitUsage},
		{name: "unknown sort column", args: func(in string) []string { return []string{"-in", in, "-sort", "bonus"} }, wantCode: apperrors.ExitUsage},
		{name: "unsupported output", args: func(in string) []string { return []string{"-in", in, "-out", "result.json"} }, wantCode: apperrors.ExitUsage},
		{name: "missing input", args: func(in string) []string { return []string{"-in", filepath.Join(filepath.Dir(in), "nope.csv")} }, wantCode: apperrors.ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, in := writeEmployees(t)
			var stdout, stderr bytes.Buffer

			code := run(tt.args(in), &stdout, &stderr)

			assert.Equal(t, tt.wantCode, code)
			if tt.wantCode != apperrors.ExitOK {
				assert.Contains(t, stderr.String(), "Error:")
			}
		})
	}
}
