package files

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_FileExists(t *testing.T) {
	m := NewManager(nil)
	dir := t.TempDir()
	path := filepath.Join(dir, "a.csv")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	assert.True(t, m.FileExists(path))
	assert.False(t, m.FileExists(filepath.Join(dir, "b.csv")))
	assert.False(t, m.FileExists(dir), "directories are not files")
}

func TestManager_EnsureDirectory(t *testing.T) {
	m := NewManager(nil)
	dir := filepath.Join(t.TempDir(), "out", "cleaned")

	require.NoError(t, m.EnsureDirectory(dir))
	require.NoError(t, m.EnsureDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.NoError(t, m.EnsureDirectory(""))
}

func TestManager_EnsureSample(t *testing.T) {
	m := NewManager(nil)
	path := filepath.Join(t.TempDir(), "data", "messy_data.csv")

	created, err := m.EnsureSample(path)
	require.NoError(t, err)
	assert.True(t, created)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, SampleCSV, string(content))

	// an existing file is never overwritten
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0644))
	created, err = m.EnsureSample(path)
	require.NoError(t, err)
	assert.False(t, created)
	content, _ = os.ReadFile(path)
	assert.Equal(t, "x\n", string(content))
}

func TestSampleCSV_Loads(t *testing.T) {
	path := writeFile(t, "sample.csv", []byte(SampleCSV))

	got, err := NewReader(nil).Load(context.Background(), path, ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, 5, got.NumColumns())
	assert.Equal(t, 8, got.NumRows())
	// "Ananya,,62000" is the only truly empty field in the age column
	assert.Equal(t, []int{0, 1, 0, 0, 0}, got.MissingCounts())
}

func TestManager_OutputPath(t *testing.T) {
	m := NewManager(nil)

	tests := []struct {
		input  string
		outDir string
		ext    string
		want   string
	}{
		{"in/messy.csv", "out", ".csv", filepath.Join("out", "messy_cleaned.csv")},
		{"/data/book.xlsx", "/out", "", filepath.Join("/out", "book_cleaned.xlsx")},
		{"staff.tsv", "out", "parquet", filepath.Join("out", "staff_cleaned.parquet")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, m.OutputPath(tt.input, tt.outDir, tt.ext))
		})
	}
}
