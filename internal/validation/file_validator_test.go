package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tablenorm/internal/errors"
	"tablenorm/internal/shared/testutil"
)

func TestFileValidator_ValidateInputFile(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantType  apperrors.ErrorType
	}{
		{
			name: "valid csv",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "messy_data.csv")
				require.NoError(t, os.WriteFile(path, []byte("a\n1\n"), 0644))
				return path
			},
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "messy_data.csv")
			},
			wantType: apperrors.ErrTypeNotFound,
		},
		{
			name: "empty file",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "messy_data.csv")
				require.NoError(t, os.WriteFile(path, nil, 0644))
				return path
			},
			wantType: apperrors.ErrTypeInput,
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "data.csv")
				require.NoError(t, os.Mkdir(path, 0755))
				return path
			},
			wantType: apperrors.ErrTypeInput,
		},
		{
			name: "unsupported extension",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "data.json")
				require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
				return path
			},
			wantType: apperrors.ErrTypeInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			v := NewFileValidator(logger)

			err := v.ValidateInputFile(tt.setupFunc(t))
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)
		})
	}
}

func TestFileValidator_ValidateInputDirectory(t *testing.T) {
	v := NewFileValidator(nil)
	dir := t.TempDir()
	file := filepath.Join(dir, "a.csv")
	require.NoError(t, os.WriteFile(file, []byte("a\n"), 0644))

	assert.NoError(t, v.ValidateInputDirectory(dir))
	assert.True(t, apperrors.IsType(v.ValidateInputDirectory(filepath.Join(dir, "nope")), apperrors.ErrTypeNotFound))
	assert.True(t, apperrors.IsType(v.ValidateInputDirectory(file), apperrors.ErrTypeInput))
}

func TestFileValidator_ValidateOutputPath(t *testing.T) {
	v := NewFileValidator(nil)
	dir := t.TempDir()

	assert.NoError(t, v.ValidateOutputPath(filepath.Join(dir, "new", "cleaned.parquet")))
	_, err := os.Stat(filepath.Join(dir, "new"))
	assert.NoError(t, err, "parent directory created")

	err = v.ValidateOutputPath(filepath.Join(dir, "cleaned.json"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	require.NoError(t, os.Mkdir(filepath.Join(dir, "out.csv"), 0755))
	err = v.ValidateOutputPath(filepath.Join(dir, "out.csv"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	err = v.ValidateOutputPath(filepath.Join(blocker, "out.csv"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestFileValidator_ValidateOutputDirectory_NoLeftovers(t *testing.T) {
	v := NewFileValidator(nil)
	dir := t.TempDir()

	require.NoError(t, v.ValidateOutputDirectory(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileValidator_ValidateDistinctPaths(t *testing.T) {
	v := NewFileValidator(nil)

	assert.NoError(t, v.ValidateDistinctPaths("messy_data.csv", "cleaned_data.csv"))
	assert.Error(t, v.ValidateDistinctPaths("data/in.csv", "./data/../data/in.csv"))
}
