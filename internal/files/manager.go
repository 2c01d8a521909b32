package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// SampleCSV is a small employee table with the usual problems: padded
// headers, inconsistent case and spacing, blank numbers, mixed date styles
// and a duplicated row.
const SampleCSV = `Name, Age ,salary , join_date ,Department
rahul sharma,25,50000,2022/01/10,hr
Priya   Singh, ,55000,10-02-2021,Finance
Amit,30, ,2021/5/7,IT
rahul sharma,25,50000,2022/01/10,hr
Ananya,,62000,2022/11/15, finance
Ravi Kumar,28,45000,15-08-2020,operations
Sakshi Gupta, ,48000,03-03-2021,HR
Deepak,27, ,2021/12/01, it
`

// Manager provides file management operations
type Manager struct {
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger.With(slog.String("component", "files"))}
}

// FileExists checks if a regular file exists at the given path
func (m *Manager) FileExists(path string) bool {
	info, err := os.Stat(path)
	exists := err == nil && !info.IsDir()

	m.logger.Debug("FileExists check",
		slog.String("path", path),
		slog.Bool("exists", exists))

	return exists
}

// EnsureDirectory creates a directory if it doesn't exist
func (m *Manager) EnsureDirectory(path string) error {
	if path == "" || path == "." {
		return nil
	}
	m.logger.Debug("Ensuring directory exists", slog.String("path", path))

	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// EnsureSample writes SampleCSV to path when no file exists there. It
// reports whether the file was created.
func (m *Manager) EnsureSample(path string) (bool, error) {
	if m.FileExists(path) {
		return false, nil
	}
	if err := m.EnsureDirectory(filepath.Dir(path)); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, []byte(SampleCSV), 0644); err != nil {
		return false, fmt.Errorf("failed to write sample file: %w", err)
	}

	m.logger.Info("Sample input created", slog.String("path", path))
	return true, nil
}

// OutputPath names the cleaned file for input inside outDir: the input's
// base name with a "_cleaned" suffix and the extension ext (for example
// ".csv"). An empty ext keeps the input's extension.
func (m *Manager) OutputPath(input, outDir, ext string) string {
	base := filepath.Base(input)
	inExt := filepath.Ext(base)
	if ext == "" {
		ext = inExt
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return filepath.Join(outDir, strings.TrimSuffix(base, inExt)+"_cleaned"+ext)
}
