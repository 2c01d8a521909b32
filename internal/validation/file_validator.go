package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "tablenorm/internal/errors"
	"tablenorm/internal/exporter"
	"tablenorm/internal/files"
)

// FileValidator provides the path checks run before any input is read or
// output written
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputFile checks that path is an existing, non-empty, readable file
// of a supported input type. A missing file is NOT_FOUND; an empty, unreadable
// or unsupported one is INPUT.
func (v *FileValidator) ValidateInputFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("Input file does not exist",
			slog.String("file", path))
		return apperrors.NewNotFoundError(fmt.Sprintf("input file %s", path)).WithContext("path", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat input file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewInputError(fmt.Sprintf("cannot access %s", path), err).WithContext("path", path)
	}
	if info.IsDir() {
		v.logger.Error("Input path is a directory, not a file",
			slog.String("path", path))
		return apperrors.NewInputError(fmt.Sprintf("%s is a directory, not a file", path), nil).WithContext("path", path)
	}
	if info.Size() == 0 {
		v.logger.Error("Input file is empty",
			slog.String("file", path))
		return apperrors.NewInputError(fmt.Sprintf("input file %s is empty", path), nil).WithContext("path", path)
	}
	if _, err := files.DetectFormat(path); err != nil {
		v.logger.Error("Unsupported input file type",
			slog.String("file", path),
			slog.String("extension", filepath.Ext(path)))
		return apperrors.NewInputError(err.Error(), nil).WithContext("path", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("Input file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewInputError(fmt.Sprintf("input file %s is not readable", path), err).WithContext("path", path)
	}
	file.Close()

	v.logger.Debug("Input file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateInputDirectory validates that a batch input directory exists. An
// existing directory without loadable files is not an error.
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist",
			slog.String("directory", dir))
		return apperrors.NewNotFoundError(fmt.Sprintf("input directory %s", dir)).WithContext("path", dir)
	}
	if err != nil {
		return apperrors.NewInputError(fmt.Sprintf("failed to stat directory %s", dir), err).WithContext("path", dir)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory",
			slog.String("path", dir))
		return apperrors.NewInputError(fmt.Sprintf("%s is not a directory", dir), nil).WithContext("path", dir)
	}
	return nil
}

// ValidateOutputPath checks that path has a supported output extension, is
// not a directory and that its parent directory exists or can be created.
func (v *FileValidator) ValidateOutputPath(path string) error {
	if _, err := exporter.FormatForPath(path); err != nil {
		v.logger.Error("Unsupported output file type",
			slog.String("file", path),
			slog.String("extension", filepath.Ext(path)))
		return apperrors.NewValidationError(err.Error()).WithContext("path", path)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return apperrors.NewValidationError(fmt.Sprintf("output %s is a directory", path)).WithContext("path", path)
	}
	return v.ValidateOutputDirectory(filepath.Dir(path))
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err).WithContext("path", dir)
	}

	// Verify it's writable by creating a test file
	file, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err).WithContext("path", dir)
	}
	file.Close()
	os.Remove(file.Name())

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateDistinctPaths rejects an output path that would overwrite the input.
func (v *FileValidator) ValidateDistinctPaths(input, output string) error {
	in, errIn := filepath.Abs(input)
	out, errOut := filepath.Abs(output)
	if errIn != nil || errOut != nil {
		in, out = filepath.Clean(input), filepath.Clean(output)
	}
	if in == out {
		return apperrors.NewValidationError("output path must differ from input path").WithContext("path", output)
	}
	return nil
}
