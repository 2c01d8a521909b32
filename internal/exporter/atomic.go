package exporter

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
)

// writeAtomic creates a temporary file in path's directory, hands it to
// write and renames it to path once write succeeds. write may close the
// file itself. On any error the temporary file is removed.
func writeAtomic(path string, write func(f *os.File) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil && !stderrors.Is(err, os.ErrClosed) {
		return fmt.Errorf("failed to sync output: %w", err)
	}
	if err = tmp.Close(); err != nil && !stderrors.Is(err, os.ErrClosed) {
		return fmt.Errorf("failed to close output: %w", err)
	}
	if err = os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// writeAtomicPath is writeAtomic for writers that need a file name instead of
// an open file.
func writeAtomicPath(path string, write func(tmpPath string) error) error {
	return writeAtomic(path, func(f *os.File) error {
		if err := f.Close(); err != nil {
			return err
		}
		return write(f.Name())
	})
}
