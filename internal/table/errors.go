package table

import "errors"

// Common errors returned by the table package.
var (
	// ErrColumnNotFound is returned when a column name is not present.
	ErrColumnNotFound = errors.New("column not found")

	// ErrLengthMismatch is returned when a column or row has the wrong number of values.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrDuplicateColumn is returned when two columns would share a name.
	ErrDuplicateColumn = errors.New("duplicate column name")
)
