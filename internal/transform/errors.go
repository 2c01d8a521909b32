package transform

import "errors"

var (
	// ErrInvalidPredicate is returned when a filter expression cannot be parsed.
	ErrInvalidPredicate = errors.New("invalid filter expression")
	// ErrUnknownAggregation is returned for an aggregation name that is not supported.
	ErrUnknownAggregation = errors.New("unknown aggregation")
	// ErrInvalidCount is returned when Top is asked for fewer than one row.
	ErrInvalidCount = errors.New("row count must be positive")
)
