package domain

import "errors"

// Fatal run conditions. Callers wrap them with the offending file or column
// and test with errors.Is.
var (
	// ErrSourceNotFound means an input file is missing or unreadable.
	ErrSourceNotFound = errors.New("source not found")

	// ErrSchemaMismatch means an expected column is absent or holds values
	// of the wrong shape.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrCleaningIncomplete means a missing value survived cleaning, or a
	// column has no disposition in the cleaning policy.
	ErrCleaningIncomplete = errors.New("cleaning incomplete")

	// ErrEmptyAggregate means a view or aggregate received no rows.
	ErrEmptyAggregate = errors.New("empty aggregate")
)
