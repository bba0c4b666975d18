package domain

import "errors"

// Error kinds surfaced by the calculation core. Tool-boundary code converts
// these to fixed neutral user messages; they are never shown raw to the
// end user.
var (
	// ErrInvalidParameter marks out-of-range numeric input to the
	// amortization kernel.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrMissingData marks required profile or request fields that are
	// absent or zero.
	ErrMissingData = errors.New("missing data")

	// ErrNotFound marks a missing record in the repository or cache.
	ErrNotFound = errors.New("record not found")

	// ErrDataSource marks an unreadable or malformed profile store. It is
	// propagated up and fatal at startup.
	ErrDataSource = errors.New("data source error")
)
