package warehouse

import "errors"

// Domain errors for warehouse operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrInvalidInput is returned when a write request fails validation.
	ErrInvalidInput = errors.New("warehouse: invalid input")

	// ErrNotList is recorded when a structured list attribute holds a non-list value.
	ErrNotList = errors.New("warehouse: structured value is not a list")
)
