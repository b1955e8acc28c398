package transaction

import "errors"

var (
	// ErrNotFound is returned when a transaction does not exist or
	// belongs to another tenant.
	ErrNotFound = errors.New("transaction not found")

	// ErrInvalid is returned when create/update parameters fail
	// validation.
	ErrInvalid = errors.New("invalid transaction")
)
