package services

import "errors"

// ErrExecutionTerminal is returned when an operation needs a non-terminal
// execution but the snapshot has already completed, failed or been
// cancelled.
var ErrExecutionTerminal = errors.New("execution already terminal")

// IsConflictError reports whether err should surface as an HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrExecutionTerminal)
}
