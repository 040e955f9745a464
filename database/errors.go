package database

import (
	"errors"
	"fmt"
)

// Errors.
var (
	ErrNotFound           = errors.New("database entry not found")
	ErrReadOnly           = errors.New("database is read only")
	ErrShuttingDown       = errors.New("database is shutting down")
	ErrTimeout            = errors.New("timed out waiting for write")
	ErrNoManager          = errors.New("no persistence manager available")
	ErrInvalidStorageName = errors.New("storage name must only contain lowercase alphanumeric and `_-` characters")
	ErrInvalidStorageType = errors.New("invalid database storage type")
	ErrWritePanic         = errors.New("write panicked")
	ErrTypeMismatch       = errors.New("record type mismatch")
	ErrMissingKey         = errors.New("record has no key")
)

// StartupError is returned when a Manager cannot be created.
type StartupError struct {
	Op  string
	Err error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("database startup failed to %s: %s", e.Op, e.Err)
}

// Unwrap returns the cause.
func (e *StartupError) Unwrap() error {
	return e.Err
}
