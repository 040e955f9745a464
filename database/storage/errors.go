package storage

import "errors"

// Errors for storages.
var (
	ErrNotFound     = errors.New("storage entry not found")
	ErrInvalidKey   = errors.New("invalid key")
	ErrReadOnly     = errors.New("storage is read only")
	ErrShuttingDown = errors.New("storage is shutting down")
	ErrUnknownType  = errors.New("unknown storage type")
)
