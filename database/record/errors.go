package record

import "errors"

// Errors returned when packing and unpacking records.
var (
	ErrMissingMeta        = errors.New("record has no metadata")
	ErrUnsupportedVersion = errors.New("unsupported record version")
	ErrFormatMismatch     = errors.New("wrapped record is stored in another format")

	errEmptyData = errors.New("record has no data section")
)
