package varint

import (
	"errors"
	"fmt"
)

// Decoding errors.
var (
	ErrEmpty     = errors.New("varint: no data")
	ErrTruncated = errors.New("varint: data ends early")
	ErrOverflow  = errors.New("varint: value out of range")
)

func overflow(bits int) error {
	return fmt.Errorf("%w of uint%d", ErrOverflow, bits)
}
