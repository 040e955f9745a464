package varint

import (
	"encoding/binary"
)

// Pack8 packs a uint8 into a VarInt.
func Pack8(n uint8) []byte {
	if n < 128 {
		return []byte{n}
	}
	return []byte{n, 0x01}
}

// Pack16 packs a uint16 into a VarInt.
func Pack16(n uint16) []byte {
	buf := make([]byte, 3)
	w := binary.PutUvarint(buf, uint64(n))
	return buf[:w]
}

// Pack32 packs a uint32 into a VarInt.
func Pack32(n uint32) []byte {
	buf := make([]byte, 5)
	w := binary.PutUvarint(buf, uint64(n))
	return buf[:w]
}

// Pack64 packs a uint64 into a VarInt.
func Pack64(n uint64) []byte {
	buf := make([]byte, binary.MaxVarintLen64)
	w := binary.PutUvarint(buf, n)
	return buf[:w]
}

// Unpack8 unpacks a VarInt into a uint8. It returns the extracted int, how many bytes were used and an error.
func Unpack8(blob []byte) (uint8, int, error) {
	if len(blob) < 1 {
		return 0, 0, ErrEmpty
	}
	if blob[0] < 128 {
		return blob[0], 1, nil
	}
	if len(blob) < 2 {
		return 0, 0, ErrTruncated
	}
	if blob[1] != 0x01 {
		return 0, 0, overflow(8)
	}
	return blob[0], 2, nil
}

// Unpack16 unpacks a VarInt into a uint16. It returns the extracted int, how many bytes were used and an error.
func Unpack16(blob []byte) (uint16, int, error) {
	n, r, err := unpack(blob, 3)
	if err != nil {
		return 0, 0, err
	}
	if n > 1<<16-1 {
		return 0, 0, overflow(16)
	}
	return uint16(n), r, nil
}

// Unpack32 unpacks a VarInt into a uint32. It returns the extracted int, how many bytes were used and an error.
func Unpack32(blob []byte) (uint32, int, error) {
	n, r, err := unpack(blob, 5)
	if err != nil {
		return 0, 0, err
	}
	if n > 1<<32-1 {
		return 0, 0, overflow(32)
	}
	return uint32(n), r, nil
}

// Unpack64 unpacks a VarInt into a uint64. It returns the extracted int, how many bytes were used and an error.
func Unpack64(blob []byte) (uint64, int, error) {
	return unpack(blob, binary.MaxVarintLen64)
}

func unpack(blob []byte, maxLen int) (uint64, int, error) {
	if len(blob) < 1 {
		return 0, 0, ErrEmpty
	}
	if len(blob) > maxLen {
		blob = blob[:maxLen]
	}
	n, r := binary.Uvarint(blob)
	switch {
	case r == 0:
		return 0, 0, ErrTruncated
	case r < 0:
		return 0, 0, overflow(64)
	}
	return n, r, nil
}
