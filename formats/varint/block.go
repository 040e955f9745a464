package varint

// AppendBlock appends the block to dst, prefixed with its length.
func AppendBlock(dst, block []byte) []byte {
	dst = append(dst, Pack64(uint64(len(block)))...)
	return append(dst, block...)
}

// SplitBlock reads a length prefixed block from the start of data and
// returns it together with the bytes following it.
func SplitBlock(data []byte) (block, rest []byte, err error) {
	size, n, err := Unpack64(data)
	if err != nil {
		return nil, nil, err
	}
	if size > uint64(len(data)-n) {
		return nil, nil, ErrTruncated
	}
	end := n + int(size)
	return data[n:end], data[end:], nil
}
