package varint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPack8(t *testing.T) {
	t.Parallel()

	for _, n := range []uint8{0, 1, 74, 127, 128, 200, 255} {
		packed := Pack8(n)
		unpacked, read, err := Unpack8(packed)
		require.NoError(t, err, "value %d", n)
		assert.Equal(t, n, unpacked)
		assert.Equal(t, len(packed), read)
	}

	_, _, err := Unpack8(nil)
	assert.Error(t, err)
	_, _, err = Unpack8([]byte{200})
	assert.Error(t, err)
	_, _, err = Unpack8([]byte{200, 0x02})
	assert.Error(t, err)
}

func TestPack64(t *testing.T) {
	t.Parallel()

	for _, n := range []uint64{0, 127, 128, 300, 1 << 20, 1<<63 + 5} {
		packed := Pack64(n)
		unpacked, read, err := Unpack64(packed)
		require.NoError(t, err)
		assert.Equal(t, n, unpacked)
		assert.Equal(t, len(packed), read)
	}

	_, _, err := Unpack16(Pack64(1 << 17))
	require.ErrorIs(t, err, ErrOverflow)
	n, _, err := Unpack32(Pack32(70000))
	require.NoError(t, err)
	assert.Equal(t, uint32(70000), n)
}

func TestBlocks(t *testing.T) {
	t.Parallel()

	data := AppendBlock([]byte{1}, []byte("meta"))
	data = append(data, "rest"...)
	block, rest, err := SplitBlock(data[1:])
	require.NoError(t, err)
	assert.Equal(t, []byte("meta"), block)
	assert.Equal(t, []byte("rest"), rest)

	block, rest, err = SplitBlock(AppendBlock(nil, nil))
	require.NoError(t, err)
	assert.Empty(t, block)
	assert.Empty(t, rest)

	_, _, err = SplitBlock([]byte{10, 'a'})
	require.ErrorIs(t, err, ErrTruncated)
	_, _, err = SplitBlock(nil)
	require.ErrorIs(t, err, ErrEmpty)
}
