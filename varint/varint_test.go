package varint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SylphxAI/flux/varint"
)

func TestUvarintTable(t *testing.T) {
	cases := []struct {
		v    uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{16383, []byte{0xFF, 0x7F}},
		{16384, []byte{0x80, 0x80, 0x01}},
		{255, []byte{0xFF, 0x01}},
	}

	for _, c := range cases {
		got := varint.AppendUvarint(nil, c.v)
		assert.Equal(t, c.want, got, "encode(%d)", c.v)
		assert.Equal(t, len(c.want), varint.Len(c.v))

		decoded, n, err := varint.Uvarint(got, true)
		require.NoError(t, err)
		assert.Equal(t, len(got), n)
		assert.Equal(t, c.v, decoded)
	}
}

func TestUvarintRoundTripFullRange(t *testing.T) {
	vals := []uint64{0, 1, 2, 63, 64, 65, 127, 128, 129,
		1<<14 - 1, 1 << 14, 1<<21 - 1, 1 << 21,
		1<<35 - 1, 1 << 49, 1<<63 - 1, 1 << 63, ^uint64(0)}

	for _, v := range vals {
		enc := varint.AppendUvarint(nil, v)
		got, n, err := varint.Uvarint(enc, true)
		require.NoError(t, err)
		assert.Equal(t, len(enc), n)
		assert.Equal(t, v, got)
	}
}

func TestUvarintStrictRejectsNonMinimal(t *testing.T) {
	// 0x80 0x00 encodes zero non-minimally (should be just 0x00).
	_, _, err := varint.Uvarint([]byte{0x80, 0x00}, true)
	require.Error(t, err)

	// Non-strict mode accepts it.
	v, n, err := varint.Uvarint([]byte{0x80, 0x00}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, uint64(0), v)
}

func TestUvarintTruncated(t *testing.T) {
	_, _, err := varint.Uvarint([]byte{0x80}, true)
	require.Error(t, err)

	_, _, err = varint.Uvarint(nil, true)
	require.Error(t, err)
}

func TestZigZag(t *testing.T) {
	assert.Equal(t, uint64(0), varint.ZigZagEncode(0))
	assert.Equal(t, uint64(1), varint.ZigZagEncode(-1))
	assert.Equal(t, uint64(2), varint.ZigZagEncode(1))
	assert.Equal(t, uint64(3), varint.ZigZagEncode(-2))

	for _, n := range []int64{0, 1, -1, 2, -2, 1 << 40, -(1 << 40), 1<<62 - 1, -(1 << 62)} {
		assert.Equal(t, n, varint.ZigZagDecode(varint.ZigZagEncode(n)), "n=%d", n)
	}
}

func TestBitPackRoundTrip(t *testing.T) {
	for _, w := range []int{0, 1, 3, 5, 7, 8, 9, 13, 31, 64} {
		max := uint64(1)
		if w < 64 {
			max = (uint64(1) << uint(w)) - 1
		} else {
			max = ^uint64(0)
		}

		values := []uint64{0, max, max / 2, 1, max - 1}
		if w == 0 {
			values = []uint64{0, 0, 0}
		}

		packed := varint.BitPack(values, w)
		got, err := varint.BitUnpack(packed, w, len(values))
		require.NoError(t, err)

		for i, v := range values {
			want := v
			if w < 64 {
				want &= max
			}
			assert.Equal(t, want, got[i], "w=%d i=%d", w, i)
		}
	}
}

func TestBitWidth(t *testing.T) {
	assert.Equal(t, 0, varint.BitWidth(0))
	assert.Equal(t, 1, varint.BitWidth(1))
	assert.Equal(t, 7, varint.BitWidth(127))
	assert.Equal(t, 8, varint.BitWidth(128))
	assert.Equal(t, 64, varint.BitWidth(^uint64(0)))
}
