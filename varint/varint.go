// Package varint implements the little-endian base-128 variable-length
// integer encoding used throughout flux's wire format (spec §4.A), plus
// zigzag folding for signed values and LSB-first bit-packing for
// fixed-width unsigned integers.
//
// All three primitives are pure functions over byte slices: they hold no
// state and allocate only when appending to a nil/undersized destination,
// matching the style of the teacher's inline varint helpers in
// internal/encoding/ts_delta.go and encoding/tag.go.
package varint

import "github.com/SylphxAI/flux/errs"

// MaxLen64 is the maximum number of bytes a uvarint-encoded uint64 can occupy.
const MaxLen64 = 10

// AppendUvarint appends the base-128 varint encoding of v to dst and returns
// the extended slice.
func AppendUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}

	return append(dst, byte(v))
}

// Len returns the number of bytes AppendUvarint(nil, v) would produce.
func Len(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}

	return n
}

// Uvarint decodes a uvarint from the front of data.
//
// strict, when true, rejects non-minimal encodings (a final byte of 0x00
// that only exists as padding) per spec §4.A; strict mode is the default
// for the delta protocol, and disabled for frame headers for resilience.
//
// Returns the decoded value, the number of bytes consumed, and an error
// (errs.ErrDecodeError) if data is truncated, non-minimal under strict
// mode, or the value overflows 10 bytes.
func Uvarint(data []byte, strict bool) (uint64, int, error) {
	var v uint64
	var shift uint

	for i := 0; i < len(data); i++ {
		if i == MaxLen64 {
			return 0, 0, errs.ErrDecodeError
		}

		b := data[i]
		if b < 0x80 {
			if strict && i > 0 && b == 0 {
				return 0, 0, errs.ErrDecodeError
			}

			v |= uint64(b) << shift

			return v, i + 1, nil
		}

		v |= uint64(b&0x7f) << shift
		shift += 7
	}

	return 0, 0, errs.ErrDecodeError
}

// ZigZagEncode folds a signed 64-bit integer into an unsigned one, keeping
// small magnitudes (positive or negative) small: 0→0, -1→1, 1→2, -2→3, …
func ZigZagEncode(n int64) uint64 {
	return uint64((n << 1) ^ (n >> 63))
}

// ZigZagDecode reverses ZigZagEncode.
func ZigZagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// BitPack writes n unsigned integers, each holding values in [0, 2^w), into
// a newly allocated packed byte stream. Bits fill from the LSB of the
// current byte upward; a value that crosses a byte boundary contributes its
// low bits to the current byte and its high bits to the next. w must be in
// [0, 64]; w=0 means "all zeros" and returns an empty slice.
func BitPack(values []uint64, w int) []byte {
	if w == 0 || len(values) == 0 {
		return nil
	}

	totalBits := len(values) * w
	out := make([]byte, (totalBits+7)/8)

	var bitPos int
	for _, v := range values {
		v &= (uint64(1) << uint(w)) - 1
		remaining := w
		for remaining > 0 {
			byteIdx := bitPos / 8
			bitOff := uint(bitPos % 8)
			free := 8 - int(bitOff)

			n := remaining
			if n > free {
				n = free
			}

			mask := byte((uint64(1)<<uint(n))-1) << bitOff
			out[byteIdx] |= (byte(v) << bitOff) & mask

			v >>= uint(n)
			remaining -= n
			bitPos += n
		}
	}

	return out
}

// BitUnpack reads count values of width w bits from a packed byte stream
// produced by BitPack. w=0 yields count zeros without reading data.
func BitUnpack(data []byte, w int, count int) ([]uint64, error) {
	values := make([]uint64, count)
	if w == 0 || count == 0 {
		return values, nil
	}

	totalBits := count * w
	if (totalBits+7)/8 > len(data) {
		return nil, errs.ErrDecodeError
	}

	var bitPos int
	for i := 0; i < count; i++ {
		var v uint64
		var shift uint
		remaining := w
		for remaining > 0 {
			byteIdx := bitPos / 8
			bitOff := uint(bitPos % 8)
			free := 8 - int(bitOff)

			n := remaining
			if n > free {
				n = free
			}

			mask := byte((uint64(1) << uint(n)) - 1)
			bits := (data[byteIdx] >> bitOff) & mask
			v |= uint64(bits) << shift

			shift += uint(n)
			remaining -= n
			bitPos += n
		}
		values[i] = v
	}

	return values, nil
}

// BitWidth returns the minimum number of bits needed to represent v (0 for v==0).
func BitWidth(v uint64) int {
	w := 0
	for v > 0 {
		w++
		v >>= 1
	}

	return w
}
