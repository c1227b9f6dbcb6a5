package column

import (
	"fmt"

	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/value"
	"github.com/SylphxAI/flux/varint"
)

// encodeFOR writes min (zigzag-varint), bit_width (1 byte), then the
// bit-packed (v[i]-min) unsigned offsets (spec §4.B, Frame-of-Reference).
func encodeFOR(values []value.Value) ([]byte, error) {
	if len(values) == 0 {
		out := varint.AppendUvarint(nil, varint.ZigZagEncode(0))

		return append(out, 0), nil
	}

	min := values[0].Int
	for _, v := range values[1:] {
		if v.Int < min {
			min = v.Int
		}
	}

	offsets := make([]uint64, len(values))
	var maxOffset uint64
	for i, v := range values {
		off := uint64(v.Int - min)
		offsets[i] = off
		if off > maxOffset {
			maxOffset = off
		}
	}

	width := varint.BitWidth(maxOffset)

	out := varint.AppendUvarint(nil, varint.ZigZagEncode(min))
	out = append(out, byte(width))
	out = append(out, varint.BitPack(offsets, width)...)

	return out, nil
}

func decodeFOR(data []byte, count int) ([]value.Value, error) {
	minU, n, err := varint.Uvarint(data, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
	}
	min := varint.ZigZagDecode(minU)
	rest := data[n:]

	if len(rest) < 1 {
		return nil, fmt.Errorf("%w: frame-of-reference column truncated", errs.ErrDecodeError)
	}
	width := int(rest[0])
	rest = rest[1:]

	if count == 0 {
		return []value.Value{}, nil
	}

	offsets, err := varint.BitUnpack(rest, width, count)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
	}

	out := make([]value.Value, count)
	for i, off := range offsets {
		out[i] = value.NewInt(min + int64(off))
	}

	return out, nil
}
