package column

import (
	"fmt"

	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/value"
	"github.com/SylphxAI/flux/varint"
)

// WriteNullBitmap appends the null bitmap for present (present[i] == true
// means row i is non-null) in the "encoding 0x06 semantics, without the
// 0x06 tag" form described by spec §4.B: ceil(len/8) bytes, LSB-first
// within each byte, no length prefix (the row count is already known from
// context).
func WriteNullBitmap(dst []byte, present []bool) []byte {
	nbytes := (len(present) + 7) / 8
	start := len(dst)
	dst = append(dst, make([]byte, nbytes)...)

	for i, ok := range present {
		if ok {
			dst[start+i/8] |= 1 << uint(i%8)
		}
	}

	return dst
}

// ReadNullBitmap reads count presence bits from the front of data, LSB
// first within each byte, returning the bits and the number of bytes
// consumed.
func ReadNullBitmap(data []byte, count int) ([]bool, int, error) {
	nbytes := (count + 7) / 8
	if len(data) < nbytes {
		return nil, 0, fmt.Errorf("%w: null bitmap truncated", errs.ErrDecodeError)
	}

	out := make([]bool, count)
	for i := 0; i < count; i++ {
		out[i] = data[i/8]&(1<<uint(i%8)) != 0
	}

	return out, nbytes, nil
}

// encodeBitmapColumn implements the standalone Bitmap column codec (spec
// §4.B, 0x06): count:varint followed by the packed bits. Unlike
// WriteNullBitmap, this form is self-describing (it carries its own count)
// since it is used as a value column in its own right, not as a
// null-presence prefix.
func encodeBitmapColumn(values []value.Value) ([]byte, error) {
	out := varint.AppendUvarint(nil, uint64(len(values)))

	present := make([]bool, len(values))
	for i, v := range values {
		present[i] = v.Bool
	}

	return WriteNullBitmap(out, present), nil
}

func decodeBitmapColumn(data []byte, count int) ([]value.Value, error) {
	n, consumed, err := varint.Uvarint(data, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
	}
	if int(n) != count {
		return nil, fmt.Errorf("%w: bitmap column count mismatch", errs.ErrDecodeError)
	}

	bits, _, err := ReadNullBitmap(data[consumed:], count)
	if err != nil {
		return nil, err
	}

	out := make([]value.Value, count)
	for i, b := range bits {
		out[i] = value.NewBool(b)
	}

	return out, nil
}
