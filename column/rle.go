package column

import (
	"fmt"

	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/schema"
	"github.com/SylphxAI/flux/value"
	"github.com/SylphxAI/flux/varint"
)

// encodeRLE writes repeated (run_len:varint>=1, value) pairs (spec §4.B,
// RLE). Each value is serialized with the Raw single-element encoding;
// RLE is only chosen by the selector when runs are long enough to pay for
// the per-run overhead.
func encodeRLE(tag schema.Tag, values []value.Value) ([]byte, error) {
	var out []byte

	i := 0
	for i < len(values) {
		j := i + 1
		for j < len(values) && value.Equal(values[i], values[j]) {
			j++
		}

		runLen := uint64(j - i)
		elem, err := encodeRaw(tag, values[i:i+1])
		if err != nil {
			return nil, err
		}

		out = varint.AppendUvarint(out, runLen)
		out = append(out, elem...)

		i = j
	}

	return out, nil
}

func decodeRLE(tag schema.Tag, data []byte, count int) ([]value.Value, error) {
	out := make([]value.Value, 0, count)
	rest := data

	for len(out) < count {
		runLen, n, err := varint.Uvarint(rest, false)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
		}
		if runLen == 0 {
			return nil, fmt.Errorf("%w: RLE run length must be >= 1", errs.ErrDecodeError)
		}
		rest = rest[n:]

		elemConsumed, err := rawElementLen(tag, rest)
		if err != nil {
			return nil, err
		}

		elems, err := decodeRaw(tag, rest[:elemConsumed], 1)
		if err != nil {
			return nil, err
		}

		for k := uint64(0); k < runLen; k++ {
			out = append(out, elems[0])
		}

		rest = rest[elemConsumed:]
	}

	if len(out) != count {
		return nil, fmt.Errorf("%w: RLE total run length mismatch", errs.ErrDecodeError)
	}

	return out, nil
}

// rawElementLen reports how many bytes a single Raw-encoded element of
// type tag occupies at the front of data.
func rawElementLen(tag schema.Tag, data []byte) (int, error) {
	switch tag {
	case schema.TagInt, schema.TagFloat:
		if len(data) < 8 {
			return 0, fmt.Errorf("%w: RLE element truncated", errs.ErrDecodeError)
		}

		return 8, nil
	case schema.TagBool:
		if len(data) < 1 {
			return 0, fmt.Errorf("%w: RLE element truncated", errs.ErrDecodeError)
		}

		return 1, nil
	default:
		l, n, err := varint.Uvarint(data, false)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
		}
		if n+int(l) > len(data) {
			return 0, fmt.Errorf("%w: RLE string element truncated", errs.ErrDecodeError)
		}

		return n + int(l), nil
	}
}
