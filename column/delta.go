package column

import (
	"fmt"

	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/value"
	"github.com/SylphxAI/flux/varint"
)

// encodeDelta writes the first value as a zigzag-varint, then each
// subsequent value as the zigzag-varint of its difference from the
// previous value (spec §4.B, Delta+Varint). Grounded on the teacher's
// delta-of-delta timestamp encoder, narrowed to a single level of delta
// since schema fields here are not monotonic timestamps specifically.
func encodeDelta(values []value.Value) ([]byte, error) {
	out := make([]byte, 0, len(values)*2)
	if len(values) == 0 {
		return out, nil
	}

	prev := values[0].Int
	out = varint.AppendUvarint(out, varint.ZigZagEncode(prev))

	for _, v := range values[1:] {
		d := v.Int - prev
		out = varint.AppendUvarint(out, varint.ZigZagEncode(d))
		prev = v.Int
	}

	return out, nil
}

func decodeDelta(data []byte, count int) ([]value.Value, error) {
	out := make([]value.Value, count)
	if count == 0 {
		return out, nil
	}

	rest := data
	u, n, err := varint.Uvarint(rest, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
	}
	prev := varint.ZigZagDecode(u)
	out[0] = value.NewInt(prev)
	rest = rest[n:]

	for i := 1; i < count; i++ {
		u, n, err := varint.Uvarint(rest, false)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
		}
		prev += varint.ZigZagDecode(u)
		out[i] = value.NewInt(prev)
		rest = rest[n:]
	}

	return out, nil
}
