package column

import (
	"fmt"

	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/value"
	"github.com/SylphxAI/flux/varint"
)

// encodeVarintColumn writes each value as a zigzag-folded varint (spec
// §4.B, Varint). Folding keeps the encoding usable for columns that
// happen to carry negative values even though the common case is
// non-negative counters/ids.
func encodeVarintColumn(values []value.Value) ([]byte, error) {
	out := make([]byte, 0, len(values)*2)
	for _, v := range values {
		out = varint.AppendUvarint(out, varint.ZigZagEncode(v.Int))
	}

	return out, nil
}

func decodeVarintColumn(data []byte, count int) ([]value.Value, error) {
	out := make([]value.Value, count)
	rest := data
	for i := 0; i < count; i++ {
		u, n, err := varint.Uvarint(rest, false)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
		}
		out[i] = value.NewInt(varint.ZigZagDecode(u))
		rest = rest[n:]
	}

	return out, nil
}
