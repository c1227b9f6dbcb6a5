package column

import (
	"fmt"

	"github.com/SylphxAI/flux/entropy"
	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/schema"
	"github.com/SylphxAI/flux/value"
	"github.com/SylphxAI/flux/varint"
)

// encodeEntropy implements column encoding 0x07: Raw-serialize the values,
// then run the bytes through the tANS coder (package entropy), storing a
// varint-prefixed header followed by the bitstream (spec §4.B, 0x07).
func encodeEntropy(tag schema.Tag, values []value.Value) ([]byte, error) {
	raw, err := encodeRaw(tag, values)
	if err != nil {
		return nil, err
	}

	enc, err := entropy.Encode(raw)
	if err != nil {
		return nil, err
	}

	out := varint.AppendUvarint(nil, uint64(len(raw)))
	out = entropy.AppendHeader(out, enc.Header)

	return append(out, enc.Bitstream...), nil
}

func decodeEntropy(tag schema.Tag, data []byte, count int) ([]value.Value, error) {
	rawLen, n, err := varint.Uvarint(data, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
	}

	h, consumed, err := entropy.ParseHeader(data[n:])
	if err != nil {
		return nil, err
	}

	raw, err := entropy.Decode(h, data[n+consumed:], int(rawLen))
	if err != nil {
		return nil, err
	}

	return decodeRaw(tag, raw, count)
}
