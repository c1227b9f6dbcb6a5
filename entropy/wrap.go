package entropy

import (
	"fmt"

	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/varint"
)

// WrapBytes entropy-codes an already-serialized byte stream (e.g. a
// column's selected-encoding output) for the post-selection entropy pass
// of spec §4.G ("After selection, try applying the entropy coder to the
// encoded bytes"), distinct from column encoding 0x07 (which entropy-codes
// a column's Raw serialization directly as its own encoding choice).
// The wire form is varint(len(data)) followed by AppendHeader's output
// and the bitstream, mirroring column/entropy_codec.go's layout.
func WrapBytes(data []byte) ([]byte, error) {
	enc, err := Encode(data)
	if err != nil {
		return nil, err
	}

	out := varint.AppendUvarint(nil, uint64(len(data)))
	out = AppendHeader(out, enc.Header)

	return append(out, enc.Bitstream...), nil
}

// UnwrapBytes reverses WrapBytes.
func UnwrapBytes(data []byte) ([]byte, error) {
	length, n, err := varint.Uvarint(data, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
	}

	h, consumed, err := ParseHeader(data[n:])
	if err != nil {
		return nil, err
	}

	return Decode(h, data[n+consumed:], int(length))
}
