package entropy

import (
	"fmt"

	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/varint"
)

// AppendHeader serializes h for the wire: a flag byte, then either the
// single symbol value, or the table size and the normalized frequency
// vector run-length-encoded as a sparse list of (symbol, freq) pairs over
// the 256 possible byte values (spec §4.C: "header lists normalized
// frequencies as a run-length-encoded sparse vector").
func AppendHeader(dst []byte, h Header) []byte {
	if h.SingleSymbol {
		return append(dst, 1, h.Symbol)
	}

	dst = append(dst, 0)
	dst = varint.AppendUvarint(dst, uint64(h.TableSize))
	dst = varint.AppendUvarint(dst, uint64(h.InitialState))

	nonzero := 0
	for _, f := range h.Freqs {
		if f > 0 {
			nonzero++
		}
	}
	dst = varint.AppendUvarint(dst, uint64(nonzero))

	for s, f := range h.Freqs {
		if f == 0 {
			continue
		}
		dst = append(dst, byte(s))
		dst = varint.AppendUvarint(dst, uint64(f))
	}

	return dst
}

// ParseHeader reverses AppendHeader, returning the header and the number
// of bytes consumed.
func ParseHeader(data []byte) (Header, int, error) {
	if len(data) < 1 {
		return Header{}, 0, fmt.Errorf("%w: empty entropy header", errs.ErrDecodeError)
	}

	if data[0] == 1 {
		if len(data) < 2 {
			return Header{}, 0, fmt.Errorf("%w: truncated single-symbol entropy header", errs.ErrDecodeError)
		}

		return Header{SingleSymbol: true, Symbol: data[1]}, 2, nil
	}

	rest := data[1:]
	consumed := 1

	tableSize, n, err := varint.Uvarint(rest, false)
	if err != nil {
		return Header{}, 0, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
	}
	rest = rest[n:]
	consumed += n

	initialState, n, err := varint.Uvarint(rest, false)
	if err != nil {
		return Header{}, 0, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
	}
	rest = rest[n:]
	consumed += n

	count, n, err := varint.Uvarint(rest, false)
	if err != nil {
		return Header{}, 0, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
	}
	rest = rest[n:]
	consumed += n

	var h Header
	h.TableSize = int(tableSize)
	h.InitialState = int(initialState)

	for i := uint64(0); i < count; i++ {
		if len(rest) < 1 {
			return Header{}, 0, fmt.Errorf("%w: truncated entropy frequency table", errs.ErrDecodeError)
		}
		sym := rest[0]
		rest = rest[1:]
		consumed++

		f, n, err := varint.Uvarint(rest, false)
		if err != nil {
			return Header{}, 0, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
		}
		rest = rest[n:]
		consumed += n

		h.Freqs[sym] = int(f)
	}

	return h, consumed, nil
}
