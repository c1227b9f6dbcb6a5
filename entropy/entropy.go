// Package entropy implements a table-based asymmetric numeral system (tANS)
// byte coder (spec §4.C), applied as an optional final pass over an
// already column-encoded byte stream (column.Entropy, 0x07) when it is
// estimated to shrink the payload.
//
// The construction follows the standard FSE/tANS table layout (spread
// table, per-state (symbol, nbBits, newState) decode table) but the
// encoder here builds its bitstream by walking symbols in reverse and then
// reversing the collected bit groups, rather than maintaining a
// backward-growing bit buffer; the two approaches produce different but
// equally valid bitstreams, and this one is simpler to reason about
// without a hardware bit-reversal trick.
package entropy

import (
	"fmt"

	"github.com/SylphxAI/flux/errs"
)

// DefaultTableSize is L in spec §4.C: the normalized frequency total, a
// power of two.
const DefaultTableSize = 4096

// MinBlock is the minimum input length entropy coding is considered for
// (spec §6, ENTROPY_MIN_BLOCK).
const MinBlock = 256

// Encoded is the result of Encode: a header describing the symbol table
// (or the single-symbol shortcut) plus the tANS bitstream.
type Encoded struct {
	Header    Header
	Bitstream []byte
	Length    int
}

// Header carries everything Decode needs besides the bitstream: whether
// this block used the single-symbol shortcut, the normalized frequency
// table otherwise, and the initial decode state.
type Header struct {
	SingleSymbol   bool
	Symbol         byte
	TableSize      int
	Freqs          [256]int
	InitialState   int
}

// Encode compresses data with a fresh frequency table built from data
// itself. Callers should gate calls with ShouldApply; Encode does not
// re-check the policy.
func Encode(data []byte) (Encoded, error) {
	if len(data) == 0 {
		return Encoded{Header: Header{SingleSymbol: true}, Length: 0}, nil
	}

	freqs := countFrequencies(data)

	if dom, ok := dominantSymbol(freqs, len(data)); ok {
		return Encoded{
			Header: Header{SingleSymbol: true, Symbol: dom},
			Length: len(data),
		}, nil
	}

	L := DefaultTableSize
	norm := normalize(freqs, len(data), L)

	tbl := buildTable(norm, L)

	bits, initialState, err := encodeSymbols(data, tbl, norm, L)
	if err != nil {
		return Encoded{}, err
	}

	return Encoded{
		Header: Header{
			TableSize:    L,
			Freqs:        norm,
			InitialState: initialState,
		},
		Bitstream: bits,
		Length:    len(data),
	}, nil
}

// Decode reverses Encode, reproducing exactly Length bytes.
func Decode(h Header, bitstream []byte, length int) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}

	if h.SingleSymbol {
		out := make([]byte, length)
		for i := range out {
			out[i] = h.Symbol
		}

		return out, nil
	}

	if h.TableSize == 0 {
		return nil, fmt.Errorf("%w: entropy header missing table size", errs.ErrDecodeError)
	}

	tbl := buildTable(h.Freqs, h.TableSize)

	return decodeSymbols(bitstream, tbl, h.InitialState, length)
}

func countFrequencies(data []byte) [256]int {
	var freqs [256]int
	for _, b := range data {
		freqs[b]++
	}

	return freqs
}

// dominantSymbol reports the single byte value covering >=90% of data, the
// single-symbol shortcut from spec §4.C policy.
func dominantSymbol(freqs [256]int, total int) (byte, bool) {
	for s, f := range freqs {
		if f > 0 && float64(f) >= 0.90*float64(total) {
			return byte(s), true
		}
	}

	return 0, false
}
