package entropy

import (
	"fmt"

	"github.com/SylphxAI/flux/errs"
)

// bitGroup is one (value, width) pair written during a single tANS step.
type bitGroup struct {
	value uint32
	width int
}

// encodeSymbols walks data in reverse (standard tANS encoding order),
// computing for each symbol the bits that must be emitted to transition
// the running state, then writes those groups to the output stream in the
// opposite (original) order so a forward bit reader can decode them
// starting from InitialState.
func encodeSymbols(data []byte, tbl *table, freqs [256]int, L int) ([]byte, int, error) {
	groups := make([]bitGroup, 0, len(data))

	state := 0 // arbitrary seed state; becomes meaningless once the first (reverse) step runs

	for i := len(data) - 1; i >= 0; i-- {
		sym := data[i]
		f := freqs[sym]
		if f == 0 {
			return nil, 0, fmt.Errorf("%w: symbol %d missing from frequency table", errs.ErrDecodeError, sym)
		}

		total := state + L

		nbBitsOut := 0
		for (total >> uint(nbBitsOut)) >= 2*f {
			nbBitsOut++
		}

		nextStateVal := total >> uint(nbBitsOut)
		extraBits := uint32(total & ((1 << uint(nbBitsOut)) - 1))

		k := nextStateVal - f
		occ := tbl.occurrences[sym]
		if k < 0 || k >= len(occ) {
			return nil, 0, fmt.Errorf("%w: tANS encode state out of range", errs.ErrDecodeError)
		}

		groups = append(groups, bitGroup{value: extraBits, width: nbBitsOut})
		state = occ[k]
	}

	initialState := state

	w := &bitWriter{}
	for i := len(groups) - 1; i >= 0; i-- {
		w.writeBits(groups[i].value, groups[i].width)
	}

	return w.bytes(), initialState, nil
}

// decodeSymbols reverses encodeSymbols: starting from initialState, repeatedly
// emit the current state's symbol and advance the state by consuming
// nbBits from the stream.
func decodeSymbols(bitstream []byte, tbl *table, initialState, length int) ([]byte, error) {
	out := make([]byte, length)
	r := &bitReader2{data: bitstream}

	state := initialState
	for i := 0; i < length; i++ {
		if state < 0 || state >= tbl.size {
			return nil, fmt.Errorf("%w: tANS decode state out of range", errs.ErrDecodeError)
		}

		entry := tbl.decode[state]
		out[i] = entry.symbol

		bitsVal, err := r.readBits(entry.nbBits)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
		}

		state = entry.newState + int(bitsVal)
	}

	return out, nil
}

// bitWriter is a simple MSB-first bit accumulator used only by the
// entropy coder; it is distinct from column's bitWriter to keep the two
// packages independent.
type bitWriter struct {
	buf []byte
	bit uint
}

func (w *bitWriter) writeBits(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		bit := (v>>uint(i))&1 != 0
		if w.bit == 0 {
			w.buf = append(w.buf, 0)
		}
		if bit {
			w.buf[len(w.buf)-1] |= 1 << (7 - w.bit)
		}
		w.bit = (w.bit + 1) % 8
	}
}

func (w *bitWriter) bytes() []byte {
	return w.buf
}

type bitReader2 struct {
	data []byte
	pos  uint
}

func (r *bitReader2) readBits(n int) (uint32, error) {
	var v uint32
	for i := 0; i < n; i++ {
		byteIdx := r.pos / 8
		if int(byteIdx) >= len(r.data) {
			return 0, errs.ErrDecodeError
		}
		bit := r.data[byteIdx]&(1<<(7-r.pos%8)) != 0
		v <<= 1
		if bit {
			v |= 1
		}
		r.pos++
	}

	return v, nil
}
