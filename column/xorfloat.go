package column

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/value"
)

// xorfloat implements the Gorilla-style XOR-delta float encoding (spec
// §4.B, 0x08), grounded on the teacher's internal/encoding numeric_gorilla
// implementation: the first value is stored raw, and each subsequent value
// stores the XOR against its predecessor as (leading_zeros, bit_width,
// meaningful_bits), with a single 0-bit marker when the XOR is zero.
//
// This file implements its own bit writer/reader rather than reusing
// varint.BitPack, since Gorilla's per-value field widths are not known
// until each value is seen (unlike the fixed width of Frame-of-Reference).

type bitWriter struct {
	buf  []byte
	bit  uint // next free bit position within buf, 0 = MSB of a new byte
}

func (w *bitWriter) writeBit(b bool) {
	if w.bit == 0 {
		w.buf = append(w.buf, 0)
	}
	if b {
		w.buf[len(w.buf)-1] |= 1 << (7 - w.bit)
	}
	w.bit = (w.bit + 1) % 8
}

func (w *bitWriter) writeBits(v uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		w.writeBit(v&(1<<uint(i)) != 0)
	}
}

type bitReader struct {
	data []byte
	pos  uint // absolute bit position
}

func (r *bitReader) readBit() (bool, error) {
	byteIdx := r.pos / 8
	if int(byteIdx) >= len(r.data) {
		return false, errs.ErrDecodeError
	}
	b := r.data[byteIdx]&(1<<(7-r.pos%8)) != 0
	r.pos++

	return b, nil
}

func (r *bitReader) readBits(n int) (uint64, error) {
	var v uint64
	for i := 0; i < n; i++ {
		b, err := r.readBit()
		if err != nil {
			return 0, err
		}
		v <<= 1
		if b {
			v |= 1
		}
	}

	return v, nil
}

func encodeXORFloat(values []value.Value) ([]byte, error) {
	if len(values) == 0 {
		return nil, nil
	}

	w := &bitWriter{}
	prev := math.Float64bits(values[0].Float)

	var header [8]byte
	for i := 0; i < 8; i++ {
		header[i] = byte(prev >> (8 * uint(i)))
	}

	prevLeading, prevTrailing := -1, -1

	for _, v := range values[1:] {
		cur := math.Float64bits(v.Float)
		xor := cur ^ prev

		if xor == 0 {
			w.writeBit(false)
			prev = cur

			continue
		}

		w.writeBit(true)

		leading := bits.LeadingZeros64(xor)
		trailing := bits.TrailingZeros64(xor)

		if prevLeading >= 0 && leading >= prevLeading && trailing >= prevTrailing {
			w.writeBit(false)
			meaningful := 64 - prevLeading - prevTrailing
			w.writeBits(xor>>uint(prevTrailing), meaningful)
		} else {
			w.writeBit(true)
			meaningful := 64 - leading - trailing
			w.writeBits(uint64(leading), 6)
			w.writeBits(uint64(meaningful), 6)
			w.writeBits(xor>>uint(trailing), meaningful)
			prevLeading, prevTrailing = leading, trailing
		}

		prev = cur
	}

	return append(header[:], w.buf...), nil
}

func decodeXORFloat(data []byte, count int) ([]value.Value, error) {
	out := make([]value.Value, count)
	if count == 0 {
		return out, nil
	}
	if len(data) < 8 {
		return nil, fmt.Errorf("%w: xor-float column truncated", errs.ErrDecodeError)
	}

	var prev uint64
	for i := 0; i < 8; i++ {
		prev |= uint64(data[i]) << (8 * uint(i))
	}
	out[0] = value.NewFloat(math.Float64frombits(prev))

	r := &bitReader{data: data[8:]}
	prevLeading, prevTrailing := 0, 0

	for i := 1; i < count; i++ {
		changed, err := r.readBit()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
		}
		if !changed {
			out[i] = value.NewFloat(math.Float64frombits(prev))

			continue
		}

		newWindow, err := r.readBit()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
		}

		var leading, trailing int
		if !newWindow {
			leading, trailing = prevLeading, prevTrailing
		} else {
			lz, err := r.readBits(6)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
			}
			mb, err := r.readBits(6)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
			}
			meaningfulBits := int(mb)
			if meaningfulBits == 0 {
				// 64 meaningful bits does not fit in the 6-bit width
				// field; the encoder stores it as 0.
				meaningfulBits = 64
			}
			leading = int(lz)
			trailing = 64 - leading - meaningfulBits
			prevLeading, prevTrailing = leading, trailing
		}

		meaningful := 64 - leading - trailing
		bitsVal, err := r.readBits(meaningful)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
		}

		xor := bitsVal << uint(trailing)
		cur := prev ^ xor
		out[i] = value.NewFloat(math.Float64frombits(cur))
		prev = cur
	}

	return out, nil
}
