package column

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/internal/pool"
	"github.com/SylphxAI/flux/schema"
	"github.com/SylphxAI/flux/value"
	"github.com/SylphxAI/flux/varint"
)

// encodeRaw writes fixed-width little-endian for numerics/bool and
// varint-length-prefixed UTF-8 for string-like values (spec §4.B, Raw).
func encodeRaw(tag schema.Tag, values []value.Value) ([]byte, error) {
	switch tag {
	case schema.TagInt:
		buf := pool.GetColumnBuffer()
		defer pool.PutColumnBuffer(buf)

		buf.Reset()
		buf.Grow(len(values) * 8)
		for _, v := range values {
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], uint64(v.Int))
			buf.MustWrite(b[:])
		}

		return append([]byte(nil), buf.Bytes()...), nil
	case schema.TagFloat:
		buf := pool.GetColumnBuffer()
		defer pool.PutColumnBuffer(buf)

		buf.Reset()
		buf.Grow(len(values) * 8)
		for _, v := range values {
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], math.Float64bits(v.Float))
			buf.MustWrite(b[:])
		}

		return append([]byte(nil), buf.Bytes()...), nil
	case schema.TagBool:
		out := make([]byte, len(values))
		for i, v := range values {
			if v.Bool {
				out[i] = 1
			}
		}

		return out, nil
	case schema.TagString, schema.TagUUID, schema.TagDate, schema.TagTime,
		schema.TagDecimal, schema.TagTimestamp, schema.TagBinary:
		out := make([]byte, 0, len(values)*8)
		for _, v := range values {
			out = appendRawString(out, rawStringOf(v))
		}

		return out, nil
	default:
		// Containers, unions, and other mixed shapes carry no single
		// fixed-width or string representation; each element is stored
		// as length-prefixed canonical JSON text.
		out := make([]byte, 0, len(values)*16)
		for _, v := range values {
			canon := value.CanonicalJSON(v)
			var lenBuf [varint.MaxLen64]byte
			out = append(out, varint.AppendUvarint(lenBuf[:0], uint64(len(canon)))...)
			out = append(out, canon...)
		}

		return out, nil
	}
}

func decodeRaw(tag schema.Tag, data []byte, count int) ([]value.Value, error) {
	switch tag {
	case schema.TagInt:
		if len(data) < count*8 {
			return nil, fmt.Errorf("%w: raw int column truncated", errs.ErrDecodeError)
		}
		out := make([]value.Value, count)
		for i := 0; i < count; i++ {
			u := binary.LittleEndian.Uint64(data[i*8:])
			out[i] = value.NewInt(int64(u))
		}

		return out, nil
	case schema.TagFloat:
		if len(data) < count*8 {
			return nil, fmt.Errorf("%w: raw float column truncated", errs.ErrDecodeError)
		}
		out := make([]value.Value, count)
		for i := 0; i < count; i++ {
			u := binary.LittleEndian.Uint64(data[i*8:])
			out[i] = value.NewFloat(math.Float64frombits(u))
		}

		return out, nil
	case schema.TagBool:
		if len(data) < count {
			return nil, fmt.Errorf("%w: raw bool column truncated", errs.ErrDecodeError)
		}
		out := make([]value.Value, count)
		for i := 0; i < count; i++ {
			out[i] = value.NewBool(data[i] != 0)
		}

		return out, nil
	case schema.TagString, schema.TagUUID, schema.TagDate, schema.TagTime,
		schema.TagDecimal, schema.TagTimestamp, schema.TagBinary:
		out := make([]value.Value, count)
		rest := data
		for i := 0; i < count; i++ {
			s, n, err := readRawString(rest)
			if err != nil {
				return nil, err
			}
			out[i] = value.NewString(s)
			rest = rest[n:]
		}

		return out, nil
	default:
		out := make([]value.Value, count)
		rest := data
		for i := 0; i < count; i++ {
			s, n, err := readRawString(rest)
			if err != nil {
				return nil, err
			}
			v, err := value.Parse([]byte(s))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
			}
			out[i] = v
			rest = rest[n:]
		}

		return out, nil
	}
}

// rawStringOf extracts the string-like payload carried by v regardless of
// which extended tag it was inferred as; every string-like FieldType shares
// the same on-wire string representation (spec §3).
func rawStringOf(v value.Value) string {
	return v.Str
}

func appendRawString(dst []byte, s string) []byte {
	var lenBuf [varint.MaxLen64]byte
	dst = append(dst, varint.AppendUvarint(lenBuf[:0], uint64(len(s)))...)

	return append(dst, s...)
}

func readRawString(data []byte) (string, int, error) {
	l, n, err := varint.Uvarint(data, false)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
	}
	if l > value.MaxStringLength {
		return "", 0, fmt.Errorf("%w: declared string length %d exceeds cap", errs.ErrBufferOverflow, l)
	}
	if n+int(l) > len(data) {
		return "", 0, fmt.Errorf("%w: string column truncated", errs.ErrDecodeError)
	}

	return string(data[n : n+int(l)]), n + int(l), nil
}
