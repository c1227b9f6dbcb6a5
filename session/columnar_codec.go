package session

import (
	"fmt"

	"github.com/SylphxAI/flux/column"
	"github.com/SylphxAI/flux/columnar"
	"github.com/SylphxAI/flux/entropy"
	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/schema"
	"github.com/SylphxAI/flux/selector"
	"github.com/SylphxAI/flux/value"
	"github.com/SylphxAI/flux/varint"
)

// encodeColumnarBody serializes rows under schema s as one column section
// per field, in field order: base_encoding:u8, entropy_used:u8, an optional
// null bitmap (when the field is nullable), then varint(len)+payload (spec
// §4.F/§4.G). It reports whether any column used the entropy coder, for the
// caller to set FlagEntropyCoded.
func (s *Session) encodeColumnarBody(sch *schema.Schema, rows []value.Value) ([]byte, bool, error) {
	cols, err := columnar.Split(sch, rows)
	if err != nil {
		return nil, false, err
	}

	var out []byte
	anyEntropy := false

	for i, fd := range sch.Fields {
		col := cols[i]

		dec, err := selector.Select(fd.Type.Tag, col.Values, s.cfg.Entropy)
		if err != nil {
			return nil, false, fmt.Errorf("field %q: %w", fd.Name, err)
		}

		entropyByte := byte(0)
		if dec.UseEntropy {
			entropyByte = 1
			anyEntropy = true
		}

		out = append(out, byte(dec.Encoding), entropyByte)

		if fd.Nullable {
			out = column.WriteNullBitmap(out, col.Present)
		}

		out = varint.AppendUvarint(out, uint64(len(dec.FinalBytes)))
		out = append(out, dec.FinalBytes...)
	}

	return out, anyEntropy, nil
}

// decodeColumnarBody reverses encodeColumnarBody, reconstructing rowCount
// object rows and reporting the number of bytes consumed from data.
func (s *Session) decodeColumnarBody(sch *schema.Schema, data []byte, rowCount int) ([]value.Value, int, error) {
	cols := make([]columnar.FieldColumn, len(sch.Fields))
	pos := 0

	for i, fd := range sch.Fields {
		if len(data)-pos < 2 {
			return nil, 0, fmt.Errorf("%w: truncated column header", errs.ErrDecodeError)
		}

		enc := column.Encoding(data[pos])
		entropyUsed := data[pos+1] != 0
		pos += 2

		present := make([]bool, rowCount)
		nonNull := rowCount

		if fd.Nullable {
			bits, n, err := column.ReadNullBitmap(data[pos:], rowCount)
			if err != nil {
				return nil, 0, err
			}

			present = bits
			pos += n

			nonNull = 0
			for _, b := range bits {
				if b {
					nonNull++
				}
			}
		} else {
			for i := range present {
				present[i] = true
			}
		}

		length, n, err := varint.Uvarint(data[pos:], false)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
		}
		pos += n

		if uint64(len(data)-pos) < length {
			return nil, 0, fmt.Errorf("%w: truncated column payload", errs.ErrDecodeError)
		}

		payload := data[pos : pos+int(length)]
		pos += int(length)

		if entropyUsed {
			payload, err = entropy.UnwrapBytes(payload)
			if err != nil {
				return nil, 0, err
			}
		}

		values, err := column.Decode(enc, fd.Type.Tag, payload, nonNull)
		if err != nil {
			return nil, 0, fmt.Errorf("field %q: %w", fd.Name, err)
		}

		cols[i] = columnar.FieldColumn{Field: fd, Present: present, Values: values}
	}

	rows, err := columnar.Join(sch, cols, rowCount)
	if err != nil {
		return nil, 0, err
	}

	return rows, pos, nil
}
