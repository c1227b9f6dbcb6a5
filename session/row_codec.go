package session

import (
	"fmt"

	"github.com/SylphxAI/flux/column"
	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/schema"
	"github.com/SylphxAI/flux/value"
	"github.com/SylphxAI/flux/varint"
)

// encodeRowBody serializes rows under schema sch one at a time: a presence
// bitmap over sch.Fields, then for each present field a
// varint(len)+payload block (spec §4.F's row-wise fallback for arrays
// below COLUMNAR_MIN_ROWS and for single top-level objects). String fields
// additionally route through the session dictionary (spec §3, §9); it
// reports whether any new dictionary entry was written, for the caller to
// set FlagDictionaryUpd.
func (s *Session) encodeRowBody(sch *schema.Schema, rows []value.Value) ([]byte, bool, error) {
	var out []byte
	dictUpdated := false

	for _, row := range rows {
		present := make([]bool, len(sch.Fields))
		for i, fd := range sch.Fields {
			v, ok := row.Get(fd.Name)
			present[i] = ok && v.Kind != value.KindNull
		}

		out = column.WriteNullBitmap(out, present)

		for i, fd := range sch.Fields {
			if !present[i] {
				continue
			}

			v, _ := row.Get(fd.Name)

			fieldBytes, isNew, err := s.encodeRowField(fd, v)
			if err != nil {
				return nil, false, fmt.Errorf("field %q: %w", fd.Name, err)
			}

			if isNew {
				dictUpdated = true
			}

			out = varint.AppendUvarint(out, uint64(len(fieldBytes)))
			out = append(out, fieldBytes...)
		}
	}

	return out, dictUpdated, nil
}

// encodeRowField serializes a single field value. String-tagged fields are
// tagged with a stringLiteral/stringDictRef/stringDictNew marker; every
// other type reuses the column package's single-value Raw encoding rather
// than duplicating per-type serialization here.
func (s *Session) encodeRowField(fd schema.FieldDef, v value.Value) ([]byte, bool, error) {
	if fd.Type.Tag != schema.TagString {
		encoded, err := column.Encode(column.Raw, fd.Type.Tag, []value.Value{v})

		return encoded, false, err
	}

	if id, ok := s.dict.lookup(v.Str); ok {
		return append([]byte{stringDictRef}, varint.AppendUvarint(nil, uint64(id))...), false, nil
	}

	if id, ok := s.dict.insert(v.Str); ok {
		dst := []byte{stringDictNew}
		dst = varint.AppendUvarint(dst, uint64(id))
		dst = appendLPString(dst, v.Str)

		return dst, true, nil
	}

	return appendLPString([]byte{stringLiteral}, v.Str), false, nil
}

// decodeRowBody reverses encodeRowBody, returning rowCount reconstructed
// rows and the number of bytes consumed from data.
func (s *Session) decodeRowBody(sch *schema.Schema, data []byte, rowCount int) ([]value.Value, int, error) {
	pos := 0
	rows := make([]value.Value, rowCount)

	for r := 0; r < rowCount; r++ {
		present, n, err := column.ReadNullBitmap(data[pos:], len(sch.Fields))
		if err != nil {
			return nil, 0, err
		}
		pos += n

		members := make([]value.Member, 0, len(sch.Fields))

		for i, fd := range sch.Fields {
			if !present[i] {
				members = append(members, value.Member{Name: fd.Name, Value: value.Null})

				continue
			}

			length, ln, err := varint.Uvarint(data[pos:], false)
			if err != nil {
				return nil, 0, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
			}
			pos += ln

			if uint64(len(data)-pos) < length {
				return nil, 0, fmt.Errorf("%w: truncated row field", errs.ErrDecodeError)
			}

			fieldBytes := data[pos : pos+int(length)]
			pos += int(length)

			v, err := s.decodeRowField(fd, fieldBytes)
			if err != nil {
				return nil, 0, fmt.Errorf("field %q: %w", fd.Name, err)
			}

			members = append(members, value.Member{Name: fd.Name, Value: v})
		}

		rows[r] = value.NewObject(members)
	}

	return rows, pos, nil
}

func (s *Session) decodeRowField(fd schema.FieldDef, data []byte) (value.Value, error) {
	if fd.Type.Tag != schema.TagString {
		vals, err := column.Decode(column.Raw, fd.Type.Tag, data, 1)
		if err != nil {
			return value.Value{}, err
		}

		return vals[0], nil
	}

	if len(data) < 1 {
		return value.Value{}, fmt.Errorf("%w: empty string field", errs.ErrDecodeError)
	}

	marker, rest := data[0], data[1:]

	switch marker {
	case stringLiteral:
		str, _, err := readLPString(rest)
		if err != nil {
			return value.Value{}, err
		}

		return value.NewString(str), nil
	case stringDictRef:
		id, _, err := varint.Uvarint(rest, false)
		if err != nil {
			return value.Value{}, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
		}

		str, ok := s.dict.resolve(uint32(id))
		if !ok {
			return value.Value{}, errs.ErrStateDesync
		}

		return value.NewString(str), nil
	case stringDictNew:
		id, n, err := varint.Uvarint(rest, false)
		if err != nil {
			return value.Value{}, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
		}

		str, _, err := readLPString(rest[n:])
		if err != nil {
			return value.Value{}, err
		}

		s.dict.register(uint32(id), str)

		return value.NewString(str), nil
	default:
		return value.Value{}, fmt.Errorf("%w: unknown string field marker %d", errs.ErrDecodeError, marker)
	}
}
