package schema

import (
	"fmt"

	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/varint"
)

// Encode serializes a full schema definition for the wire (the
// SCHEMA_INCLUDED payload prefix, spec §4.I step 5): field_count:varint,
// then per field len(name):varint|name|type_tag:u8|nullable:u8|type-params.
// Unlike Hash's canonical bytes (a one-way digest input), this format
// carries explicit counts so Decode can reconstruct the schema exactly.
func Encode(s Schema) []byte {
	dst := varint.AppendUvarint(nil, uint64(len(s.Fields)))
	for _, f := range s.Fields {
		dst = appendField(dst, f)
	}

	return dst
}

func appendField(dst []byte, f FieldDef) []byte {
	dst = varint.AppendUvarint(dst, uint64(len(f.Name)))
	dst = append(dst, f.Name...)
	dst = append(dst, byte(f.Type.Tag), boolByte(f.Nullable))

	return appendType(dst, f.Type)
}

func appendType(dst []byte, ft FieldType) []byte {
	switch ft.Tag {
	case TagArray:
		if ft.Elem == nil {
			return append(dst, byte(TagUnknown))
		}
		dst = append(dst, byte(ft.Elem.Tag))

		return appendType(dst, *ft.Elem)
	case TagObject:
		if ft.Nested == nil {
			return varint.AppendUvarint(dst, 0)
		}

		return append(dst, Encode(*ft.Nested)...)
	case TagUnion:
		dst = varint.AppendUvarint(dst, uint64(len(ft.Members)))
		for _, m := range ft.Members {
			dst = append(dst, byte(m.Tag))
			dst = appendType(dst, m)
		}

		return dst
	default:
		return dst
	}
}

// maxFieldCount and maxTypeDepth bound hostile schema definitions before
// any allocation happens (spec §5 resource model, §6 MAX_SCHEMA_FIELDS /
// MAX_NESTING_DEPTH).
const (
	maxFieldCount = 1024
	maxTypeDepth  = 64
)

// Decode reverses Encode, returning the schema, the number of bytes
// consumed, and an error if data is malformed or truncated.
func Decode(data []byte) (Schema, int, error) {
	return decodeSchema(data, 0)
}

func decodeSchema(data []byte, depth int) (Schema, int, error) {
	if depth > maxTypeDepth {
		return Schema{}, 0, fmt.Errorf("%w: schema nesting exceeds depth %d", errs.ErrDecodeError, maxTypeDepth)
	}

	count, n, err := varint.Uvarint(data, false)
	if err != nil {
		return Schema{}, 0, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
	}
	if count > maxFieldCount {
		return Schema{}, 0, fmt.Errorf("%w: %d fields exceeds max %d", errs.ErrBufferOverflow, count, maxFieldCount)
	}

	rest := data[n:]
	consumed := n

	fields := make([]FieldDef, 0, count)
	for i := uint64(0); i < count; i++ {
		f, used, err := decodeField(rest, depth)
		if err != nil {
			return Schema{}, 0, err
		}
		fields = append(fields, f)
		rest = rest[used:]
		consumed += used
	}

	s := Schema{Version: 1, Fields: fields}
	s.Finalize()

	return s, consumed, nil
}

func decodeField(data []byte, depth int) (FieldDef, int, error) {
	nameLen, n, err := varint.Uvarint(data, false)
	if err != nil {
		return FieldDef{}, 0, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
	}
	rest := data[n:]
	consumed := n

	if uint64(len(rest)) < nameLen+2 {
		return FieldDef{}, 0, fmt.Errorf("%w: truncated field definition", errs.ErrDecodeError)
	}

	name := string(rest[:nameLen])
	rest = rest[nameLen:]
	consumed += int(nameLen)

	tag := Tag(rest[0])
	nullable := rest[1] != 0
	rest = rest[2:]
	consumed += 2

	ft, used, err := decodeType(tag, rest, depth+1)
	if err != nil {
		return FieldDef{}, 0, err
	}
	consumed += used

	return FieldDef{Name: name, Type: ft, Nullable: nullable}, consumed, nil
}

func decodeType(tag Tag, data []byte, depth int) (FieldType, int, error) {
	if depth > maxTypeDepth {
		return FieldType{}, 0, fmt.Errorf("%w: type nesting exceeds depth %d", errs.ErrDecodeError, maxTypeDepth)
	}

	switch tag {
	case TagArray:
		if len(data) < 1 {
			return FieldType{}, 0, fmt.Errorf("%w: truncated array type", errs.ErrDecodeError)
		}

		elemTag := Tag(data[0])
		elem, used, err := decodeType(elemTag, data[1:], depth+1)
		if err != nil {
			return FieldType{}, 0, err
		}

		return FieldType{Tag: TagArray, Elem: &elem}, 1 + used, nil
	case TagObject:
		nested, used, err := decodeSchema(data, depth+1)
		if err != nil {
			return FieldType{}, 0, err
		}

		return FieldType{Tag: TagObject, Nested: &nested}, used, nil
	case TagUnion:
		count, n, err := varint.Uvarint(data, false)
		if err != nil {
			return FieldType{}, 0, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
		}
		rest := data[n:]
		consumed := n

		members := make([]FieldType, 0, count)
		for i := uint64(0); i < count; i++ {
			if len(rest) < 1 {
				return FieldType{}, 0, fmt.Errorf("%w: truncated union member", errs.ErrDecodeError)
			}
			mTag := Tag(rest[0])
			m, used, err := decodeType(mTag, rest[1:], depth+1)
			if err != nil {
				return FieldType{}, 0, err
			}
			members = append(members, m)
			rest = rest[1+used:]
			consumed += 1 + used
		}

		return FieldType{Tag: TagUnion, Members: members}, consumed, nil
	default:
		return FieldType{Tag: tag}, 0, nil
	}
}
