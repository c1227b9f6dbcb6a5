// Package schema infers, canonicalizes, and hashes the shape of JSON values
// exchanged in a flux session (spec §4.D). A Schema is the field-name/type
// description flux caches once per session and references by small integer
// id on the wire thereafter (§4.E).
//
// Like value.Value, FieldType is a closed, enum-tagged sum rather than an
// interface hierarchy (spec §9), consistent with the teacher's
// format.EncodingType / format.CompressionType pattern.
package schema

import "fmt"

// Tag identifies the dynamic shape of a field.
type Tag uint8

const (
	TagNull Tag = iota
	TagBool
	TagInt
	TagFloat
	TagString
	TagBinary
	TagArray
	TagObject
	TagUnion
	TagTimestamp
	TagUUID
	TagDate
	TagTime
	TagDecimal
	TagUnknown // element type of an empty array, pending merge (spec §4.D)
)

func (t Tag) String() string {
	names := [...]string{
		"Null", "Bool", "Int", "Float", "String", "Binary", "Array", "Object",
		"Union", "Timestamp", "UUID", "Date", "Time", "Decimal", "Unknown",
	}
	if int(t) < len(names) {
		return names[t]
	}

	return "Invalid"
}

// FieldType describes the shape of a field's values.
//
//   - Elem is meaningful only when Tag == TagArray (element FieldType).
//   - Nested is meaningful only when Tag == TagObject (the nested Schema).
//   - Members is meaningful only when Tag == TagUnion (sorted by Tag).
type FieldType struct {
	Tag     Tag
	Elem    *FieldType
	Nested  *Schema
	Members []FieldType
}

// FieldDef is one named, typed, nullable field of a Schema.
type FieldDef struct {
	Name     string
	Type     FieldType
	Nullable bool
}

// Schema is a canonical, ordered description of an object shape (spec §3).
// Fields keep their first-seen insertion order; nested schemas are
// recursively canonical. Hash is the FNV-1a digest of the canonical byte
// serialization (Hash computes it; callers needing a fresh Schema to
// register should call Finalize to populate it).
type Schema struct {
	Version uint8
	Hash    uint64
	Fields  []FieldDef
}

func (s Schema) String() string {
	return fmt.Sprintf("Schema{fields=%d hash=%#x}", len(s.Fields), s.Hash)
}

// Finalize recomputes and stores Hash from the schema's current field list.
// Call this after inference/merging and before registering with a
// schemacache.Cache.
func (s *Schema) Finalize() {
	s.Hash = Hash(*s)
}

// Equal reports whether two schemas are canonically identical: same field
// count, and for each position the same name, nullability, and type.
func Equal(a, b Schema) bool {
	if len(a.Fields) != len(b.Fields) {
		return false
	}

	for i := range a.Fields {
		fa, fb := a.Fields[i], b.Fields[i]
		if fa.Name != fb.Name || fa.Nullable != fb.Nullable || !typeEqual(fa.Type, fb.Type) {
			return false
		}
	}

	return true
}

func typeEqual(a, b FieldType) bool {
	if a.Tag != b.Tag {
		return false
	}

	switch a.Tag {
	case TagArray:
		if a.Elem == nil || b.Elem == nil {
			return a.Elem == b.Elem
		}

		return typeEqual(*a.Elem, *b.Elem)
	case TagObject:
		if a.Nested == nil || b.Nested == nil {
			return a.Nested == b.Nested
		}

		return Equal(*a.Nested, *b.Nested)
	case TagUnion:
		if len(a.Members) != len(b.Members) {
			return false
		}
		for i := range a.Members {
			if !typeEqual(a.Members[i], b.Members[i]) {
				return false
			}
		}

		return true
	default:
		return true
	}
}
