package schema

import "sort"

// MergeType combines two observed FieldTypes for the same logical field
// into the type that describes both, per spec §4.D's learning lattice:
//
//	Null  ∪ T      = T, field becomes nullable
//	Int   ∪ Float  = Float
//	T     ∪ T      = T
//	Array ∪ Array  = Array of the merged element type
//	Object ∪ Object (same field names) = Object with field-wise merged types
//	otherwise      = Union{a, b} (or Union ∪ T = Union with T folded in)
//
// Nullability is tracked separately on FieldDef; MergeType itself only
// widens the non-null shape.
func MergeType(a, b FieldType) FieldType {
	if a.Tag == TagNull {
		return b
	}
	if b.Tag == TagNull {
		return a
	}
	if a.Tag == TagUnknown {
		return b
	}
	if b.Tag == TagUnknown {
		return a
	}

	if a.Tag == b.Tag {
		switch a.Tag {
		case TagInt, TagFloat, TagBool, TagString, TagBinary, TagTimestamp,
			TagUUID, TagDate, TagTime, TagDecimal:
			return a
		case TagArray:
			elem := mergeElem(a.Elem, b.Elem)

			return FieldType{Tag: TagArray, Elem: elem}
		case TagObject:
			return FieldType{Tag: TagObject, Nested: mergeSchema(a.Nested, b.Nested)}
		case TagUnion:
			return mergeUnion(a.Members, b.Members)
		}
	}

	if (a.Tag == TagInt && b.Tag == TagFloat) || (a.Tag == TagFloat && b.Tag == TagInt) {
		return FieldType{Tag: TagFloat}
	}

	// Extended string subtypes (Timestamp/UUID/Date/Time/Decimal) that
	// disagree fold back to plain String rather than a Union, since they
	// share the same wire representation.
	if isStringLike(a.Tag) && isStringLike(b.Tag) {
		return FieldType{Tag: TagString}
	}

	if a.Tag == TagUnion {
		return mergeUnion(a.Members, []FieldType{b})
	}
	if b.Tag == TagUnion {
		return mergeUnion(b.Members, []FieldType{a})
	}

	return mergeUnion([]FieldType{a}, []FieldType{b})
}

func isStringLike(t Tag) bool {
	switch t {
	case TagString, TagTimestamp, TagUUID, TagDate, TagTime, TagDecimal:
		return true
	default:
		return false
	}
}

func mergeElem(a, b *FieldType) *FieldType {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}

	merged := MergeType(*a, *b)

	return &merged
}

// mergeSchema field-wise merges two object schemas. Fields present in only
// one side become nullable in the result; field order follows a's order
// with b's extra fields appended.
func mergeSchema(a, b *Schema) *Schema {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}

	out := &Schema{Version: a.Version}
	seen := make(map[string]int, len(a.Fields))
	matchedInB := make(map[string]bool, len(b.Fields))

	for _, fa := range a.Fields {
		seen[fa.Name] = len(out.Fields)
		out.Fields = append(out.Fields, fa)
	}

	for _, fb := range b.Fields {
		if i, ok := seen[fb.Name]; ok {
			matchedInB[fb.Name] = true
			fa := out.Fields[i]
			out.Fields[i] = FieldDef{
				Name:     fa.Name,
				Type:     MergeType(fa.Type, fb.Type),
				Nullable: fa.Nullable || fb.Nullable,
			}

			continue
		}

		fb.Nullable = true
		out.Fields = append(out.Fields, fb)
	}

	for name, i := range seen {
		if !matchedInB[name] {
			out.Fields[i].Nullable = true
		}
	}

	out.Finalize()

	return out
}

func mergeUnion(a, b []FieldType) FieldType {
	members := append([]FieldType(nil), a...)
	for _, m := range b {
		merged := false
		for i, existing := range members {
			if existing.Tag == m.Tag {
				members[i] = MergeType(existing, m)
				merged = true

				break
			}
		}
		if !merged {
			members = append(members, m)
		}
	}

	if len(members) == 1 {
		return members[0]
	}

	sort.Slice(members, func(i, j int) bool { return members[i].Tag < members[j].Tag })

	return FieldType{Tag: TagUnion, Members: members}
}

// Merge combines two schemas observed for the same session into one that
// describes both, widening per-field types and marking fields absent from
// either side as nullable (spec §4.D, §4.I Learning state).
func Merge(a, b *Schema) *Schema {
	merged := mergeSchema(a, b)
	merged.Finalize()

	return merged
}
