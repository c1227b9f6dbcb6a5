package session

import "github.com/SylphxAI/flux/value"

// Top-level JSON shapes a Session can schema-encode (spec §3's "top-level
// value" note: a single object, a homogeneous array of objects, or — by
// wrapping each element in a synthetic single-field object named "value" —
// an array of scalars). The shape byte lets Decompress tell these apart
// without guessing from the reconstructed schema, since a real field named
// "value" would otherwise be ambiguous with the scalar-wrap case.
const (
	shapeObject byte = iota
	shapeArrayObjects
	shapeArrayScalars
)

// scalarWrapField is the synthetic field name used to carry bare array
// elements through the same object-row machinery as real records.
const scalarWrapField = "value"

// classify determines how v maps onto schema-encodable rows. ok is false
// for values with no useful schema (empty arrays, bare scalars, null),
// which callers fall back to the opaque byte-codec path for.
func classify(v value.Value) (shape byte, rows []value.Value, ok bool) {
	switch v.Kind {
	case value.KindObject:
		return shapeObject, []value.Value{v}, true
	case value.KindArray:
		if len(v.Array) == 0 {
			return 0, nil, false
		}

		allObjects := true
		for _, e := range v.Array {
			if e.Kind != value.KindObject {
				allObjects = false

				break
			}
		}

		if allObjects {
			return shapeArrayObjects, v.Array, true
		}

		wrapped := make([]value.Value, len(v.Array))
		for i, e := range v.Array {
			wrapped[i] = value.NewObject([]value.Member{{Name: scalarWrapField, Value: e}})
		}

		return shapeArrayScalars, wrapped, true
	default:
		return 0, nil, false
	}
}

// unwrap reverses classify's scalar wrapping, turning decoded object rows
// back into the JSON value the given shape describes.
func unwrap(shape byte, rows []value.Value) value.Value {
	switch shape {
	case shapeObject:
		if len(rows) == 0 {
			return value.Null
		}

		return rows[0]
	case shapeArrayScalars:
		items := make([]value.Value, len(rows))
		for i, r := range rows {
			v, _ := r.Get(scalarWrapField)
			items[i] = v
		}

		return value.NewArray(items)
	default: // shapeArrayObjects
		return value.NewArray(rows)
	}
}
