// Package value implements the tagged JSON value tree flux compresses and
// reconstructs (spec §3). Values are a closed sum type over Null, Bool,
// Integer, Float, String, Array, and Object; object key order is always the
// parser's ingestion order, never re-sorted, matching spec §3's
// "Canonical JSON" definition.
//
// The tree is intentionally a tagged struct rather than an open interface
// hierarchy (spec §9 "Polymorphic value trees"), the same way the teacher
// repo favors closed, enum-tagged structs (format.EncodingType,
// section.NumericFlag) over interface dispatch for hot-path data.
package value

import "fmt"

// Kind tags the dynamic type carried by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Member is a single key/value pair of an Object, preserving the parser's
// ingestion order when stored in a Value's Members slice.
type Member struct {
	Name  string
	Value Value
}

// Value is a tagged JSON value. Only the field matching Kind is meaningful.
type Value struct {
	Kind    Kind
	Bool    bool
	Int     int64
	Float   float64
	Str     string
	Array   []Value
	Members []Member
}

// Null is the JSON null value.
var Null = Value{Kind: KindNull}

// NewBool wraps a bool as a Value.
func NewBool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// NewInt wraps an int64 as a Value.
func NewInt(n int64) Value { return Value{Kind: KindInt, Int: n} }

// NewFloat wraps a float64 as a Value.
func NewFloat(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// NewString wraps a string as a Value.
func NewString(s string) Value { return Value{Kind: KindString, Str: s} }

// NewArray wraps a slice of Values as an Array Value.
func NewArray(items []Value) Value { return Value{Kind: KindArray, Array: items} }

// NewObject wraps an ordered member list as an Object Value.
func NewObject(members []Member) Value { return Value{Kind: KindObject, Members: members} }

// Get returns the value of the named member and true, or the zero Value and
// false if v is not an object or has no such member.
func (v Value) Get(name string) (Value, bool) {
	if v.Kind != KindObject {
		return Value{}, false
	}

	for _, m := range v.Members {
		if m.Name == name {
			return m.Value, true
		}
	}

	return Value{}, false
}

// Equal reports whether two values are structurally identical: same kind,
// same scalar payload, same array length with equal elements in order, same
// object members (name and value) in the same order. It is stricter than
// canonical-JSON equality: CanonicalJSON writes an integral Float such as
// 1.0 as 1, the same bytes as Int 1, yet the two are not Equal.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindInt:
		return a.Int == b.Int
	case KindFloat:
		return a.Float == b.Float
	case KindString:
		return a.Str == b.Str
	case KindArray:
		if len(a.Array) != len(b.Array) {
			return false
		}
		for i := range a.Array {
			if !Equal(a.Array[i], b.Array[i]) {
				return false
			}
		}

		return true
	case KindObject:
		if len(a.Members) != len(b.Members) {
			return false
		}
		for i := range a.Members {
			if a.Members[i].Name != b.Members[i].Name || !Equal(a.Members[i].Value, b.Members[i].Value) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

// String renders a Value for debugging; not used on the wire.
func (v Value) String() string {
	return fmt.Sprintf("%s(%v)", v.Kind, v.debugPayload())
}

func (v Value) debugPayload() any {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindString:
		return v.Str
	case KindArray:
		return len(v.Array)
	case KindObject:
		return len(v.Members)
	default:
		return nil
	}
}
