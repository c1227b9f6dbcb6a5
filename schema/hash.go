package schema

import (
	"hash/fnv"
	"sort"

	"github.com/SylphxAI/flux/varint"
)

// Hash computes the FNV-1a digest of s's canonical byte serialization
// (spec §4.D):
//
//	for each field in order: len(name):varint | name bytes | type_tag:u8 | nullable:u8 | type-params
//
// Type-params are empty for scalar tags, the element's canonical bytes for
// Array, the nested schema's canonical bytes for Object, and the
// tag-sorted members' canonical bytes for Union. The wire format pins this
// algorithm (schema ids are looked up by this hash), so it uses stdlib
// hash/fnv rather than the session-internal xxHash used for stream state
// (see value.StateHash).
func Hash(s Schema) uint64 {
	h := fnv.New64a()
	appendCanonicalSchema(h, s)

	return h.Sum64()
}

func appendCanonicalSchema(h fnv64a, s Schema) {
	for _, f := range s.Fields {
		writeVarintPrefixed(h, f.Name)
		h.Write([]byte{byte(f.Type.Tag), boolByte(f.Nullable)})
		appendCanonicalType(h, f.Type)
	}
}

func appendCanonicalType(h fnv64a, ft FieldType) {
	switch ft.Tag {
	case TagArray:
		if ft.Elem != nil {
			h.Write([]byte{byte(ft.Elem.Tag)})
			appendCanonicalType(h, *ft.Elem)
		}
	case TagObject:
		if ft.Nested != nil {
			appendCanonicalSchema(h, *ft.Nested)
		}
	case TagUnion:
		members := append([]FieldType(nil), ft.Members...)
		sort.Slice(members, func(i, j int) bool { return members[i].Tag < members[j].Tag })
		for _, m := range members {
			h.Write([]byte{byte(m.Tag)})
			appendCanonicalType(h, m)
		}
	}
}

func writeVarintPrefixed(h fnv64a, s string) {
	var lenBuf [varint.MaxLen64]byte
	h.Write(varint.AppendUvarint(lenBuf[:0], uint64(len(s))))
	h.Write([]byte(s))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}

	return 0
}

// fnv64a is the narrow subset of hash.Hash64 this file relies on, named so
// the helpers above read as plain byte-sink writers.
type fnv64a interface {
	Write(p []byte) (int, error)
	Sum64() uint64
}
