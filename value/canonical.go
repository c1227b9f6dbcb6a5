package value

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// AppendCanonicalJSON appends the canonical JSON encoding of v to dst:
// minimal whitespace, object keys left in ingestion order (never sorted),
// matching spec §3/GLOSSARY's definition of "Canonical JSON" used both for
// the round-trip equality check (P1) and as the hash input for stream state
// (§4.J).
func AppendCanonicalJSON(dst []byte, v Value) []byte {
	switch v.Kind {
	case KindNull:
		return append(dst, "null"...)
	case KindBool:
		if v.Bool {
			return append(dst, "true"...)
		}

		return append(dst, "false"...)
	case KindInt:
		return strconv.AppendInt(dst, v.Int, 10)
	case KindFloat:
		return strconv.AppendFloat(dst, v.Float, 'g', -1, 64)
	case KindString:
		return appendQuotedString(dst, v.Str)
	case KindArray:
		dst = append(dst, '[')
		for i, item := range v.Array {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = AppendCanonicalJSON(dst, item)
		}

		return append(dst, ']')
	case KindObject:
		dst = append(dst, '{')
		for i, m := range v.Members {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendQuotedString(dst, m.Name)
			dst = append(dst, ':')
			dst = AppendCanonicalJSON(dst, m.Value)
		}

		return append(dst, '}')
	default:
		return append(dst, "null"...)
	}
}

// CanonicalJSON returns the canonical JSON encoding of v as a new byte slice.
func CanonicalJSON(v Value) []byte {
	return AppendCanonicalJSON(make([]byte, 0, 64), v)
}

// StateHash returns the 64-bit xxHash of v's canonical JSON encoding, used as
// base_hash/new_hash in the delta stream protocol (spec §4.J). Unlike the
// schema hash (FNV-1a, pinned by the wire format), the stream state hash is
// an internal integrity check with no fixed algorithm requirement, so it
// uses the teacher's xxHash dependency the same way internal/hash.ID hashes
// metric names.
func StateHash(v Value) uint64 {
	return xxhash.Sum64(CanonicalJSON(v))
}

func appendQuotedString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for _, r := range s {
		switch r {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			if r < 0x20 {
				dst = append(dst, '\\', 'u')
				dst = appendHex4(dst, uint16(r))
			} else {
				dst = append(dst, string(r)...)
			}
		}
	}

	return append(dst, '"')
}

func appendHex4(dst []byte, v uint16) []byte {
	const hex = "0123456789abcdef"

	return append(dst, hex[(v>>12)&0xF], hex[(v>>8)&0xF], hex[(v>>4)&0xF], hex[v&0xF])
}
