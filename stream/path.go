// Package stream implements the delta/patch protocol of spec §4.J: a
// Stream wraps a Session and, on each update, diffs the new state against
// the last accepted state, sending either a compact op list or a full
// resync when the diff would not be worth it. It plays the role the
// teacher's higher-level blob-set wrappers play over a single encoder —
// state carried across calls, with the wire encoding delegated to the
// lower package (here, session.Session for full-sync bodies).
package stream

import (
	"fmt"

	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/varint"
)

// PathSegment is one step of a delta op's path: either an object key or an
// array index (spec §4.J "opcode:u8 | path(terminated) | value").
type PathSegment struct {
	IsKey bool
	Key   string
	Index int
}

// Key builds an object-key path segment.
func Key(name string) PathSegment { return PathSegment{IsKey: true, Key: name} }

// Idx builds an array-index path segment.
func Idx(i int) PathSegment { return PathSegment{IsKey: false, Index: i} }

const (
	pathMarkerEnd   byte = 0x00
	pathMarkerKey   byte = 0x01
	pathMarkerIndex byte = 0xFF
)

func appendPath(dst []byte, path []PathSegment) []byte {
	for _, seg := range path {
		if seg.IsKey {
			dst = append(dst, pathMarkerKey)
			dst = varint.AppendUvarint(dst, uint64(len(seg.Key)))
			dst = append(dst, seg.Key...)

			continue
		}

		dst = append(dst, pathMarkerIndex)
		dst = varint.AppendUvarint(dst, uint64(seg.Index))
	}

	return append(dst, pathMarkerEnd)
}

func decodePath(data []byte) ([]PathSegment, int, error) {
	var path []PathSegment
	pos := 0

	for {
		if pos >= len(data) {
			return nil, 0, fmt.Errorf("%w: unterminated path", errs.ErrDecodeError)
		}

		marker := data[pos]
		pos++

		switch marker {
		case pathMarkerEnd:
			return path, pos, nil
		case pathMarkerKey:
			l, n, err := varint.Uvarint(data[pos:], true)
			if err != nil {
				return nil, 0, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
			}
			pos += n

			if uint64(len(data)-pos) < l {
				return nil, 0, fmt.Errorf("%w: truncated path key", errs.ErrDecodeError)
			}

			path = append(path, Key(string(data[pos:pos+int(l)])))
			pos += int(l)
		case pathMarkerIndex:
			idx, n, err := varint.Uvarint(data[pos:], true)
			if err != nil {
				return nil, 0, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
			}
			pos += n

			path = append(path, Idx(int(idx)))
		default:
			return nil, 0, fmt.Errorf("%w: unknown path marker %d", errs.ErrDecodeError, marker)
		}
	}
}
