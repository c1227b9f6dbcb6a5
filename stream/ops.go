package stream

import (
	"fmt"

	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/value"
	"github.com/SylphxAI/flux/varint"
)

// OpCode identifies a delta operation (spec §4.J: "SET, DELETE, APPEND,
// INSERT(index), REMOVE(index), MOVE(from,to), INCREMENT(delta),
// DECREMENT(delta)").
type OpCode byte

const (
	SetOp OpCode = 1 + iota
	DeleteOp
	AppendOp
	InsertOp
	RemoveOp
	MoveOp
	IncrementOp
	DecrementOp
)

func (c OpCode) String() string {
	switch c {
	case SetOp:
		return "SET"
	case DeleteOp:
		return "DELETE"
	case AppendOp:
		return "APPEND"
	case InsertOp:
		return "INSERT"
	case RemoveOp:
		return "REMOVE"
	case MoveOp:
		return "MOVE"
	case IncrementOp:
		return "INCREMENT"
	case DecrementOp:
		return "DECREMENT"
	default:
		return "UNKNOWN"
	}
}

// Op is one entry of a delta patch. Path always addresses the operation's
// target; Value, Index, From, and To are populated according to Code (see
// appendOp).
type Op struct {
	Code  OpCode
	Path  []PathSegment
	Value value.Value
	Index int
	From  int
	To    int
}

// MOVE and INCREMENT/DECREMENT are never emitted by the positional diff in
// diff.go (spec §9 Open Question (b)) but are encoded/decoded and applied
// here regardless, for forward compatibility with peers or future diff
// strategies that do emit them.

func appendOp(dst []byte, op Op) []byte {
	dst = append(dst, byte(op.Code))
	dst = appendPath(dst, op.Path)

	switch op.Code {
	case SetOp, AppendOp, IncrementOp, DecrementOp:
		dst = appendOpValue(dst, op.Value)
	case InsertOp:
		dst = varint.AppendUvarint(dst, uint64(op.Index))
		dst = appendOpValue(dst, op.Value)
	case RemoveOp:
		dst = varint.AppendUvarint(dst, uint64(op.Index))
	case MoveOp:
		dst = varint.AppendUvarint(dst, uint64(op.From))
		dst = varint.AppendUvarint(dst, uint64(op.To))
	case DeleteOp:
		// path alone
	}

	return dst
}

func decodeOp(data []byte) (Op, int, error) {
	if len(data) < 1 {
		return Op{}, 0, fmt.Errorf("%w: empty op", errs.ErrDecodeError)
	}

	op := Op{Code: OpCode(data[0])}
	pos := 1

	path, n, err := decodePath(data[pos:])
	if err != nil {
		return Op{}, 0, err
	}
	op.Path = path
	pos += n

	switch op.Code {
	case SetOp, AppendOp, IncrementOp, DecrementOp:
		v, used, err := decodeOpValue(data[pos:])
		if err != nil {
			return Op{}, 0, err
		}
		op.Value = v
		pos += used
	case InsertOp:
		idx, used, err := varint.Uvarint(data[pos:], true)
		if err != nil {
			return Op{}, 0, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
		}
		op.Index = int(idx)
		pos += used

		v, used2, err := decodeOpValue(data[pos:])
		if err != nil {
			return Op{}, 0, err
		}
		op.Value = v
		pos += used2
	case RemoveOp:
		idx, used, err := varint.Uvarint(data[pos:], true)
		if err != nil {
			return Op{}, 0, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
		}
		op.Index = int(idx)
		pos += used
	case MoveOp:
		from, used, err := varint.Uvarint(data[pos:], true)
		if err != nil {
			return Op{}, 0, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
		}
		op.From = int(from)
		pos += used

		to, used2, err := varint.Uvarint(data[pos:], true)
		if err != nil {
			return Op{}, 0, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
		}
		op.To = int(to)
		pos += used2
	case DeleteOp:
		// nothing further
	default:
		return Op{}, 0, fmt.Errorf("%w: unknown op code %d", errs.ErrDecodeError, op.Code)
	}

	return op, pos, nil
}

// appendOpValue serializes an op's value operand as length-prefixed
// canonical JSON. Delta ops carry single, loose-typed values with no
// governing column schema to exploit, so the binary column codecs of
// package column don't apply here; canonical JSON is the same
// representation package value already uses for hashing and the byte-codec
// fallback path, reused here rather than inventing a second generic value
// wire format (see DESIGN.md).
func appendOpValue(dst []byte, v value.Value) []byte {
	json := value.CanonicalJSON(v)
	dst = varint.AppendUvarint(dst, uint64(len(json)))

	return append(dst, json...)
}

func decodeOpValue(data []byte) (value.Value, int, error) {
	l, n, err := varint.Uvarint(data, true)
	if err != nil {
		return value.Value{}, 0, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
	}

	if uint64(len(data)-n) < l {
		return value.Value{}, 0, fmt.Errorf("%w: truncated op value", errs.ErrDecodeError)
	}

	v, err := value.Parse(data[n : n+int(l)])
	if err != nil {
		return value.Value{}, 0, err
	}

	return v, n + int(l), nil
}

// EncodeOps serializes an ordered op list: op_count:varint then each op in
// order (spec §4.J delta message body).
func EncodeOps(ops []Op) []byte {
	dst := varint.AppendUvarint(nil, uint64(len(ops)))
	for _, op := range ops {
		dst = appendOp(dst, op)
	}

	return dst
}

// DecodeOps reverses EncodeOps.
func DecodeOps(data []byte) ([]Op, error) {
	count, n, err := varint.Uvarint(data, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
	}

	pos := n
	ops := make([]Op, 0, count)

	for i := uint64(0); i < count; i++ {
		op, used, err := decodeOp(data[pos:])
		if err != nil {
			return nil, err
		}

		ops = append(ops, op)
		pos += used
	}

	return ops, nil
}
