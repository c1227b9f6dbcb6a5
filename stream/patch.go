package stream

import (
	"fmt"

	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/value"
)

// Apply replays ops against prev in order, returning the resulting value
// (spec §4.J receiver "apply ops"). Any structural mismatch (missing key,
// out-of-range index, wrong container kind) is reported as
// errs.ErrStateDesync, since it can only mean the receiver's state has
// drifted from the sender's.
func Apply(prev value.Value, ops []Op) (value.Value, error) {
	cur := prev

	for i, op := range ops {
		next, err := applyOp(cur, op)
		if err != nil {
			return value.Value{}, fmt.Errorf("op %d (%s): %w", i, op.Code, err)
		}

		cur = next
	}

	return cur, nil
}

func applyOp(root value.Value, op Op) (value.Value, error) {
	switch op.Code {
	case SetOp:
		if len(op.Path) == 0 {
			return op.Value, nil
		}

		return transformParent(root, op.Path, func(parent value.Value, last PathSegment) (value.Value, error) {
			return setLeaf(parent, last, op.Value)
		})
	case DeleteOp:
		return transformParent(root, op.Path, func(parent value.Value, last PathSegment) (value.Value, error) {
			return deleteLeaf(parent, last)
		})
	case AppendOp:
		return transformAt(root, op.Path, func(arr value.Value) (value.Value, error) {
			return appendElem(arr, op.Value)
		})
	case InsertOp:
		return transformAt(root, op.Path, func(arr value.Value) (value.Value, error) {
			return insertElem(arr, op.Index, op.Value)
		})
	case RemoveOp:
		return transformAt(root, op.Path, func(arr value.Value) (value.Value, error) {
			return removeElem(arr, op.Index)
		})
	case MoveOp:
		return transformAt(root, op.Path, func(arr value.Value) (value.Value, error) {
			return moveElem(arr, op.From, op.To)
		})
	case IncrementOp:
		return transformParent(root, op.Path, func(parent value.Value, last PathSegment) (value.Value, error) {
			return incrementLeaf(parent, last, op.Value, 1)
		})
	case DecrementOp:
		return transformParent(root, op.Path, func(parent value.Value, last PathSegment) (value.Value, error) {
			return incrementLeaf(parent, last, op.Value, -1)
		})
	default:
		return value.Value{}, fmt.Errorf("%w: unknown op code %d", errs.ErrDecodeError, op.Code)
	}
}

// transformAt replaces the value found by walking path from root with
// fn's result, rebuilding every container along the way (Value trees are
// immutable by convention; siblings are shared, not copied).
func transformAt(root value.Value, path []PathSegment, fn func(value.Value) (value.Value, error)) (value.Value, error) {
	if len(path) == 0 {
		return fn(root)
	}

	seg := path[0]

	if seg.IsKey {
		if root.Kind != value.KindObject {
			return value.Value{}, errs.ErrStateDesync
		}

		for i, m := range root.Members {
			if m.Name != seg.Key {
				continue
			}

			child, err := transformAt(m.Value, path[1:], fn)
			if err != nil {
				return value.Value{}, err
			}

			members := append([]value.Member(nil), root.Members...)
			members[i] = value.Member{Name: seg.Key, Value: child}

			return value.NewObject(members), nil
		}

		return value.Value{}, errs.ErrStateDesync
	}

	if root.Kind != value.KindArray {
		return value.Value{}, errs.ErrStateDesync
	}
	if seg.Index < 0 || seg.Index >= len(root.Array) {
		return value.Value{}, errs.ErrStateDesync
	}

	child, err := transformAt(root.Array[seg.Index], path[1:], fn)
	if err != nil {
		return value.Value{}, err
	}

	items := append([]value.Value(nil), root.Array...)
	items[seg.Index] = child

	return value.NewArray(items), nil
}

// transformParent walks to the container holding path's final segment and
// lets fn perform the mutation, given that container and the final
// segment (used by ops whose target is a single object member or array
// element: SET, DELETE, INCREMENT, DECREMENT).
func transformParent(root value.Value, path []PathSegment, fn func(parent value.Value, last PathSegment) (value.Value, error)) (value.Value, error) {
	if len(path) == 0 {
		return value.Value{}, fmt.Errorf("%w: empty path for parent-relative op", errs.ErrDecodeError)
	}

	parentPath := path[:len(path)-1]
	last := path[len(path)-1]

	return transformAt(root, parentPath, func(parent value.Value) (value.Value, error) {
		return fn(parent, last)
	})
}

func setLeaf(parent value.Value, last PathSegment, v value.Value) (value.Value, error) {
	if last.IsKey {
		if parent.Kind != value.KindObject {
			return value.Value{}, errs.ErrStateDesync
		}

		for i, m := range parent.Members {
			if m.Name == last.Key {
				members := append([]value.Member(nil), parent.Members...)
				members[i] = value.Member{Name: last.Key, Value: v}

				return value.NewObject(members), nil
			}
		}

		members := append(append([]value.Member(nil), parent.Members...), value.Member{Name: last.Key, Value: v})

		return value.NewObject(members), nil
	}

	if parent.Kind != value.KindArray || last.Index < 0 || last.Index >= len(parent.Array) {
		return value.Value{}, errs.ErrStateDesync
	}

	items := append([]value.Value(nil), parent.Array...)
	items[last.Index] = v

	return value.NewArray(items), nil
}

func deleteLeaf(parent value.Value, last PathSegment) (value.Value, error) {
	if parent.Kind != value.KindObject || !last.IsKey {
		return value.Value{}, errs.ErrStateDesync
	}

	members := make([]value.Member, 0, len(parent.Members))
	found := false

	for _, m := range parent.Members {
		if m.Name == last.Key {
			found = true

			continue
		}

		members = append(members, m)
	}

	if !found {
		return value.Value{}, errs.ErrStateDesync
	}

	return value.NewObject(members), nil
}

func incrementLeaf(parent value.Value, last PathSegment, delta value.Value, sign int) (value.Value, error) {
	var current value.Value

	if last.IsKey {
		if parent.Kind != value.KindObject {
			return value.Value{}, errs.ErrStateDesync
		}

		v, ok := parent.Get(last.Key)
		if !ok {
			return value.Value{}, errs.ErrStateDesync
		}

		current = v
	} else {
		if parent.Kind != value.KindArray || last.Index < 0 || last.Index >= len(parent.Array) {
			return value.Value{}, errs.ErrStateDesync
		}

		current = parent.Array[last.Index]
	}

	updated, err := addNumeric(current, delta, sign)
	if err != nil {
		return value.Value{}, err
	}

	return setLeaf(parent, last, updated)
}

func addNumeric(a, delta value.Value, sign int) (value.Value, error) {
	if a.Kind == value.KindInt && delta.Kind == value.KindInt {
		return value.NewInt(a.Int + int64(sign)*delta.Int), nil
	}

	af, err := asFloat(a)
	if err != nil {
		return value.Value{}, err
	}

	df, err := asFloat(delta)
	if err != nil {
		return value.Value{}, err
	}

	return value.NewFloat(af + float64(sign)*df), nil
}

func asFloat(v value.Value) (float64, error) {
	switch v.Kind {
	case value.KindInt:
		return float64(v.Int), nil
	case value.KindFloat:
		return v.Float, nil
	default:
		return 0, fmt.Errorf("%w: increment target is not numeric", errs.ErrStateDesync)
	}
}

func appendElem(arr value.Value, v value.Value) (value.Value, error) {
	if arr.Kind != value.KindArray {
		return value.Value{}, errs.ErrStateDesync
	}

	return value.NewArray(append(append([]value.Value(nil), arr.Array...), v)), nil
}

func insertElem(arr value.Value, index int, v value.Value) (value.Value, error) {
	if arr.Kind != value.KindArray || index < 0 || index > len(arr.Array) {
		return value.Value{}, errs.ErrStateDesync
	}

	items := make([]value.Value, 0, len(arr.Array)+1)
	items = append(items, arr.Array[:index]...)
	items = append(items, v)
	items = append(items, arr.Array[index:]...)

	return value.NewArray(items), nil
}

func removeElem(arr value.Value, index int) (value.Value, error) {
	if arr.Kind != value.KindArray || index < 0 || index >= len(arr.Array) {
		return value.Value{}, errs.ErrStateDesync
	}

	items := make([]value.Value, 0, len(arr.Array)-1)
	items = append(items, arr.Array[:index]...)
	items = append(items, arr.Array[index+1:]...)

	return value.NewArray(items), nil
}

func moveElem(arr value.Value, from, to int) (value.Value, error) {
	if arr.Kind != value.KindArray || from < 0 || from >= len(arr.Array) || to < 0 || to >= len(arr.Array) {
		return value.Value{}, errs.ErrStateDesync
	}

	items := append([]value.Value(nil), arr.Array...)
	elem := items[from]
	items = append(items[:from], items[from+1:]...)
	items = append(items[:to], append([]value.Value{elem}, items[to:]...)...)

	return value.NewArray(items), nil
}
