package stream

import "github.com/SylphxAI/flux/value"

// Diff computes the ordered op list transforming prev into next (spec
// §4.J "Diff algorithm"): a recursive structural diff that recurses into
// matching containers and otherwise emits a whole-value SET. Arrays use
// positional alignment with APPEND/REMOVE for a tail length change — the
// spec explicitly permits but does not require LCS alignment, and fixes
// tests to the positional semantics.
func Diff(prev, next value.Value) []Op {
	var ops []Op
	diffValue(prev, next, nil, &ops)

	return ops
}

func diffValue(prev, next value.Value, path []PathSegment, ops *[]Op) {
	if value.Equal(prev, next) {
		return
	}

	if prev.Kind == value.KindObject && next.Kind == value.KindObject {
		diffObject(prev, next, path, ops)

		return
	}

	if prev.Kind == value.KindArray && next.Kind == value.KindArray {
		diffArray(prev, next, path, ops)

		return
	}

	*ops = append(*ops, Op{Code: SetOp, Path: clonePath(path), Value: next})
}

func diffObject(prev, next value.Value, path []PathSegment, ops *[]Op) {
	seen := make(map[string]bool, len(prev.Members))

	for _, m := range prev.Members {
		seen[m.Name] = true

		nv, ok := next.Get(m.Name)
		if !ok {
			*ops = append(*ops, Op{Code: DeleteOp, Path: appendSeg(path, Key(m.Name))})

			continue
		}

		if value.Equal(m.Value, nv) {
			continue
		}

		childPath := appendSeg(path, Key(m.Name))
		diffValue(m.Value, nv, childPath, ops)
	}

	for _, m := range next.Members {
		if seen[m.Name] {
			continue
		}

		*ops = append(*ops, Op{Code: SetOp, Path: appendSeg(path, Key(m.Name)), Value: m.Value})
	}
}

func diffArray(prev, next value.Value, path []PathSegment, ops *[]Op) {
	common := len(prev.Array)
	if len(next.Array) < common {
		common = len(next.Array)
	}

	for i := 0; i < common; i++ {
		a, b := prev.Array[i], next.Array[i]
		if value.Equal(a, b) {
			continue
		}

		diffValue(a, b, appendSeg(path, Idx(i)), ops)
	}

	switch {
	case len(next.Array) > len(prev.Array):
		for i := len(prev.Array); i < len(next.Array); i++ {
			*ops = append(*ops, Op{Code: AppendOp, Path: clonePath(path), Value: next.Array[i]})
		}
	case len(next.Array) < len(prev.Array):
		for i := len(prev.Array) - 1; i >= len(next.Array); i-- {
			*ops = append(*ops, Op{Code: RemoveOp, Path: clonePath(path), Index: i})
		}
	}
}

func clonePath(path []PathSegment) []PathSegment {
	return append([]PathSegment(nil), path...)
}

func appendSeg(path []PathSegment, seg PathSegment) []PathSegment {
	return append(clonePath(path), seg)
}
