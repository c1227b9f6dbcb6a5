// Package columnar implements the row-of-object ↔ column-array transform
// of spec §4.F. It applies only to arrays whose inferred shape is
// Array(Object(S)) with S non-empty and at least COLUMNAR_MIN_ROWS rows;
// shorter or scalar arrays stay row-encoded, matching the teacher's own
// threshold-gated columnar layout (blob.NumericBlobSet only columnarizes
// once a metric accumulates enough points to amortize its index entry).
package columnar

import (
	"fmt"

	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/schema"
	"github.com/SylphxAI/flux/value"
)

// MinRows is the row-count floor below which row encoding is cheaper than
// columnar layout (spec §6, COLUMNAR_MIN_ROWS).
const MinRows = 4

// Eligible reports whether arr (already known to be a homogeneous array of
// objects under schema s) should be columnarized.
func Eligible(s *schema.Schema, rowCount int) bool {
	return s != nil && len(s.Fields) > 0 && rowCount >= MinRows
}

// FieldColumn holds one field's extracted values, in row order, plus the
// presence bitmap used to strip nulls before codec selection (spec's
// Column type, minus the chosen encoding — that's the selector's job).
type FieldColumn struct {
	Field    schema.FieldDef
	Present  []bool // len == row count; false marks a null/missing row
	Values   []value.Value // non-null values only, in row order
}

// Split decomposes rows (each an Object value conforming to s) into one
// FieldColumn per field of s, in s's field order. A row missing a field
// entirely is treated as null for that column.
func Split(s *schema.Schema, rows []value.Value) ([]FieldColumn, error) {
	cols := make([]FieldColumn, len(s.Fields))
	for i, fd := range s.Fields {
		cols[i] = FieldColumn{
			Field:   fd,
			Present: make([]bool, len(rows)),
			Values:  make([]value.Value, 0, len(rows)),
		}
	}

	for r, row := range rows {
		if row.Kind != value.KindObject {
			return nil, fmt.Errorf("%w: columnar row %d is not an object", errs.ErrDecodeError, r)
		}

		for i, fd := range s.Fields {
			v, ok := row.Get(fd.Name)
			if !ok || v.Kind == value.KindNull {
				cols[i].Present[r] = false

				continue
			}

			cols[i].Present[r] = true
			cols[i].Values = append(cols[i].Values, v)
		}
	}

	return cols, nil
}

// Join rebuilds row count objects by zipping cols (in s's field order)
// back together; the inverse of Split.
func Join(s *schema.Schema, cols []FieldColumn, rowCount int) ([]value.Value, error) {
	if len(cols) != len(s.Fields) {
		return nil, fmt.Errorf("%w: expected %d columns, got %d", errs.ErrDecodeError, len(s.Fields), len(cols))
	}

	cursors := make([]int, len(cols))
	rows := make([]value.Value, rowCount)
	for r := 0; r < rowCount; r++ {
		members := make([]value.Member, 0, len(cols))
		for i, fd := range s.Fields {
			col := cols[i]
			if r >= len(col.Present) {
				return nil, fmt.Errorf("%w: column %q shorter than row count", errs.ErrDecodeError, fd.Name)
			}

			if !col.Present[r] {
				members = append(members, value.Member{Name: fd.Name, Value: value.Null})

				continue
			}

			idx := cursors[i]
			if idx >= len(col.Values) {
				return nil, fmt.Errorf("%w: column %q missing value for row %d", errs.ErrDecodeError, fd.Name, r)
			}

			members = append(members, value.Member{Name: fd.Name, Value: col.Values[idx]})
			cursors[i]++
		}

		rows[r] = value.NewObject(members)
	}

	return rows, nil
}
