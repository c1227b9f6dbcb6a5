package schema

import (
	"regexp"
	"strings"
	"time"

	"github.com/SylphxAI/flux/value"
)

var (
	uuidPattern    = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	datePattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern    = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}(\.\d+)?$`)
	decimalPattern = regexp.MustCompile(`^-?\d+\.\d+$`)
)

// maxDecimalDigits bounds the significant digits a string may carry and
// still classify as Decimal rather than String (spec §4.D).
const maxDecimalDigits = 18

// detectStringTag runs the extended-type detection cascade from spec §4.D:
// UUID, then Timestamp, then Date, then Time, then Decimal, falling back to
// plain String. Detection is advisory — it only affects the chosen binary
// encoding, never the reconstructed JSON text (spec §3).
func detectStringTag(s string) Tag {
	if len(s) == 36 && uuidPattern.MatchString(s) {
		return TagUUID
	}

	if isISO8601Timestamp(s) {
		return TagTimestamp
	}

	if datePattern.MatchString(s) {
		return TagDate
	}

	if timePattern.MatchString(s) {
		return TagTime
	}

	if decimalPattern.MatchString(s) && significantDigits(s) <= maxDecimalDigits {
		return TagDecimal
	}

	return TagString
}

// isISO8601Timestamp reports whether s parses as an ISO-8601 timestamp with
// both date and time components. Per spec §9 Open Question (c), timestamp
// detection is intentionally conservative: a handful of common layouts are
// tried, and anything else falls through to String without breaking
// round-trip (the value is still carried verbatim as a string).
func isISO8601Timestamp(s string) bool {
	if !strings.Contains(s, "T") && !strings.Contains(s, " ") {
		return false
	}
	if !strings.Contains(s, ":") {
		return false
	}

	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}

	return false
}

func significantDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}

	return n
}

// Infer derives a FieldType from a single JSON value (spec §4.D). It does
// not merge across samples; callers accumulating a schema across multiple
// messages should combine successive Infer results with Merge.
func Infer(v value.Value) FieldType {
	switch v.Kind {
	case value.KindNull:
		return FieldType{Tag: TagNull}
	case value.KindBool:
		return FieldType{Tag: TagBool}
	case value.KindInt:
		return FieldType{Tag: TagInt}
	case value.KindFloat:
		return FieldType{Tag: TagFloat}
	case value.KindString:
		return FieldType{Tag: detectStringTag(v.Str)}
	case value.KindArray:
		return inferArray(v.Array)
	case value.KindObject:
		return FieldType{Tag: TagObject, Nested: inferObjectSchema(v)}
	default:
		return FieldType{Tag: TagNull}
	}
}

func inferArray(items []value.Value) FieldType {
	if len(items) == 0 {
		return FieldType{Tag: TagArray, Elem: &FieldType{Tag: TagUnknown}}
	}

	elem := Infer(items[0])
	for _, item := range items[1:] {
		elem = MergeType(elem, Infer(item))
	}

	return FieldType{Tag: TagArray, Elem: &elem}
}

// inferObjectSchema derives a single-sample Schema from an object value.
func inferObjectSchema(v value.Value) *Schema {
	s := &Schema{Version: 1, Fields: make([]FieldDef, 0, len(v.Members))}
	for _, m := range v.Members {
		ft := Infer(m.Value)
		s.Fields = append(s.Fields, FieldDef{
			Name:     m.Name,
			Type:     ft,
			Nullable: ft.Tag == TagNull,
		})
	}
	s.Finalize()

	return s
}

// InferSchema infers the canonical Schema of a single JSON object value.
// The returned Schema is already Finalize'd (Hash populated).
func InferSchema(v value.Value) *Schema {
	return inferObjectSchema(v)
}
