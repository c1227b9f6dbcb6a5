package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/SylphxAI/flux/errs"
)

// MaxNestingDepth caps recursive structures during parsing and decoding
// (spec §5/§6, MAX_NESTING_DEPTH = 64), protecting against stack exhaustion
// from adversarial input.
const MaxNestingDepth = 64

// MaxStringLength and MaxArrayLength bound individual string values and
// array element counts during parsing (spec §6, MAX_STRING_LENGTH /
// MAX_ARRAY_LENGTH).
const (
	MaxStringLength = 16 * 1024 * 1024
	MaxArrayLength  = 1 << 20
)

// Parse decodes raw JSON bytes into a Value tree, preserving object key
// order and distinguishing integral from fractional numbers (spec §3).
//
// No off-the-shelf decoder in the retrieved example pack exposes both
// ingestion-ordered object keys and int/float discrimination at once, so
// this walks encoding/json's streaming token decoder directly (see
// DESIGN.md) rather than unmarshaling into map[string]any.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := parseValue(dec, 0)
	if err != nil {
		return Value{}, err
	}

	if dec.More() {
		return Value{}, fmt.Errorf("%w: trailing data after JSON value", errs.ErrDecodeError)
	}

	return v, nil
}

func parseValue(dec *json.Decoder, depth int) (Value, error) {
	if depth > MaxNestingDepth {
		return Value{}, fmt.Errorf("%w: nesting exceeds %d", errs.ErrDecodeError, MaxNestingDepth)
	}

	tok, err := dec.Token()
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
	}

	return parseToken(dec, tok, depth)
}

func parseToken(dec *json.Decoder, tok json.Token, depth int) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null, nil
	case bool:
		return NewBool(t), nil
	case json.Number:
		return parseNumber(t)
	case string:
		if len(t) > MaxStringLength {
			return Value{}, fmt.Errorf("%w: string of %d bytes exceeds cap", errs.ErrBufferOverflow, len(t))
		}

		return NewString(t), nil
	case json.Delim:
		switch t {
		case '[':
			return parseArray(dec, depth+1)
		case '{':
			return parseObject(dec, depth+1)
		default:
			return Value{}, fmt.Errorf("%w: unexpected delimiter %q", errs.ErrDecodeError, t)
		}
	default:
		return Value{}, fmt.Errorf("%w: unexpected token %v", errs.ErrDecodeError, tok)
	}
}

func parseNumber(n json.Number) (Value, error) {
	s := n.String()
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NewInt(i), nil
	}

	f, err := n.Float64()
	if err != nil {
		return Value{}, fmt.Errorf("%w: invalid number %q", errs.ErrDecodeError, s)
	}

	if math.IsInf(f, 0) || math.IsNaN(f) {
		return Value{}, fmt.Errorf("%w: non-finite number %q", errs.ErrDecodeError, s)
	}

	return NewFloat(f), nil
}

func parseArray(dec *json.Decoder, depth int) (Value, error) {
	var items []Value
	for dec.More() {
		v, err := parseValue(dec, depth)
		if err != nil {
			return Value{}, err
		}

		items = append(items, v)
		if len(items) > MaxArrayLength {
			return Value{}, fmt.Errorf("%w: array of %d elements exceeds cap", errs.ErrBufferOverflow, len(items))
		}
	}

	if _, err := dec.Token(); err != nil { // consume ']'
		return Value{}, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
	}

	return NewArray(items), nil
}

func parseObject(dec *json.Decoder, depth int) (Value, error) {
	var members []Member
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
		}

		key, ok := keyTok.(string)
		if !ok {
			return Value{}, fmt.Errorf("%w: object key is not a string", errs.ErrDecodeError)
		}

		v, err := parseValue(dec, depth)
		if err != nil {
			return Value{}, err
		}

		members = append(members, Member{Name: key, Value: v})
	}

	if _, err := dec.Token(); err != nil { // consume '}'
		return Value{}, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
	}

	return NewObject(members), nil
}
