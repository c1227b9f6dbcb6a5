// Package column implements the per-column binary codecs of spec §4.B: a
// small family of fixed encodings chosen per column by the selector
// (package selector), operating over a column's non-null values in row
// order. Nullability is handled separately by the bitmap helpers in this
// package (see bitmap.go) and composed by callers, matching §4.B's "null
// handling" note that the bitmap precedes encoded data and is not itself
// tagged with an encoding id.
package column

import (
	"fmt"

	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/schema"
	"github.com/SylphxAI/flux/value"
)

// Encoding identifies a column codec (spec §4.B table).
type Encoding uint8

const (
	Raw                Encoding = 0x00
	Varint             Encoding = 0x01
	DeltaVarint        Encoding = 0x02
	FrameOfReference   Encoding = 0x03
	Dictionary         Encoding = 0x04
	RLE                Encoding = 0x05
	Bitmap             Encoding = 0x06
	Entropy            Encoding = 0x07
	XORFloat           Encoding = 0x08
)

func (e Encoding) String() string {
	switch e {
	case Raw:
		return "Raw"
	case Varint:
		return "Varint"
	case DeltaVarint:
		return "DeltaVarint"
	case FrameOfReference:
		return "FrameOfReference"
	case Dictionary:
		return "Dictionary"
	case RLE:
		return "RLE"
	case Bitmap:
		return "Bitmap"
	case Entropy:
		return "Entropy"
	case XORFloat:
		return "XORFloat"
	default:
		return "Unknown"
	}
}

// Applicable reports whether encoding e is legal for a column of type tag,
// per the "applies to" column of the spec §4.B table.
func Applicable(e Encoding, tag schema.Tag) bool {
	switch e {
	case Raw, RLE, Entropy:
		return true
	case Varint, DeltaVarint, FrameOfReference:
		return tag == schema.TagInt
	case Dictionary:
		// Every string-carried tag: extended types are advisory and keep
		// their original text (spec §3), so Timestamp/Date/Time/Decimal
		// columns dictionary-encode the same way plain strings do.
		return tag == schema.TagString || tag == schema.TagUUID ||
			tag == schema.TagTimestamp || tag == schema.TagDate ||
			tag == schema.TagTime || tag == schema.TagDecimal
	case Bitmap:
		return tag == schema.TagBool
	case XORFloat:
		return tag == schema.TagFloat
	default:
		return false
	}
}

// Encode serializes values (already stripped of nulls, in row order) using
// encoding e for columns of type tag.
func Encode(e Encoding, tag schema.Tag, values []value.Value) ([]byte, error) {
	switch e {
	case Raw:
		return encodeRaw(tag, values)
	case Varint:
		return encodeVarintColumn(values)
	case DeltaVarint:
		return encodeDelta(values)
	case FrameOfReference:
		return encodeFOR(values)
	case Dictionary:
		return encodeDictionary(values)
	case RLE:
		return encodeRLE(tag, values)
	case Bitmap:
		return encodeBitmapColumn(values)
	case Entropy:
		return encodeEntropy(tag, values)
	case XORFloat:
		return encodeXORFloat(values)
	default:
		return nil, fmt.Errorf("%w: encoding %d", errs.ErrUnsupportedEncoding, e)
	}
}

// Decode reverses Encode, reconstructing count values of type tag.
func Decode(e Encoding, tag schema.Tag, data []byte, count int) ([]value.Value, error) {
	switch e {
	case Raw:
		return decodeRaw(tag, data, count)
	case Varint:
		return decodeVarintColumn(data, count)
	case DeltaVarint:
		return decodeDelta(data, count)
	case FrameOfReference:
		return decodeFOR(data, count)
	case Dictionary:
		return decodeDictionary(data, count)
	case RLE:
		return decodeRLE(tag, data, count)
	case Bitmap:
		return decodeBitmapColumn(data, count)
	case Entropy:
		return decodeEntropy(tag, data, count)
	case XORFloat:
		return decodeXORFloat(data, count)
	default:
		return nil, fmt.Errorf("%w: encoding %d", errs.ErrUnsupportedEncoding, e)
	}
}
