package column_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SylphxAI/flux/column"
	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/schema"
	"github.com/SylphxAI/flux/value"
)

func ints(vs ...int64) []value.Value {
	out := make([]value.Value, len(vs))
	for i, v := range vs {
		out[i] = value.NewInt(v)
	}

	return out
}

func floats(vs ...float64) []value.Value {
	out := make([]value.Value, len(vs))
	for i, v := range vs {
		out[i] = value.NewFloat(v)
	}

	return out
}

func strs(vs ...string) []value.Value {
	out := make([]value.Value, len(vs))
	for i, v := range vs {
		out[i] = value.NewString(v)
	}

	return out
}

func roundTrip(t *testing.T, e column.Encoding, tag schema.Tag, vals []value.Value) []value.Value {
	t.Helper()

	encoded, err := column.Encode(e, tag, vals)
	require.NoError(t, err)

	decoded, err := column.Decode(e, tag, encoded, len(vals))
	require.NoError(t, err)
	require.Len(t, decoded, len(vals))

	return decoded
}

func TestRawIntRoundTrip(t *testing.T) {
	vals := ints(0, 1, -1, 127, 128, -128, 1<<40, -(1 << 40))
	decoded := roundTrip(t, column.Raw, schema.TagInt, vals)
	for i, v := range vals {
		assert.Equal(t, v.Int, decoded[i].Int)
	}
}

func TestRawFloatRoundTrip(t *testing.T) {
	vals := floats(0, 1.5, -2.25, 3.14159, 1e300, -1e-300)
	decoded := roundTrip(t, column.Raw, schema.TagFloat, vals)
	for i, v := range vals {
		assert.Equal(t, v.Float, decoded[i].Float)
	}
}

func TestRawStringRoundTrip(t *testing.T) {
	vals := strs("", "a", "hello world", "héllo", "line\nbreak")
	decoded := roundTrip(t, column.Raw, schema.TagString, vals)
	for i, v := range vals {
		assert.Equal(t, v.Str, decoded[i].Str)
	}
}

func TestRawTimestampKeepsOriginalText(t *testing.T) {
	vals := strs("2024-01-02T03:04:05Z", "2024-01-02T03:04:05.123Z")
	decoded := roundTrip(t, column.Raw, schema.TagTimestamp, vals)
	for i, v := range vals {
		assert.Equal(t, v.Str, decoded[i].Str)
	}
}

func TestRawNestedObjectRoundTrip(t *testing.T) {
	inner := value.NewObject([]value.Member{
		{Name: "x", Value: value.NewInt(1)},
		{Name: "y", Value: value.NewString("two")},
	})
	vals := []value.Value{
		inner,
		value.NewArray([]value.Value{value.NewInt(1), value.NewBool(true)}),
	}

	encoded, err := column.Encode(column.Raw, schema.TagObject, vals)
	require.NoError(t, err)

	decoded, err := column.Decode(column.Raw, schema.TagObject, encoded, len(vals))
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.True(t, value.Equal(vals[0], decoded[0]))
	assert.True(t, value.Equal(vals[1], decoded[1]))
}

func TestVarintColumnRoundTrip(t *testing.T) {
	vals := ints(0, 127, 128, 16383, 16384, -1, -300)
	decoded := roundTrip(t, column.Varint, schema.TagInt, vals)
	for i, v := range vals {
		assert.Equal(t, v.Int, decoded[i].Int)
	}
}

func TestDeltaVarintRoundTrip(t *testing.T) {
	vals := ints(1000, 1001, 1002, 1000, 900, -50, 1<<50)
	decoded := roundTrip(t, column.DeltaVarint, schema.TagInt, vals)
	for i, v := range vals {
		assert.Equal(t, v.Int, decoded[i].Int)
	}
}

func TestDeltaVarintMonotonicIsCompact(t *testing.T) {
	vals := make([]value.Value, 100)
	for i := range vals {
		vals[i] = value.NewInt(int64(1_000_000 + i))
	}

	encoded, err := column.Encode(column.DeltaVarint, schema.TagInt, vals)
	require.NoError(t, err)
	// first value is a few bytes, each delta of 1 is a single byte
	assert.Less(t, len(encoded), 110)
}

func TestFrameOfReferenceRoundTrip(t *testing.T) {
	vals := ints(500, 501, 510, 505, 507, 503)
	decoded := roundTrip(t, column.FrameOfReference, schema.TagInt, vals)
	for i, v := range vals {
		assert.Equal(t, v.Int, decoded[i].Int)
	}
}

func TestFrameOfReferenceNegativeValues(t *testing.T) {
	vals := ints(-100, -90, -110, -95)
	decoded := roundTrip(t, column.FrameOfReference, schema.TagInt, vals)
	for i, v := range vals {
		assert.Equal(t, v.Int, decoded[i].Int)
	}
}

func TestFrameOfReferenceAllEqual(t *testing.T) {
	vals := ints(42, 42, 42, 42)
	decoded := roundTrip(t, column.FrameOfReference, schema.TagInt, vals)
	for i, v := range vals {
		assert.Equal(t, v.Int, decoded[i].Int)
	}
}

func TestDictionaryRoundTrip(t *testing.T) {
	vals := strs("red", "green", "red", "blue", "red", "green")
	decoded := roundTrip(t, column.Dictionary, schema.TagString, vals)
	for i, v := range vals {
		assert.Equal(t, v.Str, decoded[i].Str)
	}
}

func TestDictionaryRejectsOutOfRangeIndex(t *testing.T) {
	// entry_count=1, entry "a", then index 5
	data := []byte{1, 1, 'a', 5}
	_, err := column.Decode(column.Dictionary, schema.TagString, data, 1)
	assert.ErrorIs(t, err, errs.ErrDecodeError)
}

func TestRLERoundTrip(t *testing.T) {
	vals := strs("a", "a", "a", "b", "b", "c")
	decoded := roundTrip(t, column.RLE, schema.TagString, vals)
	for i, v := range vals {
		assert.Equal(t, v.Str, decoded[i].Str)
	}
}

func TestRLEIntRoundTrip(t *testing.T) {
	vals := ints(7, 7, 7, 7, 7, 7, 7, 7, 9)
	decoded := roundTrip(t, column.RLE, schema.TagInt, vals)
	for i, v := range vals {
		assert.Equal(t, v.Int, decoded[i].Int)
	}
}

func TestRLERejectsZeroRunLength(t *testing.T) {
	data := []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	_, err := column.Decode(column.RLE, schema.TagInt, data, 1)
	assert.ErrorIs(t, err, errs.ErrDecodeError)
}

func TestBitmapColumnRoundTrip(t *testing.T) {
	vals := []value.Value{
		value.NewBool(true), value.NewBool(false), value.NewBool(true),
		value.NewBool(true), value.NewBool(false), value.NewBool(false),
		value.NewBool(true), value.NewBool(false), value.NewBool(true),
	}
	decoded := roundTrip(t, column.Bitmap, schema.TagBool, vals)
	for i, v := range vals {
		assert.Equal(t, v.Bool, decoded[i].Bool)
	}
}

func TestXORFloatRoundTrip(t *testing.T) {
	vals := floats(12.5, 12.5, 12.6, 12.7, 13.0, 12.9, 12.9)
	decoded := roundTrip(t, column.XORFloat, schema.TagFloat, vals)
	for i, v := range vals {
		assert.Equal(t, v.Float, decoded[i].Float)
	}
}

func TestXORFloatFullWidthXOR(t *testing.T) {
	// 0x3FF0000000000001 XOR 0xC000000000000000 = 0xFFF0000000000001:
	// zero leading and zero trailing zeros, so all 64 bits are meaningful
	// and the 6-bit width field wraps to 0.
	vals := floats(
		1.0000000000000002, // 0x3FF0000000000001
		-2.0,               // 0xC000000000000000
		4.9e-324,
		-4.9e-324,
	)
	decoded := roundTrip(t, column.XORFloat, schema.TagFloat, vals)
	for i, v := range vals {
		assert.Equal(t, v.Float, decoded[i].Float)
	}
}

func TestXORFloatSingleValue(t *testing.T) {
	decoded := roundTrip(t, column.XORFloat, schema.TagFloat, floats(3.25))
	assert.Equal(t, 3.25, decoded[0].Float)
}

func TestEntropyColumnRoundTrip(t *testing.T) {
	vals := make([]value.Value, 200)
	for i := range vals {
		vals[i] = value.NewString("abababab")
	}
	decoded := roundTrip(t, column.Entropy, schema.TagString, vals)
	for i, v := range vals {
		assert.Equal(t, v.Str, decoded[i].Str)
	}
}

func TestUnknownEncodingRejected(t *testing.T) {
	_, err := column.Encode(column.Encoding(0x7E), schema.TagInt, ints(1))
	assert.ErrorIs(t, err, errs.ErrUnsupportedEncoding)

	_, err = column.Decode(column.Encoding(0x7E), schema.TagInt, []byte{0}, 1)
	assert.ErrorIs(t, err, errs.ErrUnsupportedEncoding)
}

func TestApplicableGatesTypeSpecificEncodings(t *testing.T) {
	assert.True(t, column.Applicable(column.DeltaVarint, schema.TagInt))
	assert.False(t, column.Applicable(column.DeltaVarint, schema.TagTimestamp))
	assert.False(t, column.Applicable(column.XORFloat, schema.TagDecimal))
	assert.True(t, column.Applicable(column.XORFloat, schema.TagFloat))
	assert.True(t, column.Applicable(column.Dictionary, schema.TagTimestamp))
	assert.False(t, column.Applicable(column.Bitmap, schema.TagInt))
	assert.True(t, column.Applicable(column.Raw, schema.TagObject))
}

func TestNullBitmapRoundTrip(t *testing.T) {
	present := []bool{true, false, true, true, false, false, true, true, false}

	buf := column.WriteNullBitmap(nil, present)
	assert.Len(t, buf, 2)

	bits, n, err := column.ReadNullBitmap(buf, len(present))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, present, bits)
}

func TestNullBitmapTruncated(t *testing.T) {
	_, _, err := column.ReadNullBitmap([]byte{0xFF}, 16)
	assert.ErrorIs(t, err, errs.ErrDecodeError)
}

func TestRawTruncatedInputs(t *testing.T) {
	_, err := column.Decode(column.Raw, schema.TagInt, []byte{1, 2, 3}, 1)
	assert.ErrorIs(t, err, errs.ErrDecodeError)

	_, err = column.Decode(column.Raw, schema.TagString, []byte{10, 'a'}, 1)
	assert.ErrorIs(t, err, errs.ErrDecodeError)
}

func TestEmptyColumns(t *testing.T) {
	for _, enc := range []column.Encoding{
		column.Raw, column.Varint, column.DeltaVarint, column.FrameOfReference,
	} {
		encoded, err := column.Encode(enc, schema.TagInt, nil)
		require.NoError(t, err, enc.String())

		decoded, err := column.Decode(enc, schema.TagInt, encoded, 0)
		require.NoError(t, err, enc.String())
		assert.Empty(t, decoded, enc.String())
	}
}
