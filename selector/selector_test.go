package selector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SylphxAI/flux/column"
	"github.com/SylphxAI/flux/schema"
	"github.com/SylphxAI/flux/selector"
	"github.com/SylphxAI/flux/value"
)

func ints(vs ...int64) []value.Value {
	out := make([]value.Value, len(vs))
	for i, v := range vs {
		out[i] = value.NewInt(v)
	}

	return out
}

func TestSelectPrefersDeltaForMonotonicIDs(t *testing.T) {
	vals := ints(1000, 1001, 1002, 1003, 1004, 1005, 1006, 1007)
	dec, err := selector.Select(schema.TagInt, vals, true)
	require.NoError(t, err)
	assert.Contains(t, []column.Encoding{column.DeltaVarint, column.FrameOfReference}, dec.Encoding)

	decoded, err := column.Decode(dec.Encoding, schema.TagInt, dec.EncodedBytes, len(vals))
	require.NoError(t, err)
	for i, v := range vals {
		assert.Equal(t, v.Int, decoded[i].Int)
	}
}

func TestSelectIsDeterministic(t *testing.T) {
	vals := ints(5, 5, 5, 5, 5, 5, 9, 9)
	d1, err := selector.Select(schema.TagInt, vals, true)
	require.NoError(t, err)
	d2, err := selector.Select(schema.TagInt, vals, true)
	require.NoError(t, err)
	assert.Equal(t, d1.Encoding, d2.Encoding)
	assert.Equal(t, d1.FinalBytes, d2.FinalBytes)
}

func TestSelectBoolUsesBitmapOrRaw(t *testing.T) {
	vals := []value.Value{value.NewBool(true), value.NewBool(false), value.NewBool(true), value.NewBool(true)}
	dec, err := selector.Select(schema.TagBool, vals, true)
	require.NoError(t, err)
	assert.Contains(t, []column.Encoding{column.Bitmap, column.Raw}, dec.Encoding)
}

func TestSelectEntropyDisabledNeverWraps(t *testing.T) {
	vals := ints(1, 1, 1, 1, 1, 1, 1, 1)
	dec, err := selector.Select(schema.TagInt, vals, false)
	require.NoError(t, err)
	assert.False(t, dec.UseEntropy)
	assert.Equal(t, dec.EncodedBytes, dec.FinalBytes)
}
