package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SylphxAI/flux/value"
)

func TestParseRoundTripCanonical(t *testing.T) {
	inputs := []string{
		`null`,
		`true`,
		`false`,
		`42`,
		`-17`,
		`3.14`,
		`"hello\nworld"`,
		`[]`,
		`[1,2,3]`,
		`{"id":1,"name":"alice"}`,
		`{"a":{"b":{"c":[1,2,{"d":null}]}}}`,
	}

	for _, in := range inputs {
		v, err := value.Parse([]byte(in))
		require.NoError(t, err, in)

		v2, err := value.Parse(value.CanonicalJSON(v))
		require.NoError(t, err)
		assert.True(t, value.Equal(v, v2), "round trip mismatch for %s", in)
	}
}

func TestParsePreservesKeyOrder(t *testing.T) {
	v, err := value.Parse([]byte(`{"z":1,"a":2,"m":3}`))
	require.NoError(t, err)

	require.Len(t, v.Members, 3)
	assert.Equal(t, "z", v.Members[0].Name)
	assert.Equal(t, "a", v.Members[1].Name)
	assert.Equal(t, "m", v.Members[2].Name)
}

func TestParseDistinguishesIntFromFloat(t *testing.T) {
	v, err := value.Parse([]byte(`[1, 1.0, 1.5]`))
	require.NoError(t, err)

	require.Len(t, v.Array, 3)
	assert.Equal(t, value.KindInt, v.Array[0].Kind)
	assert.Equal(t, value.KindFloat, v.Array[1].Kind)
	assert.Equal(t, value.KindFloat, v.Array[2].Kind)
}

func TestParseRejectsExcessiveNesting(t *testing.T) {
	deep := make([]byte, 0, value.MaxNestingDepth*2+4)
	for i := 0; i < value.MaxNestingDepth+2; i++ {
		deep = append(deep, '[')
	}
	for i := 0; i < value.MaxNestingDepth+2; i++ {
		deep = append(deep, ']')
	}

	_, err := value.Parse(deep)
	require.Error(t, err)
}

func TestStateHashDeterministic(t *testing.T) {
	v1, _ := value.Parse([]byte(`{"a":1,"b":[1,2,3]}`))
	v2, _ := value.Parse([]byte(`{"a":1,"b":[1,2,3]}`))
	v3, _ := value.Parse([]byte(`{"a":2,"b":[1,2,3]}`))

	assert.Equal(t, value.StateHash(v1), value.StateHash(v2))
	assert.NotEqual(t, value.StateHash(v1), value.StateHash(v3))
}
