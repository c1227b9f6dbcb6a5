package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SylphxAI/flux/frame"
	"github.com/SylphxAI/flux/session"
)

func roundTrip(t *testing.T, s *session.Session, in string) string {
	t.Helper()

	encoded, err := s.Compress([]byte(in))
	require.NoError(t, err)

	decoded, err := s.Decompress(encoded)
	require.NoError(t, err)

	return string(decoded)
}

func TestCompressDecompressSingleObject(t *testing.T) {
	enc := session.New()
	dec := session.New()

	encoded, err := enc.Compress([]byte(`{"id":1,"name":"bob","active":true}`))
	require.NoError(t, err)

	out, err := dec.Decompress(encoded)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"bob","active":true}`, string(out))
}

func TestCompressDecompressColumnarArray(t *testing.T) {
	enc := session.New()
	dec := session.New()

	input := `[{"id":1,"score":1.5},{"id":2,"score":2.5},{"id":3,"score":3.5},{"id":4,"score":4.5}]`

	encoded, err := enc.Compress([]byte(input))
	require.NoError(t, err)

	f, err := frame.Parse(encoded)
	require.NoError(t, err)
	assert.True(t, f.Flags.Has(frame.FlagColumnar))

	out, err := dec.Decompress(encoded)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(out))
}

func TestCompressDecompressScalarArray(t *testing.T) {
	enc := session.New()
	dec := session.New()

	input := `[1,2,3,4,5]`

	encoded, err := enc.Compress([]byte(input))
	require.NoError(t, err)

	out, err := dec.Decompress(encoded)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(out))
}

func TestCompressDecompressFallbackScalar(t *testing.T) {
	enc := session.New()
	dec := session.New()

	for _, in := range []string{`42`, `"hello"`, `null`, `[]`} {
		encoded, err := enc.Compress([]byte(in))
		require.NoError(t, err)

		f, err := frame.Parse(encoded)
		require.NoError(t, err)
		assert.Equal(t, uint32(0), f.SchemaID)

		out, err := dec.Decompress(encoded)
		require.NoError(t, err)
		assert.JSONEq(t, in, string(out))
	}
}

func TestSecondMessageReusesCachedSchema(t *testing.T) {
	enc := session.New()
	dec := session.New()

	first, err := enc.Compress([]byte(`{"id":1,"name":"a"}`))
	require.NoError(t, err)
	f1, err := frame.Parse(first)
	require.NoError(t, err)
	assert.True(t, f1.Flags.Has(frame.FlagSchemaIncluded))

	second, err := enc.Compress([]byte(`{"id":2,"name":"b"}`))
	require.NoError(t, err)
	f2, err := frame.Parse(second)
	require.NoError(t, err)
	assert.False(t, f2.Flags.Has(frame.FlagSchemaIncluded))
	assert.Equal(t, f1.SchemaID, f2.SchemaID)

	_, err = dec.Decompress(first)
	require.NoError(t, err)
	out, err := dec.Decompress(second)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":2,"name":"b"}`, string(out))

	assert.Equal(t, uint64(1), enc.Stats().CacheHits)
}

func TestStringDictionaryIsReusedAcrossMessages(t *testing.T) {
	enc := session.New(session.WithColumnar(false))
	dec := session.New(session.WithColumnar(false))

	msgs := []string{
		`{"tag":"alpha"}`,
		`{"tag":"alpha"}`,
		`{"tag":"beta"}`,
	}

	for _, m := range msgs {
		encoded, err := enc.Compress([]byte(m))
		require.NoError(t, err)

		out, err := dec.Decompress(encoded)
		require.NoError(t, err)
		assert.JSONEq(t, m, string(out))
	}

	assert.GreaterOrEqual(t, enc.Stats().DictionaryEntries, 2)
	assert.Equal(t, enc.Stats().DictionaryEntries, dec.Stats().DictionaryEntries)
}

func TestSessionStateProgression(t *testing.T) {
	s := session.New()
	assert.Equal(t, session.Fresh, s.State())

	for i := 0; i < 20; i++ {
		_, err := s.Compress([]byte(`{"n":1}`))
		require.NoError(t, err)
	}

	assert.Equal(t, session.Steady, s.State())
}

func TestResetClearsLearnedState(t *testing.T) {
	s := session.New()
	_, err := s.Compress([]byte(`{"id":1}`))
	require.NoError(t, err)
	assert.NotEqual(t, session.Fresh, s.State())

	s.Reset()
	assert.Equal(t, session.Fresh, s.State())
	assert.Equal(t, 0, s.Stats().SchemasCached)
}

func TestDestroyRejectsFurtherUse(t *testing.T) {
	s := session.New()
	s.Destroy()

	_, err := s.Compress([]byte(`{"id":1}`))
	assert.Error(t, err)
}

func TestSchemaCacheEvictionSurfacesOnWire(t *testing.T) {
	enc := session.New(session.WithSchemaCacheCap(2))
	dec := session.New(session.WithSchemaCacheCap(2))

	msgs := []string{
		`{"a":1}`,
		`{"b":"x"}`,
		`{"c":true}`, // third distinct schema: evicts the LRU entry
	}

	for i, m := range msgs {
		encoded, err := enc.Compress([]byte(m))
		require.NoError(t, err)

		out, err := dec.Decompress(encoded)
		require.NoError(t, err)
		assert.JSONEq(t, m, string(out), "message %d", i)
	}

	assert.Equal(t, uint64(1), enc.Stats().SchemaEvictions)
	assert.Equal(t, 2, enc.Stats().SchemasCached)

	// The evicted schema registers afresh under a new id, definition
	// included, and still round-trips.
	encoded, err := enc.Compress([]byte(`{"a":2}`))
	require.NoError(t, err)

	f, err := frame.Parse(encoded)
	require.NoError(t, err)
	assert.True(t, f.Flags.Has(frame.FlagSchemaIncluded))

	out, err := dec.Decompress(encoded)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(out))
}

func TestNullableFieldRoundTrips(t *testing.T) {
	s := session.New()

	_, err := s.Compress([]byte(`{"id":1,"nick":"x"}`))
	require.NoError(t, err)

	out := roundTrip(t, s, `{"id":2,"nick":null}`)
	assert.JSONEq(t, `{"id":2,"nick":null}`, out)
}
