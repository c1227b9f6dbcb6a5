package frame_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/frame"
)

func TestWriteParseRoundTrip(t *testing.T) {
	payload := []byte("hello flux")
	raw, err := frame.Write(frame.FlagSchemaIncluded|frame.FlagChecksum, 7, payload)
	require.NoError(t, err)

	f, err := frame.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), f.SchemaID)
	assert.True(t, f.Flags.Has(frame.FlagSchemaIncluded))
	assert.True(t, f.HasChecksum())
	assert.Equal(t, payload, f.Payload)
}

func TestParseInvalidMagic(t *testing.T) {
	raw, err := frame.Write(0, 0, []byte("x"))
	require.NoError(t, err)
	raw[0] = 'Z'

	_, err = frame.Parse(raw)
	assert.ErrorIs(t, err, errs.ErrInvalidMagic)
}

func TestParseVersionMismatch(t *testing.T) {
	raw, err := frame.Write(0, 0, []byte("x"))
	require.NoError(t, err)
	raw[4] = 0xF0

	_, err = frame.Parse(raw)
	assert.ErrorIs(t, err, errs.ErrVersionMismatch)
}

func TestParseChecksumMismatch(t *testing.T) {
	raw, err := frame.Write(frame.FlagChecksum, 0, []byte("payload bytes"))
	require.NoError(t, err)
	raw[frame.HeaderSize] ^= 0xFF

	_, err = frame.Parse(raw)
	assert.ErrorIs(t, err, errs.ErrChecksumMismatch)
}

func TestWriteRejectsOversizedPayload(t *testing.T) {
	_, err := frame.Write(0, 0, make([]byte, frame.MaxFrameSize+1))
	assert.ErrorIs(t, err, errs.ErrBufferOverflow)
}

func TestParseTruncatedHeader(t *testing.T) {
	_, err := frame.Parse([]byte{'F', 'L', 'U'})
	assert.ErrorIs(t, err, errs.ErrDecodeError)
}

func TestParseNoChecksumFlag(t *testing.T) {
	raw, err := frame.Write(0, 3, []byte("abc"))
	require.NoError(t, err)

	f, err := frame.Parse(raw)
	require.NoError(t, err)
	assert.False(t, f.HasChecksum())
	assert.Equal(t, []byte("abc"), f.Payload)
}
