package entropy_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SylphxAI/flux/entropy"
)

func skewedData(n int) []byte {
	out := make([]byte, n)
	r := rand.New(rand.NewSource(1))
	for i := range out {
		switch {
		case r.Intn(100) < 70:
			out[i] = 'a'
		case r.Intn(100) < 50:
			out[i] = 'b'
		default:
			out[i] = byte('c' + r.Intn(5))
		}
	}

	return out
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	data := skewedData(2000)

	enc, err := entropy.Encode(data)
	require.NoError(t, err)

	out, err := entropy.Decode(enc.Header, enc.Bitstream, enc.Length)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, out))
}

func TestEncodeDecodeSingleSymbolShortcut(t *testing.T) {
	data := bytes.Repeat([]byte{'x'}, 500)

	enc, err := entropy.Encode(data)
	require.NoError(t, err)
	assert.True(t, enc.Header.SingleSymbol)

	out, err := entropy.Decode(enc.Header, enc.Bitstream, enc.Length)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, out))
}

func TestEncodeDecodeWideAlphabet(t *testing.T) {
	// Every byte value present, moderately skewed toward low symbols, so
	// the normalized table carries all 256 symbols and rounding drift in
	// normalization must be corrected without dropping any of them.
	r := rand.New(rand.NewSource(7))
	data := make([]byte, 8192)
	for i := range data {
		if r.Intn(3) == 0 {
			data[i] = byte(r.Intn(16))
		} else {
			data[i] = byte(r.Intn(256))
		}
	}
	for i := 0; i < 256; i++ {
		data[i] = byte(i)
	}

	enc, err := entropy.Encode(data)
	require.NoError(t, err)
	require.False(t, enc.Header.SingleSymbol)

	out, err := entropy.Decode(enc.Header, enc.Bitstream, enc.Length)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, out))
}

func TestWrapUnwrapRoundTrip(t *testing.T) {
	data := skewedData(1500)

	wrapped, err := entropy.WrapBytes(data)
	require.NoError(t, err)

	out, err := entropy.UnwrapBytes(wrapped)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, out))
}

func TestHeaderRoundTrip(t *testing.T) {
	data := skewedData(1000)
	enc, err := entropy.Encode(data)
	require.NoError(t, err)

	buf := entropy.AppendHeader(nil, enc.Header)
	h, n, err := entropy.ParseHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, enc.Header.TableSize, h.TableSize)
	assert.Equal(t, enc.Header.InitialState, h.InitialState)
	assert.Equal(t, enc.Header.Freqs, h.Freqs)
}

func TestShouldApplyRejectsSmallInput(t *testing.T) {
	assert.False(t, entropy.ShouldApply(bytes.Repeat([]byte{1, 2, 3}, 10)))
}

func TestShouldApplyRejectsUniformInput(t *testing.T) {
	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(i % 256)
	}
	assert.False(t, entropy.ShouldApply(data))
}

func TestShouldApplyAcceptsSkewedInput(t *testing.T) {
	assert.True(t, entropy.ShouldApply(skewedData(1000)))
}
