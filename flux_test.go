package flux_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SylphxAI/flux"
	"github.com/SylphxAI/flux/session"
	"github.com/SylphxAI/flux/stream"
)

// TestNewDefaultSessionRoundTrip verifies the top-level wrapper produces a
// working Session with the documented defaults.
func TestNewDefaultSessionRoundTrip(t *testing.T) {
	sess := flux.NewDefaultSession()

	out, err := sess.Compress([]byte(`{"id":1,"name":"alice"}`))
	require.NoError(t, err)
	require.NotEmpty(t, out)

	got, err := sess.Decompress(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"alice"}`, string(got))
}

// TestNewSessionAppliesOptions verifies options passed through NewSession
// reach the underlying Session.
func TestNewSessionAppliesOptions(t *testing.T) {
	sess := flux.NewSession(session.WithEntropy(false), session.WithColumnar(false))

	out, err := sess.Compress([]byte(`{"a":1}`))
	require.NoError(t, err)

	got, err := sess.Decompress(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got))
}

// TestOneShotCompressDecompress verifies the one-shot convenience wrappers
// round-trip a single self-contained message.
func TestOneShotCompressDecompress(t *testing.T) {
	out, err := flux.Compress([]byte(`{"x":1,"y":"z"}`))
	require.NoError(t, err)

	got, err := flux.Decompress(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1,"y":"z"}`, string(got))
}

// TestNewStreamWrapsSession verifies the top-level Stream wrapper produces
// a working sender/receiver pair against independently constructed
// Sessions.
func TestNewStreamWrapsSession(t *testing.T) {
	sender := flux.NewStream(flux.NewDefaultSession())
	receiver := flux.NewStream(flux.NewDefaultSession())

	first, err := sender.Update([]byte(`{"count":0}`))
	require.NoError(t, err)

	got, err := receiver.Receive(first)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":0}`, string(got))

	second, err := sender.Update([]byte(`{"count":1}`))
	require.NoError(t, err)

	got, err = receiver.Receive(second)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":1}`, string(got))
}

// TestNewStreamAppliesOptions verifies stream.Option values passed through
// NewStream reach the underlying Stream, here disabling delta mode so
// every update is a full sync.
func TestNewStreamAppliesOptions(t *testing.T) {
	s := flux.NewStream(flux.NewDefaultSession(), stream.WithDelta(false))

	_, err := s.Update([]byte(`{"a":1}`))
	require.NoError(t, err)

	_, err = s.Update([]byte(`{"a":2}`))
	require.NoError(t, err)

	stats := s.Stats()
	assert.Equal(t, uint64(2), stats.FullSends)
	assert.Equal(t, uint64(0), stats.DeltaSends)
}
