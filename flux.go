// Package flux provides a schema-aware binary compression format for
// streams of similarly-shaped JSON messages.
//
// Flux is optimized for scenarios where many JSON messages share the same
// field layout (API responses, event streams, telemetry payloads): it
// infers a schema from the messages it sees, caches it, and thereafter
// transmits only field values, encoded per-column with the cheapest
// encoding that fits the data, instead of repeating field names and JSON
// punctuation on every message.
//
// # Core Features
//
//   - Schema inference and caching across a session, so repeat shapes
//     cost only a small schema-id reference
//   - Columnar encoding for arrays of homogeneous objects, with per-field
//     encoding selection (raw, delta, dictionary, bit-pack, entropy)
//   - An opaque byte-codec fallback for payloads with no useful schema
//   - A delta/patch protocol (package stream) for long-lived state that
//     changes incrementally, falling back to a full resync when that is
//     cheaper
//   - CRC32C frame checksums and a compact binary header shared by every
//     message
//
// # Basic Usage
//
// Compressing a stream of same-shaped JSON objects:
//
//	sess := flux.NewSession()
//	for _, msg := range messages {
//	    frame, err := sess.Compress(msg)
//	    // send frame
//	}
//
// Decompressing on the other end, against a Session with matching
// configuration:
//
//	sess := flux.NewSession()
//	for _, frame := range frames {
//	    msg, err := sess.Decompress(frame)
//	    // msg is canonical JSON
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the session
// and stream packages, simplifying the most common use cases. For
// advanced usage and fine-grained control — direct access to the schema
// cache, column codecs, or the frame format — use those packages
// directly.
package flux

import (
	"github.com/SylphxAI/flux/analyze"
	"github.com/SylphxAI/flux/session"
	"github.com/SylphxAI/flux/stream"
)

// NewSession creates a new compression Session with custom options.
//
// This is the most flexible factory function, allowing full control over
// which stages of the pipeline run. Use this when you need to disable
// columnar encoding, entropy coding, or checksums, or to install a custom
// byte codec for the schema-less fallback path.
//
// Parameters:
//   - opts: Optional configuration functions (see session.Option)
//
// Returns:
//   - *session.Session: The created session.
//
// Available options:
//   - session.WithColumnar(bool)
//   - session.WithEntropy(bool)
//   - session.WithChecksum(bool)
//   - session.WithDictionaryCap(int)
//   - session.WithSchemaCacheCap(int)
//   - session.WithByteCodec(bytecodec.Codec)
//
// Example:
//
//	sess := flux.NewSession(session.WithEntropy(false))
func NewSession(opts ...session.Option) *session.Session {
	return session.New(opts...)
}

// NewDefaultSession creates a Session with the spec's documented
// defaults: columnar encoding, entropy coding, and checksums all
// enabled, and the standard dictionary cap.
//
// Use this when:
//   - You want the documented defaults without manual tuning
//   - You're compressing a typical stream of JSON messages
//
// Example:
//
//	sess := flux.NewDefaultSession()
//	out, err := sess.Compress(msg)
func NewDefaultSession() *session.Session {
	return session.New()
}

// NewStream wraps an existing Session with the delta/patch protocol,
// tracking a sender or receiver's last accepted state so subsequent
// updates can be sent as compact op lists instead of full messages.
//
// Use this for long-lived state — a document, a session object, a
// dashboard's live counters — that changes incrementally over many
// updates, rather than one-shot message compression.
//
// Parameters:
//   - sess: the Session used for full-sync bodies and schema caching
//   - opts: Optional configuration functions (see stream.Option)
//
// Available options:
//   - stream.WithDelta(bool)
//   - stream.WithChecksum(bool)
//
// Example:
//
//	s := flux.NewStream(flux.NewDefaultSession())
//	out, err := s.Update(currentState)
func NewStream(sess *session.Session, opts ...stream.Option) *stream.Stream {
	return stream.New(sess, opts...)
}

// Compress is a convenience one-shot wrapper that encodes a single JSON
// message with a fresh, default-configured Session.
//
// Because the Session is discarded after one message, no schema caching
// or dictionary reuse carries across calls; callers compressing more
// than one message should keep a Session (NewSession / NewDefaultSession)
// across calls instead, or the schema and dictionary savings this format
// is built around are lost on every message.
//
// Example:
//
//	out, err := flux.Compress([]byte(`{"id":1,"name":"alice"}`))
func Compress(data []byte) ([]byte, error) {
	return session.New().Compress(data)
}

// Decompress is a convenience one-shot wrapper that decodes a single
// frame produced by Compress.
//
// It only succeeds for frames whose schema, if any, is self-contained
// (FlagSchemaIncluded set) — exactly what Compress produces, since its
// Session never accumulates a cache across calls. Frames produced by a
// longer-lived Session that omit the schema (because it was already
// cached) cannot be decoded this way; use a matching Session instead.
//
// Example:
//
//	msg, err := flux.Decompress(out)
func Decompress(data []byte) ([]byte, error) {
	return session.New().Decompress(data)
}

// Recommend samples a payload and the traffic pattern it recurs in
// (summed distinct-key bytes and an estimated message count for that
// shape) and recommends whether a stateful Session or a plain byte codec
// (package bytecodec) is the better fit, per spec §4.K's algorithm
// selector. It never changes behavior on its own: callers decide what to
// do with the recommendation.
//
// Use this when deciding, ahead of time, whether a given traffic shape is
// worth the stateful session's schema cache and dictionary at all — e.g.
// one-off or already-compact payloads are often cheaper through a plain
// byte codec.
//
// Example:
//
//	switch flux.Recommend(sample, keyBytes, expectedMessages) {
//	case analyze.UseSession:
//	    sess := flux.NewDefaultSession()
//	default:
//	    // fall back to a bytecodec.Codec directly
//	}
func Recommend(payload []byte, keyBytes, messageCount int) analyze.Recommendation {
	return analyze.Analyze(payload, keyBytes, messageCount)
}
