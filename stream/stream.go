package stream

import (
	"encoding/binary"
	"fmt"

	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/frame"
	"github.com/SylphxAI/flux/session"
	"github.com/SylphxAI/flux/value"
	"github.com/SylphxAI/flux/varint"
)

// Message types carried in a stream frame's payload (spec §6 "Delta
// message body").
const (
	MsgDelta    byte = 0x01
	MsgFullSync byte = 0x02
	MsgReset    byte = 0x03
)

// Stats reports a Stream's cumulative send-side counters (spec §6).
type Stats struct {
	UpdatesSent uint64
	FullSends   uint64
	DeltaSends  uint64
	BytesFull   uint64
	BytesDelta  uint64
}

// DeltaEfficiency compares average delta size against average full-sync
// size as a savings fraction in [0,1]; 0 before both kinds have been sent.
func (s Stats) DeltaEfficiency() float64 {
	if s.FullSends == 0 || s.DeltaSends == 0 {
		return 0
	}

	avgFull := float64(s.BytesFull) / float64(s.FullSends)
	avgDelta := float64(s.BytesDelta) / float64(s.DeltaSends)

	if avgFull == 0 {
		return 0
	}

	eff := 1 - avgDelta/avgFull
	if eff < 0 {
		return 0
	}

	return eff
}

// Stream wraps a Session with the delta/patch protocol of spec §4.J: each
// Update diffs against the last accepted state and emits either a compact
// op list or a full resync through the wrapped Session's own encoder,
// matching spec §4 data flow ("Stream (J) wraps Session (I)").
type Stream struct {
	sess *session.Session
	// estimator mirrors sess's configuration but never contributes frames
	// to the wire: it exists so Update can measure what a full sync WOULD
	// cost without mutating the paired session's schema cache or string
	// dictionary for a frame the peer never receives. The paired caches
	// must stay in lockstep with the frames actually sent (spec I1).
	estimator *session.Session
	cfg       Config
	hasPrev   bool
	prevValue value.Value
	prevHash  uint64
	stats     Stats
}

// New wraps sess in a Stream. sess is used verbatim for full-sync bodies,
// so its schema cache and dictionary accumulate state across stream
// messages the same way they would for direct Session use.
func New(sess *session.Session, opts ...Option) *Stream {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Stream{
		sess:      sess,
		estimator: session.New(session.WithConfig(sess.Config())),
		cfg:       cfg,
	}
}

// Stats returns a snapshot of the Stream's cumulative counters.
func (s *Stream) Stats() Stats { return s.stats }

// Reset clears the Stream's prior-state tracking (spec §6 "reset") without
// touching the wrapped Session's schema cache or dictionary; callers
// wanting a full reset should also call Session.Reset.
func (s *Stream) Reset() {
	s.hasPrev = false
	s.prevValue = value.Value{}
	s.prevHash = 0
	s.stats = Stats{}
	s.estimator.Reset()
}

// Destroy releases the Stream and its wrapped Session (spec §6 "destroy").
func (s *Stream) Destroy() {
	s.sess.Destroy()
	s.estimator.Destroy()
	s.hasPrev = false
}

// Update encodes the transition from the Stream's last accepted state to
// data's state (spec §4.J sender algorithm): delta when cheap enough and
// enabled, otherwise a full sync via the wrapped Session.
func (s *Stream) Update(data []byte) ([]byte, error) {
	v, err := value.Parse(data)
	if err != nil {
		return nil, err
	}

	newHash := value.StateHash(v)

	msgType := MsgFullSync
	var body []byte

	if s.hasPrev && s.cfg.Delta {
		ops := Diff(s.prevValue, v)
		opsBytes := EncodeOps(ops)

		// The estimator session stands in for the real one here so the
		// size probe doesn't register schemas or dictionary entries the
		// peer will never see when the delta wins.
		estimate, err := s.estimator.Compress(data)
		if err != nil {
			return nil, err
		}

		if float64(len(opsBytes)) < DeltaSizeThreshold*float64(len(estimate)) {
			msgType = MsgDelta
			body = opsBytes
		} else {
			full, err := s.sess.Compress(data)
			if err != nil {
				return nil, err
			}

			body = appendLenPrefixed(nil, full)
		}
	} else {
		full, err := s.sess.Compress(data)
		if err != nil {
			return nil, err
		}

		body = appendLenPrefixed(nil, full)
	}

	payload := make([]byte, 0, 17+len(body))
	payload = append(payload, msgType)
	payload = appendU64(payload, s.prevHash)
	payload = appendU64(payload, newHash)
	payload = append(payload, body...)

	flags := frame.FlagStreaming | frame.FlagDeltaMessage
	if s.cfg.Checksum {
		flags |= frame.FlagChecksum
	}

	out, err := frame.Write(flags, 0, payload)
	if err != nil {
		return nil, err
	}

	s.prevValue = v
	s.prevHash = newHash
	s.hasPrev = true

	s.stats.UpdatesSent++
	if msgType == MsgDelta {
		s.stats.DeltaSends++
		s.stats.BytesDelta += uint64(len(out))
	} else {
		s.stats.FullSends++
		s.stats.BytesFull += uint64(len(out))
	}

	return out, nil
}

// Receive applies an incoming stream frame and returns the reconstructed
// state as canonical JSON, or errs.ErrStateDesync if the message's
// base_hash doesn't match this Stream's last accepted state (spec §4.J
// receiver algorithm, P9: state is left unchanged on desync).
func (s *Stream) Receive(data []byte) ([]byte, error) {
	f, err := frame.Parse(data)
	if err != nil {
		return nil, err
	}

	if !f.Flags.Has(frame.FlagDeltaMessage) {
		return nil, fmt.Errorf("%w: not a stream message", errs.ErrDecodeError)
	}

	if len(f.Payload) < 17 {
		return nil, fmt.Errorf("%w: truncated stream payload", errs.ErrDecodeError)
	}

	msgType := f.Payload[0]
	baseHash := binary.LittleEndian.Uint64(f.Payload[1:9])
	newHash := binary.LittleEndian.Uint64(f.Payload[9:17])
	body := f.Payload[17:]

	switch msgType {
	case MsgReset:
		s.Reset()

		return nil, nil
	case MsgFullSync:
		return s.receiveFullSync(body, newHash)
	case MsgDelta:
		return s.receiveDelta(body, baseHash, newHash)
	default:
		return nil, fmt.Errorf("%w: unknown stream msg type %d", errs.ErrDecodeError, msgType)
	}
}

func (s *Stream) receiveFullSync(body []byte, newHash uint64) ([]byte, error) {
	frameBytes, _, err := readLenPrefixed(body)
	if err != nil {
		return nil, err
	}

	canon, err := s.sess.Decompress(frameBytes)
	if err != nil {
		return nil, err
	}

	v, err := value.Parse(canon)
	if err != nil {
		return nil, err
	}

	s.prevValue = v
	s.prevHash = newHash
	s.hasPrev = true

	return canon, nil
}

func (s *Stream) receiveDelta(body []byte, baseHash, newHash uint64) ([]byte, error) {
	if !s.hasPrev || baseHash != s.prevHash {
		return nil, errs.ErrStateDesync
	}

	ops, err := DecodeOps(body)
	if err != nil {
		return nil, err
	}

	next, err := Apply(s.prevValue, ops)
	if err != nil {
		return nil, err
	}

	if value.StateHash(next) != newHash {
		return nil, errs.ErrStateDesync
	}

	s.prevValue = next
	s.prevHash = newHash

	return value.CanonicalJSON(next), nil
}

func appendU64(dst []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)

	return append(dst, buf[:]...)
}

func appendLenPrefixed(dst, data []byte) []byte {
	dst = varint.AppendUvarint(dst, uint64(len(data)))

	return append(dst, data...)
}

func readLenPrefixed(data []byte) ([]byte, int, error) {
	l, n, err := varint.Uvarint(data, false)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
	}

	if uint64(len(data)-n) < l {
		return nil, 0, fmt.Errorf("%w: truncated length-prefixed block", errs.ErrDecodeError)
	}

	return data[n : n+int(l)], n + int(l), nil
}
