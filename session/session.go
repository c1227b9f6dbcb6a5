// Package session implements the core compress/decompress pipeline of
// spec §4.I: infer a schema for each JSON message, cache it, and encode
// the message either columnar (arrays of homogeneous objects) or row-wise
// (single objects, short arrays), falling back to an opaque byte codec for
// shapes with no useful schema. It plays the same role the teacher's
// blob.NumericBlobSet does for a metric stream — a single stateful type
// owning a cache, a config, and the encode/decode entry points — narrowed
// from mebo's multi-metric blob set to flux's one-schema-per-message model.
package session

import (
	"errors"
	"fmt"

	"github.com/SylphxAI/flux/bytecodec"
	"github.com/SylphxAI/flux/columnar"
	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/frame"
	"github.com/SylphxAI/flux/schema"
	"github.com/SylphxAI/flux/schemacache"
	"github.com/SylphxAI/flux/value"
	"github.com/SylphxAI/flux/varint"
)

// learningThreshold is the message count at which a Session's State moves
// from Learning to Steady (spec §4.I state machine).
const learningThreshold = 16

// flagSchemaEvicted repurposes frame's single reserved flag bit (spec §6
// marks bit 7 "reserved, must be 0") as an implementation-defined signal
// that registering this message's schema evicted another LRU schema from
// the cache. The spec names this as an externally observable effect of
// the Steady state ("forbids new schema definitions... evicts LRU") but
// does not assign it a bit; see DESIGN.md for this Open Question call.
const flagSchemaEvicted frame.Flags = 1 << 7

// errDestroyed guards a Session against use after Destroy. It is a local
// lifecycle error, not one of the wire-facing codes in package errs.
var errDestroyed = errors.New("flux: session destroyed")

// State is a Session's position in the learning state machine (spec §4.I):
// Fresh before any message, Learning while schemas are still likely to
// shift, Steady once the schema population has settled.
type State uint8

const (
	Fresh State = iota
	Learning
	Steady
)

func (st State) String() string {
	switch st {
	case Fresh:
		return "Fresh"
	case Learning:
		return "Learning"
	default:
		return "Steady"
	}
}

// Stats reports cumulative counters for introspection (spec §6 "stats").
type Stats struct {
	Messages          uint64
	BytesIn           uint64
	BytesOut          uint64
	SchemasCached     int
	CacheHits         uint64
	CacheMisses       uint64
	SchemaEvictions   uint64
	DictionaryEntries int
}

// Ratio returns BytesOut/BytesIn, or 0 before the first message.
func (s Stats) Ratio() float64 {
	if s.BytesIn == 0 {
		return 0
	}

	return float64(s.BytesOut) / float64(s.BytesIn)
}

// Session is a single-threaded, stateful JSON compressor (spec §4.I, §5).
// It owns a schema cache and string dictionary that must stay in lockstep
// with its peer's decoder — callers compressing and decompressing the same
// logical stream must use one Session per direction, matching spec §5's
// single-writer/single-reader model.
type Session struct {
	cfg       Config
	schemas   *schemacache.Cache
	dict      *stringDict
	stats     Stats
	destroyed bool
}

// New constructs a Session with the given options layered over
// DefaultConfig (spec §6).
func New(opts ...Option) *Session {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.ByteCodec == nil {
		cfg.ByteCodec = bytecodec.NewCodec(bytecodec.LevelFast)
	}

	return &Session{
		cfg:     cfg,
		schemas: schemacache.New(cfg.SchemaCacheCap),
		dict:    newStringDict(cfg.DictionaryCap),
	}
}

// Config returns a copy of the Session's configuration.
func (s *Session) Config() Config { return s.cfg }

// State reports the Session's current learning-state-machine position.
func (s *Session) State() State {
	switch {
	case s.stats.Messages == 0:
		return Fresh
	case s.stats.Messages < learningThreshold:
		return Learning
	default:
		return Steady
	}
}

// Stats returns a snapshot of the Session's cumulative counters.
func (s *Session) Stats() Stats {
	st := s.stats
	st.SchemasCached = s.schemas.Len()
	st.DictionaryEntries = len(s.dict.toID)

	return st
}

// Reset clears all learned state (schema cache, string dictionary,
// counters) while keeping Config, starting the Session over as if newly
// constructed (spec §6 "reset").
func (s *Session) Reset() {
	s.schemas = schemacache.New(s.cfg.SchemaCacheCap)
	s.dict = newStringDict(s.cfg.DictionaryCap)
	s.stats = Stats{}
}

// Destroy releases a Session's state and makes it reject further
// Compress/Decompress calls (spec §6 "destroy").
func (s *Session) Destroy() {
	s.destroyed = true
	s.schemas = nil
	s.dict = nil
}

// Compress encodes a single JSON message (spec §4.I). The input must be a
// single, complete JSON value (object, array, or scalar).
func (s *Session) Compress(data []byte) ([]byte, error) {
	if s.destroyed {
		return nil, errDestroyed
	}

	v, err := value.Parse(data)
	if err != nil {
		return nil, err
	}

	shape, rows, ok := classify(v)

	var out []byte
	if ok {
		out, err = s.compressSchema(shape, rows)
	} else {
		out, err = s.compressFallback(v)
	}
	if err != nil {
		return nil, err
	}

	s.stats.Messages++
	s.stats.BytesIn += uint64(len(data))
	s.stats.BytesOut += uint64(len(out))

	return out, nil
}

// compressFallback handles shapes with no useful schema (scalars, nulls,
// empty arrays) via the opaque byte codec (spec §1, §4.L), reserving
// schema id 0 for "no schema applies" (spec §3).
func (s *Session) compressFallback(v value.Value) ([]byte, error) {
	canon := value.CanonicalJSON(v)

	body := make([]byte, 0, len(canon)+1)

	if compressed, err := s.cfg.ByteCodec.Compress(canon); err == nil && len(compressed) > 0 && len(compressed) < len(canon) {
		body = append(body, 1)
		body = append(body, compressed...)
	} else {
		body = append(body, 0)
		body = append(body, canon...)
	}

	flags := frame.Flags(0)
	if s.cfg.Checksum {
		flags |= frame.FlagChecksum
	}

	return frame.Write(flags, 0, body)
}

// compressSchema handles shapes that map onto a field schema: infer (and
// merge across rows), register with the cache, and encode either columnar
// or row-wise.
func (s *Session) compressSchema(shape byte, rows []value.Value) ([]byte, error) {
	sch := schema.InferSchema(rows[0])
	for _, r := range rows[1:] {
		sch = schema.Merge(sch, schema.InferSchema(r))
	}

	reg, err := s.schemas.Register(*sch)
	if err != nil {
		return nil, err
	}

	if reg.NeedsDefine {
		s.stats.CacheMisses++
	} else {
		s.stats.CacheHits++
	}
	if reg.DidEvict {
		s.stats.SchemaEvictions++
	}

	body := []byte{shape}
	body = varint.AppendUvarint(body, uint64(len(rows)))
	if reg.NeedsDefine {
		body = append(body, schema.Encode(*sch)...)
	}

	flags := frame.Flags(0)
	if reg.NeedsDefine {
		flags |= frame.FlagSchemaIncluded
	}
	if s.cfg.Checksum {
		flags |= frame.FlagChecksum
	}
	if reg.DidEvict {
		flags |= flagSchemaEvicted
	}

	useColumnar := shape != shapeObject && s.cfg.Columnar && columnar.Eligible(sch, len(rows))

	if useColumnar {
		colBody, anyEntropy, err := s.encodeColumnarBody(sch, rows)
		if err != nil {
			return nil, err
		}

		body = append(body, colBody...)
		flags |= frame.FlagColumnar
		if anyEntropy {
			flags |= frame.FlagEntropyCoded
		}
	} else {
		rowBody, dictUpdated, err := s.encodeRowBody(sch, rows)
		if err != nil {
			return nil, err
		}

		body = append(body, rowBody...)
		if dictUpdated {
			flags |= frame.FlagDictionaryUpd
		}
	}

	return frame.Write(flags, reg.ID, body)
}

// Decompress reverses Compress, returning the reconstructed message as
// canonical JSON (spec §3: round trip preserves semantic equality, not
// necessarily the original byte-for-byte text).
func (s *Session) Decompress(data []byte) ([]byte, error) {
	if s.destroyed {
		return nil, errDestroyed
	}

	f, err := frame.Parse(data)
	if err != nil {
		return nil, err
	}

	var out []byte
	if f.SchemaID == 0 {
		out, err = s.decompressFallback(f)
	} else {
		out, err = s.decompressSchema(f)
	}
	if err != nil {
		return nil, err
	}

	s.stats.Messages++
	s.stats.BytesIn += uint64(len(data))
	s.stats.BytesOut += uint64(len(out))

	return out, nil
}

func (s *Session) decompressFallback(f frame.Frame) ([]byte, error) {
	if len(f.Payload) < 1 {
		return nil, fmt.Errorf("%w: empty fallback payload", errs.ErrDecodeError)
	}

	marker, rest := f.Payload[0], f.Payload[1:]
	if marker == 0 {
		return append([]byte(nil), rest...), nil
	}

	return s.cfg.ByteCodec.Decompress(rest)
}

func (s *Session) decompressSchema(f frame.Frame) ([]byte, error) {
	if len(f.Payload) < 1 {
		return nil, fmt.Errorf("%w: empty schema payload", errs.ErrDecodeError)
	}

	shape := f.Payload[0]
	pos := 1

	rowCount, n, err := varint.Uvarint(f.Payload[pos:], false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrDecodeError, err)
	}
	if rowCount > value.MaxArrayLength {
		return nil, fmt.Errorf("%w: declared row count %d exceeds cap", errs.ErrBufferOverflow, rowCount)
	}
	pos += n

	var sch schema.Schema
	if f.Flags.Has(frame.FlagSchemaIncluded) {
		decoded, used, err := schema.Decode(f.Payload[pos:])
		if err != nil {
			return nil, err
		}
		pos += used

		reg, err := s.schemas.Register(decoded)
		if err != nil {
			return nil, err
		}
		if reg.ID != f.SchemaID {
			return nil, errs.ErrStateDesync
		}
		if reg.NeedsDefine {
			s.stats.CacheMisses++
		} else {
			s.stats.CacheHits++
		}
		if reg.DidEvict {
			s.stats.SchemaEvictions++
		}

		sch = decoded
	} else {
		sch, err = s.schemas.Lookup(f.SchemaID)
		if err != nil {
			return nil, err
		}
		s.stats.CacheHits++
	}

	var rows []value.Value
	if f.Flags.Has(frame.FlagColumnar) {
		rows, _, err = s.decodeColumnarBody(&sch, f.Payload[pos:], int(rowCount))
	} else {
		rows, _, err = s.decodeRowBody(&sch, f.Payload[pos:], int(rowCount))
	}
	if err != nil {
		return nil, err
	}

	return value.CanonicalJSON(unwrap(shape, rows)), nil
}
