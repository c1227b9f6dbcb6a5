package session

import "github.com/SylphxAI/flux/bytecodec"

// DefaultDictionaryCap is the session string dictionary's default entry
// cap (spec §6, MAX_DICTIONARY_SIZE).
const DefaultDictionaryCap = 65536

// DefaultSchemaCacheCap is the default number of schemas a session keeps
// cached at once. Past it, registering a new schema evicts the
// least-recently-used entry and flags the eviction on the wire (spec
// §4.I's Steady-state behavior), so the eviction path is reachable in an
// ordinary long-lived session, not just with a hand-tuned cap.
const DefaultSchemaCacheCap = 1024

// Config holds the per-session options of spec §6 ("Configuration (per
// session)"). It is built with functional options, the same pattern the
// teacher uses for its encoder configs (NumericEncoderConfig /
// NumericEncoderOption), simplified per DESIGN.md to a plain
// `func(*Config)` rather than the teacher's generic options.Option[T]
// indirection — flux's config surface is small enough not to need it.
type Config struct {
	Columnar       bool
	Entropy        bool
	Checksum       bool
	DictionaryCap  int
	SchemaCacheCap int
	ByteCodec      bytecodec.Codec
}

// DefaultConfig returns the spec's documented defaults: columnar,
// entropy, and checksum all on, with the standard dictionary and
// schema-cache caps.
func DefaultConfig() Config {
	return Config{
		Columnar:       true,
		Entropy:        true,
		Checksum:       true,
		DictionaryCap:  DefaultDictionaryCap,
		SchemaCacheCap: DefaultSchemaCacheCap,
	}
}

// Option configures a Session at construction time.
type Option func(*Config)

// WithColumnar gates the columnar transform (spec §6 "columnar").
func WithColumnar(enabled bool) Option {
	return func(c *Config) { c.Columnar = enabled }
}

// WithEntropy gates the entropy-coding stage (spec §6 "entropy").
func WithEntropy(enabled bool) Option {
	return func(c *Config) { c.Entropy = enabled }
}

// WithChecksum gates the CRC32C trailer (spec §6 "checksum").
func WithChecksum(enabled bool) Option {
	return func(c *Config) { c.Checksum = enabled }
}

// WithDictionaryCap overrides the string dictionary's entry cap.
func WithDictionaryCap(cap int) Option {
	return func(c *Config) { c.DictionaryCap = cap }
}

// WithSchemaCacheCap overrides how many schemas the session caches before
// Register starts evicting the least recently used (spec §4.I); 0 means
// unbounded.
func WithSchemaCacheCap(cap int) Option {
	return func(c *Config) { c.SchemaCacheCap = cap }
}

// WithByteCodec installs a byte codec used as the fallback for payloads
// with no applicable schema (spec §1 "treated as an opaque byte codec").
func WithByteCodec(codec bytecodec.Codec) Option {
	return func(c *Config) { c.ByteCodec = codec }
}

// WithConfig replaces the whole Config at once. Stream uses this to build
// its size-estimator session with the same settings as the paired one.
func WithConfig(cfg Config) Option {
	return func(c *Config) { *c = cfg }
}
