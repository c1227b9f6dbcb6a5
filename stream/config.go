package stream

// DeltaSizeThreshold gates full-sync fallback: if the encoded op list is
// at least this fraction of the full snapshot's encoded size, a full sync
// is sent instead (spec §4.J, "0.7 × size(full_encode(new_value))").
const DeltaSizeThreshold = 0.7

// Config holds per-Stream options (spec §6).
type Config struct {
	Delta    bool
	Checksum bool
}

// DefaultConfig returns delta mode and the checksum trailer both enabled.
func DefaultConfig() Config {
	return Config{Delta: true, Checksum: true}
}

// Option configures a Stream at construction time.
type Option func(*Config)

// WithDelta gates delta mode (spec §6 "delta"); when disabled every Update
// sends a full sync.
func WithDelta(enabled bool) Option {
	return func(c *Config) { c.Delta = enabled }
}

// WithChecksum gates the CRC32C trailer on stream frames.
func WithChecksum(enabled bool) Option {
	return func(c *Config) { c.Checksum = enabled }
}
