// Package bytecodec implements the opaque "byte codec" fallback interface
// of spec §4.L/§6: a three-level quality dial over generic byte
// compressors, used for residual or non-JSON payloads the columnar/schema
// pipeline has no structural leverage over. It is grounded directly on the
// teacher's compress package (Codec/Compressor/Decompressor interfaces and
// one concrete type per algorithm), narrowed from mebo's timestamp/value
// split to flux's single opaque-byte-stream use case.
package bytecodec

// Codec is the external byte-compressor interface flux treats as a black
// box (spec §6): round-trip-correct implementations are interchangeable.
type Codec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// Level selects a codec's speed/ratio tradeoff (spec §6: "three-level
// quality dial, 0=store, 1=fast, 2=better").
type Level uint8

const (
	LevelStore  Level = 0
	LevelFast   Level = 1
	LevelBetter Level = 2
)

// NewCodec picks a concrete Codec by level, mirroring the teacher's
// compress.CreateCodec factory (there keyed by format.CompressionType,
// here by the spec's three-level dial).
func NewCodec(level Level) Codec {
	switch level {
	case LevelFast:
		return NewFastCodec()
	case LevelBetter:
		return NewBetterCodec()
	default:
		return NewStoreCodec()
	}
}
