package bytecodec

import "github.com/klauspost/compress/s2"

// BetterCodec is level 2: S2 (an extended, still fast Snappy variant),
// grounded on the teacher's compress.S2Compressor.
type BetterCodec struct{}

var _ Codec = BetterCodec{}

// NewBetterCodec returns the level-2 S2 codec.
func NewBetterCodec() BetterCodec { return BetterCodec{} }

func (BetterCodec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

func (BetterCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}
