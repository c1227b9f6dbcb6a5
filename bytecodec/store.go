package bytecodec

// StoreCodec is level 0: a no-op passthrough, grounded on the teacher's
// compress.NoOpCompressor — used when the caller wants uniform framing
// without paying any compression cost (e.g. already-compressed residuals).
type StoreCodec struct{}

var _ Codec = StoreCodec{}

// NewStoreCodec returns the level-0 passthrough codec.
func NewStoreCodec() StoreCodec { return StoreCodec{} }

func (StoreCodec) Compress(data []byte) ([]byte, error) { return data, nil }

func (StoreCodec) Decompress(data []byte) ([]byte, error) { return data, nil }
