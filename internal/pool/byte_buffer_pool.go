// Package pool provides a reusable byte-buffer pool for the column encoders
// and frame codec, adapted from the teacher's internal/pool package. A
// compression session processes many short-lived columns per message; the
// pool amortizes the allocation cost of their scratch buffers across calls.
package pool

import "sync"

// Default and max-retained sizes for pooled buffers. ColumnBuffer* sizes
// cover per-column encoder scratch space; FrameBuffer* sizes cover the
// larger payload assembled by the frame codec.
const (
	ColumnBufferDefaultSize = 1024 * 4  // 4KiB
	ColumnBufferMaxRetained = 1024 * 64 // 64KiB
	FrameBufferDefaultSize  = 1024 * 16 // 16KiB
	FrameBufferMaxRetained  = 1024 * 1024 * 4
)

// ByteBuffer is a growable byte slice wrapper sized for reuse via sync.Pool.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, defaultSize)}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte { return bb.B }

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int { return len(bb.B) }

// Reset empties the buffer but retains its allocated capacity.
func (bb *ByteBuffer) Reset() { bb.B = bb.B[:0] }

// MustWrite appends data to the buffer, growing it if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// Extend extends the buffer by n bytes if there is sufficient capacity,
// returning false (and leaving the buffer unchanged) otherwise.
func (bb *ByteBuffer) Extend(n int) bool {
	curLen := len(bb.B)
	if cap(bb.B)-curLen < n {
		return false
	}

	bb.B = bb.B[:curLen+n]

	return true
}

// ExtendOrGrow extends the buffer by n bytes, growing the backing array if needed.
func (bb *ByteBuffer) ExtendOrGrow(n int) {
	if bb.Extend(n) {
		return
	}

	start := len(bb.B)
	bb.Grow(n)
	bb.B = bb.B[:start+n]
}

// Grow ensures the buffer can hold requiredBytes more bytes without
// reallocating. Small buffers grow by a fixed chunk to minimize
// reallocations; larger ones grow by 25% of current capacity.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := ColumnBufferDefaultSize
	if cap(bb.B) > 4*ColumnBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}

	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// bufferPool pools ByteBuffers of a given default/max-retained size class.
type bufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

func newBufferPool(defaultSize, maxThreshold int) *bufferPool {
	return &bufferPool{
		pool: sync.Pool{
			New: func() any { return NewByteBuffer(defaultSize) },
		},
		maxThreshold: maxThreshold,
	}
}

func (p *bufferPool) get() *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)

	return bb
}

func (p *bufferPool) put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if p.maxThreshold > 0 && cap(bb.B) > p.maxThreshold {
		return
	}

	bb.Reset()
	p.pool.Put(bb)
}

var (
	columnPool = newBufferPool(ColumnBufferDefaultSize, ColumnBufferMaxRetained)
	framePool  = newBufferPool(FrameBufferDefaultSize, FrameBufferMaxRetained)
)

// GetColumnBuffer retrieves a ByteBuffer sized for a single column's encoded bytes.
func GetColumnBuffer() *ByteBuffer { return columnPool.get() }

// PutColumnBuffer returns a column ByteBuffer to the pool.
func PutColumnBuffer(bb *ByteBuffer) { columnPool.put(bb) }

// GetFrameBuffer retrieves a ByteBuffer sized for assembling a full frame payload.
func GetFrameBuffer() *ByteBuffer { return framePool.get() }

// PutFrameBuffer returns a frame ByteBuffer to the pool.
func PutFrameBuffer(bb *ByteBuffer) { framePool.put(bb) }
