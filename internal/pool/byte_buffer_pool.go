package pool

import (
	"io"
	"sync"
)

// Buffer sizing for the two kinds of streams the encoders produce.
//
// Bit streams (one road's house numbers, one node's packed fields) are small, so
// they start tiny and grow by a fixed step. Partition buffers hold a whole
// routing partition and use a larger step.
const (
	BitStreamInitialSize  = 32
	BitStreamGrowth       = 64
	BitStreamMaxThreshold = 4 * 1024

	PartitionInitialSize  = 4 * 1024
	PartitionGrowth       = 4 * 1024
	PartitionMaxThreshold = 256 * 1024
)

// ByteBuffer is a growable byte slice with a fixed growth increment.
//
// The buffer never shrinks while in use. Growth allocates a new backing array
// and copies the used bytes.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte

	growth int
}

// NewByteBuffer creates a buffer with the given initial capacity and growth step.
func NewByteBuffer(initialSize, growth int) *ByteBuffer {
	if growth <= 0 {
		growth = BitStreamGrowth
	}

	return &ByteBuffer{
		B:      make([]byte, 0, initialSize),
		growth: growth,
	}
}

// Bytes returns the used part of the buffer.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer but keeps its capacity.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the number of used bytes.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Growth returns the fixed growth increment.
func (bb *ByteBuffer) Growth() int {
	return bb.growth
}

// MustWrite appends data, growing the buffer by the fixed step when needed.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.Grow(len(data))
	bb.B = append(bb.B, data...)
}

// WriteByte appends a single byte.
func (bb *ByteBuffer) WriteByte(c byte) error {
	bb.Grow(1)
	bb.B = append(bb.B, c)

	return nil
}

// Slice returns a slice of the buffer from start to end.
// Panics if the indices are out of bounds.
func (bb *ByteBuffer) Slice(start, end int) []byte {
	if start < 0 || end < start || end > cap(bb.B) {
		panic("Slice: invalid indices")
	}

	return bb.B[start:end]
}

// SetLength sets the length of the buffer to n.
// Panics if n is negative or greater than the capacity.
func (bb *ByteBuffer) SetLength(n int) {
	if n < 0 || n > cap(bb.B) {
		panic("SetLength: invalid length")
	}
	bb.B = bb.B[:n]
}

// ExtendOrGrow extends the buffer by n zeroed bytes, growing it if necessary.
func (bb *ByteBuffer) ExtendOrGrow(n int) {
	start := len(bb.B)
	bb.Grow(n)
	bb.B = bb.B[:start+n]
	clear(bb.B[start:])
}

// Grow makes room for requiredBytes more bytes.
//
// Capacity grows by the fixed increment, or by requiredBytes when that is
// larger. The increment is linear on purpose: the per-node streams are small,
// and a linear step bounds the number of reallocations for them.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := bb.growth
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), cap(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// WriteAt copies data to offset off, extending the buffer when the write ends
// past the current length. Bytes between the old length and off are zero.
func (bb *ByteBuffer) WriteAt(data []byte, off int) {
	if off < 0 {
		panic("WriteAt: negative offset")
	}

	if end := off + len(data); end > len(bb.B) {
		bb.ExtendOrGrow(end - len(bb.B))
	}
	copy(bb.B[off:], data)
}

// Write appends the contents of data to the buffer.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.MustWrite(data)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a sync.Pool of ByteBuffers.
//
// Buffers whose capacity grew past maxThreshold are dropped instead of being
// returned, so one oversized partition does not pin memory for the whole build.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool of buffers with the given sizing.
func NewByteBufferPool(initialSize, growth, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(initialSize, growth)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves an empty ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	bitStreamPool = NewByteBufferPool(BitStreamInitialSize, BitStreamGrowth, BitStreamMaxThreshold)
	partitionPool = NewByteBufferPool(PartitionInitialSize, PartitionGrowth, PartitionMaxThreshold)
)

// GetBitStreamBuffer retrieves a buffer sized for a bit stream.
func GetBitStreamBuffer() *ByteBuffer {
	return bitStreamPool.Get()
}

// PutBitStreamBuffer returns a bit stream buffer to its pool.
func PutBitStreamBuffer(bb *ByteBuffer) {
	bitStreamPool.Put(bb)
}

// GetPartitionBuffer retrieves a buffer sized for a routing partition.
func GetPartitionBuffer() *ByteBuffer {
	return partitionPool.Get()
}

// PutPartitionBuffer returns a partition buffer to its pool.
func PutPartitionBuffer(bb *ByteBuffer) {
	partitionPool.Put(bb)
}
