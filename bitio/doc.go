// Package bitio provides bit-level writers and readers for the device map format.
//
// The format uses two bit orderings and both are exposed behind the BitWriter
// interface:
//
//   - MSBWriter packs each new bit into the most-significant free bit of the
//     current byte. The house-number streams and the variable-width field
//     writers use it.
//   - LSBWriter packs each new bit into the least-significant free bit. The
//     routing node records use it.
//
// A single PutBits call may write 0 to 32 bits. Writes that cross a byte
// boundary are split transparently. Writers are backed by a pooled buffer that
// grows by a fixed step. Call Finish when done to return the buffer.
//
// MSBReader and LSBReader read streams produced by the matching writer. They
// return an ok flag instead of an error, like the other decoders in this
// module. A false flag means the stream ran out of bits.
//
// Writers and readers are not safe for concurrent use.
package bitio

// MaxBitsPerWrite is the largest count accepted by PutBits and ReadBits.
const MaxBitsPerWrite = 32

// BitWriter appends bits to a growable byte buffer.
type BitWriter interface {
	// PutBit appends a single bit.
	PutBit(bit bool)
	// PutBits appends the low count bits of value, count in [0, 32].
	PutBits(value uint32, count int)
	// BitLen returns the number of bits written.
	BitLen() int
	// Len returns the number of bytes used, counting a partially written byte.
	Len() int
	// Bytes returns exactly the used bytes. The slice aliases the internal buffer
	// and is valid until the next write, Reset or Finish.
	Bytes() []byte
	// Reset discards all written bits but keeps the buffer.
	Reset()
	// Finish returns the buffer to the pool. The writer is unusable afterwards.
	Finish()
}

// BitReader reads bits produced by a BitWriter of the same ordering.
type BitReader interface {
	ReadBit() (bool, bool)
	ReadBits(count int) (uint32, bool)
	BitPos() int
	Remaining() int
}

func checkCount(count int) {
	if count < 0 || count > MaxBitsPerWrite {
		panic("bitio: bit count out of range [0, 32]")
	}
}

func lowBits(value uint32, count int) uint32 {
	if count >= 32 {
		return value
	}

	return value & (1<<count - 1)
}
