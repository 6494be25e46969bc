package bitio

import "github.com/gpsmapkit/imgcodec/internal/pool"

// bitBuffer holds the state shared by both writer orderings: the used bytes
// and the bit cursor inside the last byte. A cursor of 0 means the last byte
// is full (or the buffer is empty), so the next bit starts a new byte.
type bitBuffer struct {
	buf    *pool.ByteBuffer
	cursor int
}

func newBitBuffer() bitBuffer {
	return bitBuffer{buf: pool.GetBitStreamBuffer()}
}

func (b *bitBuffer) mustOpen() {
	if b.buf == nil {
		panic("bitio: writer already finished")
	}
}

// current returns a pointer to the byte receiving the next bit, starting a
// new zero byte when the cursor is at a byte boundary.
func (b *bitBuffer) current() *byte {
	if b.cursor == 0 {
		_ = b.buf.WriteByte(0)
	}

	return &b.buf.B[b.buf.Len()-1]
}

func (b *bitBuffer) advance(n int) {
	b.cursor = (b.cursor + n) & 7
}

// BitLen returns the number of bits written.
func (b *bitBuffer) BitLen() int {
	b.mustOpen()
	if b.cursor == 0 {
		return b.buf.Len() * 8
	}

	return (b.buf.Len()-1)*8 + b.cursor
}

// Len returns the number of used bytes.
func (b *bitBuffer) Len() int {
	b.mustOpen()
	return b.buf.Len()
}

// Bytes returns the used bytes.
func (b *bitBuffer) Bytes() []byte {
	b.mustOpen()
	return b.buf.Bytes()
}

// Reset clears the written bits.
func (b *bitBuffer) Reset() {
	b.mustOpen()
	b.buf.Reset()
	b.cursor = 0
}

// Finish returns the buffer to the pool.
func (b *bitBuffer) Finish() {
	if b.buf == nil {
		return
	}
	pool.PutBitStreamBuffer(b.buf)
	b.buf = nil
	b.cursor = 0
}

// MSBWriter writes bits most-significant first within each byte.
//
// Writing 1, then 0, then 1 produces the byte 0b1010_0000.
type MSBWriter struct {
	bitBuffer
}

var _ BitWriter = (*MSBWriter)(nil)

// NewMSBWriter creates an empty MSB-first writer.
func NewMSBWriter() *MSBWriter {
	return &MSBWriter{bitBuffer: newBitBuffer()}
}

// PutBit appends a single bit.
func (w *MSBWriter) PutBit(bit bool) {
	w.mustOpen()
	p := w.current()
	if bit {
		*p |= 0x80 >> w.cursor
	}
	w.advance(1)
}

// PutBits appends the low count bits of value, most significant bit first.
func (w *MSBWriter) PutBits(value uint32, count int) {
	checkCount(count)
	w.mustOpen()

	value = lowBits(value, count)
	for count > 0 {
		p := w.current()
		free := 8 - w.cursor
		take := min(free, count)

		chunk := (value >> (count - take)) & (1<<take - 1)
		*p |= byte(chunk << (free - take)) //nolint:gosec // G115: chunk has at most 8 bits

		w.advance(take)
		count -= take
	}
}

// LSBWriter writes bits least-significant first within each byte.
//
// Writing 1, then 0, then 1 produces the byte 0b0000_0101.
type LSBWriter struct {
	bitBuffer
}

var _ BitWriter = (*LSBWriter)(nil)

// NewLSBWriter creates an empty LSB-first writer.
func NewLSBWriter() *LSBWriter {
	return &LSBWriter{bitBuffer: newBitBuffer()}
}

// PutBit appends a single bit.
func (w *LSBWriter) PutBit(bit bool) {
	w.mustOpen()
	p := w.current()
	if bit {
		*p |= 1 << w.cursor
	}
	w.advance(1)
}

// PutBits appends the low count bits of value, least significant bit first.
func (w *LSBWriter) PutBits(value uint32, count int) {
	checkCount(count)
	w.mustOpen()

	value = lowBits(value, count)
	for count > 0 {
		p := w.current()
		free := 8 - w.cursor
		take := min(free, count)

		chunk := value & (1<<take - 1)
		*p |= byte(chunk << w.cursor) //nolint:gosec // G115: chunk fits in the free bits

		value >>= take
		w.advance(take)
		count -= take
	}
}
