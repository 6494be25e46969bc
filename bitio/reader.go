package bitio

// MSBReader reads a stream written by MSBWriter.
type MSBReader struct {
	data []byte
	pos  int // bit position
}

var _ BitReader = (*MSBReader)(nil)

// NewMSBReader creates a reader over data.
func NewMSBReader(data []byte) *MSBReader {
	return &MSBReader{data: data}
}

// ReadBit reads one bit. The second result is false at the end of the stream.
func (r *MSBReader) ReadBit() (bool, bool) {
	if r.pos >= len(r.data)*8 {
		return false, false
	}
	bit := r.data[r.pos>>3]&(0x80>>(r.pos&7)) != 0
	r.pos++

	return bit, true
}

// ReadBits reads count bits and returns them right-aligned.
func (r *MSBReader) ReadBits(count int) (uint32, bool) {
	checkCount(count)
	if count > r.Remaining() {
		return 0, false
	}

	var result uint32
	for count > 0 {
		offset := r.pos & 7
		avail := 8 - offset
		take := min(avail, count)

		b := uint32(r.data[r.pos>>3])
		chunk := (b >> (avail - take)) & (1<<take - 1)
		result = result<<take | chunk

		r.pos += take
		count -= take
	}

	return result, true
}

// BitPos returns the number of bits consumed.
func (r *MSBReader) BitPos() int { return r.pos }

// Remaining returns the number of unread bits.
func (r *MSBReader) Remaining() int { return len(r.data)*8 - r.pos }

// LSBReader reads a stream written by LSBWriter.
type LSBReader struct {
	data []byte
	pos  int
}

var _ BitReader = (*LSBReader)(nil)

// NewLSBReader creates a reader over data.
func NewLSBReader(data []byte) *LSBReader {
	return &LSBReader{data: data}
}

// ReadBit reads one bit. The second result is false at the end of the stream.
func (r *LSBReader) ReadBit() (bool, bool) {
	if r.pos >= len(r.data)*8 {
		return false, false
	}
	bit := r.data[r.pos>>3]&(1<<(r.pos&7)) != 0
	r.pos++

	return bit, true
}

// ReadBits reads count bits; the first bit read is the least significant.
func (r *LSBReader) ReadBits(count int) (uint32, bool) {
	checkCount(count)
	if count > r.Remaining() {
		return 0, false
	}

	var result uint32
	got := 0
	for count > 0 {
		offset := r.pos & 7
		take := min(8-offset, count)

		b := uint32(r.data[r.pos>>3])
		chunk := (b >> offset) & (1<<take - 1)
		result |= chunk << got

		got += take
		r.pos += take
		count -= take
	}

	return result, true
}

// BitPos returns the number of bits consumed.
func (r *LSBReader) BitPos() int { return r.pos }

// Remaining returns the number of unread bits.
func (r *LSBReader) Remaining() int { return len(r.data)*8 - r.pos }
