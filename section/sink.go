package section

import (
	"fmt"
	"io"

	"github.com/gpsmapkit/imgcodec/errs"
	"github.com/gpsmapkit/imgcodec/internal/pool"
)

// Sink is a positioned byte writer.
//
// Encoders write forward with Write and patch earlier bytes by seeking back.
// Seeking past the written end is allowed; the gap reads as zeros once
// something is written after it.
type Sink interface {
	// Position returns the offset of the next write.
	Position() int64
	// SeekTo moves the write position to the absolute offset off.
	SeekTo(off int64) error
	// Write writes p at the current position and advances it.
	Write(p []byte) (int, error)
}

// MemorySink is a Sink backed by a pooled growable buffer.
type MemorySink struct {
	buf *pool.ByteBuffer
	pos int64
}

var _ Sink = (*MemorySink)(nil)

// NewMemorySink creates an empty in-memory sink. Call Release when the bytes
// are no longer needed.
func NewMemorySink() *MemorySink {
	return &MemorySink{buf: pool.GetPartitionBuffer()}
}

// Position implements Sink.
func (s *MemorySink) Position() int64 {
	return s.pos
}

// SeekTo implements Sink.
func (s *MemorySink) SeekTo(off int64) error {
	if off < 0 {
		return fmt.Errorf("%w: %d", errs.ErrInvalidSeek, off)
	}
	s.pos = off

	return nil
}

// Write implements Sink.
func (s *MemorySink) Write(p []byte) (int, error) {
	s.buf.WriteAt(p, int(s.pos))
	s.pos += int64(len(p))

	return len(p), nil
}

// Len returns the number of bytes written, counting seek gaps that were
// written past.
func (s *MemorySink) Len() int {
	return s.buf.Len()
}

// Bytes returns the written bytes. The slice aliases the sink's buffer and is
// valid until the next write or Release.
func (s *MemorySink) Bytes() []byte {
	return s.buf.Bytes()
}

// Release returns the buffer to the pool. The sink is unusable afterwards.
func (s *MemorySink) Release() {
	if s.buf == nil {
		return
	}
	pool.PutPartitionBuffer(s.buf)
	s.buf = nil
	s.pos = 0
}

// SeekerSink adapts an io.WriteSeeker such as *os.File.
type SeekerSink struct {
	ws  io.WriteSeeker
	pos int64
}

var _ Sink = (*SeekerSink)(nil)

// NewSeekerSink wraps ws. The current offset of ws becomes the sink's position.
func NewSeekerSink(ws io.WriteSeeker) (*SeekerSink, error) {
	pos, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}

	return &SeekerSink{ws: ws, pos: pos}, nil
}

// Position implements Sink.
func (s *SeekerSink) Position() int64 {
	return s.pos
}

// SeekTo implements Sink.
func (s *SeekerSink) SeekTo(off int64) error {
	if off < 0 {
		return fmt.Errorf("%w: %d", errs.ErrInvalidSeek, off)
	}

	pos, err := s.ws.Seek(off, io.SeekStart)
	if err != nil {
		return err
	}
	s.pos = pos

	return nil
}

// Write implements Sink.
func (s *SeekerSink) Write(p []byte) (int, error) {
	n, err := s.ws.Write(p)
	s.pos += int64(n)

	return n, err
}

// BoundedSink is a section-relative view of a parent sink.
//
// Positions are relative to base. A write that would end past limit fails with
// ErrMapTooBig and writes nothing.
type BoundedSink struct {
	parent Sink
	base   int64
	limit  int64
	size   int64
}

var _ Sink = (*BoundedSink)(nil)

// NewBoundedSink creates a view of parent starting at base and limited to
// limit bytes. It seeks parent to base.
func NewBoundedSink(parent Sink, base, limit int64) (*BoundedSink, error) {
	if base < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: base=%d limit=%d", errs.ErrInvalidSeek, base, limit)
	}
	if err := parent.SeekTo(base); err != nil {
		return nil, err
	}

	return &BoundedSink{parent: parent, base: base, limit: limit}, nil
}

// Position implements Sink.
func (s *BoundedSink) Position() int64 {
	return s.parent.Position() - s.base
}

// SeekTo implements Sink.
func (s *BoundedSink) SeekTo(off int64) error {
	if off < 0 || off > s.limit {
		return fmt.Errorf("%w: %d outside [0, %d]", errs.ErrInvalidSeek, off, s.limit)
	}

	return s.parent.SeekTo(s.base + off)
}

// Write implements Sink.
func (s *BoundedSink) Write(p []byte) (int, error) {
	end := s.Position() + int64(len(p))
	if end > s.limit {
		return 0, fmt.Errorf("%w: write ends at %d, limit %d", errs.ErrMapTooBig, end, s.limit)
	}

	n, err := s.parent.Write(p)
	s.size = max(s.size, s.Position())

	return n, err
}

// Size returns the highest position written so far.
func (s *BoundedSink) Size() int64 {
	return s.size
}

// Limit returns the size limit.
func (s *BoundedSink) Limit() int64 {
	return s.limit
}
