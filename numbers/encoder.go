package numbers

import (
	"bytes"
	"fmt"

	"github.com/gpsmapkit/imgcodec/bitio"
	"github.com/gpsmapkit/imgcodec/errs"
	"github.com/gpsmapkit/imgcodec/field"
)

// Stream is the encoded house-number data of one road.
type Stream struct {
	// Bytes is the encoded stream, owned by the caller.
	Bytes []byte
	// Count is the number of records, needed to decode the stream.
	Count int
	// Bits is the exact stream size in bits; the last byte is zero padded.
	Bits int
	// Format is the delta field format chosen by the width search.
	Format field.Format
	// Swapped reports whether the even/odd default pair is swapped.
	Swapped bool
	// Baseline is the value the first node's deltas are taken against.
	Baseline int
}

// Encoder encodes house-number streams. It is stateless after construction
// and safe for concurrent use.
type Encoder struct {
	cfg *Config
}

// NewEncoder creates an encoder with the given format constants.
func NewEncoder(opts ...Option) (*Encoder, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Encoder{cfg: cfg}, nil
}

// Config returns the encoder's format constants.
func (e *Encoder) Config() Config {
	return *e.cfg
}

// Encode searches the narrowest representation of descs and writes it.
//
// Parameters:
//   - descs: the road's descriptors ordered by strictly increasing node index
//
// Returns:
//   - *Stream: the encoded stream and the chosen configuration
//   - error: ErrNoNumbers or ErrInvalidDescriptor for bad input, ErrDoesNotFit
//     when no configuration can represent the road
func (e *Encoder) Encode(descs []Descriptor) (*Stream, error) {
	if err := validateDescriptors(descs); err != nil {
		return nil, err
	}

	norm := make([]Descriptor, len(descs))
	for i, d := range descs {
		norm[i] = d.normalized()
	}

	best, err := plan(e.cfg, norm)
	if err != nil {
		return nil, err
	}

	w := bitio.NewMSBWriter()
	defer w.Finish()

	if err := writeStream(w, norm, best); err != nil {
		return nil, err
	}

	if w.BitLen() != best.bits {
		return nil, fmt.Errorf("%w: planned %d bits, wrote %d", errs.ErrContractViolation, best.bits, w.BitLen())
	}

	return &Stream{
		Bytes:    bytes.Clone(w.Bytes()),
		Count:    len(norm),
		Bits:     best.bits,
		Format:   best.format,
		Swapped:  best.swapped,
		Baseline: best.baseline,
	}, nil
}

// Encode encodes descs with a one-off encoder.
func Encode(descs []Descriptor, opts ...Option) (*Stream, error) {
	enc, err := NewEncoder(opts...)
	if err != nil {
		return nil, err
	}

	return enc.Encode(descs)
}

func writeStream(w bitio.BitWriter, descs []Descriptor, c candidate) error {
	w.PutBit(c.swapped)
	fw := field.NewWriter(w, c.format)
	fw.WriteFormat()
	writeBaseline(w, c.baseline)

	prev := -1
	prevStart := [2]int{c.baseline, c.baseline}
	prevEnd := [2]int{c.baseline, c.baseline}
	for _, d := range descs {
		writeIndex(w, d.NodeIndex-prev-2)
		prev = d.NodeIndex

		writeStyles(w, d, c.swapped)

		for i, s := range d.sides() {
			if !s.present() {
				continue
			}
			if err := fw.Write(s.start - prevStart[i]); err != nil {
				return fmt.Errorf("node %d: %w", d.NodeIndex, err)
			}
			if err := fw.Write(s.end - prevEnd[i]); err != nil {
				return fmt.Errorf("node %d: %w", d.NodeIndex, err)
			}
			prevStart[i], prevEnd[i] = s.start, s.end
		}
	}

	return nil
}

func writeBaseline(w bitio.BitWriter, baseline int) {
	if baseline < 32 {
		w.PutBit(true)
		w.PutBits(uint32(baseline), 5) //nolint:gosec // G115: < 32
		return
	}

	n, _ := baselineBits(baseline)
	width := n - 1 - 4
	w.PutBit(false)
	w.PutBits(uint32(width-5), 4)      //nolint:gosec // G115: 1..15
	w.PutBits(uint32(baseline), width) //nolint:gosec // G115: checked by plan
}

// writeIndex writes the gap to the previous node index. A negative skip means
// the node directly follows the previous one.
func writeIndex(w bitio.BitWriter, skip int) {
	switch {
	case skip < 0:
		w.PutBit(true)
	case skip < 32:
		w.PutBits(0b01, 2)
		w.PutBits(uint32(skip), 5) //nolint:gosec // G115: < 32
	default:
		w.PutBits(0b00, 2)
		w.PutBits(uint32(skip), 16) //nolint:gosec // G115: checked by plan
	}
}

func writeStyles(w bitio.BitWriter, d Descriptor, swapped bool) {
	left, right := defaultStyles(swapped)
	if d.LeftStyle == left && d.RightStyle == right {
		w.PutBit(true)
		return
	}

	w.PutBit(false)
	for _, s := range d.sides() {
		if !s.present() {
			w.PutBit(false)
			continue
		}
		w.PutBit(true)
		w.PutBits(uint32(s.style), 2)
	}
}
