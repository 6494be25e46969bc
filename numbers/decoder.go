package numbers

import (
	"fmt"

	"github.com/gpsmapkit/imgcodec/bitio"
	"github.com/gpsmapkit/imgcodec/errs"
	"github.com/gpsmapkit/imgcodec/field"
	"github.com/gpsmapkit/imgcodec/format"
)

// Decoder reads streams written by Encoder. It must be configured with the
// same minimum field width as the encoder.
type Decoder struct {
	cfg *Config
}

// NewDecoder creates a decoder with the given format constants.
func NewDecoder(opts ...Option) (*Decoder, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Decoder{cfg: cfg}, nil
}

// Decode reads count records from data.
func (d *Decoder) Decode(data []byte, count int) ([]Descriptor, error) {
	if count <= 0 {
		return nil, errs.ErrNoNumbers
	}

	r := bitio.NewMSBReader(data)
	swapped, ok := r.ReadBit()
	if !ok {
		return nil, fmt.Errorf("%w: number stream header", errs.ErrTruncatedStream)
	}

	f, err := field.ReadFormat(r, d.cfg.minWidth)
	if err != nil {
		return nil, err
	}

	baseline, err := readBaseline(r)
	if err != nil {
		return nil, err
	}

	fr := field.NewReader(r, f)
	prev := -1
	prevStart := [2]int{baseline, baseline}
	prevEnd := [2]int{baseline, baseline}

	out := make([]Descriptor, 0, count)
	for range count {
		idx, err := readIndex(r, prev)
		if err != nil {
			return nil, err
		}
		prev = idx

		styles, err := readStyles(r, swapped)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", idx, err)
		}

		desc := Descriptor{NodeIndex: idx}
		for i, style := range styles {
			s := side{style: style}
			if s.present() {
				ds, err := fr.Read()
				if err != nil {
					return nil, fmt.Errorf("node %d: %w", idx, err)
				}
				de, err := fr.Read()
				if err != nil {
					return nil, fmt.Errorf("node %d: %w", idx, err)
				}
				s.start = prevStart[i] + ds
				s.end = prevEnd[i] + de
				prevStart[i], prevEnd[i] = s.start, s.end
			}
			desc.setSide(i, s)
		}
		out = append(out, desc)
	}

	return out, nil
}

// Decode decodes count records with a one-off decoder.
func Decode(data []byte, count int, opts ...Option) ([]Descriptor, error) {
	dec, err := NewDecoder(opts...)
	if err != nil {
		return nil, err
	}

	return dec.Decode(data, count)
}

func readBaseline(r bitio.BitReader) (int, error) {
	short, ok := r.ReadBit()
	if !ok {
		return 0, fmt.Errorf("%w: baseline", errs.ErrTruncatedStream)
	}
	if short {
		v, ok := r.ReadBits(5)
		if !ok {
			return 0, fmt.Errorf("%w: baseline", errs.ErrTruncatedStream)
		}

		return int(v), nil
	}

	w, ok := r.ReadBits(4)
	if !ok {
		return 0, fmt.Errorf("%w: baseline width", errs.ErrTruncatedStream)
	}
	v, ok := r.ReadBits(int(w) + 5)
	if !ok {
		return 0, fmt.Errorf("%w: baseline", errs.ErrTruncatedStream)
	}

	return int(v), nil
}

func readIndex(r bitio.BitReader, prev int) (int, error) {
	next, ok := r.ReadBit()
	if !ok {
		return 0, fmt.Errorf("%w: node index after %d", errs.ErrTruncatedStream, prev)
	}
	if next {
		return prev + 1, nil
	}

	short, ok := r.ReadBit()
	if !ok {
		return 0, fmt.Errorf("%w: node index after %d", errs.ErrTruncatedStream, prev)
	}
	width := 16
	if short {
		width = 5
	}
	skip, ok := r.ReadBits(width)
	if !ok {
		return 0, fmt.Errorf("%w: node index after %d", errs.ErrTruncatedStream, prev)
	}

	return prev + 2 + int(skip), nil
}

func readStyles(r bitio.BitReader, swapped bool) ([2]format.NumberStyle, error) {
	isDefault, ok := r.ReadBit()
	if !ok {
		return [2]format.NumberStyle{}, fmt.Errorf("%w: style", errs.ErrTruncatedStream)
	}
	if isDefault {
		left, right := defaultStyles(swapped)
		return [2]format.NumberStyle{left, right}, nil
	}

	var styles [2]format.NumberStyle
	for i := range styles {
		present, ok := r.ReadBit()
		if !ok {
			return styles, fmt.Errorf("%w: style", errs.ErrTruncatedStream)
		}
		if !present {
			continue
		}
		code, ok := r.ReadBits(2)
		if !ok {
			return styles, fmt.Errorf("%w: style", errs.ErrTruncatedStream)
		}
		styles[i] = format.NumberStyle(code)
		if styles[i] == format.StyleNone {
			return styles, fmt.Errorf("%w: present side with style code 0", errs.ErrInvalidDescriptor)
		}
	}

	return styles, nil
}
