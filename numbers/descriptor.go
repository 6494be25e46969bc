package numbers

import (
	"fmt"

	"github.com/gpsmapkit/imgcodec/errs"
	"github.com/gpsmapkit/imgcodec/format"
)

// Descriptor is the house-number range of one road node.
//
// Values of a side whose style is StyleNone are ignored by the encoder and
// come back as zero from the decoder.
type Descriptor struct {
	NodeIndex  int
	LeftStyle  format.NumberStyle
	LeftStart  int
	LeftEnd    int
	RightStyle format.NumberStyle
	RightStart int
	RightEnd   int
}

// side is one half of a Descriptor.
type side struct {
	style format.NumberStyle
	start int
	end   int
}

func (s side) present() bool {
	return s.style != format.StyleNone
}

func (d Descriptor) sides() [2]side {
	return [2]side{
		{style: d.LeftStyle, start: d.LeftStart, end: d.LeftEnd},
		{style: d.RightStyle, start: d.RightStart, end: d.RightEnd},
	}
}

func (d *Descriptor) setSide(i int, s side) {
	if i == 0 {
		d.LeftStyle, d.LeftStart, d.LeftEnd = s.style, s.start, s.end
		return
	}
	d.RightStyle, d.RightStart, d.RightEnd = s.style, s.start, s.end
}

// normalized returns d with the values of absent sides cleared.
func (d Descriptor) normalized() Descriptor {
	out := Descriptor{NodeIndex: d.NodeIndex}
	for i, s := range d.sides() {
		if !s.present() {
			s = side{}
		}
		out.setSide(i, s)
	}

	return out
}

// validateDescriptors checks the input of one road.
func validateDescriptors(descs []Descriptor) error {
	if len(descs) == 0 {
		return errs.ErrNoNumbers
	}

	prev := -1
	for i, d := range descs {
		if d.NodeIndex < 0 {
			return fmt.Errorf("%w: descriptor %d has negative node index %d", errs.ErrInvalidDescriptor, i, d.NodeIndex)
		}
		if d.NodeIndex <= prev {
			return fmt.Errorf("%w: node index %d after %d is not increasing", errs.ErrInvalidDescriptor, d.NodeIndex, prev)
		}
		prev = d.NodeIndex

		for _, s := range d.sides() {
			if !s.style.IsValid() {
				return fmt.Errorf("%w: node %d has unknown style %d", errs.ErrInvalidDescriptor, d.NodeIndex, s.style)
			}
			if s.present() && (s.start < 0 || s.end < 0) {
				return fmt.Errorf("%w: node %d has negative house number", errs.ErrInvalidDescriptor, d.NodeIndex)
			}
		}
	}

	return nil
}
