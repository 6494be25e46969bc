package numbers

import (
	"fmt"
	"math/bits"
	"slices"
	"strings"

	"github.com/gpsmapkit/imgcodec/errs"
	"github.com/gpsmapkit/imgcodec/field"
	"github.com/gpsmapkit/imgcodec/format"
	"github.com/gpsmapkit/imgcodec/internal/pool"
)

// shortBaselineBits is the size of a baseline below 32: flag and 5 value bits.
const shortBaselineBits = 1 + 5

// candidate is one evaluated (sign mode, swap state) configuration.
type candidate struct {
	format   field.Format
	swapped  bool
	baseline int
	bits     int
}

// defaultStyles returns the (left, right) style pair that costs one bit.
func defaultStyles(swapped bool) (format.NumberStyle, format.NumberStyle) {
	if swapped {
		return format.StyleEven, format.StyleOdd
	}

	return format.StyleOdd, format.StyleEven
}

// baselineFor picks the value the first node's deltas are measured against.
func baselineFor(descs []Descriptor, mode format.SignMode) int {
	if len(descs) == 1 {
		return 0
	}

	for _, d := range descs {
		var values []int
		for _, s := range d.sides() {
			if s.present() {
				values = append(values, s.start, s.end)
			}
		}
		if len(values) == 0 {
			continue
		}

		switch mode {
		case format.SignNegativeOnly:
			return slices.Max(values)
		case format.SignSigned:
			return values[0]
		case format.SignPositiveOnly:
			return slices.Min(values)
		}
	}

	return 0
}

// appendDeltas appends the field values of descs to deltas, in emission order.
func appendDeltas(deltas []int, descs []Descriptor, baseline int) []int {
	prevStart := [2]int{baseline, baseline}
	prevEnd := [2]int{baseline, baseline}

	for _, d := range descs {
		for i, s := range d.sides() {
			if !s.present() {
				continue
			}
			deltas = append(deltas, s.start-prevStart[i], s.end-prevEnd[i])
			prevStart[i], prevEnd[i] = s.start, s.end
		}
	}

	return deltas
}

// baselineBits returns the header cost of baseline, or false when it needs
// more than MaxBaselineWidth bits.
func baselineBits(baseline int) (int, bool) {
	if baseline < 32 {
		return shortBaselineBits, true
	}

	w := bits.Len(uint(baseline))
	if w > MaxBaselineWidth {
		return 0, false
	}

	return 1 + 4 + w, true
}

// indexBits returns the cost of the index records, the same for every candidate.
func indexBits(descs []Descriptor) (int, error) {
	total := 0
	prev := -1
	for _, d := range descs {
		skip := d.NodeIndex - prev - 2
		switch {
		case skip < 0:
			total++
		case skip < 32:
			total += 2 + 5
		case skip <= MaxSkip:
			total += 2 + 16
		default:
			return 0, fmt.Errorf("%w: node index gap %d exceeds %d", errs.ErrDoesNotFit, skip, MaxSkip)
		}
		prev = d.NodeIndex
	}

	return total, nil
}

func styleBits(d Descriptor, swapped bool) int {
	left, right := defaultStyles(swapped)
	if d.LeftStyle == left && d.RightStyle == right {
		return 1
	}

	total := 1
	for _, s := range d.sides() {
		if s.present() {
			total += 1 + 2
		} else {
			total++
		}
	}

	return total
}

// plan evaluates every sign mode and swap state and returns the cheapest.
func plan(cfg *Config, descs []Descriptor) (candidate, error) {
	idxBits, err := indexBits(descs)
	if err != nil {
		return candidate{}, err
	}

	var stylesBits [2]int
	for _, d := range descs {
		stylesBits[0] += styleBits(d, false)
		stylesBits[1] += styleBits(d, true)
	}

	buf, release := pool.GetIntSlice(len(descs) * 4)
	defer release()

	var (
		best    candidate
		found   bool
		reasons []string
	)
	for _, mode := range format.SignModes {
		baseline := baselineFor(descs, mode)
		bb, ok := baselineBits(baseline)
		if !ok {
			reasons = append(reasons, fmt.Sprintf("%s: baseline %d too wide", mode, baseline))
			continue
		}

		deltas := appendDeltas(buf[:0], descs, baseline)
		extra, ok := field.ExtraWidthFor(cfg.minWidth, mode, deltas)
		if !ok {
			reasons = append(reasons, fmt.Sprintf("%s: deltas not representable", mode))
			continue
		}

		f := field.Format{MinWidth: cfg.minWidth, ExtraWidth: extra, Mode: mode}
		if f.Width() > cfg.maxWidth {
			reasons = append(reasons, fmt.Sprintf("%s: width %d over %d", mode, f.Width(), cfg.maxWidth))
			continue
		}

		for i, swapped := range [...]bool{false, true} {
			total := 1 + field.HeaderBits + bb + idxBits + stylesBits[i] + len(deltas)*f.Width()
			if !found || total < best.bits {
				best = candidate{format: f, swapped: swapped, baseline: baseline, bits: total}
				found = true
			}
		}
	}

	if !found {
		return candidate{}, fmt.Errorf("%w: %s", errs.ErrDoesNotFit, strings.Join(reasons, "; "))
	}

	return best, nil
}
