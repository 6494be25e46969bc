// Package numbers encodes the house-number ranges of one road into a compact,
// self-describing bit stream.
//
// Each road node may carry a Descriptor: a numbering style and a start/end
// house number for the left and the right side of the road. The encoder stores
// every start and end as a delta from the previous value on the same side, so
// the usual slowly growing ranges fit in a few bits.
//
// # Width search
//
// Before writing anything the encoder evaluates a fixed set of candidates:
// three sign modes times two swap states. For each sign mode it picks the
// baseline, derives the deltas and the smallest extra width that fits all of
// them (see field.ExtraWidthFor). For each swap state it counts the bits the
// style records cost. The smallest stream wins. Ties go to negative-only, then
// signed, then positive-only, and then to the not-swapped state. When no
// candidate fits the configured maximum width the road is reported with
// errs.ErrDoesNotFit and the caller omits its numbers.
//
// # Stream layout
//
// All fields are written MSB-first:
//
//	header   := swapped:1 negativeOnly:1 signed:1 extra:4 baseline
//	baseline := 1 value:5                 (value < 32)
//	          | 0 (w-5):4 value:w         (w = bit length, 6..20)
//	record   := index style numbers
//	index    := 1                         (node follows the previous one)
//	          | 0 1 skip:5 | 0 0 skip:16  (skip = index - previous - 2)
//	style    := 1                         (the default pair)
//	          | 0 side side               (left, then right)
//	side     := 0 | 1 code:2              (absent | style code)
//	numbers  := per present side: start delta, end delta
//
// The default pair is left odd and right even, or the reverse when the swap
// flag is set. Deltas are taken against the previous node's value on the same
// side. The first node is measured against the baseline. A road with a single
// node uses a zero baseline.
//
// The stream does not store its record count. Decode takes it from the caller
// the same way the section decoders take an entry count.
package numbers
