// Package field implements variable-width integer fields on top of a bit stream.
//
// A field Format is the triple (minimum width, extra width, sign mode). The
// minimum width is a constant of the device format. The extra width is chosen
// per stream by the caller, as the smallest value that makes every element of
// a batch fit. That choice is where the stream gets its compression.
//
// The three sign modes:
//
//   - SignNegativeOnly: values must be <= 0. They are negated before being
//     written, and the sign costs no bit.
//   - SignSigned: any value. It is width-checked as v (v >= 0) or -1-v
//     (v < 0) and written as two's complement with one extra bit.
//   - SignPositiveOnly: values must be >= 0.
//
// Callers must check a whole batch with Fits before writing any of it. A Write
// of a value that does not fit is an internal defect. It returns
// errs.ErrContractViolation and writes nothing.
package field

import (
	"fmt"
	"math/bits"

	"github.com/gpsmapkit/imgcodec/bitio"
	"github.com/gpsmapkit/imgcodec/errs"
	"github.com/gpsmapkit/imgcodec/format"
)

const (
	// MaxExtraWidth is the largest extra width the 4-bit header field can carry.
	MaxExtraWidth = 15
	// HeaderBits is the size of the format header: negative-only, signed, extra width.
	HeaderBits = 1 + 1 + 4
)

// Format describes how one field value is laid out in the stream.
type Format struct {
	MinWidth   int
	ExtraWidth int
	Mode       format.SignMode
}

// Configure builds a Format from the header flags, the same way a decoder sees them.
//
// Parameters:
//   - minWidth: format-mandated minimum width
//   - extraWidth: searched additional width, 0-15
//   - negativeOnly: values are <= 0 with an implicit sign
//   - signed: values carry an explicit sign bit
//
// Returns:
//   - Format: the validated format
//   - error: ErrInvalidFieldFormat if both flags are set or a width is out of range
func Configure(minWidth, extraWidth int, negativeOnly, signed bool) (Format, error) {
	mode := format.SignPositiveOnly
	switch {
	case negativeOnly && signed:
		return Format{}, fmt.Errorf("%w: negative-only and signed are exclusive", errs.ErrInvalidFieldFormat)
	case negativeOnly:
		mode = format.SignNegativeOnly
	case signed:
		mode = format.SignSigned
	}

	f := Format{MinWidth: minWidth, ExtraWidth: extraWidth, Mode: mode}
	if err := f.Validate(); err != nil {
		return Format{}, err
	}

	return f, nil
}

// Validate checks the widths and the sign mode.
func (f Format) Validate() error {
	if f.MinWidth < 0 || f.ExtraWidth < 0 || f.ExtraWidth > MaxExtraWidth {
		return fmt.Errorf("%w: min=%d extra=%d", errs.ErrInvalidFieldFormat, f.MinWidth, f.ExtraWidth)
	}

	switch f.Mode {
	case format.SignNegativeOnly, format.SignSigned, format.SignPositiveOnly:
	default:
		return fmt.Errorf("%w: unknown sign mode %d", errs.ErrInvalidFieldFormat, f.Mode)
	}

	if f.Width() > bitio.MaxBitsPerWrite {
		return fmt.Errorf("%w: total width %d exceeds %d bits", errs.ErrInvalidFieldFormat, f.Width(), bitio.MaxBitsPerWrite)
	}

	return nil
}

// NegativeOnly reports the negative-only header flag.
func (f Format) NegativeOnly() bool { return f.Mode == format.SignNegativeOnly }

// Signed reports the signed header flag.
func (f Format) Signed() bool { return f.Mode == format.SignSigned }

// MagnitudeWidth returns minimum plus extra width, the bits available to the
// sign-normalized value.
func (f Format) MagnitudeWidth() int {
	return f.MinWidth + f.ExtraWidth
}

// Width returns the number of bits one value occupies in the stream.
func (f Format) Width() int {
	if f.Signed() {
		return f.MagnitudeWidth() + 1
	}

	return f.MagnitudeWidth()
}

// Fits reports whether v can be written without losing bits.
func (f Format) Fits(v int) bool {
	n, ok := normalize(f.Mode, v)
	if !ok {
		return false
	}

	mask := uint64(1)<<f.MagnitudeWidth() - 1

	return n == n&mask
}

func (f Format) String() string {
	return fmt.Sprintf("%s(min=%d,extra=%d,width=%d)", f.Mode, f.MinWidth, f.ExtraWidth, f.Width())
}

// normalize maps v to the unsigned magnitude that must fit the field.
// The second result is false when the mode cannot represent v at all.
func normalize(mode format.SignMode, v int) (uint64, bool) {
	switch mode {
	case format.SignNegativeOnly:
		if v > 0 {
			return 0, false
		}

		return uint64(-int64(v)), true //nolint:gosec // G115: v <= 0
	case format.SignSigned:
		if v < 0 {
			return uint64(-1 - int64(v)), true //nolint:gosec // G115: -1-v >= 0
		}

		return uint64(v), true
	case format.SignPositiveOnly:
		if v < 0 {
			return 0, false
		}

		return uint64(v), true
	default:
		return 0, false
	}
}

// ExtraWidthFor returns the smallest extra width for which every value fits a
// field of the given minimum width and mode.
//
// Returns:
//   - int: minimal extra width (0 when the minimum width already suffices)
//   - bool: false if the mode cannot represent some value, or the required
//     extra width exceeds MaxExtraWidth
func ExtraWidthFor(minWidth int, mode format.SignMode, values []int) (int, bool) {
	var maxMagnitude uint64
	for _, v := range values {
		n, ok := normalize(mode, v)
		if !ok {
			return 0, false
		}
		maxMagnitude = max(maxMagnitude, n)
	}

	extra := max(bits.Len64(maxMagnitude)-minWidth, 0)
	if extra > MaxExtraWidth {
		return 0, false
	}

	return extra, true
}

// Writer writes values of one Format into a bit stream.
type Writer struct {
	w bitio.BitWriter
	f Format
}

// NewWriter creates a field writer. The format must already be validated.
func NewWriter(w bitio.BitWriter, f Format) *Writer {
	return &Writer{w: w, f: f}
}

// Format returns the writer's format.
func (fw *Writer) Format() Format {
	return fw.f
}

// Fits reports whether v can be written with the current format.
func (fw *Writer) Fits(v int) bool {
	return fw.f.Fits(v)
}

// Write encodes v.
//
// The caller must have checked Fits for the whole batch. A value that does not
// fit returns an error wrapping ErrContractViolation, and nothing is written.
func (fw *Writer) Write(v int) error {
	if !fw.f.Fits(v) {
		return fmt.Errorf("%w: value %d does not fit %s", errs.ErrContractViolation, v, fw.f)
	}

	width := fw.f.MagnitudeWidth()
	switch fw.f.Mode {
	case format.SignNegativeOnly:
		fw.w.PutBits(uint32(-v), width) //nolint:gosec // G115: checked by Fits
	case format.SignSigned:
		fw.w.PutBits(uint32(v), width+1) //nolint:gosec // G115: two's complement, masked by PutBits
	case format.SignPositiveOnly:
		fw.w.PutBits(uint32(v), width) //nolint:gosec // G115: checked by Fits
	}

	return nil
}

// WriteFormat emits the format header so a decoder can configure itself:
// negative-only flag, signed flag and a 4-bit extra width.
func (fw *Writer) WriteFormat() {
	fw.w.PutBit(fw.f.NegativeOnly())
	fw.w.PutBit(fw.f.Signed())
	fw.w.PutBits(uint32(fw.f.ExtraWidth), 4) //nolint:gosec // G115: 0-15
}

// ReadFormat reads a format header written by WriteFormat.
func ReadFormat(r bitio.BitReader, minWidth int) (Format, error) {
	negativeOnly, ok1 := r.ReadBit()
	signed, ok2 := r.ReadBit()
	extra, ok3 := r.ReadBits(4)
	if !ok1 || !ok2 || !ok3 {
		return Format{}, fmt.Errorf("%w: field format header", errs.ErrTruncatedStream)
	}

	return Configure(minWidth, int(extra), negativeOnly, signed)
}

// Reader reads values of one Format from a bit stream.
type Reader struct {
	r bitio.BitReader
	f Format
}

// NewReader creates a field reader.
func NewReader(r bitio.BitReader, f Format) *Reader {
	return &Reader{r: r, f: f}
}

// Read decodes one value.
func (fr *Reader) Read() (int, error) {
	width := fr.f.MagnitudeWidth()
	if fr.f.Signed() {
		width++
	}

	raw, ok := fr.r.ReadBits(width)
	if !ok {
		return 0, fmt.Errorf("%w: need %d bits, %d left", errs.ErrTruncatedStream, width, fr.r.Remaining())
	}

	switch fr.f.Mode {
	case format.SignNegativeOnly:
		return -int(raw), nil
	case format.SignSigned:
		shift := 64 - width

		return int(int64(uint64(raw)<<shift) >> shift), nil //nolint:gosec // G115: sign extension
	default:
		return int(raw), nil
	}
}
