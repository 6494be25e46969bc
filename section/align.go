package section

import (
	"fmt"

	"github.com/gpsmapkit/imgcodec/errs"
)

var zeroBlock [1 << 10]byte

// BlockSize returns the alignment block size for shift.
func BlockSize(shift int) int64 {
	return int64(1) << shift
}

// AlignUp rounds pos up to the next multiple of the block size. Aligned
// positions are returned unchanged.
func AlignUp(pos int64, shift int) int64 {
	mask := BlockSize(shift) - 1
	return (pos + mask) &^ mask
}

// AlignDown rounds pos down to the start of its block.
func AlignDown(pos int64, shift int) int64 {
	return pos &^ (BlockSize(shift) - 1)
}

// ValidateAlignmentShift checks that shift fits the header's options field.
func ValidateAlignmentShift(shift int) error {
	if shift < 0 || shift > MaxAlignmentShift {
		return fmt.Errorf("%w: alignment shift %d out of range [0, %d]", errs.ErrInvalidConfig, shift, MaxAlignmentShift)
	}

	return nil
}

// Pad writes zero bytes until the sink's position is block aligned.
//
// Returns:
//   - int64: the aligned position
//   - error: any write error from the sink
func Pad(s Sink, shift int) (int64, error) {
	return PadTo(s, AlignUp(s.Position(), shift))
}

// PadTo writes zero bytes until the sink reaches target. It does nothing when
// the sink is already at or past target.
func PadTo(s Sink, target int64) (int64, error) {
	for gap := target - s.Position(); gap > 0; gap = target - s.Position() {
		n := min(gap, int64(len(zeroBlock)))
		if _, err := s.Write(zeroBlock[:n]); err != nil {
			return s.Position(), err
		}
	}

	return s.Position(), nil
}
