package section

import (
	"fmt"

	"github.com/gpsmapkit/imgcodec/endian"
	"github.com/gpsmapkit/imgcodec/errs"
	"github.com/gpsmapkit/imgcodec/internal/hash"
)

// NODHeader is the fixed-size header at the start of a routing section.
type NODHeader struct {
	// Options packs the magic number (bits 4-15) and the alignment shift (bits 0-3).
	Options uint16 // byte offset 0-1
	// Version is the section format version.
	Version uint8 // byte offset 2
	// PartitionCount is the number of entries in the partition directory.
	PartitionCount uint32 // byte offset 4-7
	// DirectoryOffset is the byte offset of the partition directory.
	DirectoryOffset uint32 // byte offset 8-11
	// DirectoryLength is the byte length of the partition directory.
	DirectoryLength uint32 // byte offset 12-15
	// RoadCount is the number of roads in the number region.
	RoadCount uint32 // byte offset 16-19
	// NumberOffset is the byte offset of the number region.
	NumberOffset uint32 // byte offset 20-23
	// NumberLength is the byte length of the number region.
	NumberLength uint32 // byte offset 24-27
	// Checksum is the low 32 bits of the xxHash64 of everything after the header.
	Checksum uint32 // byte offset 28-31
}

// NewNODHeader creates a header for the given alignment shift. Counts,
// offsets and the checksum are filled in once the section is assembled.
func NewNODHeader(alignmentShift int) *NODHeader {
	return &NODHeader{
		Options:         MagicNODV1Opt | uint16(alignmentShift&AlignmentShiftMask), //nolint:gosec // G115: masked to 4 bits
		Version:         NODVersion,
		DirectoryOffset: HeaderSize,
	}
}

// AlignmentShift returns the alignment shift stored in the options field.
func (h *NODHeader) AlignmentShift() int {
	return int(h.Options & AlignmentShiftMask)
}

// IsValidMagicNumber reports whether the options field carries the NOD magic.
func (h *NODHeader) IsValidMagicNumber() bool {
	return h.Options&MagicNumberMask == MagicNODV1Opt
}

// Validate checks the magic number and version.
func (h *NODHeader) Validate() error {
	if !h.IsValidMagicNumber() {
		return fmt.Errorf("%w: bad magic 0x%04X", errs.ErrInvalidHeaderFlags, h.Options&MagicNumberMask)
	}
	if h.Version != NODVersion {
		return fmt.Errorf("%w: unsupported version %d", errs.ErrInvalidHeaderFlags, h.Version)
	}

	return nil
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing header (must be exactly 32 bytes)
//
// Returns:
//   - error: ErrInvalidHeaderSize if data is not 32 bytes, or ErrInvalidHeaderFlags
func (h *NODHeader) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	engine := endian.GetLittleEndianEngine()

	h.Options = engine.Uint16(data[0:2])
	h.Version = data[2]
	if data[3] != 0 {
		return fmt.Errorf("%w: reserved byte is 0x%02X", errs.ErrInvalidHeaderFlags, data[3])
	}
	h.PartitionCount = engine.Uint32(data[4:8])
	h.DirectoryOffset = engine.Uint32(data[8:12])
	h.DirectoryLength = engine.Uint32(data[12:16])
	h.RoadCount = engine.Uint32(data[16:20])
	h.NumberOffset = engine.Uint32(data[20:24])
	h.NumberLength = engine.Uint32(data[24:28])
	h.Checksum = engine.Uint32(data[28:32])

	return h.Validate()
}

// Bytes serializes the header.
func (h *NODHeader) Bytes() []byte {
	b := make([]byte, HeaderSize)

	engine := endian.GetLittleEndianEngine()

	engine.PutUint16(b[0:2], h.Options)
	b[2] = h.Version
	engine.PutUint32(b[4:8], h.PartitionCount)
	engine.PutUint32(b[8:12], h.DirectoryOffset)
	engine.PutUint32(b[12:16], h.DirectoryLength)
	engine.PutUint32(b[16:20], h.RoadCount)
	engine.PutUint32(b[20:24], h.NumberOffset)
	engine.PutUint32(b[24:28], h.NumberLength)
	engine.PutUint32(b[28:32], h.Checksum)

	return b
}

// Seal computes the checksum over the section body. image is the whole
// section, header included.
func (h *NODHeader) Seal(image []byte) {
	h.Checksum = bodyChecksum(image)
}

// VerifyChecksum checks the stored checksum against image.
func (h *NODHeader) VerifyChecksum(image []byte) error {
	if got := bodyChecksum(image); got != h.Checksum {
		return fmt.Errorf("%w: stored 0x%08X, computed 0x%08X", errs.ErrChecksumMismatch, h.Checksum, got)
	}

	return nil
}

func bodyChecksum(image []byte) uint32 {
	if len(image) <= HeaderSize {
		return hash.Checksum32(nil)
	}

	return hash.Checksum32(image[HeaderSize:])
}

// ParseNODHeader parses a NODHeader from the start of a byte slice.
//
// Parameters:
//   - data: Byte slice containing header (must be at least 32 bytes)
//
// Returns:
//   - NODHeader: Parsed header struct
//   - error: ErrInvalidHeaderSize or ErrInvalidHeaderFlags
func ParseNODHeader(data []byte) (NODHeader, error) {
	if len(data) < HeaderSize {
		return NODHeader{}, errs.ErrInvalidHeaderSize
	}

	h := NODHeader{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return NODHeader{}, err
	}

	return h, nil
}
