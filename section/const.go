package section

import "math"

const (
	// Bit masks of the NODHeader options field
	AlignmentShiftMask = 0x000F // Mask for alignment shift (bits 0-3)
	MagicNumberMask    = 0xFFF0 // Mask for magic number (bits 4-15)

	// MagicNODV1Opt identifies a version 1 routing section.
	MagicNODV1Opt = 0x4E40

	// NODVersion is the current section format version.
	NODVersion = 1
)

const (
	// DefaultAlignmentShift is the pinned block size of the device format: 64 bytes.
	DefaultAlignmentShift = 6
	// MaxAlignmentShift is the largest shift the 4-bit options field can store.
	MaxAlignmentShift = 15
	// DefaultMaxMapSize is the largest map image the device can address.
	DefaultMaxMapSize = 0xFFFFFF
)

// offset and record sizes in the section
const (
	HeaderSize         = 32             // fixed header size in bytes
	DirectoryEntrySize = 8              // partition directory entry size in bytes
	RoadEntrySize      = 8              // road entry size in bytes, stream excluded
	MaxRoadStreamSize  = math.MaxUint16 // largest number stream a RoadEntry can describe
	MaxRoadCount       = math.MaxUint16 // largest record count a RoadEntry can describe
	MaxSectionOffset   = math.MaxUint32 // largest offset stored in the header
)
