package section

import (
	"github.com/gpsmapkit/imgcodec/endian"
	"github.com/gpsmapkit/imgcodec/errs"
)

// DirectoryEntry locates one encoded partition inside the section.
type DirectoryEntry struct {
	// Offset is the aligned byte offset of the partition from the section start.
	Offset uint32
	// Length is the byte length of the partition, tables included.
	Length uint32
}

// Bytes returns the 8-byte little-endian encoding of the entry.
func (e DirectoryEntry) Bytes() []byte {
	var b [DirectoryEntrySize]byte // stack allocation
	e.WriteToSlice(b[:], 0)

	return b[:]
}

// WriteToSlice writes the entry at offset and returns the next position.
func (e DirectoryEntry) WriteToSlice(data []byte, offset int) int {
	engine := endian.GetLittleEndianEngine()
	engine.PutUint32(data[offset:offset+4], e.Offset)
	engine.PutUint32(data[offset+4:offset+8], e.Length)

	return offset + DirectoryEntrySize
}

// ParseDirectoryEntry parses a DirectoryEntry.
//
// Returns:
//   - DirectoryEntry: Parsed entry
//   - error: ErrInvalidHeaderSize if data is shorter than 8 bytes
func ParseDirectoryEntry(data []byte) (DirectoryEntry, error) {
	if len(data) < DirectoryEntrySize {
		return DirectoryEntry{}, errs.ErrInvalidHeaderSize
	}

	engine := endian.GetLittleEndianEngine()

	return DirectoryEntry{
		Offset: engine.Uint32(data[0:4]),
		Length: engine.Uint32(data[4:8]),
	}, nil
}

// RoadEntry precedes the house-number stream of one road in the number region.
type RoadEntry struct {
	RoadID uint32
	// Count is the number of records in the stream; the decoder needs it.
	Count uint16
	// Length is the byte length of the stream that follows the entry.
	Length uint16
}

// Bytes returns the 8-byte little-endian encoding of the entry.
func (e RoadEntry) Bytes() []byte {
	var b [RoadEntrySize]byte
	engine := endian.GetLittleEndianEngine()
	engine.PutUint32(b[0:4], e.RoadID)
	engine.PutUint16(b[4:6], e.Count)
	engine.PutUint16(b[6:8], e.Length)

	return b[:]
}

// ParseRoadEntry parses a RoadEntry.
func ParseRoadEntry(data []byte) (RoadEntry, error) {
	if len(data) < RoadEntrySize {
		return RoadEntry{}, errs.ErrInvalidHeaderSize
	}

	engine := endian.GetLittleEndianEngine()

	return RoadEntry{
		RoadID: engine.Uint32(data[0:4]),
		Count:  engine.Uint16(data[4:6]),
		Length: engine.Uint16(data[6:8]),
	}, nil
}
