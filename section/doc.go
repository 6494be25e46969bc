// Package section defines the byte-level layout of a routing map section (NOD)
// and the write sinks the encoders use to build it.
//
// # Overview
//
// The package provides three groups of types:
//
//  1. Sinks: Sink is the positioned writer shared by forward writes and
//     backward patches. MemorySink, SeekerSink and BoundedSink implement it.
//  2. Alignment: AlignUp, AlignDown and Pad round positions to
//     alignment-sized blocks. Offsets inside a partition are counted in these
//     blocks.
//  3. Fixed-size records: NODHeader, DirectoryEntry and RoadEntry.
//
// # Section Structure
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Header (32 bytes, fixed)                                │
//	├─────────────────────────────────────────────────────────┤
//	│ Partition directory (N × 8 bytes)                       │
//	├─────────────────────────────────────────────────────────┤
//	│ Padding (to the alignment block)                        │
//	├─────────────────────────────────────────────────────────┤
//	│ Partition 0 │ padding │ Partition 1 │ ... (each aligned)│
//	├─────────────────────────────────────────────────────────┤
//	│ Number region: per road RoadEntry (8 bytes) + stream    │
//	└─────────────────────────────────────────────────────────┘
//
// # Header Format
//
// NODHeader (32 bytes, little-endian):
//
//	Bytes  | Field            | Type   | Description
//	-------|------------------|--------|----------------------------------
//	0-1    | Options          | uint16 | magic (bits 4-15), alignment shift (bits 0-3)
//	2      | Version          | uint8  | format version, currently 1
//	3      | Reserved         | uint8  | must be 0
//	4-7    | PartitionCount   | uint32 | number of directory entries
//	8-11   | DirectoryOffset  | uint32 | byte offset of the directory
//	12-15  | DirectoryLength  | uint32 | byte length of the directory
//	16-19  | RoadCount        | uint32 | number of roads with house numbers
//	20-23  | NumberOffset     | uint32 | byte offset of the number region
//	24-27  | NumberLength     | uint32 | byte length of the number region
//	28-31  | Checksum         | uint32 | low 32 bits of xxHash64 of bytes 32..end
//
// DirectoryEntry (8 bytes): Offset uint32, Length uint32. The offset is
// relative to the start of the section and always block aligned.
//
// RoadEntry (8 bytes): RoadID uint32, Count uint16, Length uint16, followed by
// Length bytes of house-number stream holding Count records.
//
// # Alignment
//
// The alignment shift is a device-format constant, pinned by
// DefaultAlignmentShift. A block is 1 << shift bytes and positions round up to
// the next block boundary.
package section
