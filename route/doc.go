// Package route encodes routing partitions: groups of routing nodes that share
// one center coordinate, together with three auxiliary tables.
//
// A partition is written in two passes because every node carries a one-byte
// pointer to the tables, and the table position is only known once all nodes
// are written:
//
//  1. Nodes. Each node's first part is written with its pointer byte and its
//     destination references left as zeros. The positions are recorded.
//  2. Patch. The table base is the first block boundary after the last node.
//     Each node's pointer byte is set to the number of blocks from the start
//     of the node's block to the table base. The node's destination
//     references are written right after it.
//  3. Tables. The table header and Tables A, B and C are written at the base.
//
// # Node record
//
// All multi-byte fields are little-endian; the coordinate pair is packed
// LSB-first.
//
//	flags    : uint8  arc count (bits 0-4), boundary (bit 5), extended coords (bit 6)
//	coords   : dLon:12 dLat:12 (3 bytes), or dLon:16 dLat:16 (4 bytes) when extended
//	arcs     : per arc Table B index (uint8), Table C index (uint8)
//	pointer  : uint8  blocks from AlignDown(node start) to the table base
//	dests    : per arc uint16; bit 15 set = Table A index, clear = node offset
//
// Coordinates are offsets from the partition center. Internal destinations
// are byte offsets from the partition start.
//
// # Tables
//
//	header  : nodeCount:u16 |A|:u8 |B|:u8 |C|:u8 centerLon:i24 centerLat:i24
//	Table A : |A| × u24 IDs of destination nodes outside the partition
//	Table B : |B| × u8  class (bits 0-2) | speed (bits 3-6) | one-way (bit 7)
//	Table C : |C| × u16 arc lengths in metres
//
// Table entries are deduplicated and numbered in first-use order.
//
// A partition must start on a block boundary. Its bytes then do not depend on
// where it is placed, so partitions can be encoded independently and copied
// into the section afterwards.
package route
