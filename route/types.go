package route

import (
	"fmt"

	"github.com/gpsmapkit/imgcodec/endian"
	"github.com/gpsmapkit/imgcodec/errs"
)

// Limits of the node record and table layout.
const (
	MaxArcs           = 31
	MaxClass          = 7
	MaxSpeed          = 15
	MaxTableEntries   = 255
	MaxArcLength      = 1<<16 - 1
	MaxExternalID     = endian.MaxUint24
	MaxPointer        = 255
	MaxInternalOffset = 1<<15 - 1
	MaxNodes          = 1<<16 - 1

	// TableHeaderSize is the size of the header in front of Table A.
	TableHeaderSize = 2 + 3*1 + 2*3
)

const (
	arcCountMask = 0x1F
	flagBoundary = 1 << 5
	flagExtended = 1 << 6
	externalRef  = 1 << 15

	shortCoordBits = 12
	longCoordBits  = 16
)

// Coord is a position in 24-bit map units.
type Coord struct {
	Lat int32
	Lon int32
}

// Arc is an outgoing road segment of a node.
type Arc struct {
	// Dest is the ID of the destination node. It refers to a node of the same
	// partition when one has this ID, otherwise to a node elsewhere.
	Dest   uint64
	Class  uint8
	Speed  uint8
	OneWay bool
	// Length is the arc length in metres.
	Length uint32
}

// Node is a routing node.
type Node struct {
	ID       uint64
	Coord    Coord
	Arcs     []Arc
	Boundary bool
}

// Partition is a group of nodes sharing one center. Nodes are written in
// slice order.
type Partition struct {
	Center Coord
	Nodes  []*Node
}

// packClass builds a Table B entry.
func packClass(a Arc) uint8 {
	b := a.Class&0x07 | (a.Speed&0x0F)<<3
	if a.OneWay {
		b |= 0x80
	}

	return b
}

func unpackClass(b uint8) (class, speed uint8, oneWay bool) {
	return b & 0x07, (b >> 3) & 0x0F, b&0x80 != 0
}

func fitsSigned(v int64, bits int) bool {
	limit := int64(1) << (bits - 1)
	return v >= -limit && v < limit
}

// validateArc checks the fields that have no wider encoding to fall back to.
func validateArc(n *Node, a Arc) error {
	if a.Class > MaxClass {
		return fmt.Errorf("%w: node %d arc class %d exceeds %d", errs.ErrInvalidPartition, n.ID, a.Class, MaxClass)
	}
	if a.Speed > MaxSpeed {
		return fmt.Errorf("%w: node %d arc speed %d exceeds %d", errs.ErrInvalidPartition, n.ID, a.Speed, MaxSpeed)
	}

	return nil
}
