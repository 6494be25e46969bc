package route

import (
	"fmt"

	"github.com/gpsmapkit/imgcodec/bitio"
	"github.com/gpsmapkit/imgcodec/endian"
	"github.com/gpsmapkit/imgcodec/errs"
	"github.com/gpsmapkit/imgcodec/format"
	"github.com/gpsmapkit/imgcodec/section"
)

// DecodedArc is an arc read back from a partition.
type DecodedArc struct {
	// External reports a destination outside the partition. Dest is then the
	// node ID from Table A, otherwise the destination's offset in the partition.
	External bool
	Dest     uint64
	Class    uint8
	Speed    uint8
	OneWay   bool
	Length   uint32
}

// DecodedNode is a node read back from a partition. Internal nodes carry no
// ID on disk; Offset identifies them.
type DecodedNode struct {
	Offset   int64
	Coord    Coord
	Boundary bool
	Pointer  uint8
	Arcs     []DecodedArc
}

// Decoded is a partition read back from its bytes.
type Decoded struct {
	Center    Coord
	TableBase int64
	End       int64
	Nodes     []DecodedNode
	TableA    []uint32
	TableB    []uint8
	TableC    []uint16
}

// NodeAt returns the node starting at offset.
func (d *Decoded) NodeAt(offset int64) (*DecodedNode, bool) {
	for i := range d.Nodes {
		if d.Nodes[i].Offset == offset {
			return &d.Nodes[i], true
		}
	}

	return nil, false
}

// partOne is the fixed part of a node record.
type partOne struct {
	arcs     int
	boundary bool
	dLon     int32
	dLat     int32
	bIdx     []uint8
	cIdx     []uint8
	pointer  uint8
	size     int
}

// Decode parses a partition written at offset 0 of data with the given
// alignment shift. Empty data decodes to an empty partition.
func Decode(data []byte, shift int) (*Decoded, error) {
	if err := section.ValidateAlignmentShift(shift); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return &Decoded{}, nil
	}

	first, err := readPartOne(data, 0)
	if err != nil {
		return nil, err
	}
	tableBase := int64(first.pointer) << shift

	d := &Decoded{TableBase: tableBase}
	nodeCount, err := d.readTables(data)
	if err != nil {
		return nil, err
	}

	engine := endian.GetLittleEndianEngine()
	pos := int64(0)
	d.Nodes = make([]DecodedNode, 0, nodeCount)
	for range nodeCount {
		if pos >= tableBase {
			return nil, fmt.Errorf("%w: node at %d runs into the tables at %d", errs.ErrInvalidPartition, pos, tableBase)
		}

		p1, err := readPartOne(data, pos)
		if err != nil {
			return nil, err
		}
		if got := section.AlignDown(pos, shift) + int64(p1.pointer)<<shift; got != tableBase {
			return nil, fmt.Errorf("%w: node at %d points to %d, tables at %d", errs.ErrInvalidPartition, pos, got, tableBase)
		}

		refs := pos + int64(p1.size)
		if refs+int64(2*p1.arcs) > int64(len(data)) {
			return nil, fmt.Errorf("%w: node at %d destinations", errs.ErrTruncatedStream, pos)
		}

		node := DecodedNode{
			Offset:   pos,
			Coord:    Coord{Lat: d.Center.Lat + p1.dLat, Lon: d.Center.Lon + p1.dLon},
			Boundary: p1.boundary,
			Pointer:  p1.pointer,
			Arcs:     make([]DecodedArc, p1.arcs),
		}
		for i := range node.Arcs {
			arc, err := d.resolveArc(p1.bIdx[i], p1.cIdx[i], engine.Uint16(data[refs+int64(2*i):]))
			if err != nil {
				return nil, fmt.Errorf("node at %d: %w", pos, err)
			}
			node.Arcs[i] = arc
		}
		d.Nodes = append(d.Nodes, node)

		pos = refs + int64(2*p1.arcs)
	}

	if section.AlignUp(pos, shift) != tableBase {
		return nil, fmt.Errorf("%w: nodes end at %d, tables at %d", errs.ErrInvalidPartition, pos, tableBase)
	}

	for _, n := range d.Nodes {
		for _, a := range n.Arcs {
			if _, ok := d.NodeAt(int64(a.Dest)); !a.External && !ok { //nolint:gosec // G115: 15-bit offset
				return nil, fmt.Errorf("%w: arc to offset %d is not a node", errs.ErrInvalidPartition, a.Dest)
			}
		}
	}

	return d, nil
}

func readPartOne(data []byte, pos int64) (partOne, error) {
	if pos >= int64(len(data)) {
		return partOne{}, fmt.Errorf("%w: node at %d", errs.ErrTruncatedStream, pos)
	}

	r := bitio.NewLSBReader(data[pos:])
	flags, _ := r.ReadBits(8)

	p := partOne{
		arcs:     int(flags & arcCountMask),
		boundary: flags&flagBoundary != 0,
	}
	width := shortCoordBits
	if flags&flagExtended != 0 {
		width = longCoordBits
	}
	p.size = 1 + 2*width/8 + 2*p.arcs + 1

	if r.Remaining() < (p.size-1)*8 {
		return partOne{}, fmt.Errorf("%w: node at %d", errs.ErrTruncatedStream, pos)
	}

	lon, _ := r.ReadBits(width)
	lat, _ := r.ReadBits(width)
	p.dLon = signExtend(lon, width)
	p.dLat = signExtend(lat, width)

	p.bIdx = make([]uint8, p.arcs)
	p.cIdx = make([]uint8, p.arcs)
	for i := range p.arcs {
		b, _ := r.ReadBits(8)
		c, _ := r.ReadBits(8)
		p.bIdx[i], p.cIdx[i] = uint8(b), uint8(c) //nolint:gosec // G115: 8-bit reads
	}
	ptr, _ := r.ReadBits(8)
	p.pointer = uint8(ptr) //nolint:gosec // G115: 8-bit read

	return p, nil
}

// readTables parses the table header and the tables at d.TableBase and
// returns the node count.
func (d *Decoded) readTables(data []byte) (int, error) {
	base := d.TableBase
	if base+TableHeaderSize > int64(len(data)) {
		return 0, fmt.Errorf("%w: table header at %d", errs.ErrTruncatedStream, base)
	}

	engine := endian.GetLittleEndianEngine()
	hdr := data[base : base+TableHeaderSize]
	nodeCount := int(engine.Uint16(hdr[0:2]))
	sizes := [len(format.TableKinds)]int{int(hdr[2]), int(hdr[3]), int(hdr[4])}
	d.Center = Coord{
		Lon: endian.Int24(engine, hdr[5:8]),
		Lat: endian.Int24(engine, hdr[8:11]),
	}

	pos := base + TableHeaderSize
	for _, kind := range format.TableKinds {
		n := sizes[kind] * entrySize(kind)
		if pos+int64(n) > int64(len(data)) {
			return 0, fmt.Errorf("%w: %s at %d", errs.ErrTruncatedStream, kind, pos)
		}
		d.readTable(kind, data[pos:pos+int64(n)], sizes[kind])
		pos += int64(n)
	}
	d.End = pos

	return nodeCount, nil
}

func (d *Decoded) readTable(kind format.TableKind, data []byte, count int) {
	engine := endian.GetLittleEndianEngine()

	switch kind {
	case format.TableA:
		d.TableA = make([]uint32, count)
		for i := range d.TableA {
			d.TableA[i] = endian.Uint24(engine, data[3*i:])
		}
	case format.TableB:
		d.TableB = append([]uint8(nil), data...)
	case format.TableC:
		d.TableC = make([]uint16, count)
		for i := range d.TableC {
			d.TableC[i] = engine.Uint16(data[2*i:])
		}
	default:
		panic(fmt.Sprintf("route: unknown table %d", kind))
	}
}

func (d *Decoded) resolveArc(bIdx, cIdx uint8, ref uint16) (DecodedArc, error) {
	if int(bIdx) >= len(d.TableB) || int(cIdx) >= len(d.TableC) {
		return DecodedArc{}, fmt.Errorf("%w: table index (%d, %d) out of range", errs.ErrInvalidPartition, bIdx, cIdx)
	}

	class, speed, oneWay := unpackClass(d.TableB[bIdx])
	arc := DecodedArc{
		Class:  class,
		Speed:  speed,
		OneWay: oneWay,
		Length: uint32(d.TableC[cIdx]),
	}

	if ref&externalRef != 0 {
		idx := int(ref &^ externalRef)
		if idx >= len(d.TableA) {
			return DecodedArc{}, fmt.Errorf("%w: Table A index %d out of range", errs.ErrInvalidPartition, idx)
		}
		arc.External = true
		arc.Dest = uint64(d.TableA[idx])
	} else {
		arc.Dest = uint64(ref)
	}

	return arc, nil
}

func signExtend(v uint32, width int) int32 {
	shift := 32 - width
	return int32(v<<shift) >> shift //nolint:gosec // G115: sign extension
}
