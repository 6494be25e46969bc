package route

import (
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/gpsmapkit/imgcodec/bitio"
	"github.com/gpsmapkit/imgcodec/endian"
	"github.com/gpsmapkit/imgcodec/errs"
	"github.com/gpsmapkit/imgcodec/format"
	"github.com/gpsmapkit/imgcodec/internal/collision"
	"github.com/gpsmapkit/imgcodec/section"
)

// State is the progress of an encoding cycle.
type State uint8

const (
	StateEmpty State = iota
	StateNodesWritten
	StateOffsetPatched
	StateTablesWritten
	StateDone
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "Empty"
	case StateNodesWritten:
		return "NodesWritten"
	case StateOffsetPatched:
		return "OffsetPatched"
	case StateTablesWritten:
		return "TablesWritten"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// NodeLayout records where a node was written.
type NodeLayout struct {
	ID         uint64
	Position   int64
	PointerPos int64
	Pointer    uint8
}

// Layout describes an encoded partition. Positions are absolute sink offsets.
type Layout struct {
	Start     int64
	TableBase int64
	End       int64
	Nodes     []NodeLayout
}

// Size returns the number of bytes the partition occupies.
func (l *Layout) Size() int64 {
	return l.End - l.Start
}

// pending is a node written in pass one and waiting for its patch.
type pending struct {
	node       *Node
	pos        int64
	pointerPos int64
}

// Encoder writes partitions. One encoder runs one cycle at a time; use one
// encoder per goroutine to encode partitions in parallel.
type Encoder struct {
	cfg   *Config
	busy  atomic.Bool
	state atomic.Uint32

	tables  *tables
	ids     *collision.Tracker
	pending []pending
	buf     []byte
}

// NewEncoder creates a partition encoder.
func NewEncoder(opts ...Option) (*Encoder, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Encoder{
		cfg:    cfg,
		tables: newTables(),
		ids:    collision.NewTracker(errs.ErrDuplicateNode),
	}, nil
}

// Config returns the encoder's format constants.
func (e *Encoder) Config() Config {
	return *e.cfg
}

// State returns the state of the cycle in progress, StateEmpty when idle.
func (e *Encoder) State() State {
	return State(e.state.Load()) //nolint:gosec // G115: only State values are stored
}

// Encode writes p to sink at the sink's current position, which must be
// block aligned.
//
// A partition without nodes writes nothing. On error the sink may hold a
// partial partition; the caller discards it.
//
// Returns:
//   - *Layout: positions of the nodes and tables
//   - error: ErrEncoderBusy if a cycle is already running, ErrDoesNotFit when
//     a value exceeds its field, ErrDuplicateNode or ErrInvalidPartition for
//     bad input, or a sink error
func (e *Encoder) Encode(sink section.Sink, p *Partition) (*Layout, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: cycle in state %s", errs.ErrEncoderBusy, e.State())
	}
	defer e.finishCycle()

	start := sink.Position()
	layout := &Layout{Start: start, TableBase: start, End: start}
	if p == nil || len(p.Nodes) == 0 {
		return layout, nil
	}

	shift := e.cfg.alignmentShift
	if section.AlignDown(start, shift) != start {
		return nil, fmt.Errorf("%w: start %d is not aligned to %d bytes", errs.ErrInvalidPartition, start, section.BlockSize(shift))
	}

	if err := e.validate(p); err != nil {
		return nil, err
	}

	end, err := e.writeNodes(sink, p)
	if err != nil {
		return nil, err
	}
	e.state.Store(uint32(StateNodesWritten))

	tableBase := section.AlignUp(end, shift)
	layout.Nodes = make([]NodeLayout, 0, len(e.pending))
	if err := e.patchNodes(sink, start, tableBase, layout); err != nil {
		return nil, err
	}
	e.state.Store(uint32(StateOffsetPatched))

	if err := e.writeTables(sink, p, end, tableBase); err != nil {
		return nil, err
	}
	e.state.Store(uint32(StateTablesWritten))

	layout.TableBase = tableBase
	layout.End = sink.Position()
	e.state.Store(uint32(StateDone))

	return layout, nil
}

func (e *Encoder) finishCycle() {
	e.state.Store(uint32(StateEmpty))
	e.tables.reset()
	e.ids.Reset()
	clear(e.pending)
	e.pending = e.pending[:0]
	e.busy.Store(false)
}

func (e *Encoder) validate(p *Partition) error {
	if len(p.Nodes) > MaxNodes {
		return fmt.Errorf("%w: %d nodes exceed %d", errs.ErrDoesNotFit, len(p.Nodes), MaxNodes)
	}
	if p.Center.Lon < endian.MinInt24 || p.Center.Lon > endian.MaxInt24 ||
		p.Center.Lat < endian.MinInt24 || p.Center.Lat > endian.MaxInt24 {
		return fmt.Errorf("%w: center %+v exceeds 24 bits", errs.ErrDoesNotFit, p.Center)
	}

	for i, n := range p.Nodes {
		if n == nil {
			return fmt.Errorf("%w: node %d is nil", errs.ErrInvalidPartition, i)
		}
		if err := e.ids.Track(n.ID); err != nil {
			return err
		}
		if len(n.Arcs) > MaxArcs {
			return fmt.Errorf("%w: node %d has %d arcs, at most %d", errs.ErrDoesNotFit, n.ID, len(n.Arcs), MaxArcs)
		}
		for _, a := range n.Arcs {
			if err := validateArc(n, a); err != nil {
				return err
			}
		}
	}

	return nil
}

// writeNodes is pass one. It returns the position after the last node.
func (e *Encoder) writeNodes(sink section.Sink, p *Partition) (int64, error) {
	w := bitio.NewLSBWriter()
	defer w.Finish()

	for _, n := range p.Nodes {
		w.Reset()
		if err := e.encodePartOne(w, p.Center, n); err != nil {
			return 0, err
		}

		pos := sink.Position()
		if _, err := sink.Write(w.Bytes()); err != nil {
			return 0, err
		}
		pointerPos := sink.Position() - 1

		// destination references are patched in pass two
		if _, err := sink.Write(e.zeros(2 * len(n.Arcs))); err != nil {
			return 0, err
		}

		e.pending = append(e.pending, pending{node: n, pos: pos, pointerPos: pointerPos})
	}

	return sink.Position(), nil
}

func (e *Encoder) zeros(n int) []byte {
	e.buf = slices.Grow(e.buf[:0], n)[:n]
	clear(e.buf)

	return e.buf
}

func (e *Encoder) encodePartOne(w bitio.BitWriter, center Coord, n *Node) error {
	dLon := int64(n.Coord.Lon) - int64(center.Lon)
	dLat := int64(n.Coord.Lat) - int64(center.Lat)

	width := shortCoordBits
	flags := uint32(len(n.Arcs)) & arcCountMask //nolint:gosec // G115: at most MaxArcs
	if !fitsSigned(dLon, shortCoordBits) || !fitsSigned(dLat, shortCoordBits) {
		if !fitsSigned(dLon, longCoordBits) || !fitsSigned(dLat, longCoordBits) {
			return fmt.Errorf("%w: node %d offset (%d, %d) from center exceeds 16 bits", errs.ErrDoesNotFit, n.ID, dLon, dLat)
		}
		width = longCoordBits
		flags |= flagExtended
	}
	if n.Boundary {
		flags |= flagBoundary
	}

	w.PutBits(flags, 8)
	w.PutBits(uint32(dLon), width) //nolint:gosec // G115: two's complement, masked to width
	w.PutBits(uint32(dLat), width) //nolint:gosec // G115: two's complement, masked to width

	for _, a := range n.Arcs {
		bi, err := e.tables.intern(format.TableB, uint64(packClass(a)))
		if err != nil {
			return fmt.Errorf("node %d: %w", n.ID, err)
		}
		ci, err := e.tables.intern(format.TableC, uint64(a.Length))
		if err != nil {
			return fmt.Errorf("node %d: %w", n.ID, err)
		}
		w.PutBits(uint32(bi), 8) //nolint:gosec // G115: < MaxTableEntries
		w.PutBits(uint32(ci), 8) //nolint:gosec // G115: < MaxTableEntries
	}

	// table pointer, patched in pass two
	w.PutBits(0, 8)

	return nil
}

// patchNodes is pass two: the pointer byte and the destination references of
// every node, in node order.
func (e *Encoder) patchNodes(sink section.Sink, start, tableBase int64, layout *Layout) error {
	shift := e.cfg.alignmentShift
	engine := endian.GetLittleEndianEngine()

	for _, pn := range e.pending {
		blocks := (tableBase - section.AlignDown(pn.pos, shift)) >> shift
		if blocks > MaxPointer {
			return fmt.Errorf("%w: node %d table pointer of %d blocks exceeds %d", errs.ErrDoesNotFit, pn.node.ID, blocks, MaxPointer)
		}

		e.buf = append(e.buf[:0], uint8(blocks)) //nolint:gosec // G115: checked against MaxPointer
		for _, a := range pn.node.Arcs {
			ref, err := e.destRef(start, a.Dest)
			if err != nil {
				return fmt.Errorf("node %d: %w", pn.node.ID, err)
			}
			e.buf = engine.AppendUint16(e.buf, ref)
		}

		if err := sink.SeekTo(pn.pointerPos); err != nil {
			return err
		}
		if _, err := sink.Write(e.buf); err != nil {
			return err
		}

		layout.Nodes = append(layout.Nodes, NodeLayout{
			ID:         pn.node.ID,
			Position:   pn.pos,
			PointerPos: pn.pointerPos,
			Pointer:    uint8(blocks), //nolint:gosec // G115: checked against MaxPointer
		})
	}

	return nil
}

func (e *Encoder) destRef(start int64, dest uint64) (uint16, error) {
	if i, ok := e.ids.Index(dest); ok {
		off := e.pending[i].pos - start
		if off > MaxInternalOffset {
			return 0, fmt.Errorf("%w: destination %d at offset %d exceeds %d", errs.ErrDoesNotFit, dest, off, MaxInternalOffset)
		}

		return uint16(off), nil //nolint:gosec // G115: checked above
	}

	ai, err := e.tables.intern(format.TableA, dest)
	if err != nil {
		return 0, err
	}

	return externalRef | uint16(ai), nil //nolint:gosec // G115: < MaxTableEntries
}

// writeTables writes the padding, the table header and the three tables.
func (e *Encoder) writeTables(sink section.Sink, p *Partition, end, tableBase int64) error {
	if err := sink.SeekTo(end); err != nil {
		return err
	}
	if _, err := section.PadTo(sink, tableBase); err != nil {
		return err
	}

	e.buf = e.tables.appendHeader(e.buf[:0], len(p.Nodes), p.Center)
	for _, kind := range format.TableKinds {
		e.buf = e.tables.appendTable(e.buf, kind)
	}

	_, err := sink.Write(e.buf)

	return err
}

// Encode writes p to sink with a one-off encoder.
func Encode(sink section.Sink, p *Partition, opts ...Option) (*Layout, error) {
	enc, err := NewEncoder(opts...)
	if err != nil {
		return nil, err
	}

	return enc.Encode(sink, p)
}
