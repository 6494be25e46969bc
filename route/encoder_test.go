package route

import (
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gpsmapkit/imgcodec/errs"
	"github.com/gpsmapkit/imgcodec/section"
)

func encodeToMemory(t *testing.T, p *Partition, opts ...Option) (*Layout, []byte) {
	t.Helper()

	sink := section.NewMemorySink()
	defer sink.Release()

	layout, err := Encode(sink, p, opts...)
	require.NoError(t, err)

	return layout, append([]byte(nil), sink.Bytes()...)
}

// requireDecodedMatches decodes data and compares it with the source partition.
func requireDecodedMatches(t *testing.T, p *Partition, layout *Layout, data []byte, shift int) {
	t.Helper()

	d, err := Decode(data, shift)
	require.NoError(t, err)

	offsets := make(map[uint64]int64, len(layout.Nodes))
	for _, nl := range layout.Nodes {
		offsets[nl.ID] = nl.Position - layout.Start
	}

	require.Equal(t, p.Center, d.Center)
	require.Equal(t, layout.TableBase-layout.Start, d.TableBase)
	require.Equal(t, layout.End-layout.Start, d.End)
	require.Len(t, d.Nodes, len(p.Nodes))

	for i, n := range p.Nodes {
		dn := d.Nodes[i]
		require.Equal(t, offsets[n.ID], dn.Offset)
		require.Equal(t, n.Coord, dn.Coord)
		require.Equal(t, n.Boundary, dn.Boundary)
		require.Len(t, dn.Arcs, len(n.Arcs))

		for j, a := range n.Arcs {
			da := dn.Arcs[j]
			require.Equal(t, a.Class, da.Class)
			require.Equal(t, a.Speed, da.Speed)
			require.Equal(t, a.OneWay, da.OneWay)
			require.Equal(t, a.Length, da.Length)

			if off, internal := offsets[a.Dest]; internal {
				require.False(t, da.External)
				require.Equal(t, uint64(off), da.Dest) //nolint:gosec // G115: test offsets are small
			} else {
				require.True(t, da.External)
				require.Equal(t, a.Dest, da.Dest)
			}
		}
	}
}

func samplePartition() *Partition {
	return &Partition{
		Center: Coord{Lat: 1000, Lon: 2000},
		Nodes: []*Node{
			{
				ID:    10,
				Coord: Coord{Lat: 1005, Lon: 1990},
				Arcs:  []Arc{{Dest: 11, Class: 3, Speed: 5, Length: 100}},
			},
			{
				ID:       11,
				Coord:    Coord{Lat: 1000, Lon: 2000},
				Arcs:     []Arc{{Dest: 99, Class: 3, Speed: 5, OneWay: true, Length: 250}},
				Boundary: true,
			},
		},
	}
}

func TestEncode_ExactBytes(t *testing.T) {
	layout, data := encodeToMemory(t, samplePartition())

	want := []byte{
		// node 10: flags, dLon=-10 dLat=5, B/C indexes, pointer, internal dest at 9
		0x01, 0xF6, 0x5F, 0x00, 0x00, 0x00, 0x01, 0x09, 0x00,
		// node 11: flags (boundary), zero offset, B/C indexes, pointer, Table A[0]
		0x21, 0x00, 0x00, 0x00, 0x01, 0x01, 0x01, 0x00, 0x80,
	}
	want = append(want, make([]byte, 64-len(want))...)
	want = append(want,
		0x02, 0x00, // node count
		0x01, 0x02, 0x02, // table sizes
		0xD0, 0x07, 0x00, // center lon
		0xE8, 0x03, 0x00, // center lat
		0x63, 0x00, 0x00, // Table A
		0x2B, 0xAB, // Table B
		0x64, 0x00, 0xFA, 0x00, // Table C
	)

	require.Equal(t, want, data)
	require.Equal(t, int64(64), layout.TableBase)
	require.Equal(t, int64(len(want)), layout.End)
	require.Equal(t, []NodeLayout{
		{ID: 10, Position: 0, PointerPos: 6, Pointer: 1},
		{ID: 11, Position: 9, PointerPos: 15, Pointer: 1},
	}, layout.Nodes)

	requireDecodedMatches(t, samplePartition(), layout, data, section.DefaultAlignmentShift)
}

func TestEncode_EmptyPartition(t *testing.T) {
	for _, p := range []*Partition{nil, {}, {Center: Coord{Lat: 5, Lon: 5}}} {
		sink := section.NewMemorySink()

		layout, err := Encode(sink, p)
		require.NoError(t, err)
		require.Equal(t, 0, sink.Len(), "an empty partition writes zero bytes")
		require.Zero(t, layout.Size())
		require.Empty(t, layout.Nodes)

		sink.Release()
	}

	d, err := Decode(nil, section.DefaultAlignmentShift)
	require.NoError(t, err)
	require.Empty(t, d.Nodes)
}

func TestEncode_OffsetConsistency(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for _, shift := range []int{4, 6, 8} {
		for range 50 {
			p := randomPartition(rng)
			layout, data := encodeToMemory(t, p, WithAlignmentShift(shift))

			require.Equal(t, layout.TableBase, section.AlignUp(layout.TableBase, shift))
			for _, nl := range layout.Nodes {
				require.Equal(t, layout.TableBase, section.AlignDown(nl.Position, shift)+int64(nl.Pointer)<<shift,
					"node %d at %d", nl.ID, nl.Position)
				require.Equal(t, nl.Pointer, data[nl.PointerPos])
			}

			requireDecodedMatches(t, p, layout, data, shift)
		}
	}
}

func TestEncode_ExtendedCoordinates(t *testing.T) {
	p := &Partition{
		Center: Coord{Lat: -100, Lon: 100},
		Nodes: []*Node{
			{ID: 1, Coord: Coord{Lat: -100 + 2047, Lon: 100 - 2048}},
			{ID: 2, Coord: Coord{Lat: -100 + 2048, Lon: 100}},
			{ID: 3, Coord: Coord{Lat: -100 - 32768, Lon: 100 + 32767}},
		},
	}

	layout, data := encodeToMemory(t, p)
	require.Zero(t, data[0]&flagExtended, "12-bit offsets stay short")
	require.NotZero(t, data[layout.Nodes[1].Position]&flagExtended)
	require.NotZero(t, data[layout.Nodes[2].Position]&flagExtended)

	requireDecodedMatches(t, p, layout, data, section.DefaultAlignmentShift)
}

func TestEncode_PositionIndependent(t *testing.T) {
	p := samplePartition()
	_, want := encodeToMemory(t, p)

	sink := section.NewMemorySink()
	defer sink.Release()

	_, err := sink.Write(make([]byte, 128))
	require.NoError(t, err)

	layout, err := Encode(sink, p)
	require.NoError(t, err)
	require.Equal(t, int64(128), layout.Start)
	require.Equal(t, want, sink.Bytes()[128:])
}

func TestEncode_UnalignedStart(t *testing.T) {
	sink := section.NewMemorySink()
	defer sink.Release()

	require.NoError(t, sink.SeekTo(3))
	_, err := Encode(sink, samplePartition())
	require.ErrorIs(t, err, errs.ErrInvalidPartition)
}

func TestEncode_FileSink(t *testing.T) {
	p := samplePartition()
	_, want := encodeToMemory(t, p)

	path := filepath.Join(t.TempDir(), "partition.bin")
	f, err := os.Create(path)
	require.NoError(t, err)

	_, err = f.Write(make([]byte, 64))
	require.NoError(t, err)

	sink, err := section.NewSeekerSink(f)
	require.NoError(t, err)
	layout, err := Encode(sink, p)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, want, data[64:])
	require.Equal(t, int64(len(data)), layout.End)
}

func TestEncoder_Reuse(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)

	encode := func() []byte {
		sink := section.NewMemorySink()
		defer sink.Release()

		_, err := enc.Encode(sink, samplePartition())
		require.NoError(t, err)
		require.Equal(t, StateEmpty, enc.State())

		return append([]byte(nil), sink.Bytes()...)
	}

	require.Equal(t, encode(), encode())
}

func TestEncode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		p     *Partition
		opts  []Option
		isErr error
	}{
		{
			name:  "too many arcs",
			p:     &Partition{Nodes: []*Node{{ID: 1, Arcs: make([]Arc, MaxArcs+1)}}},
			isErr: errs.ErrDoesNotFit,
		},
		{
			name:  "offset beyond 16 bits",
			p:     &Partition{Nodes: []*Node{{ID: 1, Coord: Coord{Lon: 40000}}}},
			isErr: errs.ErrDoesNotFit,
		},
		{
			name:  "center beyond 24 bits",
			p:     &Partition{Center: Coord{Lat: 1 << 23}, Nodes: []*Node{{ID: 1, Coord: Coord{Lat: 1 << 23}}}},
			isErr: errs.ErrDoesNotFit,
		},
		{
			name:  "arc too long",
			p:     &Partition{Nodes: []*Node{{ID: 1, Arcs: []Arc{{Dest: 1, Length: MaxArcLength + 1}}}}},
			isErr: errs.ErrDoesNotFit,
		},
		{
			name:  "external id beyond 24 bits",
			p:     &Partition{Nodes: []*Node{{ID: 1, Arcs: []Arc{{Dest: MaxExternalID + 1}}}}},
			isErr: errs.ErrDoesNotFit,
		},
		{
			name:  "pointer beyond one byte",
			p:     &Partition{Nodes: []*Node{{ID: 1, Arcs: make([]Arc, 31)}, {ID: 2, Arcs: make([]Arc, 31)}, {ID: 3, Arcs: make([]Arc, 31)}}},
			opts:  []Option{WithAlignmentShift(0)},
			isErr: errs.ErrDoesNotFit,
		},
		{
			name:  "duplicate node",
			p:     &Partition{Nodes: []*Node{{ID: 1}, {ID: 2}, {ID: 1}}},
			isErr: errs.ErrDuplicateNode,
		},
		{
			name:  "nil node",
			p:     &Partition{Nodes: []*Node{{ID: 1}, nil}},
			isErr: errs.ErrInvalidPartition,
		},
		{
			name:  "class out of range",
			p:     &Partition{Nodes: []*Node{{ID: 1, Arcs: []Arc{{Dest: 1, Class: 8}}}}},
			isErr: errs.ErrInvalidPartition,
		},
		{
			name:  "speed out of range",
			p:     &Partition{Nodes: []*Node{{ID: 1, Arcs: []Arc{{Dest: 1, Speed: 16}}}}},
			isErr: errs.ErrInvalidPartition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := section.NewMemorySink()
			defer sink.Release()

			_, err := Encode(sink, tt.p, tt.opts...)
			require.ErrorIs(t, err, tt.isErr)
		})
	}
}

func TestEncode_TableOverflow(t *testing.T) {
	t.Run("Table B", func(t *testing.T) {
		p := &Partition{}
		var arcs []Arc
		for class := range uint8(MaxClass + 1) {
			for speed := range uint8(MaxSpeed + 1) {
				for _, oneWay := range []bool{false, true} {
					arcs = append(arcs, Arc{Dest: 1, Class: class, Speed: speed, OneWay: oneWay})
				}
			}
		}
		for i := 0; len(arcs) > 0; i++ {
			n := min(len(arcs), MaxArcs)
			p.Nodes = append(p.Nodes, &Node{ID: uint64(i + 1), Arcs: arcs[:n]}) //nolint:gosec // G115: small
			arcs = arcs[n:]
		}

		_, err := Encode(section.NewMemorySink(), p)
		require.ErrorIs(t, err, errs.ErrDoesNotFit)
		require.Contains(t, err.Error(), "TableB")
	})

	t.Run("Table A", func(t *testing.T) {
		p := &Partition{}
		for i := range 10 {
			n := &Node{ID: uint64(i)} //nolint:gosec // G115: small
			for j := range 30 {
				n.Arcs = append(n.Arcs, Arc{Dest: uint64(1000 + i*30 + j)}) //nolint:gosec // G115: small
			}
			p.Nodes = append(p.Nodes, n)
		}

		_, err := Encode(section.NewMemorySink(), p)
		require.ErrorIs(t, err, errs.ErrDoesNotFit)
		require.Contains(t, err.Error(), "TableA")
	})
}

func TestEncode_InternalOffsetOverflow(t *testing.T) {
	const nodes = 260
	p := &Partition{}
	for i := range nodes {
		n := &Node{ID: uint64(i + 1)} //nolint:gosec // G115: small
		for range MaxArcs {
			n.Arcs = append(n.Arcs, Arc{Dest: 5_000_000, Length: 10})
		}
		p.Nodes = append(p.Nodes, n)
	}
	p.Nodes[0].Arcs[0].Dest = nodes

	sink := section.NewMemorySink()
	defer sink.Release()

	_, err := Encode(sink, p, WithAlignmentShift(8))
	require.ErrorIs(t, err, errs.ErrDoesNotFit)
	require.Contains(t, err.Error(), "destination")
}

// reentrantSink starts a second cycle on the same encoder from inside a write.
type reentrantSink struct {
	*section.MemorySink
	enc    *Encoder
	err    error
	states []State
}

func (s *reentrantSink) Write(p []byte) (int, error) {
	s.states = append(s.states, s.enc.State())
	if s.err == nil {
		_, s.err = s.enc.Encode(section.NewMemorySink(), samplePartition())
	}

	return s.MemorySink.Write(p)
}

func TestEncoder_Busy(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)

	sink := &reentrantSink{MemorySink: section.NewMemorySink(), enc: enc}
	defer sink.Release()

	_, err = enc.Encode(sink, samplePartition())
	require.NoError(t, err)
	require.ErrorIs(t, sink.err, errs.ErrEncoderBusy)
	require.Equal(t, StateEmpty, enc.State())
}

func TestEncoder_StateOrder(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)

	sink := &reentrantSink{MemorySink: section.NewMemorySink(), enc: enc, err: errs.ErrEncoderBusy}
	defer sink.Release()

	_, err = enc.Encode(sink, samplePartition())
	require.NoError(t, err)

	// two writes per node in pass one, one patch per node, padding, tables
	require.Equal(t, []State{
		StateEmpty, StateEmpty, StateEmpty, StateEmpty,
		StateNodesWritten, StateNodesWritten,
		StateOffsetPatched, StateOffsetPatched,
	}, sink.states)
}

func TestEncoder_SharedAcrossGoroutines(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)

	var wg sync.WaitGroup
	errCh := make(chan error, 16)
	stateCh := make(chan State, 8)
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sink := section.NewMemorySink()
			defer sink.Release()
			_, err := enc.Encode(sink, samplePartition())
			errCh <- err
		}()
		go func() {
			defer wg.Done()
			stateCh <- enc.State()
		}()
	}
	wg.Wait()
	close(errCh)
	close(stateCh)

	for st := range stateCh {
		require.LessOrEqual(t, st, StateDone)
	}

	for err := range errCh {
		if err != nil {
			require.ErrorIs(t, err, errs.ErrEncoderBusy)
			require.Contains(t, err.Error(), "cycle in state")
		}
	}
	require.Equal(t, StateEmpty, enc.State())
}

func TestWithAlignmentShift(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)
	cfg := enc.Config()
	require.Equal(t, section.DefaultAlignmentShift, cfg.AlignmentShift())

	_, err = NewEncoder(WithAlignmentShift(16))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func randomPartition(rng *rand.Rand) *Partition {
	p := &Partition{Center: Coord{Lat: int32(rng.Intn(1 << 20)), Lon: int32(-rng.Intn(1 << 20))}} //nolint:gosec // G115: small
	n := 1 + rng.Intn(40)
	for i := range n {
		spread := int32(2000)
		if rng.Intn(5) == 0 {
			spread = 30000
		}
		node := &Node{
			ID: uint64(500 + i*7), //nolint:gosec // G115: small
			Coord: Coord{
				Lat: p.Center.Lat + rng.Int31n(2*spread) - spread,
				Lon: p.Center.Lon + rng.Int31n(2*spread) - spread,
			},
			Boundary: rng.Intn(4) == 0,
		}
		for range rng.Intn(6) {
			a := Arc{
				Class:  uint8(rng.Intn(MaxClass + 1)), //nolint:gosec // G115: small
				Speed:  uint8(rng.Intn(MaxSpeed + 1)), //nolint:gosec // G115: small
				OneWay: rng.Intn(2) == 0,
				Length: uint32(rng.Intn(500)), //nolint:gosec // G115: small
			}
			if rng.Intn(3) == 0 {
				a.Dest = uint64(1_000_000 + rng.Intn(20)) //nolint:gosec // G115: small
			} else {
				a.Dest = uint64(500 + rng.Intn(n)*7) //nolint:gosec // G115: small
			}
			node.Arcs = append(node.Arcs, a)
		}
		p.Nodes = append(p.Nodes, node)
	}

	return p
}
