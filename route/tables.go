package route

import (
	"fmt"

	"github.com/gpsmapkit/imgcodec/endian"
	"github.com/gpsmapkit/imgcodec/errs"
	"github.com/gpsmapkit/imgcodec/format"
)

// tables collects the deduplicated entries of Tables A, B and C.
type tables struct {
	a []uint32
	b []uint8
	c []uint16

	index [len(format.TableKinds)]map[uint64]int
}

func newTables() *tables {
	t := &tables{}
	for i := range t.index {
		t.index[i] = make(map[uint64]int)
	}

	return t
}

func (t *tables) reset() {
	t.a, t.b, t.c = t.a[:0], t.b[:0], t.c[:0]
	for _, m := range t.index {
		clear(m)
	}
}

func (t *tables) size(kind format.TableKind) int {
	switch kind {
	case format.TableA:
		return len(t.a)
	case format.TableB:
		return len(t.b)
	case format.TableC:
		return len(t.c)
	default:
		panic(fmt.Sprintf("route: unknown table %d", kind))
	}
}

// intern returns the index of key in the table, adding it on first use.
func (t *tables) intern(kind format.TableKind, key uint64) (int, error) {
	m := t.index[kind]
	if i, ok := m[key]; ok {
		return i, nil
	}

	i := t.size(kind)
	if i >= MaxTableEntries {
		return 0, fmt.Errorf("%w: %s is full (%d entries)", errs.ErrDoesNotFit, kind, MaxTableEntries)
	}

	switch kind {
	case format.TableA:
		if key > MaxExternalID {
			return 0, fmt.Errorf("%w: external node id %d exceeds 24 bits", errs.ErrDoesNotFit, key)
		}
		t.a = append(t.a, uint32(key))
	case format.TableB:
		t.b = append(t.b, uint8(key)) //nolint:gosec // G115: packed class byte
	case format.TableC:
		if key > MaxArcLength {
			return 0, fmt.Errorf("%w: arc length %d exceeds %d", errs.ErrDoesNotFit, key, MaxArcLength)
		}
		t.c = append(t.c, uint16(key))
	default:
		panic(fmt.Sprintf("route: unknown table %d", kind))
	}
	m[key] = i

	return i, nil
}

// appendTable appends the encoded entries of one table.
func (t *tables) appendTable(buf []byte, kind format.TableKind) []byte {
	engine := endian.GetLittleEndianEngine()

	switch kind {
	case format.TableA:
		for _, id := range t.a {
			buf = endian.AppendUint24(engine, buf, id)
		}
	case format.TableB:
		buf = append(buf, t.b...)
	case format.TableC:
		for _, length := range t.c {
			buf = engine.AppendUint16(buf, length)
		}
	default:
		panic(fmt.Sprintf("route: unknown table %d", kind))
	}

	return buf
}

// entrySize returns the on-disk size of one entry.
func entrySize(kind format.TableKind) int {
	switch kind {
	case format.TableA:
		return 3
	case format.TableB:
		return 1
	case format.TableC:
		return 2
	default:
		panic(fmt.Sprintf("route: unknown table %d", kind))
	}
}

// appendHeader appends the table header.
func (t *tables) appendHeader(buf []byte, nodeCount int, center Coord) []byte {
	engine := endian.GetLittleEndianEngine()

	buf = engine.AppendUint16(buf, uint16(nodeCount)) //nolint:gosec // G115: checked against MaxNodes
	for _, kind := range format.TableKinds {
		buf = append(buf, uint8(t.size(kind))) //nolint:gosec // G115: at most MaxTableEntries
	}
	buf = endian.AppendInt24(engine, buf, center.Lon)
	buf = endian.AppendInt24(engine, buf, center.Lat)

	return buf
}
