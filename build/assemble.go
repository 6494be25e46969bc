package build

import (
	"bytes"

	"github.com/gpsmapkit/imgcodec/section"
)

// assemble lays out the image:
//
//	header | directory | partition... (each block aligned) | number region
//
// The header and directory are reserved as zeros first and patched once the
// offsets are known. Every write goes through a BoundedSink, so an oversized
// map fails with ErrMapTooBig as soon as it crosses the limit.
func (b *Builder) assemble(name string, roads []*encodedRoad, parts []*encodedPartition) (*Image, error) {
	out := section.NewMemorySink()
	defer out.Release()

	sink, err := section.NewBoundedSink(out, 0, b.cfg.maxMapSize)
	if err != nil {
		return nil, err
	}

	parts = compact(parts)
	roads = compact(roads)

	h := section.NewNODHeader(b.shift)
	h.PartitionCount = uint32(len(parts))                               //nolint:gosec // G115: bounded by the map size
	h.DirectoryLength = uint32(len(parts) * section.DirectoryEntrySize) //nolint:gosec // G115: bounded by the map size
	h.RoadCount = uint32(len(roads))                                    //nolint:gosec // G115: bounded by the map size

	reserve := make([]byte, section.HeaderSize+int(h.DirectoryLength))
	if _, err := sink.Write(reserve); err != nil {
		return nil, err
	}

	dir := reserve[section.HeaderSize:]
	for i, p := range parts {
		off, err := section.Pad(sink, b.shift)
		if err != nil {
			return nil, err
		}
		if _, err := sink.Write(p.data); err != nil {
			return nil, err
		}

		entry := section.DirectoryEntry{
			Offset: uint32(off),         //nolint:gosec // G115: bounded by the map size
			Length: uint32(len(p.data)), //nolint:gosec // G115: bounded by the map size
		}
		entry.WriteToSlice(dir, i*section.DirectoryEntrySize)
	}

	h.NumberOffset = uint32(sink.Position()) //nolint:gosec // G115: bounded by the map size
	for _, r := range roads {
		entry := section.RoadEntry{
			RoadID: r.road.ID,
			Count:  uint16(r.stream.Count),       //nolint:gosec // G115: checked by encodeRoads
			Length: uint16(len(r.stream.Bytes)), //nolint:gosec // G115: checked by encodeRoads
		}
		if _, err := sink.Write(entry.Bytes()); err != nil {
			return nil, err
		}
		if _, err := sink.Write(r.stream.Bytes); err != nil {
			return nil, err
		}
	}
	h.NumberLength = uint32(sink.Position()) - h.NumberOffset //nolint:gosec // G115: bounded by the map size

	if err := sink.SeekTo(section.HeaderSize); err != nil {
		return nil, err
	}
	if _, err := sink.Write(dir); err != nil {
		return nil, err
	}

	h.Seal(out.Bytes())
	if err := sink.SeekTo(0); err != nil {
		return nil, err
	}
	if _, err := sink.Write(h.Bytes()); err != nil {
		return nil, err
	}

	return &Image{
		Name:   name,
		Bytes:  bytes.Clone(out.Bytes()),
		Header: *h,
	}, nil
}

// compact drops the nil entries left by failed units, keeping input order.
func compact[T any](s []*T) []*T {
	out := make([]*T, 0, len(s))
	for _, v := range s {
		if v != nil {
			out = append(out, v)
		}
	}

	return out
}
