package build

import (
	"fmt"

	"github.com/gpsmapkit/imgcodec/errs"
	"github.com/gpsmapkit/imgcodec/numbers"
	"github.com/gpsmapkit/imgcodec/route"
	"github.com/gpsmapkit/imgcodec/section"
)

// DecodedRoad is one entry of the number region.
type DecodedRoad struct {
	ID          uint32
	Descriptors []numbers.Descriptor
	// Size is the stream length in bytes, entry excluded.
	Size int
}

// Contents is a fully decoded image.
type Contents struct {
	Header     section.NODHeader
	Directory  []section.DirectoryEntry
	Partitions []*route.Decoded
	Roads      []DecodedRoad
}

// Inspect parses an image produced by Build and decodes every partition and
// road.
//
// Parameters:
//   - data: the whole image
//   - opts: number options; they must match the ones used to build
//
// Returns:
//   - *Contents: the decoded image
//   - error: a header, checksum, layout or stream error
func Inspect(data []byte, opts ...numbers.Option) (*Contents, error) {
	h, err := section.ParseNODHeader(data)
	if err != nil {
		return nil, err
	}
	if err := h.VerifyChecksum(data); err != nil {
		return nil, err
	}

	dec, err := numbers.NewDecoder(opts...)
	if err != nil {
		return nil, err
	}

	c := &Contents{Header: h}
	if err := c.readDirectory(data); err != nil {
		return nil, err
	}
	if err := c.readPartitions(data); err != nil {
		return nil, err
	}
	if err := c.readRoads(data, dec); err != nil {
		return nil, err
	}

	return c, nil
}

func region(data []byte, off, length uint32, what string) ([]byte, error) {
	end := uint64(off) + uint64(length)
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("%w: %s [%d, %d) past image end %d", errs.ErrTruncatedStream, what, off, end, len(data))
	}

	return data[off:end], nil
}

func (c *Contents) readDirectory(data []byte) error {
	h := &c.Header
	if uint64(h.DirectoryLength) != uint64(h.PartitionCount)*section.DirectoryEntrySize {
		return fmt.Errorf("%w: directory of %d bytes for %d partitions",
			errs.ErrInvalidHeaderSize, h.DirectoryLength, h.PartitionCount)
	}

	dir, err := region(data, h.DirectoryOffset, h.DirectoryLength, "directory")
	if err != nil {
		return err
	}

	c.Directory = make([]section.DirectoryEntry, h.PartitionCount)
	for i := range c.Directory {
		entry, err := section.ParseDirectoryEntry(dir[i*section.DirectoryEntrySize:])
		if err != nil {
			return err
		}
		c.Directory[i] = entry
	}

	return nil
}

func (c *Contents) readPartitions(data []byte) error {
	shift := c.Header.AlignmentShift()

	c.Partitions = make([]*route.Decoded, len(c.Directory))
	for i, entry := range c.Directory {
		if int64(entry.Offset) != section.AlignUp(int64(entry.Offset), shift) {
			return fmt.Errorf("%w: partition %d at unaligned offset %d", errs.ErrInvalidPartition, i, entry.Offset)
		}

		raw, err := region(data, entry.Offset, entry.Length, fmt.Sprintf("partition %d", i))
		if err != nil {
			return err
		}

		p, err := route.Decode(raw, shift)
		if err != nil {
			return fmt.Errorf("partition %d: %w", i, err)
		}
		c.Partitions[i] = p
	}

	return nil
}

func (c *Contents) readRoads(data []byte, dec *numbers.Decoder) error {
	h := &c.Header
	buf, err := region(data, h.NumberOffset, h.NumberLength, "number region")
	if err != nil {
		return err
	}

	// the header count is untrusted; every road needs at least an entry
	c.Roads = make([]DecodedRoad, 0, min(uint64(h.RoadCount), uint64(len(buf)/section.RoadEntrySize)))
	for pos := 0; pos < len(buf); {
		entry, err := section.ParseRoadEntry(buf[pos:])
		if err != nil {
			return fmt.Errorf("road entry at %d: %w", pos, err)
		}
		pos += section.RoadEntrySize

		if pos+int(entry.Length) > len(buf) {
			return fmt.Errorf("%w: road %d stream of %d bytes", errs.ErrTruncatedStream, entry.RoadID, entry.Length)
		}
		descs, err := dec.Decode(buf[pos:pos+int(entry.Length)], int(entry.Count))
		if err != nil {
			return fmt.Errorf("road %d: %w", entry.RoadID, err)
		}
		pos += int(entry.Length)

		c.Roads = append(c.Roads, DecodedRoad{ID: entry.RoadID, Descriptors: descs, Size: int(entry.Length)})
	}

	if uint64(len(c.Roads)) != uint64(h.RoadCount) {
		return fmt.Errorf("%w: %d roads, header says %d", errs.ErrInvalidHeaderSize, len(c.Roads), h.RoadCount)
	}

	return nil
}
