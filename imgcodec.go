// Package imgcodec encodes the routing and address sections of device map
// images.
//
// The device reads these sections with bit-level decoders, so every value is
// stored in the narrowest field that can hold it. The module is layered:
//
//   - bitio: MSB-first and LSB-first bit writers and readers
//   - field: variable-width integer fields with three sign modes
//   - numbers: house-number streams with width search and swap decision
//   - route: routing partitions, written in two passes with backward patching
//   - section: headers, alignment and positioned sinks
//   - build: parallel assembly of whole map images
//
// # Basic Usage
//
// Encoding the house numbers of one road:
//
//	stream, err := imgcodec.EncodeNumbers([]numbers.Descriptor{
//	    {NodeIndex: 0, LeftStyle: format.StyleOdd, LeftStart: 1, LeftEnd: 9},
//	})
//
// Building a whole map:
//
//	b, _ := imgcodec.NewDefaultBuilder()
//	img, err := b.Build(ctx, &build.Map{Name: "city", Roads: roads, Partitions: parts})
//
// # Package Structure
//
// This package wraps the most common calls. Use the sub-packages directly for
// options and lower-level access.
package imgcodec

import (
	"github.com/gpsmapkit/imgcodec/build"
	"github.com/gpsmapkit/imgcodec/numbers"
	"github.com/gpsmapkit/imgcodec/route"
	"github.com/gpsmapkit/imgcodec/section"
)

// NewBuilder creates a map builder.
//
// Parameters:
//   - opts: builder options, see build.With*
//
// Returns:
//   - *build.Builder: the builder
//   - error: ErrInvalidConfig for a rejected option
func NewBuilder(opts ...build.Option) (*build.Builder, error) {
	return build.NewBuilder(opts...)
}

// NewDefaultBuilder creates a builder with the device defaults: 64-byte
// partition blocks, 2-bit minimum field width and a 16 MiB size limit.
func NewDefaultBuilder() (*build.Builder, error) {
	return build.NewBuilder()
}

// EncodeNumbers encodes the house numbers of one road in the narrowest
// representation.
func EncodeNumbers(descs []numbers.Descriptor, opts ...numbers.Option) (*numbers.Stream, error) {
	return numbers.Encode(descs, opts...)
}

// DecodeNumbers decodes count records of a house-number stream.
func DecodeNumbers(data []byte, count int, opts ...numbers.Option) ([]numbers.Descriptor, error) {
	return numbers.Decode(data, count, opts...)
}

// EncodePartition encodes one routing partition into a fresh buffer.
//
// Returns:
//   - []byte: the partition, to be placed at a block-aligned offset
//   - *route.Layout: node and table positions
//   - error: an encoding error
func EncodePartition(p *route.Partition, opts ...route.Option) ([]byte, *route.Layout, error) {
	sink := section.NewMemorySink()
	defer sink.Release()

	layout, err := route.Encode(sink, p, opts...)
	if err != nil {
		return nil, nil, err
	}

	out := make([]byte, sink.Len())
	copy(out, sink.Bytes())

	return out, layout, nil
}

// DecodePartition decodes a partition encoded with the given alignment shift.
func DecodePartition(data []byte, shift int) (*route.Decoded, error) {
	return route.Decode(data, shift)
}

// Inspect decodes a whole map image.
func Inspect(data []byte, opts ...numbers.Option) (*build.Contents, error) {
	return build.Inspect(data, opts...)
}

// RoadID derives a road ID from a road name.
func RoadID(name string) uint32 {
	return build.RoadID(name)
}
