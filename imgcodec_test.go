package imgcodec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gpsmapkit/imgcodec/build"
	"github.com/gpsmapkit/imgcodec/format"
	"github.com/gpsmapkit/imgcodec/numbers"
	"github.com/gpsmapkit/imgcodec/route"
	"github.com/gpsmapkit/imgcodec/section"
)

func testPartition() *route.Partition {
	return &route.Partition{
		Center: route.Coord{Lat: 1000, Lon: 2000},
		Nodes: []*route.Node{
			{ID: 1, Coord: route.Coord{Lat: 1010, Lon: 2020}, Arcs: []route.Arc{{Dest: 2, Class: 1, Speed: 9, Length: 40}}},
			{ID: 2, Coord: route.Coord{Lat: 990, Lon: 1980}, Arcs: []route.Arc{{Dest: 1, Class: 1, Speed: 9, Length: 40}}},
		},
	}
}

func TestNumbers_RoundTrip(t *testing.T) {
	descs := []numbers.Descriptor{
		{NodeIndex: 0, LeftStyle: format.StyleOdd, LeftStart: 1, LeftEnd: 9, RightStyle: format.StyleEven, RightStart: 2, RightEnd: 12},
		{NodeIndex: 4, LeftStyle: format.StyleOdd, LeftStart: 11, LeftEnd: 17, RightStyle: format.StyleEven, RightStart: 14, RightEnd: 20},
	}

	stream, err := EncodeNumbers(descs)
	require.NoError(t, err)

	got, err := DecodeNumbers(stream.Bytes, stream.Count)
	require.NoError(t, err)
	require.Equal(t, descs, got)
}

func TestPartition_RoundTrip(t *testing.T) {
	data, layout, err := EncodePartition(testPartition())
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), layout.Size())

	d, err := DecodePartition(data, section.DefaultAlignmentShift)
	require.NoError(t, err)
	require.Len(t, d.Nodes, 2)
	require.Equal(t, route.Coord{Lat: 990, Lon: 1980}, d.Nodes[1].Coord)
	require.False(t, d.Nodes[0].Arcs[0].External)
	require.Equal(t, uint64(d.Nodes[1].Offset), d.Nodes[0].Arcs[0].Dest)
}

func TestDefaultBuilder(t *testing.T) {
	b, err := NewDefaultBuilder()
	require.NoError(t, err)

	m := &build.Map{
		Name: "city",
		Roads: []build.Road{{
			ID:      RoadID("High Street"),
			Numbers: []numbers.Descriptor{{NodeIndex: 0, LeftStyle: format.StyleBoth, LeftStart: 1, LeftEnd: 30}},
		}},
		Partitions: []*route.Partition{testPartition()},
	}
	img, err := b.Build(context.Background(), m)
	require.NoError(t, err)

	c, err := Inspect(img.Bytes)
	require.NoError(t, err)
	require.Len(t, c.Partitions, 1)
	require.Len(t, c.Roads, 1)
	require.Equal(t, RoadID("High Street"), c.Roads[0].ID)

	_, err = NewBuilder(build.WithWorkers(-1))
	require.Error(t, err)
}
