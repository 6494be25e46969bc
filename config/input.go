package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gpsmapkit/imgcodec/build"
	"github.com/gpsmapkit/imgcodec/errs"
	"github.com/gpsmapkit/imgcodec/format"
	"github.com/gpsmapkit/imgcodec/numbers"
	"github.com/gpsmapkit/imgcodec/route"
)

// MapInput is the YAML form of a build.Map.
//
//	name: sample
//	roads:
//	  - id: 7
//	    name: Main Street
//	    numbers:
//	      - node: 0
//	        left:  {style: odd, start: 1, end: 9}
//	        right: {style: even, start: 2, end: 12}
//	partitions:
//	  - center: {lat: 1000, lon: 2000}
//	    nodes:
//	      - id: 10
//	        coord: {lat: 1005, lon: 1990}
//	        arcs:
//	          - {dest: 11, class: 3, speed: 5, length: 100}
type MapInput struct {
	Name       string           `yaml:"name"`
	Roads      []RoadInput      `yaml:"roads"`
	Partitions []PartitionInput `yaml:"partitions"`
}

// RoadInput is one road. Without an id, the ID is derived from the name.
type RoadInput struct {
	ID      uint32        `yaml:"id"`
	Name    string        `yaml:"name"`
	Numbers []NumberInput `yaml:"numbers"`
}

type NumberInput struct {
	Node  int       `yaml:"node"`
	Left  SideInput `yaml:"left"`
	Right SideInput `yaml:"right"`
}

// SideInput is one side of a road. An omitted side has no numbers.
type SideInput struct {
	Style string `yaml:"style"`
	Start int    `yaml:"start"`
	End   int    `yaml:"end"`
}

type CoordInput struct {
	Lat int32 `yaml:"lat"`
	Lon int32 `yaml:"lon"`
}

type PartitionInput struct {
	Center CoordInput  `yaml:"center"`
	Nodes  []NodeInput `yaml:"nodes"`
}

type NodeInput struct {
	ID       uint64     `yaml:"id"`
	Coord    CoordInput `yaml:"coord"`
	Boundary bool       `yaml:"boundary"`
	Arcs     []ArcInput `yaml:"arcs"`
}

type ArcInput struct {
	Dest   uint64 `yaml:"dest"`
	Class  uint8  `yaml:"class"`
	Speed  uint8  `yaml:"speed"`
	OneWay bool   `yaml:"one_way"`
	Length uint32 `yaml:"length"`
}

// LoadMap reads a YAML map input file. A missing name defaults to the file path.
func LoadMap(path string) (*build.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map input: %w", err)
	}

	m, err := ParseMap(data)
	if err != nil {
		return nil, fmt.Errorf("map input %s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = path
	}

	return m, nil
}

// ParseMap decodes a YAML map input.
func ParseMap(data []byte) (*build.Map, error) {
	var in MapInput

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidConfig, err)
	}

	return in.Map()
}

// Map converts the input to a build.Map.
func (in *MapInput) Map() (*build.Map, error) {
	m := &build.Map{
		Name:       in.Name,
		Roads:      make([]build.Road, 0, len(in.Roads)),
		Partitions: make([]*route.Partition, 0, len(in.Partitions)),
	}

	for _, r := range in.Roads {
		id := r.ID
		if id == 0 && r.Name != "" {
			id = build.RoadID(r.Name)
		}
		road := build.Road{ID: id, Name: r.Name, Numbers: make([]numbers.Descriptor, 0, len(r.Numbers))}
		for _, n := range r.Numbers {
			d, err := n.descriptor()
			if err != nil {
				return nil, fmt.Errorf("%w: road %d: %w", errs.ErrInvalidConfig, r.ID, err)
			}
			road.Numbers = append(road.Numbers, d)
		}
		m.Roads = append(m.Roads, road)
	}

	for _, p := range in.Partitions {
		m.Partitions = append(m.Partitions, p.partition())
	}

	return m, nil
}

func (n NumberInput) descriptor() (numbers.Descriptor, error) {
	ls, err := format.ParseNumberStyle(n.Left.Style)
	if err != nil {
		return numbers.Descriptor{}, fmt.Errorf("node %d left: %w", n.Node, err)
	}
	rs, err := format.ParseNumberStyle(n.Right.Style)
	if err != nil {
		return numbers.Descriptor{}, fmt.Errorf("node %d right: %w", n.Node, err)
	}

	return numbers.Descriptor{
		NodeIndex: n.Node,
		LeftStyle: ls, LeftStart: n.Left.Start, LeftEnd: n.Left.End,
		RightStyle: rs, RightStart: n.Right.Start, RightEnd: n.Right.End,
	}, nil
}

func (p PartitionInput) partition() *route.Partition {
	out := &route.Partition{
		Center: route.Coord(p.Center),
		Nodes:  make([]*route.Node, 0, len(p.Nodes)),
	}
	for _, n := range p.Nodes {
		node := &route.Node{ID: n.ID, Coord: route.Coord(n.Coord), Boundary: n.Boundary}
		for _, a := range n.Arcs {
			node.Arcs = append(node.Arcs, route.Arc(a))
		}
		out.Nodes = append(out.Nodes, node)
	}

	return out
}
