package build

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/gpsmapkit/imgcodec/errs"
	"github.com/gpsmapkit/imgcodec/internal/hash"
	"github.com/gpsmapkit/imgcodec/numbers"
	"github.com/gpsmapkit/imgcodec/route"
	"github.com/gpsmapkit/imgcodec/section"
)

// Map is the input of one map image.
type Map struct {
	Name       string
	Roads      []Road
	Partitions []*route.Partition
}

// Road carries the house numbers of one road.
type Road struct {
	ID      uint32
	Name    string
	Numbers []numbers.Descriptor
}

// RoadID derives a road ID from the road's name: the low 32 bits of its
// xxHash64. Inputs without explicit IDs use it.
func RoadID(name string) uint32 {
	return uint32(hash.ID(name)) //nolint:gosec // G115: truncation intended
}

// Unit identifies the kind of work item a diagnostic refers to.
type Unit uint8

const (
	UnitRoad Unit = iota + 1
	UnitPartition
)

func (u Unit) String() string {
	switch u {
	case UnitRoad:
		return "road"
	case UnitPartition:
		return "partition"
	default:
		return "unknown"
	}
}

// Cause classifies why a unit was dropped.
type Cause uint8

const (
	// CauseExhausted: no configuration could represent the unit.
	CauseExhausted Cause = iota + 1
	// CauseInvalid: the input data is malformed.
	CauseInvalid
	// CauseInternal: an encoder contract was violated.
	CauseInternal
)

func (c Cause) String() string {
	switch c {
	case CauseExhausted:
		return "exhausted"
	case CauseInvalid:
		return "invalid"
	case CauseInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// classify maps a unit error to its cause.
func classify(err error) Cause {
	switch {
	case errors.Is(err, errs.ErrDoesNotFit):
		return CauseExhausted
	case errors.Is(err, errs.ErrInvalidDescriptor),
		errors.Is(err, errs.ErrNoNumbers),
		errors.Is(err, errs.ErrInvalidPartition),
		errors.Is(err, errs.ErrDuplicateNode):
		return CauseInvalid
	default:
		return CauseInternal
	}
}

// Diagnostic records a unit that was left out of the image.
type Diagnostic struct {
	Unit Unit
	// ID is the road ID, or the partition's index in Map.Partitions.
	ID    uint64
	Cause Cause
	Err   error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %d dropped (%s): %v", d.Unit, d.ID, d.Cause, d.Err)
}

// sortDiagnostics orders diagnostics by unit then ID, so reports do not
// depend on worker scheduling.
func sortDiagnostics(ds []Diagnostic) {
	slices.SortFunc(ds, func(a, b Diagnostic) int {
		return cmp.Or(cmp.Compare(a.Unit, b.Unit), cmp.Compare(a.ID, b.ID))
	})
}

// Report summarizes one build.
type Report struct {
	Diagnostics       []Diagnostic
	Roads             int
	Partitions        int
	RoadsEncoded      int
	PartitionsEncoded int
}

// Dropped returns the number of units left out.
func (r *Report) Dropped() int {
	return len(r.Diagnostics)
}

// Image is an assembled map image.
type Image struct {
	Name   string
	Bytes  []byte
	Header section.NODHeader
	Report Report
}

// Size returns the image size in bytes.
func (img *Image) Size() int {
	return len(img.Bytes)
}

// Result is the outcome of one map in BuildAll.
type Result struct {
	Name  string
	Image *Image
	Err   error
}
