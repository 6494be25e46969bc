package format

import (
	"fmt"
	"strings"
)

type (
	// NumberStyle is the numbering style of one side of a road.
	NumberStyle uint8
	// SignMode selects how a variable-width field represents the sign of its values.
	SignMode uint8
	// TableKind identifies one of the three auxiliary routing tables of a partition.
	TableKind uint8
	// CompressionType identifies a codec used for stored reference output.
	CompressionType uint8
)

// Style codes as stored in the two-bit style field.
const (
	StyleNone NumberStyle = 0x0
	StyleEven NumberStyle = 0x1
	StyleOdd  NumberStyle = 0x2
	StyleBoth NumberStyle = 0x3
)

const (
	// SignNegativeOnly holds values <= 0; the sign is implicit and costs no bit.
	SignNegativeOnly SignMode = 0x0
	// SignSigned holds any value with one extra sign bit.
	SignSigned SignMode = 0x1
	// SignPositiveOnly holds values >= 0.
	SignPositiveOnly SignMode = 0x2
)

// SignModes lists the sign modes in tie-break preference order.
var SignModes = [...]SignMode{SignNegativeOnly, SignSigned, SignPositiveOnly}

const (
	TableA TableKind = 0x0 // TableA holds external node references (adjacency).
	TableB TableKind = 0x1 // TableB holds road class entries.
	TableC TableKind = 0x2 // TableC holds arc distances.
)

// TableKinds lists the auxiliary tables in their on-disk order.
var TableKinds = [...]TableKind{TableA, TableB, TableC}

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (s NumberStyle) String() string {
	switch s {
	case StyleNone:
		return "None"
	case StyleEven:
		return "Even"
	case StyleOdd:
		return "Odd"
	case StyleBoth:
		return "Both"
	default:
		return "Unknown"
	}
}

// IsValid reports whether s is one of the four known styles.
func (s NumberStyle) IsValid() bool {
	return s <= StyleBoth
}

// ParseNumberStyle parses a style name case-insensitively.
func ParseNumberStyle(s string) (NumberStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return StyleNone, nil
	case "even":
		return StyleEven, nil
	case "odd":
		return StyleOdd, nil
	case "both":
		return StyleBoth, nil
	default:
		return StyleNone, fmt.Errorf("unknown number style %q", s)
	}
}

func (m SignMode) String() string {
	switch m {
	case SignNegativeOnly:
		return "NegativeOnly"
	case SignSigned:
		return "Signed"
	case SignPositiveOnly:
		return "PositiveOnly"
	default:
		return "Unknown"
	}
}

func (k TableKind) String() string {
	switch k {
	case TableA:
		return "TableA"
	case TableB:
		return "TableB"
	case TableC:
		return "TableC"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompressionType parses a codec name such as "zstd" or "lz4".
func ParseCompressionType(s string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return CompressionNone, fmt.Errorf("unknown compression type %q", s)
	}
}
