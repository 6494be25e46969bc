// Package endian provides byte order helpers for the device map format.
//
// The map image is little-endian throughout. Besides the standard 16, 32 and
// 64-bit accessors, the format stores coordinates and table entries as 3-byte
// integers, which Go's encoding/binary does not cover. The 24-bit helpers live
// here and accept either engine.
//
//	engine := endian.GetLittleEndianEngine()
//	buf = endian.AppendInt24(engine, buf, center.Lon)
package endian

import "encoding/binary"

// Range of a signed 24-bit integer.
const (
	MaxInt24  = 1<<23 - 1
	MinInt24  = -1 << 23
	MaxUint24 = 1<<24 - 1
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
//
// binary.LittleEndian and binary.BigEndian both satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine used by the device format.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

func isBig(engine EndianEngine) bool {
	return engine == EndianEngine(binary.BigEndian)
}

// PutUint24 stores the low 24 bits of v into b[0:3].
func PutUint24(engine EndianEngine, b []byte, v uint32) {
	_ = b[2] // bounds check hint
	if isBig(engine) {
		b[0] = byte(v >> 16)
		b[1] = byte(v >> 8)
		b[2] = byte(v)

		return
	}
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

// Uint24 reads an unsigned 24-bit integer from b[0:3].
func Uint24(engine EndianEngine, b []byte) uint32 {
	_ = b[2]
	if isBig(engine) {
		return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	}

	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

// AppendUint24 appends the low 24 bits of v to b.
func AppendUint24(engine EndianEngine, b []byte, v uint32) []byte {
	var tmp [3]byte
	PutUint24(engine, tmp[:], v)

	return append(b, tmp[:]...)
}

// PutInt24 stores v as a two's complement 24-bit integer.
// Values outside [MinInt24, MaxInt24] are truncated; callers check the range first.
func PutInt24(engine EndianEngine, b []byte, v int32) {
	PutUint24(engine, b, uint32(v)&MaxUint24) //nolint:gosec // G115: masked to 24 bits
}

// Int24 reads a two's complement 24-bit integer and sign-extends it.
func Int24(engine EndianEngine, b []byte) int32 {
	u := Uint24(engine, b)

	return int32(u<<8) >> 8 //nolint:gosec // G115: intentional sign extension
}

// AppendInt24 appends v as a two's complement 24-bit integer.
func AppendInt24(engine EndianEngine, b []byte, v int32) []byte {
	var tmp [3]byte
	PutInt24(engine, tmp[:], v)

	return append(b, tmp[:]...)
}
