package endian

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUint24_LittleEndian(t *testing.T) {
	engine := GetLittleEndianEngine()
	b := make([]byte, 3)

	PutUint24(engine, b, 0x123456)
	require.Equal(t, []byte{0x56, 0x34, 0x12}, b)
	require.Equal(t, uint32(0x123456), Uint24(engine, b))
}

func TestUint24_BigEndian(t *testing.T) {
	engine := GetBigEndianEngine()
	b := make([]byte, 3)

	PutUint24(engine, b, 0x123456)
	require.Equal(t, []byte{0x12, 0x34, 0x56}, b)
	require.Equal(t, uint32(0x123456), Uint24(engine, b))
}

func TestUint24_TruncatesHighByte(t *testing.T) {
	engine := GetLittleEndianEngine()
	b := AppendUint24(engine, nil, 0xFF123456)

	require.Len(t, b, 3)
	require.Equal(t, uint32(0x123456), Uint24(engine, b))
}

func TestInt24_RoundTrip(t *testing.T) {
	engine := GetLittleEndianEngine()
	values := []int32{0, 1, -1, 2047, -2048, MaxInt24, MinInt24, 4_000_000, -4_000_000}

	for _, v := range values {
		b := AppendInt24(engine, nil, v)
		require.Len(t, b, 3)
		require.Equal(t, v, Int24(engine, b), "value %d", v)
	}
}

func TestInt24_NegativeEncoding(t *testing.T) {
	b := AppendInt24(GetLittleEndianEngine(), nil, -1)
	require.Equal(t, []byte{0xFF, 0xFF, 0xFF}, b)

	b = AppendInt24(GetLittleEndianEngine(), nil, MinInt24)
	require.Equal(t, []byte{0x00, 0x00, 0x80}, b)
}
