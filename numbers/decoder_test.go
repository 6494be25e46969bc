package numbers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gpsmapkit/imgcodec/errs"
)

func TestDecode_Truncated(t *testing.T) {
	descs := []Descriptor{
		desc(0, odd, 1, 9, even, 2, 12),
		desc(1, odd, 11, 17, even, 14, 20),
		desc(2, odd, 21, 31, even, 26, 36),
	}
	stream, err := Encode(descs)
	require.NoError(t, err)

	for n := range len(stream.Bytes) {
		_, err := Decode(stream.Bytes[:n], stream.Count)
		require.ErrorIs(t, err, errs.ErrTruncatedStream, "prefix of %d bytes", n)
	}
}

func TestDecode_CountTooLarge(t *testing.T) {
	stream, err := Encode([]Descriptor{desc(0, odd, 1, 9, even, 2, 12)})
	require.NoError(t, err)

	_, err = Decode(stream.Bytes, stream.Count+5)
	require.ErrorIs(t, err, errs.ErrTruncatedStream)
}

func TestDecode_FewerRecords(t *testing.T) {
	descs := []Descriptor{
		desc(0, odd, 1, 9, even, 2, 12),
		desc(1, odd, 11, 17, even, 14, 20),
	}
	stream, err := Encode(descs)
	require.NoError(t, err)

	got, err := Decode(stream.Bytes, 1)
	require.NoError(t, err)
	require.Equal(t, descs[:1], got)
}

func TestDecode_InvalidCount(t *testing.T) {
	_, err := Decode([]byte{0xFF}, 0)
	require.ErrorIs(t, err, errs.ErrNoNumbers)
}

func TestDecode_InvalidHeader(t *testing.T) {
	// negative-only and signed both set
	_, err := Decode([]byte{0b0110_0001, 0x80}, 1)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrInvalidFieldFormat)
}

func TestDecode_StyleCodeNone(t *testing.T) {
	// header 0 0 0 0000, baseline 1 00000, index 1, style 0 1 00 0
	data := []byte{0b0000_0001, 0b0000_0101, 0b0000_0000}
	_, err := Decode(data, 1)
	require.ErrorIs(t, err, errs.ErrInvalidDescriptor)
}

func TestDecoder_MinWidthMustMatch(t *testing.T) {
	descs := []Descriptor{desc(0, odd, 1, 9, even, 2, 12)}
	stream, err := Encode(descs, WithMinFieldWidth(4))
	require.NoError(t, err)
	require.Equal(t, 4, stream.Format.MinWidth)

	got, err := Decode(stream.Bytes, stream.Count, WithMinFieldWidth(4))
	require.NoError(t, err)
	require.Equal(t, descs, got)
}

func TestNewEncoder_Options(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)
	cfg := enc.Config()
	require.Equal(t, DefaultMinFieldWidth, cfg.MinFieldWidth())
	require.Equal(t, DefaultMaxFieldWidth, cfg.MaxFieldWidth())

	_, err = NewEncoder(WithMinFieldWidth(-1))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
	_, err = NewEncoder(WithMaxFieldWidth(33))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
	_, err = NewEncoder(WithMinFieldWidth(10), WithMaxFieldWidth(8))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
	_, err = NewDecoder(WithMaxFieldWidth(0))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}
