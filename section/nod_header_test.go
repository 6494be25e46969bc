package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gpsmapkit/imgcodec/errs"
)

func TestNewNODHeader(t *testing.T) {
	h := NewNODHeader(DefaultAlignmentShift)

	require.True(t, h.IsValidMagicNumber())
	require.Equal(t, DefaultAlignmentShift, h.AlignmentShift())
	require.Equal(t, uint8(NODVersion), h.Version)
	require.Equal(t, uint32(HeaderSize), h.DirectoryOffset)
	require.NoError(t, h.Validate())
}

func TestNODHeader_RoundTrip(t *testing.T) {
	original := NewNODHeader(9)
	original.PartitionCount = 3
	original.DirectoryLength = 24
	original.RoadCount = 12
	original.NumberOffset = 4096
	original.NumberLength = 321
	original.Checksum = 0xDEADBEEF

	data := original.Bytes()
	require.Len(t, data, HeaderSize)
	require.Equal(t, []byte{0x49, 0x4E}, data[0:2], "options are little-endian")

	parsed := &NODHeader{}
	require.NoError(t, parsed.Parse(data))
	require.Equal(t, *original, *parsed)
	require.Equal(t, 9, parsed.AlignmentShift())

	fromSlice, err := ParseNODHeader(append(data, 0xFF, 0xFF))
	require.NoError(t, err)
	require.Equal(t, *original, fromSlice)
}

func TestNODHeader_ParseErrors(t *testing.T) {
	t.Run("Invalid size", func(t *testing.T) {
		err := (&NODHeader{}).Parse([]byte{1, 2, 3})
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)

		_, err = ParseNODHeader(make([]byte, HeaderSize-1))
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("Invalid magic number", func(t *testing.T) {
		data := NewNODHeader(6).Bytes()
		data[1] = 0x12

		_, err := ParseNODHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidHeaderFlags)
	})

	t.Run("Unsupported version", func(t *testing.T) {
		data := NewNODHeader(6).Bytes()
		data[2] = 7

		_, err := ParseNODHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidHeaderFlags)
	})

	t.Run("Reserved byte set", func(t *testing.T) {
		data := NewNODHeader(6).Bytes()
		data[3] = 1

		_, err := ParseNODHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidHeaderFlags)
	})
}

func TestNODHeader_Checksum(t *testing.T) {
	image := make([]byte, HeaderSize+10)
	for i := HeaderSize; i < len(image); i++ {
		image[i] = byte(i)
	}

	h := NewNODHeader(6)
	h.Seal(image)
	require.NoError(t, h.VerifyChecksum(image))

	// the header bytes do not take part in the checksum
	copy(image, h.Bytes())
	require.NoError(t, h.VerifyChecksum(image))

	image[HeaderSize+3] ^= 0xFF
	require.ErrorIs(t, h.VerifyChecksum(image), errs.ErrChecksumMismatch)

	empty := NewNODHeader(6)
	empty.Seal(nil)
	require.NoError(t, empty.VerifyChecksum(make([]byte, HeaderSize)))
}
