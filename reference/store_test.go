package reference

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gpsmapkit/imgcodec/errs"
	"github.com/gpsmapkit/imgcodec/format"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()

	s, err := NewStore(filepath.Join(t.TempDir(), "refs"), opts...)
	require.NoError(t, err)

	return s
}

func testImage() []byte {
	img := bytes.Repeat([]byte{0x40, 0x4E, 0x01, 0x00}, 64)
	for i := range 100 {
		img = append(img, byte(i*7))
	}

	return img
}

func TestStore_SaveLoad(t *testing.T) {
	for _, ct := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			s := newTestStore(t, WithCompression(ct))
			require.Equal(t, ct, s.Compression())
			require.False(t, s.Exists("sample"))

			img := testImage()
			stats, err := s.Save("sample", img)
			require.NoError(t, err)
			require.Equal(t, ct, stats.Algorithm)
			require.Equal(t, int64(len(img)), stats.OriginalSize)
			require.True(t, s.Exists("sample"))

			got, err := s.Load("sample")
			require.NoError(t, err)
			require.Equal(t, img, got)
			require.NoError(t, s.Verify("sample", img))
		})
	}
}

func TestStore_SaveReplaces(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Save("m", []byte{1, 2, 3})
	require.NoError(t, err)
	_, err = s.Save("m", []byte{4, 5})
	require.NoError(t, err)

	got, err := s.Load("m")
	require.NoError(t, err)
	require.Equal(t, []byte{4, 5}, got)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not remain")
}

func TestStore_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load("missing")
	require.ErrorIs(t, err, errs.ErrReferenceNotFound)

	err = s.Verify("missing", []byte{1})
	require.ErrorIs(t, err, errs.ErrReferenceNotFound)
}

func TestStore_VerifyMismatch(t *testing.T) {
	s := newTestStore(t)
	img := testImage()
	_, err := s.Save("sample", img)
	require.NoError(t, err)

	changed := bytes.Clone(img)
	changed[130] ^= 0x01
	err = s.Verify("sample", changed)
	require.ErrorIs(t, err, errs.ErrReferenceMismatch)
	require.Contains(t, err.Error(), "offset 130")

	err = s.Verify("sample", img[:200])
	require.ErrorIs(t, err, errs.ErrReferenceMismatch)
	require.Contains(t, err.Error(), "offset 200")
}

func TestStore_DamagedFile(t *testing.T) {
	s := newTestStore(t, WithCompression(format.CompressionNone))
	img := testImage()
	_, err := s.Save("sample", img)
	require.NoError(t, err)

	raw, err := os.ReadFile(s.Path("sample"))
	require.NoError(t, err)

	// flip a payload byte: the digest catches it
	damaged := bytes.Clone(raw)
	damaged[HeaderSize+10] ^= 0xFF
	require.NoError(t, os.WriteFile(s.Path("sample"), damaged, 0o600))
	_, err = s.Load("sample")
	require.ErrorIs(t, err, errs.ErrInvalidReference)

	// truncated payload: the length check catches it
	require.NoError(t, os.WriteFile(s.Path("sample"), raw[:len(raw)-1], 0o600))
	_, err = s.Load("sample")
	require.ErrorIs(t, err, errs.ErrInvalidReference)

	// bad magic
	damaged = bytes.Clone(raw)
	damaged[0] = 'X'
	require.NoError(t, os.WriteFile(s.Path("sample"), damaged, 0o600))
	_, err = s.Load("sample")
	require.ErrorIs(t, err, errs.ErrInvalidReference)

	// unknown codec
	damaged = bytes.Clone(raw)
	damaged[4] = 0x7F
	require.NoError(t, os.WriteFile(s.Path("sample"), damaged, 0o600))
	_, err = s.Load("sample")
	require.ErrorIs(t, err, errs.ErrInvalidReference)

	// shorter than a header
	require.NoError(t, os.WriteFile(s.Path("sample"), raw[:5], 0o600))
	_, err = s.Load("sample")
	require.ErrorIs(t, err, errs.ErrInvalidReference)
}

func TestStore_BadNames(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"", ".", "..", "a/b", `a\b`} {
		_, err := s.Save(name, []byte{1})
		require.ErrorIs(t, err, errs.ErrInvalidReference, name)
		_, err = s.Load(name)
		require.ErrorIs(t, err, errs.ErrInvalidReference, name)
		require.False(t, s.Exists(name))
	}
}

func TestNewStore_Invalid(t *testing.T) {
	_, err := NewStore("")
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = NewStore(t.TempDir(), WithCompression(format.CompressionType(0)))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
}

func TestHeader_RoundTrip(t *testing.T) {
	h := Header{Codec: format.CompressionS2, Digest: 0x0102030405060708, RawLen: 0xA0B0C0D0}
	b := h.Bytes()
	require.Len(t, b, HeaderSize)
	require.Equal(t, []byte("IREF"), b[0:4])
	require.Equal(t, byte(0x03), b[4])
	require.Equal(t, []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}, b[5:13])
	require.Equal(t, []byte{0xD0, 0xC0, 0xB0, 0xA0}, b[13:17])

	var parsed Header
	require.NoError(t, parsed.Parse(b))
	require.Equal(t, h, parsed)

	require.ErrorIs(t, parsed.Parse(b[:10]), errs.ErrInvalidReference)
}

func TestFirstDifference(t *testing.T) {
	tests := []struct {
		name string
		a, b []byte
		want int
	}{
		{"both empty", nil, nil, -1},
		{"equal", []byte{1, 2, 3}, []byte{1, 2, 3}, -1},
		{"first byte", []byte{1, 2}, []byte{9, 2}, 0},
		{"middle", []byte{1, 2, 3}, []byte{1, 9, 3}, 1},
		{"prefix", []byte{1, 2}, []byte{1, 2, 3}, 2},
		{"longer", []byte{1, 2, 3}, []byte{1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, FirstDifference(tt.a, tt.b))
		})
	}
}
