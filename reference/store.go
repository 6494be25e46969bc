// Package reference keeps known-good map images on disk and compares new
// output against them.
//
// A reference file is a Header followed by the image compressed with the codec
// named in the header. The header digest covers the uncompressed image, so a
// damaged file is detected on Load rather than reported as a mismatch.
package reference

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gpsmapkit/imgcodec/compress"
	"github.com/gpsmapkit/imgcodec/errs"
	"github.com/gpsmapkit/imgcodec/format"
	"github.com/gpsmapkit/imgcodec/internal/hash"
	"github.com/gpsmapkit/imgcodec/internal/options"
)

// Config holds the store settings.
type Config struct {
	compression format.CompressionType
}

// Option configures a Store.
type Option = options.Option[*Config]

// WithCompression sets the codec used by Save. Load always uses the codec
// recorded in the file.
func WithCompression(ct format.CompressionType) Option {
	return options.New(func(c *Config) error {
		if _, err := compress.GetCodec(ct); err != nil {
			return fmt.Errorf("%w: reference compression: %w", errs.ErrInvalidConfig, err)
		}
		c.compression = ct

		return nil
	})
}

// Store is a directory of reference files.
type Store struct {
	dir string
	cfg Config
}

// NewStore opens a store rooted at dir. The directory is created on the first Save.
//
// Parameters:
//   - dir: root directory
//   - opts: store options, zstd compression by default
//
// Returns:
//   - *Store: the store
//   - error: ErrInvalidConfig for an empty dir or a bad option
func NewStore(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty reference directory", errs.ErrInvalidConfig)
	}

	cfg := Config{compression: format.CompressionZstd}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	return &Store{dir: dir, cfg: cfg}, nil
}

// Dir returns the root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Compression returns the codec used by Save.
func (s *Store) Compression() format.CompressionType {
	return s.cfg.compression
}

// Path returns the file path of a reference name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+FileExt)
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: bad name %q", errs.ErrInvalidReference, name)
	}

	return nil
}

// Exists reports whether a reference is stored under name.
func (s *Store) Exists(name string) bool {
	if checkName(name) != nil {
		return false
	}
	_, err := os.Stat(s.Path(name))

	return err == nil
}

// Save stores data under name, replacing an existing reference.
//
// The file is written to a temporary name first and renamed into place, so a
// crash never leaves a truncated reference behind.
func (s *Store) Save(name string, data []byte) (compress.Stats, error) {
	if err := checkName(name); err != nil {
		return compress.Stats{}, err
	}
	if uint64(len(data)) > uint64(^uint32(0)) {
		return compress.Stats{}, fmt.Errorf("%w: %d bytes", errs.ErrMapTooBig, len(data))
	}

	payload, stats, err := compress.Measure(s.cfg.compression, data)
	if err != nil {
		return compress.Stats{}, err
	}

	h := Header{
		Codec:  s.cfg.compression,
		Digest: hash.Digest(data),
		RawLen: uint32(len(data)), //nolint:gosec // G115: checked above
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return compress.Stats{}, fmt.Errorf("create reference dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp*")
	if err != nil {
		return compress.Stats{}, fmt.Errorf("create reference %s: %w", name, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after rename

	if _, err := tmp.Write(h.Bytes()); err != nil {
		_ = tmp.Close()

		return compress.Stats{}, fmt.Errorf("write reference %s: %w", name, err)
	}
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()

		return compress.Stats{}, fmt.Errorf("write reference %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return compress.Stats{}, fmt.Errorf("close reference %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(name)); err != nil {
		return compress.Stats{}, fmt.Errorf("install reference %s: %w", name, err)
	}

	return stats, nil
}

// Load reads and decompresses the reference stored under name.
//
// Returns:
//   - []byte: the raw image
//   - error: ErrReferenceNotFound, or ErrInvalidReference when the file is
//     damaged or its digest does not match
func (s *Store) Load(name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", errs.ErrReferenceNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read reference %s: %w", name, err)
	}

	return Decode(raw)
}

// Decode parses a whole reference file.
func Decode(raw []byte) ([]byte, error) {
	if len(raw) < HeaderSize {
		return nil, fmt.Errorf("%w: file is %d bytes", errs.ErrInvalidReference, len(raw))
	}

	var h Header
	if err := h.Parse(raw[:HeaderSize]); err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(h.Codec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidReference, err)
	}

	data, err := codec.Decompress(raw[HeaderSize:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidReference, err)
	}
	if uint64(len(data)) != uint64(h.RawLen) {
		return nil, fmt.Errorf("%w: length %d, header says %d", errs.ErrInvalidReference, len(data), h.RawLen)
	}
	if got := hash.Digest(data); got != h.Digest {
		return nil, fmt.Errorf("%w: digest 0x%016X, header says 0x%016X", errs.ErrInvalidReference, got, h.Digest)
	}

	return data, nil
}

// Verify compares data against the reference stored under name.
//
// A difference returns an error wrapping ErrReferenceMismatch that names the
// first differing byte offset.
func (s *Store) Verify(name string, data []byte) error {
	want, err := s.Load(name)
	if err != nil {
		return err
	}

	if off := FirstDifference(want, data); off >= 0 {
		return fmt.Errorf("%w: %s first differs at offset %d (got %d bytes, want %d)",
			errs.ErrReferenceMismatch, name, off, len(data), len(want))
	}

	return nil
}

// FirstDifference returns the first offset at which a and b differ, or -1 when
// they are equal. A strict prefix differs at the length of the shorter slice.
func FirstDifference(a, b []byte) int {
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}

	return -1
}
