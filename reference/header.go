package reference

import (
	"fmt"

	"github.com/gpsmapkit/imgcodec/endian"
	"github.com/gpsmapkit/imgcodec/errs"
	"github.com/gpsmapkit/imgcodec/format"
)

const (
	// Magic starts every reference file.
	Magic = "IREF"
	// HeaderSize is the fixed header size: magic, codec, digest, raw length.
	HeaderSize = 4 + 1 + 8 + 4
	// FileExt is appended to the reference name to form the file name.
	FileExt = ".iref"
)

// Header is the fixed prefix of a reference file.
type Header struct {
	Codec  format.CompressionType // byte offset 4
	Digest uint64                 // byte offset 5-12, xxHash64 of the raw image
	RawLen uint32                 // byte offset 13-16
}

// Parse parses the header from exactly HeaderSize bytes.
func (h *Header) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return fmt.Errorf("%w: header is %d bytes", errs.ErrInvalidReference, len(data))
	}
	if string(data[0:4]) != Magic {
		return fmt.Errorf("%w: bad magic %q", errs.ErrInvalidReference, data[0:4])
	}

	engine := endian.GetLittleEndianEngine()

	h.Codec = format.CompressionType(data[4])
	h.Digest = engine.Uint64(data[5:13])
	h.RawLen = engine.Uint32(data[13:17])

	return nil
}

// Bytes serializes the header.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)

	engine := endian.GetLittleEndianEngine()

	copy(b[0:4], Magic)
	b[4] = byte(h.Codec)
	engine.PutUint64(b[5:13], h.Digest)
	engine.PutUint32(b[13:17], h.RawLen)

	return b
}
