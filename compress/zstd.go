package compress

// ZstdCodec is Zstandard at the default level. It gives the best ratio of the
// built-in codecs and is the default for reference fixtures.
//
// The pure Go backend (klauspost/compress) is used unless the module is built
// with cgo and the gozstd tag, which switches to valyala/gozstd.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a Zstandard codec.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}
