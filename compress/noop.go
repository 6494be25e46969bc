package compress

// NoOpCodec stores data uncompressed. Small fixtures often do not shrink, and
// an uncompressed reference is readable with a hex dump.
type NoOpCodec struct{}

var _ Codec = (*NoOpCodec)(nil)

// NewNoOpCodec creates a codec that passes data through.
func NewNoOpCodec() NoOpCodec {
	return NoOpCodec{}
}

// Compress returns data itself. The result shares memory with the input.
func (c NoOpCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data itself. The result shares memory with the input.
func (c NoOpCodec) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
