// Package compress provides the codecs used to store reference map images.
//
// Encoded map images are already dense, so compression here is about keeping
// checked-in golden files small rather than about the device format itself.
// The codec is recorded in each reference file by its format.CompressionType.
//
// Supported algorithms:
//   - format.CompressionNone: stored as-is (NoOpCodec)
//   - format.CompressionZstd: best ratio, the default (ZstdCodec)
//   - format.CompressionS2: fast block format (S2Codec)
//   - format.CompressionLZ4: fast decompression (LZ4Codec)
//
// Usage:
//
//	codec, err := compress.CreateCodec(format.CompressionZstd)
//	if err != nil {
//		return err
//	}
//	packed, err := codec.Compress(image)
//
// # Zstd backends
//
// ZstdCodec uses github.com/klauspost/compress/zstd by default. Building with
// cgo enabled and the gozstd tag switches it to github.com/valyala/gozstd:
//
//	go build -tags gozstd ./...
//
// Both backends read each other's frames.
package compress
