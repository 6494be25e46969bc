// Package build assembles map images from roads and routing partitions.
//
// A Builder encodes the house numbers of every road and every routing
// partition of a Map in parallel, then lays the results out behind a NOD
// header:
//
//	offset 0    NODHeader (32 bytes)
//	offset 32   partition directory, 8 bytes per partition
//	aligned     partition 0, partition 1, ... each at a block boundary
//	            number region: RoadEntry + stream, per road
//
// Units are independent. A road whose numbers cannot be represented, or a
// partition that fails to encode, is left out and reported as a Diagnostic;
// the rest of the map still builds. Only repeated road IDs, an image over the
// size limit and cancellation fail a whole map.
//
// Usage:
//
//	b, err := build.NewBuilder(build.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	img, err := b.Build(ctx, m)
//
// Inspect reverses Build and is what the imgenc inspect command prints.
package build
