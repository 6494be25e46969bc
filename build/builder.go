package build

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"

	"github.com/gpsmapkit/imgcodec/errs"
	"github.com/gpsmapkit/imgcodec/internal/collision"
	"github.com/gpsmapkit/imgcodec/numbers"
	"github.com/gpsmapkit/imgcodec/route"
	"github.com/gpsmapkit/imgcodec/section"
)

// Builder turns Maps into images. It is safe for concurrent use.
type Builder struct {
	cfg     *Config
	numbers *numbers.Encoder
	shift   int

	// route encoders run one cycle at a time, so each worker borrows one
	encoders sync.Pool
}

// NewBuilder creates a builder.
//
// Returns:
//   - *Builder: the builder
//   - error: ErrInvalidConfig when an option, number option or route option
//     is rejected
func NewBuilder(opts ...Option) (*Builder, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	numEnc, err := numbers.NewEncoder(cfg.numberOpts...)
	if err != nil {
		return nil, err
	}

	probe, err := route.NewEncoder(cfg.routeOpts...)
	if err != nil {
		return nil, err
	}
	routeCfg := probe.Config()

	b := &Builder{
		cfg:     cfg,
		numbers: numEnc,
		shift:   routeCfg.AlignmentShift(),
	}
	b.encoders.New = func() any {
		// options were validated by the probe above
		enc, _ := route.NewEncoder(cfg.routeOpts...)
		return enc
	}
	b.encoders.Put(probe)

	return b, nil
}

// Config returns the builder settings.
func (b *Builder) Config() Config {
	return *b.cfg
}

// AlignmentShift returns the block size shift used for partitions.
func (b *Builder) AlignmentShift() int {
	return b.shift
}

type encodedRoad struct {
	road   *Road
	stream *numbers.Stream
}

type encodedPartition struct {
	data []byte
}

// Build encodes one map.
//
// Roads and partitions are encoded in parallel. A unit that cannot be encoded
// is left out and recorded in the report; the map still builds.
//
// Returns:
//   - *Image: the assembled image
//   - error: ErrDuplicateRoad for repeated road IDs, ErrMapTooBig when the
//     image exceeds the size limit, or the context's error
func (b *Builder) Build(ctx context.Context, m *Map) (*Image, error) {
	logger := log.With(b.cfg.logger, "map", m.Name)

	ids := collision.NewTracker(errs.ErrDuplicateRoad)
	for i := range m.Roads {
		if err := ids.Track(uint64(m.Roads[i].ID)); err != nil {
			return nil, fmt.Errorf("map %q: %w", m.Name, err)
		}
	}

	var (
		mu     sync.Mutex
		report = Report{Roads: len(m.Roads), Partitions: len(m.Partitions)}
	)
	drop := func(d Diagnostic) {
		level.Warn(logger).Log("msg", "unit dropped", d.Unit.String(), d.ID, "cause", d.Cause, "err", d.Err)
		mu.Lock()
		report.Diagnostics = append(report.Diagnostics, d)
		mu.Unlock()
	}

	roads, err := b.encodeRoads(ctx, logger, m.Roads, drop)
	if err != nil {
		return nil, err
	}
	parts, err := b.encodePartitions(ctx, logger, m.Partitions, drop)
	if err != nil {
		return nil, err
	}

	sortDiagnostics(report.Diagnostics)
	report.RoadsEncoded = len(compact(roads))
	report.PartitionsEncoded = len(compact(parts))

	img, err := b.assemble(m.Name, roads, parts)
	if err != nil {
		return nil, fmt.Errorf("map %q: %w", m.Name, err)
	}
	img.Report = report

	level.Info(logger).Log("msg", "map built", "bytes", img.Size(),
		"roads", report.RoadsEncoded, "partitions", report.PartitionsEncoded, "dropped", report.Dropped())

	return img, nil
}

func (b *Builder) encodeRoads(ctx context.Context, logger log.Logger, roads []Road, drop func(Diagnostic)) ([]*encodedRoad, error) {
	out := make([]*encodedRoad, len(roads))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.workers)
	for i := range roads {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			r := &roads[i]
			stream, err := b.numbers.Encode(r.Numbers)
			if err == nil && (stream.Count > section.MaxRoadCount || len(stream.Bytes) > section.MaxRoadStreamSize) {
				err = fmt.Errorf("%w: %d records in %d bytes", errs.ErrDoesNotFit, stream.Count, len(stream.Bytes))
			}
			if err != nil {
				drop(Diagnostic{Unit: UnitRoad, ID: uint64(r.ID), Cause: classify(err), Err: err})
				return nil
			}

			level.Debug(logger).Log("msg", "road encoded", "road", r.ID, "bytes", len(stream.Bytes),
				"format", stream.Format, "swapped", stream.Swapped)
			out[i] = &encodedRoad{road: r, stream: stream}

			return nil
		})
	}

	return out, g.Wait()
}

func (b *Builder) encodePartitions(ctx context.Context, logger log.Logger, parts []*route.Partition, drop func(Diagnostic)) ([]*encodedPartition, error) {
	out := make([]*encodedPartition, len(parts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.workers)
	for i, p := range parts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			data, err := b.encodePartition(p)
			if err != nil {
				drop(Diagnostic{Unit: UnitPartition, ID: uint64(i), Cause: classify(err), Err: err}) //nolint:gosec // G115: index
				return nil
			}

			level.Debug(logger).Log("msg", "partition encoded", "partition", i, "bytes", len(data))
			out[i] = &encodedPartition{data: data}

			return nil
		})
	}

	return out, g.Wait()
}

// encodePartition encodes p at offset 0 of its own sink. Partitions are
// position independent from any aligned start, so assemble can copy them.
func (b *Builder) encodePartition(p *route.Partition) ([]byte, error) {
	enc, _ := b.encoders.Get().(*route.Encoder)
	defer b.encoders.Put(enc)

	sink := section.NewMemorySink()
	defer sink.Release()

	if _, err := enc.Encode(sink, p); err != nil {
		return nil, err
	}

	return bytes.Clone(sink.Bytes()), nil
}

// BuildAll builds maps one after another. A failing map is reported in its
// Result and the remaining maps are still built, unless ctx is done.
func (b *Builder) BuildAll(ctx context.Context, maps []*Map) []Result {
	results := make([]Result, len(maps))
	for i, m := range maps {
		results[i].Name = m.Name
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}

		img, err := b.Build(ctx, m)
		if err != nil {
			level.Error(b.cfg.logger).Log("msg", "map failed", "map", m.Name, "err", err)
		}
		results[i].Image = img
		results[i].Err = err
	}

	return results
}
