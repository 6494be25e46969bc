package route

import (
	"github.com/gpsmapkit/imgcodec/internal/options"
	"github.com/gpsmapkit/imgcodec/section"
)

// Config holds the format constants of a partition encoder.
type Config struct {
	alignmentShift int
}

// Option configures a partition encoder.
type Option = options.Option[*Config]

func newConfig(opts ...Option) (*Config, error) {
	cfg := &Config{alignmentShift: section.DefaultAlignmentShift}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AlignmentShift returns the configured alignment shift.
func (c *Config) AlignmentShift() int {
	return c.alignmentShift
}

// WithAlignmentShift sets the block size used for table pointers to 1<<shift
// bytes. The default is section.DefaultAlignmentShift.
func WithAlignmentShift(shift int) Option {
	return options.New(func(c *Config) error {
		if err := section.ValidateAlignmentShift(shift); err != nil {
			return err
		}
		c.alignmentShift = shift

		return nil
	})
}
