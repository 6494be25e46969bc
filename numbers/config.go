package numbers

import (
	"fmt"

	"github.com/gpsmapkit/imgcodec/bitio"
	"github.com/gpsmapkit/imgcodec/errs"
	"github.com/gpsmapkit/imgcodec/internal/options"
)

const (
	// DefaultMinFieldWidth is the device-mandated minimum width of a delta field.
	DefaultMinFieldWidth = 2
	// DefaultMaxFieldWidth is the widest delta field the device accepts,
	// sign bit included.
	DefaultMaxFieldWidth = 18
	// MaxBaselineWidth is the widest baseline the header can carry.
	MaxBaselineWidth = 20
	// MaxSkip is the largest node index gap one index record can carry.
	MaxSkip = 1<<16 - 1
)

// Config holds the format constants of a number stream.
type Config struct {
	minWidth int
	maxWidth int
}

// Option configures a number encoder or decoder.
type Option = options.Option[*Config]

func newConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		minWidth: DefaultMinFieldWidth,
		maxWidth: DefaultMaxFieldWidth,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.minWidth > cfg.maxWidth {
		return nil, fmt.Errorf("%w: minimum field width %d exceeds maximum %d", errs.ErrInvalidConfig, cfg.minWidth, cfg.maxWidth)
	}

	return cfg, nil
}

// MinFieldWidth returns the configured minimum field width.
func (c *Config) MinFieldWidth() int { return c.minWidth }

// MaxFieldWidth returns the configured maximum field width.
func (c *Config) MaxFieldWidth() int { return c.maxWidth }

// WithMinFieldWidth sets the minimum field width. Decoders must use the same
// value as the encoder, it is not stored in the stream.
func WithMinFieldWidth(width int) Option {
	return options.New(func(c *Config) error {
		if width < 0 || width >= bitio.MaxBitsPerWrite {
			return fmt.Errorf("%w: minimum field width %d", errs.ErrInvalidConfig, width)
		}
		c.minWidth = width

		return nil
	})
}

// WithMaxFieldWidth sets the widest field, sign bit included, a stream may use.
func WithMaxFieldWidth(width int) Option {
	return options.New(func(c *Config) error {
		if width < 1 || width > bitio.MaxBitsPerWrite {
			return fmt.Errorf("%w: maximum field width %d", errs.ErrInvalidConfig, width)
		}
		c.maxWidth = width

		return nil
	})
}
