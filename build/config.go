package build

import (
	"fmt"
	"runtime"

	"github.com/go-kit/log"

	"github.com/gpsmapkit/imgcodec/errs"
	"github.com/gpsmapkit/imgcodec/internal/options"
	"github.com/gpsmapkit/imgcodec/numbers"
	"github.com/gpsmapkit/imgcodec/route"
	"github.com/gpsmapkit/imgcodec/section"
)

// Config holds the builder settings.
type Config struct {
	workers    int
	logger     log.Logger
	maxMapSize int64
	numberOpts []numbers.Option
	routeOpts  []route.Option
}

// Option configures a Builder.
type Option = options.Option[*Config]

func newConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		workers:    runtime.GOMAXPROCS(0),
		logger:     log.NewNopLogger(),
		maxMapSize: section.DefaultMaxMapSize,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Workers returns the number of units encoded in parallel.
func (c *Config) Workers() int { return c.workers }

// MaxMapSize returns the image size limit in bytes.
func (c *Config) MaxMapSize() int64 { return c.maxMapSize }

// WithWorkers sets how many roads or partitions are encoded in parallel.
// The default is GOMAXPROCS.
func WithWorkers(n int) Option {
	return options.New(func(c *Config) error {
		if n < 1 {
			return fmt.Errorf("%w: workers must be positive, got %d", errs.ErrInvalidConfig, n)
		}
		c.workers = n

		return nil
	})
}

// WithLogger sets the logger for diagnostics. The default discards everything.
func WithLogger(logger log.Logger) Option {
	return options.NoError(func(c *Config) {
		if logger == nil {
			logger = log.NewNopLogger()
		}
		c.logger = logger
	})
}

// WithMaxMapSize sets the image size limit. It cannot exceed what the header
// offsets can address.
func WithMaxMapSize(size int64) Option {
	return options.New(func(c *Config) error {
		if size < section.HeaderSize || size > section.MaxSectionOffset {
			return fmt.Errorf("%w: max map size %d out of range [%d, %d]",
				errs.ErrInvalidConfig, size, section.HeaderSize, int64(section.MaxSectionOffset))
		}
		c.maxMapSize = size

		return nil
	})
}

// WithNumberOptions passes options to the house-number encoder.
func WithNumberOptions(opts ...numbers.Option) Option {
	return options.NoError(func(c *Config) {
		c.numberOpts = append(c.numberOpts, opts...)
	})
}

// WithRouteOptions passes options to every partition encoder.
func WithRouteOptions(opts ...route.Option) Option {
	return options.NoError(func(c *Config) {
		c.routeOpts = append(c.routeOpts, opts...)
	})
}
