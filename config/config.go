// Package config loads the imgenc configuration file and the YAML map input.
//
// A configuration file has three sections, each optional:
//
//	format:
//	  alignment_shift: 6
//	  min_field_width: 2
//	  max_field_width: 18
//	  max_map_size: 16777215
//	build:
//	  workers: 0        # 0 uses GOMAXPROCS
//	reference:
//	  dir: testdata/reference
//	  compression: zstd
//
// Missing keys keep their defaults. Unknown keys are rejected so a typo does
// not silently fall back to a default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log"
	"gopkg.in/yaml.v3"

	"github.com/gpsmapkit/imgcodec/build"
	"github.com/gpsmapkit/imgcodec/errs"
	"github.com/gpsmapkit/imgcodec/format"
	"github.com/gpsmapkit/imgcodec/numbers"
	"github.com/gpsmapkit/imgcodec/reference"
	"github.com/gpsmapkit/imgcodec/route"
	"github.com/gpsmapkit/imgcodec/section"
)

// Config is the root of the configuration file.
type Config struct {
	Format    FormatConfig    `yaml:"format"`
	Build     BuildConfig     `yaml:"build"`
	Reference ReferenceConfig `yaml:"reference"`
}

// FormatConfig holds the device format constants. Encoder and decoder must
// agree on all of them.
type FormatConfig struct {
	AlignmentShift int   `yaml:"alignment_shift"`
	MinFieldWidth  int   `yaml:"min_field_width"`
	MaxFieldWidth  int   `yaml:"max_field_width"`
	MaxMapSize     int64 `yaml:"max_map_size"`
}

// BuildConfig tunes the map builder.
type BuildConfig struct {
	Workers int `yaml:"workers"`
}

// ReferenceConfig locates the reference store.
type ReferenceConfig struct {
	Dir         string `yaml:"dir"`
	Compression string `yaml:"compression"`
}

// Default returns the configuration with every default applied.
func Default() *Config {
	return &Config{
		Format: FormatConfig{
			AlignmentShift: section.DefaultAlignmentShift,
			MinFieldWidth:  numbers.DefaultMinFieldWidth,
			MaxFieldWidth:  numbers.DefaultMaxFieldWidth,
			MaxMapSize:     section.DefaultMaxMapSize,
		},
		Reference: ReferenceConfig{
			Dir:         "testdata/reference",
			Compression: "zstd",
		},
	}
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result. Empty input
// yields the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every value by building the components it configures.
func (c *Config) Validate() error {
	if _, err := numbers.NewEncoder(c.NumberOptions()...); err != nil {
		return err
	}
	if _, err := route.NewEncoder(c.RouteOptions()...); err != nil {
		return err
	}
	if c.Build.Workers < 0 {
		return fmt.Errorf("%w: build.workers must not be negative", errs.ErrInvalidConfig)
	}
	if _, err := build.NewBuilder(c.BuildOptions(nil)...); err != nil {
		return err
	}
	if _, err := c.Compression(); err != nil {
		return err
	}

	return nil
}

// Compression returns the parsed reference codec.
func (c *Config) Compression() (format.CompressionType, error) {
	ct, err := format.ParseCompressionType(c.Reference.Compression)
	if err != nil {
		return 0, fmt.Errorf("%w: reference.compression: %w", errs.ErrInvalidConfig, err)
	}

	return ct, nil
}

// NumberOptions converts the format section to number encoder options.
func (c *Config) NumberOptions() []numbers.Option {
	return []numbers.Option{
		numbers.WithMinFieldWidth(c.Format.MinFieldWidth),
		numbers.WithMaxFieldWidth(c.Format.MaxFieldWidth),
	}
}

// RouteOptions converts the format section to partition encoder options.
func (c *Config) RouteOptions() []route.Option {
	return []route.Option{route.WithAlignmentShift(c.Format.AlignmentShift)}
}

// BuildOptions converts the whole configuration to builder options. A nil
// logger keeps the builder's default.
func (c *Config) BuildOptions(logger log.Logger) []build.Option {
	opts := []build.Option{
		build.WithMaxMapSize(c.Format.MaxMapSize),
		build.WithNumberOptions(c.NumberOptions()...),
		build.WithRouteOptions(c.RouteOptions()...),
	}
	if c.Build.Workers > 0 {
		opts = append(opts, build.WithWorkers(c.Build.Workers))
	}
	if logger != nil {
		opts = append(opts, build.WithLogger(logger))
	}

	return opts
}

// ReferenceStore opens the configured reference store.
func (c *Config) ReferenceStore() (*reference.Store, error) {
	ct, err := c.Compression()
	if err != nil {
		return nil, err
	}

	return reference.NewStore(c.Reference.Dir, reference.WithCompression(ct))
}
