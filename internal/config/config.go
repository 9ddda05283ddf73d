// Package config loads the watershed service configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Defaults used when a key is missing from the file.
const (
	DefaultAddr                    = ":8080"
	DefaultRequestTimeout          = 30 * time.Second
	DefaultShutdownTimeout         = 5 * time.Second
	DefaultHighResolutionMaxSteps  = 1000
	DefaultLowResolutionMaxSteps   = 16384
	DefaultHighResolutionThreshold = 20
	DefaultShapeUnits              = "1 m"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the root of the YAML document.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Tracing TracingConfig `yaml:"tracing"`
	Logging LoggingConfig `yaml:"logging"`
	Layers  LayersConfig  `yaml:"layers"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// Watch reloads the layers when one of their files changes.
	Watch bool `yaml:"watch"`
}

// TracingConfig holds the step budgets and thresholds of the hydrology
// operations.
type TracingConfig struct {
	HighResolutionMaxSteps int `yaml:"high_resolution_max_steps"`
	LowResolutionMaxSteps  int `yaml:"low_resolution_max_steps"`
	// HighResolutionThreshold is the low-resolution accumulation at the
	// pour point from which the low-resolution grid is used even when a
	// high-resolution tile covers the point.
	HighResolutionThreshold float64 `yaml:"high_resolution_threshold"`
	// SnapTolerance is the default pour point search radius in map units.
	SnapTolerance float64 `yaml:"snap_tolerance"`
}

// LoggingConfig selects the zap preset and level.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// LayersConfig names the files backing each layer. Relative paths are
// resolved against the directory of the configuration file.
type LayersConfig struct {
	ShapeUnits       string         `yaml:"shape_units"`
	FlowDirection    string         `yaml:"flow_direction"`
	FlowAccumulation string         `yaml:"flow_accumulation"`
	FlowArea         string         `yaml:"flow_area"`
	FlowLines        string         `yaml:"flow_lines"`
	Tiles            []TileConfig   `yaml:"tiles"`
	Rasters          []RasterConfig `yaml:"rasters"`
}

// TileConfig is one high-resolution tile.
type TileConfig struct {
	FlowDirection    string `yaml:"flow_direction"`
	FlowAccumulation string `yaml:"flow_accumulation"`
}

// RasterConfig is one queryable raster layer.
type RasterConfig struct {
	ID    int    `yaml:"id"`
	Name  string `yaml:"name"`
	Path  string `yaml:"path"`
	Units string `yaml:"units"`
}

// Default returns a configuration with every default applied and no layers.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			RequestTimeout:  DefaultRequestTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Tracing: TracingConfig{
			HighResolutionMaxSteps:  DefaultHighResolutionMaxSteps,
			LowResolutionMaxSteps:   DefaultLowResolutionMaxSteps,
			HighResolutionThreshold: DefaultHighResolutionThreshold,
		},
		Logging: LoggingConfig{Level: "info"},
		Layers:  LayersConfig{ShapeUnits: DefaultShapeUnits},
	}
}

// Load reads path over Default, resolves layer paths relative to the file
// and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Layers.resolve(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML over Default without validating.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

// Validate reports every problem at once, each wrapped in ErrInvalid.
func (c Config) Validate() error {
	var err error
	add := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Server.Addr == "" {
		add("server.addr is empty")
	}
	if c.Server.RequestTimeout <= 0 {
		add("server.request_timeout must be positive, got %s", c.Server.RequestTimeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		add("server.shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout)
	}
	if c.Tracing.HighResolutionMaxSteps < 0 {
		add("tracing.high_resolution_max_steps cannot be negative")
	}
	if c.Tracing.LowResolutionMaxSteps < 0 {
		add("tracing.low_resolution_max_steps cannot be negative")
	}
	if c.Tracing.SnapTolerance < 0 {
		add("tracing.snap_tolerance cannot be negative")
	}
	if _, perr := zapcore.ParseLevel(c.Logging.Level); perr != nil {
		add("logging.level %q: %v", c.Logging.Level, perr)
	}

	if c.Layers.FlowDirection == "" {
		add("layers.flow_direction is required")
	}
	if c.Layers.FlowAccumulation == "" {
		add("layers.flow_accumulation is required")
	}
	if c.Layers.FlowArea != "" && c.Layers.FlowLines == "" {
		add("layers.flow_area needs layers.flow_lines")
	}
	for i, t := range c.Layers.Tiles {
		if t.FlowDirection == "" || t.FlowAccumulation == "" {
			add("layers.tiles[%d] needs flow_direction and flow_accumulation", i)
		}
	}
	ids := make(map[int]bool, len(c.Layers.Rasters))
	for i, r := range c.Layers.Rasters {
		switch {
		case r.ID < 0:
			add("layers.rasters[%d].id cannot be negative", i)
		case ids[r.ID]:
			add("layers.rasters[%d].id %d is duplicated", i, r.ID)
		}
		ids[r.ID] = true
		if r.Path == "" {
			add("layers.rasters[%d].path is required", i)
		}
	}
	return err
}

// Files lists every file referenced by the layers, for watching.
func (l LayersConfig) Files() []string {
	var out []string
	for _, p := range []string{l.FlowDirection, l.FlowAccumulation, l.FlowArea, l.FlowLines} {
		if p != "" {
			out = append(out, p)
		}
	}
	for _, t := range l.Tiles {
		out = append(out, t.FlowDirection, t.FlowAccumulation)
	}
	for _, r := range l.Rasters {
		out = append(out, r.Path)
	}
	return out
}

func (l *LayersConfig) resolve(dir string) {
	abs := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	abs(&l.FlowDirection)
	abs(&l.FlowAccumulation)
	abs(&l.FlowArea)
	abs(&l.FlowLines)
	for i := range l.Tiles {
		abs(&l.Tiles[i].FlowDirection)
		abs(&l.Tiles[i].FlowAccumulation)
	}
	for i := range l.Rasters {
		abs(&l.Rasters[i].Path)
	}
}
