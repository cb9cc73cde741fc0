/*package config reads the parameters of the aurora scripts. Values start at
Default, are overwritten by a TOML file, and finally by TOPAZ_* environment
variables.*/
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/abatten/TOPAZ/fields"
	"github.com/abatten/TOPAZ/io/snapshot"
	"github.com/abatten/TOPAZ/logging"
	"github.com/abatten/TOPAZ/ray"
	"github.com/abatten/TOPAZ/stats"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "TOPAZ_"

// Config holds the parameters for computing histories, making rays and
// drawing plots.
type Config struct {
	// Snapshot discovery
	SnapshotFormat string   `toml:"snapshot_format" env:"SNAPSHOT_FORMAT"`
	Snapshots      []string `toml:"snapshots" env:"SNAPSHOTS" envSeparator:","`

	// Ion histories
	Ion       string `toml:"ion" env:"ION"`
	Weighting string `toml:"weighting" env:"WEIGHTING"` // mass, volume or ""
	History   string `toml:"history" env:"HISTORY"`     // SQLite file, optional

	// Rays
	Lines       []string `toml:"lines" env:"LINES" envSeparator:","`
	Axis        string   `toml:"axis" env:"AXIS"`
	RayFilename string   `toml:"ray_filename" env:"RAY_FILENAME"`
	RayPrefix   string   `toml:"ray_prefix" env:"RAY_PREFIX"`
	OutputDir   string   `toml:"output_dir" env:"OUTPUT_DIR"`
	BatchSize   int      `toml:"batch_size" env:"BATCH_SIZE"`
	Samples     int      `toml:"samples" env:"SAMPLES"`
	Seed        int64    `toml:"seed" env:"SEED"` // 0 seeds from the clock
	ReturnRay   bool     `toml:"return_ray" env:"RETURN_RAY"`

	// Plots
	Pixels         int     `toml:"pixels" env:"PIXELS"`
	Colors         int     `toml:"colors" env:"COLORS"`
	SliceCenter    float64 `toml:"slice_center" env:"SLICE_CENTER"`       // unit: box size
	SliceThickness float64 `toml:"slice_thickness" env:"SLICE_THICKNESS"` // unit: box size

	// Logging
	Debug    bool   `toml:"debug" env:"DEBUG"`
	LogLevel string `toml:"log_level" env:"LOG_LEVEL"`
	Quiet    bool   `toml:"quiet" env:"QUIET"`
}

// Default returns a new Config with the default parameters.
func Default() *Config {
	return &Config{
		SnapshotFormat: snapshot.DefaultFormat,
		Ion:            "HI",
		Weighting:      "volume",
		Lines:          []string{"HI", "HII"},
		Axis:           "z",
		RayFilename:    "ray.h5",
		RayPrefix:      "ray",
		OutputDir:      ".",
		BatchSize:      10,
		Samples:        ray.DefaultSamples,
		Pixels:         256,
		Colors:         64,
		SliceCenter:    0.5,
		SliceThickness: 0.1,
	}
}

// Load reads the TOML file at path (if path isn't empty) over the defaults,
// applies environment overrides, and validates the result. Unknown keys in the
// file are an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil { return nil, fmt.Errorf("parse config %s: %w", path, err) }
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i := range undecoded { keys[i] = undecoded[i].String() }
			sort.Strings(keys)
			return nil, fmt.Errorf("unknown keys in %s: %s",
				path, strings.Join(keys, ", "))
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{ Prefix: EnvPrefix }); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil { return nil, err }
	return cfg, nil
}

// Validate checks every parameter that can be checked without touching the
// file system.
func (cfg *Config) Validate() error {
	if err := snapshot.ValidateKeys(); err != nil { return err }

	if strings.Count(cfg.SnapshotFormat, "%s") != 1 {
		return fmt.Errorf("snapshot_format '%s' must contain exactly one %%s",
			cfg.SnapshotFormat)
	}
	if _, err := stats.ParseWeighting(cfg.Weighting); err != nil { return err }
	if _, err := fields.IonField(cfg.Ion); err != nil { return err }
	if _, err := ray.ParseAxis(cfg.Axis); err != nil { return err }
	if _, err := ray.ValidateLines(cfg.Lines); err != nil { return err }

	switch {
	case cfg.BatchSize < 0:
		return fmt.Errorf("batch_size must be non-negative, not %d", cfg.BatchSize)
	case cfg.Samples < 2:
		return fmt.Errorf("samples must be at least 2, not %d", cfg.Samples)
	case cfg.Pixels <= 0:
		return fmt.Errorf("pixels must be positive, not %d", cfg.Pixels)
	case cfg.Colors < 2:
		return fmt.Errorf("colors must be at least 2, not %d", cfg.Colors)
	case cfg.SliceThickness <= 0 || cfg.SliceThickness > 1:
		return fmt.Errorf("slice_thickness must be in (0, 1], not %g",
			cfg.SliceThickness)
	case strings.TrimSpace(cfg.RayPrefix) == "":
		return fmt.Errorf("ray_prefix can't be empty")
	case strings.TrimSpace(cfg.RayFilename) == "":
		return fmt.Errorf("ray_filename can't be empty")
	}

	return nil
}

// WeightingMode returns the parsed weighting. Call Validate first.
func (cfg *Config) WeightingMode() stats.Weighting {
	w, err := stats.ParseWeighting(cfg.Weighting)
	if err != nil { panic(err.Error()) }
	return w
}

// RayAxis returns the parsed ray axis. Call Validate first.
func (cfg *Config) RayAxis() ray.Axis {
	a, err := ray.ParseAxis(cfg.Axis)
	if err != nil { panic(err.Error()) }
	return a
}

// Logging returns the logger configuration.
func (cfg *Config) Logging() logging.Config {
	return logging.Config{ Debug: cfg.Debug, Level: cfg.LogLevel, Quiet: cfg.Quiet }
}
