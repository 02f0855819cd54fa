// Package config loads posetrack host configuration.
//
// Values come from, in increasing priority: built-in defaults, a TOML file,
// a .env file and the process environment.
package config

import (
	"bytes"
	"errors"
	"io/fs"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/teranos/posetrack"
	"github.com/teranos/posetrack/logger"
	"github.com/teranos/posetrack/trip"
)

// Environment variable names.
const (
	EnvMaxSamples       = "POSETRACK_MAX_SAMPLES"
	EnvMinSampleSpacing = "POSETRACK_MIN_SAMPLE_SPACING" // seconds
	EnvLogLevel         = "POSETRACK_LOG_LEVEL"
	EnvLogPath          = "POSETRACK_LOG_PATH"
)

// Config is the whole host configuration file.
type Config struct {
	Recorder RecorderSection `toml:"recorder"`
	Log      LogSection      `toml:"log"`
	Demo     DemoSection     `toml:"demo"`
}

// RecorderSection holds the two sampling tunables.
type RecorderSection struct {
	MaxSamples              int     `toml:"max_samples"`
	MinSampleSpacingSeconds float64 `toml:"min_sample_spacing_seconds"`
}

// LogSection mirrors logger.Config.
type LogSection struct {
	Level      string `toml:"level"`
	Path       string `toml:"path"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// DemoSection configures the terminal demo.
type DemoSection struct {
	TickHz int     `toml:"tick_hz"`
	Step   float64 `toml:"step"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	rec := posetrack.DefaultRecorderConfig()
	return Config{
		Recorder: RecorderSection{
			MaxSamples:              rec.MaxSamples,
			MinSampleSpacingSeconds: rec.MinSampleSpacing.Seconds(),
		},
		Log: LogSection{
			Level:      string(logger.InfoLevel),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Demo: DemoSection{
			TickHz: 60,
			Step:   1,
		},
	}
}

// Load reads the TOML file at path over the defaults, then applies .env and
// environment overrides. A missing file is not an error; an empty path skips
// the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, trip.Wrap(trip.TypeConfig, err, "reading config file", trip.Context{"path": path})
		default:
			if err := Parse(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	// .env never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, trip.Wrap(trip.TypeConfig, err, "reading .env file", nil)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// Parse decodes TOML into cfg, keeping values the document leaves out.
// Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return trip.Wrap(trip.TypeConfig, err, "parsing config file", nil)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv(EnvMaxSamples); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return trip.Wrap(trip.TypeConfig, err, "parsing "+EnvMaxSamples, trip.Context{"value": v})
		}
		cfg.Recorder.MaxSamples = n
	}
	if v, ok := os.LookupEnv(EnvMinSampleSpacing); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return trip.Wrap(trip.TypeConfig, err, "parsing "+EnvMinSampleSpacing, trip.Context{"value": v})
		}
		cfg.Recorder.MinSampleSpacingSeconds = f
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		cfg.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvLogPath); ok {
		cfg.Log.Path = v
	}
	return nil
}

// Validate checks that the tunables are usable.
func (c Config) Validate() error {
	if c.Recorder.MaxSamples <= 0 {
		return trip.NewTrip(trip.TypeConfig, "recorder.max_samples must be positive",
			trip.Context{"value": c.Recorder.MaxSamples})
	}
	s := c.Recorder.MinSampleSpacingSeconds
	if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return trip.NewTrip(trip.TypeConfig, "recorder.min_sample_spacing_seconds must be positive",
			trip.Context{"value": s})
	}
	if _, err := logger.ParseLevel(logger.Level(c.Log.Level)); err != nil {
		return trip.Wrap(trip.TypeConfig, err, "log.level is not valid", nil)
	}
	if c.Demo.TickHz <= 0 {
		return trip.NewTrip(trip.TypeConfig, "demo.tick_hz must be positive",
			trip.Context{"value": c.Demo.TickHz})
	}
	return nil
}

// RecorderConfig converts the recorder section.
func (c Config) RecorderConfig() posetrack.RecorderConfig {
	return posetrack.RecorderConfig{
		MaxSamples:       c.Recorder.MaxSamples,
		MinSampleSpacing: time.Duration(c.Recorder.MinSampleSpacingSeconds * float64(time.Second)),
	}
}

// LoggerConfig converts the log section. Console output is left to the caller.
func (c Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:      logger.Level(c.Log.Level),
		OutputPath: c.Log.Path,
		MaxSize:    c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAge:     c.Log.MaxAgeDays,
		Compress:   c.Log.Compress,
	}
}

// TickInterval is the demo's frame period.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Demo.TickHz)
}
