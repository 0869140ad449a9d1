// Package config holds the application configuration and resolves it from
// defaults, an optional TOML file, FIBDEV_* environment variables and
// command-line flags, in increasing order of priority.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	apperrors "github.com/agbru/fibdev/internal/errors"
	"github.com/agbru/fibdev/internal/fibonacci"
)

// EnvPrefix is the prefix shared by every environment override.
const EnvPrefix = "FIBDEV_"

// Defaults.
const (
	DefaultAddr            = ":8080"
	DefaultLogLevel        = "info"
	DefaultRuns            = 5
	DefaultShutdownTimeout = 5 * time.Second
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// MaxIndex is the cursor ceiling of the device.
	MaxIndex int64
	// Engine selects the compute engine by name ("fast", "iterative").
	Engine string
	// Addr is the listen address of the HTTP front.
	Addr string
	// LogLevel is a zerolog level name.
	LogLevel string
	// LogJSON switches the logger from console to JSON output.
	LogJSON bool
	// NoColor disables ANSI colors in the CLI and TUI.
	NoColor bool
	// Runs is the number of repetitions per index in a timing sweep.
	Runs int
	// Verify cross-checks every sweep result against the exact oracle.
	Verify bool
	// Output, if set, is the file the sweep writes to instead of stdout.
	Output string
	// ShutdownTimeout bounds the graceful shutdown of the HTTP front.
	ShutdownTimeout time.Duration
	// ConfigFile is the optional TOML file path.
	ConfigFile string
}

// Default returns the configuration used when nothing overrides it.
func Default() AppConfig {
	return AppConfig{
		MaxIndex:        fibonacci.DefaultMaxIndex,
		Engine:          fibonacci.EngineFastDoubling,
		Addr:            DefaultAddr,
		LogLevel:        DefaultLogLevel,
		Runs:            DefaultRuns,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// BindFlags registers every configuration flag on fs, backed by cfg. The
// current values of cfg become the flag defaults.
func BindFlags(fs *pflag.FlagSet, cfg *AppConfig) {
	fs.StringVarP(&cfg.ConfigFile, "config", "c", cfg.ConfigFile, "Path to a TOML configuration file.")
	fs.Int64Var(&cfg.MaxIndex, "max-index", cfg.MaxIndex, "Highest cursor position of the device.")
	fs.StringVarP(&cfg.Engine, "engine", "e", cfg.Engine, "Compute engine (fast, iterative).")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address for serve.")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error).")
	fs.BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "Emit JSON logs instead of console output.")
	fs.BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "Disable colored output.")
	fs.IntVar(&cfg.Runs, "runs", cfg.Runs, "Repetitions per index in a sweep; the minimum is reported.")
	fs.BoolVar(&cfg.Verify, "verify", cfg.Verify, "Cross-check sweep results against the exact modular oracle.")
	fs.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Write sweep results to this file.")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "Graceful shutdown bound for serve.")
}

// Resolve layers the configuration file (if any) and the environment under
// the flags that were set explicitly on fs. fs may be nil, in which case no
// flag counts as set.
func Resolve(cfg *AppConfig, fs *pflag.FlagSet) error {
	if cfg.ConfigFile != "" {
		fc, err := LoadFile(cfg.ConfigFile)
		if err != nil {
			return err
		}
		if err := fc.apply(cfg, fs); err != nil {
			return err
		}
	}
	applyEnvOverrides(cfg, fs)
	return nil
}

// Validate checks the configuration for consistency. engines lists the
// accepted engine names.
func (c AppConfig) Validate(engines []string) error {
	if c.MaxIndex < 0 {
		return apperrors.ValidationError{Field: "max-index", Message: fmt.Sprintf("must be >= 0, got %d", c.MaxIndex)}
	}
	if !slices.Contains(engines, c.Engine) {
		return apperrors.ValidationError{
			Field:   "engine",
			Message: fmt.Sprintf("unknown engine %q (available: %s)", c.Engine, strings.Join(engines, ", ")),
		}
	}
	if c.Runs < 1 {
		return apperrors.ValidationError{Field: "runs", Message: fmt.Sprintf("must be >= 1, got %d", c.Runs)}
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return apperrors.ValidationError{Field: "log-level", Message: fmt.Sprintf("unknown level %q", c.LogLevel)}
	}
	if c.ShutdownTimeout < 0 {
		return apperrors.ValidationError{Field: "shutdown-timeout", Message: "must not be negative"}
	}
	return nil
}

// Warnings returns non-fatal remarks about the configuration.
func (c AppConfig) Warnings() []string {
	var w []string
	if c.MaxIndex > fibonacci.MaxSafeIndex {
		w = append(w, fmt.Sprintf(
			"max-index %d exceeds %d: values above F(%d) wrap modulo 2^128",
			c.MaxIndex, fibonacci.MaxSafeIndex, fibonacci.MaxSafeIndex))
	}
	return w
}

func flagChanged(fs *pflag.FlagSet, names ...string) bool {
	if fs == nil {
		return false
	}
	for _, name := range names {
		if fs.Changed(name) {
			return true
		}
	}
	return false
}
