package config

import (
	"errors"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"

	apperrors "github.com/agbru/fibdev/internal/errors"
)

// FileConfig is the TOML representation of AppConfig. Absent keys are nil
// and leave the corresponding setting untouched.
//
//	max_index = 120
//	engine = "iterative"
//	addr = "127.0.0.1:9000"
//	log_level = "debug"
//	shutdown_timeout = "10s"
type FileConfig struct {
	MaxIndex        *int64  `toml:"max_index"`
	Engine          *string `toml:"engine"`
	Addr            *string `toml:"addr"`
	LogLevel        *string `toml:"log_level"`
	LogJSON         *bool   `toml:"log_json"`
	NoColor         *bool   `toml:"no_color"`
	Runs            *int    `toml:"runs"`
	Verify          *bool   `toml:"verify"`
	Output          *string `toml:"output"`
	ShutdownTimeout *string `toml:"shutdown_timeout"`
}

// LoadFile reads and decodes the TOML file at path. Unknown keys are
// rejected.
func LoadFile(path string) (*FileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewConfigError("config file: %v", err)
	}
	defer f.Close()

	var fc FileConfig
	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, apperrors.NewConfigError("config file %s: %s", path, strict.String())
		}
		return nil, apperrors.NewConfigError("config file %s: %v", path, err)
	}
	return &fc, nil
}

func (fc *FileConfig) apply(cfg *AppConfig, fs *pflag.FlagSet) error {
	if fc.MaxIndex != nil && !flagChanged(fs, "max-index") {
		cfg.MaxIndex = *fc.MaxIndex
	}
	if fc.Engine != nil && !flagChanged(fs, "engine") {
		cfg.Engine = *fc.Engine
	}
	if fc.Addr != nil && !flagChanged(fs, "addr") {
		cfg.Addr = *fc.Addr
	}
	if fc.LogLevel != nil && !flagChanged(fs, "log-level") {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogJSON != nil && !flagChanged(fs, "log-json") {
		cfg.LogJSON = *fc.LogJSON
	}
	if fc.NoColor != nil && !flagChanged(fs, "no-color") {
		cfg.NoColor = *fc.NoColor
	}
	if fc.Runs != nil && !flagChanged(fs, "runs") {
		cfg.Runs = *fc.Runs
	}
	if fc.Verify != nil && !flagChanged(fs, "verify") {
		cfg.Verify = *fc.Verify
	}
	if fc.Output != nil && !flagChanged(fs, "output") {
		cfg.Output = *fc.Output
	}
	if fc.ShutdownTimeout != nil && !flagChanged(fs, "shutdown-timeout") {
		d, err := time.ParseDuration(*fc.ShutdownTimeout)
		if err != nil {
			return apperrors.NewConfigError("config file: shutdown_timeout: %v", err)
		}
		cfg.ShutdownTimeout = d
	}
	return nil
}
