package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// envOverride maps an env key (without the FIBDEV_ prefix) to the flag it
// shadows and a function that applies the env value. Unparsable values are
// ignored.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string)
}

var envOverrides = []envOverride{
	{"MAX_INDEX", []string{"max-index"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.MaxIndex = parsed
		}
	}},
	{"RUNS", []string{"runs"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Runs = parsed
		}
	}},

	{"SHUTDOWN_TIMEOUT", []string{"shutdown-timeout"}, func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.ShutdownTimeout = parsed
		}
	}},

	{"ENGINE", []string{"engine"}, func(c *AppConfig, v string) { c.Engine = v }},
	{"ADDR", []string{"addr"}, func(c *AppConfig, v string) { c.Addr = v }},
	{"LOG_LEVEL", []string{"log-level"}, func(c *AppConfig, v string) { c.LogLevel = v }},
	{"OUTPUT", []string{"output"}, func(c *AppConfig, v string) { c.Output = v }},

	{"LOG_JSON", []string{"log-json"}, func(c *AppConfig, v string) {
		c.LogJSON = parseBoolEnv(v, c.LogJSON)
	}},
	{"NO_COLOR", []string{"no-color"}, func(c *AppConfig, v string) {
		c.NoColor = parseBoolEnv(v, c.NoColor)
	}},
	{"VERIFY", []string{"verify"}, func(c *AppConfig, v string) {
		c.Verify = parseBoolEnv(v, c.Verify)
	}},
}

// parseBoolEnv accepts "true", "1", "yes" and "false", "0", "no"
// (case-insensitive). Anything else yields defaultVal.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides applies FIBDEV_* values for every flag not set
// explicitly on fs.
func applyEnvOverrides(cfg *AppConfig, fs *pflag.FlagSet) {
	for _, o := range envOverrides {
		if flagChanged(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			o.apply(cfg, val)
		}
	}
}
