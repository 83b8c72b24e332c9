// Package config loads pcalc settings from TOML.
package config

import (
	_ "embed"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pborges/pcalc/internal/pcalc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

//go:embed defaults.toml
var defaultsTOML []byte

// Config is the full settings file.
type Config struct {
	Limits Limits `toml:"limits"`
	Log    Log    `toml:"log"`
}

// Limits mirrors pcalc.Limits.
type Limits struct {
	MaxDNFPasses      int `toml:"max_dnf_passes"`
	MaxDependencyVars int `toml:"max_dependency_vars"`
	MaxNetworkVars    int `toml:"max_network_vars"`
}

// Log selects the logrus level and formatter.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the built-in settings.
func Default() (*Config, error) {
	var c Config
	if _, err := toml.Decode(string(defaultsTOML), &c); err != nil {
		return nil, errors.Wrap(err, "parsing built-in defaults")
	}
	return &c, nil
}

// Load returns the built-in settings overlaid with the file at path. An
// empty path returns the defaults. Unknown keys are an error.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	var override Config
	md, err := toml.Decode(string(data), &override)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Errorf("%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	c.merge(&override)
	return c, c.Validate()
}

// merge applies the non-zero values of o.
func (c *Config) merge(o *Config) {
	if o.Limits.MaxDNFPasses != 0 {
		c.Limits.MaxDNFPasses = o.Limits.MaxDNFPasses
	}
	if o.Limits.MaxDependencyVars != 0 {
		c.Limits.MaxDependencyVars = o.Limits.MaxDependencyVars
	}
	if o.Limits.MaxNetworkVars != 0 {
		c.Limits.MaxNetworkVars = o.Limits.MaxNetworkVars
	}
	if o.Log.Level != "" {
		c.Log.Level = o.Log.Level
	}
	if o.Log.Format != "" {
		c.Log.Format = o.Log.Format
	}
}

// Validate checks limits and log settings.
func (c *Config) Validate() error {
	if c.Limits.MaxDNFPasses < 1 {
		return errors.Errorf("max_dnf_passes must be positive, got %d", c.Limits.MaxDNFPasses)
	}
	// Tables are indexed by int and the evaluator shifts a uint64.
	if c.Limits.MaxDependencyVars < 1 || c.Limits.MaxDependencyVars > 30 {
		return errors.Errorf("max_dependency_vars must be in 1..30, got %d", c.Limits.MaxDependencyVars)
	}
	if c.Limits.MaxNetworkVars < 1 || c.Limits.MaxNetworkVars > 30 {
		return errors.Errorf("max_network_vars must be in 1..30, got %d", c.Limits.MaxNetworkVars)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// PcalcLimits converts the limits for a pcalc session.
func (c *Config) PcalcLimits() pcalc.Limits {
	return pcalc.Limits{
		MaxDNFPasses:      c.Limits.MaxDNFPasses,
		MaxDependencyVars: c.Limits.MaxDependencyVars,
		MaxNetworkVars:    c.Limits.MaxNetworkVars,
	}
}

// ConfigureLogger applies the log settings to l.
func (c *Config) ConfigureLogger(l *logrus.Logger) error {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return errors.Wrap(err, "log.level")
	}
	l.SetLevel(level)
	if c.Log.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return nil
}
