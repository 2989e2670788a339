// Package config loads locobasic.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"locobasic/pkg/compiler"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "locobasic.toml"

// Color modes for diagnostics on stderr.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the complete locobasic configuration.
type Config struct {
	Compiler CompilerConfig `toml:"compiler"`
	Output   OutputConfig   `toml:"output"`
}

// CompilerConfig mirrors compiler.Options.
type CompilerConfig struct {
	AllowDirect   bool `toml:"allow_direct"`
	ImplicitLines bool `toml:"implicit_lines"`
	NoDeadLabels  bool `toml:"no_dead_labels"`
	Trace         bool `toml:"trace"`
}

// OutputConfig controls what the CLI writes.
type OutputConfig struct {
	Color     string `toml:"color"`
	Extension string `toml:"extension"`
}

// Default returns the configuration used without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the configuration from path. An empty path loads DefaultFile
// if it exists and falls back to Default otherwise; an explicit path must
// exist.
func Load(path string) (*Config, error) {
	if path == "" {
		if _, err := os.Stat(DefaultFile); errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		path = DefaultFile
	}

	path = os.ExpandEnv(path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Output.Color == "" {
		c.Output.Color = ColorAuto
	}
	if c.Output.Extension == "" {
		c.Output.Extension = ".js"
	}
	if !strings.HasPrefix(c.Output.Extension, ".") {
		c.Output.Extension = "." + c.Output.Extension
	}
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	switch c.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("output.color must be %q, %q or %q, got %q", ColorAuto, ColorAlways, ColorNever, c.Output.Color)
	}
	return nil
}

// Options converts the compiler section. The caller sets the logger.
func (c CompilerConfig) Options() compiler.Options {
	return compiler.Options{
		AllowDirect:   c.AllowDirect,
		ImplicitLines: c.ImplicitLines,
		NoDeadLabels:  c.NoDeadLabels,
		Trace:         c.Trace,
	}
}
