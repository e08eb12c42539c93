package config

import (
	"path/filepath"
	"time"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "projectjs.toml"

type Config struct {
	Version       int           `toml:"version"`
	Manifest      Manifest      `toml:"manifest"`
	Build         Build         `toml:"build"`
	Registry      Registry      `toml:"registry"`
	Watch         Watch         `toml:"watch"`
	History       History       `toml:"history"`
	Observability Observability `toml:"observability"`

	// path is the file the config was loaded from, empty for defaults.
	path string
}

type Manifest struct {
	Path string `toml:"path"`
}

type Build struct {
	// Dir overrides the manifest's buildDir when set.
	Dir string `toml:"dir"`
}

// Registry holds registry builder overrides. Nil fields keep the builder
// defaults.
type Registry struct {
	AddSrcDir        *bool   `toml:"add_src_dir"`
	CompileSuffix    *string `toml:"compile_suffix"`
	AddCompileSuffix *bool   `toml:"add_compile_suffix"`
}

type Watch struct {
	Debounce          time.Duration `toml:"debounce"`
	Patterns          []string      `toml:"patterns"`
	RebuildsPerSecond float64       `toml:"rebuilds_per_second"`
}

type History struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
	Keep        int           `toml:"keep"`
}

type Observability struct {
	Enabled       bool   `toml:"enabled"`
	Address       string `toml:"address"`
	OTLPEndpoint  string `toml:"otlp_endpoint"`
	EnableTracing bool   `toml:"enable_tracing"`
	ServiceName   string `toml:"service_name"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Path returns the file the configuration was read from, or "".
func (c *Config) Path() string {
	return c.path
}

// Dir returns the directory relative paths resolve against.
func (c *Config) Dir() string {
	if c.path == "" {
		return "."
	}
	return filepath.Dir(c.path)
}
