package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}
	cfg.path = path

	applyDefaults(&cfg)
	normalize(&cfg)
	ApplyEnvOverrides(&cfg)

	if err := validateVersion(&cfg); err != nil {
		return nil, err
	}
	if err := validateManifest(&cfg); err != nil {
		return nil, err
	}
	if err := validateRegistry(&cfg); err != nil {
		return nil, err
	}
	if err := validateWatch(&cfg); err != nil {
		return nil, err
	}
	if err := validateHistory(&cfg); err != nil {
		return nil, err
	}
	if err := validateObservability(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields DefaultConfig
// with env overrides applied.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = DefaultConfig()
		ApplyEnvOverrides(cfg)
		if errs := Validate(cfg); len(errs) > 0 {
			return nil, errs[0]
		}
		return cfg, nil
	}
	return cfg, err
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if strings.TrimSpace(cfg.Manifest.Path) == "" {
		cfg.Manifest.Path = "project.json"
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 250 * time.Millisecond
	}
	if len(cfg.Watch.Patterns) == 0 {
		cfg.Watch.Patterns = []string{"project.json", "project.toml", "project.yaml", "project.yml"}
	}
	if cfg.Watch.RebuildsPerSecond == 0 {
		cfg.Watch.RebuildsPerSecond = 2
	}
	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = filepath.Join(".projectjs", "history.db")
	}
	if cfg.History.BusyTimeout <= 0 {
		cfg.History.BusyTimeout = 5 * time.Second
	}
	if cfg.History.Keep == 0 {
		cfg.History.Keep = 100
	}
	if strings.TrimSpace(cfg.Observability.Address) == "" {
		cfg.Observability.Address = "127.0.0.1:9464"
	}
	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "projectjs"
	}
}

func normalize(cfg *Config) {
	cfg.Manifest.Path = strings.TrimSpace(cfg.Manifest.Path)
	cfg.Build.Dir = strings.TrimSpace(cfg.Build.Dir)
	cfg.History.Path = strings.TrimSpace(cfg.History.Path)
	cfg.Observability.Address = strings.TrimSpace(cfg.Observability.Address)
	cfg.Observability.OTLPEndpoint = strings.TrimSpace(cfg.Observability.OTLPEndpoint)

	patterns := make([]string, 0, len(cfg.Watch.Patterns))
	for _, p := range cfg.Watch.Patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		patterns = append(patterns, p)
	}
	cfg.Watch.Patterns = patterns
}
