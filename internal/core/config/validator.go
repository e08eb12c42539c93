package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/gobwas/glob"
)

// Validate runs every check and collects the failures.
func Validate(cfg *Config) []error {
	checks := []func(*Config) error{
		validateVersion,
		validateManifest,
		validateRegistry,
		validateWatch,
		validateHistory,
		validateObservability,
	}
	var errs []error
	for _, check := range checks {
		if err := check(cfg); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateManifest(cfg *Config) error {
	if strings.TrimSpace(cfg.Manifest.Path) == "" {
		return fmt.Errorf("manifest.path must not be empty")
	}
	return nil
}

func validateRegistry(cfg *Config) error {
	if cfg.Registry.CompileSuffix == nil {
		return nil
	}
	if strings.ContainsAny(*cfg.Registry.CompileSuffix, `/\`) {
		return fmt.Errorf("registry.compile_suffix %q must not contain a path separator", *cfg.Registry.CompileSuffix)
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", cfg.Watch.Debounce)
	}
	if cfg.Watch.RebuildsPerSecond <= 0 {
		return fmt.Errorf("watch.rebuilds_per_second must be > 0, got %v", cfg.Watch.RebuildsPerSecond)
	}
	for i, pattern := range cfg.Watch.Patterns {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("watch.patterns[%d] %q: %w", i, pattern, err)
		}
	}
	return nil
}

func validateHistory(cfg *Config) error {
	if !cfg.History.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.History.Path) == "" {
		return fmt.Errorf("history.path must not be empty when history is enabled")
	}
	if cfg.History.Keep < 0 {
		return fmt.Errorf("history.keep must not be negative, got %d", cfg.History.Keep)
	}
	return nil
}

func validateObservability(cfg *Config) error {
	if !cfg.Observability.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Observability.Address); err != nil {
		return fmt.Errorf("observability.address %q: %w", cfg.Observability.Address, err)
	}
	if cfg.Observability.EnableTracing && cfg.Observability.OTLPEndpoint == "" {
		return fmt.Errorf("observability.otlp_endpoint is required when tracing is enabled")
	}
	return nil
}
