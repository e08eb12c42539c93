package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: PROJECTJS_[SECTION]_[KEY] (e.g., PROJECTJS_WATCH_DEBOUNCE).
func ApplyEnvOverrides(cfg *Config) {
	// Manifest / build
	setEnvString(&cfg.Manifest.Path, "PROJECTJS_MANIFEST_PATH")
	setEnvString(&cfg.Build.Dir, "PROJECTJS_BUILD_DIR")

	// Registry
	setEnvBoolPtr(&cfg.Registry.AddSrcDir, "PROJECTJS_REGISTRY_ADD_SRC_DIR")
	setEnvStringPtr(&cfg.Registry.CompileSuffix, "PROJECTJS_REGISTRY_COMPILE_SUFFIX")
	setEnvBoolPtr(&cfg.Registry.AddCompileSuffix, "PROJECTJS_REGISTRY_ADD_COMPILE_SUFFIX")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "PROJECTJS_WATCH_DEBOUNCE")
	setEnvFloat64(&cfg.Watch.RebuildsPerSecond, "PROJECTJS_WATCH_REBUILDS_PER_SECOND")

	// History
	setEnvBool(&cfg.History.Enabled, "PROJECTJS_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "PROJECTJS_HISTORY_PATH")
	setEnvInt(&cfg.History.Keep, "PROJECTJS_HISTORY_KEEP")

	// Observability
	setEnvBool(&cfg.Observability.Enabled, "PROJECTJS_OBSERVABILITY_ENABLED")
	setEnvString(&cfg.Observability.Address, "PROJECTJS_OBSERVABILITY_ADDRESS")
	setEnvString(&cfg.Observability.OTLPEndpoint, "PROJECTJS_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvBool(&cfg.Observability.EnableTracing, "PROJECTJS_OBSERVABILITY_ENABLE_TRACING")
}

func logOverride(key, val string) {
	slog.Debug("applying env override", "key", key, "value", val)
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		logOverride(key, val)
		*target = val
	}
}

func setEnvStringPtr(target **string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		logOverride(key, val)
		*target = &val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			logOverride(key, val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			logOverride(key, val)
			*target = b
		}
	}
}

func setEnvBoolPtr(target **bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			logOverride(key, val)
			*target = &b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			logOverride(key, val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			logOverride(key, val)
			*target = d
		}
	}
}
