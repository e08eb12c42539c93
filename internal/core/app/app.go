// Package app wires manifest loading, registry building, history and watch
// mode into one service used by the CLI.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"projectjs/internal/core/config"
	"projectjs/internal/core/ports"
	"projectjs/internal/data/history"
	"projectjs/internal/engine/loader"
	"projectjs/internal/engine/projectfile"
	"projectjs/internal/engine/registry"
)

type App struct {
	Config *config.Config
	Paths  config.ResolvedPaths

	logger   *slog.Logger
	loader   ports.ManifestLoader
	history  ports.HistoryStore
	override registry.Options
	workDir  string

	mu       sync.RWMutex
	project  *projectfile.ProjectFile
	current  *registry.PackageRegistry
	lastErr  error
	lastLoad time.Time
}

type Option func(*App)

func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithLoader replaces the manifest loader.
func WithLoader(l ports.ManifestLoader) Option {
	return func(a *App) { a.loader = l }
}

// WithHistoryStore injects a store; config history settings are then ignored.
func WithHistoryStore(store ports.HistoryStore) Option {
	return func(a *App) { a.history = store }
}

// WithRegistryOptions layers builder options over the configured ones.
func WithRegistryOptions(opts registry.Options) Option {
	return func(a *App) { a.override = opts }
}

// WithWorkDir sets the directory relative paths resolve against when no
// config file was loaded.
func WithWorkDir(dir string) Option {
	return func(a *App) { a.workDir = dir }
}

func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	a := &App{Config: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}

	if a.workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		a.workDir = wd
	}
	paths, err := config.ResolvePaths(cfg, a.workDir)
	if err != nil {
		return nil, fmt.Errorf("resolve paths: %w", err)
	}
	a.Paths = paths

	if a.loader == nil {
		a.loader = loader.New(a.logger)
	}
	if a.history == nil && cfg.History.Enabled {
		store, err := a.openHistory(paths.HistoryPath)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		a.history = store
	}

	a.logger.Debug("app initialized", "manifest", paths.ManifestPath, "history", a.history != nil)
	return a, nil
}

// openHistory opens the snapshot store. A damaged database is moved aside
// and replaced with an empty one.
func (a *App) openHistory(path string) (*history.Store, error) {
	store, err := history.Open(path, a.Config.History.BusyTimeout)
	if err == nil || !history.IsCorruptError(err) {
		return store, err
	}

	backup := fmt.Sprintf("%s.corrupt-%s", path, time.Now().UTC().Format("20060102T150405"))
	if renameErr := os.Rename(path, backup); renameErr != nil {
		return nil, fmt.Errorf("%w (move aside: %v)", err, renameErr)
	}
	a.logger.Warn("history database was corrupt, starting a new one", "path", path, "backup", backup, "error", err)
	return history.Open(path, a.Config.History.BusyTimeout)
}

// RegistryOptions returns the builder options from config with any
// WithRegistryOptions override applied.
func (a *App) RegistryOptions() registry.Options {
	base := registry.Options{
		AddSrcDir:        a.Config.Registry.AddSrcDir,
		CompileSuffix:    a.Config.Registry.CompileSuffix,
		AddCompileSuffix: a.Config.Registry.AddCompileSuffix,
	}
	return base.Merge(a.override)
}

// Current returns the most recent successful load, if any.
func (a *App) Current() (*projectfile.ProjectFile, *registry.PackageRegistry) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.project, a.current
}

func (a *App) Close() error {
	if a.history == nil {
		return nil
	}
	return a.history.Close()
}
