package cliapp

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	coreapp "projectjs/internal/core/app"
	"projectjs/internal/core/config"
	"projectjs/internal/engine/registry"
	"projectjs/internal/shared/util"
)

// openApp loads the configuration and builds the app. A missing config file
// falls back to defaults unless --config named it. A non-empty manifest
// argument replaces the configured manifest path.
func openApp(cmd *cobra.Command, opts *rootOptions, manifest string, extra ...coreapp.Option) (*coreapp.App, error) {
	load := config.LoadOrDefault
	if cmd.Flags().Changed("config") {
		load = config.Load
	}
	cfg, err := load(opts.configPath)
	if err != nil {
		return nil, exitError(exitFailure, "load config %s: %v", opts.configPath, err)
	}

	appOpts := []coreapp.Option{coreapp.WithLogger(slog.Default())}
	if manifest != "" {
		abs, err := filepath.Abs(manifest)
		if err != nil {
			return nil, exitError(exitFailure, "resolve %s: %v", manifest, err)
		}
		cfg.Manifest.Path = abs
		if cfg.Path() == "" {
			appOpts = append(appOpts, coreapp.WithWorkDir(filepath.Dir(abs)))
		}
	}
	appOpts = append(appOpts, extra...)

	a, err := coreapp.New(cfg, appOpts...)
	if err != nil {
		return nil, exitError(exitFailure, "initialize: %v", err)
	}
	return a, nil
}

func manifestArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func addRegistryFlags(cmd *cobra.Command) {
	cmd.Flags().String("compile-suffix", registry.DefaultCompileSuffix, "Suffix appended to compiled locations")
	cmd.Flags().Bool("add-compile-suffix", false, "Append the compile suffix to class locations")
	cmd.Flags().Bool("add-src-dir", true, "Prefix class locations with the manifest's srcDir")
}

// registryOverrides turns explicitly set registry flags into builder
// options. Flags left at their defaults do not override config.
func registryOverrides(cmd *cobra.Command) registry.Options {
	var o registry.Options
	flags := cmd.Flags()
	if flags.Changed("compile-suffix") {
		s, _ := flags.GetString("compile-suffix")
		o.CompileSuffix = util.Ptr(s)
	}
	if flags.Changed("add-compile-suffix") {
		b, _ := flags.GetBool("add-compile-suffix")
		o.AddCompileSuffix = util.Ptr(b)
	}
	if flags.Changed("add-src-dir") {
		b, _ := flags.GetBool("add-src-dir")
		o.AddSrcDir = util.Ptr(b)
	}
	return o
}

func configureLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// configureFileLogging sends logs to a state file so they do not corrupt a
// full-screen view. It falls back to discarding them.
func configureFileLogging(verbose bool) func() {
	logPath := resolveLogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
		configureLogging(io.Discard, verbose)
		return func() {}
	}
	if fi, err := os.Lstat(logPath); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
		configureLogging(io.Discard, verbose)
		return func() {}
	}
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		configureLogging(io.Discard, verbose)
		return func() {}
	}
	configureLogging(f, verbose)
	return func() { _ = f.Close() }
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "projectjs", "projectjs.log")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "projectjs", "projectjs.log")
	}
	return filepath.Join(os.TempDir(), "projectjs.log")
}
