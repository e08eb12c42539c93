package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gobwas/glob"

	"projectjs/internal/core/watcher"
	"projectjs/internal/engine/projectfile"
	"projectjs/internal/engine/registry"
	"projectjs/internal/shared/observability"
	"projectjs/internal/shared/util"
)

// Reload describes one watch-mode rebuild.
type Reload struct {
	Changed  []string
	Project  *projectfile.ProjectFile
	Registry *registry.PackageRegistry
	Diff     registry.Diff
	Err      error
}

// Watch loads the manifest, then reloads it whenever a watched file changes
// until ctx is done. Failed reloads keep the previous registry. onReload may
// be nil.
func (a *App) Watch(ctx context.Context, onReload func(Reload)) error {
	patterns := append([]string{glob.QuoteMeta(filepath.Base(a.Paths.ManifestPath))}, a.Config.Watch.Patterns...)
	changes := make(chan []string, 1)
	w, err := watcher.NewWatcher(a.Config.Watch.Debounce, patterns, func(paths []string) {
		select {
		case changes <- paths:
		default:
			// A reload is already queued; it will read the latest file.
		}
	})
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	w.SetLogger(a.logger)
	defer w.Close()

	if err := w.Watch([]string{a.Paths.ManifestPath}); err != nil {
		return fmt.Errorf("watch %s: %w", a.Paths.ManifestPath, err)
	}
	a.logger.Info("watching manifest", "path", a.Paths.ManifestPath, "patterns", patterns)

	a.reload(ctx, nil, onReload)

	limiter := util.NewLimiter(a.Config.Watch.RebuildsPerSecond, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-changes:
			if !limiter.Allow() {
				observability.RebuildsThrottledTotal.Inc()
				if _, err := limiter.Wait(ctx); err != nil {
					return nil
				}
			}
			a.reload(ctx, paths, onReload)
		}
	}
}

func (a *App) reload(ctx context.Context, changed []string, onReload func(Reload)) {
	_, prev := a.Current()

	pf, reg, err := a.Load(ctx)
	r := Reload{Changed: changed, Project: pf, Registry: reg, Err: err}
	if err == nil {
		r.Diff = registry.Compare(prev, reg)
		if !r.Diff.Empty() {
			a.logger.Info("registry changed",
				"added_packages", r.Diff.AddedPackages,
				"removed_packages", r.Diff.RemovedPackages,
				"added_classes", len(r.Diff.AddedClasses),
				"removed_classes", len(r.Diff.RemovedClasses),
			)
		}
	}
	if onReload != nil {
		onReload(r)
	}
}
