// Package ports declares the collaborators the app service drives.
package ports

import (
	"context"
	"time"

	"projectjs/internal/data/history"
	"projectjs/internal/engine/projectfile"
	"projectjs/internal/engine/registry"
)

// Compiler consumes a built registry. projectRoot is the manifest directory,
// buildDir the resolved output directory and start the entry class, which
// may be empty.
type Compiler interface {
	BuildProject(ctx context.Context, reg *registry.PackageRegistry, projectRoot, buildDir, start string) error
}

// ManifestLoader turns a manifest path into a verified ProjectFile.
type ManifestLoader interface {
	LoadProjectFile(path string) (*projectfile.ProjectFile, error)
}

// HistoryStore abstracts snapshot persistence for registry loads.
type HistoryStore interface {
	SaveSnapshot(projectKey string, snapshot history.Snapshot) error
	Latest(projectKey string, limit int) ([]history.Snapshot, error)
	LoadSnapshots(projectKey string, since time.Time) ([]history.Snapshot, error)
	Prune(projectKey string, keep int) (int64, error)
	Close() error
}

// CompilerFunc adapts a function to Compiler.
type CompilerFunc func(ctx context.Context, reg *registry.PackageRegistry, projectRoot, buildDir, start string) error

func (f CompilerFunc) BuildProject(ctx context.Context, reg *registry.PackageRegistry, projectRoot, buildDir, start string) error {
	return f(ctx, reg, projectRoot, buildDir, start)
}
