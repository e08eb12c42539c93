package app

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	pjerrors "projectjs/internal/core/errors"
	"projectjs/internal/core/ports"
	"projectjs/internal/data/history"
	"projectjs/internal/engine/projectfile"
	"projectjs/internal/engine/registry"
	"projectjs/internal/shared/observability"
	"projectjs/internal/shared/version"
)

// Load reads the configured manifest and builds its registry. A successful
// load replaces the current project and registry; a failed one keeps them.
func (a *App) Load(ctx context.Context) (*projectfile.ProjectFile, *registry.PackageRegistry, error) {
	buildID := uuid.NewString()
	ctx, span := observability.Tracer.Start(ctx, "app.Load", trace.WithAttributes(
		attribute.String("manifest", a.Paths.ManifestPath),
		attribute.String("build_id", buildID),
	))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	start := time.Now()
	pf, err := a.loadProjectFile(ctx)
	observability.LoadDuration.WithLabelValues("project").Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.RecordLoad(string(pjerrors.CodeOf(err)))
		a.setFailure(err)
		a.record(buildID, nil, nil, err)
		a.logger.Warn("manifest load failed", "build_id", buildID, "path", a.Paths.ManifestPath, "error", err)
		return nil, nil, err
	}

	_, regSpan := observability.Tracer.Start(ctx, "registry.Create")
	regStart := time.Now()
	reg := registry.CreateRegistry(pf, a.RegistryOptions())
	observability.LoadDuration.WithLabelValues("registry").Observe(time.Since(regStart).Seconds())
	regSpan.SetAttributes(attribute.Int("packages", reg.Len()), attribute.Int("classes", reg.ClassCount()))
	regSpan.End()

	observability.RecordLoad("")
	observability.RegistryPackages.Set(float64(reg.Len()))
	observability.RegistryClasses.Set(float64(reg.ClassCount()))

	a.mu.Lock()
	a.project, a.current, a.lastErr, a.lastLoad = pf, reg, nil, time.Now()
	a.mu.Unlock()

	a.record(buildID, pf, reg, nil)
	a.logger.Info("registry loaded", "build_id", buildID, "packages", reg.Len(), "classes", reg.ClassCount())
	return pf, reg, nil
}

func (a *App) loadProjectFile(ctx context.Context) (*projectfile.ProjectFile, error) {
	_, span := observability.Tracer.Start(ctx, "loader.LoadProjectFile")
	defer span.End()

	pf, err := a.loader.LoadProjectFile(a.Paths.ManifestPath)
	if err != nil {
		return nil, err
	}
	if pf == nil {
		return nil, pjerrors.AddContext(
			pjerrors.New(pjerrors.CodeValidationError, "manifest rejected"),
			pjerrors.CtxPath, a.Paths.ManifestPath)
	}
	return pf, nil
}

func (a *App) setFailure(err error) {
	a.mu.Lock()
	a.lastErr, a.lastLoad = err, time.Now()
	a.mu.Unlock()
}

// Build loads the manifest and hands the registry to compiler. A build dir
// set in config wins over the manifest's.
func (a *App) Build(ctx context.Context, compiler ports.Compiler) error {
	pf, reg, err := a.Load(ctx)
	if err != nil {
		return err
	}

	ctx, span := observability.Tracer.Start(ctx, "compiler.BuildProject")
	defer span.End()

	buildDir := a.Paths.BuildDir
	if buildDir == "" {
		buildDir = pf.BuildDir()
	}
	if err := compiler.BuildProject(ctx, reg, pf.RootDir(), buildDir, pf.Start()); err != nil {
		observability.BuildsTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return pjerrors.AddContext(err, pjerrors.CtxOperation, "build_project")
	}
	observability.BuildsTotal.WithLabelValues("ok").Inc()
	return nil
}

// History returns up to limit snapshots for the manifest, newest first.
func (a *App) History(limit int) ([]history.Snapshot, error) {
	if a.history == nil {
		return nil, pjerrors.New(pjerrors.CodeNotFound, "history is disabled")
	}
	return a.history.Latest(a.Paths.ManifestPath, limit)
}

// HistorySince returns up to limit snapshots taken at or after since,
// newest first.
func (a *App) HistorySince(since time.Time, limit int) ([]history.Snapshot, error) {
	if a.history == nil {
		return nil, pjerrors.New(pjerrors.CodeNotFound, "history is disabled")
	}
	snaps, err := a.history.LoadSnapshots(a.Paths.ManifestPath, since)
	if err != nil {
		return nil, err
	}
	slices.Reverse(snaps)
	if limit >= 0 && len(snaps) > limit {
		snaps = snaps[:limit]
	}
	return snaps, nil
}

func (a *App) record(buildID string, pf *projectfile.ProjectFile, reg *registry.PackageRegistry, loadErr error) {
	if a.history == nil {
		return
	}

	snap := history.Snapshot{
		ID:          buildID,
		Timestamp:   time.Now().UTC(),
		ToolVersion: version.Own(),
	}
	if loadErr != nil {
		snap.ErrorCode = string(pjerrors.CodeOf(loadErr))
		if snap.ErrorCode == "" {
			snap.ErrorCode = string(pjerrors.CodeInternal)
		}
		snap.ErrorMessage = loadErr.Error()
	}
	if pf != nil {
		snap.SchemaName = pf.Descriptor().Schema.Name
		snap.DeclaredVersion = pf.Descriptor().Schema.Version
	}
	if reg != nil {
		snap.PackageCount = reg.Len()
		snap.ClassCount = reg.ClassCount()
		if data, err := json.Marshal(reg); err == nil {
			snap.Registry = string(data)
		}
	}

	key := a.Paths.ManifestPath
	if err := a.history.SaveSnapshot(key, snap); err != nil {
		a.logger.Warn("history snapshot failed", "build_id", buildID, "error", err)
		return
	}
	if keep := a.Config.History.Keep; keep > 0 {
		if _, err := a.history.Prune(key, keep); err != nil {
			a.logger.Warn("history prune failed", "error", err)
		}
	}
}
