// Package loader reads a manifest from disk and turns it into either a
// PackageRegistry or a ProjectFile.
package loader

import (
	"log/slog"
	"os"
	"path/filepath"

	pjerrors "projectjs/internal/core/errors"
	"projectjs/internal/engine/descriptor"
	"projectjs/internal/engine/projectfile"
	"projectjs/internal/engine/registry"
	"projectjs/internal/shared/version"
)

// Loader runs read, parse and verify for a manifest path.
type Loader struct {
	// ToolVersion reports the running toolchain version. Nil means version.Own.
	ToolVersion func() string
	Logger      *slog.Logger
}

// New returns a Loader bound to the process toolchain version.
func New(logger *slog.Logger) *Loader {
	return &Loader{ToolVersion: version.Own, Logger: logger}
}

// LoadRegistry loads path with a default Loader.
func LoadRegistry(path string) (*registry.PackageRegistry, error) {
	return New(nil).LoadRegistry(path)
}

// LoadProjectFile loads path with a default Loader.
func LoadProjectFile(path string) (*projectfile.ProjectFile, error) {
	return New(nil).LoadProjectFile(path)
}

// LoadRegistry builds a registry from the manifest at path with default
// options.
func (l *Loader) LoadRegistry(path string) (*registry.PackageRegistry, error) {
	return l.LoadRegistryWith(path, registry.Options{})
}

// LoadRegistryWith is LoadRegistry with explicit registry options.
func (l *Loader) LoadRegistryWith(path string, opts registry.Options) (*registry.PackageRegistry, error) {
	desc, err := l.LoadDescriptor(path)
	if err != nil || desc == nil {
		return nil, err
	}
	reg := registry.CreateRegistry(desc, opts)
	l.logger().Debug("registry created", "path", path, "packages", reg.Len(), "classes", reg.ClassCount())
	return reg, nil
}

// LoadProjectFile wraps the manifest at path in a ProjectFile rooted at the
// manifest's directory.
func (l *Loader) LoadProjectFile(path string) (*projectfile.ProjectFile, error) {
	desc, err := l.LoadDescriptor(path)
	if err != nil || desc == nil {
		return nil, err
	}
	return projectfile.New(desc, filepath.Dir(path)), nil
}

// LoadDescriptor reads, parses and verifies the manifest at path. The
// format follows the file extension.
func (l *Loader) LoadDescriptor(path string) (*descriptor.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pjerrors.AddContext(pjerrors.Wrap(err, pjerrors.CodeIO, "read manifest"), pjerrors.CtxPath, path)
	}

	doc, err := descriptor.ParseFormat(data, descriptor.FormatForPath(path))
	if err != nil {
		l.logger().Debug("manifest parse failed", "path", path, "error", err)
		return nil, pjerrors.AddContext(err, pjerrors.CtxPath, path)
	}

	desc, err := l.validator().Decode(doc)
	if err != nil {
		l.logger().Debug("manifest rejected", "path", path, "error", err)
		return nil, pjerrors.AddContext(err, pjerrors.CtxPath, path)
	}
	return desc, nil
}

func (l *Loader) validator() *descriptor.Validator {
	if l.ToolVersion == nil {
		return descriptor.NewValidator()
	}
	return &descriptor.Validator{ToolVersion: l.ToolVersion}
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}
