package registry

import (
	"strings"

	"projectjs/internal/engine/descriptor"
)

// Separator splits class paths into package segments.
const Separator = "."

// DefaultCompileSuffix is appended to source locations when
// AddCompileSuffix is set without an explicit CompileSuffix.
const DefaultCompileSuffix = ".tmp"

// Source is what the builder needs from a manifest: its namespace and an
// optional source directory. Both *descriptor.Descriptor and
// *projectfile.ProjectFile implement it.
type Source interface {
	RegistryNamespace() descriptor.Namespace
	RegistrySrcDir() (string, bool)
}

// Options are caller overrides. A nil field means "use the default".
type Options struct {
	AddSrcDir        *bool
	CompileSuffix    *string
	AddCompileSuffix *bool
}

// Settings are the effective options of a built registry.
type Settings struct {
	AddSrcDir        bool
	CompileSuffix    string
	AddCompileSuffix bool
}

// Resolve applies defaults: AddSrcDir follows whether a source directory
// exists, CompileSuffix is DefaultCompileSuffix and AddCompileSuffix is off.
func (o Options) Resolve(hasSrcDir bool) Settings {
	s := Settings{
		AddSrcDir:        hasSrcDir,
		CompileSuffix:    DefaultCompileSuffix,
		AddCompileSuffix: false,
	}
	if o.AddSrcDir != nil {
		s.AddSrcDir = *o.AddSrcDir
	}
	if o.CompileSuffix != nil {
		s.CompileSuffix = *o.CompileSuffix
	}
	if o.AddCompileSuffix != nil {
		s.AddCompileSuffix = *o.AddCompileSuffix
	}
	return s
}

// Merge returns o with every field set in override replacing its own.
func (o Options) Merge(override Options) Options {
	if override.AddSrcDir != nil {
		o.AddSrcDir = override.AddSrcDir
	}
	if override.CompileSuffix != nil {
		o.CompileSuffix = override.CompileSuffix
	}
	if override.AddCompileSuffix != nil {
		o.AddCompileSuffix = override.AddCompileSuffix
	}
	return o
}

// PackageName returns every segment of classPath but the last. A class path
// without a separator has no package.
func PackageName(classPath string) (string, bool) {
	i := strings.LastIndex(classPath, Separator)
	if i < 0 {
		return "", false
	}
	return classPath[:i], true
}

// CreateRegistry groups the namespace map of src by package. Class paths
// are visited in declaration order; those without a package are skipped.
func CreateRegistry(src Source, opts Options) *PackageRegistry {
	ns := src.RegistryNamespace()
	srcDir, hasSrcDir := src.RegistrySrcDir()

	reg := newPackageRegistry(ns, srcDir, hasSrcDir, opts.Resolve(hasSrcDir))
	for _, classPath := range ns.Classes() {
		pkg, ok := PackageName(classPath)
		if !ok {
			continue
		}
		reg.add(pkg, classPath)
	}
	return reg
}
