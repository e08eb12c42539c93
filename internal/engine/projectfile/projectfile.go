// Package projectfile pairs a verified Descriptor with the directory its
// manifest lives in.
package projectfile

import (
	"path/filepath"

	"projectjs/internal/engine/descriptor"
)

// DefaultBuildDir is used when the manifest does not name a build directory.
const DefaultBuildDir = "build"

// ProjectFile is a loaded manifest rooted at a directory. The registry
// builder only ever sees copies of its namespace.
type ProjectFile struct {
	desc    *descriptor.Descriptor
	rootDir string
}

// New wraps desc. rootDir is usually the directory of the manifest.
func New(desc *descriptor.Descriptor, rootDir string) *ProjectFile {
	return &ProjectFile{desc: desc, rootDir: rootDir}
}

func (p *ProjectFile) Descriptor() *descriptor.Descriptor { return p.desc }
func (p *ProjectFile) RootDir() string                    { return p.rootDir }
func (p *ProjectFile) Start() string                      { return p.desc.Start }

// CloneNamespace returns a deep copy of the namespace section.
func (p *ProjectFile) CloneNamespace() descriptor.Namespace {
	return p.desc.Namespace.Clone()
}

// HasSrcDir reports whether the manifest declares a non-empty srcDir.
func (p *ProjectFile) HasSrcDir() bool {
	return p.desc.SrcDir != nil && *p.desc.SrcDir != ""
}

// SrcDir returns the declared source directory, or "" when there is none.
func (p *ProjectFile) SrcDir() string {
	if !p.HasSrcDir() {
		return ""
	}
	return *p.desc.SrcDir
}

// BuildDir returns the build directory resolved against the root. A missing,
// null or empty buildDir falls back to DefaultBuildDir.
func (p *ProjectFile) BuildDir() string {
	dir := DefaultBuildDir
	if p.desc.BuildDir != nil && *p.desc.BuildDir != "" {
		dir = *p.desc.BuildDir
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(p.rootDir, dir)
}

// RegistryNamespace hands the builder a deep copy so the project file is
// never mutated through a registry.
func (p *ProjectFile) RegistryNamespace() descriptor.Namespace {
	return p.CloneNamespace()
}

func (p *ProjectFile) RegistrySrcDir() (string, bool) {
	return p.SrcDir(), p.HasSrcDir()
}
