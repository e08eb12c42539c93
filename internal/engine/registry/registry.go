// Package registry groups a manifest's fully-qualified class names into
// packages. The compiler reads the resulting PackageRegistry to locate and
// order source files.
package registry

import (
	"bytes"
	"fmt"
	"path/filepath"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"projectjs/internal/engine/descriptor"
)

// PackageRegistry maps package names to the class paths they contain. Both
// packages and classes keep the order in which they were first seen.
type PackageRegistry struct {
	packages  *orderedmap.OrderedMap[string, []string]
	namespace descriptor.Namespace
	srcDir    string
	hasSrcDir bool
	settings  Settings
}

func newPackageRegistry(ns descriptor.Namespace, srcDir string, hasSrcDir bool, settings Settings) *PackageRegistry {
	return &PackageRegistry{
		packages:  orderedmap.New[string, []string](),
		namespace: ns,
		srcDir:    srcDir,
		hasSrcDir: hasSrcDir,
		settings:  settings,
	}
}

// Has reports whether pkg has at least one class.
func (r *PackageRegistry) Has(pkg string) bool {
	_, ok := r.packages.Get(pkg)
	return ok
}

// Get returns a copy of the classes registered under pkg.
func (r *PackageRegistry) Get(pkg string) ([]string, bool) {
	classes, ok := r.packages.Get(pkg)
	if !ok {
		return nil, false
	}
	return append([]string(nil), classes...), true
}

func (r *PackageRegistry) add(pkg, classPath string) {
	if classes, ok := r.packages.Get(pkg); ok {
		r.packages.Set(pkg, append(classes, classPath))
		return
	}
	r.packages.Set(pkg, []string{classPath})
}

// Packages returns package names in registration order.
func (r *PackageRegistry) Packages() []string {
	names := make([]string, 0, r.packages.Len())
	for pair := r.packages.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Each calls fn for every package in order until fn returns false.
func (r *PackageRegistry) Each(fn func(pkg string, classes []string) bool) {
	for pair := r.packages.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, append([]string(nil), pair.Value...)) {
			return
		}
	}
}

// Len returns the number of packages.
func (r *PackageRegistry) Len() int {
	return r.packages.Len()
}

// ClassCount returns the number of registered classes.
func (r *PackageRegistry) ClassCount() int {
	n := 0
	for pair := r.packages.Oldest(); pair != nil; pair = pair.Next() {
		n += len(pair.Value)
	}
	return n
}

// Classes returns every registered class, grouped by package in order.
func (r *PackageRegistry) Classes() []string {
	out := make([]string, 0, r.ClassCount())
	for pair := r.packages.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value...)
	}
	return out
}

// Settings returns the effective options the registry was built with.
func (r *PackageRegistry) Settings() Settings {
	return r.settings
}

// SrcDir returns the source directory, if the manifest declared one.
func (r *PackageRegistry) SrcDir() (string, bool) {
	return r.srcDir, r.hasSrcDir
}

// Namespace returns the namespace the registry was built from.
func (r *PackageRegistry) Namespace() descriptor.Namespace {
	return r.namespace
}

// Location returns where the compiler finds classPath: its namespace map
// value, under the source directory when AddSrcDir is set and with the
// compile suffix appended when AddCompileSuffix is set.
func (r *PackageRegistry) Location(classPath string) (string, bool) {
	if r.namespace.Map == nil {
		return "", false
	}
	raw, ok := r.namespace.Map.Get(classPath)
	if !ok {
		return "", false
	}
	loc, ok := raw.(string)
	if !ok {
		loc = fmt.Sprint(raw)
	}
	if r.settings.AddSrcDir && r.hasSrcDir {
		loc = filepath.Join(r.srcDir, loc)
	}
	if r.settings.AddCompileSuffix {
		loc += r.settings.CompileSuffix
	}
	return loc, true
}

// ResolveAlias looks name up in namespace.aliases.
func (r *PackageRegistry) ResolveAlias(name string) (string, bool) {
	if r.namespace.Aliases == nil {
		return "", false
	}
	target, ok := r.namespace.Aliases.Get(name)
	if !ok {
		return "", false
	}
	s, ok := target.(string)
	return s, ok
}

// MarshalJSON encodes the registry as {"packages": {...}} in order.
func (r *PackageRegistry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"packages":`)
	packages, err := r.packages.MarshalJSON()
	if err != nil {
		return nil, err
	}
	buf.Write(packages)
	buf.WriteString(`}`)
	return buf.Bytes(), nil
}
