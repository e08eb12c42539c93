package loader

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pjerrors "projectjs/internal/core/errors"
	"projectjs/internal/shared/version"
)

func writeManifest(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRegistryRoundTrip(t *testing.T) {
	path := writeManifest(t, "project.json", `{
		"schema": {"name": "projectjs", "version": "`+version.Own()+`"},
		"namespace": {"base": "ns", "map": {"ns.App": "app.js"}}
	}`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	require.NotNil(t, reg)

	classes, ok := reg.Get("ns")
	require.True(t, ok)
	assert.Equal(t, []string{"ns.App"}, classes)
	assert.Equal(t, []string{"ns"}, reg.Packages())
}

func TestLoadProjectFile(t *testing.T) {
	path := writeManifest(t, "project.json", `{
		"schema": {"name": "project.js", "version": "1.0.0"},
		"namespace": {"base": "ns", "map": {"ns.App": "app.js"}},
		"srcDir": "src",
		"start": "ns.App"
	}`)
	l := &Loader{ToolVersion: func() string { return "1.0.0" }}

	pf, err := l.LoadProjectFile(path)
	require.NoError(t, err)
	require.NotNil(t, pf)

	assert.Equal(t, filepath.Dir(path), pf.RootDir())
	assert.Equal(t, "src", pf.SrcDir())
	assert.Equal(t, filepath.Join(filepath.Dir(path), "build"), pf.BuildDir())
	assert.Equal(t, "ns.App", pf.Start())
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")

	_, err := LoadRegistry(path)
	require.Error(t, err)
	assert.True(t, pjerrors.IsCode(err, pjerrors.CodeIO), "got %v", err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	var de *pjerrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, path, de.Context[pjerrors.CtxPath])

	_, err = LoadProjectFile(path)
	assert.True(t, pjerrors.IsCode(err, pjerrors.CodeIO), "got %v", err)
}

func TestLoadPropagatesParseAndVerifyErrors(t *testing.T) {
	l := &Loader{ToolVersion: func() string { return "1.0.0" }}

	empty := writeManifest(t, "project.json", "")
	_, err := l.LoadRegistry(empty)
	assert.True(t, pjerrors.IsCode(err, pjerrors.CodeEmptyInput), "got %v", err)

	broken := writeManifest(t, "project.json", `{"schema":`)
	_, err = l.LoadRegistry(broken)
	assert.True(t, pjerrors.IsCode(err, pjerrors.CodeSyntax), "got %v", err)

	newer := writeManifest(t, "project.json", `{"schema": {"name": "projectjs", "version": "5.0.0"},
		"namespace": {"base": "ns", "map": {}}}`)
	_, err = l.LoadProjectFile(newer)
	assert.True(t, pjerrors.IsCode(err, pjerrors.CodeVersionMismatch), "got %v", err)

	var de *pjerrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, newer, de.Context[pjerrors.CtxPath])
	assert.Equal(t, "schema.version", de.Context[pjerrors.CtxField])
}

func TestLoadByExtension(t *testing.T) {
	l := &Loader{ToolVersion: func() string { return "1.0.0" }}

	yamlPath := writeManifest(t, "project.yaml", `
schema:
  name: projectjs
  version: 1.0.0
namespace:
  base: ui
  map:
    ui.widgets.Button: button.js
    ui.widgets.Label: label.js
    ui.App: app.js
`)
	reg, err := l.LoadRegistry(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"ui.widgets", "ui"}, reg.Packages())

	tomlPath := writeManifest(t, "project.toml", `
[schema]
name = "projectjs"
version = "1.0.0"

[namespace]
base = "ui"

[namespace.map]
"ui.App" = "app.js"
`)
	pf, err := l.LoadProjectFile(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"ui.App"}, pf.CloneNamespace().Classes())
}

func TestLoadRegistryNonMapNamespaceMap(t *testing.T) {
	l := &Loader{ToolVersion: func() string { return "1.0.0" }}

	for _, raw := range []string{`[]`, `"x"`, `["a.b.C"]`, `5`} {
		path := writeManifest(t, "project.json", `{
			"schema": {"name": "projectjs", "version": "1.0.0"},
			"namespace": {"base": "ns", "map": `+raw+`}
		}`)

		reg, err := l.LoadRegistry(path)
		require.NoError(t, err, raw)
		require.NotNil(t, reg, raw)
		assert.Equal(t, 0, reg.Len(), raw)
		assert.Empty(t, reg.Classes(), raw)

		pf, err := l.LoadProjectFile(path)
		require.NoError(t, err, raw)
		assert.Empty(t, pf.CloneNamespace().Classes(), raw)
	}
}
