package cliapp

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projectjs/internal/shared/version"
)

// executeCommand runs a fresh command tree with args and captures its output.
func executeCommand(args ...string) (stdout, stderr string, err error) {
	root := NewRootCmd()
	var outBuf, errBuf bytes.Buffer
	root.SetOut(&outBuf)
	root.SetErr(&errBuf)
	root.SetArgs(args)
	err = root.Execute()
	return outBuf.String(), errBuf.String(), err
}

// writeProject creates a project directory holding project.json.
func writeProject(t *testing.T, manifest string) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "project.json")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))
	return dir, path
}

func manifestWithVersion(v string) string {
	return `{
  "schema": {"name": "project.js", "version": "` + v + `"},
  "namespace": {
    "base": "app",
    "map": {
      "app.ui.Button": "ui/button.js",
      "app.ui.Panel": "ui/panel.js",
      "app.core.Main": "core/main.js",
      "Loose": "loose.js"
    },
    "dependencies": {"lib": "../lib/project.json"},
    "aliases": {"Button": "app.ui.Button"}
  },
  "srcDir": "src",
  "start": "app.core.Main"
}`
}

// noConfig points --config at an empty file so tests never pick up a
// projectjs.toml from the working directory.
func noConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "projectjs.toml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	return "--config=" + path
}

func TestValidate(t *testing.T) {
	_, path := writeProject(t, manifestWithVersion(version.Version))

	out, _, err := executeCommand("validate", noConfig(t), path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "2 packages, 3 classes")
}

func TestValidateRejectsNewerSchema(t *testing.T) {
	_, path := writeProject(t, manifestWithVersion("99.0.0"))

	out, _, err := executeCommand("validate", noConfig(t), path)
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, exitFailure, exitErr.Code)
	assert.Contains(t, exitErr.Message, "VERSION_MISMATCH")
	assert.Contains(t, out, "invalid")
}

func TestValidateMissingManifest(t *testing.T) {
	_, _, err := executeCommand("validate", noConfig(t), filepath.Join(t.TempDir(), "project.json"))

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Contains(t, exitErr.Message, "IO_ERROR")
}

func TestRegistryJSON(t *testing.T) {
	_, path := writeProject(t, manifestWithVersion(version.Version))

	out, _, err := executeCommand("registry", noConfig(t), "--json", path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"packages": {
		"app.ui": ["app.ui.Button", "app.ui.Panel"],
		"app.core": ["app.core.Main"]
	}}`, out)
	assert.Less(t, strings.Index(out, "app.ui"), strings.Index(out, "app.core"))
}

func TestRegistryText(t *testing.T) {
	_, path := writeProject(t, manifestWithVersion(version.Version))

	out, _, err := executeCommand("registry", noConfig(t), path)
	require.NoError(t, err)
	assert.Contains(t, out, "app.ui")
	assert.Contains(t, out, filepath.Join("src", "ui/button.js"))
	assert.NotContains(t, out, "Loose")

	out, _, err = executeCommand("registry", noConfig(t), "--add-src-dir=false", "--add-compile-suffix", "--compile-suffix=.out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ui/button.js.out")
	assert.NotContains(t, out, filepath.Join("src", "ui"))
}

func TestRegistryWritesFile(t *testing.T) {
	_, path := writeProject(t, manifestWithVersion(version.Version))
	target := filepath.Join(t.TempDir(), "nested", "registry.json")

	out, _, err := executeCommand("registry", noConfig(t), "--out", target, path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"app.core.Main"`)
}

func TestProject(t *testing.T) {
	dir, path := writeProject(t, manifestWithVersion(version.Version))

	out, _, err := executeCommand("project", noConfig(t), path)
	require.NoError(t, err)
	assert.Contains(t, out, dir)
	assert.Contains(t, out, filepath.Join(dir, "build"))
	assert.Contains(t, out, "app.core.Main")
	assert.Contains(t, out, "lib")
	assert.Contains(t, out, "Button -> app.ui.Button")
}

func TestProjectFlagsBrokenAliases(t *testing.T) {
	manifest := strings.Replace(manifestWithVersion(version.Version),
		`"aliases": {"Button": "app.ui.Button"}`,
		`"aliases": {"Button": "app.ui.Button", "Gone": "app.ui.Gone", "Num": 5}`, 1)
	_, path := writeProject(t, manifest)

	out, _, err := executeCommand("project", noConfig(t), path)
	require.NoError(t, err)
	assert.Contains(t, out, "Button -> app.ui.Button\n")
	assert.Contains(t, out, "Gone -> app.ui.Gone (unmapped)")
	assert.Contains(t, out, "Num (target is not a class name)")
}

func TestExplicitMissingConfigFails(t *testing.T) {
	_, path := writeProject(t, manifestWithVersion(version.Version))
	missing := filepath.Join(t.TempDir(), "missing.toml")

	_, _, err := executeCommand("validate", "--config", missing, path)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, exitFailure, exitErr.Code)
	assert.Contains(t, exitErr.Message, missing)
}

func TestDefaultConfigMayBeMissing(t *testing.T) {
	_, path := writeProject(t, manifestWithVersion(version.Version))
	t.Chdir(t.TempDir())

	out, _, err := executeCommand("validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
}

func TestHistoryDisabled(t *testing.T) {
	_, path := writeProject(t, manifestWithVersion(version.Version))

	_, _, err := executeCommand("history", noConfig(t), path)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Contains(t, exitErr.Message, "disabled")
}

func TestHistoryRecordsLoads(t *testing.T) {
	dir, _ := writeProject(t, manifestWithVersion(version.Version))
	cfgPath := filepath.Join(dir, "projectjs.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
version = 1

[manifest]
path = "project.json"

[history]
enabled = true
path = "state/history.db"
`), 0o644))

	_, _, err := executeCommand("validate", "--config", cfgPath)
	require.NoError(t, err)

	out, _, err := executeCommand("history", "--config", cfgPath, "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "2 packages, 3 classes")
	assert.FileExists(t, filepath.Join(dir, "state", "history.db"))
}

func TestHistorySince(t *testing.T) {
	dir, _ := writeProject(t, manifestWithVersion(version.Version))
	cfgPath := filepath.Join(dir, "projectjs.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[history]
enabled = true
`), 0o644))

	_, _, err := executeCommand("validate", "--config", cfgPath)
	require.NoError(t, err)

	out, _, err := executeCommand("history", "--config", cfgPath, "--since", "1h")
	require.NoError(t, err)
	assert.Contains(t, out, "2 packages, 3 classes")

	out, _, err = executeCommand("history", "--config", cfgPath, "--since", "1h", "--limit", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "no history")

	_, _, err = executeCommand("history", "--config", cfgPath, "--since", "-1h")
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, exitUsage, exitErr.Code)
}

func TestVersion(t *testing.T) {
	out, _, err := executeCommand("version")
	require.NoError(t, err)
	assert.Equal(t, version.Name+" version "+version.Version+"\n", out)
}

func TestRunExitCodes(t *testing.T) {
	assert.Equal(t, exitUsage, Run([]string{"validate", "a.json", "b.json"}))
	assert.Equal(t, exitUsage, Run([]string{"registry", "--no-such-flag"}))

	_, path := writeProject(t, manifestWithVersion("99.0.0"))
	assert.Equal(t, exitFailure, Run([]string{"validate", noConfig(t), path}))
	assert.Equal(t, exitOK, Run([]string{"version"}))
}

func TestRegistryOverridesOnlyChangedFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	addRegistryFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--add-compile-suffix"}))

	o := registryOverrides(cmd)
	assert.Nil(t, o.AddSrcDir)
	assert.Nil(t, o.CompileSuffix)
	require.NotNil(t, o.AddCompileSuffix)
	assert.True(t, *o.AddCompileSuffix)
}
