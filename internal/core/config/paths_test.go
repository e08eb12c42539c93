package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolvePaths_FromConfigFile(t *testing.T) {
	path := writeConfig(t, "[build]\ndir = \"out\"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	got, err := ResolvePaths(cfg, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	root := filepath.Dir(path)
	if got.ProjectRoot != root {
		t.Fatalf("expected project root %q, got %q", root, got.ProjectRoot)
	}
	if got.ManifestPath != filepath.Join(root, "project.json") {
		t.Fatalf("unexpected manifest path: %q", got.ManifestPath)
	}
	if got.BuildDir != filepath.Join(root, "out") {
		t.Fatalf("unexpected build dir: %q", got.BuildDir)
	}
	if got.HistoryPath != filepath.Join(root, ".projectjs", "history.db") {
		t.Fatalf("unexpected history path: %q", got.HistoryPath)
	}
}

func TestResolvePaths_DetectsMarker(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "project.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "src", "ui")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ResolvePaths(DefaultConfig(), nested)
	if err != nil {
		t.Fatal(err)
	}
	if got.ProjectRoot != filepath.Clean(root) {
		t.Fatalf("expected project root %q, got %q", root, got.ProjectRoot)
	}
	if got.BuildDir != "" {
		t.Fatalf("expected manifest build dir to apply, got %q", got.BuildDir)
	}
}

func TestResolvePaths_AbsoluteOverrides(t *testing.T) {
	root := t.TempDir()
	manifest := filepath.Join(root, "elsewhere", "project.json")
	cfg := DefaultConfig()
	cfg.Manifest.Path = manifest

	got, err := ResolvePaths(cfg, root)
	if err != nil {
		t.Fatal(err)
	}
	if got.ManifestPath != manifest {
		t.Fatalf("expected absolute manifest path kept, got %q", got.ManifestPath)
	}
}

func TestResolvePaths_EmptyCwd(t *testing.T) {
	if _, err := ResolvePaths(DefaultConfig(), " "); err == nil {
		t.Fatal("expected error for empty cwd")
	}
}

func TestResolveRelative(t *testing.T) {
	base := filepath.Join("a", "b")
	if got := ResolveRelative(base, ""); got != filepath.Clean(base) {
		t.Errorf("empty value: got %q", got)
	}
	if got := ResolveRelative(base, "c/../d"); got != filepath.Join("a", "b", "d") {
		t.Errorf("relative value: got %q", got)
	}
}
