package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolvedPaths are the absolute locations the app works with.
type ResolvedPaths struct {
	ProjectRoot  string
	ManifestPath string
	// BuildDir is empty when the manifest's own buildDir applies.
	BuildDir    string
	HistoryPath string
}

// ResolvePaths anchors relative config paths. The project root is the
// config file's directory, or the nearest ancestor of cwd holding a
// project marker when no config file was loaded.
func ResolvePaths(cfg *Config, cwd string) (ResolvedPaths, error) {
	if strings.TrimSpace(cwd) == "" {
		return ResolvedPaths{}, fmt.Errorf("cwd must not be empty")
	}

	var projectRoot string
	if cfg.Path() != "" {
		projectRoot = ResolveRelative(cwd, cfg.Dir())
	} else {
		root, err := DetectProjectRoot([]string{cwd})
		if err != nil {
			return ResolvedPaths{}, err
		}
		projectRoot = root
	}

	resolved := ResolvedPaths{
		ProjectRoot:  filepath.Clean(projectRoot),
		ManifestPath: ResolveRelative(projectRoot, cfg.Manifest.Path),
		HistoryPath:  ResolveRelative(projectRoot, cfg.History.Path),
	}
	if cfg.Build.Dir != "" {
		resolved.BuildDir = ResolveRelative(projectRoot, cfg.Build.Dir)
	}
	return resolved, nil
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}

// DetectProjectRoot walks up from each candidate until it finds a project
// marker. It falls back to the working directory.
func DetectProjectRoot(candidates []string) (string, error) {
	markers := []string{
		DefaultFile,
		"project.json",
		"project.toml",
		"project.yaml",
		".git",
	}

	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}

		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		root := abs
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			root = filepath.Dir(abs)
		}

		for {
			for _, marker := range markers {
				if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
					return filepath.Clean(root), nil
				}
			}
			parent := filepath.Dir(root)
			if parent == root {
				break
			}
			root = parent
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Clean(cwd), nil
}
