package util

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// WriteFileWithDirs creates parent directories (0755) and writes the file with perm.
func WriteFileWithDirs(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, perm)
}
