// Package locator finds the executables a package exposes.
package locator

import (
	"os"
	"path/filepath"
	"strings"
)

// SearchDirs are the package-relative directories scanned for executables,
// in priority order.
var SearchDirs = []string{
	".",
	"bin",
	filepath.Join("usr", "bin"),
	filepath.Join("usr", "local", "bin"),
}

// FindBinaries returns the names of executable entries directly inside any of
// SearchDirs. Names keep the order of the first directory they appear in and
// are sorted within a directory; later duplicates are dropped.
func FindBinaries(pkgDir string) []string {
	var names []string
	seen := make(map[string]struct{})

	for _, dir := range SearchDirs {
		entries, err := os.ReadDir(filepath.Join(pkgDir, dir))
		if err != nil {
			continue
		}
		for _, e := range entries {
			name := e.Name()
			if _, ok := seen[name]; ok {
				continue
			}
			if !IsExecutable(filepath.Join(pkgDir, dir, name)) {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

// FindBinaryPath resolves name to the first existing candidate path in
// SearchDirs order.
func FindBinaryPath(pkgDir, name string) (string, bool) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", false
	}
	for _, dir := range SearchDirs {
		path := filepath.Join(pkgDir, dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// IsExecutable reports whether path is a regular file the platform would run.
// Symlinks are followed.
func IsExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return executable(path, info)
}
