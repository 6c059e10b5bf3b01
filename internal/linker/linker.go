// Package linker manages the symlinks of the shared bin directory.
package linker

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReplaceLink makes link a symlink to target. The new link is created under
// a temporary name next to link and renamed over it, so link never goes
// missing while it is being replaced.
func ReplaceLink(target, link string) error {
	dir, name := filepath.Split(link)
	tmp := filepath.Join(dir, "."+name+".tmp-"+strconv.FormatUint(rand.Uint64(), 36))

	if err := os.Symlink(target, tmp); err != nil {
		return fmt.Errorf("create symlink %s: %w", link, err)
	}
	if err := os.Rename(tmp, link); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace symlink %s: %w", link, err)
	}
	return nil
}

// Target returns the absolute path link points to.
func Target(link string) (string, error) {
	target, err := os.Readlink(link)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(link), target)
	}
	return filepath.Clean(target), nil
}

// RemoveLink deletes link if it is a symlink that points inside owner or no
// longer resolves. An empty owner removes any symlink. Missing links, regular
// files and links owned by someone else are left alone and reported as not
// removed.
func RemoveLink(link, owner string) (bool, error) {
	info, err := os.Lstat(link)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", link, err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return false, nil
	}

	if owner != "" {
		target, err := Target(link)
		if err != nil {
			return false, fmt.Errorf("read symlink %s: %w", link, err)
		}
		_, statErr := os.Stat(link)
		if statErr == nil && !Within(target, owner) {
			return false, nil
		}
	}

	if err := os.Remove(link); err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("remove symlink %s: %w", link, err)
	}
	return true, nil
}

// PruneDangling removes symlinks in dir whose target is gone. Leftover
// temporary links from an interrupted ReplaceLink are removed as well.
func PruneDangling(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var removed []string
	for _, e := range entries {
		if e.Type()&os.ModeSymlink == 0 {
			continue
		}
		link := filepath.Join(dir, e.Name())
		_, statErr := os.Stat(link)
		if statErr == nil && !isTemp(e.Name()) {
			continue
		}
		if err := os.Remove(link); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("remove symlink %s: %w", link, err)
		}
		removed = append(removed, link)
	}
	return removed, nil
}

// Within reports whether path is dir or lies below it.
func Within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || filepath.IsLocal(rel)
}

func isTemp(name string) bool {
	return strings.HasPrefix(name, ".") && strings.Contains(name, ".tmp-")
}
