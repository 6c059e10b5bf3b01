package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const stagingPrefix = ".tmp-"

// LocalStore implements Store using the local filesystem.
type LocalStore struct {
	dir string
}

// NewLocalStore opens the content area rooted at dir, creating it if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, errors.New("content dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the content area root.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Path(hash string) string {
	return filepath.Join(s.dir, hash)
}

func (s *LocalStore) Has(hash string) bool {
	info, err := os.Stat(s.Path(hash))
	return err == nil && info.IsDir()
}

func (s *LocalStore) Stage() (string, error) {
	dir, err := os.MkdirTemp(s.dir, stagingPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	// MkdirTemp uses 0700; committed entries are world readable
	if err := os.Chmod(dir, 0o755); err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	return dir, nil
}

func (s *LocalStore) Commit(staging, hash string) (bool, error) {
	dest := s.Path(hash)
	if err := os.Rename(staging, dest); err != nil {
		// another writer of the same content got there first
		if s.Has(hash) {
			return false, s.Discard(staging)
		}
		_ = s.Discard(staging)
		return false, fmt.Errorf("failed to commit %s: %w", hash, err)
	}
	return true, nil
}

func (s *LocalStore) Discard(staging string) error {
	if !isStaging(filepath.Base(staging)) || filepath.Dir(staging) != s.dir {
		return fmt.Errorf("not a staging directory: %s", staging)
	}
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("failed to remove staging directory: %w", err)
	}
	return nil
}

func (s *LocalStore) Hashes() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read content directory: %w", err)
	}

	var hashes []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		hashes = append(hashes, e.Name())
	}
	sort.Strings(hashes)
	return hashes, nil
}

func (s *LocalStore) Remove(hash string) error {
	if hash == "" || strings.HasPrefix(hash, ".") || strings.ContainsAny(hash, `/\`) {
		return fmt.Errorf("invalid entry name %q", hash)
	}
	if err := os.RemoveAll(s.Path(hash)); err != nil {
		return fmt.Errorf("failed to remove %s: %w", hash, err)
	}
	return nil
}

func (s *LocalStore) PruneStaging(cutoff time.Time) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read content directory: %w", err)
	}

	var pruned []string
	for _, e := range entries {
		if !e.IsDir() || !isStaging(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		if err := os.RemoveAll(path); err != nil {
			return pruned, fmt.Errorf("failed to remove staging directory: %w", err)
		}
		pruned = append(pruned, path)
	}
	return pruned, nil
}

func isStaging(name string) bool {
	return strings.HasPrefix(name, stagingPrefix)
}
