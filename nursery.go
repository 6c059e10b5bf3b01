package nursery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"

	"github.com/aweris/nursery/internal/archive"
	"github.com/aweris/nursery/internal/hasher"
	"github.com/aweris/nursery/internal/linker"
	"github.com/aweris/nursery/internal/locator"
	"github.com/aweris/nursery/internal/store"
)

const (
	contentDirName = "store"
	binDirName     = "bin"

	// bareBinaryName is the file name given to blobs that are not archives.
	bareBinaryName = "bin"

	// StagingGrace is how old an abandoned staging directory must be before
	// GC removes it.
	StagingGrace = time.Hour
)

// Store is the content-addressed package store.
//
// Layout:
//
//	root/
//	  store/<sha256>/   (one directory per distinct content hash)
//	  bin/<name>        (symlinks into activated packages)
//
// Store does no locking. Callers serialize GC against every other mutation.
type Store struct {
	root        string
	binDir      string
	content     store.Store
	cache       store.Cache
	log         zerolog.Logger
	concurrency int
}

// New opens the store, creating its directories if they are missing.
func New(opts ...Option) (*Store, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	root := options.Root
	if root == "" {
		root = DefaultRoot()
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, &Error{Op: "open", Kind: ErrCreateDir, Path: options.Root, Err: err}
	}

	content, err := store.NewLocalStore(filepath.Join(root, contentDirName))
	if err != nil {
		return nil, &Error{Op: "open", Kind: ErrCreateDir, Path: root, Err: err}
	}

	binDir := filepath.Join(root, binDirName)
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return nil, &Error{Op: "open", Kind: ErrCreateDir, Path: binDir, Err: err}
	}

	s := &Store{
		root:        root,
		binDir:      binDir,
		content:     content,
		cache:       store.NewCache(options.CacheSize),
		log:         options.Logger,
		concurrency: options.Concurrency,
	}
	s.log.Debug().Str("root", root).Msg("Store opened")
	return s, nil
}

func (s *Store) Root() string     { return s.root }
func (s *Store) BinDir() string   { return s.binDir }
func (s *Store) StoreDir() string { return filepath.Join(s.root, contentDirName) }

// Has reports whether a package with the given hash is stored. Strings that
// are not hex sha256 digests are never stored.
func (s *Store) Has(hash string) bool {
	return hasher.Valid(hash) && s.content.Has(hash)
}

// Get returns the stored package for hash. Content is not re-verified.
func (s *Store) Get(hash string) (StoredPackage, bool) {
	if !s.Has(hash) {
		return StoredPackage{}, false
	}
	return s.describe(hash), true
}

// Lookup is Get with an ErrNotFound error for absent hashes.
func (s *Store) Lookup(hash string) (StoredPackage, error) {
	pkg, ok := s.Get(hash)
	if !ok {
		return StoredPackage{}, &Error{Op: "get", Kind: ErrNotFound, Path: hash}
	}
	return pkg, nil
}

// AddPath stores a local file or directory. Directories are copied
// recursively, skipping devices, fifos and sockets; a single file keeps its
// base name inside the package. A source that is itself such a special file
// fails with ErrReadFile.
// Adding content that is already stored is a no-op.
func (s *Store) AddPath(source string) (StoredPackage, error) {
	d, err := hasher.Path(source)
	if err != nil {
		return StoredPackage{}, &Error{Op: "add", Kind: ErrReadFile, Path: source, Err: err}
	}
	hash := hasher.Hex(d)

	if s.content.Has(hash) {
		s.log.Debug().Str("hash", hash).Str("source", source).Msg("Package already stored")
		return s.describe(hash), nil
	}

	info, err := os.Stat(source)
	if err != nil {
		return StoredPackage{}, &Error{Op: "add", Kind: ErrReadFile, Path: source, Err: err}
	}
	if !info.IsDir() && !info.Mode().IsRegular() {
		return StoredPackage{}, &Error{Op: "add", Kind: ErrReadFile, Path: source, Err: fmt.Errorf("unsupported file type %s", info.Mode().Type())}
	}

	err = s.materialize(hash, func(staging string) error {
		if info.IsDir() {
			return copyTree(source, staging)
		}
		return copyFile(source, filepath.Join(staging, filepath.Base(source)), info.Mode().Perm())
	})
	if err != nil {
		return StoredPackage{}, err
	}

	s.log.Debug().Str("hash", hash).Str("source", source).Msg("Package stored")
	return s.describe(hash), nil
}

// AddBytes stores a blob, typically a downloaded release asset. Archives are
// unpacked; anything else becomes a single executable named "bin". A
// non-empty expectedHash that differs from the content hash fails with
// ErrHashMismatch before anything is written.
func (s *Store) AddBytes(data []byte, expectedHash string) (StoredPackage, error) {
	hash := hasher.Hex(hasher.Bytes(data))
	if expectedHash != "" && expectedHash != hash {
		return StoredPackage{}, &HashMismatchError{Expected: expectedHash, Actual: hash}
	}

	if s.content.Has(hash) {
		s.log.Debug().Str("hash", hash).Msg("Package already stored")
		return s.describe(hash), nil
	}

	var format archive.Format
	err := s.materialize(hash, func(staging string) error {
		var err error
		format, err = archive.Extract(data, staging)
		if err != nil {
			return &Error{Op: "add", Kind: ErrUnpack, Path: hash, Err: err}
		}
		if format != archive.Opaque {
			return nil
		}
		return writeExecutable(filepath.Join(staging, bareBinaryName), data)
	})
	if err != nil {
		return StoredPackage{}, err
	}

	s.log.Debug().Str("hash", hash).Stringer("format", format).Int("size", len(data)).Msg("Package stored")
	return s.describe(hash), nil
}

// materialize fills a staging directory and commits it under hash. Nothing is
// visible under hash unless fill succeeded.
func (s *Store) materialize(hash string, fill func(staging string) error) error {
	staging, err := s.content.Stage()
	if err != nil {
		return &Error{Op: "add", Kind: ErrCreateDir, Path: hash, Err: err}
	}

	if err := fill(staging); err != nil {
		if derr := s.content.Discard(staging); derr != nil {
			s.log.Warn().Err(derr).Str("staging", staging).Msg("Failed to remove staging directory")
		}
		var serr *Error
		if errors.As(err, &serr) {
			return err
		}
		return &Error{Op: "add", Kind: ErrWriteFile, Path: hash, Err: err}
	}

	created, err := s.content.Commit(staging, hash)
	if err != nil {
		return &Error{Op: "add", Kind: ErrWriteFile, Path: hash, Err: err}
	}
	if !created {
		s.log.Warn().Str("hash", hash).Msg("Package was stored concurrently, keeping existing copy")
	}
	return nil
}

// Activate links every binary of pkg into the bin directory and returns the
// links it created. Binaries that cannot be resolved inside the package are
// skipped, so activation may succeed partially; see ActivateReport.
func (s *Store) Activate(pkg StoredPackage) ([]string, error) {
	report, err := s.ActivateReport(pkg)
	return report.Linked, err
}

// ActivateReport is Activate that also reports skipped binaries.
func (s *Store) ActivateReport(pkg StoredPackage) (ActivationReport, error) {
	var report ActivationReport
	for _, name := range pkg.Binaries {
		source, ok := locator.FindBinaryPath(pkg.Path, name)
		if !ok {
			s.log.Warn().Str("hash", pkg.Hash).Str("binary", name).Msg("Binary not found in package, skipping")
			report.Skipped = append(report.Skipped, name)
			continue
		}

		link := filepath.Join(s.binDir, name)
		if err := linker.ReplaceLink(source, link); err != nil {
			return report, &Error{Op: "activate", Kind: ErrWriteFile, Path: link, Err: err}
		}
		s.log.Debug().Str("link", link).Str("target", source).Msg("Binary activated")
		report.Linked = append(report.Linked, link)
	}
	return report, nil
}

// Deactivate removes the bin directory links of pkg. Unlike a plain
// "remove bin/<name>", it only removes symlinks that point into pkg or no
// longer resolve: links another package has since taken over and regular
// files are left as they are, as are links that are already gone. This keeps
// GC from unlinking a binary that a kept package now provides.
func (s *Store) Deactivate(pkg StoredPackage) error {
	for _, name := range pkg.Binaries {
		if filepath.Base(name) != name {
			continue
		}
		link := filepath.Join(s.binDir, name)
		removed, err := linker.RemoveLink(link, pkg.Path)
		if err != nil {
			return &Error{Op: "deactivate", Kind: ErrWriteFile, Path: link, Err: err}
		}
		if removed {
			s.log.Debug().Str("link", link).Msg("Binary deactivated")
		}
	}
	return nil
}

// List returns every stored package ordered by hash. A missing or empty
// content directory yields an empty list.
func (s *Store) List() ([]StoredPackage, error) {
	hashes, err := s.content.Hashes()
	if err != nil {
		return nil, &Error{Op: "list", Kind: ErrReadFile, Path: s.StoreDir(), Err: err}
	}

	mapper := iter.Mapper[string, StoredPackage]{MaxGoroutines: s.concurrency}
	return mapper.Map(hashes, func(hash *string) StoredPackage {
		return s.describe(*hash)
	}), nil
}

// GC removes every package whose hash is not in keep, deactivating it first,
// and returns the removed hashes. Abandoned staging directories and dangling
// bin links are cleaned up afterwards.
func (s *Store) GC(keep map[string]struct{}) ([]string, error) {
	pkgs, err := s.List()
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, pkg := range pkgs {
		if _, ok := keep[pkg.Hash]; ok {
			continue
		}
		if err := s.Deactivate(pkg); err != nil {
			return removed, err
		}
		if err := s.content.Remove(pkg.Hash); err != nil {
			return removed, &Error{Op: "gc", Kind: ErrWriteFile, Path: pkg.Path, Err: err}
		}
		s.cache.Remove(pkg.Hash)
		s.log.Debug().Str("hash", pkg.Hash).Msg("Package removed")
		removed = append(removed, pkg.Hash)
	}

	pruned, err := s.content.PruneStaging(time.Now().Add(-StagingGrace))
	if err != nil {
		return removed, &Error{Op: "gc", Kind: ErrWriteFile, Path: s.StoreDir(), Err: err}
	}
	links, err := linker.PruneDangling(s.binDir)
	if err != nil {
		return removed, &Error{Op: "gc", Kind: ErrWriteFile, Path: s.binDir, Err: err}
	}

	s.log.Info().
		Int("removed", len(removed)).
		Int("kept", len(pkgs)-len(removed)).
		Int("staging_pruned", len(pruned)).
		Int("links_pruned", len(links)).
		Msg("Garbage collection finished")
	return removed, nil
}

func (s *Store) describe(hash string) StoredPackage {
	path := s.content.Path(hash)
	binaries, ok := s.cache.Get(hash)
	if !ok {
		binaries = locator.FindBinaries(path)
		s.cache.Add(hash, binaries)
	}
	return StoredPackage{Hash: hash, Path: path, Binaries: binaries}
}

func writeExecutable(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o755); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	// WriteFile is subject to the umask
	return os.Chmod(path, 0o755)
}
