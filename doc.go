// Package nursery provides a content-addressed store for third-party binary
// packages.
//
// Packages are stored once per content hash under root/store/<sha256> and
// their executables are exposed through symlinks in root/bin. The store keeps
// no index: every query is answered by looking at the filesystem.
//
// Basic usage:
//
//	s, _ := nursery.New()                         // xdg data home, or $NURSERY_ROOT
//	s, _ = nursery.New(nursery.WithRoot(dir))     // isolated root
//
//	// Store a downloaded release asset; archives are unpacked
//	pkg, err := s.AddBytes(data, expectedSHA256)
//
//	// Store a local file or directory tree
//	pkg, err = s.AddPath("./build/tool")
//
//	// Expose the package binaries on PATH
//	links, err := s.Activate(pkg)
//
//	// Drop everything no longer referenced
//	removed, err := s.GC(nursery.KeepSet(pkg.Hash))
//
// Writes are staged and renamed into place, so a package directory that
// exists is always complete. Activation replaces links atomically. The store
// does no locking; run GC only when nothing else mutates the store.
package nursery
