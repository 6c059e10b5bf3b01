// Package store implements the on-disk content area.
//
// The content area is a flat directory with one sub-directory per content
// hash. Entries are materialized in a dot-prefixed staging directory and
// renamed into place once complete, so an entry that exists is an entry that
// was fully written:
//
//	dir/
//	  3a7bd3e2360a.../   (committed package)
//	  .tmp-123456/       (in-flight or abandoned staging area)
package store

import "time"

// Store handles the content area.
type Store interface {
	// Path returns where the entry for hash lives, whether or not it exists.
	Path(hash string) string

	// Has checks if a committed entry exists.
	Has(hash string) bool

	// Stage creates an empty staging directory and returns its path.
	Stage() (string, error)

	// Commit moves a staging directory into place under hash. It reports
	// false when an entry for hash already existed; the staging directory is
	// discarded in that case. An existing empty entry may be replaced, which
	// is harmless since equal hashes mean equal content.
	Commit(staging, hash string) (created bool, err error)

	// Discard removes a staging directory.
	Discard(staging string) error

	// Hashes lists committed entries in lexical order.
	Hashes() ([]string, error)

	// Remove deletes a committed entry. Removing an absent entry is not an error.
	Remove(hash string) error

	// PruneStaging removes staging directories last modified before cutoff.
	PruneStaging(cutoff time.Time) ([]string, error)
}
