package nursery

// StoredPackage describes one entry of the content area. It is recomputed
// from the filesystem on every query.
type StoredPackage struct {
	// Hash is the lowercase hex sha256 content address and the folder name.
	Hash string
	// Path is the absolute path of the package directory.
	Path string
	// Binaries are the executable names the package exposes, de-duplicated.
	Binaries []string
}

// ActivationReport is the outcome of activating a package.
type ActivationReport struct {
	// Linked holds the bin directory links that were created or replaced.
	Linked []string
	// Skipped holds binary names whose executable could not be resolved.
	Skipped []string
}

// PackageStore is the public interface of the package store.
type PackageStore interface {
	Root() string
	BinDir() string

	Has(hash string) bool
	Get(hash string) (StoredPackage, bool)
	Lookup(hash string) (StoredPackage, error)
	List() ([]StoredPackage, error)

	AddPath(source string) (StoredPackage, error)
	AddBytes(data []byte, expectedHash string) (StoredPackage, error)

	Activate(pkg StoredPackage) ([]string, error)
	ActivateReport(pkg StoredPackage) (ActivationReport, error)
	Deactivate(pkg StoredPackage) error

	GC(keep map[string]struct{}) ([]string, error)
}

var _ PackageStore = (*Store)(nil)

// KeepSet builds a GC keep-set from hashes.
func KeepSet(hashes ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		set[h] = struct{}{}
	}
	return set
}
