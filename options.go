package nursery

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
)

const (
	// DirName is the product namespace under the user data directory.
	DirName = "nursery"

	// EnvRoot overrides the default root when set.
	EnvRoot = "NURSERY_ROOT"

	// DefaultCacheSize is the number of packages whose binary lists are
	// remembered between queries.
	DefaultCacheSize = 256
)

// Options configures a Store.
type Options struct {
	Root        string
	Logger      zerolog.Logger
	Concurrency int
	CacheSize   int
}

// Option is a functional option for configuring New.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Logger:      zerolog.Nop(),
		Concurrency: runtime.GOMAXPROCS(0),
		CacheSize:   DefaultCacheSize,
	}
}

// WithRoot sets the directory holding store/ and bin/.
func WithRoot(dir string) Option {
	return func(o *Options) { o.Root = dir }
}

// WithLogger sets the logger used for store diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithConcurrency sets how many packages List inspects in parallel.
func WithConcurrency(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Concurrency = n
		}
	}
}

// WithCacheSize sets the binaries cache size. Zero disables the cache.
func WithCacheSize(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.CacheSize = n
		}
	}
}

// DefaultRoot returns $NURSERY_ROOT, or the nursery directory under the XDG
// data home.
func DefaultRoot() string {
	if root := os.Getenv(EnvRoot); root != "" {
		return root
	}
	return filepath.Join(xdg.DataHome, DirName)
}
