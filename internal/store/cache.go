package store

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache remembers the binaries discovered in committed entries. Entries are
// write-once, so a cached list stays valid until the entry is removed.
type Cache interface {
	Get(hash string) ([]string, bool)
	Add(hash string, binaries []string)
	Remove(hash string)
	Clear()
}

// LRUCache is a size-bounded Cache.
type LRUCache struct {
	items *lru.Cache[string, []string]
}

// NewCache returns an LRU cache holding up to size entries, or a cache that
// stores nothing when size is not positive.
func NewCache(size int) Cache {
	if size <= 0 {
		return nopCache{}
	}
	items, err := lru.New[string, []string](size)
	if err != nil {
		return nopCache{}
	}
	return &LRUCache{items: items}
}

func (c *LRUCache) Get(hash string) ([]string, bool) {
	v, ok := c.items.Get(hash)
	if !ok {
		return nil, false
	}
	return append([]string(nil), v...), true
}

func (c *LRUCache) Add(hash string, binaries []string) {
	c.items.Add(hash, append([]string(nil), binaries...))
}

func (c *LRUCache) Remove(hash string) {
	c.items.Remove(hash)
}

func (c *LRUCache) Clear() {
	c.items.Purge()
}

type nopCache struct{}

func (nopCache) Get(string) ([]string, bool) { return nil, false }
func (nopCache) Add(string, []string)        {}
func (nopCache) Remove(string)               {}
func (nopCache) Clear()                      {}
