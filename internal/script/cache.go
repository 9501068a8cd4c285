package script

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

// DefaultCacheSize bounds the compiled programs each dialect keeps.
const DefaultCacheSize = 256

// programCache is an LRU of compiled programs keyed by source.
type programCache[P any] struct {
	mu    sync.Mutex
	cache *lru.Cache
}

func newProgramCache[P any](size int) *programCache[P] {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &programCache[P]{cache: lru.New(size)}
}

// get returns the program for src, compiling and caching it on a miss.
// Failed compilations are not cached.
func (c *programCache[P]) get(src string, compile func(string) (P, error)) (P, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.cache.Get(src); ok {
		return v.(P), nil
	}
	p, err := compile(src)
	if err != nil {
		return p, err
	}
	c.cache.Add(src, p)
	return p, nil
}
