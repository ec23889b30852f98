package portio

import (
	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog/log"
	"sync"
	"time"
)

const defStatCacheTTL = time.Second

type metadataCache struct {
	lock  sync.RWMutex
	cache *ristretto.Cache
	ttl   time.Duration
}

// statCache memoises metadata lookups by path. It is disabled until
// configured with a positive size.
var statCache = &metadataCache{}

func (c *metadataCache) configure(size int64, ttl time.Duration) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.cache != nil {
		c.cache.Close()
		c.cache = nil
	}
	if size <= 0 {
		return nil
	}
	if ttl <= 0 {
		ttl = defStatCacheTTL
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: size * 10,
		MaxCost:     size,
		BufferItems: 64,
		// entries are counted, not sized
		IgnoreInternalCost: true,
	})
	if err != nil {
		return err
	}
	c.cache = cache
	c.ttl = ttl
	log.Info().Msgf("metadata cache enabled: %d entries, ttl %s", size, ttl)
	return nil
}

func cacheKey(path string, wanted Field) string {
	if wanted&FieldLink != 0 {
		return "l:" + path
	}
	return "s:" + path
}

func (c *metadataCache) get(path string, wanted Field) (FileInfo, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if c.cache == nil {
		return FileInfo{}, false
	}
	value, ok := c.cache.Get(cacheKey(path, wanted))
	if !ok {
		return FileInfo{}, false
	}
	return value.(FileInfo), true
}

func (c *metadataCache) put(path string, wanted Field, info FileInfo) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if c.cache == nil {
		return
	}
	c.cache.SetWithTTL(cacheKey(path, wanted), info, 1, c.ttl)
}

// wait blocks until buffered writes are visible to get.
func (c *metadataCache) wait() {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if c.cache != nil {
		c.cache.Wait()
	}
}

func (c *metadataCache) invalidate(path string) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if c.cache == nil {
		return
	}
	c.cache.Del(cacheKey(path, 0))
	c.cache.Del(cacheKey(path, FieldLink))
}
