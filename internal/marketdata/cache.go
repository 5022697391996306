package marketdata

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

// Cache is a TTL cache for slow-changing provider data such as the ticker catalog.
type Cache struct {
	c   *ristretto.Cache
	ttl time.Duration
}

func NewCache(maxCost int64, ttl time.Duration) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c, ttl: ttl}, nil
}

func (c *Cache) Get(key string) (any, bool) { return c.c.Get(key) }

// Set stores val and waits until it is visible to Get.
func (c *Cache) Set(key string, val any) {
	c.c.SetWithTTL(key, val, 1, c.ttl)
	c.c.Wait()
}
