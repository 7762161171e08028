package cache

import (
	"context"
	"errors"
	"time"

	pcache "github.com/sablalpz/GreenEnergy-Insights/pkg/cache"
)

// LayeredBytesCache adapts a pkg/cache Service to the BytesCache API so the
// analytics layer can sit on the memory+Redis layered cache.
type LayeredBytesCache struct {
	svc pcache.Service
}

func NewLayeredBytesCache(svc pcache.Service) *LayeredBytesCache {
	return &LayeredBytesCache{svc: svc}
}

func (c *LayeredBytesCache) GetBytes(key string) ([]byte, bool, error) {
	var s string
	err := c.svc.Get(context.Background(), key, &s)
	if errors.Is(err, pcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(s), true, nil
}

func (c *LayeredBytesCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	return c.svc.Set(context.Background(), key, string(value), ttl)
}
