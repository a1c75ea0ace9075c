package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const defaultCleanupInterval = 10 * time.Minute

// NewMemory returns an in-process cache whose entries expire after ttl.
func NewMemory(ttl time.Duration) *gocache.Cache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	cleanup := 2 * ttl
	if cleanup < defaultCleanupInterval {
		cleanup = defaultCleanupInterval
	}
	return gocache.New(ttl, cleanup)
}
