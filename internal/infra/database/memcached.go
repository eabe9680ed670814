package database

import (
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// NewMemcached returns a client for the classification cache. An empty
// server disables the cache.
func NewMemcached(server string) *memcache.Client {
	if server == "" {
		return nil
	}
	mc := memcache.New(server)
	mc.Timeout = 500 * time.Millisecond
	mc.MaxIdleConns = 4
	return mc
}
