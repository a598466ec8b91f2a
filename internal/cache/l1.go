package cache

import (
	"time"

	"github.com/ZaphyrRobin/kinetic-takehome/internal/domain/model"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultMaxEntries = 1024

// L1 memoizes deployment records in-process, ahead of the shared redis
// cache. Records never change once resolved, so the only freshness concern
// is the TTL mirroring the redis expiry.
type L1 struct {
	store *expirable.LRU[string, model.DeploymentRecord]
}

func NewL1(maxEntries int, ttl time.Duration) *L1 {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &L1{
		store: expirable.NewLRU[string, model.DeploymentRecord](maxEntries, nil, ttl),
	}
}

func (c *L1) Get(key string) (model.DeploymentRecord, bool) {
	return c.store.Get(key)
}

func (c *L1) Put(key string, rec model.DeploymentRecord) {
	c.store.Add(key, rec)
}

func (c *L1) Len() int {
	return c.store.Len()
}
