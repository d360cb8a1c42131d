package budgey

import (
	"context"
	"sync"
)

// CategoryCache is an in-memory, single-user-scoped cache of category
// records. There is no TTL: staleness is controlled purely by explicit
// invalidation and user-id mismatch. One instance serves one user session.
type CategoryCache struct {
	source CategorySource

	mu         sync.Mutex
	userID     string
	categories []*CategoryRecord
	populated  bool
}

// NewCategoryCache creates a cache over the given upstream source
func NewCategoryCache(source CategorySource) *CategoryCache {
	return &CategoryCache{source: source}
}

// Get returns the cached categories when the cache is populated for this
// user and forceRefresh is false; otherwise it fetches fresh, replaces the
// cache, and returns the fresh list. A fetch failure leaves the cache
// untouched.
func (c *CategoryCache) Get(ctx context.Context, userID string, forceRefresh bool) ([]*CategoryRecord, error) {
	if userID == "" {
		return nil, invalidInputf("user id must not be blank")
	}

	c.mu.Lock()
	if !forceRefresh && c.populated && c.userID == userID {
		cached := append([]*CategoryRecord{}, c.categories...)
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	// Fetch outside the lock; the upstream call is the only suspension
	// point. Concurrent misses may fetch twice, last write wins.
	categories, err := c.source.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.userID = userID
	c.categories = categories
	c.populated = true
	c.mu.Unlock()

	return append([]*CategoryRecord{}, categories...), nil
}

// Invalidate clears the cache unconditionally. Every successful category
// creation or mutation must call it.
func (c *CategoryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = ""
	c.categories = nil
	c.populated = false
}
