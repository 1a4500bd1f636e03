package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/orderverify/internal/domain/integration"
	"github.com/google/uuid"
)

const defaultCleanupInterval = 5 * time.Minute

type vendorEntry struct {
	vendorNo  string
	expiresAt time.Time
}

// InMemoryVendorNoCache keeps portal-to-vendor resolutions in process memory.
// Suitable for single-instance deployments and tests.
type InMemoryVendorNoCache struct {
	mu        sync.RWMutex
	entries   map[uuid.UUID]vendorEntry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryVendorNoCache creates the cache and starts its cleanup loop
func NewInMemoryVendorNoCache() *InMemoryVendorNoCache {
	c := &InMemoryVendorNoCache{
		entries:  make(map[uuid.UUID]vendorEntry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop(defaultCleanupInterval)

	return c
}

// Get returns the vendor number cached for vendorPortalID
func (c *InMemoryVendorNoCache) Get(_ context.Context, vendorPortalID uuid.UUID) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[vendorPortalID]
	if !ok || !c.now().Before(e.expiresAt) {
		return "", false, nil
	}
	return e.vendorNo, true, nil
}

// Set stores vendorNo for ttl. A non-positive ttl is ignored.
func (c *InMemoryVendorNoCache) Set(_ context.Context, vendorPortalID uuid.UUID, vendorNo string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[vendorPortalID] = vendorEntry{vendorNo: vendorNo, expiresAt: c.now().Add(ttl)}
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryVendorNoCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// Size returns the number of stored entries, expired or not
func (c *InMemoryVendorNoCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *InMemoryVendorNoCache) cleanupLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryVendorNoCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for id, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, id)
		}
	}
}

var _ integration.VendorNoCache = (*InMemoryVendorNoCache)(nil)
