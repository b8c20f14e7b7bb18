package rowsource

import (
	"context"
	"sync"
	"time"

	"github.com/MEDSABRY98/bhs-reports/internal/models"
)

// CachedSource wraps a Source with a TTL cache so remote row stores are
// not refetched on every dashboard request. Appends invalidate the cache.
type CachedSource struct {
	src Source
	ttl time.Duration

	mu       sync.Mutex
	data     *Dataset
	loadedAt time.Time
}

// Ensure interface conformance
var _ Source = (*CachedSource)(nil)

// NewCached wraps src with the given TTL. A non-positive TTL disables
// caching and every Load hits the underlying source.
func NewCached(src Source, ttl time.Duration) *CachedSource {
	return &CachedSource{src: src, ttl: ttl}
}

// Load returns the cached dataset when fresh, otherwise reloads
func (c *CachedSource) Load(ctx context.Context) (*Dataset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ttl > 0 && c.data != nil && time.Since(c.loadedAt) < c.ttl {
		return c.data, nil
	}

	data, err := c.src.Load(ctx)
	if err != nil {
		// Serve the stale dataset rather than a blank dashboard when
		// the remote store is briefly unreachable.
		if c.data != nil {
			return c.data, nil
		}
		return nil, err
	}

	c.data = data
	c.loadedAt = time.Now()
	return data, nil
}

// AppendStockTransaction forwards the append and invalidates the cache
func (c *CachedSource) AppendStockTransaction(ctx context.Context, tx models.StockTransaction) error {
	if err := c.src.AppendStockTransaction(ctx, tx); err != nil {
		return err
	}

	c.mu.Lock()
	c.data = nil
	c.mu.Unlock()
	return nil
}
