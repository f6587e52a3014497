package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"atlas/internal/country/models"
	"atlas/pkg/platform/sentinel"
	"atlas/pkg/requestcontext"
)

type cachedCountry struct {
	record   models.Country
	storedAt time.Time
}

// InMemoryCache keeps directory responses in process with TTL expiration.
type InMemoryCache struct {
	mu          sync.RWMutex
	all         []models.Country
	allStoredAt time.Time
	countries   map[string]cachedCountry
	cacheTTL    time.Duration
}

// NewInMemoryCache creates an in-memory cache with the given TTL.
func NewInMemoryCache(cacheTTL time.Duration) *InMemoryCache {
	return &InMemoryCache{
		countries: make(map[string]cachedCountry),
		cacheTTL:  cacheTTL,
	}
}

// SaveAll stores the full collection. A nil slice clears it.
func (c *InMemoryCache) SaveAll(ctx context.Context, countries []models.Country) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.all = slices.Clone(countries)
	c.allStoredAt = requestcontext.Now(ctx)
	return nil
}

// FindAll returns the cached collection while it is fresh.
func (c *InMemoryCache) FindAll(ctx context.Context) ([]models.Country, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.all == nil || !c.fresh(ctx, c.allStoredAt) {
		return nil, sentinel.ErrNotFound
	}
	return slices.Clone(c.all), nil
}

// SaveCountry stores one country under each of its codes. Nil is a no-op.
func (c *InMemoryCache) SaveCountry(ctx context.Context, country *models.Country) error {
	if country == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := cachedCountry{record: *country, storedAt: requestcontext.Now(ctx)}
	for _, code := range country.Codes() {
		c.countries[code] = entry
	}
	return nil
}

// FindCountry returns a cached country while it is fresh.
func (c *InMemoryCache) FindCountry(ctx context.Context, code string) (*models.Country, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if cached, ok := c.countries[code]; ok && c.fresh(ctx, cached.storedAt) {
		record := cached.record
		return &record, nil
	}
	return nil, sentinel.ErrNotFound
}

func (c *InMemoryCache) fresh(ctx context.Context, storedAt time.Time) bool {
	return requestcontext.Now(ctx).Sub(storedAt) < c.cacheTTL
}
