package store

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"atlas/internal/country/directory"
	"atlas/internal/country/metrics"
	"atlas/internal/country/models"
	"atlas/pkg/platform/circuit"
	"atlas/pkg/platform/sentinel"
)

// Upstream is the directory being cached.
type Upstream interface {
	All(ctx context.Context) ([]models.Country, error)
	ByCode(ctx context.Context, code string) (*models.Country, error)
}

// CachedDirectory is a read-through cache in front of the upstream directory.
//
// Concurrent misses for the same key share one upstream call. Upstream
// failures feed a circuit breaker; while it is open, the last successfully
// fetched data is served even if the cache has expired it.
type CachedDirectory struct {
	upstream Upstream
	cache    Cache
	breaker  *circuit.Breaker
	logger   *slog.Logger
	metrics  *metrics.Metrics
	group    singleflight.Group

	mu         sync.RWMutex
	lastAll    []models.Country
	lastByCode map[string]models.Country
}

// CachedOption configures a CachedDirectory.
type CachedOption func(*CachedDirectory)

// WithBreaker replaces the default breaker.
func WithBreaker(b *circuit.Breaker) CachedOption {
	return func(d *CachedDirectory) {
		if b != nil {
			d.breaker = b
		}
	}
}

// WithLogger sets the logger used for degraded-mode reporting.
func WithLogger(l *slog.Logger) CachedOption {
	return func(d *CachedDirectory) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMetrics attaches cache and breaker metrics.
func WithMetrics(m *metrics.Metrics) CachedOption {
	return func(d *CachedDirectory) {
		d.metrics = m
	}
}

// NewCachedDirectory wraps upstream with cache.
func NewCachedDirectory(upstream Upstream, cache Cache, opts ...CachedOption) *CachedDirectory {
	d := &CachedDirectory{
		upstream:   upstream,
		cache:      cache,
		breaker:    circuit.New("directory"),
		logger:     slog.Default(),
		lastByCode: make(map[string]models.Country),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// All returns the full collection from cache or upstream.
func (d *CachedDirectory) All(ctx context.Context) ([]models.Country, error) {
	countries, err := d.cache.FindAll(ctx)
	if err == nil {
		d.metrics.IncCacheLookup("all", "hit")
		return countries, nil
	}
	d.recordMiss(ctx, "all", err)

	v, err := d.shared(ctx, "all", func(fetchCtx context.Context) (any, error) {
		countries, err := d.upstream.All(fetchCtx)
		if err != nil {
			return nil, err
		}
		d.remember(fetchCtx, countries)
		return countries, nil
	})
	if err != nil {
		if stale, ok := d.fallbackAll(ctx, err); ok {
			return stale, nil
		}
		return nil, err
	}
	return slices.Clone(v.([]models.Country)), nil
}

// ByCode returns one country from cache, the cached collection, or upstream.
func (d *CachedDirectory) ByCode(ctx context.Context, code string) (*models.Country, error) {
	country, err := d.cache.FindCountry(ctx, code)
	if err == nil {
		d.metrics.IncCacheLookup("country", "hit")
		return country, nil
	}
	d.recordMiss(ctx, "country", err)

	if all, err := d.cache.FindAll(ctx); err == nil {
		if i := slices.IndexFunc(all, func(c models.Country) bool { return c.HasCode(code) }); i >= 0 {
			d.metrics.IncCacheLookup("country", "collection_hit")
			return &all[i], nil
		}
	}

	v, err := d.shared(ctx, "code:"+code, func(fetchCtx context.Context) (any, error) {
		country, err := d.upstream.ByCode(fetchCtx, code)
		if err != nil {
			return nil, err
		}
		d.rememberCountry(fetchCtx, code, *country)
		return *country, nil
	})
	if err != nil {
		if stale, ok := d.fallbackCountry(ctx, code, err); ok {
			return stale, nil
		}
		return nil, err
	}
	fetched := v.(models.Country)
	return &fetched, nil
}

// Degraded reports whether the breaker is open.
func (d *CachedDirectory) Degraded() bool {
	return d.breaker.IsOpen()
}

// shared runs fetch once per key across concurrent callers. The fetch is
// detached from any single caller's cancellation so one navigation-away
// does not fail the others; each caller still stops waiting on its own ctx.
func (d *CachedDirectory) shared(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	ch := d.group.DoChan(key, func() (any, error) {
		fetchCtx := context.WithoutCancel(ctx)
		v, err := fetch(fetchCtx)
		d.recordOutcome(fetchCtx, err)
		return v, err
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, directory.NewError(directory.ErrorCanceled, key, "caller went away", ctx.Err())
	}
}

// recordOutcome feeds the breaker. Not-found answers prove the upstream is
// healthy; only transient failures count against it.
func (d *CachedDirectory) recordOutcome(ctx context.Context, err error) {
	if err == nil || errors.Is(err, sentinel.ErrNotFound) {
		if _, change := d.breaker.RecordSuccess(); change.Closed {
			d.logger.InfoContext(ctx, "directory recovered, circuit closed", "breaker", d.breaker.Name())
			d.metrics.SetBreakerState(false)
		}
		return
	}
	if !errors.Is(err, sentinel.ErrUnavailable) {
		return
	}
	if _, change := d.breaker.RecordFailure(); change.Opened {
		d.logger.WarnContext(ctx, "directory failing, circuit opened", "breaker", d.breaker.Name(), "error", err)
		d.metrics.SetBreakerState(true)
	}
}

func (d *CachedDirectory) fallbackAll(ctx context.Context, cause error) ([]models.Country, bool) {
	if !d.breaker.IsOpen() || !errors.Is(cause, sentinel.ErrUnavailable) {
		return nil, false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.lastAll == nil {
		return nil, false
	}
	d.metrics.IncCacheLookup("all", "stale")
	d.logger.WarnContext(ctx, "serving stale country list", "error", cause)
	return slices.Clone(d.lastAll), true
}

func (d *CachedDirectory) fallbackCountry(ctx context.Context, code string, cause error) (*models.Country, bool) {
	if !d.breaker.IsOpen() || !errors.Is(cause, sentinel.ErrUnavailable) {
		return nil, false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.lastByCode[code]
	if !ok {
		return nil, false
	}
	d.metrics.IncCacheLookup("country", "stale")
	d.logger.WarnContext(ctx, "serving stale country", "code", code, "error", cause)
	return &c, true
}

func (d *CachedDirectory) remember(ctx context.Context, countries []models.Country) {
	d.mu.Lock()
	d.lastAll = slices.Clone(countries)
	for _, c := range countries {
		for _, code := range c.Codes() {
			d.lastByCode[code] = c
		}
	}
	d.mu.Unlock()

	if err := d.cache.SaveAll(ctx, countries); err != nil {
		d.logger.WarnContext(ctx, "failed to cache country list", "error", err)
	}
}

// rememberCountry keeps c under its own codes and under the code it was
// requested by, which may be an alpha-2 code the record does not carry.
func (d *CachedDirectory) rememberCountry(ctx context.Context, requested string, c models.Country) {
	if c.Alpha2 == "" && len(requested) == 2 {
		c.Alpha2 = requested
	}
	d.mu.Lock()
	d.lastByCode[requested] = c
	for _, code := range c.Codes() {
		d.lastByCode[code] = c
	}
	d.mu.Unlock()

	if err := d.cache.SaveCountry(ctx, &c); err != nil {
		d.logger.WarnContext(ctx, "failed to cache country", "code", c.Code, "error", err)
	}
}

func (d *CachedDirectory) recordMiss(ctx context.Context, kind string, err error) {
	if errors.Is(err, sentinel.ErrNotFound) {
		d.metrics.IncCacheLookup(kind, "miss")
		return
	}
	d.metrics.IncCacheLookup(kind, "error")
	d.logger.WarnContext(ctx, "directory cache lookup failed", "kind", kind, "error", err)
}
