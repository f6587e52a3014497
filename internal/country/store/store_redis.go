package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"atlas/internal/country/models"
	"atlas/pkg/platform/sentinel"
)

const (
	allCountriesKey  = "atlas:countries:all"
	countryKeyPrefix = "atlas:country:"
)

// RedisCache shares directory responses between instances. Expiry is
// delegated to Redis key TTLs.
type RedisCache struct {
	client   *redis.Client
	cacheTTL time.Duration
}

// NewRedisCache constructs a Redis-backed cache.
func NewRedisCache(client *redis.Client, cacheTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, cacheTTL: cacheTTL}
}

func (c *RedisCache) FindAll(ctx context.Context) ([]models.Country, error) {
	var countries []models.Country
	if err := c.get(ctx, allCountriesKey, &countries); err != nil {
		return nil, err
	}
	return countries, nil
}

func (c *RedisCache) SaveAll(ctx context.Context, countries []models.Country) error {
	return c.set(ctx, allCountriesKey, countries)
}

func (c *RedisCache) FindCountry(ctx context.Context, code string) (*models.Country, error) {
	var country models.Country
	if err := c.get(ctx, countryKeyPrefix+code, &country); err != nil {
		return nil, err
	}
	return &country, nil
}

func (c *RedisCache) SaveCountry(ctx context.Context, country *models.Country) error {
	if country == nil {
		return nil
	}
	for _, code := range country.Codes() {
		if err := c.set(ctx, countryKeyPrefix+code, country); err != nil {
			return err
		}
	}
	return nil
}

func (c *RedisCache) get(ctx context.Context, key string, out any) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", key, errors.Join(sentinel.ErrUnavailable, err))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode cached %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, c.cacheTTL).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, errors.Join(sentinel.ErrUnavailable, err))
	}
	return nil
}
