// Package store caches directory responses in front of the upstream client.
package store

import (
	"context"

	"atlas/internal/country/models"
)

// Cache persists directory responses for a bounded time. Finds return
// sentinel.ErrNotFound for absent or expired entries. Countries are findable
// by alpha-3 and, when known, alpha-2 code.
type Cache interface {
	FindAll(ctx context.Context) ([]models.Country, error)
	SaveAll(ctx context.Context, countries []models.Country) error
	FindCountry(ctx context.Context, code string) (*models.Country, error)
	SaveCountry(ctx context.Context, country *models.Country) error
}
