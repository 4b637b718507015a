package repository

import (
	"context"
	"time"

	"github.com/census-statistics-service/internal/domain"
)

// CacheRepository defines the response cache.
type CacheRepository interface {
	// Get returns a raw cached value.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a raw value with a TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// GetStatistics returns the cached statistic listing.
	GetStatistics(ctx context.Context) ([]*domain.Statistic, error)

	// SetStatistics caches the statistic listing.
	SetStatistics(ctx context.Context, stats []*domain.Statistic, ttl time.Duration) error

	// InvalidateStatistics drops the cached listing.
	InvalidateStatistics(ctx context.Context) error

	// GetPOIs returns the cached POI listing for a statistic.
	GetPOIs(ctx context.Context, statisticID string) ([]*domain.PointOfInterest, error)

	// SetPOIs caches the POI listing for a statistic.
	SetPOIs(ctx context.Context, statisticID string, pois []*domain.PointOfInterest, ttl time.Duration) error

	// InvalidatePOIs drops the cached POI listing for a statistic.
	InvalidatePOIs(ctx context.Context, statisticID string) error
}
