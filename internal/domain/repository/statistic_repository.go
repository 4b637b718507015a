package repository

import (
	"context"

	"github.com/census-statistics-service/internal/domain"
)

// StatisticRepository manages the statistic registry.
type StatisticRepository interface {
	// GetByID returns one statistic.
	GetByID(ctx context.Context, id string) (*domain.Statistic, error)

	// GetByName returns one statistic by its display name.
	GetByName(ctx context.Context, name string) (*domain.Statistic, error)

	// List returns all registered statistics.
	List(ctx context.Context) ([]*domain.Statistic, error)

	// Upsert inserts the statistic or refreshes its metadata by name. Flags
	// set by operators (visibility, poi_enabled) survive the upsert.
	Upsert(ctx context.Context, stat *domain.Statistic) (*domain.Statistic, error)
}
