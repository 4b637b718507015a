package repository

import (
	"context"

	"github.com/census-statistics-service/internal/domain"
)

// POIRepository persists point-of-interest records.
type POIRepository interface {
	// ListByStatistic loads every POI record of a statistic, active or not.
	ListByStatistic(ctx context.Context, statisticID string) ([]*domain.PointOfInterest, error)

	// ListActiveByStatistic loads only the currently-active records.
	ListActiveByStatistic(ctx context.Context, statisticID string) ([]*domain.PointOfInterest, error)

	// UpsertBatch writes records by natural key (statistic, scope, boundary,
	// kind) in transactions bounded by maxTxOperations.
	UpsertBatch(ctx context.Context, records []*domain.PointOfInterest, maxTxOperations int) error

	// DeactivateBatch flips the given record ids inactive in bounded
	// transactions.
	DeactivateBatch(ctx context.Context, ids []string, maxTxOperations int) error
}
