package repository

import (
	"context"

	"github.com/census-statistics-service/internal/domain"
)

// AggregateRepository persists area-value aggregate rows.
type AggregateRepository interface {
	// ListByStatistic loads every aggregate row of a statistic.
	ListByStatistic(ctx context.Context, statisticID string) ([]*domain.AggregateRow, error)

	// ListSummaries returns the (parent region, data date) pairs present for
	// a statistic at one boundary granularity.
	ListSummaries(ctx context.Context, statisticID string, boundary domain.Boundary) ([]domain.AggregateSummary, error)

	// FetchRows bulk-loads the rows matching the given summaries for one
	// boundary granularity in a single query.
	FetchRows(ctx context.Context, statisticID string, boundary domain.Boundary, summaries []domain.AggregateSummary) ([]*domain.AggregateRow, error)

	// UpsertBatch writes rows in transactions bounded by maxTxOperations.
	// A failed batch aborts the remaining ones; flushed batches stay.
	UpsertBatch(ctx context.Context, rows []*domain.AggregateRow, maxTxOperations int) error
}
