package repository

import (
	"context"

	"github.com/census-statistics-service/internal/domain"
)

// CensusRepository is the external statistics API collaborator.
type CensusRepository interface {
	// FetchGroupMetadata fetches and normalizes a table group's schema.
	FetchGroupMetadata(ctx context.Context, year int, dataset, group string) (*domain.GroupMetadata, error)

	// FetchZCTARecords queries tabular data at ZCTA granularity. The API
	// returns nationwide rows; filtering happens downstream.
	FetchZCTARecords(ctx context.Context, year int, dataset string, variables []string) ([]domain.CensusRecord, error)

	// FetchCountyRecords queries tabular data at county granularity,
	// restricted to the configured state.
	FetchCountyRecords(ctx context.Context, year int, dataset string, variables []string) ([]domain.CensusRecord, error)
}
