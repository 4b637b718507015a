package repository

import (
	"context"

	"github.com/census-statistics-service/internal/domain"
)

// AreaRepository reads the geographic reference data.
type AreaRepository interface {
	// ListActive loads all active areas of both kinds in one bounded query.
	ListActive(ctx context.Context) ([]*domain.Area, error)
}
