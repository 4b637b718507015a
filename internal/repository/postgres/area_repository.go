package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/census-statistics-service/internal/domain"
	"github.com/census-statistics-service/internal/domain/repository"
	"go.uber.org/zap"
)

// maxAreaRows bounds the single area load; the state holds well under a
// thousand ZCTAs plus 77 counties.
const maxAreaRows = 5000

type areaRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAreaRepository creates the Postgres area reference store.
func NewAreaRepository(db *DB, logger *zap.Logger) repository.AreaRepository {
	return &areaRepository{
		db:     db,
		logger: logger,
	}
}

func (r *areaRepository) ListActive(ctx context.Context) ([]*domain.Area, error) {
	query := `
		SELECT code, kind, name, parent_code, active, created_at, updated_at
		FROM areas
		WHERE active = true
		ORDER BY kind, code
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, maxAreaRows)
	if err != nil {
		r.logger.Error("Failed to list active areas", zap.Error(err))
		return nil, fmt.Errorf("list active areas: %w", err)
	}
	defer rows.Close()

	var areas []*domain.Area
	for rows.Next() {
		var (
			area       domain.Area
			parentCode sql.NullString
		)

		err := rows.Scan(
			&area.Code, &area.Kind, &area.Name, &parentCode,
			&area.Active, &area.CreatedAt, &area.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan area: %w", err)
		}

		area.ParentCode = parentCode.String
		areas = append(areas, &area)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("area rows error: %w", err)
	}

	return areas, nil
}
