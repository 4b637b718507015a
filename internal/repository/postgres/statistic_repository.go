package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/census-statistics-service/internal/domain"
	"github.com/census-statistics-service/internal/domain/repository"
	"github.com/census-statistics-service/internal/pkg/errors"
	"go.uber.org/zap"
)

type statisticRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewStatisticRepository creates the Postgres statistic registry.
func NewStatisticRepository(db *DB, logger *zap.Logger) repository.StatisticRepository {
	return &statisticRepository{
		db:     db,
		logger: logger,
	}
}

const statisticColumns = `
	id, name, category, value_kind, higher_is_better,
	visibility, visibility_override, active, poi_enabled,
	created_at, updated_at
`

func (r *statisticRepository) GetByID(ctx context.Context, id string) (*domain.Statistic, error) {
	query := `SELECT ` + statisticColumns + ` FROM statistics WHERE id = $1`

	stat, err := scanStatistic(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.ErrStatisticNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get statistic by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("get statistic %s: %w", id, err)
	}

	return stat, nil
}

func (r *statisticRepository) GetByName(ctx context.Context, name string) (*domain.Statistic, error) {
	query := `SELECT ` + statisticColumns + ` FROM statistics WHERE name = $1`

	stat, err := scanStatistic(r.db.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, errors.ErrStatisticNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get statistic by name", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("get statistic %q: %w", name, err)
	}

	return stat, nil
}

func (r *statisticRepository) List(ctx context.Context) ([]*domain.Statistic, error) {
	query := `SELECT ` + statisticColumns + ` FROM statistics ORDER BY category, name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list statistics", zap.Error(err))
		return nil, fmt.Errorf("list statistics: %w", err)
	}
	defer rows.Close()

	var stats []*domain.Statistic
	for rows.Next() {
		stat, err := scanStatistic(rows)
		if err != nil {
			return nil, fmt.Errorf("scan statistic: %w", err)
		}
		stats = append(stats, stat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("statistics rows error: %w", err)
	}

	return stats, nil
}

// Upsert inserts or refreshes a statistic by name. Operator-managed flags
// (visibility, poi_enabled, active, polarity) survive re-ingestion.
func (r *statisticRepository) Upsert(ctx context.Context, stat *domain.Statistic) (*domain.Statistic, error) {
	query := `
		INSERT INTO statistics (
			id, name, category, value_kind, higher_is_better,
			visibility, visibility_override, active, poi_enabled
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (name) DO UPDATE SET
			category   = EXCLUDED.category,
			value_kind = EXCLUDED.value_kind,
			updated_at = now()
		RETURNING ` + statisticColumns

	row := r.db.QueryRowContext(ctx, query,
		stat.ID, stat.Name, stat.Category, stat.ValueKind, stat.HigherIsBetter,
		stat.Visibility, stat.VisibilityOverride, stat.Active, stat.POIEnabled,
	)

	saved, err := scanStatistic(row)
	if err != nil {
		r.logger.Error("Failed to upsert statistic", zap.String("name", stat.Name), zap.Error(err))
		return nil, fmt.Errorf("upsert statistic %q: %w", stat.Name, err)
	}

	return saved, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStatistic(row rowScanner) (*domain.Statistic, error) {
	var s domain.Statistic
	err := row.Scan(
		&s.ID, &s.Name, &s.Category, &s.ValueKind, &s.HigherIsBetter,
		&s.Visibility, &s.VisibilityOverride, &s.Active, &s.POIEnabled,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
