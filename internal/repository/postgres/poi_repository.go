package postgres

import (
	"context"
	"fmt"

	"github.com/census-statistics-service/internal/domain"
	"github.com/census-statistics-service/internal/domain/repository"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type poiRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPOIRepository creates the Postgres point-of-interest store.
func NewPOIRepository(db *DB, logger *zap.Logger) repository.POIRepository {
	return &poiRepository{
		db:     db,
		logger: logger,
	}
}

const poiColumns = `
	id, statistic_id, scope, boundary, kind, area_code, area_name,
	value, higher_is_better, active, computed_at, data_date, run_id
`

func (r *poiRepository) ListByStatistic(ctx context.Context, statisticID string) ([]*domain.PointOfInterest, error) {
	query := `
		SELECT ` + poiColumns + `
		FROM points_of_interest
		WHERE statistic_id = $1
		ORDER BY scope, boundary, kind
	`
	return r.list(ctx, query, statisticID)
}

func (r *poiRepository) ListActiveByStatistic(ctx context.Context, statisticID string) ([]*domain.PointOfInterest, error) {
	query := `
		SELECT ` + poiColumns + `
		FROM points_of_interest
		WHERE statistic_id = $1 AND active = true
		ORDER BY scope, boundary, kind
	`
	return r.list(ctx, query, statisticID)
}

func (r *poiRepository) list(ctx context.Context, query, statisticID string) ([]*domain.PointOfInterest, error) {
	rows, err := r.db.QueryContext(ctx, query, statisticID)
	if err != nil {
		r.logger.Error("Failed to list POI records",
			zap.String("statistic_id", statisticID), zap.Error(err))
		return nil, fmt.Errorf("list POI records for %s: %w", statisticID, err)
	}
	defer rows.Close()

	var records []*domain.PointOfInterest
	for rows.Next() {
		var p domain.PointOfInterest
		err := rows.Scan(
			&p.ID, &p.StatisticID, &p.Scope, &p.Boundary, &p.Kind,
			&p.AreaCode, &p.AreaName, &p.Value, &p.HigherIsBetter,
			&p.Active, &p.ComputedAt, &p.DataDate, &p.RunID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan POI record: %w", err)
		}
		records = append(records, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("POI rows error: %w", err)
	}

	return records, nil
}

// UpsertBatch writes records by their natural key in bounded transactions.
// The surrogate id of an existing row survives the update, so the key is
// the identity, not the id.
func (r *poiRepository) UpsertBatch(ctx context.Context, records []*domain.PointOfInterest, maxTxOperations int) error {
	if maxTxOperations <= 0 {
		maxTxOperations = len(records)
	}

	for start := 0; start < len(records); start += maxTxOperations {
		end := start + maxTxOperations
		if end > len(records) {
			end = len(records)
		}

		if err := r.upsertChunk(ctx, records[start:end]); err != nil {
			return fmt.Errorf("upsert POI batch [%d:%d]: %w", start, end, err)
		}
	}

	return nil
}

func (r *poiRepository) upsertChunk(ctx context.Context, chunk []*domain.PointOfInterest) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO points_of_interest (
			id, statistic_id, scope, boundary, kind, area_code, area_name,
			value, higher_is_better, active, computed_at, data_date, run_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (statistic_id, scope, boundary, kind)
		DO UPDATE SET
			area_code        = EXCLUDED.area_code,
			area_name        = EXCLUDED.area_name,
			value            = EXCLUDED.value,
			higher_is_better = EXCLUDED.higher_is_better,
			active           = EXCLUDED.active,
			computed_at      = EXCLUDED.computed_at,
			data_date        = EXCLUDED.data_date,
			run_id           = EXCLUDED.run_id
	`

	for _, p := range chunk {
		_, err = tx.ExecContext(ctx, query,
			p.ID, p.StatisticID, p.Scope, string(p.Boundary), string(p.Kind),
			p.AreaCode, p.AreaName, p.Value, p.HigherIsBetter,
			p.Active, p.ComputedAt, p.DataDate, p.RunID,
		)
		if err != nil {
			r.logger.Error("Failed to upsert POI record",
				zap.String("statistic_id", p.StatisticID),
				zap.String("key", p.NaturalKey()),
				zap.Error(err))
			return fmt.Errorf("upsert POI %s: %w", p.NaturalKey(), err)
		}
	}

	return tx.Commit()
}

// DeactivateBatch flips records inactive by id in bounded transactions.
// Records are never deleted; the last known state survives.
func (r *poiRepository) DeactivateBatch(ctx context.Context, ids []string, maxTxOperations int) error {
	if len(ids) == 0 {
		return nil
	}
	if maxTxOperations <= 0 {
		maxTxOperations = len(ids)
	}

	for start := 0; start < len(ids); start += maxTxOperations {
		end := start + maxTxOperations
		if end > len(ids) {
			end = len(ids)
		}

		query := `UPDATE points_of_interest SET active = false WHERE id = ANY($1)`
		if _, err := r.db.ExecContext(ctx, query, pq.Array(ids[start:end])); err != nil {
			r.logger.Error("Failed to deactivate POI records",
				zap.Int("count", end-start), zap.Error(err))
			return fmt.Errorf("deactivate POI batch [%d:%d]: %w", start, end, err)
		}
	}

	return nil
}
