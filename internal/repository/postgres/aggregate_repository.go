package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/census-statistics-service/internal/domain"
	"github.com/census-statistics-service/internal/domain/repository"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type aggregateRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAggregateRepository creates the Postgres aggregate row store.
func NewAggregateRepository(db *DB, logger *zap.Logger) repository.AggregateRepository {
	return &aggregateRepository{
		db:     db,
		logger: logger,
	}
}

const aggregateColumns = `
	id, statistic_id, series_name, parent_region, boundary, data_date,
	data, margins, created_at, updated_at
`

func (r *aggregateRepository) ListByStatistic(ctx context.Context, statisticID string) ([]*domain.AggregateRow, error) {
	query := `
		SELECT ` + aggregateColumns + `
		FROM aggregate_rows
		WHERE statistic_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, statisticID)
	if err != nil {
		r.logger.Error("Failed to list aggregate rows",
			zap.String("statistic_id", statisticID), zap.Error(err))
		return nil, fmt.Errorf("list aggregate rows for %s: %w", statisticID, err)
	}
	defer rows.Close()

	return scanAggregateRows(rows)
}

func (r *aggregateRepository) ListSummaries(ctx context.Context, statisticID string, boundary domain.Boundary) ([]domain.AggregateSummary, error) {
	query := `
		SELECT DISTINCT parent_region, data_date
		FROM aggregate_rows
		WHERE statistic_id = $1 AND boundary = $2
		ORDER BY parent_region, data_date
	`

	rows, err := r.db.QueryContext(ctx, query, statisticID, string(boundary))
	if err != nil {
		r.logger.Error("Failed to list aggregate summaries",
			zap.String("statistic_id", statisticID),
			zap.String("boundary", string(boundary)),
			zap.Error(err))
		return nil, fmt.Errorf("list summaries for %s/%s: %w", statisticID, boundary, err)
	}
	defer rows.Close()

	var summaries []domain.AggregateSummary
	for rows.Next() {
		var s domain.AggregateSummary
		if err := rows.Scan(&s.ParentRegion, &s.DataDate); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("summary rows error: %w", err)
	}

	return summaries, nil
}

// FetchRows bulk-loads the rows matching the given (region, date) pairs in
// a single query, so the recompute path issues exactly one fetch per
// boundary no matter how many scopes need data.
func (r *aggregateRepository) FetchRows(ctx context.Context, statisticID string, boundary domain.Boundary, summaries []domain.AggregateSummary) ([]*domain.AggregateRow, error) {
	if len(summaries) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(summaries))
	for _, s := range summaries {
		keys = append(keys, s.ParentRegion+"::"+s.DataDate)
	}

	query := `
		SELECT ` + aggregateColumns + `
		FROM aggregate_rows
		WHERE statistic_id = $1
		  AND boundary = $2
		  AND parent_region || '::' || data_date = ANY($3)
	`

	rows, err := r.db.QueryContext(ctx, query, statisticID, string(boundary), pq.Array(keys))
	if err != nil {
		r.logger.Error("Failed to fetch aggregate rows",
			zap.String("statistic_id", statisticID),
			zap.String("boundary", string(boundary)),
			zap.Int("key_count", len(keys)),
			zap.Error(err))
		return nil, fmt.Errorf("fetch aggregate rows for %s/%s: %w", statisticID, boundary, err)
	}
	defer rows.Close()

	return scanAggregateRows(rows)
}

// UpsertBatch writes rows in transactions capped at maxTxOperations
// statements. Batches flush eagerly once full and once more at the end; a
// failed batch aborts the remaining ones without rolling back flushed work.
func (r *aggregateRepository) UpsertBatch(ctx context.Context, rows []*domain.AggregateRow, maxTxOperations int) error {
	if maxTxOperations <= 0 {
		maxTxOperations = len(rows)
	}

	for start := 0; start < len(rows); start += maxTxOperations {
		end := start + maxTxOperations
		if end > len(rows) {
			end = len(rows)
		}

		if err := r.upsertChunk(ctx, rows[start:end]); err != nil {
			return fmt.Errorf("upsert aggregate batch [%d:%d]: %w", start, end, err)
		}
	}

	return nil
}

func (r *aggregateRepository) upsertChunk(ctx context.Context, chunk []*domain.AggregateRow) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO aggregate_rows (
			id, statistic_id, series_name, parent_region, boundary, data_date,
			data, margins
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (statistic_id, boundary, parent_region, data_date, series_name)
		DO UPDATE SET
			data       = EXCLUDED.data,
			margins    = EXCLUDED.margins,
			updated_at = now()
	`

	for _, row := range chunk {
		dataJSON, err := json.Marshal(row.Data)
		if err != nil {
			return fmt.Errorf("marshal data for %s: %w", row.NaturalKey(), err)
		}

		marginsJSON := []byte("{}")
		if len(row.Margins) > 0 {
			marginsJSON, err = json.Marshal(row.Margins)
			if err != nil {
				return fmt.Errorf("marshal margins for %s: %w", row.NaturalKey(), err)
			}
		}

		seriesName := row.SeriesName
		if seriesName == "" {
			seriesName = domain.DefaultSeriesName
		}

		_, err = tx.ExecContext(ctx, query,
			row.ID, row.StatisticID, seriesName, row.ParentRegion,
			string(row.Boundary), row.DataDate, dataJSON, marginsJSON,
		)
		if err != nil {
			r.logger.Error("Failed to upsert aggregate row",
				zap.String("statistic_id", row.StatisticID),
				zap.String("key", row.NaturalKey()),
				zap.Error(err))
			return fmt.Errorf("upsert row %s: %w", row.NaturalKey(), err)
		}
	}

	return tx.Commit()
}

func scanAggregateRows(rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}) ([]*domain.AggregateRow, error) {
	var result []*domain.AggregateRow

	for rows.Next() {
		var (
			row         domain.AggregateRow
			dataJSON    []byte
			marginsJSON []byte
		)

		err := rows.Scan(
			&row.ID, &row.StatisticID, &row.SeriesName, &row.ParentRegion,
			&row.Boundary, &row.DataDate, &dataJSON, &marginsJSON,
			&row.CreatedAt, &row.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan aggregate row: %w", err)
		}

		if len(dataJSON) > 0 {
			if err := json.Unmarshal(dataJSON, &row.Data); err != nil {
				return nil, fmt.Errorf("unmarshal data for %s: %w", row.ID, err)
			}
		}
		if len(marginsJSON) > 0 {
			if err := json.Unmarshal(marginsJSON, &row.Margins); err != nil {
				return nil, fmt.Errorf("unmarshal margins for %s: %w", row.ID, err)
			}
		}

		result = append(result, &row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("aggregate rows error: %w", err)
	}

	return result, nil
}
