package usecase

import (
	"context"
	"fmt"

	"github.com/census-statistics-service/internal/domain"
	"github.com/census-statistics-service/internal/domain/repository"
	"github.com/census-statistics-service/internal/usecase/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IngestUseCase runs the aggregation pipeline: resolve table metadata,
// fetch tabular records at both granularities, build area-value maps and
// merge-write them into the store.
type IngestUseCase struct {
	censusRepo      repository.CensusRepository
	statisticRepo   repository.StatisticRepository
	aggregateRepo   repository.AggregateRepository
	areaRepo        repository.AreaRepository
	cacheRepo       repository.CacheRepository
	stateFIPS       string
	maxTxOperations int
	logger          *zap.Logger
}

// NewIngestUseCase creates a new IngestUseCase.
func NewIngestUseCase(
	censusRepo repository.CensusRepository,
	statisticRepo repository.StatisticRepository,
	aggregateRepo repository.AggregateRepository,
	areaRepo repository.AreaRepository,
	cacheRepo repository.CacheRepository,
	stateFIPS string,
	maxTxOperations int,
	logger *zap.Logger,
) *IngestUseCase {
	return &IngestUseCase{
		censusRepo:      censusRepo,
		statisticRepo:   statisticRepo,
		aggregateRepo:   aggregateRepo,
		areaRepo:        areaRepo,
		cacheRepo:       cacheRepo,
		stateFIPS:       stateFIPS,
		maxTxOperations: maxTxOperations,
		logger:          logger,
	}
}

// Run ingests one table group. Each resolved estimate variable becomes (or
// refreshes) a registered statistic with its own aggregate rows. Re-running
// with identical input is a no-op beyond timestamps: rows are merged by
// natural key, never duplicated.
func (uc *IngestUseCase) Run(ctx context.Context, req dto.IngestRequest) (*dto.IngestResult, error) {
	meta, err := uc.censusRepo.FetchGroupMetadata(ctx, req.Year, req.Dataset, req.Group)
	if err != nil {
		return nil, fmt.Errorf("fetch group metadata: %w", err)
	}

	pairs, err := domain.ResolveVariables(meta, req.Variables, req.IncludeMargins)
	if err != nil {
		return nil, fmt.Errorf("resolve variables: %w", err)
	}

	uc.logger.Info("Resolved variables for ingestion",
		zap.String("group", req.Group),
		zap.Int("variable_count", len(pairs)))

	// Area metadata is loaded regardless of the variable set; downstream
	// callers need the universe even for a degenerate run.
	areas, err := uc.areaRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load areas: %w", err)
	}
	areaIndex := domain.BuildAreaIndex(areas, uc.stateFIPS)
	areaMeta := domain.AreaMetaFromIndex(areaIndex, areas, uc.stateFIPS)

	varNames := variableNames(pairs)
	zctaRecords, err := uc.censusRepo.FetchZCTARecords(ctx, req.Year, req.Dataset, varNames)
	if err != nil {
		return nil, fmt.Errorf("fetch zcta records: %w", err)
	}
	countyRecords, err := uc.censusRepo.FetchCountyRecords(ctx, req.Year, req.Dataset, varNames)
	if err != nil {
		return nil, fmt.Errorf("fetch county records: %w", err)
	}

	result := &dto.IngestResult{
		Group:    req.Group,
		DataDate: req.DataDate,
	}

	for _, pair := range pairs {
		ingested, err := uc.ingestVariable(ctx, req, meta, pair, zctaRecords, countyRecords, areaMeta)
		if err != nil {
			return nil, fmt.Errorf("ingest variable %s: %w", pair.Estimate, err)
		}
		result.Statistics = append(result.Statistics, *ingested)
		result.RowsWritten += ingested.RowsWritten
	}

	if err := uc.cacheRepo.InvalidateStatistics(ctx); err != nil {
		uc.logger.Warn("Failed to invalidate statistics cache", zap.Error(err))
	}

	uc.logger.Info("Ingestion finished",
		zap.String("group", req.Group),
		zap.Int("statistics", len(result.Statistics)),
		zap.Int("rows_written", result.RowsWritten))

	return result, nil
}

func (uc *IngestUseCase) ingestVariable(
	ctx context.Context,
	req dto.IngestRequest,
	meta *domain.GroupMetadata,
	pair domain.VariablePair,
	zctaRecords, countyRecords []domain.CensusRecord,
	areaMeta *domain.AreaMeta,
) (*dto.IngestedStatistic, error) {
	varMeta := meta.Variables[pair.Estimate]

	category := req.Category
	if category == "" {
		category = meta.Concept
	}

	stat, err := uc.statisticRepo.Upsert(ctx, &domain.Statistic{
		ID:             uuid.NewString(),
		Name:           domain.DeriveStatName(pair.Estimate, varMeta.Label, meta.Concept),
		Category:       category,
		ValueKind:      domain.DeriveValueKind(varMeta.Label, varMeta.PredicateType),
		HigherIsBetter: true,
		Active:         true,
		POIEnabled:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert statistic: %w", err)
	}

	maps := domain.BuildDataMaps(pair, zctaRecords, countyRecords, areaMeta, uc.stateFIPS)
	payloads := uc.buildPayloads(stat.ID, req.DataDate, maps)

	// Snapshot the existing rows once, before any batch is flushed, so the
	// batches of this call cannot race each other.
	existing, err := uc.aggregateRepo.ListByStatistic(ctx, stat.ID)
	if err != nil {
		return nil, fmt.Errorf("load existing rows: %w", err)
	}

	byKey := make(map[string]*domain.AggregateRow, len(existing))
	for _, row := range existing {
		byKey[row.NaturalKey()] = row
	}

	toWrite := make([]*domain.AggregateRow, 0, len(payloads))
	for _, payload := range payloads {
		if row, ok := byKey[payload.NaturalKey()]; ok {
			row.Merge(payload.Data, payload.Margins)
			toWrite = append(toWrite, row)
			continue
		}
		toWrite = append(toWrite, payload)
	}

	if err := uc.aggregateRepo.UpsertBatch(ctx, toWrite, uc.maxTxOperations); err != nil {
		return nil, fmt.Errorf("write aggregate rows for statistic %s: %w", stat.ID, err)
	}

	return &dto.IngestedStatistic{
		StatisticID: stat.ID,
		Name:        stat.Name,
		Variable:    pair.Estimate,
		RowsWritten: len(toWrite),
		ZCTACount:   len(maps.ZCTAValues),
		CountyCount: len(maps.CountyValues),
	}, nil
}

// buildPayloads turns one variable's data maps into logical rows: a
// statewide payload per boundary plus one ZCTA payload per county bucket.
func (uc *IngestUseCase) buildPayloads(statisticID, dataDate string, maps *domain.DataMaps) []*domain.AggregateRow {
	var payloads []*domain.AggregateRow

	newRow := func(boundary domain.Boundary, parentRegion string, data, margins map[string]float64) {
		if len(data) == 0 {
			return
		}
		payloads = append(payloads, &domain.AggregateRow{
			ID:           uuid.NewString(),
			StatisticID:  statisticID,
			SeriesName:   domain.DefaultSeriesName,
			ParentRegion: parentRegion,
			Boundary:     boundary,
			DataDate:     dataDate,
			Data:         data,
			Margins:      margins,
		})
	}

	newRow(domain.BoundaryZCTA, domain.StatewideLabel, maps.ZCTAValues, maps.ZCTAMargins)
	newRow(domain.BoundaryCounty, domain.StatewideLabel, maps.CountyValues, maps.CountyMargins)

	for bucket, values := range maps.CountyBuckets {
		_, label := domain.SplitBucketKey(bucket)
		newRow(domain.BoundaryZCTA, label, values, maps.CountyBucketMargins[bucket])
	}

	return payloads
}

func variableNames(pairs []domain.VariablePair) []string {
	var names []string
	for _, pair := range pairs {
		names = append(names, pair.Estimate)
		if pair.Margin != "" {
			names = append(names, pair.Margin)
		}
	}
	return names
}
