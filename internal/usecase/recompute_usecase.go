package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/census-statistics-service/internal/domain"
	"github.com/census-statistics-service/internal/domain/repository"
	"github.com/census-statistics-service/internal/usecase/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RecomputeUseCase derives point-of-interest records from already-ingested
// aggregates and reconciles them with the stored set. The whole run is safe
// to repeat arbitrarily often: records are upserted by natural key and
// stale ones flipped inactive.
type RecomputeUseCase struct {
	statisticRepo   repository.StatisticRepository
	aggregateRepo   repository.AggregateRepository
	areaRepo        repository.AreaRepository
	poiRepo         repository.POIRepository
	cacheRepo       repository.CacheRepository
	stateFIPS       string
	maxTxOperations int
	logger          *zap.Logger
}

// NewRecomputeUseCase creates a new RecomputeUseCase.
func NewRecomputeUseCase(
	statisticRepo repository.StatisticRepository,
	aggregateRepo repository.AggregateRepository,
	areaRepo repository.AreaRepository,
	poiRepo repository.POIRepository,
	cacheRepo repository.CacheRepository,
	stateFIPS string,
	maxTxOperations int,
	logger *zap.Logger,
) *RecomputeUseCase {
	return &RecomputeUseCase{
		statisticRepo:   statisticRepo,
		aggregateRepo:   aggregateRepo,
		areaRepo:        areaRepo,
		poiRepo:         poiRepo,
		cacheRepo:       cacheRepo,
		stateFIPS:       stateFIPS,
		maxTxOperations: maxTxOperations,
		logger:          logger,
	}
}

// boundaryData is the merged value map of one granularity plus the most
// recent data date seen among its rows.
type boundaryData struct {
	values   map[string]float64
	dataDate string
}

// Run recomputes the POIs of one statistic. A statistic that is not
// publicly visible, or whose POI computation is disabled (unless forced),
// degrades to deactivate-only mode.
func (uc *RecomputeUseCase) Run(ctx context.Context, statisticID string, force bool) (*dto.RecomputeResult, error) {
	stat, err := uc.statisticRepo.GetByID(ctx, statisticID)
	if err != nil {
		return nil, fmt.Errorf("load statistic %s: %w", statisticID, err)
	}

	if !stat.IsPublic() {
		return uc.deactivateOnly(ctx, stat, fmt.Sprintf("statistic visibility is %q", stat.EffectiveVisibility()))
	}
	if !stat.POIEnabled && !force {
		return uc.deactivateOnly(ctx, stat, "poi computation is disabled for this statistic")
	}

	return uc.recompute(ctx, stat)
}

// deactivateOnly computes nothing and flips every active record of the
// statistic inactive.
func (uc *RecomputeUseCase) deactivateOnly(ctx context.Context, stat *domain.Statistic, reason string) (*dto.RecomputeResult, error) {
	active, err := uc.poiRepo.ListActiveByStatistic(ctx, stat.ID)
	if err != nil {
		return nil, fmt.Errorf("load active POIs for %s: %w", stat.ID, err)
	}

	ids := make([]string, 0, len(active))
	for _, p := range active {
		ids = append(ids, p.ID)
	}

	if err := uc.poiRepo.DeactivateBatch(ctx, ids, uc.maxTxOperations); err != nil {
		return nil, fmt.Errorf("deactivate POIs for %s: %w", stat.ID, err)
	}

	uc.invalidatePOICache(ctx, stat.ID)

	uc.logger.Info("POI recompute degraded to deactivate-only",
		zap.String("statistic_id", stat.ID),
		zap.String("reason", reason),
		zap.Int("deactivated", len(ids)))

	return &dto.RecomputeResult{
		StatisticID:    stat.ID,
		Deactivated:    len(ids),
		DeactivateOnly: true,
		Reason:         reason,
	}, nil
}

func (uc *RecomputeUseCase) recompute(ctx context.Context, stat *domain.Statistic) (*dto.RecomputeResult, error) {
	areas, err := uc.areaRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load areas: %w", err)
	}

	areaIndex := domain.BuildAreaIndex(areas, uc.stateFIPS)
	areaNames := make(map[string]string, len(areas))
	for _, area := range areas {
		if area != nil && area.Code != "" {
			areaNames[area.Code] = area.Name
		}
	}

	memberships := make([]*domain.ScopeMembership, 0, len(domain.Scopes))
	for _, scope := range domain.Scopes {
		memberships = append(memberships, domain.BuildScopeMembership(scope, areaIndex))
	}

	// The two granularity fetches touch disjoint rows and run concurrently.
	boundaries := []domain.Boundary{domain.BoundaryZCTA, domain.BoundaryCounty}
	fetched := make([]*boundaryData, len(boundaries))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, boundary := range boundaries {
		i, boundary := i, boundary
		eg.Go(func() error {
			bd, err := uc.fetchBoundaryData(egCtx, stat.ID, boundary, memberships)
			if err != nil {
				return err
			}
			fetched[i] = bd
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	data := make(map[domain.Boundary]*boundaryData, len(boundaries))
	for i, boundary := range boundaries {
		data[boundary] = fetched[i]
	}

	runID := uuid.NewString()
	now := time.Now().UTC()

	var computed []*domain.PointOfInterest
	considered := 0

	for _, membership := range memberships {
		for _, boundary := range boundaries {
			bd := data[boundary]
			members := membership.MembersFor(boundary)
			considered += countCandidates(bd.values, members)

			for _, ext := range domain.ComputeExtrema(bd.values, members) {
				computed = append(computed, &domain.PointOfInterest{
					ID:             uuid.NewString(),
					StatisticID:    stat.ID,
					Scope:          membership.Scope,
					Boundary:       boundary,
					Kind:           ext.Kind,
					AreaCode:       ext.AreaCode,
					AreaName:       resolveAreaName(ext.AreaCode, boundary, areaNames, areaIndex),
					Value:          ext.Value,
					HigherIsBetter: stat.HigherIsBetter,
					Active:         true,
					ComputedAt:     now,
					DataDate:       bd.dataDate,
					RunID:          runID,
				})
			}
		}
	}

	existing, err := uc.poiRepo.ListByStatistic(ctx, stat.ID)
	if err != nil {
		return nil, fmt.Errorf("load existing POIs for %s: %w", stat.ID, err)
	}

	if err := uc.poiRepo.UpsertBatch(ctx, computed, uc.maxTxOperations); err != nil {
		return nil, fmt.Errorf("upsert POIs for %s: %w", stat.ID, err)
	}

	computedKeys := make(map[string]struct{}, len(computed))
	for _, p := range computed {
		computedKeys[p.NaturalKey()] = struct{}{}
	}

	var staleIDs []string
	for _, p := range existing {
		if !p.Active {
			continue
		}
		if _, ok := computedKeys[p.NaturalKey()]; !ok {
			staleIDs = append(staleIDs, p.ID)
		}
	}

	if err := uc.poiRepo.DeactivateBatch(ctx, staleIDs, uc.maxTxOperations); err != nil {
		return nil, fmt.Errorf("deactivate stale POIs for %s: %w", stat.ID, err)
	}

	uc.invalidatePOICache(ctx, stat.ID)

	uc.logger.Info("POI recompute finished",
		zap.String("statistic_id", stat.ID),
		zap.String("run_id", runID),
		zap.Int("upserted", len(computed)),
		zap.Int("deactivated", len(staleIDs)),
		zap.Int("considered", considered))

	return &dto.RecomputeResult{
		StatisticID: stat.ID,
		RunID:       runID,
		Upserted:    len(computed),
		Deactivated: len(staleIDs),
		Considered:  considered,
	}, nil
}

// fetchBoundaryData loads the aggregate rows one granularity needs across
// all scopes in a single bulk query, then flattens them into one area-value
// map where the most recent date wins per area.
func (uc *RecomputeUseCase) fetchBoundaryData(
	ctx context.Context,
	statisticID string,
	boundary domain.Boundary,
	memberships []*domain.ScopeMembership,
) (*boundaryData, error) {
	summaries, err := uc.aggregateRepo.ListSummaries(ctx, statisticID, boundary)
	if err != nil {
		return nil, fmt.Errorf("list %s summaries: %w", boundary, err)
	}

	var needed []domain.AggregateSummary
	for _, s := range summaries {
		for _, m := range memberships {
			if m.MatchesRegionLabel(s.ParentRegion) {
				needed = append(needed, s)
				break
			}
		}
	}

	rows, err := uc.aggregateRepo.FetchRows(ctx, statisticID, boundary, needed)
	if err != nil {
		return nil, fmt.Errorf("fetch %s rows: %w", boundary, err)
	}

	bd := &boundaryData{values: domain.MergeRowValues(rows)}
	for _, row := range rows {
		if row.DataDate > bd.dataDate {
			bd.dataDate = row.DataDate
		}
	}

	return bd, nil
}

func (uc *RecomputeUseCase) invalidatePOICache(ctx context.Context, statisticID string) {
	if err := uc.cacheRepo.InvalidatePOIs(ctx, statisticID); err != nil {
		uc.logger.Warn("Failed to invalidate POI cache",
			zap.String("statistic_id", statisticID), zap.Error(err))
	}
}

func countCandidates(values map[string]float64, members map[string]struct{}) int {
	n := 0
	for code := range values {
		if _, ok := members[code]; ok {
			n++
		}
	}
	return n
}

func resolveAreaName(code string, boundary domain.Boundary, areaNames map[string]string, idx *domain.AreaIndex) string {
	if boundary == domain.BoundaryCounty {
		if label, ok := idx.CountyLabels[code]; ok {
			return label
		}
	}
	if name, ok := areaNames[code]; ok {
		return name
	}
	return code
}
