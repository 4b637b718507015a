package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/census-statistics-service/internal/domain"
	"github.com/census-statistics-service/internal/domain/repository"
	"go.uber.org/zap"
)

// StatisticUseCase serves the read side: cached statistic listings, cached
// POI listings and recompute enqueueing.
type StatisticUseCase struct {
	statisticRepo repository.StatisticRepository
	poiRepo       repository.POIRepository
	cacheRepo     repository.CacheRepository
	streamRepo    repository.StreamRepository
	statisticsTTL time.Duration
	poiTTL        time.Duration
	logger        *zap.Logger
}

// NewStatisticUseCase creates a new StatisticUseCase.
func NewStatisticUseCase(
	statisticRepo repository.StatisticRepository,
	poiRepo repository.POIRepository,
	cacheRepo repository.CacheRepository,
	streamRepo repository.StreamRepository,
	statisticsTTL time.Duration,
	poiTTL time.Duration,
	logger *zap.Logger,
) *StatisticUseCase {
	return &StatisticUseCase{
		statisticRepo: statisticRepo,
		poiRepo:       poiRepo,
		cacheRepo:     cacheRepo,
		streamRepo:    streamRepo,
		statisticsTTL: statisticsTTL,
		poiTTL:        poiTTL,
		logger:        logger,
	}
}

// List returns every stored statistic, cache first.
func (uc *StatisticUseCase) List(ctx context.Context) ([]*domain.Statistic, error) {
	cached, err := uc.cacheRepo.GetStatistics(ctx)
	if err != nil {
		uc.logger.Warn("Failed to read statistics cache", zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	stats, err := uc.statisticRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list statistics: %w", err)
	}

	if err := uc.cacheRepo.SetStatistics(ctx, stats, uc.statisticsTTL); err != nil {
		uc.logger.Warn("Failed to cache statistics", zap.Error(err))
	}

	return stats, nil
}

// GetByID returns one statistic.
func (uc *StatisticUseCase) GetByID(ctx context.Context, id string) (*domain.Statistic, error) {
	return uc.statisticRepo.GetByID(ctx, id)
}

// ListPOIs returns the active POIs of a statistic, cache first.
func (uc *StatisticUseCase) ListPOIs(ctx context.Context, statisticID string) ([]*domain.PointOfInterest, error) {
	if _, err := uc.statisticRepo.GetByID(ctx, statisticID); err != nil {
		return nil, err
	}

	cached, err := uc.cacheRepo.GetPOIs(ctx, statisticID)
	if err != nil {
		uc.logger.Warn("Failed to read POI cache",
			zap.String("statistic_id", statisticID), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	pois, err := uc.poiRepo.ListActiveByStatistic(ctx, statisticID)
	if err != nil {
		return nil, fmt.Errorf("list POIs for %s: %w", statisticID, err)
	}

	if err := uc.cacheRepo.SetPOIs(ctx, statisticID, pois, uc.poiTTL); err != nil {
		uc.logger.Warn("Failed to cache POIs",
			zap.String("statistic_id", statisticID), zap.Error(err))
	}

	return pois, nil
}

// EnqueueRecompute publishes an asynchronous POI recompute job for a
// statistic. The statistic must exist; visibility rules apply when the job
// actually runs.
func (uc *StatisticUseCase) EnqueueRecompute(ctx context.Context, statisticID string, force bool) error {
	if _, err := uc.statisticRepo.GetByID(ctx, statisticID); err != nil {
		return err
	}

	event := domain.POIRecomputeEvent{
		StatisticID: statisticID,
		Force:       force,
	}
	if err := uc.streamRepo.PublishToStream(ctx, domain.StreamPOIRecompute, event); err != nil {
		return fmt.Errorf("publish recompute event: %w", err)
	}

	uc.logger.Info("POI recompute enqueued",
		zap.String("statistic_id", statisticID), zap.Bool("force", force))
	return nil
}
