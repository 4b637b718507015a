package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/census-statistics-service/internal/domain"
	"github.com/census-statistics-service/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	statisticsCacheKey = "statistics:list"
	poiCacheKeyPrefix  = "pois:statistic:"
)

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}

func (r *cacheRepository) GetStatistics(ctx context.Context) ([]*domain.Statistic, error) {
	data, err := r.Get(ctx, statisticsCacheKey)
	if err != nil || data == nil {
		return nil, err
	}

	var stats []*domain.Statistic
	if err := json.Unmarshal(data, &stats); err != nil {
		r.logger.Warn("Failed to unmarshal cached statistics", zap.Error(err))
		return nil, nil
	}

	return stats, nil
}

func (r *cacheRepository) SetStatistics(ctx context.Context, stats []*domain.Statistic, ttl time.Duration) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal statistics: %w", err)
	}
	return r.Set(ctx, statisticsCacheKey, data, ttl)
}

func (r *cacheRepository) InvalidateStatistics(ctx context.Context) error {
	return r.Delete(ctx, statisticsCacheKey)
}

func (r *cacheRepository) GetPOIs(ctx context.Context, statisticID string) ([]*domain.PointOfInterest, error) {
	data, err := r.Get(ctx, poiCacheKeyPrefix+statisticID)
	if err != nil || data == nil {
		return nil, err
	}

	var pois []*domain.PointOfInterest
	if err := json.Unmarshal(data, &pois); err != nil {
		r.logger.Warn("Failed to unmarshal cached POIs",
			zap.String("statistic_id", statisticID), zap.Error(err))
		return nil, nil
	}

	return pois, nil
}

func (r *cacheRepository) SetPOIs(ctx context.Context, statisticID string, pois []*domain.PointOfInterest, ttl time.Duration) error {
	data, err := json.Marshal(pois)
	if err != nil {
		return fmt.Errorf("marshal POIs: %w", err)
	}
	return r.Set(ctx, poiCacheKeyPrefix+statisticID, data, ttl)
}

func (r *cacheRepository) InvalidatePOIs(ctx context.Context, statisticID string) error {
	return r.Delete(ctx, poiCacheKeyPrefix+statisticID)
}
