package usecase_test

import (
	"context"
	"time"

	"github.com/census-statistics-service/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockStatisticRepository is a mock of StatisticRepository
type MockStatisticRepository struct {
	mock.Mock
}

func (m *MockStatisticRepository) GetByID(ctx context.Context, id string) (*domain.Statistic, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Statistic), args.Error(1)
}

func (m *MockStatisticRepository) GetByName(ctx context.Context, name string) (*domain.Statistic, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Statistic), args.Error(1)
}

func (m *MockStatisticRepository) List(ctx context.Context) ([]*domain.Statistic, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Statistic), args.Error(1)
}

func (m *MockStatisticRepository) Upsert(ctx context.Context, stat *domain.Statistic) (*domain.Statistic, error) {
	args := m.Called(ctx, stat)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Statistic), args.Error(1)
}

// MockAggregateRepository is a mock of AggregateRepository
type MockAggregateRepository struct {
	mock.Mock
}

func (m *MockAggregateRepository) ListByStatistic(ctx context.Context, statisticID string) ([]*domain.AggregateRow, error) {
	args := m.Called(ctx, statisticID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AggregateRow), args.Error(1)
}

func (m *MockAggregateRepository) ListSummaries(ctx context.Context, statisticID string, boundary domain.Boundary) ([]domain.AggregateSummary, error) {
	args := m.Called(ctx, statisticID, boundary)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AggregateSummary), args.Error(1)
}

func (m *MockAggregateRepository) FetchRows(ctx context.Context, statisticID string, boundary domain.Boundary, summaries []domain.AggregateSummary) ([]*domain.AggregateRow, error) {
	args := m.Called(ctx, statisticID, boundary, summaries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AggregateRow), args.Error(1)
}

func (m *MockAggregateRepository) UpsertBatch(ctx context.Context, rows []*domain.AggregateRow, maxTxOperations int) error {
	args := m.Called(ctx, rows, maxTxOperations)
	return args.Error(0)
}

// MockAreaRepository is a mock of AreaRepository
type MockAreaRepository struct {
	mock.Mock
}

func (m *MockAreaRepository) ListActive(ctx context.Context) ([]*domain.Area, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Area), args.Error(1)
}

// MockPOIRepository is a mock of POIRepository
type MockPOIRepository struct {
	mock.Mock
}

func (m *MockPOIRepository) ListByStatistic(ctx context.Context, statisticID string) ([]*domain.PointOfInterest, error) {
	args := m.Called(ctx, statisticID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PointOfInterest), args.Error(1)
}

func (m *MockPOIRepository) ListActiveByStatistic(ctx context.Context, statisticID string) ([]*domain.PointOfInterest, error) {
	args := m.Called(ctx, statisticID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PointOfInterest), args.Error(1)
}

func (m *MockPOIRepository) UpsertBatch(ctx context.Context, records []*domain.PointOfInterest, maxTxOperations int) error {
	args := m.Called(ctx, records, maxTxOperations)
	return args.Error(0)
}

func (m *MockPOIRepository) DeactivateBatch(ctx context.Context, ids []string, maxTxOperations int) error {
	args := m.Called(ctx, ids, maxTxOperations)
	return args.Error(0)
}

// MockCensusRepository is a mock of CensusRepository
type MockCensusRepository struct {
	mock.Mock
}

func (m *MockCensusRepository) FetchGroupMetadata(ctx context.Context, year int, dataset, group string) (*domain.GroupMetadata, error) {
	args := m.Called(ctx, year, dataset, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GroupMetadata), args.Error(1)
}

func (m *MockCensusRepository) FetchZCTARecords(ctx context.Context, year int, dataset string, variables []string) ([]domain.CensusRecord, error) {
	args := m.Called(ctx, year, dataset, variables)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CensusRecord), args.Error(1)
}

func (m *MockCensusRepository) FetchCountyRecords(ctx context.Context, year int, dataset string, variables []string) ([]domain.CensusRecord, error) {
	args := m.Called(ctx, year, dataset, variables)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CensusRecord), args.Error(1)
}

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) GetStatistics(ctx context.Context) ([]*domain.Statistic, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Statistic), args.Error(1)
}

func (m *MockCacheRepository) SetStatistics(ctx context.Context, stats []*domain.Statistic, ttl time.Duration) error {
	args := m.Called(ctx, stats, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) InvalidateStatistics(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheRepository) GetPOIs(ctx context.Context, statisticID string) ([]*domain.PointOfInterest, error) {
	args := m.Called(ctx, statisticID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PointOfInterest), args.Error(1)
}

func (m *MockCacheRepository) SetPOIs(ctx context.Context, statisticID string, pois []*domain.PointOfInterest, ttl time.Duration) error {
	args := m.Called(ctx, statisticID, pois, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) InvalidatePOIs(ctx context.Context, statisticID string) error {
	args := m.Called(ctx, statisticID)
	return args.Error(0)
}

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) ConsumeBatch(ctx context.Context, stream, group, consumer string, count int) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}
