package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/census-statistics-service/internal/domain"
	"github.com/census-statistics-service/internal/pkg/errors"
	"github.com/census-statistics-service/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStatisticUC(stat *MockStatisticRepository, poi *MockPOIRepository, cache *MockCacheRepository, stream *MockStreamRepository) *usecase.StatisticUseCase {
	return usecase.NewStatisticUseCase(stat, poi, cache, stream, time.Hour, 15*time.Minute, zap.NewNop())
}

func TestStatisticUseCase_List(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit skips the database", func(t *testing.T) {
		mockStat := &MockStatisticRepository{}
		mockCache := &MockCacheRepository{}

		cached := []*domain.Statistic{{ID: testStatID, Name: "Total Population"}}
		mockCache.On("GetStatistics", ctx).Return(cached, nil)

		uc := newStatisticUC(mockStat, &MockPOIRepository{}, mockCache, &MockStreamRepository{})

		stats, err := uc.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, cached, stats)
		mockStat.AssertNotCalled(t, "List", mock.Anything)
	})

	t.Run("cache miss reads and repopulates", func(t *testing.T) {
		mockStat := &MockStatisticRepository{}
		mockCache := &MockCacheRepository{}

		stored := []*domain.Statistic{{ID: testStatID}}
		mockCache.On("GetStatistics", ctx).Return(nil, nil)
		mockStat.On("List", ctx).Return(stored, nil)
		mockCache.On("SetStatistics", ctx, stored, time.Hour).Return(nil)

		uc := newStatisticUC(mockStat, &MockPOIRepository{}, mockCache, &MockStreamRepository{})

		stats, err := uc.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, stored, stats)
		mockCache.AssertExpectations(t)
	})
}

func TestStatisticUseCase_ListPOIs(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown statistic fails fast", func(t *testing.T) {
		mockStat := &MockStatisticRepository{}
		mockStat.On("GetByID", ctx, testStatID).Return(nil, errors.ErrStatisticNotFound)

		uc := newStatisticUC(mockStat, &MockPOIRepository{}, &MockCacheRepository{}, &MockStreamRepository{})

		_, err := uc.ListPOIs(ctx, testStatID)
		assert.Equal(t, errors.ErrStatisticNotFound, err)
	})

	t.Run("cache miss loads active records", func(t *testing.T) {
		mockStat := &MockStatisticRepository{}
		mockPOI := &MockPOIRepository{}
		mockCache := &MockCacheRepository{}

		pois := []*domain.PointOfInterest{{ID: "poi-1", StatisticID: testStatID, Active: true}}

		mockStat.On("GetByID", ctx, testStatID).Return(&domain.Statistic{ID: testStatID, Active: true}, nil)
		mockCache.On("GetPOIs", ctx, testStatID).Return(nil, nil)
		mockPOI.On("ListActiveByStatistic", ctx, testStatID).Return(pois, nil)
		mockCache.On("SetPOIs", ctx, testStatID, pois, 15*time.Minute).Return(nil)

		uc := newStatisticUC(mockStat, mockPOI, mockCache, &MockStreamRepository{})

		got, err := uc.ListPOIs(ctx, testStatID)
		require.NoError(t, err)
		assert.Equal(t, pois, got)
	})
}

func TestStatisticUseCase_EnqueueRecompute(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes the event for a known statistic", func(t *testing.T) {
		mockStat := &MockStatisticRepository{}
		mockStream := &MockStreamRepository{}

		mockStat.On("GetByID", ctx, testStatID).Return(&domain.Statistic{ID: testStatID}, nil)
		mockStream.On("PublishToStream", ctx, domain.StreamPOIRecompute, domain.POIRecomputeEvent{
			StatisticID: testStatID,
			Force:       true,
		}).Return(nil)

		uc := newStatisticUC(mockStat, &MockPOIRepository{}, &MockCacheRepository{}, mockStream)

		err := uc.EnqueueRecompute(ctx, testStatID, true)
		require.NoError(t, err)
		mockStream.AssertExpectations(t)
	})

	t.Run("unknown statistic publishes nothing", func(t *testing.T) {
		mockStat := &MockStatisticRepository{}
		mockStream := &MockStreamRepository{}

		mockStat.On("GetByID", ctx, testStatID).Return(nil, errors.ErrStatisticNotFound)

		uc := newStatisticUC(mockStat, &MockPOIRepository{}, &MockCacheRepository{}, mockStream)

		err := uc.EnqueueRecompute(ctx, testStatID, false)
		require.Error(t, err)
		mockStream.AssertNotCalled(t, "PublishToStream", mock.Anything, mock.Anything, mock.Anything)
	})
}
