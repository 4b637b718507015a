package usecase_test

import (
	"context"
	"testing"

	"github.com/census-statistics-service/internal/domain"
	"github.com/census-statistics-service/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testStatID = "11111111-1111-1111-1111-111111111111"
)

func publicStatistic() *domain.Statistic {
	return &domain.Statistic{
		ID:             testStatID,
		Name:           "Total Population",
		HigherIsBetter: true,
		Active:         true,
		POIEnabled:     true,
	}
}

func recomputeAreas() []*domain.Area {
	return []*domain.Area{
		{Code: "40143", Kind: domain.AreaKindCounty, Name: "Tulsa", Active: true},
		{Code: "40109", Kind: domain.AreaKindCounty, Name: "Oklahoma", Active: true},
		{Code: "74103", Kind: domain.AreaKindZCTA, Name: "74103", ParentCode: "40143", Active: true},
		{Code: "73102", Kind: domain.AreaKindZCTA, Name: "73102", ParentCode: "40109", Active: true},
	}
}

func newRecomputeUC(stat *MockStatisticRepository, agg *MockAggregateRepository, area *MockAreaRepository, poi *MockPOIRepository, cache *MockCacheRepository) *usecase.RecomputeUseCase {
	return usecase.NewRecomputeUseCase(stat, agg, area, poi, cache, "40", 20, zap.NewNop())
}

func TestRecomputeUseCase_DeactivateOnly(t *testing.T) {
	ctx := context.Background()

	t.Run("private statistic never computes", func(t *testing.T) {
		mockStat := &MockStatisticRepository{}
		mockAgg := &MockAggregateRepository{}
		mockArea := &MockAreaRepository{}
		mockPOI := &MockPOIRepository{}
		mockCache := &MockCacheRepository{}

		stat := publicStatistic()
		stat.Visibility = domain.VisibilityPrivate

		mockStat.On("GetByID", ctx, testStatID).Return(stat, nil)
		mockPOI.On("ListActiveByStatistic", ctx, testStatID).Return([]*domain.PointOfInterest{
			{ID: "poi-1", StatisticID: testStatID, Active: true},
			{ID: "poi-2", StatisticID: testStatID, Active: true},
		}, nil)
		mockPOI.On("DeactivateBatch", ctx, []string{"poi-1", "poi-2"}, 20).Return(nil)
		mockCache.On("InvalidatePOIs", ctx, testStatID).Return(nil)

		uc := newRecomputeUC(mockStat, mockAgg, mockArea, mockPOI, mockCache)

		result, err := uc.Run(ctx, testStatID, false)
		require.NoError(t, err)

		assert.True(t, result.DeactivateOnly)
		assert.Equal(t, 2, result.Deactivated)
		assert.Zero(t, result.Upserted)
		assert.NotEmpty(t, result.Reason)

		// the aggregate store must never be touched
		mockAgg.AssertNotCalled(t, "ListSummaries", mock.Anything, mock.Anything, mock.Anything)
		mockPOI.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("disabled statistic without force degrades too", func(t *testing.T) {
		mockStat := &MockStatisticRepository{}
		mockPOI := &MockPOIRepository{}
		mockCache := &MockCacheRepository{}

		stat := publicStatistic()
		stat.POIEnabled = false

		mockStat.On("GetByID", ctx, testStatID).Return(stat, nil)
		mockPOI.On("ListActiveByStatistic", ctx, testStatID).Return([]*domain.PointOfInterest{}, nil)
		mockPOI.On("DeactivateBatch", ctx, []string{}, 20).Return(nil)
		mockCache.On("InvalidatePOIs", ctx, testStatID).Return(nil)

		uc := newRecomputeUC(mockStat, &MockAggregateRepository{}, &MockAreaRepository{}, mockPOI, mockCache)

		result, err := uc.Run(ctx, testStatID, false)
		require.NoError(t, err)
		assert.True(t, result.DeactivateOnly)
		assert.Zero(t, result.Deactivated)
	})
}

func TestRecomputeUseCase_FullRun(t *testing.T) {
	ctx := context.Background()

	mockStat := &MockStatisticRepository{}
	mockAgg := &MockAggregateRepository{}
	mockArea := &MockAreaRepository{}
	mockPOI := &MockPOIRepository{}
	mockCache := &MockCacheRepository{}

	mockStat.On("GetByID", ctx, testStatID).Return(publicStatistic(), nil)
	mockArea.On("ListActive", ctx).Return(recomputeAreas(), nil)

	zctaSummaries := []domain.AggregateSummary{{ParentRegion: "Oklahoma", DataDate: "2022-01-01"}}
	countySummaries := []domain.AggregateSummary{{ParentRegion: "Oklahoma", DataDate: "2022-01-01"}}

	mockAgg.On("ListSummaries", mock.Anything, testStatID, domain.BoundaryZCTA).Return(zctaSummaries, nil)
	mockAgg.On("ListSummaries", mock.Anything, testStatID, domain.BoundaryCounty).Return(countySummaries, nil)

	mockAgg.On("FetchRows", mock.Anything, testStatID, domain.BoundaryZCTA, zctaSummaries).Return([]*domain.AggregateRow{
		{Boundary: domain.BoundaryZCTA, ParentRegion: "Oklahoma", DataDate: "2022-01-01",
			Data: map[string]float64{"74103": 1200, "73102": 800}},
	}, nil)
	mockAgg.On("FetchRows", mock.Anything, testStatID, domain.BoundaryCounty, countySummaries).Return([]*domain.AggregateRow{
		{Boundary: domain.BoundaryCounty, ParentRegion: "Oklahoma", DataDate: "2022-01-01",
			Data: map[string]float64{"40143": 650000, "40109": 790000}},
	}, nil)

	// one active record whose slot the new run no longer produces
	stale := &domain.PointOfInterest{
		ID: "stale-1", StatisticID: testStatID,
		Scope: domain.ScopeOKCMetro, Boundary: domain.BoundaryZCTA, Kind: domain.ExtremumLow,
		Active: true,
	}
	mockPOI.On("ListByStatistic", ctx, testStatID).Return([]*domain.PointOfInterest{stale}, nil)

	var upserted []*domain.PointOfInterest
	mockPOI.On("UpsertBatch", ctx, mock.Anything, 20).Run(func(args mock.Arguments) {
		upserted = args.Get(1).([]*domain.PointOfInterest)
	}).Return(nil)
	mockPOI.On("DeactivateBatch", ctx, []string{"stale-1"}, 20).Return(nil)
	mockCache.On("InvalidatePOIs", ctx, testStatID).Return(nil)

	uc := newRecomputeUC(mockStat, mockAgg, mockArea, mockPOI, mockCache)

	result, err := uc.Run(ctx, testStatID, false)
	require.NoError(t, err)

	// statewide yields high+low per boundary, each metro collapses to a
	// single high per boundary: 4 + 2 + 2
	assert.Equal(t, 8, result.Upserted)
	assert.Equal(t, 1, result.Deactivated)
	assert.Equal(t, 8, result.Considered)
	assert.NotEmpty(t, result.RunID)
	assert.False(t, result.DeactivateOnly)

	require.Len(t, upserted, 8)

	byKey := make(map[string]*domain.PointOfInterest, len(upserted))
	for _, p := range upserted {
		assert.True(t, p.Active)
		assert.Equal(t, result.RunID, p.RunID)
		assert.Equal(t, "2022-01-01", p.DataDate)
		byKey[p.NaturalKey()] = p
	}

	high := byKey[domain.POIKey(testStatID, domain.ScopeStatewide, domain.BoundaryZCTA, domain.ExtremumHigh)]
	require.NotNil(t, high)
	assert.Equal(t, "74103", high.AreaCode)
	assert.Equal(t, 1200.0, high.Value)

	low := byKey[domain.POIKey(testStatID, domain.ScopeStatewide, domain.BoundaryCounty, domain.ExtremumLow)]
	require.NotNil(t, low)
	assert.Equal(t, "40143", low.AreaCode)
	assert.Equal(t, "Tulsa County", low.AreaName)

	tulsaHigh := byKey[domain.POIKey(testStatID, domain.ScopeTulsaMetro, domain.BoundaryZCTA, domain.ExtremumHigh)]
	require.NotNil(t, tulsaHigh)
	assert.Equal(t, "74103", tulsaHigh.AreaCode)

	// single-member scopes must not produce a low record
	_, hasLow := byKey[domain.POIKey(testStatID, domain.ScopeTulsaMetro, domain.BoundaryZCTA, domain.ExtremumLow)]
	assert.False(t, hasLow)
}

func TestRecomputeUseCase_ForceOverridesDisabled(t *testing.T) {
	ctx := context.Background()

	mockStat := &MockStatisticRepository{}
	mockAgg := &MockAggregateRepository{}
	mockArea := &MockAreaRepository{}
	mockPOI := &MockPOIRepository{}
	mockCache := &MockCacheRepository{}

	stat := publicStatistic()
	stat.POIEnabled = false
	mockStat.On("GetByID", ctx, testStatID).Return(stat, nil)
	mockArea.On("ListActive", ctx).Return(recomputeAreas(), nil)

	mockAgg.On("ListSummaries", mock.Anything, testStatID, mock.Anything).Return([]domain.AggregateSummary{}, nil)
	mockAgg.On("FetchRows", mock.Anything, testStatID, mock.Anything, mock.Anything).Return([]*domain.AggregateRow{}, nil)

	mockPOI.On("ListByStatistic", ctx, testStatID).Return([]*domain.PointOfInterest{}, nil)
	mockPOI.On("UpsertBatch", ctx, mock.Anything, 20).Return(nil)
	mockPOI.On("DeactivateBatch", ctx, mock.Anything, 20).Return(nil)
	mockCache.On("InvalidatePOIs", ctx, testStatID).Return(nil)

	uc := newRecomputeUC(mockStat, mockAgg, mockArea, mockPOI, mockCache)

	result, err := uc.Run(ctx, testStatID, true)
	require.NoError(t, err)

	assert.False(t, result.DeactivateOnly)
	assert.Zero(t, result.Upserted)
	mockArea.AssertCalled(t, "ListActive", ctx)
}
