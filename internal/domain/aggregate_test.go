package domain_test

import (
	"testing"

	"github.com/census-statistics-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateRowMerge(t *testing.T) {
	t.Run("incoming wins, absent preserved", func(t *testing.T) {
		row := &domain.AggregateRow{
			Data: map[string]float64{"73102": 500, "73103": 300},
		}

		row.Merge(map[string]float64{"73103": 310, "73104": 90}, nil)

		assert.Equal(t, map[string]float64{
			"73102": 500,
			"73103": 310,
			"73104": 90,
		}, row.Data)
	})

	t.Run("merging into an empty row", func(t *testing.T) {
		row := &domain.AggregateRow{}
		row.Merge(map[string]float64{"74103": 1}, map[string]float64{"74103": 0.5})

		assert.Equal(t, 1.0, row.Data["74103"])
		assert.Equal(t, 0.5, row.Margins["74103"])
	})

	t.Run("empty margins leave existing margins alone", func(t *testing.T) {
		row := &domain.AggregateRow{Margins: map[string]float64{"74103": 2}}
		row.Merge(map[string]float64{"74103": 1}, nil)

		assert.Equal(t, 2.0, row.Margins["74103"])
	})
}

func TestAggregateKey(t *testing.T) {
	key := domain.AggregateKey(domain.BoundaryZCTA, "Oklahoma", "2022-01-01", "")
	assert.Equal(t, "zcta::Oklahoma::2022-01-01::root", key)

	row := &domain.AggregateRow{
		Boundary:     domain.BoundaryZCTA,
		ParentRegion: "Oklahoma",
		DataDate:     "2022-01-01",
		SeriesName:   "root",
	}
	assert.Equal(t, key, row.NaturalKey())
}

func TestBucketKeyRoundTrip(t *testing.T) {
	key := domain.BucketKey("40143", "Tulsa County")
	code, label := domain.SplitBucketKey(key)
	assert.Equal(t, "40143", code)
	assert.Equal(t, "Tulsa County", label)

	code, label = domain.SplitBucketKey("malformed")
	assert.Equal(t, "malformed", code)
	assert.Empty(t, label)
}

func TestBuildDataMaps(t *testing.T) {
	areas := testAreas()
	idx := domain.BuildAreaIndex(areas, testStateFIPS)
	meta := domain.AreaMetaFromIndex(idx, areas, testStateFIPS)
	meta.ZCTACodes = idx.ZCTACodes

	pair := domain.VariablePair{Estimate: "B01003_001E", Margin: "B01003_001M"}

	zctaRecords := []domain.CensusRecord{
		{"zip code tabulation area": "74103", "B01003_001E": "1200", "B01003_001M": "40"},
		{"zip code tabulation area": "73102", "B01003_001E": "800"},
		// nationwide noise: unknown ZCTA must be dropped
		{"zip code tabulation area": "10001", "B01003_001E": "99999"},
		// suppressed value must be dropped, not zeroed
		{"zip code tabulation area": "74104", "B01003_001E": "-111111111"},
	}

	countyRecords := []domain.CensusRecord{
		{"state": "40", "county": "143", "B01003_001E": "650000", "B01003_001M": "120"},
		{"state": "40", "county": "109", "B01003_001E": "790000"},
		// out-of-state row must be dropped
		{"state": "48", "county": "201", "B01003_001E": "4000000"},
	}

	maps := domain.BuildDataMaps(pair, zctaRecords, countyRecords, meta, testStateFIPS)

	t.Run("zcta values filtered to the known universe", func(t *testing.T) {
		assert.Equal(t, map[string]float64{"74103": 1200, "73102": 800}, maps.ZCTAValues)
		assert.Equal(t, map[string]float64{"74103": 40}, maps.ZCTAMargins)
	})

	t.Run("county values keyed by canonical codes", func(t *testing.T) {
		assert.Equal(t, map[string]float64{"40143": 650000, "40109": 790000}, maps.CountyValues)
		assert.Equal(t, map[string]float64{"40143": 120}, maps.CountyMargins)
	})

	t.Run("zcta values bucketed by parent county", func(t *testing.T) {
		tulsa := maps.CountyBuckets[domain.BucketKey("40143", "Tulsa County")]
		require.NotNil(t, tulsa)
		assert.Equal(t, map[string]float64{"74103": 1200}, tulsa)

		okc := maps.CountyBuckets[domain.BucketKey("40109", "Oklahoma County")]
		require.NotNil(t, okc)
		assert.Equal(t, map[string]float64{"73102": 800}, okc)
	})
}

func TestMergeRowValues(t *testing.T) {
	rows := []*domain.AggregateRow{
		{DataDate: "2022-01-01", Data: map[string]float64{"74103": 100, "74104": 50}},
		{DataDate: "2021-01-01", Data: map[string]float64{"74103": 90, "74105": 10}},
	}

	merged := domain.MergeRowValues(rows)

	// most recent date wins per code, older-only codes survive
	assert.Equal(t, map[string]float64{
		"74103": 100,
		"74104": 50,
		"74105": 10,
	}, merged)
}
