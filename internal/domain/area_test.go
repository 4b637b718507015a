package domain_test

import (
	"testing"

	"github.com/census-statistics-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStateFIPS = "40"

func TestNormalizeCountyCode(t *testing.T) {
	t.Run("pads bare county fragments and prefixes state", func(t *testing.T) {
		assert.Equal(t, "40109", domain.NormalizeCountyCode("109", testStateFIPS))
		assert.Equal(t, "40017", domain.NormalizeCountyCode("17", testStateFIPS))
		assert.Equal(t, "40001", domain.NormalizeCountyCode("1", testStateFIPS))
	})

	t.Run("idempotent on canonical codes", func(t *testing.T) {
		canonical := domain.NormalizeCountyCode("109", testStateFIPS)
		assert.Equal(t, canonical, domain.NormalizeCountyCode(canonical, testStateFIPS))
	})

	t.Run("empty in, empty out", func(t *testing.T) {
		assert.Equal(t, "", domain.NormalizeCountyCode("  ", testStateFIPS))
	})
}

func TestCanonicalCountyLabel(t *testing.T) {
	for _, raw := range []string{"Tulsa County", "TULSA COUNTY", "tulsa county", "Tulsa", "Tulsa Cnty"} {
		assert.Equal(t, "Tulsa County", domain.CanonicalCountyLabel(raw), "input %q", raw)
	}

	assert.Equal(t, "", domain.CanonicalCountyLabel("   "))
}

func testAreas() []*domain.Area {
	return []*domain.Area{
		{Code: "40143", Kind: domain.AreaKindCounty, Name: "TULSA COUNTY", Active: true},
		{Code: "109", Kind: domain.AreaKindCounty, Name: "Oklahoma", Active: true},
		{Code: "74103", Kind: domain.AreaKindZCTA, Name: "74103", ParentCode: "40143", Active: true},
		{Code: "74104", Kind: domain.AreaKindZCTA, Name: "74104", ParentCode: "143", Active: true},
		{Code: "73102", Kind: domain.AreaKindZCTA, Name: "73102", ParentCode: "40109", Active: true},
		// stray rows the index must ignore
		{Code: "99999", Kind: domain.AreaKindZCTA, Name: "99999", Active: false},
		{Code: "", Kind: domain.AreaKindZCTA, Name: "nameless", Active: true},
		{Code: "40777", Kind: "", Name: "kindless", Active: true},
	}
}

func TestBuildAreaIndex(t *testing.T) {
	idx := domain.BuildAreaIndex(testAreas(), testStateFIPS)

	t.Run("indexes codes per kind", func(t *testing.T) {
		assert.Len(t, idx.ZCTACodes, 3)
		assert.Contains(t, idx.ZCTACodes, "74103")
		assert.NotContains(t, idx.ZCTACodes, "99999")

		assert.Contains(t, idx.CountyCodes, "40143")
		assert.Contains(t, idx.CountyCodes, "40109")
	})

	t.Run("normalizes county codes and labels", func(t *testing.T) {
		assert.Equal(t, "Tulsa County", idx.CountyLabels["40143"])
		assert.Equal(t, "Oklahoma County", idx.CountyLabels["40109"])
	})

	t.Run("groups ZCTAs under parent labels regardless of code form", func(t *testing.T) {
		tulsa := idx.LabelZCTAs["Tulsa County"]
		require.NotNil(t, tulsa)
		assert.Contains(t, tulsa, "74103")
		assert.Contains(t, tulsa, "74104")

		okc := idx.LabelZCTAs["Oklahoma County"]
		require.NotNil(t, okc)
		assert.Contains(t, okc, "73102")
	})
}

func TestAreaMetaFromIndex(t *testing.T) {
	areas := testAreas()
	idx := domain.BuildAreaIndex(areas, testStateFIPS)
	meta := domain.AreaMetaFromIndex(idx, areas, testStateFIPS)

	assert.Equal(t, "40143", meta.ParentCode["74104"])
	assert.Equal(t, "Tulsa County", meta.ParentLabel["74104"])
	assert.Equal(t, "Oklahoma County", meta.ParentLabel["73102"])

	// a ZCTA without a resolvable parent simply has no join entry
	_, ok := meta.ParentCode["99999"]
	assert.False(t, ok)
}
