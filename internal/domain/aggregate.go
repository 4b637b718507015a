package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type Boundary string

const (
	BoundaryZCTA   Boundary = "zcta"
	BoundaryCounty Boundary = "county"
)

// DefaultSeriesName is used when a payload carries no sub-series name.
const DefaultSeriesName = "root"

// AggregateRow is one persisted area-code to value mapping for a statistic.
// At most one row exists per natural key; re-ingestion merges into it.
type AggregateRow struct {
	ID           string             `json:"id"`
	StatisticID  string             `json:"statistic_id"`
	SeriesName   string             `json:"series_name"`
	ParentRegion string             `json:"parent_region"`
	Boundary     Boundary           `json:"boundary"`
	DataDate     string             `json:"data_date"`
	Data         map[string]float64 `json:"data"`
	Margins      map[string]float64 `json:"margins,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// AggregateKey builds the natural key an upsert dedupes on.
func AggregateKey(boundary Boundary, parentRegion, dataDate, seriesName string) string {
	if seriesName == "" {
		seriesName = DefaultSeriesName
	}
	return fmt.Sprintf("%s::%s::%s::%s", boundary, parentRegion, dataDate, seriesName)
}

// NaturalKey returns the row's dedup key.
func (r *AggregateRow) NaturalKey() string {
	return AggregateKey(r.Boundary, r.ParentRegion, r.DataDate, r.SeriesName)
}

// Merge folds incoming mappings into the row. Incoming codes win on
// conflict; codes absent from the incoming payload are preserved, so a
// partial re-import never erases unrelated areas.
func (r *AggregateRow) Merge(values, margins map[string]float64) {
	if r.Data == nil {
		r.Data = make(map[string]float64, len(values))
	}
	for code, v := range values {
		r.Data[code] = v
	}

	if len(margins) == 0 {
		return
	}
	if r.Margins == nil {
		r.Margins = make(map[string]float64, len(margins))
	}
	for code, v := range margins {
		r.Margins[code] = v
	}
}

// AggregateSummary is the lightweight (parent region, date) projection of a
// statistic's rows, used to plan the recompute bulk fetch.
type AggregateSummary struct {
	ParentRegion string `json:"parent_region"`
	DataDate     string `json:"data_date"`
}

// DataMaps is the output of one aggregation pass for a single variable.
// CountyBuckets groups ZCTA values by their parent county, keyed
// "countyCode::countyLabel".
type DataMaps struct {
	ZCTAValues    map[string]float64
	ZCTAMargins   map[string]float64
	CountyValues  map[string]float64
	CountyMargins map[string]float64

	CountyBuckets       map[string]map[string]float64
	CountyBucketMargins map[string]map[string]float64
}

// BucketKey keys a per-county ZCTA bucket.
func BucketKey(countyCode, countyLabel string) string {
	return countyCode + "::" + countyLabel
}

// SplitBucketKey is the inverse of BucketKey.
func SplitBucketKey(key string) (code, label string) {
	parts := strings.SplitN(key, "::", 2)
	if len(parts) != 2 {
		return key, ""
	}
	return parts[0], parts[1]
}

// AreaMeta is the precomputed ZCTA-to-county join the aggregate builder
// filters and buckets against.
type AreaMeta struct {
	ZCTACodes   map[string]struct{}
	ParentCode  map[string]string
	ParentLabel map[string]string
}

// AreaMetaFromIndex derives the builder's join structure from an AreaIndex.
func AreaMetaFromIndex(idx *AreaIndex, areas []*Area, stateFIPS string) *AreaMeta {
	meta := &AreaMeta{
		ZCTACodes:   idx.ZCTACodes,
		ParentCode:  make(map[string]string),
		ParentLabel: make(map[string]string),
	}

	for _, area := range areas {
		if area == nil || area.Kind != AreaKindZCTA || area.Code == "" || !area.Active {
			continue
		}
		if area.ParentCode == "" {
			continue
		}
		parent := NormalizeCountyCode(area.ParentCode, stateFIPS)
		label, ok := idx.CountyLabels[parent]
		if !ok {
			continue
		}
		meta.ParentCode[area.Code] = parent
		meta.ParentLabel[area.Code] = label
	}

	return meta
}

// BuildDataMaps joins fetched records against the area metadata for one
// estimate/margin variable pair. ZCTA rows are filtered to the known
// in-state universe (the API returns nationwide rows); county rows are
// filtered to the configured state and their codes canonicalized.
func BuildDataMaps(
	pair VariablePair,
	zctaRecords []CensusRecord,
	countyRecords []CensusRecord,
	meta *AreaMeta,
	stateFIPS string,
) *DataMaps {
	maps := &DataMaps{
		ZCTAValues:          make(map[string]float64),
		ZCTAMargins:         make(map[string]float64),
		CountyValues:        make(map[string]float64),
		CountyMargins:       make(map[string]float64),
		CountyBuckets:       make(map[string]map[string]float64),
		CountyBucketMargins: make(map[string]map[string]float64),
	}

	for _, rec := range zctaRecords {
		code := rec["zip code tabulation area"]
		if code == "" {
			continue
		}
		if _, ok := meta.ZCTACodes[code]; !ok {
			continue
		}

		if v, ok := ParseStatValue(rec[pair.Estimate]); ok {
			maps.ZCTAValues[code] = v
			if parent, ok := meta.ParentCode[code]; ok {
				bucket := BucketKey(parent, meta.ParentLabel[code])
				if maps.CountyBuckets[bucket] == nil {
					maps.CountyBuckets[bucket] = make(map[string]float64)
				}
				maps.CountyBuckets[bucket][code] = v
			}
		}

		if pair.Margin == "" {
			continue
		}
		if m, ok := ParseStatValue(rec[pair.Margin]); ok {
			maps.ZCTAMargins[code] = m
			if parent, ok := meta.ParentCode[code]; ok {
				bucket := BucketKey(parent, meta.ParentLabel[code])
				if maps.CountyBucketMargins[bucket] == nil {
					maps.CountyBucketMargins[bucket] = make(map[string]float64)
				}
				maps.CountyBucketMargins[bucket][code] = m
			}
		}
	}

	for _, rec := range countyRecords {
		if rec["state"] != stateFIPS {
			continue
		}
		code := NormalizeCountyCode(rec["county"], stateFIPS)
		if code == "" {
			continue
		}

		if v, ok := ParseStatValue(rec[pair.Estimate]); ok {
			maps.CountyValues[code] = v
		}
		if pair.Margin != "" {
			if m, ok := ParseStatValue(rec[pair.Margin]); ok {
				maps.CountyMargins[code] = m
			}
		}
	}

	return maps
}

// MergeRowValues flattens matched aggregate rows into a single area-value
// map. Rows are applied oldest date first, so the most recent date wins per
// area code.
func MergeRowValues(rows []*AggregateRow) map[string]float64 {
	sorted := make([]*AggregateRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DataDate < sorted[j].DataDate
	})

	merged := make(map[string]float64)
	for _, row := range sorted {
		for code, v := range row.Data {
			merged[code] = v
		}
	}
	return merged
}
