package domain

import (
	"fmt"
	"time"
)

// PointOfInterest is the durable record of a statistic's extremum within a
// scope and boundary. The natural key (statistic, scope, boundary, kind)
// enforces at most one active record per slot; stale records are flipped
// inactive, never deleted, so the last known state survives.
type PointOfInterest struct {
	ID             string       `json:"id"`
	StatisticID    string       `json:"statistic_id"`
	Scope          string       `json:"scope"`
	Boundary       Boundary     `json:"boundary"`
	Kind           ExtremumKind `json:"kind"`
	AreaCode       string       `json:"area_code"`
	AreaName       string       `json:"area_name"`
	Value          float64      `json:"value"`
	HigherIsBetter bool         `json:"higher_is_better"`
	Active         bool         `json:"active"`
	ComputedAt     time.Time    `json:"computed_at"`
	DataDate       string       `json:"data_date"`
	RunID          string       `json:"run_id"`
}

// POIKey builds the stable content-derived key reconciliation upserts by.
func POIKey(statisticID, scope string, boundary Boundary, kind ExtremumKind) string {
	return fmt.Sprintf("%s::%s::%s::%s", statisticID, scope, boundary, kind)
}

// NaturalKey returns the record's reconciliation key.
func (p *PointOfInterest) NaturalKey() string {
	return POIKey(p.StatisticID, p.Scope, p.Boundary, p.Kind)
}
