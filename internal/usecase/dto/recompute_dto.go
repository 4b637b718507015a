package dto

// RecomputeRequest triggers a POI recompute for one statistic. Force
// overrides the statistic's poi_enabled flag, not its visibility.
type RecomputeRequest struct {
	Force bool `json:"force"`
}

// RecomputeResult reports what one recompute run did.
type RecomputeResult struct {
	StatisticID    string `json:"statistic_id"`
	RunID          string `json:"run_id,omitempty"`
	Upserted       int    `json:"upserted"`
	Deactivated    int    `json:"deactivated"`
	Considered     int    `json:"considered"`
	DeactivateOnly bool   `json:"deactivate_only"`
	Reason         string `json:"reason,omitempty"`
}
