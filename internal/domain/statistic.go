package domain

import "time"

const (
	VisibilityPublic   = "public"
	VisibilityPrivate  = "private"
	VisibilityInactive = "inactive"
)

// Statistic is a registered measure ingested from a census table. Aggregate
// rows and POI records reference it by ID but never own it.
type Statistic struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Category           string    `json:"category"`
	ValueKind          string    `json:"value_kind"`
	HigherIsBetter     bool      `json:"higher_is_better"`
	Visibility         string    `json:"visibility"`
	VisibilityOverride string    `json:"visibility_override,omitempty"`
	Active             bool      `json:"active"`
	POIEnabled         bool      `json:"poi_enabled"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// EffectiveVisibility resolves the visibility chain: explicit per-record
// override, then the coarse visibility flag, then inactive when the
// statistic is disabled, otherwise public.
func (s *Statistic) EffectiveVisibility() string {
	if s.VisibilityOverride != "" {
		return s.VisibilityOverride
	}
	if s.Visibility != "" {
		return s.Visibility
	}
	if !s.Active {
		return VisibilityInactive
	}
	return VisibilityPublic
}

func (s *Statistic) IsPublic() bool {
	return s.EffectiveVisibility() == VisibilityPublic
}
