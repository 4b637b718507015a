package domain

import "strings"

const (
	ScopeStatewide  = "statewide"
	ScopeOKCMetro   = "okc-metro"
	ScopeTulsaMetro = "tulsa-metro"

	// StatewideLabel is the parent-region label the ingestion path writes on
	// statewide payloads.
	StatewideLabel = "Oklahoma"
)

// Scope is a named logical region extrema are computed over. A nil
// CountyCodes list means no restriction: every known area belongs.
type Scope struct {
	Name        string
	CountyCodes []string
}

// Scopes is the static scope configuration: one statewide scope and two
// hand-curated metro groupings of county codes.
var Scopes = []Scope{
	{Name: ScopeStatewide},
	{
		Name: ScopeOKCMetro,
		CountyCodes: []string{
			"40017", // Canadian
			"40027", // Cleveland
			"40051", // Grady
			"40081", // Lincoln
			"40083", // Logan
			"40087", // McClain
			"40109", // Oklahoma
			"40125", // Pottawatomie
		},
	},
	{
		Name: ScopeTulsaMetro,
		CountyCodes: []string{
			"40037", // Creek
			"40111", // Okmulgee
			"40113", // Osage
			"40117", // Pawnee
			"40131", // Rogers
			"40143", // Tulsa
			"40145", // Wagoner
			"40147", // Washington
		},
	},
}

// countyNameFallback resolves labels for curated scope members when the
// area index has no row for the code.
var countyNameFallback = map[string]string{
	"40017": "Canadian County",
	"40027": "Cleveland County",
	"40037": "Creek County",
	"40051": "Grady County",
	"40081": "Lincoln County",
	"40083": "Logan County",
	"40087": "McClain County",
	"40109": "Oklahoma County",
	"40111": "Okmulgee County",
	"40113": "Osage County",
	"40117": "Pawnee County",
	"40125": "Pottawatomie County",
	"40131": "Rogers County",
	"40143": "Tulsa County",
	"40145": "Wagoner County",
	"40147": "Washington County",
}

// ScopeMembership is a scope expanded into concrete code sets plus the
// canonical county labels used to match free-text parent-region labels
// written by the ingestion path.
type ScopeMembership struct {
	Scope        string
	ZCTACodes    map[string]struct{}
	CountyCodes  map[string]struct{}
	CountyLabels map[string]struct{}
}

// BuildScopeMembership expands one scope against the area index. For a
// restricted scope each listed county contributes its canonical label and
// every ZCTA registered under that label.
func BuildScopeMembership(scope Scope, idx *AreaIndex) *ScopeMembership {
	m := &ScopeMembership{
		Scope:        scope.Name,
		ZCTACodes:    make(map[string]struct{}),
		CountyCodes:  make(map[string]struct{}),
		CountyLabels: make(map[string]struct{}),
	}

	if scope.CountyCodes == nil {
		for code := range idx.ZCTACodes {
			m.ZCTACodes[code] = struct{}{}
		}
		for code := range idx.CountyCodes {
			m.CountyCodes[code] = struct{}{}
		}
		for _, label := range idx.CountyLabels {
			m.CountyLabels[label] = struct{}{}
		}
		return m
	}

	for _, code := range scope.CountyCodes {
		m.CountyCodes[code] = struct{}{}

		label, ok := idx.CountyLabels[code]
		if !ok {
			label = countyNameFallback[code]
		}
		if label == "" {
			continue
		}
		m.CountyLabels[label] = struct{}{}

		for zcta := range idx.LabelZCTAs[label] {
			m.ZCTACodes[zcta] = struct{}{}
		}
	}

	return m
}

// MembersFor returns the scope's code set for one boundary granularity.
func (m *ScopeMembership) MembersFor(boundary Boundary) map[string]struct{} {
	if boundary == BoundaryCounty {
		return m.CountyCodes
	}
	return m.ZCTACodes
}

// MatchesRegionLabel reports whether a stored parent-region label belongs
// to the scope. Labels are legacy free text, so alias forms are accepted:
// with or without a trailing "County" suffix and with or without a leading
// statewide prefix ("Oklahoma / Tulsa County").
func (m *ScopeMembership) MatchesRegionLabel(label string) bool {
	label = strings.TrimSpace(label)
	if label == "" {
		return false
	}

	if label == StatewideLabel {
		return m.Scope == ScopeStatewide
	}

	if idx := strings.Index(label, "/"); idx >= 0 {
		prefix := strings.TrimSpace(label[:idx])
		if prefix == StatewideLabel {
			label = strings.TrimSpace(label[idx+1:])
		}
	}

	_, ok := m.CountyLabels[CanonicalCountyLabel(label)]
	return ok
}
