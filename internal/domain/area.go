package domain

import (
	"strings"
	"time"
)

const (
	AreaKindZCTA   = "zcta"
	AreaKindCounty = "county"
)

// Area is a geographic unit. County areas are immutable reference data;
// ZCTA areas carry a parent county code so scope membership can be built.
type Area struct {
	Code       string    `json:"code"`
	Kind       string    `json:"kind"`
	Name       string    `json:"name"`
	ParentCode string    `json:"parent_code,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AreaIndex is the in-memory join structure built from all active areas:
// code universes per kind, county labels, and the ZCTAs registered under
// each canonical county label.
type AreaIndex struct {
	ZCTACodes    map[string]struct{}
	CountyCodes  map[string]struct{}
	CountyLabels map[string]string
	LabelZCTAs   map[string]map[string]struct{}
}

// BuildAreaIndex builds the index from one bounded area query. Rows missing
// a code, kind or name, or marked inactive, are skipped.
func BuildAreaIndex(areas []*Area, stateFIPS string) *AreaIndex {
	idx := &AreaIndex{
		ZCTACodes:    make(map[string]struct{}),
		CountyCodes:  make(map[string]struct{}),
		CountyLabels: make(map[string]string),
		LabelZCTAs:   make(map[string]map[string]struct{}),
	}

	for _, area := range areas {
		if area == nil || area.Code == "" || area.Kind == "" || area.Name == "" || !area.Active {
			continue
		}

		switch area.Kind {
		case AreaKindZCTA:
			idx.ZCTACodes[area.Code] = struct{}{}
		case AreaKindCounty:
			code := NormalizeCountyCode(area.Code, stateFIPS)
			idx.CountyCodes[code] = struct{}{}
			idx.CountyLabels[code] = CanonicalCountyLabel(area.Name)
		}
	}

	// Second pass: register each ZCTA under its parent county's label. The
	// parent must already be indexed for the label to resolve.
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

		if idx.LabelZCTAs[label] == nil {
			idx.LabelZCTAs[label] = make(map[string]struct{})
		}
		idx.LabelZCTAs[label][area.Code] = struct{}{}
	}

	return idx
}

// NormalizeCountyCode brings a county identifier to its canonical 5-digit
// state+county FIPS form. Already-canonical codes pass through unchanged;
// bare county fragments are left-padded to 3 digits and prefixed with the
// state code.
func NormalizeCountyCode(code, stateFIPS string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	if len(code) >= 5 {
		return code
	}

	for len(code) < 3 {
		code = "0" + code
	}

	return stateFIPS + code
}

// CanonicalCountyLabel normalizes free-text county names so that
// "Tulsa county", "TULSA COUNTY" and "Tulsa" all resolve to "Tulsa County".
func CanonicalCountyLabel(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	name = titleCase(name)
	for _, suffix := range []string{" County", " Cnty", " Co."} {
		name = strings.TrimSuffix(name, suffix)
	}

	return name + " County"
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
