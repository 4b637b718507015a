package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	ValueKindCount   = "count"
	ValueKindPercent = "percent"
	ValueKindRate    = "rate"
)

// suppressedSentinel is the threshold below which the census API encodes
// annotations (suppressed, not applicable, controlled) instead of data.
// Anything at or below it is treated as missing, never as a real value.
const suppressedSentinel = -111111111

// CensusRecord is one tabular data row keyed by column name, built by
// zipping the response header row with each data row.
type CensusRecord map[string]string

// VariableMeta describes one declared variable of a table group.
type VariableMeta struct {
	Name          string `json:"name"`
	Label         string `json:"label"`
	Concept       string `json:"concept"`
	PredicateType string `json:"predicateType"`
}

// GroupMetadata is the resolved schema of a census table group.
type GroupMetadata struct {
	Name      string                  `json:"name"`
	Label     string                  `json:"label"`
	Concept   string                  `json:"concept"`
	Universe  string                  `json:"universe"`
	Variables map[string]VariableMeta `json:"variables"`
}

// VariablePair couples an estimate variable with its margin-of-error
// sibling. Margin is empty when no sibling exists or margins were not
// requested.
type VariablePair struct {
	Estimate string
	Margin   string
}

// ResolveVariables narrows a group's declared variables to the ones the
// caller wants. An empty request selects every estimate variable (name
// ending in "E", excluding the NAME column). When includeMargins is set,
// each estimate is paired with the sibling variable that shares its numeric
// suffix but ends in "M" instead, if the group declares one.
func ResolveVariables(meta *GroupMetadata, requested []string, includeMargins bool) ([]VariablePair, error) {
	var estimates []string

	if len(requested) == 0 {
		for name := range meta.Variables {
			if isEstimateVariable(name) {
				estimates = append(estimates, name)
			}
		}
	} else {
		for _, name := range requested {
			if _, ok := meta.Variables[name]; !ok {
				return nil, fmt.Errorf("variable %s not declared in group %s", name, meta.Name)
			}
			if !isEstimateVariable(name) {
				return nil, fmt.Errorf("variable %s is not an estimate variable", name)
			}
			estimates = append(estimates, name)
		}
	}

	sort.Strings(estimates)

	pairs := make([]VariablePair, 0, len(estimates))
	for _, est := range estimates {
		pair := VariablePair{Estimate: est}
		if includeMargins {
			margin := est[:len(est)-1] + "M"
			if _, ok := meta.Variables[margin]; ok {
				pair.Margin = margin
			}
		}
		pairs = append(pairs, pair)
	}

	return pairs, nil
}

func isEstimateVariable(name string) bool {
	return name != "NAME" && strings.HasSuffix(name, "E")
}

// statNameOverrides maps variable names whose raw labels are unusable to
// curated display names.
var statNameOverrides = map[string]string{
	"B01003_001E": "Total Population",
	"B19013_001E": "Median Household Income",
	"B25077_001E": "Median Home Value",
}

// DeriveStatName turns a raw variable label into a display name. Curated
// overrides win; otherwise the "Estimate" marker and hierarchy separators
// are stripped and the group concept is prefixed unless the cleaned label
// already mentions it. Avoids redundant names like "Population - Population".
func DeriveStatName(varName, label, concept string) string {
	if name, ok := statNameOverrides[varName]; ok {
		return name
	}

	cleaned := strings.TrimPrefix(label, "Estimate!!")
	cleaned = strings.TrimSuffix(cleaned, ":")
	cleaned = strings.ReplaceAll(cleaned, "!!", " - ")
	cleaned = strings.TrimSpace(cleaned)

	concept = normalizeConcept(concept)
	if concept == "" || containsFold(cleaned, concept) {
		return cleaned
	}

	return concept + " - " + cleaned
}

func normalizeConcept(concept string) string {
	concept = strings.TrimSpace(concept)
	if concept == strings.ToUpper(concept) {
		concept = titleCase(concept)
	}
	return concept
}

// DeriveValueKind guesses a coarse value type for a variable from its label
// and predicate type.
func DeriveValueKind(label, predicateType string) string {
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "percent"):
		return ValueKindPercent
	case strings.Contains(lower, "rate") || strings.Contains(lower, "ratio"):
		return ValueKindRate
	case predicateType == "float":
		return ValueKindRate
	default:
		return ValueKindCount
	}
}

// ParseStatValue coerces a raw census cell into a float. Empty strings,
// "null" and sentinel-annotated values report missing instead of zero; the
// sentinel must not leak past this function.
func ParseStatValue(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return 0, false
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	if v <= suppressedSentinel {
		return 0, false
	}

	return v, true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
