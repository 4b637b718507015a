package domain

import (
	"math"
	"sort"
)

type ExtremumKind string

const (
	ExtremumHigh ExtremumKind = "high"
	ExtremumLow  ExtremumKind = "low"
)

// Extremum is one computed high or low candidate for a scope/boundary pair.
type Extremum struct {
	Kind     ExtremumKind
	AreaCode string
	Value    float64
}

// ComputeExtrema finds the highest- and lowest-valued member of a scope's
// membership set. Candidates are sorted by area code before the scan so the
// result is stable regardless of map iteration order. An empty candidate
// set yields nothing; a single qualifying area yields only the high record.
func ComputeExtrema(values map[string]float64, members map[string]struct{}) []Extremum {
	codes := make([]string, 0, len(values))
	for code, v := range values {
		if _, ok := members[code]; !ok {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		codes = append(codes, code)
	}

	if len(codes) == 0 {
		return nil
	}

	sort.Strings(codes)

	high := Extremum{Kind: ExtremumHigh, AreaCode: codes[0], Value: values[codes[0]]}
	low := Extremum{Kind: ExtremumLow, AreaCode: codes[0], Value: values[codes[0]]}

	for _, code := range codes[1:] {
		v := values[code]
		if v > high.Value {
			high.AreaCode = code
			high.Value = v
		}
		if v < low.Value {
			low.AreaCode = code
			low.Value = v
		}
	}

	if high.AreaCode == low.AreaCode {
		return []Extremum{high}
	}

	return []Extremum{high, low}
}
