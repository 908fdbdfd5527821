package query

import (
	"math"

	"github.com/couchcryptid/county-aqi-service/internal/domain"
)

// Sentinel slider bounds used when the cleaned table is empty. Range defaults
// must never be computed from an empty numeric series.
const (
	DefaultAQIUpper  = 150.0
	DefaultHeatLower = 60.0
	DefaultHeatUpper = 120.0
)

// AQIBounds returns the default median-AQI slider bounds for a table. The
// lower bound is always 0; the upper bound is the observed maximum, floored
// at 150 so the slider scale stays comparable across filtered subsets. An
// empty table yields exactly [0, 150].
func AQIBounds(records []domain.CountyRecord) Range {
	upper := DefaultAQIUpper
	for _, rec := range records {
		if rec.MedianAQI > upper {
			upper = rec.MedianAQI
		}
	}
	return Range{Lo: 0, Hi: upper}
}

// HeatBounds returns the default heat-index slider bounds: the floor of the
// observed minimum up to the observed maximum, ceilinged and floored at 120.
// An empty table yields the [60, 120] sentinel.
func HeatBounds(records []domain.CountyRecord) Range {
	if len(records) == 0 {
		return Range{Lo: DefaultHeatLower, Hi: DefaultHeatUpper}
	}

	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, rec := range records {
		if rec.AvgHeatIndexF < lo {
			lo = rec.AvgHeatIndexF
		}
		if rec.AvgHeatIndexF > hi {
			hi = rec.AvgHeatIndexF
		}
	}

	hi = math.Ceil(hi)
	if hi < DefaultHeatUpper {
		hi = DefaultHeatUpper
	}
	return Range{Lo: math.Floor(lo), Hi: hi}
}
