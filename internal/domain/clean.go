package domain

import (
	"math"
	"strconv"
	"strings"
)

// nbsp variants that show up in spreadsheet exports.
const (
	nonBreakingSpace       = " "
	narrowNonBreakingSpace = " "
)

// heatHeaderVariants collapses the known drifted names of the heat column
// onto the canonical ColHeatIndex. Applied to the combined table only.
var heatHeaderVariants = map[string]string{
	"Avg Daily Max Heat Index":         ColHeatIndex,
	"Avg Daily Max Heat Index ( F )":   ColHeatIndex,
	"Average Daily Max Heat Index (F)": ColHeatIndex,
}

// NormalizeHeader trims surrounding whitespace and collapses non-breaking
// space characters to regular spaces.
func NormalizeHeader(header string) string {
	header = strings.ReplaceAll(header, nonBreakingSpace, " ")
	header = strings.ReplaceAll(header, narrowNonBreakingSpace, " ")
	return strings.TrimSpace(header)
}

// CanonicalizeHeader maps known header variants onto their canonical name.
// Headers without a known variant pass through unchanged. The input is
// expected to be normalized already.
func CanonicalizeHeader(header string) string {
	if canonical, ok := heatHeaderVariants[header]; ok {
		return canonical
	}
	return header
}

// CoerceFloat parses a cell as float64. Malformed source cells are common
// and must not abort the pipeline, so failures become NaN, never an error.
func CoerceFloat(cell string) float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// coerceDayCount parses an AQI category day count, tolerating values exported
// as floats ("12.0"). Returns false when the cell does not parse.
func coerceDayCount(cell string) (int, bool) {
	v := CoerceFloat(cell)
	if math.IsNaN(v) || v < 0 {
		return 0, false
	}
	return int(math.Round(v)), true
}

// CleanStats reports what row cleaning did.
type CleanStats struct {
	RowsIn      int
	RowsDropped int
}

// BuildCountyRecords turns the normalized combined table, given as raw
// string columns keyed by canonical name, into the cleaned county table.
// All RequiredColumns must be present (synthesized as all-empty if the
// source lacked them) and of equal length. A row survives only if its
// median AQI, heat index, longitude, and latitude all coerce to numbers;
// surviving rows are tagged with their macro-region. Category day counts
// are attached only when every column in CategoryColumns is present.
func BuildCountyRecords(cols map[string][]string) ([]CountyRecord, CleanStats) {
	nrows := len(cols[ColMedianAQI])
	stats := CleanStats{RowsIn: nrows}

	hasMaxAQI := len(cols[ColMaxAQI]) == nrows && nrows > 0
	hasCategories := true
	for _, name := range CategoryColumns {
		if len(cols[name]) != nrows {
			hasCategories = false
			break
		}
	}

	records := make([]CountyRecord, 0, nrows)
	for i := 0; i < nrows; i++ {
		medianAQI := CoerceFloat(cols[ColMedianAQI][i])
		heatIndex := CoerceFloat(cols[ColHeatIndex][i])
		longitude := CoerceFloat(cols[ColLongitude][i])
		latitude := CoerceFloat(cols[ColLatitude][i])

		if math.IsNaN(medianAQI) || math.IsNaN(heatIndex) || math.IsNaN(longitude) || math.IsNaN(latitude) {
			stats.RowsDropped++
			continue
		}

		stateCode := strings.TrimSpace(cols[ColState][i])
		rec := CountyRecord{
			CountyName:    strings.TrimSpace(cols[ColCounty][i]),
			StateCode:     stateCode,
			Region:        RegionFor(stateCode),
			MedianAQI:     medianAQI,
			AvgHeatIndexF: heatIndex,
			Longitude:     longitude,
			Latitude:      latitude,
		}

		if hasMaxAQI {
			if v := CoerceFloat(cols[ColMaxAQI][i]); !math.IsNaN(v) {
				rec.MaxAQI = &v
			}
		}

		if hasCategories {
			days := make(map[string]int, len(CategoryColumns))
			for _, name := range CategoryColumns {
				if n, ok := coerceDayCount(cols[name][i]); ok {
					days[name] = n
				}
			}
			rec.CategoryDays = days
		}

		records = append(records, rec)
	}

	return records, stats
}
