package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	t.Run("trims surrounding whitespace", func(t *testing.T) {
		assert.Equal(t, "Median AQI", NormalizeHeader("  Median AQI \t"))
	})

	t.Run("collapses non-breaking spaces", func(t *testing.T) {
		assert.Equal(t, "Max AQI", NormalizeHeader("Max AQI"))
		assert.Equal(t, "Max AQI", NormalizeHeader("Max AQI"))
	})

	t.Run("leading nbsp becomes trimmable", func(t *testing.T) {
		assert.Equal(t, "longitude", NormalizeHeader(" longitude "))
	})
}

func TestCanonicalizeHeader(t *testing.T) {
	variants := []string{
		"Avg Daily Max Heat Index",
		"Avg Daily Max Heat Index ( F )",
		"Average Daily Max Heat Index (F)",
	}
	for _, v := range variants {
		assert.Equal(t, ColHeatIndex, CanonicalizeHeader(v), "variant %q", v)
	}

	// Canonical name and unrelated headers pass through unchanged.
	assert.Equal(t, ColHeatIndex, CanonicalizeHeader(ColHeatIndex))
	assert.Equal(t, "County_Formatted", CanonicalizeHeader("County_Formatted"))
}

func TestCoerceFloat(t *testing.T) {
	assert.Equal(t, 55.0, CoerceFloat("55"))
	assert.Equal(t, -112.07, CoerceFloat(" -112.07 "))

	for _, bad := range []string{"", "NA", "n/a", "12,5", "abc"} {
		assert.True(t, math.IsNaN(CoerceFloat(bad)), "%q should coerce to NaN", bad)
	}
}

func TestRegionFor(t *testing.T) {
	assert.Equal(t, RegionWest, RegionFor("AZ"))
	assert.Equal(t, RegionMidwest, RegionFor("IL"))
	assert.Equal(t, RegionNortheast, RegionFor("NY"))
	assert.Equal(t, RegionSouth, RegionFor("TX"))
	assert.Equal(t, RegionSouth, RegionFor("DC"))

	// Territories, blanks, and junk all land in Other.
	for _, code := range []string{"PR", "GU", "VI", "", "XX", "az"} {
		assert.Equal(t, RegionOther, RegionFor(code), "code %q", code)
	}
}

// TestRegionFor_Totality checks every declared state code maps to its region
// and that the five labels are the only possible outputs.
func TestRegionFor_Totality(t *testing.T) {
	declared := map[string][]string{
		RegionNortheast: {"CT", "ME", "MA", "NH", "RI", "VT", "NJ", "NY", "PA"},
		RegionMidwest:   {"IL", "IN", "MI", "OH", "WI", "IA", "KS", "MN", "MO", "NE", "ND", "SD"},
		RegionSouth:     {"DE", "FL", "GA", "MD", "NC", "SC", "VA", "DC", "WV", "AL", "KY", "MS", "TN", "AR", "LA", "OK", "TX"},
		RegionWest:      {"AZ", "CO", "ID", "MT", "NV", "NM", "UT", "WY", "AK", "CA", "HI", "OR", "WA"},
	}

	valid := map[string]bool{
		RegionNortheast: true,
		RegionMidwest:   true,
		RegionSouth:     true,
		RegionWest:      true,
		RegionOther:     true,
	}

	total := 0
	for region, codes := range declared {
		for _, code := range codes {
			assert.Equal(t, region, RegionFor(code))
			total++
		}
	}
	assert.Equal(t, 51, total, "50 states plus DC")

	// Probe the whole two-letter space: nothing outside the declared sets
	// may map to a named region.
	declaredSet := map[string]bool{}
	for _, codes := range declared {
		for _, code := range codes {
			declaredSet[code] = true
		}
	}
	for a := 'A'; a <= 'Z'; a++ {
		for b := 'A'; b <= 'Z'; b++ {
			code := string(a) + string(b)
			region := RegionFor(code)
			require.True(t, valid[region], "region %q for %q", region, code)
			if !declaredSet[code] {
				assert.Equal(t, RegionOther, region, "code %q", code)
			}
		}
	}
}

func buildCols(headers []string, rows ...[]string) map[string][]string {
	cols := make(map[string][]string, len(headers))
	for j, h := range headers {
		col := make([]string, len(rows))
		for i, row := range rows {
			col[i] = row[j]
		}
		cols[h] = col
	}
	return cols
}

func TestBuildCountyRecords_CleansAndTags(t *testing.T) {
	headers := []string{ColMedianAQI, ColMaxAQI, ColHeatIndex, ColLongitude, ColLatitude, ColCounty, ColState}
	cols := buildCols(headers,
		[]string{"55", "132", "108", "-112.07", "33.45", "Maricopa", "AZ"},
		[]string{"40", "", "90", "-87.68", "41.84", "Cook", "IL"},
		[]string{"NA", "80", "95", "-90.0", "35.0", "Broken", "TN"},     // bad median AQI → dropped
		[]string{"30", "60", "88", "oops", "36.0", "NoCoords", "KY"},    // bad longitude → dropped
		[]string{"25", "50", "101", "-66.5", "18.2", "San Juan", "PR"},  // unmapped state → Other
	)

	records, stats := BuildCountyRecords(cols)

	assert.Equal(t, 5, stats.RowsIn)
	assert.Equal(t, 2, stats.RowsDropped)
	require.Len(t, records, 3)

	maricopa := records[0]
	assert.Equal(t, "Maricopa", maricopa.CountyName)
	assert.Equal(t, "AZ", maricopa.StateCode)
	assert.Equal(t, RegionWest, maricopa.Region)
	assert.Equal(t, 55.0, maricopa.MedianAQI)
	require.NotNil(t, maricopa.MaxAQI)
	assert.Equal(t, 132.0, *maricopa.MaxAQI)
	assert.Equal(t, 108.0, maricopa.AvgHeatIndexF)

	cook := records[1]
	assert.Equal(t, RegionMidwest, cook.Region)
	assert.Nil(t, cook.MaxAQI, "empty Max AQI cell stays missing")

	sanJuan := records[2]
	assert.Equal(t, RegionOther, sanJuan.Region)
}

func TestBuildCountyRecords_CategoryDays(t *testing.T) {
	headers := []string{ColMedianAQI, ColHeatIndex, ColLongitude, ColLatitude, ColCounty, ColState}
	headers = append(headers, CategoryColumns...)
	cols := buildCols(headers,
		[]string{"55", "108", "-112.07", "33.45", "Maricopa", "AZ", "200", "120.0", "30", "15"},
		[]string{"40", "90", "-87.68", "41.84", "Cook", "IL", "250", "90", "bad", "5"},
	)

	records, _ := BuildCountyRecords(cols)
	require.Len(t, records, 2)

	require.NotNil(t, records[0].CategoryDays)
	assert.Equal(t, 200, records[0].CategoryDays["Good Days"])
	assert.Equal(t, 120, records[0].CategoryDays["Moderate Days"])
	assert.Equal(t, 15, records[0].CategoryDays["Unhealthy Days"])

	// Unparseable day counts are omitted, not zeroed.
	_, ok := records[1].CategoryDays["Unhealthy for Sensitive Groups Days"]
	assert.False(t, ok)
	assert.Equal(t, 5, records[1].CategoryDays["Unhealthy Days"])
}

func TestBuildCountyRecords_NoCategoryColumns(t *testing.T) {
	headers := []string{ColMedianAQI, ColHeatIndex, ColLongitude, ColLatitude, ColCounty, ColState}
	cols := buildCols(headers,
		[]string{"55", "108", "-112.07", "33.45", "Maricopa", "AZ"},
	)

	records, _ := BuildCountyRecords(cols)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].CategoryDays)
}

func TestBuildCountyRecords_Empty(t *testing.T) {
	records, stats := BuildCountyRecords(map[string][]string{})
	assert.Empty(t, records)
	assert.Equal(t, 0, stats.RowsIn)
	assert.Equal(t, 0, stats.RowsDropped)
}
