package query_test

import (
	"math"
	"testing"

	"github.com/couchcryptid/county-aqi-service/internal/domain"
	"github.com/couchcryptid/county-aqi-service/internal/query"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func county(name, state string, medianAQI, heat float64) domain.CountyRecord {
	return domain.CountyRecord{
		CountyName:    name,
		StateCode:     state,
		Region:        domain.RegionFor(state),
		MedianAQI:     medianAQI,
		AvgHeatIndexF: heat,
		Longitude:     -100,
		Latitude:      40,
	}
}

func sampleTable() []domain.CountyRecord {
	return []domain.CountyRecord{
		county("Maricopa", "AZ", 55, 108),
		county("Cook", "IL", 40, 90),
		county("Harris", "TX", 48, 102),
		county("Suffolk", "NY", 35, 85),
		county("San Juan", "PR", 25, 95),
	}
}

func TestFilter_Conjunction(t *testing.T) {
	table := sampleTable()
	f := query.Filter{
		Regions: []string{domain.RegionWest, domain.RegionSouth},
		AQI:     query.Range{Lo: 45, Hi: 60},
		Heat:    query.Range{Lo: 100, Hi: 110},
	}

	got := f.Apply(table)
	require.Len(t, got, 2)
	for _, rec := range got {
		assert.Contains(t, []string{domain.RegionWest, domain.RegionSouth}, rec.Region)
		assert.GreaterOrEqual(t, rec.MedianAQI, 45.0)
		assert.LessOrEqual(t, rec.MedianAQI, 60.0)
		assert.GreaterOrEqual(t, rec.AvgHeatIndexF, 100.0)
		assert.LessOrEqual(t, rec.AvgHeatIndexF, 110.0)
	}
}

func TestFilter_RangesAreInclusive(t *testing.T) {
	table := sampleTable()
	f := query.Filter{
		AQI:  query.Range{Lo: 55, Hi: 55},
		Heat: query.Range{Lo: 108, Hi: 108},
	}

	got := f.Apply(table)
	require.Len(t, got, 1)
	assert.Equal(t, "Maricopa", got[0].CountyName)
}

func TestFilter_StateRestriction(t *testing.T) {
	table := sampleTable()

	unrestricted := query.Filter{AQI: query.Unbounded(), Heat: query.Unbounded()}
	assert.Len(t, unrestricted.Apply(table), len(table), "empty states means no restriction")

	restricted := query.Filter{
		States: []string{"IL", "NY"},
		AQI:    query.Unbounded(),
		Heat:   query.Unbounded(),
	}
	got := restricted.Apply(table)
	require.Len(t, got, 2)
	assert.Equal(t, "Cook", got[0].CountyName)
	assert.Equal(t, "Suffolk", got[1].CountyName)
}

func TestFilter_EmptyRegionsMeansAll(t *testing.T) {
	table := sampleTable()
	f := query.Filter{AQI: query.Unbounded(), Heat: query.Unbounded()}
	assert.Len(t, f.Apply(table), len(table))
}

func TestFilter_ZeroValueMatchesAll(t *testing.T) {
	table := sampleTable()
	assert.Len(t, query.Filter{}.Apply(table), len(table))

	// A zero range on one axis does not disable the other predicates.
	f := query.Filter{Regions: []string{domain.RegionMidwest}}
	got := f.Apply(table)
	require.Len(t, got, 1)
	assert.Equal(t, "Cook", got[0].CountyName)
}

// Widening any predicate never shrinks the result set.
func TestFilter_Monotonicity(t *testing.T) {
	table := sampleTable()

	narrow := query.Filter{
		Regions: []string{domain.RegionWest},
		States:  []string{"AZ"},
		AQI:     query.Range{Lo: 50, Hi: 60},
		Heat:    query.Range{Lo: 105, Hi: 110},
	}
	narrowResult := narrow.Apply(table)

	widenings := []query.Filter{
		{Regions: []string{domain.RegionWest, domain.RegionSouth}, States: narrow.States, AQI: narrow.AQI, Heat: narrow.Heat},
		{Regions: narrow.Regions, States: nil, AQI: narrow.AQI, Heat: narrow.Heat},
		{Regions: narrow.Regions, States: narrow.States, AQI: query.Range{Lo: 0, Hi: 150}, Heat: narrow.Heat},
		{Regions: narrow.Regions, States: narrow.States, AQI: narrow.AQI, Heat: query.Range{Lo: 60, Hi: 120}},
	}
	for i, wide := range widenings {
		wideResult := wide.Apply(table)
		assert.GreaterOrEqual(t, len(wideResult), len(narrowResult), "widening %d", i)

		members := map[string]bool{}
		for _, rec := range wideResult {
			members[rec.StateCode+"/"+rec.CountyName] = true
		}
		for _, rec := range narrowResult {
			assert.True(t, members[rec.StateCode+"/"+rec.CountyName],
				"widening %d lost %s/%s", i, rec.StateCode, rec.CountyName)
		}
	}
}

func TestFilter_EmptyTable(t *testing.T) {
	f := query.Filter{AQI: query.Unbounded(), Heat: query.Unbounded()}
	got := f.Apply(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	table := sampleTable()
	want := sampleTable()

	f := query.Filter{States: []string{"AZ"}, AQI: query.Unbounded(), Heat: query.Unbounded()}
	_ = f.Apply(table)

	if diff := cmp.Diff(want, table); diff != "" {
		t.Fatalf("input table mutated (-want +got):\n%s", diff)
	}
}

func TestTopN(t *testing.T) {
	table := sampleTable()

	top2, err := query.TopN(table, 2, query.ByMedianAQI)
	require.NoError(t, err)
	require.Len(t, top2, 2)
	assert.Equal(t, "Maricopa", top2[0].CountyName)
	assert.Equal(t, "Harris", top2[1].CountyName)
}

func TestTopN_StableTies(t *testing.T) {
	table := []domain.CountyRecord{
		county("First", "OH", 50, 90),
		county("Second", "MI", 50, 91),
		county("Third", "WI", 50, 92),
		county("Lower", "IN", 10, 80),
	}

	top3, err := query.TopN(table, 3, query.ByMedianAQI)
	require.NoError(t, err)
	require.Len(t, top3, 3)
	assert.Equal(t, "First", top3[0].CountyName)
	assert.Equal(t, "Second", top3[1].CountyName)
	assert.Equal(t, "Third", top3[2].CountyName)
}

func TestTopN_LargerThanTable(t *testing.T) {
	table := sampleTable()
	got, err := query.TopN(table, 100, query.ByHeatIndex)
	require.NoError(t, err)
	assert.Len(t, got, len(table))
	assert.Equal(t, "Maricopa", got[0].CountyName)
}

func TestTopN_EmptyTable(t *testing.T) {
	got, err := query.TopN(nil, 10, query.ByMedianAQI)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTopN_MissingMaxAQISortsLast(t *testing.T) {
	withMax := county("HasMax", "CA", 30, 90)
	maxVal := 120.0
	withMax.MaxAQI = &maxVal
	withoutMax := county("NoMax", "OR", 90, 95)

	got, err := query.TopN([]domain.CountyRecord{withoutMax, withMax}, 2, query.ByMaxAQI)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "HasMax", got[0].CountyName)
	assert.Equal(t, "NoMax", got[1].CountyName)
}

func TestTopN_InvalidInputs(t *testing.T) {
	_, err := query.TopN(sampleTable(), 10, "population")
	assert.Error(t, err)

	_, err = query.TopN(sampleTable(), 0, query.ByMedianAQI)
	assert.Error(t, err)
}

// TestTopN_LargeTable mirrors the dashboard's actual use: top 10 of a table
// with thousands of rows.
func TestTopN_LargeTable(t *testing.T) {
	table := make([]domain.CountyRecord, 0, 3000)
	for i := 0; i < 3000; i++ {
		table = append(table, county("County", "KS", float64(i%200), 90))
	}

	top10, err := query.TopN(table, 10, query.ByMedianAQI)
	require.NoError(t, err)
	require.Len(t, top10, 10)
	for _, rec := range top10 {
		assert.Equal(t, 199.0, rec.MedianAQI, "15 rows carry the max value 199; the top 10 are all ties")
	}
}

func TestAggregateByKey_Mean(t *testing.T) {
	table := []domain.CountyRecord{
		county("A", "TX", 40, 100),
		county("B", "TX", 60, 110),
		county("C", "OK", 30, 95),
	}

	got, err := query.AggregateByKey(table, query.KeyState, query.ByMedianAQI, query.AggMean)
	require.NoError(t, err)

	want := []query.Aggregate{
		{Key: "OK", Value: 30, Count: 1},
		{Key: "TX", Value: 50, Count: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("aggregate mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateByKey_MaxByCounty(t *testing.T) {
	table := []domain.CountyRecord{
		county("Cook", "IL", 40, 90),
		county("Cook", "IL", 55, 92),
		county("Lake", "IL", 35, 88),
	}

	got, err := query.AggregateByKey(table, query.KeyCounty, query.ByHeatIndex, query.AggMax)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, query.Aggregate{Key: "Cook", Value: 92, Count: 2}, got[0])
	assert.Equal(t, query.Aggregate{Key: "Lake", Value: 88, Count: 1}, got[1])
}

func TestAggregateByKey_SkipsMissingValues(t *testing.T) {
	withMax := county("HasMax", "CA", 30, 90)
	maxVal := 120.0
	withMax.MaxAQI = &maxVal
	withoutMax := county("NoMax", "CA", 90, 95)

	got, err := query.AggregateByKey([]domain.CountyRecord{withMax, withoutMax}, query.KeyState, query.ByMaxAQI, query.AggMean)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 120.0, got[0].Value)
	assert.Equal(t, 1, got[0].Count)
}

// Region grouping feeds the per-region composition chart in one query.
func TestAggregateByKey_SumByRegion(t *testing.T) {
	table := []domain.CountyRecord{
		county("Maricopa", "AZ", 55, 108),
		county("Los Angeles", "CA", 60, 98),
		county("Cook", "IL", 40, 90),
	}

	got, err := query.AggregateByKey(table, query.KeyRegion, query.ByMedianAQI, query.AggSum)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, query.Aggregate{Key: domain.RegionMidwest, Value: 40, Count: 1}, got[0])
	assert.Equal(t, query.Aggregate{Key: domain.RegionWest, Value: 115, Count: 2}, got[1])
}

func TestAggregateByKey_NeverSynthesizesKeys(t *testing.T) {
	got, err := query.AggregateByKey(sampleTable(), query.KeyState, query.ByMedianAQI, query.AggMean)
	require.NoError(t, err)
	assert.Len(t, got, 5, "one row per state present in the input, no padding")
}

func TestAggregateByKey_InvalidInputs(t *testing.T) {
	_, err := query.AggregateByKey(nil, "zip", query.ByMedianAQI, query.AggMean)
	assert.Error(t, err)

	_, err = query.AggregateByKey(nil, query.KeyState, "population", query.AggMean)
	assert.Error(t, err)

	_, err = query.AggregateByKey(nil, query.KeyState, query.ByMedianAQI, "median")
	assert.Error(t, err)
}

func TestCategoryTotals(t *testing.T) {
	a := county("A", "AZ", 50, 100)
	a.CategoryDays = map[string]int{"Good Days": 200, "Moderate Days": 100}
	b := county("B", "IL", 40, 90)
	b.CategoryDays = map[string]int{"Good Days": 50, "Unhealthy Days": 10}
	c := county("C", "TX", 45, 95) // no category data

	totals := query.CategoryTotals([]domain.CountyRecord{a, b, c})
	assert.Equal(t, 250, totals["Good Days"])
	assert.Equal(t, 100, totals["Moderate Days"])
	assert.Equal(t, 10, totals["Unhealthy Days"])
	assert.Equal(t, 0, totals["Unhealthy for Sensitive Groups Days"])
}

func TestCategoryTotals_Empty(t *testing.T) {
	totals := query.CategoryTotals(nil)
	for _, name := range domain.CategoryColumns {
		assert.Contains(t, totals, name)
		assert.Equal(t, 0, totals[name])
	}
}

func TestAQIBounds(t *testing.T) {
	t.Run("empty table falls back to sentinel", func(t *testing.T) {
		assert.Equal(t, query.Range{Lo: 0, Hi: 150}, query.AQIBounds(nil))
	})

	t.Run("observed max below 150 keeps the floor", func(t *testing.T) {
		assert.Equal(t, query.Range{Lo: 0, Hi: 150}, query.AQIBounds(sampleTable()))
	})

	t.Run("observed max above 150 wins", func(t *testing.T) {
		table := append(sampleTable(), county("Plumas", "CA", 178, 99))
		assert.Equal(t, query.Range{Lo: 0, Hi: 178}, query.AQIBounds(table))
	})
}

func TestHeatBounds(t *testing.T) {
	t.Run("empty table falls back to sentinel", func(t *testing.T) {
		assert.Equal(t, query.Range{Lo: 60, Hi: 120}, query.HeatBounds(nil))
	})

	t.Run("floors min and keeps 120 ceiling", func(t *testing.T) {
		table := []domain.CountyRecord{
			county("A", "MN", 30, 75.6),
			county("B", "FL", 50, 104.2),
		}
		assert.Equal(t, query.Range{Lo: 75, Hi: 120}, query.HeatBounds(table))
	})

	t.Run("observed max above 120 wins", func(t *testing.T) {
		table := []domain.CountyRecord{county("Yuma", "AZ", 60, 123.4)}
		assert.Equal(t, query.Range{Lo: 123, Hi: 124}, query.HeatBounds(table))
	})
}

func TestBoundsNaNFree(t *testing.T) {
	for _, r := range []query.Range{query.AQIBounds(nil), query.HeatBounds(nil)} {
		assert.False(t, math.IsNaN(r.Lo))
		assert.False(t, math.IsNaN(r.Hi))
	}
}
