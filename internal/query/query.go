// Package query answers the filter, ranking, and aggregation questions the
// dashboard frontend asks of the cleaned county table. Every function is a
// pure transform: inputs are never mutated and results are fresh slices, so
// tables can be shared read-only across any number of concurrent readers.
package query

import (
	"fmt"
	"math"
	"sort"

	"github.com/couchcryptid/county-aqi-service/internal/domain"
)

// Value column selectors accepted by TopN and AggregateByKey.
const (
	ByMedianAQI = "median_aqi"
	ByMaxAQI    = "max_aqi"
	ByHeatIndex = "avg_heat_index_f"
)

// Grouping keys accepted by AggregateByKey.
const (
	KeyState  = "state"
	KeyCounty = "county"
	KeyRegion = "region"
)

// Aggregation functions accepted by AggregateByKey.
const (
	AggMean = "mean"
	AggMax  = "max"
	AggSum  = "sum"
)

// Range is a closed numeric interval.
type Range struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// Unbounded returns a range that admits every value.
func Unbounded() Range {
	return Range{Lo: math.Inf(-1), Hi: math.Inf(1)}
}

// Contains reports whether v lies in the closed interval.
func (r Range) Contains(v float64) bool {
	return v >= r.Lo && v <= r.Hi
}

func (r Range) isZero() bool {
	return r.Lo == 0 && r.Hi == 0
}

// Filter holds the sidebar filter state. An empty Regions slice means all
// regions; an empty States slice means no state restriction. Ranges are
// inclusive on both ends and all predicates are conjunctive. The zero Range
// admits every value, so a zero Filter matches all records; set both bounds
// explicitly to restrict.
type Filter struct {
	Regions []string
	States  []string
	AQI     Range
	Heat    Range
}

// Apply returns the subset of records matching every predicate. An empty
// result is a valid outcome, not an error.
func (f Filter) Apply(records []domain.CountyRecord) []domain.CountyRecord {
	regions := toSet(f.Regions)
	states := toSet(f.States)

	out := make([]domain.CountyRecord, 0, len(records))
	for _, rec := range records {
		if len(regions) > 0 && !regions[rec.Region] {
			continue
		}
		if len(states) > 0 && !states[rec.StateCode] {
			continue
		}
		if !f.AQI.isZero() && !f.AQI.Contains(rec.MedianAQI) {
			continue
		}
		if !f.Heat.isZero() && !f.Heat.Contains(rec.AvgHeatIndexF) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// valueOf extracts the selected value column. Records whose value is missing
// (nil Max AQI) report ok=false.
func valueOf(rec domain.CountyRecord, by string) (float64, bool) {
	switch by {
	case ByMedianAQI:
		return rec.MedianAQI, true
	case ByMaxAQI:
		if rec.MaxAQI == nil {
			return 0, false
		}
		return *rec.MaxAQI, true
	case ByHeatIndex:
		return rec.AvgHeatIndexF, true
	}
	return 0, false
}

// TopN returns the n records with the largest value of the selected column,
// descending, ties broken by original row order. Records missing the value
// sort last. Returns fewer than n records when the table is smaller.
func TopN(records []domain.CountyRecord, n int, by string) ([]domain.CountyRecord, error) {
	switch by {
	case ByMedianAQI, ByMaxAQI, ByHeatIndex:
	default:
		return nil, fmt.Errorf("top-n: unknown value column %q", by)
	}
	if n <= 0 {
		return nil, fmt.Errorf("top-n: n must be positive, got %d", n)
	}

	sorted := make([]domain.CountyRecord, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		vi, oki := valueOf(sorted[i], by)
		vj, okj := valueOf(sorted[j], by)
		if oki != okj {
			return oki
		}
		return vi > vj
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n], nil
}

// Aggregate is one group of an AggregateByKey result.
type Aggregate struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// AggregateByKey groups records by state code, county name, or region and
// reduces the selected value column per group with mean, max, or sum.
// Records missing the
// value are skipped. Only keys present in the input appear in the result;
// padding absent states is a presentation concern. Output order is
// unspecified by the operation but kept sorted by key for determinism.
func AggregateByKey(records []domain.CountyRecord, key, value, agg string) ([]Aggregate, error) {
	keyOf, err := keyFunc(key)
	if err != nil {
		return nil, err
	}
	switch value {
	case ByMedianAQI, ByMaxAQI, ByHeatIndex:
	default:
		return nil, fmt.Errorf("aggregate: unknown value column %q", value)
	}
	switch agg {
	case AggMean, AggMax, AggSum:
	default:
		return nil, fmt.Errorf("aggregate: unknown aggregation %q", agg)
	}

	type acc struct {
		sum   float64
		max   float64
		count int
	}
	groups := make(map[string]*acc)
	for _, rec := range records {
		v, ok := valueOf(rec, value)
		if !ok {
			continue
		}
		k := keyOf(rec)
		g, exists := groups[k]
		if !exists {
			g = &acc{max: math.Inf(-1)}
			groups[k] = g
		}
		g.sum += v
		if v > g.max {
			g.max = v
		}
		g.count++
	}

	out := make([]Aggregate, 0, len(groups))
	for k, g := range groups {
		row := Aggregate{Key: k, Count: g.count}
		switch agg {
		case AggMean:
			row.Value = g.sum / float64(g.count)
		case AggMax:
			row.Value = g.max
		case AggSum:
			row.Value = g.sum
		}
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func keyFunc(key string) (func(domain.CountyRecord) string, error) {
	switch key {
	case KeyState:
		return func(rec domain.CountyRecord) string { return rec.StateCode }, nil
	case KeyCounty:
		return func(rec domain.CountyRecord) string { return rec.CountyName }, nil
	case KeyRegion:
		return func(rec domain.CountyRecord) string { return rec.Region }, nil
	}
	return nil, fmt.Errorf("aggregate: unknown key %q", key)
}

// CategoryTotals sums AQI category day counts across a record set, one total
// per category column. Records without category data contribute nothing.
func CategoryTotals(records []domain.CountyRecord) map[string]int {
	totals := make(map[string]int, len(domain.CategoryColumns))
	for _, name := range domain.CategoryColumns {
		totals[name] = 0
	}
	for _, rec := range records {
		for name, days := range rec.CategoryDays {
			totals[name] += days
		}
	}
	return totals
}
