// Package pipeline orchestrates the load step: parse the three CSV sources,
// reconcile schema drift, coerce types, drop incomplete rows, and tag
// regions. The result is memoized by source identity so repeated queries in
// one session never re-parse the files.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/county-aqi-service/internal/domain"
	"github.com/couchcryptid/county-aqi-service/internal/observability"
)

// ErrNoRows is returned by a Source whose table carries a header but no data
// rows. The loader treats it as an empty table, not a failure.
var ErrNoRows = errors.New("source has no data rows")

// Source supplies one raw table. ID must be stable for identical inputs; it
// keys the load cache.
type Source interface {
	ID() string
	Extract(ctx context.Context) (dataframe.DataFrame, error)
}

// Result is one immutable load: the three raw tables plus the cleaned,
// region-tagged county table. Callers must not mutate it; share it
// read-only across any number of concurrent readers.
type Result struct {
	AQI      dataframe.DataFrame
	Heat     dataframe.DataFrame
	Combined dataframe.DataFrame

	Counties        []domain.CountyRecord
	HasCategoryData bool

	RowsDropped        int
	SynthesizedColumns []string
	LoadedAt           time.Time
}

// Loader builds and caches load results.
type Loader struct {
	aqi      Source
	heat     Source
	combined Source
	logger   *slog.Logger
	metrics  *observability.Metrics

	group singleflight.Group
	mu    sync.Mutex
	cache map[string]*Result
	ready atomic.Bool
}

// NewLoader creates a Loader over the three sources.
func NewLoader(aqi, heat, combined Source, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{
		aqi:      aqi,
		heat:     heat,
		combined: combined,
		logger:   logger,
		metrics:  metrics,
		cache:    make(map[string]*Result),
	}
}

// CheckReadiness returns nil once a load has succeeded.
func (l *Loader) CheckReadiness(_ context.Context) error {
	if !l.ready.Load() {
		return errors.New("dataset has not been loaded yet")
	}
	return nil
}

// Load returns the cleaned dataset, parsing the sources at most once per
// distinct set of input identities. Concurrent callers share a single parse.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	key := l.aqi.ID() + "|" + l.heat.ID() + "|" + l.combined.ID()

	l.mu.Lock()
	if res, ok := l.cache[key]; ok {
		l.mu.Unlock()
		return res, nil
	}
	l.mu.Unlock()

	v, err, _ := l.group.Do(key, func() (any, error) {
		res, err := l.build(ctx)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cache[key] = res
		l.mu.Unlock()
		l.ready.Store(true)
		l.metrics.DatasetLoaded.Set(1)
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func (l *Loader) build(ctx context.Context) (*Result, error) {
	start := time.Now()

	aqi, err := l.extract(ctx, l.aqi)
	if err != nil {
		return nil, fmt.Errorf("load aqi source: %w", err)
	}
	heat, err := l.extract(ctx, l.heat)
	if err != nil {
		return nil, fmt.Errorf("load heat source: %w", err)
	}
	combined, err := l.extract(ctx, l.combined)
	if err != nil {
		return nil, fmt.Errorf("load combined source: %w", err)
	}

	aqi = normalizeHeaders(aqi, false)
	heat = normalizeHeaders(heat, false)
	// Header variants are only collapsed on the combined table.
	combined = normalizeHeaders(combined, true)

	combined, synthesized := ensureRequiredColumns(combined)
	for _, name := range synthesized {
		l.logger.Warn("missing expected column in combined source, synthesizing as all-missing", "column", name)
		l.metrics.ColumnsSynthesized.Inc()
	}

	cols := projectColumns(combined)
	counties, stats := domain.BuildCountyRecords(cols)

	res := &Result{
		AQI:                aqi,
		Heat:               heat,
		Combined:           combined,
		Counties:           counties,
		HasCategoryData:    hasCategoryColumns(combined),
		RowsDropped:        stats.RowsDropped,
		SynthesizedColumns: synthesized,
		LoadedAt:           domain.Now(),
	}

	l.metrics.RowsLoaded.Add(float64(len(counties)))
	l.metrics.RowsDropped.Add(float64(stats.RowsDropped))
	l.metrics.LoadDuration.Observe(time.Since(start).Seconds())

	l.logger.Info("dataset loaded",
		"rows_in", stats.RowsIn,
		"rows_clean", len(counties),
		"rows_dropped", stats.RowsDropped,
		"category_data", res.HasCategoryData,
	)
	return res, nil
}

// extract pulls a source's table, mapping ErrNoRows to an empty frame so a
// header-only CSV degrades to an empty table instead of failing the load.
func (l *Loader) extract(ctx context.Context, src Source) (dataframe.DataFrame, error) {
	df, err := src.Extract(ctx)
	if errors.Is(err, ErrNoRows) {
		l.logger.Warn("source has no data rows", "source", src.ID())
		return dataframe.DataFrame{}, nil
	}
	return df, err
}

// normalizeHeaders rewrites a frame's column names through the domain header
// normalization, optionally collapsing known variants onto canonical names.
func normalizeHeaders(df dataframe.DataFrame, canonicalize bool) dataframe.DataFrame {
	names := df.Names()
	if len(names) == 0 {
		return df
	}

	normalized := make([]string, len(names))
	for i, name := range names {
		n := domain.NormalizeHeader(name)
		if canonicalize {
			n = domain.CanonicalizeHeader(n)
		}
		normalized[i] = n
	}

	if err := df.SetNames(normalized...); err != nil {
		// Duplicate headers after normalization; keep the originals rather
		// than fail the load.
		return df
	}
	return df
}

// ensureRequiredColumns synthesizes any absent required column as all-empty
// strings so downstream code sees a stable shape. Returns the (possibly
// extended) frame and the names that were synthesized.
func ensureRequiredColumns(df dataframe.DataFrame) (dataframe.DataFrame, []string) {
	present := make(map[string]bool, len(df.Names()))
	for _, name := range df.Names() {
		present[name] = true
	}

	var synthesized []string
	for _, name := range domain.RequiredColumns {
		if present[name] {
			continue
		}
		synthesized = append(synthesized, name)
		if df.Nrow() == 0 {
			continue
		}
		df = df.Mutate(series.New(make([]string, df.Nrow()), series.String, name))
	}
	return df, synthesized
}

// projectColumns extracts the required and category columns as raw string
// slices keyed by canonical name.
func projectColumns(df dataframe.DataFrame) map[string][]string {
	present := make(map[string]bool, len(df.Names()))
	for _, name := range df.Names() {
		present[name] = true
	}

	wanted := make([]string, 0, len(domain.RequiredColumns)+1+len(domain.CategoryColumns))
	wanted = append(wanted, domain.RequiredColumns...)
	wanted = append(wanted, domain.ColMaxAQI)
	wanted = append(wanted, domain.CategoryColumns...)

	cols := make(map[string][]string)
	for _, name := range wanted {
		if !present[name] {
			continue
		}
		cols[name] = df.Col(name).Records()
	}
	return cols
}

func hasCategoryColumns(df dataframe.DataFrame) bool {
	present := make(map[string]bool, len(df.Names()))
	for _, name := range df.Names() {
		present[name] = true
	}
	for _, name := range domain.CategoryColumns {
		if !present[name] {
			return false
		}
	}
	return true
}

// ParseCSVRecords builds a string-typed frame from raw CSV records (header
// row first). Ragged rows are padded or truncated to the header width; type
// coercion is the domain's job, so every column stays a string.
func ParseCSVRecords(records [][]string) (dataframe.DataFrame, error) {
	if len(records) < 2 {
		return dataframe.DataFrame{}, ErrNoRows
	}

	width := len(records[0])
	squared := make([][]string, len(records))
	for i, row := range records {
		if len(row) == width {
			squared[i] = row
			continue
		}
		fixed := make([]string, width)
		copy(fixed, row)
		squared[i] = fixed
	}

	df := dataframe.LoadRecords(squared,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("parse csv records: %w", df.Err)
	}
	return df, nil
}

// Describe summarizes a load result for logs.
func (r *Result) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d counties", len(r.Counties))
	if r.RowsDropped > 0 {
		fmt.Fprintf(&b, ", %d rows dropped", r.RowsDropped)
	}
	if len(r.SynthesizedColumns) > 0 {
		fmt.Fprintf(&b, ", synthesized %s", strings.Join(r.SynthesizedColumns, ", "))
	}
	return b.String()
}
