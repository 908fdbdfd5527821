package httpapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/county-aqi-service/internal/domain"
	"github.com/couchcryptid/county-aqi-service/internal/query"
)

// countiesResponse is the envelope for endpoints returning record sets. Rows
// is always a JSON array, never null.
type countiesResponse struct {
	Count int                   `json:"count"`
	Rows  []domain.CountyRecord `json:"rows"`
}

func (s *Server) handleCounties(w http.ResponseWriter, r *http.Request) {
	res := s.dataset(w, r)
	if res == nil {
		return
	}
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	s.metrics.Queries.WithLabelValues("filter").Inc()

	rows := filter.Apply(res.Counties)
	writeJSON(w, http.StatusOK, countiesResponse{Count: len(rows), Rows: rows})
}

func (s *Server) handleTopCounties(w http.ResponseWriter, r *http.Request) {
	res := s.dataset(w, r)
	if res == nil {
		return
	}
	q := r.URL.Query()

	filter, err := parseFilter(q)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	n, err := parseIntParam(q, "n", 10)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	by := paramOr(q, "by", query.ByMedianAQI)

	rows, err := query.TopN(filter.Apply(res.Counties), n, by)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	s.metrics.Queries.WithLabelValues("top").Inc()
	writeJSON(w, http.StatusOK, countiesResponse{Count: len(rows), Rows: rows})
}

type aggregateResponse struct {
	Key    string            `json:"key"`
	Value  string            `json:"value"`
	Agg    string            `json:"agg"`
	Groups []query.Aggregate `json:"groups"`
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	res := s.dataset(w, r)
	if res == nil {
		return
	}
	q := r.URL.Query()

	filter, err := parseFilter(q)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	key := paramOr(q, "key", query.KeyState)
	value := paramOr(q, "value", query.ByMedianAQI)
	agg := paramOr(q, "agg", query.AggMean)

	groups, err := query.AggregateByKey(filter.Apply(res.Counties), key, value, agg)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	s.metrics.Queries.WithLabelValues("aggregate").Inc()
	writeJSON(w, http.StatusOK, aggregateResponse{Key: key, Value: value, Agg: agg, Groups: groups})
}

type categoriesResponse struct {
	Available bool           `json:"available"`
	View      string         `json:"view"`
	Totals    map[string]int `json:"totals"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	res := s.dataset(w, r)
	if res == nil {
		return
	}
	q := r.URL.Query()
	view := paramOr(q, "view", "all")

	if !res.HasCategoryData {
		writeJSON(w, http.StatusOK, categoriesResponse{Available: false, View: view, Totals: map[string]int{}})
		return
	}

	filter, err := parseFilter(q)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	rows := filter.Apply(res.Counties)
	switch view {
	case "all":
	case "top10":
		var err error
		rows, err = query.TopN(rows, 10, query.ByMedianAQI)
		if err != nil {
			writeBadRequest(w, err)
			return
		}
	default:
		writeBadRequest(w, fmt.Errorf("unknown view %q, want all or top10", view))
		return
	}

	s.metrics.Queries.WithLabelValues("categories").Inc()
	writeJSON(w, http.StatusOK, categoriesResponse{
		Available: true,
		View:      view,
		Totals:    query.CategoryTotals(rows),
	})
}

type boundsResponse struct {
	AQI  query.Range `json:"aqi"`
	Heat query.Range `json:"heat"`
}

func (s *Server) handleBounds(w http.ResponseWriter, r *http.Request) {
	res := s.dataset(w, r)
	if res == nil {
		return
	}
	s.metrics.Queries.WithLabelValues("bounds").Inc()
	writeJSON(w, http.StatusOK, boundsResponse{
		AQI:  query.AQIBounds(res.Counties),
		Heat: query.HeatBounds(res.Counties),
	})
}

type statesResponse struct {
	Count  int               `json:"count"`
	States []domain.StateRef `json:"states"`
}

// handleStates serves the external reference list. Disabled or failing
// lookups degrade to an empty list; the frontend just skips chart padding.
func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	states := []domain.StateRef{}
	if s.states != nil {
		fetched, err := s.states.ListStates(r.Context())
		if err != nil {
			s.logger.Error("state reference fetch failed", "error", err)
		} else {
			states = fetched
		}
	}
	writeJSON(w, http.StatusOK, statesResponse{Count: len(states), States: states})
}

type capabilitiesResponse struct {
	CategoryDayCounts bool      `json:"category_day_counts"`
	StatesReference   bool      `json:"states_reference"`
	Regions           []string  `json:"regions"`
	LoadedAt          time.Time `json:"loaded_at"`
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	res := s.dataset(w, r)
	if res == nil {
		return
	}
	writeJSON(w, http.StatusOK, capabilitiesResponse{
		CategoryDayCounts: res.HasCategoryData,
		StatesReference:   s.states != nil,
		Regions:           domain.Regions,
		LoadedAt:          res.LoadedAt,
	})
}

// parseFilter reads the sidebar filter parameters. List parameters accept
// both repeated keys and comma-separated values; absent range bounds default
// to unbounded.
func parseFilter(q url.Values) (query.Filter, error) {
	f := query.Filter{
		Regions: splitList(q["regions"]),
		States:  splitList(q["states"]),
		AQI:     query.Unbounded(),
		Heat:    query.Unbounded(),
	}

	var err error
	if f.AQI.Lo, err = parseFloatParam(q, "aqi_min", f.AQI.Lo); err != nil {
		return query.Filter{}, err
	}
	if f.AQI.Hi, err = parseFloatParam(q, "aqi_max", f.AQI.Hi); err != nil {
		return query.Filter{}, err
	}
	if f.Heat.Lo, err = parseFloatParam(q, "heat_min", f.Heat.Lo); err != nil {
		return query.Filter{}, err
	}
	if f.Heat.Hi, err = parseFloatParam(q, "heat_max", f.Heat.Hi); err != nil {
		return query.Filter{}, err
	}
	return f, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func paramOr(q url.Values, name, def string) string {
	if v := q.Get(name); v != "" {
		return v
	}
	return def
}

func parseFloatParam(q url.Values, name string, def float64) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %q is not a number", name, raw)
	}
	return v, nil
}

func parseIntParam(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %q is not an integer", name, raw)
	}
	return v, nil
}
