package domain

// US Census-style macro-regions. RegionOther catches every state code not in
// the four named sets, so RegionFor is total.
const (
	RegionNortheast = "Northeast"
	RegionMidwest   = "Midwest"
	RegionSouth     = "South"
	RegionWest      = "West"
	RegionOther     = "Other"
)

// Regions lists the four named regions in display order.
var Regions = []string{RegionNortheast, RegionMidwest, RegionSouth, RegionWest}

var stateToRegion = buildStateToRegion()

func buildStateToRegion() map[string]string {
	sets := map[string][]string{
		RegionNortheast: {"CT", "ME", "MA", "NH", "RI", "VT", "NJ", "NY", "PA"},
		RegionMidwest:   {"IL", "IN", "MI", "OH", "WI", "IA", "KS", "MN", "MO", "NE", "ND", "SD"},
		RegionSouth:     {"DE", "FL", "GA", "MD", "NC", "SC", "VA", "DC", "WV", "AL", "KY", "MS", "TN", "AR", "LA", "OK", "TX"},
		RegionWest:      {"AZ", "CO", "ID", "MT", "NV", "NM", "UT", "WY", "AK", "CA", "HI", "OR", "WA"},
	}

	m := make(map[string]string, 51)
	for region, codes := range sets {
		for _, code := range codes {
			m[code] = region
		}
	}
	return m
}

// RegionFor maps a 2-letter state code to its macro-region. Unmapped or
// missing codes, including territories like PR and GU, map to RegionOther.
func RegionFor(stateCode string) string {
	if region, ok := stateToRegion[stateCode]; ok {
		return region
	}
	return RegionOther
}
