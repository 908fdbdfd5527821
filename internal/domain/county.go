package domain

// Canonical combined-table column names after header normalization.
const (
	ColMedianAQI = "Median AQI"
	ColMaxAQI    = "Max AQI"
	ColHeatIndex = "Avg Daily Max Heat Index (F)"
	ColLongitude = "longitude"
	ColLatitude  = "latitude"
	ColCounty    = "County_Formatted"
	ColState     = "State_y"
)

// RequiredColumns must be present on the combined table after normalization.
// A missing column is synthesized as all-missing so downstream code sees a
// stable shape; Max AQI is deliberately not required.
var RequiredColumns = []string{
	ColMedianAQI,
	ColHeatIndex,
	ColLongitude,
	ColLatitude,
	ColCounty,
	ColState,
}

// CategoryColumns are the optional AQI category day-count columns. The
// composition capability is available only when all four are present.
var CategoryColumns = []string{
	"Good Days",
	"Moderate Days",
	"Unhealthy for Sensitive Groups Days",
	"Unhealthy Days",
}

// CountyRecord is one row of the cleaned county table. A record exists only
// if its median AQI, heat index, longitude, and latitude all coerced to
// valid numbers; MaxAQI is nil when the source column was absent or the cell
// did not parse.
type CountyRecord struct {
	CountyName    string         `json:"county_name"`
	StateCode     string         `json:"state_code"`
	Region        string         `json:"region"`
	MedianAQI     float64        `json:"median_aqi"`
	MaxAQI        *float64       `json:"max_aqi,omitempty"`
	AvgHeatIndexF float64        `json:"avg_heat_index_f"`
	Longitude     float64        `json:"longitude"`
	Latitude      float64        `json:"latitude"`
	CategoryDays  map[string]int `json:"category_day_counts,omitempty"`
}

// StateRef is one entry of the external US state reference list used by the
// presentation layer to pad state bar charts with empty-valued bars.
type StateRef struct {
	Name string `json:"name"`
	Code string `json:"code"`
}
