// Package domain models US county-level air quality and heat index data.
//
// # Data Sources
//
// The service consumes three pre-joined CSV datasets produced by an upstream
// notebook that merges EPA annual AQI-by-county tables with NWS heat index
// summaries and county centroid coordinates:
//
//	aqi_with_lat_lon.csv                 — AQI table, raw pass-through
//	heat_with_lat_lon.csv                — heat table, raw pass-through
//	combined_with_lat_lon_and_state.csv  — the joined county table, the only
//	                                       source with a required schema
//
// # Combined Table Conventions
//
// Column headers are not fully trustworthy: exports from different spreadsheet
// tools introduce surrounding whitespace and non-breaking spaces, and the heat
// column name drifted across dataset revisions:
//
//	"Avg Daily Max Heat Index"
//	"Avg Daily Max Heat Index ( F )"
//	"Average Daily Max Heat Index (F)"
//
// All three are collapsed onto the canonical "Avg Daily Max Heat Index (F)"
// after header normalization. See [NormalizeHeader] and [CanonicalizeHeader].
//
// Numeric cells are equally unreliable: empty strings, "NA", and stray text
// appear in the AQI and coordinate columns. Coercion never fails — an
// unparseable cell becomes NaN and the row is dropped later only if the NaN
// lands in one of the four required-clean columns (Median AQI, heat index,
// longitude, latitude). See [CoerceFloat] and [BuildCountyRecords].
//
// # Region Tagging
//
// Each cleaned row is tagged with a US Census-style macro-region derived from
// its state code. The four named regions are fixed; any state code outside
// them (territories, malformed codes, blanks) maps to "Other", so the region
// label is total over all inputs. See [RegionFor].
//
// # AQI Category Day Counts
//
// Some revisions of the combined table carry per-county day counts for the
// four EPA AQI categories (Good, Moderate, Unhealthy for Sensitive Groups,
// Unhealthy). They feed the composition charts and are strictly optional:
// when any of the four columns is missing the capability flag is false and
// composition features are unavailable, which is not an error.
package domain
