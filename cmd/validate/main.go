// Command validate performs data integrity checks across the three CSV
// sources: parseability, combined-table schema after header normalization,
// row-level cleanability, and region coverage of the cleaned table.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -aqi data/aqi_with_lat_lon.csv \
//	  -heat data/heat_with_lat_lon.csv \
//	  -combined data/combined_with_lat_lon_and_state.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/couchcryptid/county-aqi-service/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	aqiPath := flag.String("aqi", "", "path to the AQI CSV")
	heatPath := flag.String("heat", "", "path to the heat index CSV")
	combinedPath := flag.String("combined", "", "path to the combined CSV")
	flag.Parse()

	if *aqiPath == "" || *heatPath == "" || *combinedPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*aqiPath, *heatPath, *combinedPath); code != 0 {
		os.Exit(code)
	}
}

func run(aqiPath, heatPath, combinedPath string) int {
	fmt.Println("=== County AQI Data Integrity Validation ===")
	fmt.Println()

	sources := map[string]string{
		"aqi":      aqiPath,
		"heat":     heatPath,
		"combined": combinedPath,
	}
	tables := make(map[string][][]string, len(sources))
	parsePhase := &phase{name: "Source parseability"}
	for name, path := range sources {
		records, err := readCSV(path)
		if err != nil {
			parsePhase.errorf("%s: %v", name, err)
			continue
		}
		if len(records) < 2 {
			parsePhase.errorf("%s: no data rows (%d total rows)", name, len(records))
			continue
		}
		tables[name] = records
		fmt.Printf("  loaded %s: %d data rows\n", name, len(records)-1)
	}

	combined := tables["combined"]
	schemaPhase := validateCombinedSchema(combined)

	var counties []domain.CountyRecord
	var stats domain.CleanStats
	if combined != nil && schemaPhase.passed() {
		counties, stats = cleanCombined(combined)
	}
	rowPhase := validateRowIntegrity(counties, stats)
	regionPhase := validateRegionCoverage(counties)

	phases := []*phase{parsePhase, schemaPhase, rowPhase, regionPhase}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d combined, %d clean, %d dropped\n",
		stats.RowsIn, len(counties), stats.RowsDropped)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// canonicalHeaders normalizes and canonicalizes a raw header row.
func canonicalHeaders(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = domain.CanonicalizeHeader(domain.NormalizeHeader(h))
	}
	return out
}

func validateCombinedSchema(combined [][]string) *phase {
	p := &phase{name: "Combined table schema"}
	if combined == nil {
		p.errorf("combined table unavailable")
		return p
	}

	headers := canonicalHeaders(combined[0])
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		if present[h] {
			p.errorf("duplicate column %q after normalization", h)
		}
		present[h] = true
	}

	for _, name := range domain.RequiredColumns {
		if !present[name] {
			p.errorf("missing required column %q", name)
		}
	}
	if !present[domain.ColMaxAQI] {
		fmt.Printf("  note: optional column %q absent\n", domain.ColMaxAQI)
	}

	// Category day counts are all-or-nothing: a partial set means the
	// export is broken, not merely missing the feature.
	var have, missing []string
	for _, name := range domain.CategoryColumns {
		if present[name] {
			have = append(have, name)
		} else {
			missing = append(missing, name)
		}
	}
	if len(have) > 0 && len(missing) > 0 {
		p.errorf("partial category columns: have %s; missing %s",
			strings.Join(have, ", "), strings.Join(missing, ", "))
	}
	return p
}

// cleanCombined runs the combined table through the domain cleaning path.
func cleanCombined(combined [][]string) ([]domain.CountyRecord, domain.CleanStats) {
	headers := canonicalHeaders(combined[0])
	cols := make(map[string][]string, len(headers))
	for i, h := range headers {
		col := make([]string, 0, len(combined)-1)
		for _, row := range combined[1:] {
			if i < len(row) {
				col = append(col, row[i])
			} else {
				col = append(col, "")
			}
		}
		cols[h] = col
	}
	return domain.BuildCountyRecords(cols)
}

func validateRowIntegrity(counties []domain.CountyRecord, stats domain.CleanStats) *phase {
	p := &phase{name: "Row integrity"}
	if stats.RowsIn == 0 {
		p.errorf("no rows reached the cleaning step")
		return p
	}
	if len(counties) == 0 {
		p.errorf("every row was dropped (%d in)", stats.RowsIn)
		return p
	}
	if stats.RowsDropped > stats.RowsIn/2 {
		p.errorf("more than half the rows dropped: %d of %d", stats.RowsDropped, stats.RowsIn)
	}

	for _, rec := range counties {
		if rec.CountyName == "" {
			p.errorf("cleaned row with empty county name (state %q)", rec.StateCode)
		}
		if rec.Longitude < -180 || rec.Longitude > 180 || rec.Latitude < -90 || rec.Latitude > 90 {
			p.errorf("%s, %s: coordinates out of range (%f, %f)",
				rec.CountyName, rec.StateCode, rec.Longitude, rec.Latitude)
		}
	}
	return p
}

func validateRegionCoverage(counties []domain.CountyRecord) *phase {
	p := &phase{name: "Region coverage"}

	known := map[string]bool{domain.RegionOther: true}
	for _, r := range domain.Regions {
		known[r] = true
	}

	other := 0
	for _, rec := range counties {
		if !known[rec.Region] {
			p.errorf("%s, %s: unknown region %q", rec.CountyName, rec.StateCode, rec.Region)
		}
		if rec.Region == domain.RegionOther {
			other++
		}
	}
	if len(counties) > 0 && other == len(counties) {
		p.errorf("every row tagged %s: state codes likely malformed", domain.RegionOther)
	}
	return p
}
