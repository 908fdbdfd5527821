// Command genfixtures writes the three mock CSV sources used by the test
// suites and local development, then runs them through the actual pipeline
// to emit the expected cleaned JSON, so fixtures never drift from real
// pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genfixtures -out-dir data/mock -json-out data/mock/counties_clean.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/county-aqi-service/internal/adapter/csvfile"
	"github.com/couchcryptid/county-aqi-service/internal/observability"
	"github.com/couchcryptid/county-aqi-service/internal/pipeline"
)

// The combined fixture deliberately carries the drifted heat header, a
// non-breaking space, malformed numeric cells, and category day counts, so
// it exercises every normalization and cleaning path.
const combinedFixture = "County_Formatted,State_y,Median AQI,Max AQI,Average Daily Max Heat Index (F),longitude,latitude,Good Days,Moderate Days,Unhealthy for Sensitive Groups Days,Unhealthy Days\n" +
	"Maricopa,AZ,55,132,108,-112.07,33.45,200,120,30,15\n" +
	"Cook,IL,40,98,90,-87.68,41.84,250,90,20,5\n" +
	"Harris,TX,48,110,102,-95.39,29.78,220,110,25,10\n" +
	"Suffolk,NY,35,80,85,-73.14,40.79,280,70,12,3\n" +
	"San Juan,PR,25,60,95,-66.06,18.47,300,55,8,2\n" +
	"Broken,TN,NA,80,95,-90.00,35.00,210,100,30,25\n" +
	"Halfway,OR,42,,not-a-number,-117.12,44.88,240,95,18,12\n"

const aqiFixture = "State,County,Median AQI,Max AQI\n" +
	"Arizona,Maricopa,55,132\n" +
	"Illinois,Cook,40,98\n" +
	"Texas,Harris,48,110\n" +
	"New York,Suffolk,35,80\n" +
	"Puerto Rico,San Juan,25,60\n"

// The heat fixture uses the NBSP-polluted header seen in the real export.
const heatFixture = "State,County,Avg Daily Max Heat Index (F)\n" +
	"Arizona,Maricopa,108\n" +
	"Illinois,Cook,90\n" +
	"Texas,Harris,102\n" +
	"New York,Suffolk,85\n" +
	"Puerto Rico,San Juan,95\n"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "", "directory to write the mock CSV files")
	jsonOut := flag.String("json-out", "", "output path for the cleaned JSON fixture")
	flag.Parse()

	if *outDir == "" || *jsonOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -out-dir, -json-out")
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	files := map[string]string{
		"aqi_with_lat_lon.csv":                aqiFixture,
		"heat_with_lat_lon.csv":               heatFixture,
		"combined_with_lat_lon_and_state.csv": combinedFixture,
	}
	paths := make(map[string]string, len(files))
	for name, content := range files {
		path := filepath.Join(*outDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		paths[name] = path
		log.Printf("wrote %s (%d bytes)", path, len(content))
	}

	// Run the fixtures through the real pipeline so the JSON output reflects
	// actual cleaning behavior.
	loader := pipeline.NewLoader(
		csvfile.NewSource(paths["aqi_with_lat_lon.csv"]),
		csvfile.NewSource(paths["heat_with_lat_lon.csv"]),
		csvfile.NewSource(paths["combined_with_lat_lon_and_state.csv"]),
		slog.New(slog.NewTextHandler(os.Stderr, nil)),
		observability.NewMetrics(),
	)
	res, err := loader.Load(context.Background())
	if err != nil {
		return fmt.Errorf("run pipeline over fixtures: %w", err)
	}
	log.Printf("pipeline: %s", res.Describe())

	data, err := json.MarshalIndent(res.Counties, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cleaned records: %w", err)
	}
	if err := os.WriteFile(*jsonOut, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *jsonOut, err)
	}
	log.Printf("wrote %s (%d records)", *jsonOut, len(res.Counties))
	return nil
}
