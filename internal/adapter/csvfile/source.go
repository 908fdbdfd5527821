// Package csvfile implements pipeline.Source over local CSV files.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/go-gota/gota/dataframe"

	"github.com/couchcryptid/county-aqi-service/internal/pipeline"
)

// Source reads one CSV file. It implements pipeline.Source.
type Source struct {
	path string
}

// NewSource creates a Source for the given file path.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// ID returns the file path; it keys the loader's cache.
func (s *Source) ID() string {
	return s.path
}

// Extract parses the file into a string-typed frame. Ragged rows are
// tolerated; a header-only file yields pipeline.ErrNoRows.
func (s *Source) Extract(ctx context.Context) (dataframe.DataFrame, error) {
	if err := ctx.Err(); err != nil {
		return dataframe.DataFrame{}, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read %s: %w", s.path, err)
	}

	df, err := pipeline.ParseCSVRecords(records)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%s: %w", s.path, err)
	}
	return df, nil
}
