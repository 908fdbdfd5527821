package csvfile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/county-aqi-service/internal/adapter/csvfile"
	"github.com/couchcryptid/county-aqi-service/internal/pipeline"
)

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSource_Extract(t *testing.T) {
	path := writeCSV(t, "combined.csv",
		"County_Formatted,State_y,Median AQI\nMaricopa,AZ,55\nCook,IL,40\n")

	src := csvfile.NewSource(path)
	assert.Equal(t, path, src.ID())

	df, err := src.Extract(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, []string{"County_Formatted", "State_y", "Median AQI"}, df.Names())
}

func TestSource_Extract_HeaderOnly(t *testing.T) {
	path := writeCSV(t, "empty.csv", "County_Formatted,State_y,Median AQI\n")

	_, err := csvfile.NewSource(path).Extract(context.Background())
	assert.ErrorIs(t, err, pipeline.ErrNoRows)
}

func TestSource_Extract_RaggedRows(t *testing.T) {
	path := writeCSV(t, "ragged.csv",
		"County_Formatted,State_y,Median AQI\nMaricopa,AZ\nCook,IL,40,extra\n")

	df, err := csvfile.NewSource(path).Extract(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, 3, df.Ncol())
}

func TestSource_Extract_MissingFile(t *testing.T) {
	src := csvfile.NewSource(filepath.Join(t.TempDir(), "absent.csv"))

	_, err := src.Extract(context.Background())
	assert.Error(t, err)
}

func TestSource_Extract_CanceledContext(t *testing.T) {
	path := writeCSV(t, "combined.csv", "a,b\n1,2\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := csvfile.NewSource(path).Extract(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
