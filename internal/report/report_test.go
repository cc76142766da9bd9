package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/hopbench/internal/logging"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	r := New(logging.New(logging.DebugLevel, &buf))
	dest := filepath.Join(t.TempDir(), "nested", "dir", "RASTRIGIN problem summary.csv")

	rows := [][]string{{"Optimizer", "Min Fitness"}, {"SA", "0.5"}, {"GA", "needs, quoting"}}
	require.NoError(t, r.WriteReport(rows, dest))

	assert.Equal(t, rows, readCSV(t, dest))
	assert.Contains(t, buf.String(), "report written")
}

func TestWriteReportUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := New(nil).WriteReport([][]string{{"x"}}, filepath.Join(blocker, "out.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "component=report")
}

func TestPlotFitnessTrend(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "trend.csv")
	require.NoError(t, New(nil).PlotFitnessTrend([]float64{10, 4.5, 0.25}, dest))

	assert.Equal(t, [][]string{
		{"iteration", "fitness"},
		{"0", "10"},
		{"1", "4.5"},
		{"2", "0.25"},
	}, readCSV(t, dest))
}

func TestPlotAllOptimizersTrend(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "all.csv")
	err := New(nil).PlotAllOptimizersTrend(map[string][]float64{
		"SA": {3, 2, 1},
		"GA": {5},
	}, dest)
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"run", "GA", "SA"},
		{"0", "5", "3"},
		{"1", "", "2"},
		{"2", "", "1"},
	}, readCSV(t, dest))
}
