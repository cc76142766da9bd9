// Package report persists benchmark results as CSV files: summary tables,
// schedules and fitness trend series.
package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/copyleftdev/hopbench/internal/errors"
	"github.com/copyleftdev/hopbench/internal/logging"
)

// Reporter writes report files. Destinations are file paths; parent
// directories are created on demand.
type Reporter struct {
	logger *logging.Logger
}

// New returns a Reporter logging written files at debug level.
func New(logger *logging.Logger) *Reporter {
	return &Reporter{logger: logger}
}

// WriteReport writes rows as CSV to destination.
func (r *Reporter) WriteReport(rows [][]string, destination string) error {
	fail := func(err error, step string) error {
		return errors.Wrapf(err, "failed to %s report", step).
			WithOperation("WriteReport").WithComponent("report").WithPath(destination)
	}

	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return fail(err, "create directory for")
	}
	f, err := os.Create(destination)
	if err != nil {
		return fail(err, "create")
	}
	defer f.Close()

	if err := csv.NewWriter(f).WriteAll(rows); err != nil {
		return fail(err, "write")
	}
	if err := f.Close(); err != nil {
		return fail(err, "close")
	}

	if r.logger != nil {
		r.logger.Debug("report written", map[string]interface{}{
			"destination": destination,
			"rows":        len(rows),
		})
	}
	return nil
}

// PlotFitnessTrend writes the series of one run as (iteration, fitness)
// rows.
func (r *Reporter) PlotFitnessTrend(trend []float64, destination string) error {
	rows := make([][]string, 0, len(trend)+1)
	rows = append(rows, []string{"iteration", "fitness"})
	for i, f := range trend {
		rows = append(rows, []string{strconv.Itoa(i), FormatFloat(f)})
	}
	return r.WriteReport(rows, destination)
}

// PlotAllOptimizersTrend writes one column per optimizer, ordered by id,
// and one row per run. Shorter series leave their cells empty.
func (r *Reporter) PlotAllOptimizersTrend(trends map[string][]float64, destination string) error {
	ids := make([]string, 0, len(trends))
	longest := 0
	for id, trend := range trends {
		ids = append(ids, id)
		if len(trend) > longest {
			longest = len(trend)
		}
	}
	sort.Strings(ids)

	rows := make([][]string, 0, longest+1)
	rows = append(rows, append([]string{"run"}, ids...))
	for i := 0; i < longest; i++ {
		row := make([]string, 0, len(ids)+1)
		row = append(row, strconv.Itoa(i))
		for _, id := range ids {
			cell := ""
			if i < len(trends[id]) {
				cell = FormatFloat(trends[id][i])
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}
	return r.WriteReport(rows, destination)
}

// FormatFloat renders f with the shortest exact representation.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
