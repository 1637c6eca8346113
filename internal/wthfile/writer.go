// Package wthfile encodes validated weather record sets into the fixed-width
// .WTH text files read by the DSSAT crop simulation engine, one file per
// calendar year, and parses them back for verification.
package wthfile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/agroclim/dssat-weather-etl/internal/domain"
)

// DirectoryCreationError reports an unusable output directory, e.g. the
// path collides with a regular file.
type DirectoryCreationError struct {
	Path string
	Err  error
}

func (e *DirectoryCreationError) Error() string {
	return fmt.Sprintf("create output directory %q: %v", e.Path, e.Err)
}

func (e *DirectoryCreationError) Unwrap() error { return e.Err }

// Writer emits per-year .WTH files into a fixed output directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a Writer targeting dir. The directory is created on the
// first Write call.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// Dir returns the writer's target directory.
func (w *Writer) Dir() string { return w.dir }

// Write serializes the station's record set, one file per calendar year,
// and returns the paths written in year order.
//
// When simulationStart is non-nil the station's records are first truncated
// in place to dates on or after it; the caller's station object observes
// the truncation and repeated calls with different starts compound.
// Existing files with colliding names are overwritten. There is no
// cross-year transactionality: a failure leaves earlier years' files on
// disk.
func (w *Writer) Write(station *domain.WeatherStation, simulationStart *time.Time) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, &DirectoryCreationError{Path: w.dir, Err: err}
	}

	if simulationStart != nil {
		station.Records.TruncateBefore(*simulationStart)
	}

	years := partitionByYear(station.Records.Index())

	columns := floatColumns(station.Records)

	written := make([]string, 0, len(years))
	for _, yr := range years {
		name := Filename(station.InstituteCode, yr.year)
		path := filepath.Join(w.dir, name)
		content := renderYear(station, columns, yr.rows)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, path)
		if w.logger != nil {
			w.logger.Info("wth file written", "file", name, "year", yr.year, "rows", len(yr.rows))
		}
	}
	return written, nil
}

// yearGroup holds one calendar year's row positions, sorted by date.
type yearGroup struct {
	year int
	rows []int
}

// partitionByYear groups row positions by the calendar year of their index
// date and orders rows ascending within each year. Years come out ascending
// for deterministic output, though per-year files are independent.
func partitionByYear(index []time.Time) []yearGroup {
	byYear := map[int][]int{}
	for i, d := range index {
		byYear[d.Year()] = append(byYear[d.Year()], i)
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	groups := make([]yearGroup, 0, len(years))
	for _, y := range years {
		rows := byYear[y]
		sort.Slice(rows, func(a, b int) bool {
			return index[rows[a]].Before(index[rows[b]])
		})
		groups = append(groups, yearGroup{year: y, rows: rows})
	}
	return groups
}

// floatColumns returns the record set's numeric column names in table order.
func floatColumns(records *domain.Table) []string {
	var names []string
	for _, name := range records.ColumnNames() {
		c, _ := records.Column(name)
		if c.Kind == domain.FloatColumn {
			names = append(names, name)
		}
	}
	return names
}

// renderYear assembles one year's file: station header block, data column
// header, then one fixed-width line per day.
func renderYear(station *domain.WeatherStation, columns []string, rows []int) string {
	index := station.Records.Index()

	var b strings.Builder
	b.WriteString(headerPrefix + station.Description + "\n")
	b.WriteString("\n")
	b.WriteString(stationLabels + "\n")
	b.WriteString(stationLine(station) + "\n")
	b.WriteString(columnHeaderLine(columns) + "\n")

	values := make([]float64, len(columns))
	for _, ri := range rows {
		for ci, name := range columns {
			c, _ := station.Records.Column(name)
			values[ci] = c.Floats[ri]
		}
		b.WriteString(dataLine(index[ri], columns, values) + "\n")
	}
	return b.String()
}
