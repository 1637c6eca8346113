package wthfile_test

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agroclim/dssat-weather-etl/internal/domain"
	"github.com/agroclim/dssat-weather-etl/internal/wthfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start2000 = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// makeStation builds a validated station with constant values over a run of
// consecutive days starting at start.
func makeStation(t *testing.T, start time.Time, days int) *domain.WeatherStation {
	t.Helper()
	constant := func(v float64) []float64 {
		out := make([]float64, days)
		for i := range out {
			out[i] = v
		}
		return out
	}
	dates := make([]time.Time, days)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}

	tbl := domain.NewTable()
	require.NoError(t, tbl.AddFloatColumn("tn", constant(10)))
	require.NoError(t, tbl.AddFloatColumn("tx", constant(20)))
	require.NoError(t, tbl.AddFloatColumn("prec", constant(0)))
	require.NoError(t, tbl.AddFloatColumn("rad", constant(15)))
	require.NoError(t, tbl.SetIndex(dates))

	station, err := domain.NewStation(tbl, map[string]string{
		"tn": "TMIN", "tx": "TMAX", "prec": "RAIN", "rad": "SRAD",
	}, 4.54, -75.1, 1800)
	require.NoError(t, err)
	return station
}

func dataLineCount(t *testing.T, path string) int {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	// Description, blank, station labels, station line, column header.
	require.GreaterOrEqual(t, len(lines), 5)
	return len(lines) - 5
}

func TestWriterTwoYearScenario(t *testing.T) {
	// 730 consecutive days from 2000-01-01: 366 in leap year 2000, 364 in 2001.
	station := makeStation(t, start2000, 730)
	dir := t.TempDir()

	written, err := wthfile.NewWriter(dir, nil).Write(station, nil)
	require.NoError(t, err)
	require.Len(t, written, 2)
	assert.Equal(t, filepath.Join(dir, "WSTA0001.WTH"), written[0])
	assert.Equal(t, filepath.Join(dir, "WSTA0101.WTH"), written[1])

	assert.Equal(t, 366, dataLineCount(t, written[0]))
	assert.Equal(t, 364, dataLineCount(t, written[1]))

	content, err := os.ReadFile(written[0])
	require.NoError(t, err)
	text := string(content)
	assert.True(t, strings.HasPrefix(text, "*WEATHER DATA : Weather station\n\n"))
	assert.Contains(t, text, "@ INSI      LAT     LONG  ELEV   TAV   AMP REFHT WNDHT\n")
	assert.Contains(t, text, "  WSTA     4.54   -75.10  1800  17.0  10.0   2.0  10.0\n")

	// Each file holds only its own year.
	assert.Contains(t, text, "\n00001")
	assert.NotContains(t, text, "\n01001")
	content, err = os.ReadFile(written[1])
	require.NoError(t, err)
	assert.Contains(t, string(content), "\n01001")
	assert.NotContains(t, string(content), "\n00001")
}

func TestWriterTruncation(t *testing.T) {
	station := makeStation(t, start2000, 730)
	dir := t.TempDir()
	simStart := time.Date(2000, 6, 1, 0, 0, 0, 0, time.UTC)

	written, err := wthfile.NewWriter(dir, nil).Write(station, &simStart)
	require.NoError(t, err)
	require.Len(t, written, 2)

	// 2000-06-01 is day 153 of the leap year: 366-152 rows remain.
	assert.Equal(t, 214, dataLineCount(t, written[0]))
	// The second year is untouched.
	assert.Equal(t, 364, dataLineCount(t, written[1]))

	content, err := os.ReadFile(written[0])
	require.NoError(t, err)
	assert.NotContains(t, string(content), "\n00152")
	assert.Contains(t, string(content), "\n00153")

	// Truncation is in place on the caller's station.
	assert.Equal(t, 214+364, station.Records.Len())
}

func TestWriterSortsRowsWithinYear(t *testing.T) {
	dates := []time.Time{
		start2000.AddDate(0, 0, 2),
		start2000,
		start2000.AddDate(0, 0, 1),
	}
	tbl := domain.NewTable()
	require.NoError(t, tbl.AddFloatColumn("TMIN", []float64{12, 10, 11}))
	require.NoError(t, tbl.AddFloatColumn("TMAX", []float64{22, 20, 21}))
	require.NoError(t, tbl.AddFloatColumn("RAIN", []float64{2, 0, 1}))
	require.NoError(t, tbl.AddFloatColumn("SRAD", []float64{15, 15, 15}))
	require.NoError(t, tbl.SetIndex(dates))
	station, err := domain.NewStation(tbl, nil, 0, 0, 0)
	require.NoError(t, err)

	written, err := wthfile.NewWriter(t.TempDir(), nil).Write(station, nil)
	require.NoError(t, err)
	require.Len(t, written, 1)

	parsed, err := wthfile.Read(written[0])
	require.NoError(t, err)
	require.Len(t, parsed.Dates, 3)
	assert.Equal(t, start2000, parsed.Dates[0])
	assert.Equal(t, []float64{10, 20, 0, 15}, parsed.Rows[0])
	assert.Equal(t, []float64{12, 22, 2, 15}, parsed.Rows[2])
}

func TestWriterOverwritesExistingFile(t *testing.T) {
	station := makeStation(t, start2000, 10)
	dir := t.TempDir()
	path := filepath.Join(dir, "WSTA0001.WTH")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	_, err := wthfile.NewWriter(dir, nil).Write(station, nil)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "*WEATHER DATA : "))
}

func TestWriterDirectoryCreationError(t *testing.T) {
	base := t.TempDir()
	blocked := filepath.Join(base, "out")
	require.NoError(t, os.WriteFile(blocked, []byte("not a directory"), 0o644))

	station := makeStation(t, start2000, 1)
	_, err := wthfile.NewWriter(blocked, nil).Write(station, nil)

	var dirErr *wthfile.DirectoryCreationError
	require.ErrorAs(t, err, &dirErr)
	assert.Equal(t, blocked, dirErr.Path)
}

func TestWriterCustomCodeAndAttributes(t *testing.T) {
	station := makeStation(t, start2000, 3)
	station.InstituteCode = "uchuv" // mutated after build, normalized at write
	station.Description = "Chinchina station"
	station.WindRefHeight = 2

	written, err := wthfile.NewWriter(t.TempDir(), nil).Write(station, nil)
	require.NoError(t, err)
	require.Len(t, written, 1)
	assert.Equal(t, "UCHU0001.WTH", filepath.Base(written[0]))

	parsed, err := wthfile.Read(written[0])
	require.NoError(t, err)
	assert.Equal(t, "UCHU", parsed.InstituteCode)
	assert.Equal(t, "Chinchina station", parsed.Description)
	assert.Equal(t, 2.0, parsed.WindRefHeight)
}

func TestRoundTrip(t *testing.T) {
	station := makeStation(t, start2000, 366)
	require.NoError(t, station.Records.AddFloatColumn("WIND", windSeries(366)))

	written, err := wthfile.NewWriter(t.TempDir(), nil).Write(station, nil)
	require.NoError(t, err)
	require.Len(t, written, 1)

	parsed, err := wthfile.Read(written[0])
	require.NoError(t, err)

	assert.Equal(t, "WSTA", parsed.InstituteCode)
	assert.InDelta(t, 4.54, parsed.Latitude, 0.005)
	assert.InDelta(t, -75.1, parsed.Longitude, 0.005)
	assert.InDelta(t, 1800, parsed.Elevation, 0.5)
	assert.InDelta(t, 17, parsed.AvgTemp, 0.05)
	assert.InDelta(t, 10, parsed.TempAmplitude, 0.05)

	assert.Equal(t, []string{"RAIN", "SRAD", "TMIN", "TMAX", "WIND"}, parsed.Columns)
	require.Len(t, parsed.Dates, 366)
	assert.Equal(t, start2000, parsed.Dates[0])
	assert.Equal(t, time.Date(2000, 12, 31, 0, 0, 0, 0, time.UTC), parsed.Dates[365])

	for i, row := range parsed.Rows {
		assert.InDelta(t, 0, row[0], 0.05)
		assert.InDelta(t, 15, row[1], 0.05)
		assert.InDelta(t, 10, row[2], 0.05)
		assert.InDelta(t, 20, row[3], 0.05)
		if i%7 == 3 {
			assert.True(t, math.IsNaN(row[4]), "row %d should be missing", i)
		} else {
			assert.InDelta(t, windSeries(366)[i], row[4], 0.05)
		}
	}
}

// windSeries produces a varying optional column with a gap every 7th day.
func windSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i%7 == 3 {
			out[i] = domain.NA()
			continue
		}
		out[i] = 80 + float64(i%40)
	}
	return out
}
