package wthfile

import (
	"testing"
	"time"

	"github.com/agroclim/dssat-weather-etl/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		insi string
		year int
		want string
	}{
		{"WSTA", 2000, "WSTA0001.WTH"},
		{"WSTA", 2001, "WSTA0101.WTH"},
		{"uchga", 1998, "UCHG9801.WTH"},
		{"WSTA", 2010, "WSTA1001.WTH"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Filename(tt.insi, tt.year))
	}
}

func TestStationLine(t *testing.T) {
	s := &domain.WeatherStation{
		InstituteCode: "WSTA",
		Latitude:      4.54,
		Longitude:     -75.1,
		Elevation:     1800,
		AvgTemp:       17,
		TempAmplitude: 10,
		RefHeight:     2,
		WindRefHeight: 10,
	}

	line := stationLine(s)
	assert.Equal(t, "  WSTA     4.54   -75.10  1800  17.0  10.0   2.0  10.0", line)
	assert.Len(t, line, len(stationLabels))
}

func TestDateToken(t *testing.T) {
	assert.Equal(t, "00001", dateToken(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "00366", dateToken(time.Date(2000, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "01152", dateToken(time.Date(2001, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "99365", dateToken(time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestColumnHeaderLine(t *testing.T) {
	line := columnHeaderLine([]string{"TMIN", "TMAX", "RAIN", "SRAD"})
	assert.Equal(t, "@DATE  TMIN  TMAX  RAIN  SRAD", line)
}

func TestDataLine(t *testing.T) {
	date := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{"TMIN", "TMAX", "RAIN", "WIND"}

	t.Run("all values present", func(t *testing.T) {
		line := dataLine(date, cols, []float64{10, 20, 0, 120.4})
		assert.Equal(t, "00001  10.0  20.0   0.0 120.4", line)
	})

	t.Run("missing value renders sentinel", func(t *testing.T) {
		line := dataLine(date, cols, []float64{10, 20, 0, domain.NA()})
		assert.Equal(t, "00001  10.0  20.0   0.0   -99", line)
	})
}

func TestParseDateToken(t *testing.T) {
	t.Run("2000s pivot", func(t *testing.T) {
		d, err := parseDateToken("00001")
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("1900s pivot", func(t *testing.T) {
		d, err := parseDateToken("99365")
		assert.NoError(t, err)
		assert.Equal(t, time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("leap day of year", func(t *testing.T) {
		d, err := parseDateToken("00366")
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2000, 12, 31, 0, 0, 0, 0, time.UTC), d)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := parseDateToken("1")
		assert.Error(t, err)
		_, err = parseDateToken("abcde")
		assert.Error(t, err)
	})
}
