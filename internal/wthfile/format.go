package wthfile

import (
	"fmt"
	"strings"
	"time"

	"github.com/agroclim/dssat-weather-etl/internal/domain"
)

// The widths and precisions below are the external format contract of the
// consuming simulation engine's fixed-column reader. They must not be
// changed independently of that reader.
const (
	// Extension of every emitted weather file.
	Extension = ".WTH"

	headerPrefix = "*WEATHER DATA : "

	// stationLabels is the fixed column-label line of the station header,
	// exact spacing and token order.
	stationLabels = "@ INSI      LAT     LONG  ELEV   TAV   AMP REFHT WNDHT"

	dateLabel = "@DATE"

	// missingToken renders a NaN value in a data field.
	missingToken = "-99"

	dateFieldWidth = 5
)

// fieldSpec pins the width and decimal precision of one fixed-width field.
type fieldSpec struct {
	width int
	prec  int
}

// stationFields are the metadata fields following INSI on the station line,
// in emission order.
var stationFields = []fieldSpec{
	{9, 2}, // LAT
	{9, 2}, // LONG
	{6, 0}, // ELEV
	{6, 1}, // TAV
	{6, 1}, // AMP
	{6, 1}, // REFHT
	{6, 1}, // WNDHT
}

// dataFields maps each weather variable to its field layout. Variables not
// listed fall back to defaultDataField.
var dataFields = map[string]fieldSpec{
	domain.VarSRAD: {6, 1},
	domain.VarTMAX: {6, 1},
	domain.VarTMIN: {6, 1},
	domain.VarRAIN: {6, 1},
	domain.VarDEWP: {6, 1},
	domain.VarWIND: {6, 1},
	domain.VarPAR:  {6, 1},
	domain.VarEVAP: {6, 1},
	domain.VarRHUM: {6, 1},
}

var defaultDataField = fieldSpec{6, 1}

func dataFieldFor(name string) fieldSpec {
	if fs, ok := dataFields[name]; ok {
		return fs
	}
	return defaultDataField
}

// Filename builds the per-year output file name: the first four characters
// of the institute code, the two-digit year, and the literal "01". The
// trailing "01" is a fixed placeholder inherited from the format, not the
// month of the first record.
func Filename(instituteCode string, year int) string {
	return fmt.Sprintf("%s%02d01%s",
		domain.NormalizeInstituteCode(instituteCode), year%100, Extension)
}

// stationLine encodes the station metadata into the fixed-width layout
// under stationLabels. INSI sits left-justified under its label.
func stationLine(s *domain.WeatherStation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %-4s", domain.NormalizeInstituteCode(s.InstituteCode))
	values := []float64{
		s.Latitude, s.Longitude, s.Elevation,
		s.AvgTemp, s.TempAmplitude, s.RefHeight, s.WindRefHeight,
	}
	for i, v := range values {
		fs := stationFields[i]
		fmt.Fprintf(&b, "%*.*f", fs.width, fs.prec, v)
	}
	return b.String()
}

// columnHeaderLine builds the data block header: the date label followed by
// each column name right-justified in its field.
func columnHeaderLine(columns []string) string {
	var b strings.Builder
	b.WriteString(dateLabel)
	for _, name := range columns {
		fmt.Fprintf(&b, "%*s", dataFieldFor(name).width, name)
	}
	return b.String()
}

// dateToken encodes a date as two-digit year plus three-digit day of year
// (YYDDD).
func dateToken(t time.Time) string {
	return fmt.Sprintf("%02d%03d", t.Year()%100, t.YearDay())
}

// dataLine encodes one day: the YYDDD token followed by each value in its
// parameter's fixed width and precision. NaN renders as the missing
// sentinel, right-justified.
func dataLine(date time.Time, columns []string, values []float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%*s", dateFieldWidth, dateToken(date))
	for i, name := range columns {
		fs := dataFieldFor(name)
		if domain.IsNA(values[i]) {
			fmt.Fprintf(&b, "%*s", fs.width, missingToken)
			continue
		}
		fmt.Fprintf(&b, "%*.*f", fs.width, fs.prec, values[i])
	}
	return b.String()
}
