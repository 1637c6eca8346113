package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Station attribute defaults. These are fixed by construction and remain
// user-mutable on the returned WeatherStation.
const (
	DefaultDescription   = "Weather station"
	DefaultInstituteCode = "WSTA"
	DefaultAvgTemp       = 17.0
	DefaultTempAmplitude = 10.0
	DefaultRefHeight     = 2.0
	DefaultWindRefHeight = 10.0
)

// WeatherStation holds one station's metadata and its validated daily
// record set. Records is date-indexed, contains every mandatory variable,
// and has passed quality control. All fields may be adjusted by the caller
// after construction; they are read verbatim at write time.
type WeatherStation struct {
	Description   string
	InstituteCode string
	Latitude      float64
	Longitude     float64
	Elevation     float64
	AvgTemp       float64
	TempAmplitude float64
	RefHeight     float64
	WindRefHeight float64

	// BuiltAt records when the station passed validation.
	BuiltAt time.Time

	Records *Table
}

// NewStation validates and normalizes a raw observation table into a
// WeatherStation.
//
// mapping renames columns of table to canonical weather variable codes; every
// target must be a recognized code. Latitude, longitude and elevation are
// stored verbatim. The input table is copied, never mutated.
//
// Validation is fail-fast, in fixed order: mapping targets, mandatory
// variables, quality control, date resolution.
func NewStation(table *Table, mapping map[string]string, lat, lon, elev float64) (*WeatherStation, error) {
	data := table.Copy()

	// Apply the column mapping in sorted source order so the first failure
	// is deterministic.
	sources := make([]string, 0, len(mapping))
	for src := range mapping {
		sources = append(sources, src)
	}
	sort.Strings(sources)
	for _, src := range sources {
		canonical := mapping[src]
		if !IsDataParam(canonical) {
			return nil, &InvalidVariableNameError{Name: canonical}
		}
		// A source that is already a canonical name needs no rename; renaming
		// it onto itself would drop the column.
		if IsDataParam(src) {
			continue
		}
		if !data.HasColumn(src) {
			return nil, &UnknownSourceColumnError{Column: src}
		}
		data.rename(src, canonical)
	}

	var missing []string
	for _, name := range MandatoryData {
		if !data.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingMandatoryVariableError{Missing: missing}
	}

	if err := qualityControl(data); err != nil {
		return nil, err
	}

	src, err := data.ResolveDateSource()
	if err != nil {
		return nil, err
	}
	if src.Kind == DateFromColumn {
		if err := data.PromoteDateColumn(src.Column); err != nil {
			return nil, err
		}
	}

	// Post-condition of date resolution; not a user-facing validation.
	if !data.HasDateIndex() {
		return nil, fmt.Errorf("internal: record set has no date index after resolution")
	}

	return &WeatherStation{
		Description:   DefaultDescription,
		InstituteCode: NormalizeInstituteCode(DefaultInstituteCode),
		Latitude:      lat,
		Longitude:     lon,
		Elevation:     elev,
		AvgTemp:       DefaultAvgTemp,
		TempAmplitude: DefaultTempAmplitude,
		RefHeight:     DefaultRefHeight,
		WindRefHeight: DefaultWindRefHeight,
		BuiltAt:       clock.Now(),
		Records:       data,
	}, nil
}

// qualityControl applies the fixed sanity assertions over whole columns.
// The first violated rule wins. A NaN in a checked column fails the rule,
// so missing values are only representable in unchecked optional columns.
func qualityControl(data *Table) error {
	tmin, _ := data.Column(VarTMIN)
	tmax, _ := data.Column(VarTMAX)
	for i := range tmin.Floats {
		if !(tmin.Floats[i] <= tmax.Floats[i]) {
			return &QualityControlError{Rule: "TMAX < TMIN at some point in the series"}
		}
	}
	if rhum, ok := data.Column(VarRHUM); ok {
		for _, v := range rhum.Floats {
			if !(v >= 0 && v <= 100) {
				return &QualityControlError{Rule: "0 <= RHUM <= 100 must be accomplished"}
			}
		}
	}
	rain, _ := data.Column(VarRAIN)
	for _, v := range rain.Floats {
		if !(v >= 0) {
			return &QualityControlError{Rule: "0 <= RAIN must be accomplished"}
		}
	}
	if srad, ok := data.Column(VarSRAD); ok {
		for _, v := range srad.Floats {
			if !(v >= 0) {
				return &QualityControlError{Rule: "0 <= SRAD must be accomplished"}
			}
		}
	}
	return nil
}

// NormalizeInstituteCode truncates a station code to its first four
// characters and uppercases it. Short codes are kept as-is, not padded.
func NormalizeInstituteCode(code string) string {
	r := []rune(code)
	if len(r) > 4 {
		r = r[:4]
	}
	return strings.ToUpper(string(r))
}

// String summarizes the station: coordinates, date range and per-column
// means of the record set.
func (s *WeatherStation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Weather data at %.3f°, %.3f°\n", s.Longitude, s.Latitude)
	idx := s.Records.Index()
	if len(idx) > 0 {
		minDate, maxDate := idx[0], idx[0]
		for _, d := range idx[1:] {
			if d.Before(minDate) {
				minDate = d
			}
			if d.After(maxDate) {
				maxDate = d
			}
		}
		fmt.Fprintf(&b, "  Date start: %s\n", minDate.Format("2006-01-02"))
		fmt.Fprintf(&b, "  Date end: %s\n", maxDate.Format("2006-01-02"))
	}
	b.WriteString("Average values:\n")
	for _, name := range s.Records.ColumnNames() {
		c, _ := s.Records.Column(name)
		if c.Kind != FloatColumn {
			continue
		}
		var sum float64
		var n int
		for _, v := range c.Floats {
			if IsNA(v) {
				continue
			}
			sum += v
			n++
		}
		if n == 0 {
			fmt.Fprintf(&b, "  %-5s NA\n", name)
			continue
		}
		fmt.Fprintf(&b, "  %-5s %.2f\n", name, sum/float64(n))
	}
	return b.String()
}
