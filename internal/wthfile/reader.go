package wthfile

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agroclim/dssat-weather-etl/internal/domain"
)

// File is the parsed content of one .WTH file: the station metadata block
// and the daily data block. Missing values come back as NaN.
type File struct {
	Description   string
	InstituteCode string
	Latitude      float64
	Longitude     float64
	Elevation     float64
	AvgTemp       float64
	TempAmplitude float64
	RefHeight     float64
	WindRefHeight float64

	Columns []string
	Dates   []time.Time
	Rows    [][]float64
}

// Read parses a .WTH file. It slices lines at the format's fixed column
// positions rather than splitting on whitespace, so adjacent full-width
// fields cannot merge.
func Read(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	file, err := parse(lines)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return file, nil
}

func parse(lines []string) (*File, error) {
	if len(lines) < 5 {
		return nil, fmt.Errorf("truncated file: %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], headerPrefix) {
		return nil, fmt.Errorf("missing %q header", strings.TrimSpace(headerPrefix))
	}
	out := &File{Description: strings.TrimPrefix(lines[0], headerPrefix)}

	if lines[2] != stationLabels {
		return nil, fmt.Errorf("unexpected station label line %q", lines[2])
	}
	if err := parseStationLine(lines[3], out); err != nil {
		return nil, err
	}

	var err error
	out.Columns, err = parseColumnHeader(lines[4])
	if err != nil {
		return nil, err
	}

	for _, line := range lines[5:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		date, values, err := parseDataLine(line, out.Columns)
		if err != nil {
			return nil, err
		}
		out.Dates = append(out.Dates, date)
		out.Rows = append(out.Rows, values)
	}
	return out, nil
}

func parseStationLine(line string, out *File) error {
	if len(line) < 6 {
		return fmt.Errorf("station line too short: %q", line)
	}
	out.InstituteCode = strings.TrimSpace(line[:6])

	targets := []*float64{
		&out.Latitude, &out.Longitude, &out.Elevation,
		&out.AvgTemp, &out.TempAmplitude, &out.RefHeight, &out.WindRefHeight,
	}
	pos := 6
	for i, fs := range stationFields {
		field, ok := slice(line, pos, fs.width)
		if !ok {
			return fmt.Errorf("station line too short: %q", line)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return fmt.Errorf("station field %d: %w", i, err)
		}
		*targets[i] = v
		pos += fs.width
	}
	return nil
}

func parseColumnHeader(line string) ([]string, error) {
	if !strings.HasPrefix(line, dateLabel) {
		return nil, fmt.Errorf("missing %s column header, got %q", dateLabel, line)
	}
	var columns []string
	pos := len(dateLabel)
	for pos < len(line) {
		// Column widths depend on the name itself, so read name-by-name.
		end := pos + defaultDataField.width
		if end > len(line) {
			end = len(line)
		}
		name := strings.TrimSpace(line[pos:end])
		if name == "" {
			return nil, fmt.Errorf("empty column name at position %d in %q", pos, line)
		}
		columns = append(columns, name)
		pos += dataFieldFor(name).width
	}
	return columns, nil
}

func parseDataLine(line string, columns []string) (time.Time, []float64, error) {
	token, ok := slice(line, 0, dateFieldWidth)
	if !ok {
		return time.Time{}, nil, fmt.Errorf("data line too short: %q", line)
	}
	date, err := parseDateToken(strings.TrimSpace(token))
	if err != nil {
		return time.Time{}, nil, err
	}

	values := make([]float64, len(columns))
	pos := dateFieldWidth
	for i, name := range columns {
		fs := dataFieldFor(name)
		field, ok := slice(line, pos, fs.width)
		if !ok {
			return time.Time{}, nil, fmt.Errorf("data line too short for %s: %q", name, line)
		}
		field = strings.TrimSpace(field)
		if field == missingToken {
			values[i] = domain.NA()
		} else {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return time.Time{}, nil, fmt.Errorf("column %s: %w", name, err)
			}
			values[i] = v
		}
		pos += fs.width
	}
	return date, values, nil
}

// parseDateToken decodes a YYDDD token. Two-digit years below 70 land in
// the 2000s, the rest in the 1900s.
func parseDateToken(token string) (time.Time, error) {
	if len(token) != 5 {
		return time.Time{}, fmt.Errorf("bad date token %q", token)
	}
	yy, err := strconv.Atoi(token[:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date token %q: %w", token, err)
	}
	doy, err := strconv.Atoi(token[2:])
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date token %q: %w", token, err)
	}
	year := 1900 + yy
	if yy < 70 {
		year = 2000 + yy
	}
	return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, doy-1), nil
}

func slice(line string, pos, width int) (string, bool) {
	if pos+width > len(line) {
		return "", false
	}
	return line[pos : pos+width], true
}
