// Command wthgen builds DSSAT weather files from a CSV file or a MySQL
// query in one shot, without the streaming pipeline. It runs the same
// validation and formatting as the ETL service.
//
// Usage:
//
//	go run ./cmd/wthgen \
//	  -csv observations.csv \
//	  -mapping mapping.yaml \
//	  -lat 4.54 -lon -75.10 -elev 1800 \
//	  -out ./weather
//
// The mapping file is a YAML map from source column names to canonical
// variable codes:
//
//	tn: TMIN
//	tx: TMAX
//	prec: RAIN
//	rad: SRAD
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/yaml.v3"

	"github.com/agroclim/dssat-weather-etl/internal/adapter/sqlstore"
	"github.com/agroclim/dssat-weather-etl/internal/domain"
	"github.com/agroclim/dssat-weather-etl/internal/wthfile"
)

const dateLayout = "2006-01-02"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "wthgen:", err)
		os.Exit(1)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "CSV file with a date column and one column per variable")
	dsn := flag.String("dsn", "", "MySQL DSN, e.g. user:pass@tcp(localhost:3306)/weather")
	query := flag.String("query", "", "SQL query selecting the date column first (with -dsn)")
	mappingPath := flag.String("mapping", "", "YAML file mapping source columns to variable codes")
	lat := flag.Float64("lat", 0, "station latitude in decimal degrees")
	lon := flag.Float64("lon", 0, "station longitude in decimal degrees")
	elev := flag.Float64("elev", 0, "station elevation in meters")
	out := flag.String("out", "weather", "output directory for .WTH files")
	simStart := flag.String("sim-start", "", "drop rows before this date (YYYY-MM-DD)")
	stationCode := flag.String("station-code", "", "institute+site code, up to 4 characters")
	description := flag.String("description", "", "description for the file header")
	tav := flag.Float64("tav", domain.DefaultAvgTemp, "annual average temperature (TAV)")
	amp := flag.Float64("amp", domain.DefaultTempAmplitude, "annual temperature amplitude (AMP)")
	listVars := flag.Bool("list-variables", false, "print the weather variable catalog and exit")
	listStation := flag.Bool("list-station-parameters", false, "print the station parameter catalog and exit")
	flag.Parse()

	if *listVars {
		printCatalog("Weather variables:", domain.ListWeatherVariables())
		return nil
	}
	if *listStation {
		printCatalog("Station parameters:", domain.ListStationParameters())
		return nil
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo}))

	table, err := loadTable(*csvPath, *dsn, *query, logger)
	if err != nil {
		return err
	}

	var mapping map[string]string
	if *mappingPath != "" {
		mapping, err = loadMapping(*mappingPath)
		if err != nil {
			return err
		}
	}

	station, err := domain.NewStation(table, mapping, *lat, *lon, *elev)
	if err != nil {
		return err
	}
	station.AvgTemp = *tav
	station.TempAmplitude = *amp
	if *stationCode != "" {
		station.InstituteCode = domain.NormalizeInstituteCode(*stationCode)
	}
	if *description != "" {
		station.Description = *description
	}

	var start *time.Time
	if *simStart != "" {
		t, err := time.Parse(dateLayout, *simStart)
		if err != nil {
			return fmt.Errorf("bad -sim-start %q: %w", *simStart, err)
		}
		start = &t
	}

	files, err := wthfile.NewWriter(*out, logger).Write(station, start)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Println(f)
	}
	return nil
}

func loadTable(csvPath, dsn, query string, logger *slog.Logger) (*domain.Table, error) {
	switch {
	case csvPath != "" && dsn != "":
		return nil, fmt.Errorf("-csv and -dsn are mutually exclusive")
	case csvPath != "":
		return loadCSV(csvPath)
	case dsn != "":
		if query == "" {
			return nil, fmt.Errorf("-dsn requires -query")
		}
		store, err := sqlstore.Open(dsn, logger)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.LoadTable(context.Background(), query)
	default:
		return nil, fmt.Errorf("one of -csv or -dsn is required")
	}
}

// loadCSV reads a CSV file into a table. The date column is the one named
// "date" (case-insensitive), or the first column otherwise. Empty cells
// become missing values.
func loadCSV(path string) (*domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: need a header row and at least one data row", path)
	}

	header := records[0]
	dateCol := 0
	for i, name := range header {
		if strings.EqualFold(name, "date") {
			dateCol = i
			break
		}
	}

	rows := records[1:]
	dates := make([]time.Time, len(rows))
	values := make([][]float64, len(header))
	for i := range values {
		if i != dateCol {
			values[i] = make([]float64, len(rows))
		}
	}

	for r, record := range rows {
		if len(record) != len(header) {
			return nil, fmt.Errorf("%s: row %d has %d fields, want %d", path, r+2, len(record), len(header))
		}
		dates[r], err = time.Parse(dateLayout, record[dateCol])
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: bad date %q", path, r+2, record[dateCol])
		}
		for c, cell := range record {
			if c == dateCol {
				continue
			}
			if strings.TrimSpace(cell) == "" {
				values[c][r] = domain.NA()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: row %d, column %s: bad value %q", path, r+2, header[c], cell)
			}
			values[c][r] = v
		}
	}

	table := domain.NewTable()
	for c, name := range header {
		if c == dateCol {
			continue
		}
		if err := table.AddFloatColumn(name, values[c]); err != nil {
			return nil, err
		}
	}
	if err := table.SetIndex(dates); err != nil {
		return nil, err
	}
	return table, nil
}

func loadMapping(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var mapping map[string]string
	if err := yaml.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return mapping, nil
}

func printCatalog(title string, params []domain.Parameter) {
	fmt.Println(title)
	for _, p := range params {
		fmt.Printf("  %-6s %s\n", p.Name, p.Description)
	}
}
