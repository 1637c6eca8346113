// Command wthcheck re-parses a directory of generated .WTH files and checks
// their integrity: file naming, station metadata plausibility, daily record
// structure, and variable ranges. It reads files with the same fixed-column
// parser the test suite uses, so a file that passes here round-trips.
//
// Usage:
//
//	go run ./cmd/wthcheck -dir ./weather
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/agroclim/dssat-weather-etl/internal/domain"
	"github.com/agroclim/dssat-weather-etl/internal/wthfile"
)

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

var filenamePattern = regexp.MustCompile(`^[A-Z0-9]{1,4}\d{2}01\.WTH$`)

func main() {
	dir := flag.String("dir", "", "directory containing .WTH files")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dir); code != 0 {
		os.Exit(code)
	}
}

func run(dir string) int {
	paths, err := filepath.Glob(filepath.Join(dir, "*.WTH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "wthcheck:", err)
		return 1
	}
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "wthcheck: no .WTH files in %s\n", dir)
		return 1
	}
	sort.Strings(paths)

	naming := &phase{name: "File naming"}
	metadata := &phase{name: "Station metadata"}
	records := &phase{name: "Daily records"}
	ranges := &phase{name: "Variable ranges"}

	var parsed int
	for _, path := range paths {
		name := filepath.Base(path)

		file, err := wthfile.Read(path)
		if err != nil {
			naming.errorf("%s: %v", name, err)
			continue
		}
		parsed++

		checkNaming(naming, name, file)
		checkMetadata(metadata, name, file)
		checkRecords(records, name, file)
		checkRanges(ranges, name, file)
	}

	fmt.Printf("Checked %d files in %s\n\n", len(paths), dir)

	allPassed := parsed > 0
	for _, p := range []*phase{naming, metadata, records, ranges} {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-24s %s\n", p.name, status)
		for _, e := range p.errors {
			fmt.Printf("    - %s\n", e)
		}
	}

	fmt.Println()
	if allPassed {
		fmt.Println("All checks passed.")
		return 0
	}
	fmt.Println("Checks FAILED.")
	return 1
}

func checkNaming(p *phase, name string, file *wthfile.File) {
	if !filenamePattern.MatchString(name) {
		p.errorf("%s: name does not match <INSI><YY>01.WTH", name)
		return
	}
	if !strings.HasPrefix(name, file.InstituteCode) {
		p.errorf("%s: institute code in header is %q", name, file.InstituteCode)
		return
	}
	if len(file.Dates) > 0 {
		yy := fmt.Sprintf("%02d", file.Dates[0].Year()%100)
		if name[len(file.InstituteCode):len(file.InstituteCode)+2] != yy {
			p.errorf("%s: first record year is %d", name, file.Dates[0].Year())
		}
	}
}

func checkMetadata(p *phase, name string, file *wthfile.File) {
	if file.Latitude < -90 || file.Latitude > 90 {
		p.errorf("%s: latitude %.2f out of range", name, file.Latitude)
	}
	if file.Longitude < -180 || file.Longitude > 180 {
		p.errorf("%s: longitude %.2f out of range", name, file.Longitude)
	}
	if file.RefHeight <= 0 {
		p.errorf("%s: REFHT %.1f must be positive", name, file.RefHeight)
	}
	if file.WindRefHeight <= 0 {
		p.errorf("%s: WNDHT %.1f must be positive", name, file.WindRefHeight)
	}
	if file.TempAmplitude < 0 {
		p.errorf("%s: AMP %.1f must not be negative", name, file.TempAmplitude)
	}
}

func checkRecords(p *phase, name string, file *wthfile.File) {
	if len(file.Dates) == 0 {
		p.errorf("%s: no daily records", name)
		return
	}
	year := file.Dates[0].Year()
	seen := map[string]bool{}
	for i, d := range file.Dates {
		if d.Year() != year {
			p.errorf("%s: record %d is in year %d, file holds %d", name, i, d.Year(), year)
		}
		if i > 0 && !file.Dates[i-1].Before(d) {
			p.errorf("%s: records out of order at row %d", name, i)
		}
		key := d.Format("2006-01-02")
		if seen[key] {
			p.errorf("%s: duplicate record for %s", name, key)
		}
		seen[key] = true
	}
	for i, row := range file.Rows {
		if len(row) != len(file.Columns) {
			p.errorf("%s: row %d has %d values, want %d", name, i, len(row), len(file.Columns))
		}
	}
}

func checkRanges(p *phase, name string, file *wthfile.File) {
	col := map[string]int{}
	for i, c := range file.Columns {
		col[c] = i
	}
	for _, v := range domain.MandatoryData {
		if _, ok := col[v]; !ok {
			p.errorf("%s: mandatory variable %s missing", name, v)
		}
	}

	tmin, hasTmin := col[domain.VarTMIN]
	tmax, hasTmax := col[domain.VarTMAX]
	for i, row := range file.Rows {
		if hasTmin && hasTmax && row[tmax] < row[tmin] {
			p.errorf("%s: row %d: TMAX %.1f below TMIN %.1f", name, i, row[tmax], row[tmin])
		}
		for _, v := range []string{domain.VarRAIN, domain.VarSRAD} {
			if c, ok := col[v]; ok && row[c] < 0 {
				p.errorf("%s: row %d: %s %.1f is negative", name, i, v, row[c])
			}
		}
		if c, ok := col[domain.VarRHUM]; ok && !math.IsNaN(row[c]) && (row[c] < 0 || row[c] > 100) {
			p.errorf("%s: row %d: RHUM %.1f out of range", name, i, row[c])
		}
	}
}
