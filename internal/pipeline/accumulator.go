package pipeline

import (
	"time"

	"github.com/agroclim/dssat-weather-etl/internal/domain"
)

// StationDataset collects one station's daily observations between flushes.
type StationDataset struct {
	stationID string
	latitude  float64
	longitude float64
	elevation float64

	dates   []time.Time
	rowByTS map[int64]int
	rows    []map[string]float64
	colSeen map[string]bool
	cols    []string

	observations []domain.RawObservation
}

// StationID returns the collector's station identifier.
func (d *StationDataset) StationID() string { return d.stationID }

// Rows returns the number of distinct observation dates.
func (d *StationDataset) Rows() int { return len(d.dates) }

// Observations returns the raw observations, for dead-letter payloads.
func (d *StationDataset) Observations() []domain.RawObservation { return d.observations }

// Coordinates returns latitude, longitude and elevation from the first
// observation seen for the station.
func (d *StationDataset) Coordinates() (lat, lon, elev float64) {
	return d.latitude, d.longitude, d.elevation
}

func (d *StationDataset) add(obs domain.RawObservation, date time.Time) {
	d.observations = append(d.observations, obs)

	i, ok := d.rowByTS[date.Unix()]
	if !ok {
		i = len(d.dates)
		d.dates = append(d.dates, date)
		d.rows = append(d.rows, map[string]float64{})
		d.rowByTS[date.Unix()] = i
	}
	// A repeated date replaces earlier values, last write wins.
	for k, v := range obs.Values {
		if !d.colSeen[k] {
			d.colSeen[k] = true
			d.cols = append(d.cols, k)
		}
		d.rows[i][k] = v
	}
}

// Table materializes the accumulated observations as a date-indexed table,
// columns in first-seen order, gaps filled with NA.
func (d *StationDataset) Table() (*domain.Table, error) {
	tbl := domain.NewTable()
	for _, col := range d.cols {
		values := make([]float64, len(d.dates))
		for i := range d.dates {
			v, ok := d.rows[i][col]
			if !ok {
				v = domain.NA()
			}
			values[i] = v
		}
		if err := tbl.AddFloatColumn(col, values); err != nil {
			return nil, err
		}
	}
	if err := tbl.SetIndex(d.dates); err != nil {
		return nil, err
	}
	return tbl, nil
}

// Accumulator groups raw observations by station until the pipeline flushes.
type Accumulator struct {
	stations map[string]*StationDataset
	order    []string
	rows     int
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{stations: map[string]*StationDataset{}}
}

// Add records one parsed observation.
func (a *Accumulator) Add(obs domain.RawObservation, date time.Time) {
	d, ok := a.stations[obs.StationID]
	if !ok {
		d = &StationDataset{
			stationID: obs.StationID,
			latitude:  obs.Latitude,
			longitude: obs.Longitude,
			elevation: obs.Elevation,
			rowByTS:   map[int64]int{},
			colSeen:   map[string]bool{},
		}
		a.stations[obs.StationID] = d
		a.order = append(a.order, obs.StationID)
	}
	before := d.Rows()
	d.add(obs, date)
	a.rows += d.Rows() - before
}

// Rows returns the total distinct observation rows held across stations.
func (a *Accumulator) Rows() int { return a.rows }

// Drain returns the accumulated datasets in station first-seen order and
// resets the accumulator.
func (a *Accumulator) Drain() []*StationDataset {
	out := make([]*StationDataset, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.stations[id])
	}
	a.stations = map[string]*StationDataset{}
	a.order = nil
	a.rows = 0
	return out
}
