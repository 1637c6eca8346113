package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RawObservation is the flat JSON structure published by upstream
// collectors: one daily observation for one station. Value keys are the
// collector's own column names; the pipeline's column mapping translates
// them to canonical variable codes at build time.
type RawObservation struct {
	StationID string             `json:"station_id"`
	Date      string             `json:"date"` // calendar date, YYYY-MM-DD
	Latitude  float64            `json:"lat"`
	Longitude float64            `json:"lon"`
	Elevation float64            `json:"elev"`
	Values    map[string]float64 `json:"values"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// RejectedDataset describes a station dataset that failed validation and is
// diverted to the dead-letter topic together with its source observations.
type RejectedDataset struct {
	StationID    string           `json:"station_id"`
	Reason       string           `json:"reason"`
	Rows         int              `json:"rows"`
	Observations []RawObservation `json:"observations"`
	RejectedAt   time.Time        `json:"rejected_at"`
}

// ParseRawObservation deserializes a RawEvent's value into a RawObservation
// and checks the fields the accumulator depends on.
func ParseRawObservation(raw RawEvent) (RawObservation, time.Time, error) {
	var obs RawObservation
	if err := json.Unmarshal(raw.Value, &obs); err != nil {
		return RawObservation{}, time.Time{}, fmt.Errorf("parse raw observation: %w", err)
	}
	if obs.StationID == "" {
		return RawObservation{}, time.Time{}, fmt.Errorf("parse raw observation: missing station_id")
	}
	date, err := time.Parse("2006-01-02", obs.Date)
	if err != nil {
		return RawObservation{}, time.Time{}, fmt.Errorf("parse raw observation: bad date %q: %w", obs.Date, err)
	}
	return obs, date, nil
}
