package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRawObservation(t *testing.T) {
	t.Run("valid message", func(t *testing.T) {
		raw := RawEvent{Value: []byte(`{"station_id":"UCHG","date":"2000-06-01","lat":4.54,"lon":-75.1,"elev":1800,"values":{"tn":10.2,"tx":21.5,"prec":0,"rad":15.1}}`)}

		obs, date, err := ParseRawObservation(raw)
		require.NoError(t, err)
		assert.Equal(t, "UCHG", obs.StationID)
		assert.Equal(t, time.Date(2000, 6, 1, 0, 0, 0, 0, time.UTC), date)
		assert.Equal(t, 4.54, obs.Latitude)
		assert.Equal(t, 10.2, obs.Values["tn"])
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, _, err := ParseRawObservation(RawEvent{Value: []byte("{nope")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse raw observation")
	})

	t.Run("missing station_id", func(t *testing.T) {
		_, _, err := ParseRawObservation(RawEvent{Value: []byte(`{"date":"2000-06-01"}`)})
		assert.ErrorContains(t, err, "missing station_id")
	})

	t.Run("bad date", func(t *testing.T) {
		_, _, err := ParseRawObservation(RawEvent{Value: []byte(`{"station_id":"UCHG","date":"01/06/2000"}`)})
		assert.ErrorContains(t, err, "bad date")
	})
}
