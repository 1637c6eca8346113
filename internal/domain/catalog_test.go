package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogSetsAreDisjoint(t *testing.T) {
	station := map[string]bool{}
	for _, p := range StationParams {
		station[p.Name] = true
	}
	for _, p := range DataParams {
		assert.False(t, station[p.Name], "%s appears in both catalogs", p.Name)
	}
}

func TestMandatoryDataIsSubsetOfDataParams(t *testing.T) {
	for _, name := range MandatoryData {
		assert.True(t, IsDataParam(name), "%s not in DataParams", name)
	}
}

func TestListStationParameters(t *testing.T) {
	params := ListStationParameters()
	assert.Len(t, params, 8)
	assert.Equal(t, ParamINSI, params[0].Name)
	assert.Equal(t, ParamWNDHT, params[7].Name)
	assert.Equal(t, "Elevation, m", params[3].Description)

	// Listings are copies; mutating one must not touch the catalog.
	params[0].Name = "XXXX"
	assert.Equal(t, ParamINSI, StationParams[0].Name)
}

func TestListWeatherVariables(t *testing.T) {
	vars := ListWeatherVariables()
	assert.Len(t, vars, 10)
	assert.Equal(t, VarDATE, vars[0].Name)
	assert.Equal(t, VarRHUM, vars[9].Name)
	for _, v := range vars {
		assert.NotEmpty(t, v.Description, "%s has no description", v.Name)
	}
}
