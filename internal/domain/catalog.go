package domain

// Canonical station parameter codes.
const (
	ParamINSI  = "INSI"
	ParamLAT   = "LAT"
	ParamLONG  = "LONG"
	ParamELEV  = "ELEV"
	ParamTAV   = "TAV"
	ParamAMP   = "AMP"
	ParamREFHT = "REFHT"
	ParamWNDHT = "WNDHT"
)

// Canonical weather data variable codes.
const (
	VarDATE = "DATE"
	VarSRAD = "SRAD"
	VarTMAX = "TMAX"
	VarTMIN = "TMIN"
	VarRAIN = "RAIN"
	VarDEWP = "DEWP"
	VarWIND = "WIND"
	VarPAR  = "PAR"
	VarEVAP = "EVAP"
	VarRHUM = "RHUM"
)

// Parameter pairs a canonical code with its human-readable description.
type Parameter struct {
	Name        string
	Description string
}

// StationParams lists the parameters that describe the observing site, in
// the order they appear in the .WTH station header.
var StationParams = []Parameter{
	{ParamINSI, "Institute and site code"},
	{ParamLAT, "Latitude, degrees (decimals)"},
	{ParamLONG, "Longitude, degrees (decimals)"},
	{ParamELEV, "Elevation, m"},
	{ParamTAV, "Temperature average for whole year [long-term], C"},
	{ParamAMP, "Temperature amplitude (range), monthly averages [long-term], C"},
	{ParamREFHT, "Reference height for weather measurements, m"},
	{ParamWNDHT, "Reference height for windspeed measurements, m"},
}

// DataParams lists the recognized daily weather variables.
var DataParams = []Parameter{
	{VarDATE, "Date, year + days from Jan. 1"},
	{VarSRAD, "Daily solar radiation, MJ m-2 day-1"},
	{VarTMAX, "Daily temperature maximum, C"},
	{VarTMIN, "Daily temperature minimum, C"},
	{VarRAIN, "Daily rainfall (incl. snow), mm day-1"},
	{VarDEWP, "Daily dewpoint temperature average, C"},
	{VarWIND, "Daily wind speed (km d-1)"},
	{VarPAR, "Daily photosynthetic radiation, moles m-2 day-1"},
	{VarEVAP, "Daily pan evaporation (mm d-1)"},
	{VarRHUM, "Relative humidity average, %"},
}

// MandatoryData are the variables every valid record set must contain.
var MandatoryData = []string{VarTMIN, VarTMAX, VarRAIN, VarSRAD}

var dataParamSet = func() map[string]bool {
	s := make(map[string]bool, len(DataParams))
	for _, p := range DataParams {
		s[p.Name] = true
	}
	return s
}()

// IsDataParam reports whether name is a recognized weather variable code.
func IsDataParam(name string) bool {
	return dataParamSet[name]
}

// ListStationParameters returns the station parameters with their
// descriptions, in declaration order.
func ListStationParameters() []Parameter {
	out := make([]Parameter, len(StationParams))
	copy(out, StationParams)
	return out
}

// ListWeatherVariables returns the weather data variables with their
// descriptions, in declaration order.
func ListWeatherVariables() []Parameter {
	out := make([]Parameter, len(DataParams))
	copy(out, DataParams)
	return out
}
