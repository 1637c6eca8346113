// Package domain models daily weather observations and the validated,
// date-indexed record sets consumed by the DSSAT crop simulation engine.
//
// # Parameter catalog
//
// Station parameters (INSI, LAT, LONG, ELEV, TAV, AMP, REFHT, WNDHT)
// describe the observing site. Data parameters (DATE, SRAD, TMAX, TMIN,
// RAIN, DEWP, WIND, PAR, EVAP, RHUM) are the daily variables the .WTH file
// format recognizes. TMIN, TMAX, RAIN and SRAD are mandatory: a record set
// without all four is rejected at build time.
//
// # Building a station
//
// [NewStation] takes an arbitrary observation table, a mapping from the
// caller's column names to canonical variable codes, and the station
// coordinates. It copies the table, applies the mapping, verifies the
// mandatory variables, runs quality control and resolves the date index:
//
//	TMIN[i] <= TMAX[i]           for every row
//	0 <= RHUM[i] <= 100          when RHUM is present
//	RAIN[i] >= 0                 for every row
//	SRAD[i] >= 0                 when SRAD is present
//
// Checks run in that order and the first violated rule wins. Dates come
// from a datetime-typed row index when the table has one, otherwise from
// the first datetime column, which is promoted to the index.
//
// # Missing values
//
// Missing values are NaN ([NA]). A NaN in a quality-controlled column fails
// its rule, so only the unchecked optional variables (DEWP, WIND, PAR,
// EVAP) can carry gaps into the output, where they render as the -99
// sentinel.
package domain
