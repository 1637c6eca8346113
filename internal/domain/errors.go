package domain

import (
	"fmt"
	"strings"
)

// InvalidVariableNameError reports a column mapping whose target is not a
// recognized weather variable code.
type InvalidVariableNameError struct {
	Name string
}

func (e *InvalidVariableNameError) Error() string {
	return fmt.Sprintf("%s is not a valid variable name", e.Name)
}

// UnknownSourceColumnError reports a mapping entry whose source column does
// not exist in the input table.
type UnknownSourceColumnError struct {
	Column string
}

func (e *UnknownSourceColumnError) Error() string {
	return fmt.Sprintf("mapped column %q not found in input table", e.Column)
}

// MissingMandatoryVariableError reports mandatory variables absent from the
// table after the column mapping has been applied.
type MissingMandatoryVariableError struct {
	Missing []string
}

func (e *MissingMandatoryVariableError) Error() string {
	return fmt.Sprintf("data must contain at least %s variables; missing %s",
		strings.Join(MandatoryData, ", "), strings.Join(e.Missing, ", "))
}

// QualityControlError reports the first quality-control rule violated by the
// record set. Checks are whole-column assertions; there is no row-level
// reporting.
type QualityControlError struct {
	Rule string
}

func (e *QualityControlError) Error() string {
	return "quality control failed: " + e.Rule
}

// MissingDateColumnError reports that neither the row index nor any column
// holds datetime values.
type MissingDateColumnError struct{}

func (e *MissingDateColumnError) Error() string {
	return "at least one of the data columns must be a date"
}
