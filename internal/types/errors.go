package types

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when an uploaded table has no data rows.
var ErrEmptyInput = errors.New("input table has no data rows")

// ErrUnknownMode is returned for a mode other than domestic or export.
var ErrUnknownMode = errors.New("unknown mode")

// MissingColumnError reports a required input column that is not present in
// the header row.
type MissingColumnError struct {
	Column string
}

// Error implements the error interface.
func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column %q", e.Column)
}

// IsMissingColumn reports whether err (or any error it wraps) is a
// MissingColumnError, and returns the column name.
func IsMissingColumn(err error) (string, bool) {
	var mc *MissingColumnError
	if errors.As(err, &mc) {
		return mc.Column, true
	}
	return "", false
}
