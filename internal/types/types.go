// =============================================================================
// SO Automation - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - csvparser / xlsxparser (producers of InputTable)
//   - validation
//   - projection (producer of Table)
//   - tablewriter
//   - converter
//
// =============================================================================

package types

import (
	"fmt"
	"strings"
)

// =============================================================================
// MODES
// =============================================================================

// Mode selects the business pipeline used to project an input table.
type Mode string

const (
	// ModeDomestic assigns one document per input row.
	ModeDomestic Mode = "domestic"

	// ModeExport groups input rows into documents by customer reference.
	ModeExport Mode = "export"
)

// Modes lists every supported mode in a stable order.
func Modes() []Mode {
	return []Mode{ModeDomestic, ModeExport}
}

// ParseMode converts a user supplied string (flag, config key) into a Mode.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeDomestic:
		return ModeDomestic, nil
	case ModeExport:
		return ModeExport, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, value)
	}
}

// =============================================================================
// INPUT TYPES
// =============================================================================

// Record is one row of the uploaded table.
// Key is the column name from the header row, value is the cell text.
type Record map[string]string

// Get returns the value of a column, or an empty string if it is absent.
func (r Record) Get(column string) string {
	return r[column]
}

// InputTable is the parsed upload: ordered rows with named fields.
type InputTable struct {
	// SourceFile is the name of the file the table was read from.
	SourceFile string

	// Columns contains the column names in the order of the header row.
	Columns []string

	// Records contains the data rows in file order.
	Records []Record

	// RowNumbers holds, for each record, its 1-based row number in the source
	// file. Used for error reporting.
	RowNumbers []int
}

// HasColumn reports whether the header row contained the given column.
func (t *InputTable) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Values returns the values of one column, in row order.
func (t *InputTable) Values(column string) []string {
	values := make([]string, len(t.Records))
	for i, record := range t.Records {
		values[i] = record.Get(column)
	}
	return values
}

// RowNumber returns the source row number of the record at index i.
// Falls back to i+2 (one header row) when the parser did not record it.
func (t *InputTable) RowNumber(i int) int {
	if i < len(t.RowNumbers) {
		return t.RowNumbers[i]
	}
	return i + 2
}

// =============================================================================
// OUTPUT TYPES
// =============================================================================

// Table is an output table ready to be serialized.
//
// Columns are the structural column labels written as the first line of the
// file. Rows contain the legacy compatibility rows first, then the data rows;
// both are ordinary data rows for the writers.
type Table struct {
	// Name is used as sheet name and as the {table} file name placeholder.
	Name string

	// Columns are the column labels.
	Columns []string

	// Rows are the table rows, legacy rows included.
	Rows [][]string

	// LegacyRows is the number of leading rows in Rows that are legacy rows.
	LegacyRows int
}

// DataRows returns the rows that follow the legacy rows.
func (t Table) DataRows() [][]string {
	return t.Rows[t.LegacyRows:]
}
