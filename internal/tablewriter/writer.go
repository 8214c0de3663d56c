// =============================================================================
// SO Automation - Table Writer
// =============================================================================
//
// This module serializes output tables (RDR1, Ordr) in the two formats the
// ERP import accepts:
//
//   XLSX : one sheet named after the table, column labels in row 1
//   TXT  : tab-separated text, column labels on the first line
//
// In both formats the legacy compatibility rows are ordinary data rows that
// follow the column labels.
//
// =============================================================================

package tablewriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/so-automation/internal/types"
)

// Format identifies an output file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatTXT  Format = "txt"
)

// Extension returns the file extension of the format, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Write serializes the table in the given format.
func Write(w io.Writer, format Format, table types.Table) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, table)
	case FormatTXT:
		return WriteTXT(w, table)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// =============================================================================
// XLSX
// =============================================================================

// WriteXLSX writes the table as a workbook with a single sheet named after
// the table.
//
// Cells that look like plain numbers are stored as numbers so Excel does not
// flag them as "number stored as text". Values with a leading zero keep their
// text form.
func WriteXLSX(w io.Writer, table types.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", table.Name); err != nil {
		return fmt.Errorf("failed to name sheet '%s': %w", table.Name, err)
	}

	sw, err := f.NewStreamWriter(table.Name)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]interface{}, len(table.Columns))
	for i, column := range table.Columns {
		header[i] = column
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		values := make([]interface{}, len(row))
		for j, value := range row {
			values[j] = cellValue(value)
		}

		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	return nil
}

// cellValue converts a numeric-looking string to a number.
func cellValue(value string) interface{} {
	if !looksNumeric(value) {
		return value
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return value
	}

	if d.Abs().GreaterThanOrEqual(maxExactInteger) {
		return value
	}
	if d.IsInteger() {
		return d.IntPart()
	}
	return d.InexactFloat64()
}

// Excel keeps 15 significant digits; larger values stay text.
var maxExactInteger = decimal.New(1, 15)

// looksNumeric accepts plain decimal notation only. Exponents, thousands
// separators and leading zeros ("0881", "007") stay text.
func looksNumeric(value string) bool {
	if value == "" {
		return false
	}

	digits := strings.TrimPrefix(value, "-")
	if digits == "" || strings.Count(digits, ".") > 1 {
		return false
	}
	if strings.HasPrefix(digits, ".") || strings.HasSuffix(digits, ".") {
		return false
	}
	if len(digits) > 1 && digits[0] == '0' && digits[1] != '.' {
		return false
	}

	for _, r := range digits {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

// =============================================================================
// TXT
// =============================================================================

// WriteTXT writes the table as tab-separated text. Values are quoted only when
// they contain a tab, a quote or a line break.
func WriteTXT(w io.Writer, table types.Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write header line: %w", err)
	}
	if err := cw.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}

	return nil
}
