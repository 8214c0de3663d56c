// =============================================================================
// SO Automation - XLSX Upload Parser
// =============================================================================
//
// This module reads sales-order uploads saved as Excel workbooks. The first
// row of the selected sheet holds the column labels; every following non-empty
// row is one order line.
//
// UPLOAD STRUCTURE (Export example):
//
//   | Customer Reference No | Item Code | Quantity | Price | DocCur | ... |
//   |-----------------------|-----------|----------|-------|--------|-----|
//   | PO-1001               | ITM-01    | 5        | 12.50 | USD    | ... |
//   | PO-1001               | ITM-02    | 1        | 99    | USD    | ... |
//   | PO-1002               | ITM-01    | 2        | 12.50 | EUR    | ... |
//
// Cell values are read as Excel displays them, so a date cell formatted as
// yyyymmdd arrives as "20240115".
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/so-automation/internal/types"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads an XLSX upload and returns the parsed table.
//
// PARAMETERS:
//   - r: The workbook content.
//   - sourceFile: The file name, kept on the table for reporting.
//   - sheetName: The sheet to read. Empty selects the first sheet.
//
// RETURNS:
//   - The parsed table. Row numbers refer to the sheet's 1-based rows.
//   - An error if the workbook cannot be opened or the sheet does not exist.
//     A sheet without any rows yields types.ErrEmptyInput.
func Parse(r io.Reader, sourceFile, sheetName string) (*types.InputTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := resolveSheet(f, sheetName)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet '%s': %w", sheet, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet '%s' is empty: %w", sheet, types.ErrEmptyInput)
	}

	// Trailing empty header cells are dropped by GetRows, so the header is
	// widened to the longest row.
	headerRow := rows[0]
	for _, row := range rows[1:] {
		for len(headerRow) < len(row) {
			headerRow = append(headerRow, "")
		}
	}

	table := &types.InputTable{
		SourceFile: sourceFile,
		Columns:    cleanHeaders(headerRow),
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]

		// GetRows drops trailing empty cells, and fully empty rows in the
		// middle of a sheet come back as empty slices.
		if isRowEmpty(row) {
			continue
		}

		record := make(types.Record, len(table.Columns))
		for colIndex, header := range table.Columns {
			if colIndex < len(row) {
				record[header] = strings.TrimSpace(row[colIndex])
			} else {
				record[header] = ""
			}
		}

		table.Records = append(table.Records, record)
		table.RowNumbers = append(table.RowNumbers, i+1)
	}

	return table, nil
}

// resolveSheet returns the sheet to read.
func resolveSheet(f *excelize.File, sheetName string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}

	if sheetName == "" {
		return sheets[0], nil
	}

	for _, sheet := range sheets {
		if strings.EqualFold(sheet, sheetName) {
			return sheet, nil
		}
	}

	return "", fmt.Errorf("sheet '%s' not found (available: %s)", sheetName, strings.Join(sheets, ", "))
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// cleanHeaders trims header values and names empty headers by position.
// A label that repeats keeps its first column; later copies get a suffix.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	seen := make(map[string]int, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		if n := seen[header]; n > 0 {
			seen[header] = n + 1
			header = fmt.Sprintf("%s_%d", header, n+1)
		} else {
			seen[header] = 1
		}
		cleaned[i] = header
	}

	return cleaned
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
