// =============================================================================
// SO Automation - CSV Upload Parser
// =============================================================================
//
// This module parses sales-order uploads saved as CSV. It handles:
//   - Different delimiters (comma, semicolon, pipe, tab)
//   - Multi-line headers
//   - Custom data start rows
//   - A UTF-8 byte order mark (Excel "CSV UTF-8" exports)
//
// The result is the same InputTable the XLSX parser produces, so the rest of
// the pipeline does not care which format was uploaded.
//
// =============================================================================

package csvparser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/so-automation/internal/config"
	"github.com/ginjaninja78/so-automation/internal/types"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV upload and returns the parsed table.
//
// PARAMETERS:
//   - r: The CSV content.
//   - sourceFile: The file name, kept on the table for reporting.
//   - settings: The CSV parsing settings from the mode profile.
//
// PARSING PROCESS:
//   1. Configure the CSV reader with the specified delimiter
//   2. Read and merge header rows (for multi-line headers)
//   3. Read data rows starting from the configured data start row
//   4. Convert each row to a Record keyed by header
func Parse(r io.Reader, sourceFile string, settings config.CSVSettings) (*types.InputTable, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	csvReader := csv.NewReader(bytes.NewReader(content))
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty: %w", types.ErrEmptyInput)
	}

	headers, err := extractHeaders(allRows, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to extract headers: %w", err)
	}

	table := &types.InputTable{
		SourceFile: sourceFile,
		Columns:    headers,
	}
	extractDataRows(table, allRows, settings)

	return table, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Exports from spreadsheets often have ragged trailing columns.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// extractHeaders extracts and merges headers from the CSV.
//
// MULTI-LINE HEADER HANDLING:
//   Row 1: "Customer", "", "Document", ""
//   Row 2: "Reference No", "Item Code", "Date", "Due Date"
//   Result: "Customer Reference No", "Item Code", "Document Date", "Document Due Date"
func extractHeaders(allRows [][]string, settings config.CSVSettings) ([]string, error) {
	headerRows := settings.HeaderRows
	if headerRows <= 0 {
		headerRows = 1
	}

	if len(allRows) < headerRows {
		return nil, fmt.Errorf("file has fewer rows than header_rows setting")
	}

	if headerRows == 1 {
		return cleanHeaders(allRows[0]), nil
	}

	maxCols := 0
	for i := 0; i < headerRows; i++ {
		if len(allRows[i]) > maxCols {
			maxCols = len(allRows[i])
		}
	}

	headers := make([]string, maxCols)
	for col := 0; col < maxCols; col++ {
		var parts []string
		for row := 0; row < headerRows; row++ {
			if col < len(allRows[row]) {
				value := strings.TrimSpace(allRows[row][col])
				if value != "" {
					parts = append(parts, value)
				}
			}
		}
		headers[col] = strings.Join(parts, " ")
	}

	return cleanHeaders(headers), nil
}

// cleanHeaders trims header values and names empty headers by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}

// extractDataRows converts the data rows to records, skipping empty rows.
func extractDataRows(table *types.InputTable, allRows [][]string, settings config.CSVSettings) {
	startIndex := settings.DataStartRow - 1
	if startIndex < settings.HeaderRows {
		startIndex = settings.HeaderRows
	}
	if startIndex < 1 {
		startIndex = 1
	}

	for rowIndex := startIndex; rowIndex < len(allRows); rowIndex++ {
		row := allRows[rowIndex]
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
		table.RowNumbers = append(table.RowNumbers, rowIndex+1)
	}
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
