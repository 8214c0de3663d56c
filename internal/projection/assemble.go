package projection

import "github.com/ginjaninja78/so-automation/internal/types"

// Assemble builds an output table: the legacy rows first, as plain data rows,
// then the projected rows.
func Assemble(name string, columns []string, legacyRows, rows [][]string) types.Table {
	all := make([][]string, 0, len(legacyRows)+len(rows))
	for _, legacy := range legacyRows {
		all = append(all, fitRow(legacy, len(columns)))
	}
	all = append(all, rows...)

	return types.Table{
		Name:       name,
		Columns:    copyRow(columns),
		Rows:       all,
		LegacyRows: len(legacyRows),
	}
}

// fitRow pads or truncates a legacy row to the table width, so that a
// hand-written profile row cannot break the rectangular shape of the table.
func fitRow(row []string, width int) []string {
	fitted := make([]string, width)
	copy(fitted, row)
	return fitted
}
