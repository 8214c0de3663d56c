package projection

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/so-automation/internal/grouping"
	"github.com/ginjaninja78/so-automation/internal/types"
)

var fixedNow = time.Date(2024, time.February, 10, 15, 4, 5, 0, time.UTC)

func newTable(columns []string, rows ...[]string) *types.InputTable {
	table := &types.InputTable{SourceFile: "upload.xlsx", Columns: columns}
	for i, row := range rows {
		record := make(types.Record, len(columns))
		for j, column := range columns {
			record[column] = row[j]
		}
		table.Records = append(table.Records, record)
		table.RowNumbers = append(table.RowNumbers, i+2)
	}
	return table
}

var exportColumns = []string{
	ColExportReference, ColItemCode, ColPartNo, ColQuantity, ColPrice, ColTaxCode,
	ColWarehouse, ColExportDocDate, ColExportTaxDate, ColExportDueDate,
	ColExportCurrency, ColExportRate, ColExportCustomer,
}

func exportFixture() *types.InputTable {
	return newTable(exportColumns,
		[]string{"PO-A", "ITM1", "P-1", "10", "2.5", "IGST0", "WH01", "2024-01-15", "2024-01-15", "2024-02-15", "USD", "83.1", "C0001"},
		[]string{"PO-B", "ITM2", "P-2", "4", "7", "IGST0", "WH01", "2024-01-16", "2024-01-16", "2024-02-16", "EUR", "90.2", "C0002"},
		[]string{"PO-A", "ITM3", "P-3", "1", "100", "IGST0", "WH02", "2024-01-20", "2024-01-20", "2024-02-20", "USD", "83.5", "C0001"},
	)
}

var domesticColumns = []string{
	ColDomesticReference, ColDomesticDescription, ColDomesticSeries, ColDomesticDocDate,
	ColDomesticTaxDate, ColDomesticDueDate, ColDomesticCustomer, ColDomesticFreight,
	ColDomesticSalesCat, ColDomesticDepartment, ColPartNo, ColItemCode, ColQuantity,
	ColPrice, ColTaxCode, ColWarehouse,
}

func domesticFixture() *types.InputTable {
	return newTable(domesticColumns,
		[]string{"REF-1", "dDocument_Items", "1", "x", "x", "x", "C-URD-01", "Paid", "Local", "SALES", "P-1", "ITM1", "5", "10", "GST18", "WH01"},
		[]string{"REF-1", "dDocument_Items", "1", "x", "x", "x", "C-0002", "To Pay", "Local", "SALES", "P-2", "ITM2", "3", "20", "GST18", "WH02"},
	)
}

func TestProject_Export(t *testing.T) {
	t.Parallel()

	out, err := Project(types.ModeExport, exportFixture(), DefaultConstants(types.ModeExport), fixedNow)
	require.NoError(t, err)

	assert.Equal(t, 2, out.Documents)

	// RDR1
	assert.Equal(t, LineTableName, out.Line.Name)
	assert.Equal(t, ExportLineColumns, out.Line.Columns)
	assert.Equal(t, 1, out.Line.LegacyRows)
	assert.Equal(t, [][]string{
		{"DocNum", "LineNum", "ItemCode", "SubCatNum", "Quantity", "PriceBefDi", "AcctCode", "TaxCode", "WhsCode"},
		{"1", "0", "ITM1", "P-1", "10", "2.5", "410000", "IGST0", "WH01"},
		{"2", "0", "ITM2", "P-2", "4", "7", "410000", "IGST0", "WH01"},
		{"1", "1", "ITM3", "P-3", "1", "100", "410000", "IGST0", "WH02"},
	}, out.Line.Rows)

	// ORDR
	assert.Equal(t, HeaderTableName, out.Header.Name)
	assert.Equal(t, ExportHeaderColumns, out.Header.Rows[0])
	assert.Equal(t, [][]string{
		{"1", "dDocument_Items", "882", "PO-A", "2024-01-15", "2024-01-15", "2024-02-15", "USD", "83.1", "C0001", "NA", "Without Payment of Duty", "Export", "NA", "1", "3", "1"},
		{"2", "dDocument_Items", "882", "PO-B", "2024-01-16", "2024-01-16", "2024-02-16", "EUR", "90.2", "C0002", "NA", "Without Payment of Duty", "Export", "NA", "1", "3", "1"},
	}, out.Header.DataRows())
}

func TestProject_ExportHeaderKeepsFirstOccurrence(t *testing.T) {
	t.Parallel()

	out, err := Project(types.ModeExport, exportFixture(), DefaultConstants(types.ModeExport), fixedNow)
	require.NoError(t, err)

	// PO-A appears on rows 1 and 3 with different dates and rates; the header
	// carries the values of row 1.
	header := out.Header.DataRows()[0]
	assert.Equal(t, "2024-01-15", header[4])
	assert.Equal(t, "83.1", header[8])
}

func TestProject_ExportWithoutDueDateColumn(t *testing.T) {
	t.Parallel()

	var columns []string
	for _, c := range exportColumns {
		if c != ColExportDueDate {
			columns = append(columns, c)
		}
	}
	table := newTable(columns,
		[]string{"PO-A", "ITM1", "P-1", "10", "2.5", "IGST0", "WH01", "2024-01-15", "2024-01-15", "USD", "83.1", "C0001"},
	)

	out, err := Project(types.ModeExport, table, DefaultConstants(types.ModeExport), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "N/A", out.Header.DataRows()[0][6])
}

func TestProject_EveryHeaderHasLines(t *testing.T) {
	t.Parallel()

	for _, mode := range types.Modes() {
		table := exportFixture()
		if mode == types.ModeDomestic {
			table = domesticFixture()
		}

		out, err := Project(mode, table, DefaultConstants(mode), fixedNow)
		require.NoError(t, err)

		parents := make(map[string]int)
		for _, line := range out.Line.DataRows() {
			parents[line[0]]++
		}
		for _, header := range out.Header.DataRows() {
			assert.Positive(t, parents[header[0]], "%s header %s has no lines", mode, header[0])
		}
		assert.Len(t, out.Header.DataRows(), len(parents), mode)
	}
}

func TestProject_Domestic(t *testing.T) {
	t.Parallel()

	out, err := Project(types.ModeDomestic, domesticFixture(), DefaultConstants(types.ModeDomestic), fixedNow)
	require.NoError(t, err)

	assert.Equal(t, 2, out.Documents)
	assert.Equal(t, 2, out.Line.LegacyRows)
	assert.Equal(t, 2, out.Header.LegacyRows)

	// Same reference, still two documents.
	assert.Equal(t, [][]string{
		{"1", "0", "ITM1", "P-1", "5", "10", "GST18", "WH01"},
		{"2", "0", "ITM2", "P-2", "3", "20", "GST18", "WH02"},
	}, out.Line.DataRows())

	assert.Equal(t, [][]string{
		{"1", "dDocument_Items", "881", "REF-1", "20240210", "20240210", "20240229", "C-URD-01", "Paid", "Local", "SALES", "0"},
		{"2", "dDocument_Items", "881", "REF-1", "20240210", "20240210", "20240229", "C-0002", "To Pay", "Local", "SALES", "1"},
	}, out.Header.DataRows())
}

func TestProject_DomesticLegacyRows(t *testing.T) {
	t.Parallel()

	out, err := Project(types.ModeDomestic, domesticFixture(), DefaultConstants(types.ModeDomestic), fixedNow)
	require.NoError(t, err)

	assert.Equal(t, DomesticLineColumns, out.Line.Rows[0])
	assert.Equal(t, []string{"DocNum", "LineNum", "ItemCode", "SubCatNum", "Quantity", "PriceBefDi", "TaxCode", "WhsCode"}, out.Line.Rows[1])
	assert.Equal(t, DomesticHeaderColumns, out.Header.Rows[0])
	assert.Equal(t, DomesticHeaderColumns, out.Header.Rows[1])
}

func TestProject_Deterministic(t *testing.T) {
	t.Parallel()

	first, err := Project(types.ModeExport, exportFixture(), DefaultConstants(types.ModeExport), fixedNow)
	require.NoError(t, err)
	second, err := Project(types.ModeExport, exportFixture(), DefaultConstants(types.ModeExport), fixedNow)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestProject_Errors(t *testing.T) {
	t.Parallel()

	// Missing column.
	table := newTable([]string{ColExportReference}, []string{"PO-A"})
	_, err := Project(types.ModeExport, table, DefaultConstants(types.ModeExport), fixedNow)
	column, ok := types.IsMissingColumn(err)
	require.True(t, ok, "expected MissingColumnError, got %v", err)
	assert.Equal(t, ColExportDocDate, column)

	// Empty input.
	_, err = Project(types.ModeExport, newTable(exportColumns), DefaultConstants(types.ModeExport), fixedNow)
	assert.ErrorIs(t, err, types.ErrEmptyInput)

	// Unknown mode.
	_, err = Project(types.Mode("import"), exportFixture(), Constants{}, fixedNow)
	assert.True(t, errors.Is(err, types.ErrUnknownMode))
}

func TestCustomerFlag(t *testing.T) {
	t.Parallel()

	substrings := []string{"URD", "CASH"}
	cases := []struct {
		code     string
		expected string
	}{
		{code: "C-URD-001", expected: "0"},
		{code: "CASH-SALE", expected: "0"},
		{code: "URDCASH", expected: "0"},
		{code: "C-0001", expected: "1"},
		{code: "c-urd-001", expected: "1"},
		{code: "Cash", expected: "1"},
		{code: "UR-D", expected: "1"},
		{code: "", expected: "1"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, CustomerFlag(tc.code, substrings), tc.code)
	}

	assert.Equal(t, "1", CustomerFlag("anything", []string{""}))
}

func TestEndOfMonth(t *testing.T) {
	t.Parallel()

	cases := map[time.Time]string{
		time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC):  "2024-02-29",
		time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC):   "2023-02-28",
		time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC): "2024-12-31",
		time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC):     "2024-04-30",
	}
	for in, expected := range cases {
		assert.Equal(t, expected, EndOfMonth(in).Format("2006-01-02"))
	}
}

func TestConstantsMerge(t *testing.T) {
	t.Parallel()

	merged := DefaultConstants(types.ModeExport).Merge(Constants{
		Series:         "900",
		FlagSubstrings: []string{"X"},
	})

	assert.Equal(t, "900", merged.Series)
	assert.Equal(t, DefaultAccountCode, merged.AccountCode)
	assert.Equal(t, []string{"X"}, merged.FlagSubstrings)
	assert.Len(t, merged.LineLegacyRows, 1)
}

func TestAssemble_FitsLegacyRows(t *testing.T) {
	t.Parallel()

	table := Assemble("T", []string{"a", "b"}, [][]string{{"x"}, {"x", "y", "z"}}, [][]string{{"1", "2"}})

	assert.Equal(t, [][]string{{"x", ""}, {"x", "y"}, {"1", "2"}}, table.Rows)
	assert.Equal(t, [][]string{{"1", "2"}}, table.DataRows())
}

func TestExportLines_UsesAssignments(t *testing.T) {
	t.Parallel()

	records := exportFixture().Records
	rows := ExportLines(records, grouping.AssignExport([]string{"A", "B", "A"}), DefaultConstants(types.ModeExport))

	assert.Equal(t, []string{"1", "0"}, rows[0][:2])
	assert.Equal(t, []string{"2", "0"}, rows[1][:2])
	assert.Equal(t, []string{"1", "1"}, rows[2][:2])
}

func TestReferenceColumn(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Customer Reference No", ReferenceColumn(types.ModeExport))
	assert.Equal(t, "CustomerRefNo", ReferenceColumn(types.ModeDomestic))

	// Export documents are keyed by the reference column, in order of first
	// appearance.
	out, err := Project(types.ModeExport, exportFixture(), DefaultConstants(types.ModeExport), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Documents)
	assert.Equal(t, "PO-A", out.Header.DataRows()[0][3])
	assert.Equal(t, "PO-B", out.Header.DataRows()[1][3])
}
