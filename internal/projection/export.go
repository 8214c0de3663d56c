package projection

import (
	"strconv"

	"github.com/ginjaninja78/so-automation/internal/grouping"
	"github.com/ginjaninja78/so-automation/internal/types"
)

// ExportLines builds one RDR1 row per input row.
// assignments must be parallel to records.
func ExportLines(records []types.Record, assignments []grouping.Assignment, c Constants) [][]string {
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			strconv.Itoa(assignments[i].DocNum),
			strconv.Itoa(assignments[i].LineNum),
			record.Get(ColItemCode),
			record.Get(ColPartNo),
			record.Get(ColQuantity),
			record.Get(ColPrice),
			c.AccountCode,
			record.Get(ColTaxCode),
			record.Get(ColWarehouse),
		}
	}
	return rows
}

// ExportHeaders builds one ORDR row per document.
//
// Rows are deduplicated on the (DocNum, reference) pair keeping the first
// occurrence, so every field of a header comes from the first row of its
// document. hasDueDate tells whether the upload carried a due date column;
// when it did not, every header gets c.MissingDueDate.
func ExportHeaders(records []types.Record, assignments []grouping.Assignment, c Constants, hasDueDate bool) [][]string {
	type key struct {
		docNum int
		ref    string
	}
	seen := make(map[key]struct{})

	var rows [][]string
	for i, record := range records {
		ref := record.Get(ReferenceColumn(types.ModeExport))
		k := key{docNum: assignments[i].DocNum, ref: ref}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		dueDate := c.MissingDueDate
		if hasDueDate {
			dueDate = record.Get(ColExportDueDate)
		}

		rows = append(rows, []string{
			strconv.Itoa(assignments[i].DocNum),
			c.DocType,
			c.Series,
			ref,
			record.Get(ColExportDocDate),
			record.Get(ColExportTaxDate),
			dueDate,
			record.Get(ColExportCurrency),
			record.Get(ColExportRate),
			record.Get(ColExportCustomer),
			c.Freight,
			c.DutyStatus,
			c.SalesCategory,
			c.Department,
			c.XMLFileStatus,
			c.BusinessPlaceID,
			c.MHXML,
		})
	}
	return rows
}
