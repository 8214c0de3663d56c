package projection

import (
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/so-automation/internal/grouping"
	"github.com/ginjaninja78/so-automation/internal/types"
)

// DomesticLines builds one RDR1 row per input row. LineNum is always the
// assigned 0; there is no AccountCode column in domestic mode.
func DomesticLines(records []types.Record, assignments []grouping.Assignment) [][]string {
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			strconv.Itoa(assignments[i].DocNum),
			strconv.Itoa(assignments[i].LineNum),
			record.Get(ColItemCode),
			record.Get(ColPartNo),
			record.Get(ColQuantity),
			record.Get(ColPrice),
			record.Get(ColTaxCode),
			record.Get(ColWarehouse),
		}
	}
	return rows
}

// DomesticHeaders builds one ORDR row per input row.
//
// Input fields are first renamed through DomesticHeaderMapping, then:
//   - Series is replaced by the configured series
//   - DocDate and TaxDate become the current date
//   - DocDueDate becomes the last day of the current month
//   - U_MHXML (Part No before the override) becomes the customer flag
func DomesticHeaders(records []types.Record, assignments []grouping.Assignment, c Constants, now time.Time) [][]string {
	layout := c.DateLayout
	if layout == "" {
		layout = DefaultDateLayout
	}
	today := now.Format(layout)
	dueDate := EndOfMonth(now).Format(layout)

	rows := make([][]string, len(records))
	for i, record := range records {
		fields := renameFields(record, DomesticHeaderMapping)

		fields["DocNum"] = strconv.Itoa(assignments[i].DocNum)
		fields["Series"] = c.Series
		fields["DocDate"] = today
		fields["TaxDate"] = today
		fields["DocDueDate"] = dueDate
		fields["U_MHXML"] = CustomerFlag(fields["CardCode"], c.FlagSubstrings)

		row := make([]string, len(DomesticHeaderColumns))
		for j, column := range DomesticHeaderColumns {
			row[j] = fields[column]
		}
		rows[i] = row
	}
	return rows
}

// CustomerFlag returns "0" when customerCode contains any of the substrings
// (case-sensitive) and "1" otherwise. Empty substrings are ignored.
func CustomerFlag(customerCode string, substrings []string) string {
	for _, s := range substrings {
		if s != "" && strings.Contains(customerCode, s) {
			return "0"
		}
	}
	return "1"
}

// EndOfMonth returns the last calendar day of t's month, at midnight in t's
// location.
func EndOfMonth(t time.Time) time.Time {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
}

func renameFields(record types.Record, mapping map[string]string) map[string]string {
	fields := make(map[string]string, len(mapping))
	for from, to := range mapping {
		if value, ok := record[from]; ok {
			fields[to] = value
		}
	}
	return fields
}
