// =============================================================================
// SO Automation - Projection
// =============================================================================
//
// This module turns one input table into the two ERP import tables:
//
//   ORDR ("Ordr") : order headers, one row per document
//   RDR1          : order lines, one row per input row
//
// PIPELINE:
//   1. Check required columns and that the table is not empty
//   2. Assign document and line numbers (grouping package)
//   3. Project header and line rows for the mode
//   4. Prepend the legacy compatibility rows
//
// =============================================================================

package projection

import (
	"fmt"
	"time"

	"github.com/ginjaninja78/so-automation/internal/grouping"
	"github.com/ginjaninja78/so-automation/internal/types"
)

// Output holds the two tables produced for one input table.
type Output struct {
	Mode types.Mode

	// Header is the ORDR table.
	Header types.Table

	// Line is the RDR1 table.
	Line types.Table

	// Documents is the number of distinct documents created.
	Documents int
}

// Project runs the whole projection for one mode.
//
// now is only read in domestic mode, where generated dates depend on it.
func Project(mode types.Mode, table *types.InputTable, c Constants, now time.Time) (*Output, error) {
	if mode != types.ModeDomestic && mode != types.ModeExport {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownMode, mode)
	}
	if err := CheckColumns(table, mode); err != nil {
		return nil, err
	}
	if len(table.Records) == 0 {
		return nil, types.ErrEmptyInput
	}

	out := &Output{Mode: mode}

	switch mode {
	case types.ModeExport:
		assignments := grouping.AssignExport(table.Values(ReferenceColumn(mode)))
		hasDueDate := table.HasColumn(ColExportDueDate)

		out.Documents = grouping.DistinctDocuments(assignments)
		out.Line = Assemble(LineTableName, ExportLineColumns, c.LineLegacyRows,
			ExportLines(table.Records, assignments, c))
		out.Header = Assemble(HeaderTableName, ExportHeaderColumns, c.HeaderLegacyRows,
			ExportHeaders(table.Records, assignments, c, hasDueDate))

	case types.ModeDomestic:
		assignments := grouping.AssignDomestic(len(table.Records))

		out.Documents = len(assignments)
		out.Line = Assemble(LineTableName, DomesticLineColumns, c.LineLegacyRows,
			DomesticLines(table.Records, assignments))
		out.Header = Assemble(HeaderTableName, DomesticHeaderColumns, c.HeaderLegacyRows,
			DomesticHeaders(table.Records, assignments, c, now))
	}

	return out, nil
}
