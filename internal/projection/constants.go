// =============================================================================
// SO Automation - Business Constants
// =============================================================================
//
// Fixed values written into the ORDR/RDR1 tables. They live here, under names,
// so that a mode profile (profiles/<mode>.yaml) can override them without any
// change to the projection logic.
//
// =============================================================================

package projection

import "github.com/ginjaninja78/so-automation/internal/types"

// Default export constants.
const (
	DefaultExportDocType       = "dDocument_Items"
	DefaultExportSeries        = "882"
	DefaultAccountCode         = "410000"
	DefaultFreight             = "NA"
	DefaultDutyStatus          = "Without Payment of Duty"
	DefaultExportSalesCategory = "Export"
	DefaultDepartment          = "NA"
	DefaultXMLFileStatus       = "1"
	DefaultBusinessPlaceID     = "3"
	DefaultExportMHXML         = "1"
	DefaultMissingDueDate      = "N/A"
)

// Default domestic constants.
const (
	DefaultDomesticSeries = "881"

	// DefaultDateLayout is the Go layout of dates generated by the tool.
	DefaultDateLayout = "20060102"
)

// DefaultFlagSubstrings are the customer code fragments that turn the
// domestic U_MHXML flag off (unregistered dealers and cash customers).
var DefaultFlagSubstrings = []string{"URD", "CASH"}

// Legacy column names of the older RDR1 schema.
var (
	exportLineLegacyRow = []string{
		"DocNum", "LineNum", "ItemCode", "SubCatNum", "Quantity",
		"PriceBefDi", "AcctCode", "TaxCode", "WhsCode",
	}
	domesticLineLegacyRow = []string{
		"DocNum", "LineNum", "ItemCode", "SubCatNum", "Quantity",
		"PriceBefDi", "TaxCode", "WhsCode",
	}
)

// Constants holds every fixed value used by the projectors of one mode.
type Constants struct {
	// DocType is the ORDR DocType in export mode.
	DocType string `yaml:"doc_type"`

	// Series is the ORDR numbering series.
	Series string `yaml:"series"`

	// AccountCode is the RDR1 AccountCode (export only).
	AccountCode string `yaml:"account_code"`

	Freight         string `yaml:"freight"`
	DutyStatus      string `yaml:"duty_status"`
	SalesCategory   string `yaml:"sales_category"`
	Department      string `yaml:"department"`
	XMLFileStatus   string `yaml:"xml_file_status"`
	BusinessPlaceID string `yaml:"business_place_id"`
	MHXML           string `yaml:"mhxml"`

	// MissingDueDate is written when the upload has no due date column.
	MissingDueDate string `yaml:"missing_due_date"`

	// FlagSubstrings drive the domestic U_MHXML flag: "0" when the customer
	// code contains any of them (case-sensitive), "1" otherwise.
	FlagSubstrings []string `yaml:"flag_substrings"`

	// DateLayout formats the dates the tool generates (domestic mode).
	DateLayout string `yaml:"date_layout"`

	// HeaderLegacyRows and LineLegacyRows are emitted as the first data rows
	// of ORDR and RDR1, for older import templates.
	HeaderLegacyRows [][]string `yaml:"header_legacy_rows"`
	LineLegacyRows   [][]string `yaml:"line_legacy_rows"`
}

// DefaultConstants returns the built-in constants of a mode.
func DefaultConstants(mode types.Mode) Constants {
	switch mode {
	case types.ModeDomestic:
		return Constants{
			Series:         DefaultDomesticSeries,
			FlagSubstrings: append([]string(nil), DefaultFlagSubstrings...),
			DateLayout:     DefaultDateLayout,
			HeaderLegacyRows: [][]string{
				copyRow(DomesticHeaderColumns),
				copyRow(DomesticHeaderColumns),
			},
			LineLegacyRows: [][]string{
				copyRow(DomesticLineColumns),
				copyRow(domesticLineLegacyRow),
			},
		}
	default:
		return Constants{
			DocType:          DefaultExportDocType,
			Series:           DefaultExportSeries,
			AccountCode:      DefaultAccountCode,
			Freight:          DefaultFreight,
			DutyStatus:       DefaultDutyStatus,
			SalesCategory:    DefaultExportSalesCategory,
			Department:       DefaultDepartment,
			XMLFileStatus:    DefaultXMLFileStatus,
			BusinessPlaceID:  DefaultBusinessPlaceID,
			MHXML:            DefaultExportMHXML,
			MissingDueDate:   DefaultMissingDueDate,
			DateLayout:       DefaultDateLayout,
			HeaderLegacyRows: [][]string{copyRow(ExportHeaderColumns)},
			LineLegacyRows:   [][]string{copyRow(exportLineLegacyRow)},
		}
	}
}

// Merge returns c with every non-empty field of override applied on top.
func (c Constants) Merge(override Constants) Constants {
	set := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}

	set(&c.DocType, override.DocType)
	set(&c.Series, override.Series)
	set(&c.AccountCode, override.AccountCode)
	set(&c.Freight, override.Freight)
	set(&c.DutyStatus, override.DutyStatus)
	set(&c.SalesCategory, override.SalesCategory)
	set(&c.Department, override.Department)
	set(&c.XMLFileStatus, override.XMLFileStatus)
	set(&c.BusinessPlaceID, override.BusinessPlaceID)
	set(&c.MHXML, override.MHXML)
	set(&c.MissingDueDate, override.MissingDueDate)
	set(&c.DateLayout, override.DateLayout)

	if len(override.FlagSubstrings) > 0 {
		c.FlagSubstrings = override.FlagSubstrings
	}
	if len(override.HeaderLegacyRows) > 0 {
		c.HeaderLegacyRows = override.HeaderLegacyRows
	}
	if len(override.LineLegacyRows) > 0 {
		c.LineLegacyRows = override.LineLegacyRows
	}

	return c
}

func copyRow(row []string) []string {
	return append([]string(nil), row...)
}
