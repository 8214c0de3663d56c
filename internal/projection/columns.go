package projection

import "github.com/ginjaninja78/so-automation/internal/types"

// Input columns of the export upload.
const (
	ColExportReference = "Customer Reference No"
	ColExportDocDate   = "Document Date"
	ColExportTaxDate   = "Tax Date"
	ColExportDueDate   = "Document Due Date"
	ColExportCurrency  = "DocCur"
	ColExportRate      = "Docrate"
	ColExportCustomer  = "Customer CODE"
)

// Input columns of the domestic upload.
const (
	ColDomesticReference   = "CustomerRefNo"
	ColDomesticDescription = "ItemDescription"
	ColDomesticSeries      = "Series"
	ColDomesticDocDate     = "Document Date"
	ColDomesticTaxDate     = "Tax Date"
	ColDomesticDueDate     = "Document Due Date"
	ColDomesticCustomer    = "Customer Code"
	ColDomesticFreight     = "Frieght"
	ColDomesticSalesCat    = "Sales Category"
	ColDomesticDepartment  = "Department"
)

// Line input columns shared by both uploads.
const (
	ColItemCode  = "Item Code"
	ColPartNo    = "Part No"
	ColQuantity  = "Quantity"
	ColPrice     = "Price"
	ColTaxCode   = "Tax code"
	ColWarehouse = "Warehouse"
)

// Output table names. They are used as sheet names and file name stems.
const (
	LineTableName   = "RDR1"
	HeaderTableName = "Ordr"
)

// ExportLineColumns are the RDR1 column labels in export mode.
var ExportLineColumns = []string{
	"ParentKey", "LineNum", "ItemCode", "SupplierCatNum", "Quantity",
	"UnitPrice", "AccountCode", "TaxCode", "WarehouseCode",
}

// DomesticLineColumns are the RDR1 column labels in domestic mode.
var DomesticLineColumns = []string{
	"ParentKey", "LineNum", "ItemCode", "SupplierCatNum", "Quantity",
	"UnitPrice", "TaxCode", "WarehouseCode",
}

// ExportHeaderColumns are the ORDR column labels in export mode.
var ExportHeaderColumns = []string{
	"DocNum", "DocType", "Series", "NumAtCard", "DocDate", "TaxDate",
	"DocDueDate", "DocCurrency", "DocRate", "CardCode", "U_FRIEGHT",
	"DutyStatus", "U_SALESCAT", "U_DEPT", "U_XmlFileStatus",
	"BPL_IDAssignedToInvoice", "U_MHXML",
}

// DomesticHeaderColumns are the ORDR column labels in domestic mode.
var DomesticHeaderColumns = []string{
	"DocNum", "DocType", "Series", "NumAtCard", "DocDate", "TaxDate",
	"DocDueDate", "CardCode", "U_FRIEGHT", "U_SALESCAT", "U_DEPT", "U_MHXML",
}

// DomesticHeaderMapping renames domestic input columns to ORDR fields.
// Series, dates and U_MHXML are overridden after the rename.
var DomesticHeaderMapping = map[string]string{
	ColDomesticReference:   "NumAtCard",
	ColDomesticDescription: "DocType",
	ColDomesticSeries:      "Series",
	ColDomesticDocDate:     "DocDate",
	ColDomesticTaxDate:     "TaxDate",
	ColDomesticDueDate:     "DocDueDate",
	ColDomesticCustomer:    "CardCode",
	ColDomesticFreight:     "U_FRIEGHT",
	ColDomesticSalesCat:    "U_SALESCAT",
	ColDomesticDepartment:  "U_DEPT",
	ColPartNo:              "U_MHXML",
}

// RequiredColumns returns the input columns a mode cannot work without.
// Optional columns (the export due date, the domestic columns that are
// overridden anyway) are not listed.
func RequiredColumns(mode types.Mode) []string {
	lines := []string{ColItemCode, ColPartNo, ColQuantity, ColPrice, ColTaxCode, ColWarehouse}

	switch mode {
	case types.ModeExport:
		return append([]string{
			ColExportReference, ColExportDocDate, ColExportTaxDate,
			ColExportCurrency, ColExportRate, ColExportCustomer,
		}, lines...)
	case types.ModeDomestic:
		return append([]string{
			ColDomesticReference, ColDomesticDescription, ColDomesticCustomer,
			ColDomesticFreight, ColDomesticSalesCat, ColDomesticDepartment,
		}, lines...)
	default:
		return nil
	}
}

// ReferenceColumn returns the column holding the customer reference.
func ReferenceColumn(mode types.Mode) string {
	if mode == types.ModeDomestic {
		return ColDomesticReference
	}
	return ColExportReference
}

// CheckColumns returns a MissingColumnError for the first required column
// absent from the table.
func CheckColumns(table *types.InputTable, mode types.Mode) error {
	for _, column := range RequiredColumns(mode) {
		if !table.HasColumn(column) {
			return &types.MissingColumnError{Column: column}
		}
	}
	return nil
}
