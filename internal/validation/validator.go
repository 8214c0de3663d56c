// =============================================================================
// SO Automation - Validation Engine
// =============================================================================
//
// This module checks an uploaded table before it is projected into the ERP
// tables. It validates:
//   - Required columns for the mode (fatal)
//   - Non-empty input (fatal)
//   - Numeric columns: Quantity, Price and, for export, Docrate
//   - Export date columns: Document Date, Tax Date, Due Date
//   - Export customer references (an empty reference still forms a document)
//
// ERROR HANDLING:
//   - Issues are collected, not returned on the first failure
//   - Each issue carries the source row number, the column and the value
//   - Value checks are warnings unless strict validation is on
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/so-automation/internal/projection"
	"github.com/ginjaninja78/so-automation/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation issue.
type ValidationError struct {
	// Severity is SeverityError (the file is rejected) or SeverityWarning.
	Severity string

	// Field is the input column the issue refers to.
	Field string

	// Value is the offending cell value.
	Value string

	// Rule names the check that failed: "required_column", "not_empty",
	// "numeric", "positive", "date", "reference".
	Rule string

	// Message is a human-readable message.
	Message string

	// RowNumber is the 1-based row in the source file, 0 for table-level issues.
	RowNumber int

	// Cause is the typed error behind a table-level issue, if any.
	Cause error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.RowNumber == 0 {
		return fmt.Sprintf("[%s] %s", strings.ToUpper(e.Severity), e.Message)
	}
	return fmt.Sprintf("[%s] Row %d, Field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.RowNumber,
		e.Field,
		e.Message,
		e.Value,
	)
}

// Unwrap returns the typed cause, so errors.As finds a MissingColumnError.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all issues, warnings included, in discovery order.
	Errors []*ValidationError

	// ErrorCount is the number of fatal errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// RowsValidated is the number of data rows checked.
	RowsValidated int
}

// Warnings returns the non-fatal issues.
func (r *ValidationResult) Warnings() []*ValidationError {
	return r.filter(SeverityWarning)
}

// Fatal returns the fatal issues.
func (r *ValidationResult) Fatal() []*ValidationError {
	return r.filter(SeverityError)
}

func (r *ValidationResult) filter(severity string) []*ValidationError {
	var out []*ValidationError
	for _, e := range r.Errors {
		if e.Severity == severity {
			out = append(out, e)
		}
	}
	return out
}

// Err joins the fatal issues into one error, or returns nil.
func (r *ValidationResult) Err() error {
	fatal := r.Fatal()
	if len(fatal) == 0 {
		return nil
	}

	errs := make([]error, len(fatal))
	for i, e := range fatal {
		errs[i] = e
	}
	return errors.Join(errs...)
}

func (r *ValidationResult) add(e *ValidationError) {
	r.Errors = append(r.Errors, e)
	if e.Severity == SeverityError {
		r.ErrorCount++
		r.IsValid = false
	} else {
		r.WarningCount++
	}
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// Strict turns value warnings into fatal errors.
	Strict bool

	// DateLayouts are the accepted Go time layouts for export date columns.
	// Default: DefaultDateLayouts
	DateLayouts []string
}

// DefaultDateLayouts are the layouts accepted for export dates: the ERP's
// compact form, ISO, and the usual Excel display formats.
var DefaultDateLayouts = []string{
	"20060102",
	"2006-01-02",
	"2006/01/02",
	"02.01.2006",
	"01-02-06",
	"1/2/2006",
	"1/2/06",
	"2-Jan-2006",
	"02-Jan-06",
	"2006-01-02 15:04:05",
}

// Validate validates an uploaded table for a mode.
// This is the main entry point for validation.
//
// PARAMETERS:
//   - table: The parsed upload.
//   - mode: The mode the table will be projected with.
//   - options: Validation options.
//
// RETURNS:
//   - The validation result. Use Err() to get the fatal issues as one error.
func Validate(table *types.InputTable, mode types.Mode, options ValidationOptions) *ValidationResult {
	if len(options.DateLayouts) == 0 {
		options.DateLayouts = DefaultDateLayouts
	}

	result := &ValidationResult{IsValid: true}

	if mode != types.ModeDomestic && mode != types.ModeExport {
		result.add(&ValidationError{
			Severity: SeverityError,
			Rule:     "mode",
			Message:  fmt.Sprintf("unknown mode %q", mode),
			Cause:    types.ErrUnknownMode,
		})
		return result
	}

	// Table-level checks first; value checks are meaningless without columns.
	for _, column := range projection.RequiredColumns(mode) {
		if !table.HasColumn(column) {
			cause := &types.MissingColumnError{Column: column}
			result.add(&ValidationError{
				Severity: SeverityError,
				Field:    column,
				Rule:     "required_column",
				Message:  cause.Error(),
				Cause:    cause,
			})
		}
	}

	if len(table.Records) == 0 {
		result.add(&ValidationError{
			Severity: SeverityError,
			Rule:     "not_empty",
			Message:  types.ErrEmptyInput.Error(),
			Cause:    types.ErrEmptyInput,
		})
	}

	if !result.IsValid {
		return result
	}

	v := &rowValidator{result: result, options: options}
	for i, record := range table.Records {
		v.row = table.RowNumber(i)
		v.record = record

		v.quantity(projection.ColQuantity)
		v.number(projection.ColPrice)

		if mode == types.ModeExport {
			v.reference(projection.ReferenceColumn(mode))
			v.number(projection.ColExportRate)
			v.date(projection.ColExportDocDate)
			v.date(projection.ColExportTaxDate)
			if table.HasColumn(projection.ColExportDueDate) {
				v.date(projection.ColExportDueDate)
			}
		}

		result.RowsValidated++
	}

	return result
}

// =============================================================================
// ROW VALIDATORS
// =============================================================================

type rowValidator struct {
	result  *ValidationResult
	options ValidationOptions
	row     int
	record  types.Record
}

// issue records a value problem: a warning, or fatal in strict mode.
func (v *rowValidator) issue(field, rule, message string) {
	severity := SeverityWarning
	if v.options.Strict {
		severity = SeverityError
	}
	v.report(severity, field, rule, message)
}

func (v *rowValidator) report(severity, field, rule, message string) {
	v.result.add(&ValidationError{
		Severity:  severity,
		Field:     field,
		Value:     v.record.Get(field),
		Rule:      rule,
		Message:   message,
		RowNumber: v.row,
	})
}

// number checks that a non-empty value is a decimal number.
func (v *rowValidator) number(field string) {
	value := strings.TrimSpace(v.record.Get(field))
	if value == "" {
		return
	}
	if _, err := decimal.NewFromString(value); err != nil {
		v.issue(field, "numeric", "value is not a number")
	}
}

// quantity checks that the quantity is present, numeric and positive.
func (v *rowValidator) quantity(field string) {
	value := strings.TrimSpace(v.record.Get(field))
	if value == "" {
		v.issue(field, "numeric", "quantity is empty")
		return
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		v.issue(field, "numeric", "value is not a number")
		return
	}
	if !d.IsPositive() {
		v.issue(field, "positive", "quantity must be greater than zero")
	}
}

// date checks that a non-empty value matches one of the accepted layouts.
func (v *rowValidator) date(field string) {
	value := strings.TrimSpace(v.record.Get(field))
	if value == "" {
		return
	}

	for _, layout := range v.options.DateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return
		}
	}

	v.issue(field, "date", "value is not a recognized date")
}

// reference warns about an empty customer reference: all such rows are
// merged into one document. This stays a warning in strict mode.
func (v *rowValidator) reference(field string) {
	if strings.TrimSpace(v.record.Get(field)) == "" {
		v.report(SeverityWarning, field, "reference", "empty customer reference; rows without a reference share one document")
	}
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation issues for display or logging.
func FormatErrors(errs []*ValidationError) string {
	if len(errs) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d issue(s):\n\n", len(errs)))

	for i, err := range errs {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}
