// =============================================================================
// SO Automation - Transformation Engine
// =============================================================================
//
// This module applies the profile's transformation rules to input columns
// before the table is validated and projected. Typical uses:
//   - Trimming or upper-casing customer references so equal orders group
//   - Mapping warehouse or tax codes through a lookup table
//   - Reformatting dates to the ERP's YYYYMMDD form
//   - Rounding prices to a fixed number of decimals
//
// Rules run in profile order; the actions of a rule run in sequence, each one
// receiving the previous result.
//
// =============================================================================

package converter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/so-automation/internal/config"
	"github.com/ginjaninja78/so-automation/internal/types"
)

var (
	digitsPattern     = regexp.MustCompile(`\d+`)
	lettersPattern    = regexp.MustCompile(`[a-zA-Z]+`)
	specialPattern    = regexp.MustCompile(`[^a-zA-Z0-9]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer applies the transformation rules of one profile.
type Transformer struct {
	// byField indexes the rules by input column. When a column has several
	// rules, their actions are concatenated in profile order.
	byField map[string][]config.TransformationAction

	// order is the column order of the rules, for TransformTable.
	order []string

	// regexes holds the compiled regex_replace patterns.
	regexes map[string]*regexp.Regexp
}

// NewTransformer creates a Transformer and checks every action up front, so a
// broken profile fails before any file is touched.
func NewTransformer(rules []config.TransformationRule) (*Transformer, error) {
	t := &Transformer{
		byField: make(map[string][]config.TransformationAction),
		regexes: make(map[string]*regexp.Regexp),
	}

	for _, rule := range rules {
		for _, action := range rule.Actions {
			if _, ok := actionFuncs[action.Type]; !ok {
				return nil, fmt.Errorf("field '%s': unknown transformation type: %s", rule.Field, action.Type)
			}
			if action.Type != "regex_replace" || action.Find == "" {
				continue
			}
			re, err := regexp.Compile(action.Find)
			if err != nil {
				return nil, fmt.Errorf("field '%s': invalid regex pattern: %w", rule.Field, err)
			}
			t.regexes[action.Find] = re
		}

		if _, seen := t.byField[rule.Field]; !seen {
			t.order = append(t.order, rule.Field)
		}
		t.byField[rule.Field] = append(t.byField[rule.Field], rule.Actions...)
	}

	return t, nil
}

// TransformTable applies every rule to every record of the table in place.
//
// RETURNS:
//   - The rule fields that are not columns of the table (skipped).
//   - An error naming the source row if an action fails.
func (t *Transformer) TransformTable(table *types.InputTable) (skipped []string, err error) {
	for _, field := range t.order {
		if !table.HasColumn(field) {
			skipped = append(skipped, field)
			continue
		}

		for i, record := range table.Records {
			value, err := t.Transform(field, record.Get(field), record)
			if err != nil {
				return skipped, fmt.Errorf("row %d: %w", table.RowNumber(i), err)
			}
			record[field] = value
		}
	}

	return skipped, nil
}

// Transform runs the actions configured for a column over one value.
//
// PARAMETERS:
//   - field: The input column the value belongs to.
//   - value: The cell value.
//   - row: The whole record, read by if_empty_use_field.
//
// RETURNS:
//   - The value after every action, or the value unchanged when the column
//     has no rule.
//   - An error if an action fails.
func (t *Transformer) Transform(field, value string, row types.Record) (string, error) {
	for _, action := range t.byField[field] {
		var err error
		value, err = actionFuncs[action.Type](t, value, action, row)
		if err != nil {
			return "", fmt.Errorf("field '%s': transformation '%s' failed: %w", field, action.Type, err)
		}
	}
	return value, nil
}

// =============================================================================
// ACTIONS
// =============================================================================

// actionFunc transforms one value. Actions whose parameter cannot be parsed
// return the value unchanged.
type actionFunc func(t *Transformer, value string, action config.TransformationAction, row types.Record) (string, error)

// actionFuncs maps each transformation type to its implementation. A type
// missing here is rejected by NewTransformer.
var actionFuncs = map[string]actionFunc{
	// Strings
	"prepend_string":       pure(func(v string, a config.TransformationAction) string { return a.Value + v }),
	"append_string":        pure(func(v string, a config.TransformationAction) string { return v + a.Value }),
	"trim":                 pure(func(v string, _ config.TransformationAction) string { return strings.TrimSpace(v) }),
	"trim_left":            pure(trimLeft),
	"trim_right":           pure(trimRight),
	"uppercase":            pure(func(v string, _ config.TransformationAction) string { return strings.ToUpper(v) }),
	"lowercase":            pure(func(v string, _ config.TransformationAction) string { return strings.ToLower(v) }),
	"replace":              pure(replace),
	"regex_replace":        regexReplace,
	"substring":            pure(substring),
	"normalize_whitespace": pure(normalizeWhitespace),
	"extract_digits":       pure(extractAll(digitsPattern)),
	"extract_letters":      pure(extractAll(lettersPattern)),
	"remove_special_chars": pure(func(v string, _ config.TransformationAction) string { return specialPattern.ReplaceAllString(v, "") }),

	// Codes and numbers
	"pad_zeros_to_length":  pure(padTo(PadLeft, '0')),
	"pad_spaces_to_length": pure(padTo(PadRight, ' ')),
	"ensure_length":        pure(ensureLength),
	"remove_leading_zeros": pure(removeLeadingZeros),
	"format_number":        pure(formatNumber),

	// Dates
	"format_date": pure(formatDate),

	// Lookups and defaults
	"lookup":               pure(lookup),
	"lookup_with_default":  pure(lookupWithDefault),
	"if_empty_use_default": pure(ifEmptyUseDefault),
	"if_empty_use_field":   ifEmptyUseField,
}

// pure adapts an action that needs neither the transformer nor the row and
// cannot fail.
func pure(fn func(value string, action config.TransformationAction) string) actionFunc {
	return func(_ *Transformer, value string, action config.TransformationAction, _ types.Record) (string, error) {
		return fn(value, action), nil
	}
}

// trimLeft strips the characters in Value, or whitespace when Value is empty.
func trimLeft(value string, action config.TransformationAction) string {
	if action.Value == "" {
		return strings.TrimLeftFunc(value, isBlank)
	}
	return strings.TrimLeft(value, action.Value)
}

func trimRight(value string, action config.TransformationAction) string {
	if action.Value == "" {
		return strings.TrimRightFunc(value, isBlank)
	}
	return strings.TrimRight(value, action.Value)
}

func isBlank(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// replace swaps every Find for Value ("WH 01" -> "WH01" with Find " ").
func replace(value string, action config.TransformationAction) string {
	if action.Find == "" {
		return value
	}
	return strings.ReplaceAll(value, action.Find, action.Value)
}

func regexReplace(t *Transformer, value string, action config.TransformationAction, _ types.Record) (string, error) {
	if action.Find == "" {
		return value, nil
	}
	re, ok := t.regexes[action.Find]
	if !ok {
		return "", fmt.Errorf("regex pattern %q was not compiled", action.Find)
	}
	return re.ReplaceAllString(value, action.Value), nil
}

// substring keeps the byte range "start,end" of Value, end exclusive and
// clamped to the value length.
func substring(value string, action config.TransformationAction) string {
	from, to, ok := strings.Cut(action.Value, ",")
	if !ok {
		return value
	}
	start, _ := strconv.Atoi(strings.TrimSpace(from))
	end, _ := strconv.Atoi(strings.TrimSpace(to))

	start = max(start, 0)
	end = min(end, len(value))
	if start >= end {
		return ""
	}
	return value[start:end]
}

func normalizeWhitespace(value string, _ config.TransformationAction) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(value, " "))
}

// extractAll keeps only the matches of re ("PO-12/34" -> "1234" for digits).
func extractAll(re *regexp.Regexp) func(string, config.TransformationAction) string {
	return func(value string, _ config.TransformationAction) string {
		return strings.Join(re.FindAllString(value, -1), "")
	}
}

// targetLength parses Value as a positive length.
func targetLength(action config.TransformationAction) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(action.Value))
	return n, err == nil && n > 0
}

// padTo pads to the length in Value: item "123" with 6 -> "000123".
func padTo(pad func(string, int, rune) string, padChar rune) func(string, config.TransformationAction) string {
	return func(value string, action config.TransformationAction) string {
		n, ok := targetLength(action)
		if !ok {
			return value
		}
		return pad(value, n, padChar)
	}
}

// ensureLength truncates on the right or zero-pads on the left to Value.
func ensureLength(value string, action config.TransformationAction) string {
	n, ok := targetLength(action)
	if !ok {
		return value
	}
	if len(value) > n {
		return value[:n]
	}
	return PadLeft(value, n, '0')
}

// removeLeadingZeros keeps at least one digit: "000" -> "0".
func removeLeadingZeros(value string, _ config.TransformationAction) string {
	if trimmed := strings.TrimLeft(value, "0"); trimmed != "" {
		return trimmed
	}
	return "0"
}

// formatNumber rounds half away from zero to Value decimal places:
// price "1234.565" with 2 -> "1234.57". Non-numbers pass through.
func formatNumber(value string, action config.TransformationAction) string {
	places, err := strconv.Atoi(strings.TrimSpace(action.Value))
	if err != nil || places < 0 {
		return value
	}
	num, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return value
	}
	return num.StringFixed(int32(places))
}

// formatDate converts between Go layouts given as "input|output":
// "15/01/2024" with "02/01/2006|20060102" -> "20240115". Values that do not
// match the input layout pass through, so validation can report them.
func formatDate(value string, action config.TransformationAction) string {
	in, out, ok := strings.Cut(action.Value, "|")
	if !ok {
		return value
	}
	parsed, err := time.Parse(strings.TrimSpace(in), strings.TrimSpace(value))
	if err != nil {
		return value
	}
	return parsed.Format(strings.TrimSpace(out))
}

func lookup(value string, action config.TransformationAction) string {
	if mapped, ok := action.LookupTable[value]; ok {
		return mapped
	}
	return value
}

// lookupWithDefault falls back to Value for codes missing from the table.
func lookupWithDefault(value string, action config.TransformationAction) string {
	if mapped, ok := action.LookupTable[value]; ok {
		return mapped
	}
	return action.Value
}

func ifEmptyUseDefault(value string, action config.TransformationAction) string {
	if strings.TrimSpace(value) == "" {
		return action.Value
	}
	return value
}

// ifEmptyUseField copies the column named by Value into a blank cell.
func ifEmptyUseField(_ *Transformer, value string, action config.TransformationAction, row types.Record) (string, error) {
	if strings.TrimSpace(value) != "" {
		return value, nil
	}
	if other, ok := row[action.Value]; ok {
		return other, nil
	}
	return value, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// PadLeft left-pads s with padChar up to length bytes.
func PadLeft(s string, length int, padChar rune) string {
	if len(s) >= length {
		return s
	}
	return strings.Repeat(string(padChar), length-len(s)) + s
}

// PadRight right-pads s with padChar up to length bytes.
func PadRight(s string, length int, padChar rune) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(string(padChar), length-len(s))
}
