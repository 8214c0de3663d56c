package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/so-automation/internal/config"
	"github.com/ginjaninja78/so-automation/internal/types"
)

func TestTransform_Actions(t *testing.T) {
	t.Parallel()

	row := types.Record{"Warehouse": "WH01"}

	tests := []struct {
		name   string
		action config.TransformationAction
		input  string
		want   string
	}{
		{"prepend", config.TransformationAction{Type: "prepend_string", Value: "PO-"}, "1001", "PO-1001"},
		{"append", config.TransformationAction{Type: "append_string", Value: "-X"}, "A", "A-X"},
		{"trim", config.TransformationAction{Type: "trim"}, "  a b ", "a b"},
		{"trim left chars", config.TransformationAction{Type: "trim_left", Value: "#"}, "##7", "7"},
		{"trim right", config.TransformationAction{Type: "trim_right"}, "7 \t", "7"},
		{"uppercase", config.TransformationAction{Type: "uppercase"}, "po-a", "PO-A"},
		{"lowercase", config.TransformationAction{Type: "lowercase"}, "USD", "usd"},
		{"replace", config.TransformationAction{Type: "replace", Find: " ", Value: ""}, "WH 01", "WH01"},
		{"regex replace", config.TransformationAction{Type: "regex_replace", Find: `^0+(\d)`, Value: "$1"}, "0042", "42"},
		{"substring", config.TransformationAction{Type: "substring", Value: "0,3"}, "ITM-001", "ITM"},
		{"substring past end", config.TransformationAction{Type: "substring", Value: "4,99"}, "ITM-001", "001"},
		{"pad zeros", config.TransformationAction{Type: "pad_zeros_to_length", Value: "6"}, "123", "000123"},
		{"pad spaces", config.TransformationAction{Type: "pad_spaces_to_length", Value: "4"}, "ab", "ab  "},
		{"ensure length truncates", config.TransformationAction{Type: "ensure_length", Value: "3"}, "12345", "123"},
		{"format number", config.TransformationAction{Type: "format_number", Value: "2"}, "1234.565", "1234.57"},
		{"format number not a number", config.TransformationAction{Type: "format_number", Value: "2"}, "n/a", "n/a"},
		{"remove leading zeros", config.TransformationAction{Type: "remove_leading_zeros"}, "000", "0"},
		{"format date", config.TransformationAction{Type: "format_date", Value: "02/01/2006|20060102"}, "15/01/2024", "20240115"},
		{"format date mismatch", config.TransformationAction{Type: "format_date", Value: "02/01/2006|20060102"}, "2024-01-15", "2024-01-15"},
		{"lookup hit", config.TransformationAction{Type: "lookup", LookupTable: map[string]string{"W1": "WH01"}}, "W1", "WH01"},
		{"lookup miss", config.TransformationAction{Type: "lookup", LookupTable: map[string]string{"W1": "WH01"}}, "W2", "W2"},
		{"lookup default", config.TransformationAction{Type: "lookup_with_default", Value: "WH99", LookupTable: map[string]string{}}, "W2", "WH99"},
		{"empty default", config.TransformationAction{Type: "if_empty_use_default", Value: "IGST0"}, " ", "IGST0"},
		{"empty field", config.TransformationAction{Type: "if_empty_use_field", Value: "Warehouse"}, "", "WH01"},
		{"digits", config.TransformationAction{Type: "extract_digits"}, "PO-12/34", "1234"},
		{"letters", config.TransformationAction{Type: "extract_letters"}, "PO-12x", "POx"},
		{"special chars", config.TransformationAction{Type: "remove_special_chars"}, "PO-1/2", "PO12"},
		{"whitespace", config.TransformationAction{Type: "normalize_whitespace"}, " a \t b  ", "a b"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			transformer, err := NewTransformer([]config.TransformationRule{
				{Field: "Value", Actions: []config.TransformationAction{tt.action}},
			})
			require.NoError(t, err)

			got, err := transformer.Transform("Value", tt.input, row)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransform_ActionsChain(t *testing.T) {
	t.Parallel()

	transformer, err := NewTransformer([]config.TransformationRule{
		{Field: "Part No", Actions: []config.TransformationAction{
			{Type: "trim"},
			{Type: "extract_digits"},
			{Type: "pad_zeros_to_length", Value: "5"},
			{Type: "prepend_string", Value: "P"},
		}},
	})
	require.NoError(t, err)

	got, err := transformer.Transform("Part No", " p-42 ", nil)
	require.NoError(t, err)
	assert.Equal(t, "P00042", got)

	got, err = transformer.Transform("Item Code", " untouched ", nil)
	require.NoError(t, err)
	assert.Equal(t, " untouched ", got)
}

func TestNewTransformer_Invalid(t *testing.T) {
	t.Parallel()

	_, err := NewTransformer([]config.TransformationRule{
		{Field: "Price", Actions: []config.TransformationAction{{Type: "title_case"}}},
	})
	assert.ErrorContains(t, err, "unknown transformation type: title_case")

	_, err = NewTransformer([]config.TransformationRule{
		{Field: "Price", Actions: []config.TransformationAction{{Type: "regex_replace", Find: "("}}},
	})
	assert.ErrorContains(t, err, "invalid regex pattern")
}

func TestTransformTable(t *testing.T) {
	t.Parallel()

	table := &types.InputTable{
		Columns:    []string{"Customer Reference No", "Price"},
		Records:    []types.Record{{"Customer Reference No": " a ", "Price": "1"}},
		RowNumbers: []int{2},
	}

	transformer, err := NewTransformer([]config.TransformationRule{
		{Field: "Customer Reference No", Actions: []config.TransformationAction{{Type: "trim"}, {Type: "uppercase"}}},
		{Field: "Docrate", Actions: []config.TransformationAction{{Type: "trim"}}},
	})
	require.NoError(t, err)

	skipped, err := transformer.TransformTable(table)
	require.NoError(t, err)
	assert.Equal(t, []string{"Docrate"}, skipped)
	assert.Equal(t, "A", table.Records[0]["Customer Reference No"])
}
