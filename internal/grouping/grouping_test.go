package grouping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocNumbers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		refs     []string
		expected []int
	}{
		{name: "empty", refs: []string{}, expected: []int{}},
		{name: "single", refs: []string{"A"}, expected: []int{1}},
		{name: "contiguous", refs: []string{"A", "A", "B", "B", "B"}, expected: []int{1, 1, 2, 2, 2}},
		{name: "interrupted reference reuses first number", refs: []string{"A", "B", "A"}, expected: []int{1, 2, 1}},
		{name: "interleaved", refs: []string{"A", "B", "C", "B", "A", "C"}, expected: []int{1, 2, 3, 2, 1, 3}},
		{name: "empty reference is a real value", refs: []string{"", "", "A", ""}, expected: []int{1, 1, 2, 1}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, DocNumbers(tc.refs))
		})
	}
}

func TestDocNumbers_DistinctCountEqualsDistinctReferences(t *testing.T) {
	t.Parallel()

	refs := []string{"SO-3", "SO-1", "SO-3", "SO-2", "SO-1", "SO-1", "SO-4", "SO-2"}
	assignments := AssignExport(refs)

	distinctRefs := make(map[string]struct{})
	for _, r := range refs {
		distinctRefs[r] = struct{}{}
	}
	assert.Equal(t, len(distinctRefs), DistinctDocuments(assignments))

	// Same reference, same document; different reference, different document.
	for i := range refs {
		for j := range refs {
			assert.Equal(t, refs[i] == refs[j], assignments[i].DocNum == assignments[j].DocNum, "rows %d and %d", i, j)
		}
	}
}

func TestDocNumbers_FreshStatePerCall(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int{1, 2}, DocNumbers([]string{"X", "Y"}))
	assert.Equal(t, []int{1, 2}, DocNumbers([]string{"Y", "X"}))
}

func TestLineNumbers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int{}, LineNumbers([]int{}))
	assert.Equal(t, []int{0, 0, 1, 1, 2, 0}, LineNumbers([]int{1, 2, 1, 2, 1, 3}))
}

func TestLineNumbers_ContiguousFromZero(t *testing.T) {
	t.Parallel()

	assignments := AssignExport([]string{"B", "A", "B", "C", "A", "B", "A"})

	perDoc := make(map[int][]int)
	for _, a := range assignments {
		perDoc[a.DocNum] = append(perDoc[a.DocNum], a.LineNum)
	}
	for docNum, lines := range perDoc {
		for i, line := range lines {
			assert.Equal(t, i, line, "document %d", docNum)
		}
	}
}

func TestAssignExport(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []Assignment{
		{DocNum: 1, LineNum: 0},
		{DocNum: 2, LineNum: 0},
		{DocNum: 1, LineNum: 1},
	}, AssignExport([]string{"A", "B", "A"}))
}

func TestAssignDomestic(t *testing.T) {
	t.Parallel()

	assert.Empty(t, AssignDomestic(0))
	assert.Equal(t, []Assignment{
		{DocNum: 1, LineNum: 0},
		{DocNum: 2, LineNum: 0},
		{DocNum: 3, LineNum: 0},
	}, AssignDomestic(3))
}
