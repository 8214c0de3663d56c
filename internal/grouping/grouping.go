// =============================================================================
// SO Automation - Document Grouping
// =============================================================================
//
// This module assigns a document number and a line number to every input row.
// It is the only piece of real logic between the uploaded table and the two
// ERP import tables (ORDR headers, RDR1 lines).
//
// EXPORT MODE:
//   Rows are grouped by their customer reference. Each distinct reference
//   gets the next document number on its first appearance; a reference that
//   comes back later in the file, after other references, reuses the number
//   it got the first time. Grouping is by identity, not by contiguity:
//
//   | Row | Reference | DocNum | LineNum |
//   |-----|-----------|--------|---------|
//   | 1   | A         | 1      | 0       |
//   | 2   | B         | 2      | 0       |
//   | 3   | A         | 1      | 1       |
//
// DOMESTIC MODE:
//   Every row is its own document: DocNum is the 1-based row position and
//   LineNum is always 0.
//
// =============================================================================

package grouping

// Assignment is the (DocumentNumber, LineNumber) pair of one input row.
type Assignment struct {
	// DocNum is the 1-based document number.
	DocNum int

	// LineNum is the 0-based position of the row within its document.
	LineNum int
}

// =============================================================================
// EXPORT MODE
// =============================================================================

// docNumAssigner holds the running state of one export grouping pass.
// A fresh assigner is created for every table; nothing is shared between calls.
type docNumAssigner struct {
	mapping map[string]int
	next    int

	// prev is the previous row's reference. hasPrev is false before the first
	// row, so that no real value (the empty string included) equals the
	// initial "previous" value.
	prev    string
	hasPrev bool
}

func newDocNumAssigner() *docNumAssigner {
	return &docNumAssigner{
		mapping: make(map[string]int),
		next:    1,
	}
}

// assign returns the document number for the next row's reference.
func (a *docNumAssigner) assign(ref string) int {
	if !a.hasPrev || ref != a.prev {
		if _, exists := a.mapping[ref]; !exists {
			a.mapping[ref] = a.next
			a.next++
		}
	}
	a.prev = ref
	a.hasPrev = true
	return a.mapping[ref]
}

// DocNumbers assigns export document numbers to a sequence of references.
//
// The mapping is checked before insertion, so a reference interrupted by a
// different value and seen again keeps its first number.
func DocNumbers(refs []string) []int {
	assigner := newDocNumAssigner()
	docNums := make([]int, len(refs))
	for i, ref := range refs {
		docNums[i] = assigner.assign(ref)
	}
	return docNums
}

// LineNumbers computes, for each row, a running count per document number
// starting at 0. It runs after grouping is final and only looks at the
// document numbers, never at row positions.
func LineNumbers(docNums []int) []int {
	counts := make(map[int]int)
	lineNums := make([]int, len(docNums))
	for i, docNum := range docNums {
		lineNums[i] = counts[docNum]
		counts[docNum]++
	}
	return lineNums
}

// AssignExport groups rows by reference value and numbers the lines of each
// resulting document.
func AssignExport(refs []string) []Assignment {
	docNums := DocNumbers(refs)
	lineNums := LineNumbers(docNums)

	assignments := make([]Assignment, len(refs))
	for i := range refs {
		assignments[i] = Assignment{DocNum: docNums[i], LineNum: lineNums[i]}
	}
	return assignments
}

// =============================================================================
// DOMESTIC MODE
// =============================================================================

// AssignDomestic gives each of n rows its own document.
//
// NOTE: domestic lines are not numbered per document the way export lines
// are; LineNum is a fixed 0. This differs from export mode and is probably a
// product inconsistency, but it is what the ERP import currently expects.
func AssignDomestic(n int) []Assignment {
	assignments := make([]Assignment, n)
	for i := range assignments {
		assignments[i] = Assignment{DocNum: i + 1, LineNum: 0}
	}
	return assignments
}

// =============================================================================
// HELPERS
// =============================================================================

// DistinctDocuments returns the number of distinct document numbers.
func DistinctDocuments(assignments []Assignment) int {
	seen := make(map[int]struct{}, len(assignments))
	for _, a := range assignments {
		seen[a.DocNum] = struct{}{}
	}
	return len(seen)
}
