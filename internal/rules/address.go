package rules

import "strings"

// Address carries the spatial fields a row-oriented source may supply in any
// combination. Normalize derives the most specific cell range available; the
// raw fields are still carried on the compiled rule so the evaluator can fall
// back to column- or row-only addressing.
type Address struct {
	Column      string
	Row         string
	ColumnRange string
	RowRange    string
	CellRange   string
}

// Normalize returns the canonical cell range for the address:
// an explicit CellRange wins, then Column+Row (single cell), then
// ColumnRange x RowRange composed as startCol+startRow:endCol+endRow.
// Returns "" when no range is derivable. No bounds checking is performed
// against actual sheet dimensions; that is an evaluator-time concern.
func (a Address) Normalize() string {
	if a.CellRange != "" {
		return a.CellRange
	}
	if a.Column != "" && a.Row != "" {
		return a.Column + a.Row
	}
	if a.ColumnRange != "" && a.RowRange != "" {
		startCol, endCol := splitBound(a.ColumnRange)
		startRow, endRow := splitBound(a.RowRange)
		return startCol + startRow + ":" + endCol + endRow
	}
	return ""
}

// splitBound splits a range bound like "A-C" into start and end; a bound
// without a dash is a degenerate range with start == end.
func splitBound(bound string) (string, string) {
	if i := strings.Index(bound, "-"); i >= 0 {
		return strings.TrimSpace(bound[:i]), strings.TrimSpace(bound[i+1:])
	}
	bound = strings.TrimSpace(bound)
	return bound, bound
}
