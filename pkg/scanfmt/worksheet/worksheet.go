// Package worksheet defines the capability boundary between the scan-report
// pipeline and the spreadsheet engine that hosts the workbook.
package worksheet

import "fmt"

// Range is a rectangular region of a worksheet. Row and Col are the 0-based
// absolute coordinates of the top-left cell; Rows and Cols are the extents.
type Range struct {
	Row  int
	Col  int
	Rows int
	Cols int
}

// LastRow returns the 0-based absolute index of the bottom row.
func (r Range) LastRow() int {
	return r.Row + r.Rows - 1
}

// LastCol returns the 0-based absolute index of the rightmost column.
func (r Range) LastCol() int {
	return r.Col + r.Cols - 1
}

// ContainsCol reports whether the absolute column falls inside the range.
func (r Range) ContainsCol(col int) bool {
	return col >= r.Col && col <= r.LastCol()
}

// RelativeColumn translates an absolute column index into an index relative
// to the left edge of r. It fails when the column precedes the range, since
// range operations only accept non-negative relative indices.
func RelativeColumn(abs int, r Range) (int, error) {
	rel := abs - r.Col
	if rel < 0 {
		return 0, fmt.Errorf("column %d precedes range start column %d", abs, r.Col)
	}
	return rel, nil
}

// Worksheet is the set of host operations the pipeline needs. The first row
// of any range passed to SortRange or RemoveDuplicateRows is treated as a
// header: it is never reordered, compared, or removed.
type Worksheet interface {
	// Name returns the workbook's display name, including its file suffix.
	Name() string

	// UsedRange returns the bounding rectangle of non-empty cells. The bool
	// is false when the sheet holds no data at all.
	UsedRange() (Range, bool, error)

	// HideColumns marks the absolute columns start through end (inclusive)
	// as hidden. Hiding is a display attribute and is idempotent.
	HideColumns(start, end int) error

	// ApplyAutoFilter establishes the sheet's single autofilter over the
	// absolute columns start through end, spanning the used rows. Any prior
	// filter scope and criteria are replaced. On a sheet with no data it is
	// a no-op.
	ApplyAutoFilter(start, end int) error

	// FilterRange returns the active autofilter's scope, if any.
	FilterRange() (Range, bool)

	// SortRange sorts the data rows of r ascending by the range-relative
	// column keyCol. Comparison is case-insensitive with numeric cells
	// ordered before text; rows with equal keys keep their original order.
	SortRange(r Range, keyCol int) error

	// RemoveDuplicateRows deletes every data row of r whose values in the
	// range-relative keyCols exactly match an earlier row. The first
	// occurrence survives and surviving rows keep their relative order.
	// It returns the number of rows deleted.
	RemoveDuplicateRows(r Range, keyCols []int) (int, error)

	// SetRowHeights sets every row of r to exactly height.
	SetRowHeights(r Range, height float64) error

	// RestrictToValues reconfigures the active autofilter so that only data
	// rows whose value in the filter-relative column keyCol is one of
	// allowed stay visible. Non-matching rows are hidden, never deleted.
	// It returns the number of rows hidden.
	RestrictToValues(keyCol int, allowed []string) (int, error)

	// AutoFitColumn resizes the absolute column's width to fit its content.
	AutoFitColumn(col int) error

	// InsertColumn inserts a new column immediately before the absolute
	// anchor column, shifting subsequent columns right. The header cell is
	// set to header and every data row of the used range is filled with the
	// literal fill value.
	InsertColumn(before int, header, fill string) error
}
