package worksheet

import (
	"fmt"
	"unicode/utf8"

	"github.com/tiendc/go-deepcopy"
)

// FilterState describes a fake worksheet's autofilter.
type FilterState struct {
	Active    bool
	HeaderRow int
	StartCol  int
	EndCol    int
}

// Fake is an in-memory Worksheet for tests. Cells live in a row-major grid
// addressed by 0-based absolute coordinates; display state is tracked in
// plain maps so tests can assert on it directly.
type Fake struct {
	WorkbookName string
	Grid         [][]string
	HiddenCols   map[int]bool
	HiddenRows   map[int]bool
	Heights      map[int]float64
	Widths       map[int]float64
	AutoFitted   []int
	Filter       FilterState
}

var _ Worksheet = (*Fake)(nil)

// NewFake builds a fake worksheet from a grid of absolute cell values.
func NewFake(name string, grid [][]string) *Fake {
	return &Fake{
		WorkbookName: name,
		Grid:         grid,
		HiddenCols:   make(map[int]bool),
		HiddenRows:   make(map[int]bool),
		Heights:      make(map[int]float64),
		Widths:       make(map[int]float64),
	}
}

// Snapshot returns a deep copy of the fake's entire state, for asserting
// that failed operations leave the worksheet untouched.
func (f *Fake) Snapshot() *Fake {
	var copied Fake
	if err := deepcopy.Copy(&copied, f); err != nil {
		panic(err)
	}
	return &copied
}

// Cell returns the value at the absolute coordinates, or "" outside the grid.
func (f *Fake) Cell(row, col int) string {
	return cellAt(f.Grid, row, col)
}

func (f *Fake) setCell(row, col int, value string) {
	for len(f.Grid) <= row {
		f.Grid = append(f.Grid, nil)
	}
	for len(f.Grid[row]) <= col {
		f.Grid[row] = append(f.Grid[row], "")
	}
	f.Grid[row][col] = value
}

func (f *Fake) Name() string {
	return f.WorkbookName
}

func (f *Fake) UsedRange() (Range, bool, error) {
	r, ok := dataBounds(f.Grid)
	return r, ok, nil
}

func (f *Fake) HideColumns(start, end int) error {
	if start < 0 || end < start {
		return fmt.Errorf("invalid column range %d..%d", start, end)
	}
	for c := start; c <= end; c++ {
		f.HiddenCols[c] = true
	}
	return nil
}

func (f *Fake) ApplyAutoFilter(start, end int) error {
	if start < 0 || end < start {
		return fmt.Errorf("invalid column range %d..%d", start, end)
	}
	f.HiddenRows = make(map[int]bool)
	f.Filter = FilterState{}

	used, ok, _ := f.UsedRange()
	if !ok {
		return nil
	}
	f.Filter = FilterState{
		Active:    true,
		HeaderRow: used.Row,
		StartCol:  start,
		EndCol:    end,
	}
	return nil
}

func (f *Fake) FilterRange() (Range, bool) {
	if !f.Filter.Active {
		return Range{}, false
	}
	r := Range{
		Row:  f.Filter.HeaderRow,
		Col:  f.Filter.StartCol,
		Rows: 1,
		Cols: f.Filter.EndCol - f.Filter.StartCol + 1,
	}
	if used, ok, _ := f.UsedRange(); ok && used.LastRow() > f.Filter.HeaderRow {
		r.Rows = used.LastRow() - f.Filter.HeaderRow + 1
	}
	return r, true
}

func (f *Fake) SortRange(r Range, keyCol int) error {
	if keyCol < 0 || keyCol >= r.Cols {
		return fmt.Errorf("sort column %d outside range of %d columns", keyCol, r.Cols)
	}
	if r.Rows <= 2 {
		return nil
	}

	data := make([][]string, 0, r.Rows-1)
	for row := r.Row + 1; row <= r.LastRow(); row++ {
		cells := make([]string, r.Cols)
		for c := 0; c < r.Cols; c++ {
			cells[c] = cellAt(f.Grid, row, r.Col+c)
		}
		data = append(data, cells)
	}

	sortDataRows(data, keyCol)

	for i, cells := range data {
		for c, value := range cells {
			f.setCell(r.Row+1+i, r.Col+c, value)
		}
	}
	return nil
}

func (f *Fake) RemoveDuplicateRows(r Range, keyCols []int) (int, error) {
	for _, c := range keyCols {
		if c < 0 || c >= r.Cols {
			return 0, fmt.Errorf("key column %d outside range of %d columns", c, r.Cols)
		}
	}

	seen := make(map[string]bool)
	var doomed []int
	for row := r.Row + 1; row <= r.LastRow(); row++ {
		cells := make([]string, r.Cols)
		for c := 0; c < r.Cols; c++ {
			cells[c] = cellAt(f.Grid, row, r.Col+c)
		}
		key := rowKey(cells, keyCols)
		if seen[key] {
			doomed = append(doomed, row)
			continue
		}
		seen[key] = true
	}

	for i := len(doomed) - 1; i >= 0; i-- {
		f.removeRow(doomed[i])
	}
	return len(doomed), nil
}

func (f *Fake) removeRow(row int) {
	if row < len(f.Grid) {
		f.Grid = append(f.Grid[:row], f.Grid[row+1:]...)
	}
	f.HiddenRows = shiftRowKeys(f.HiddenRows, row)
	shifted := make(map[int]float64, len(f.Heights))
	for r, h := range f.Heights {
		switch {
		case r < row:
			shifted[r] = h
		case r > row:
			shifted[r-1] = h
		}
	}
	f.Heights = shifted
}

func shiftRowKeys(m map[int]bool, removed int) map[int]bool {
	shifted := make(map[int]bool, len(m))
	for r, v := range m {
		switch {
		case r < removed:
			shifted[r] = v
		case r > removed:
			shifted[r-1] = v
		}
	}
	return shifted
}

func (f *Fake) SetRowHeights(r Range, height float64) error {
	for row := r.Row; row <= r.LastRow(); row++ {
		f.Heights[row] = height
	}
	return nil
}

func (f *Fake) RestrictToValues(keyCol int, allowed []string) (int, error) {
	filter, ok := f.FilterRange()
	if !ok {
		return 0, fmt.Errorf("no autofilter is active")
	}
	if keyCol < 0 || keyCol >= filter.Cols {
		return 0, fmt.Errorf("filter column %d outside filter range of %d columns", keyCol, filter.Cols)
	}

	allow := make(map[string]bool, len(allowed))
	for _, v := range allowed {
		allow[v] = true
	}

	hidden := 0
	col := filter.Col + keyCol
	for row := filter.Row + 1; row <= filter.LastRow(); row++ {
		if allow[cellAt(f.Grid, row, col)] {
			delete(f.HiddenRows, row)
			continue
		}
		f.HiddenRows[row] = true
		hidden++
	}
	return hidden, nil
}

func (f *Fake) AutoFitColumn(col int) error {
	if col < 0 {
		return fmt.Errorf("invalid column %d", col)
	}
	f.AutoFitted = append(f.AutoFitted, col)

	longest := 0
	for row := range f.Grid {
		if f.HiddenRows[row] {
			continue
		}
		if n := utf8.RuneCountInString(cellAt(f.Grid, row, col)); n > longest {
			longest = n
		}
	}
	if longest == 0 {
		return nil
	}
	width := float64(longest + widthPadding)
	if width < minColumnWidth {
		width = minColumnWidth
	}
	if width > maxColumnWidth {
		width = maxColumnWidth
	}
	f.Widths[col] = width
	return nil
}

func (f *Fake) InsertColumn(before int, header, fill string) error {
	if before < 0 {
		return fmt.Errorf("invalid column %d", before)
	}

	used, ok, _ := f.UsedRange()

	for row := range f.Grid {
		if before >= len(f.Grid[row]) {
			continue
		}
		f.Grid[row] = append(f.Grid[row], "")
		copy(f.Grid[row][before+1:], f.Grid[row][before:])
		f.Grid[row][before] = ""
	}

	if !ok {
		f.setCell(0, before, header)
		return nil
	}
	f.setCell(used.Row, before, header)
	for row := used.Row + 1; row <= used.LastRow(); row++ {
		f.setCell(row, before, fill)
	}
	return nil
}
