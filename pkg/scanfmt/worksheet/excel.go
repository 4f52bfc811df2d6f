package worksheet

import (
	"fmt"
	"path/filepath"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	maxColumnWidth = 255
	minColumnWidth = 8.43
	widthPadding   = 2
)

// Excel is a Worksheet backed by an excelize workbook. All mutations happen
// in memory; call Save or SaveAs to persist them.
type Excel struct {
	file  *excelize.File
	name  string
	sheet string

	hasFilter       bool
	filterHeaderRow int
	filterStartCol  int
	filterEndCol    int
	hiddenRows      map[int]bool
}

var _ Worksheet = (*Excel)(nil)

// OpenExcel opens the workbook at path and binds to the named sheet. An
// empty sheet name selects the workbook's active sheet.
func OpenExcel(path, sheet string) (*Excel, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}

	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	} else {
		idx, err := f.GetSheetIndex(sheet)
		if err != nil {
			f.Close()
			return nil, err
		}
		if idx < 0 {
			f.Close()
			return nil, fmt.Errorf("sheet %q not found in %s", sheet, path)
		}
	}

	return &Excel{
		file:       f,
		name:       filepath.Base(path),
		sheet:      sheet,
		hiddenRows: make(map[int]bool),
	}, nil
}

// Name returns the workbook file name.
func (e *Excel) Name() string {
	return e.name
}

// Sheet returns the bound sheet name.
func (e *Excel) Sheet() string {
	return e.sheet
}

// File exposes the underlying excelize workbook.
func (e *Excel) File() *excelize.File {
	return e.file
}

// Save writes the workbook back to the file it was opened from.
func (e *Excel) Save() error {
	return e.file.Save()
}

// SaveAs writes the workbook to a new path.
func (e *Excel) SaveAs(path string) error {
	return e.file.SaveAs(path)
}

// Close releases the workbook without saving.
func (e *Excel) Close() error {
	return e.file.Close()
}

func (e *Excel) rows() ([][]string, error) {
	return e.file.GetRows(e.sheet)
}

func (e *Excel) UsedRange() (Range, bool, error) {
	rows, err := e.rows()
	if err != nil {
		return Range{}, false, err
	}
	r, ok := dataBounds(rows)
	return r, ok, nil
}

func (e *Excel) HideColumns(start, end int) error {
	if start < 0 || end < start {
		return fmt.Errorf("invalid column range %d..%d", start, end)
	}
	startName, err := excelize.ColumnNumberToName(start + 1)
	if err != nil {
		return err
	}
	endName, err := excelize.ColumnNumberToName(end + 1)
	if err != nil {
		return err
	}
	return e.file.SetColVisible(e.sheet, startName+":"+endName, false)
}

func (e *Excel) ApplyAutoFilter(start, end int) error {
	if start < 0 || end < start {
		return fmt.Errorf("invalid column range %d..%d", start, end)
	}

	// Replacing the filter clears any criteria applied under the old one.
	for row := range e.hiddenRows {
		if err := e.file.SetRowVisible(e.sheet, row+1, true); err != nil {
			return err
		}
	}
	e.hiddenRows = make(map[int]bool)
	e.hasFilter = false

	used, ok, err := e.UsedRange()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	ref, err := rangeRef(used.Row, start, used.LastRow(), end)
	if err != nil {
		return err
	}
	if err := e.file.AutoFilter(e.sheet, ref, nil); err != nil {
		return err
	}

	e.hasFilter = true
	e.filterHeaderRow = used.Row
	e.filterStartCol = start
	e.filterEndCol = end
	return nil
}

// FilterRange reports the autofilter scope against the current used range,
// so rows deleted after the filter was applied are not counted.
func (e *Excel) FilterRange() (Range, bool) {
	if !e.hasFilter {
		return Range{}, false
	}
	r := Range{
		Row:  e.filterHeaderRow,
		Col:  e.filterStartCol,
		Rows: 1,
		Cols: e.filterEndCol - e.filterStartCol + 1,
	}
	if used, ok, err := e.UsedRange(); err == nil && ok && used.LastRow() > e.filterHeaderRow {
		r.Rows = used.LastRow() - e.filterHeaderRow + 1
	}
	return r, true
}

// SortRange reorders cells through their raw values; numeric cells are
// written back as numbers so sorting does not turn them into text.
func (e *Excel) SortRange(r Range, keyCol int) error {
	if keyCol < 0 || keyCol >= r.Cols {
		return fmt.Errorf("sort column %d outside range of %d columns", keyCol, r.Cols)
	}
	if r.Rows <= 2 {
		return nil
	}

	raw, err := e.file.GetRows(e.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return err
	}

	// Data rows only; the header row stays in place.
	data := make([][]string, 0, r.Rows-1)
	for row := r.Row + 1; row <= r.LastRow(); row++ {
		var cells []string
		if row < len(raw) {
			cells = raw[row]
		}
		if len(cells) > r.Col {
			cells = cells[r.Col:]
		} else {
			cells = nil
		}
		data = append(data, normalizeRow(cells, r.Cols))
	}

	sortDataRows(data, keyCol)

	for i, cells := range data {
		for c, value := range cells {
			cell, err := excelize.CoordinatesToCellName(r.Col+c+1, r.Row+1+i+1)
			if err != nil {
				return err
			}
			if n, ok := parseNumber(value); ok {
				err = e.file.SetCellValue(e.sheet, cell, n)
			} else {
				err = e.file.SetCellValue(e.sheet, cell, value)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Excel) RemoveDuplicateRows(r Range, keyCols []int) (int, error) {
	for _, c := range keyCols {
		if c < 0 || c >= r.Cols {
			return 0, fmt.Errorf("key column %d outside range of %d columns", c, r.Cols)
		}
	}

	raw, err := e.rows()
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool)
	var doomed []int
	for row := r.Row + 1; row <= r.LastRow(); row++ {
		cells := make([]string, r.Cols)
		for c := 0; c < r.Cols; c++ {
			cells[c] = cellAt(raw, row, r.Col+c)
		}
		key := rowKey(cells, keyCols)
		if seen[key] {
			doomed = append(doomed, row)
			continue
		}
		seen[key] = true
	}

	// Delete bottom-up so pending row numbers stay valid. The criteria
	// bookkeeping shifts with the surviving rows.
	for i := len(doomed) - 1; i >= 0; i-- {
		if err := e.file.RemoveRow(e.sheet, doomed[i]+1); err != nil {
			return 0, err
		}
		e.hiddenRows = shiftRowKeys(e.hiddenRows, doomed[i])
	}
	return len(doomed), nil
}

func (e *Excel) SetRowHeights(r Range, height float64) error {
	for row := r.Row; row <= r.LastRow(); row++ {
		if err := e.file.SetRowHeight(e.sheet, row+1, height); err != nil {
			return err
		}
	}
	return nil
}

func (e *Excel) RestrictToValues(keyCol int, allowed []string) (int, error) {
	filter, ok := e.FilterRange()
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
		cell, err := excelize.CoordinatesToCellName(col+1, row+1)
		if err != nil {
			return hidden, err
		}
		value, err := e.file.GetCellValue(e.sheet, cell)
		if err != nil {
			return hidden, err
		}
		visible := allow[value]
		if err := e.file.SetRowVisible(e.sheet, row+1, visible); err != nil {
			return hidden, err
		}
		if visible {
			delete(e.hiddenRows, row)
		} else {
			e.hiddenRows[row] = true
			hidden++
		}
	}
	return hidden, nil
}

// AutoFitColumn fits the column to its widest visible content; rows hidden
// by the filter do not count.
func (e *Excel) AutoFitColumn(col int) error {
	if col < 0 {
		return fmt.Errorf("invalid column %d", col)
	}
	raw, err := e.rows()
	if err != nil {
		return err
	}

	longest := 0
	for row := range raw {
		visible, err := e.file.GetRowVisible(e.sheet, row+1)
		if err != nil {
			return err
		}
		if !visible {
			continue
		}
		if n := utf8.RuneCountInString(cellAt(raw, row, col)); n > longest {
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

	name, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return err
	}
	return e.file.SetColWidth(e.sheet, name, name, width)
}

func (e *Excel) InsertColumn(before int, header, fill string) error {
	if before < 0 {
		return fmt.Errorf("invalid column %d", before)
	}
	name, err := excelize.ColumnNumberToName(before + 1)
	if err != nil {
		return err
	}

	used, ok, err := e.UsedRange()
	if err != nil {
		return err
	}

	if err := e.file.InsertCols(e.sheet, name, 1); err != nil {
		return err
	}
	if !ok {
		return e.setCell(before, 0, header)
	}

	if err := e.setCell(before, used.Row, header); err != nil {
		return err
	}
	for row := used.Row + 1; row <= used.LastRow(); row++ {
		if err := e.setCell(before, row, fill); err != nil {
			return err
		}
	}
	return nil
}

func (e *Excel) setCell(col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	return e.file.SetCellValue(e.sheet, cell, value)
}

func rangeRef(r1, c1, r2, c2 int) (string, error) {
	start, err := excelize.CoordinatesToCellName(c1+1, r1+1)
	if err != nil {
		return "", err
	}
	end, err := excelize.CoordinatesToCellName(c2+1, r2+1)
	if err != nil {
		return "", err
	}
	return start + ":" + end, nil
}
