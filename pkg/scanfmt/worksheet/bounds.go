package worksheet

import (
	"sort"
	"strconv"
	"strings"
)

// dataBounds finds the bounding rectangle of non-empty cells in a row-major
// cell grid. The bool is false when every cell is empty.
func dataBounds(rows [][]string) (Range, bool) {
	minRow, maxRow := -1, -1
	minCol, maxCol := -1, -1

	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if cell == "" {
				continue
			}
			if minRow < 0 || rowIdx < minRow {
				minRow = rowIdx
			}
			if rowIdx > maxRow {
				maxRow = rowIdx
			}
			if minCol < 0 || colIdx < minCol {
				minCol = colIdx
			}
			if colIdx > maxCol {
				maxCol = colIdx
			}
		}
	}

	if minRow < 0 {
		return Range{}, false
	}
	return Range{
		Row:  minRow,
		Col:  minCol,
		Rows: maxRow - minRow + 1,
		Cols: maxCol - minCol + 1,
	}, true
}

// normalizeRow pads or trims a raw row to exactly width cells.
func normalizeRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

// cellAt returns the cell at (row, col) from a ragged grid, or "" when the
// coordinates fall outside it.
func cellAt(rows [][]string, row, col int) string {
	if row < 0 || row >= len(rows) {
		return ""
	}
	if col < 0 || col >= len(rows[row]) {
		return ""
	}
	return rows[row][col]
}

// lessCells orders two cell values the way a spreadsheet host sorts
// ascending: numeric values compare numerically and precede text, text
// compares case-insensitively. Empty cells sort last.
func lessCells(a, b string) bool {
	if a == b {
		return false
	}
	if a == "" {
		return false
	}
	if b == "" {
		return true
	}

	na, aNum := parseNumber(a)
	nb, bNum := parseNumber(b)
	switch {
	case aNum && bNum:
		return na < nb
	case aNum:
		return true
	case bNum:
		return false
	}
	return strings.ToLower(a) < strings.ToLower(b)
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// sortDataRows stably sorts data rows (header excluded by the caller) by the
// given column.
func sortDataRows(rows [][]string, keyCol int) {
	sort.SliceStable(rows, func(i, j int) bool {
		return lessCells(rows[i][keyCol], rows[j][keyCol])
	})
}

// rowKey joins the selected columns of a row into a duplicate-detection key.
// Comparison is exact value equality.
func rowKey(row []string, cols []int) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = row[c]
	}
	return strings.Join(parts, "\x1f")
}
