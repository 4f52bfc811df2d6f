// Package scanfmt post-processes a worksheet of merged vulnerability-scan
// findings: it hides metadata columns, sorts and deduplicates the findings,
// normalizes row heights, and restricts the view to actionable severities.
package scanfmt

import "github.com/rs/zerolog"

// Layout describes the column geometry of a merged findings worksheet.
// Columns are 0-based absolute worksheet indices.
type Layout struct {
	// HideStart and HideEnd bound the metadata columns to hide.
	HideStart int
	HideEnd   int
	// FilterStart and FilterEnd bound the data-bearing columns the
	// autofilter covers.
	FilterStart int
	FilterEnd   int
	// SortColumn is the ascending sort key.
	SortColumn int
	// SeverityColumn holds the severity value the filter restriction reads.
	SeverityColumn int
	// DuplicateColumns define row equality for duplicate removal.
	DuplicateColumns []int
	// KeepSeverities is the allow-list of severity values left visible.
	KeepSeverities []string
	// RowHeight is applied to every occupied row.
	RowHeight float64
	// AutoFitColumns are width-fitted to their content, in order.
	AutoFitColumns []int
}

// DefaultLayout returns the layout the upstream CSV-merge step produces:
// metadata in A-C, findings in D-O with severity in D, and the free-text
// columns E (device), F (host), I (port), J (name), and M (solution)
// autofitted.
func DefaultLayout() Layout {
	return Layout{
		HideStart:        0,  // A
		HideEnd:          2,  // C
		FilterStart:      3,  // D
		FilterEnd:        14, // O
		SortColumn:       3,  // D
		SeverityColumn:   3,  // D
		DuplicateColumns: []int{3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14},
		KeepSeverities:   []string{"Critical", "High", "Low", "Medium"},
		RowHeight:        14,
		AutoFitColumns:   []int{4, 5, 8, 9, 12}, // E, F, I, J, M
	}
}

// Options configures ProcessWorksheet.
type Options struct {
	// Layout is the worksheet's column geometry.
	Layout Layout
	// Logger receives one status line per pipeline step.
	Logger zerolog.Logger
}

// DefaultOptions returns the default layout with logging disabled.
func DefaultOptions() Options {
	return Options{
		Layout: DefaultLayout(),
		Logger: zerolog.Nop(),
	}
}
