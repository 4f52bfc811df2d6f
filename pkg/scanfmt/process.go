package scanfmt

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tkoide3/scanfmt-go/pkg/scanfmt/worksheet"
)

// workbookSuffix is the file kind the pipeline's persistence assumptions
// hold for.
const workbookSuffix = ".xlsx"

// Report summarizes what the pipeline changed.
type Report struct {
	// DuplicatesRemoved is the number of duplicate finding rows deleted.
	DuplicatesRemoved int
	// RowsHidden is the number of rows hidden by the severity restriction.
	RowsHidden int
}

// ProcessWorksheet runs the post-processing pipeline over a merged findings
// worksheet: validate the workbook kind, hide the metadata columns, apply
// the autofilter, sort by severity, remove duplicate rows, normalize row
// heights, restrict the filter to the severity allow-list, and autofit the
// free-text columns.
//
// Steps run in fixed order and the first error aborts the run; mutations
// from completed steps stay in place.
func ProcessWorksheet(ws worksheet.Worksheet, opts Options) (*Report, error) {
	log := opts.Logger
	l := opts.Layout

	if !strings.HasSuffix(strings.ToLower(ws.Name()), workbookSuffix) {
		return nil, fmt.Errorf("%w: %q", ErrNotWorkbook, ws.Name())
	}
	log.Info().Str("workbook", ws.Name()).Msg("workbook validated")

	report := &Report{}

	log.Info().
		Int("start", l.HideStart).
		Int("end", l.HideEnd).
		Msg("hiding metadata columns")
	if err := ws.HideColumns(l.HideStart, l.HideEnd); err != nil {
		return nil, fmt.Errorf("hiding columns: %w", err)
	}

	log.Info().
		Int("start", l.FilterStart).
		Int("end", l.FilterEnd).
		Msg("applying autofilter")
	if err := ws.ApplyAutoFilter(l.FilterStart, l.FilterEnd); err != nil {
		return nil, fmt.Errorf("applying autofilter: %w", err)
	}

	if err := sortFindings(ws, l.SortColumn, log); err != nil {
		return nil, err
	}

	removed, err := removeDuplicates(ws, l.DuplicateColumns, log)
	if err != nil {
		return nil, err
	}
	report.DuplicatesRemoved = removed

	if err := normalizeRowHeights(ws, l.RowHeight, log); err != nil {
		return nil, err
	}

	hidden, err := restrictSeverities(ws, l.SeverityColumn, l.KeepSeverities, log)
	if err != nil {
		return nil, err
	}
	report.RowsHidden = hidden

	log.Info().Ints("columns", l.AutoFitColumns).Msg("autofitting columns")
	for _, col := range l.AutoFitColumns {
		if err := ws.AutoFitColumn(col); err != nil {
			return nil, fmt.Errorf("autofitting column %d: %w", col, err)
		}
	}

	log.Info().
		Int("duplicates_removed", report.DuplicatesRemoved).
		Int("rows_hidden", report.RowsHidden).
		Msg("worksheet processed")
	return report, nil
}

// sortFindings sorts the filter range ascending by the absolute column,
// translated into the filter range's coordinates. The header row stays in
// place and equal keys keep their original order.
func sortFindings(ws worksheet.Worksheet, column int, log zerolog.Logger) error {
	if column < 0 {
		return NewValidationError("sort", "column index", column)
	}

	filter, ok := ws.FilterRange()
	if !ok {
		log.Info().Msg("no autofilter range, skipping sort")
		return nil
	}

	rel, err := worksheet.RelativeColumn(column, filter)
	if err != nil {
		return fmt.Errorf("sort: %w", err)
	}

	log.Info().Int("column", column).Int("relative", rel).Msg("sorting findings")
	if err := ws.SortRange(filter, rel); err != nil {
		return fmt.Errorf("sorting: %w", err)
	}
	return nil
}

// removeDuplicates deletes data rows whose values match an earlier row in
// every given absolute column. The columns are translated into used-range
// coordinates in a fresh slice; the caller's list is never modified.
func removeDuplicates(ws worksheet.Worksheet, columns []int, log zerolog.Logger) (int, error) {
	used, ok, err := ws.UsedRange()
	if err != nil {
		return 0, fmt.Errorf("resolving used range: %w", err)
	}
	if !ok {
		log.Info().Msg("no data, skipping duplicate removal")
		return 0, nil
	}

	rel := make([]int, len(columns))
	for i, c := range columns {
		rel[i], err = worksheet.RelativeColumn(c, used)
		if err != nil {
			return 0, fmt.Errorf("duplicate removal: %w", err)
		}
	}

	removed, err := ws.RemoveDuplicateRows(used, rel)
	if err != nil {
		return 0, fmt.Errorf("removing duplicates: %w", err)
	}
	log.Info().Ints("columns", columns).Int("removed", removed).Msg("removed duplicate rows")
	return removed, nil
}

// normalizeRowHeights sets every occupied row to exactly height.
func normalizeRowHeights(ws worksheet.Worksheet, height float64, log zerolog.Logger) error {
	if height <= 0 {
		return NewValidationError("row height", "height", height)
	}

	used, ok, err := ws.UsedRange()
	if err != nil {
		return fmt.Errorf("resolving used range: %w", err)
	}
	if !ok {
		log.Info().Msg("no data, skipping row height normalization")
		return nil
	}

	log.Info().Float64("height", height).Int("rows", used.Rows).Msg("normalizing row heights")
	if err := ws.SetRowHeights(used, height); err != nil {
		return fmt.Errorf("setting row heights: %w", err)
	}
	return nil
}

// restrictSeverities hides every data row whose value in the absolute
// severity column is not on the allow-list. Rows are hidden by the filter,
// not deleted.
func restrictSeverities(ws worksheet.Worksheet, column int, keep []string, log zerolog.Logger) (int, error) {
	filter, ok := ws.FilterRange()
	if !ok {
		log.Info().Msg("no autofilter range, skipping severity restriction")
		return 0, nil
	}

	rel, err := worksheet.RelativeColumn(column, filter)
	if err != nil {
		return 0, fmt.Errorf("severity restriction: %w", err)
	}

	hidden, err := ws.RestrictToValues(rel, keep)
	if err != nil {
		return 0, fmt.Errorf("restricting severities: %w", err)
	}
	log.Info().
		Int("column", column).
		Strs("keep", keep).
		Int("hidden", hidden).
		Msg("restricted visible severities")
	return hidden, nil
}
