package scanfmt

import (
	"fmt"

	"github.com/tkoide3/scanfmt-go/pkg/scanfmt/worksheet"
)

// InsertConstantColumn inserts a new column immediately before the absolute
// anchor column, sets its header cell, and fills every data row with the
// same literal value.
//
// ProcessWorksheet does not call this: the upstream merge stage already
// injects the constant column before the workbook reaches the pipeline. It
// stays exported for workbooks produced without that stage.
func InsertConstantColumn(ws worksheet.Worksheet, before int, header, value string) error {
	if before < 0 {
		return NewValidationError("insert column", "column index", before)
	}
	if err := ws.InsertColumn(before, header, value); err != nil {
		return fmt.Errorf("inserting column %q: %w", header, err)
	}
	return nil
}
